// Package ws is the agent side of the world's WebSocket protocol: one
// long-lived session that survives disconnects by resuming.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mudler/xlog"

	"voxelmate.ai/internal/protocol"
)

var (
	ErrNotConnected = errors.New("ws: not connected")
	ErrNoObs        = errors.New("ws: no observation received yet")
)

const (
	minBackoff   = 200 * time.Millisecond
	maxBackoff   = 5 * time.Second
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// Handler receives server frames on the session's reader goroutine.
type Handler interface {
	OnWelcome(ctx context.Context, w protocol.WelcomeMsg)
	OnCatalog(ctx context.Context, c protocol.CatalogMsg)
	OnObs(ctx context.Context, o *protocol.ObsMsg)
}

type Config struct {
	URL         string
	AgentName   string
	ResumeToken string
	// StateFile, if set, persists the resume token across restarts.
	StateFile string
}

type Client struct {
	cfg     Config
	handler Handler

	mu sync.RWMutex

	startOnce sync.Once
	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}

	conn    *websocket.Conn
	writeMu sync.Mutex

	connected   bool
	lastErr     string
	agentID     string
	resumeToken string
	lastObsTick uint64
}

func NewClient(cfg Config, h Handler) *Client {
	c := &Client{
		cfg:         cfg,
		handler:     h,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		resumeToken: strings.TrimSpace(cfg.ResumeToken),
	}
	if c.resumeToken == "" && cfg.StateFile != "" {
		st, err := loadState(cfg.StateFile)
		if err != nil {
			xlog.Warn("ignoring unreadable session state", "path", cfg.StateFile, "error", err)
		} else {
			c.resumeToken = st.ResumeToken
			c.agentID = st.AgentID
		}
	}
	return c
}

// Start runs the session in the background until Close. ctx is handed to
// the handler callbacks.
func (c *Client) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.run(ctx)
	})
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.disconnect()
		c.startOnce.Do(func() { close(c.done) })
		<-c.done
	})
}

func (c *Client) disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) AgentID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agentID
}

func (c *Client) ResumeToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resumeToken
}

// LastError is the reason for the most recent disconnect, if any.
func (c *Client) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Send writes one ACT stamped with the latest observed tick.
func (c *Client) Send(ctx context.Context, instants []protocol.InstantReq, tasks []protocol.TaskReq, cancel []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.RLock()
	tick, agentID := c.lastObsTick, c.agentID
	c.mu.RUnlock()
	if tick == 0 {
		return ErrNoObs
	}
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		AgentID:         agentID,
		Instants:        instants,
		Tasks:           tasks,
		Cancel:          cancel,
	}
	b, err := json.Marshal(act)
	if err != nil {
		return fmt.Errorf("encode act: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("write act: %w", err)
	}
	return nil
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	backoff := minBackoff
	for {
		select {
		case <-c.stop:
			c.disconnect()
			return
		default:
		}

		if err := c.connectAndReadLoop(ctx); err != nil {
			c.mu.Lock()
			c.connected = false
			c.lastErr = err.Error()
			c.mu.Unlock()
			xlog.Warn("world connection lost", "url", c.cfg.URL, "error", err, "retry_in", backoff.String())
			select {
			case <-c.stop:
				c.disconnect()
				return
			case <-ctx.Done():
				c.disconnect()
				return
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
				if backoff > maxBackoff {
					backoff = maxBackoff
				}
			}
			continue
		}
		return
	}
}

func (c *Client) connectAndReadLoop(ctx context.Context) error {
	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, resp, err := d.DialContext(ctx, c.cfg.URL, http.Header{})
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	hello := protocol.NewHello(c.cfg.AgentName, c.ResumeToken())
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(hello); err != nil {
		_ = conn.Close()
		return err
	}

	c.mu.Lock()
	select {
	case <-c.stop:
		c.mu.Unlock()
		_ = conn.Close()
		return nil
	default:
	}
	c.conn = conn
	c.lastErr = ""
	c.mu.Unlock()

	for {
		select {
		case <-c.stop:
			_ = conn.Close()
			return nil
		default:
		}

		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			select {
			case <-c.stop:
				return nil
			default:
			}
			return err
		}
		c.dispatch(ctx, msg)
	}
}

func (c *Client) dispatch(ctx context.Context, msg []byte) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		xlog.Debug("dropping undecodable frame", "error", err)
		return
	}
	if !protocol.IsSupportedVersion(base.ProtocolVersion) {
		xlog.Debug("dropping frame with unsupported version", "type", base.Type, "version", base.ProtocolVersion)
		return
	}
	switch base.Type {
	case protocol.TypeWelcome:
		var w protocol.WelcomeMsg
		if err := json.Unmarshal(msg, &w); err != nil {
			return
		}
		c.mu.Lock()
		c.agentID = w.AgentID
		c.resumeToken = w.ResumeToken
		c.connected = true
		c.mu.Unlock()
		xlog.Info("joined world", "agent_id", w.AgentID, "world", w.CurrentWorldID)
		if c.cfg.StateFile != "" {
			st := sessionState{ResumeToken: w.ResumeToken, AgentID: w.AgentID, LastConnectedAt: time.Now().UTC().Format(time.RFC3339Nano)}
			if err := saveState(c.cfg.StateFile, st); err != nil {
				xlog.Warn("save session state", "path", c.cfg.StateFile, "error", err)
			}
		}
		c.handler.OnWelcome(ctx, w)

	case protocol.TypeCatalog:
		var cat protocol.CatalogMsg
		if err := json.Unmarshal(msg, &cat); err != nil {
			return
		}
		cat.Name = strings.ToLower(strings.TrimSpace(cat.Name))
		if cat.Name == "" {
			return
		}
		c.handler.OnCatalog(ctx, cat)

	case protocol.TypeObs:
		var o protocol.ObsMsg
		if err := json.Unmarshal(msg, &o); err != nil {
			xlog.Debug("dropping malformed obs", "error", err)
			return
		}
		c.mu.Lock()
		c.lastObsTick = o.Tick
		// agent_id can be empty on very early frames; keep the WELCOME one.
		if o.AgentID != "" {
			c.agentID = o.AgentID
		}
		c.mu.Unlock()
		c.handler.OnObs(ctx, &o)
	}
}
