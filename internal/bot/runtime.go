// Package bot connects the world session to the agent: observations feed
// the world view and navigation, chat feeds the conversation.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"voxelmate.ai/internal/nav"
	"voxelmate.ai/internal/protocol"
	"voxelmate.ai/internal/world"
)

const DefaultQueueSize = 32

var errNotAttached = errors.New("bot: runtime not attached")

// Ticker consumes one observation per world tick.
type Ticker interface {
	Tick(ctx context.Context, obs *protocol.ObsMsg)
}

// ChatHandler handles one inbound chat message at a time.
type ChatHandler interface {
	OnChatMessage(ctx context.Context, sender, text string)
}

type Options struct {
	// Channel is where the agent speaks; LOCAL when empty.
	Channel   string
	QueueSize int
	IDs       func() string
}

type chatMsg struct {
	sender string
	text   string
}

// Runtime implements ws.Handler on the inbound side and the agent's chat
// and look-at outputs on the outbound side.
type Runtime struct {
	view    *world.View
	channel string
	newID   func() string

	mu     sync.RWMutex
	sender nav.Sender
	ticker Ticker
	chat   ChatHandler

	queue chan chatMsg
}

func New(view *world.View, opts Options) *Runtime {
	if opts.Channel == "" {
		opts.Channel = protocol.ChannelLocal
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.IDs == nil {
		opts.IDs = func() string { return "I_" + uuid.NewString() }
	}
	return &Runtime{
		view:    view,
		channel: strings.ToUpper(opts.Channel),
		newID:   opts.IDs,
		queue:   make(chan chatMsg, opts.QueueSize),
	}
}

// Attach wires the outbound ACT sender, the navigation ticker and the chat
// handler. Call it before the session starts.
func (r *Runtime) Attach(sender nav.Sender, ticker Ticker, chat ChatHandler) {
	r.mu.Lock()
	r.sender, r.ticker, r.chat = sender, ticker, chat
	r.mu.Unlock()
}

func (r *Runtime) deps() (nav.Sender, Ticker, ChatHandler) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sender, r.ticker, r.chat
}

func (r *Runtime) OnWelcome(_ context.Context, w protocol.WelcomeMsg) {
	r.view.SetAgentID(w.AgentID)
}

func (r *Runtime) OnCatalog(_ context.Context, c protocol.CatalogMsg) {
	if err := r.view.ApplyCatalog(c); err != nil {
		xlog.Warn("bad catalog", "name", c.Name, "error", err)
	}
}

// OnObs runs on the transport goroutine and must not block on chat.
func (r *Runtime) OnObs(ctx context.Context, obs *protocol.ObsMsg) {
	if err := r.view.Apply(obs); err != nil {
		xlog.Warn("voxel window dropped", "tick", obs.Tick, "error", err)
	}
	if _, ticker, _ := r.deps(); ticker != nil {
		ticker.Tick(ctx, obs)
	}
	for _, ev := range obs.Events {
		c, ok := ev.Chat()
		if !ok {
			continue
		}
		if r.view.IsSelf(c.From) || r.view.IsSelf(c.FromName) {
			continue
		}
		name := c.FromName
		if name == "" {
			name = r.view.NameOf(c.From)
		}
		r.enqueue(chatMsg{sender: name, text: c.Text})
	}
}

func (r *Runtime) enqueue(m chatMsg) {
	select {
	case r.queue <- m:
	default:
		xlog.Warn("chat queue full, dropping message", "sender", m.sender)
	}
}

// Run drains the chat queue one message at a time until ctx is done.
func (r *Runtime) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-r.queue:
			_, _, chat := r.deps()
			if chat == nil {
				continue
			}
			chat.OnChatMessage(ctx, m.sender, m.text)
		}
	}
}

// Emit says text on the configured channel. Blank text is dropped.
func (r *Runtime) Emit(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	inst := protocol.InstantReq{ID: r.newID(), Type: protocol.InstantSay, Channel: r.channel, Text: text}
	if err := r.send(ctx, inst); err != nil {
		xlog.Warn("chat not sent", "error", err)
	}
}

// LookAt turns the agent's head toward e.
func (r *Runtime) LookAt(ctx context.Context, e world.Entity) error {
	return r.send(ctx, protocol.InstantReq{ID: r.newID(), Type: protocol.InstantLookAt, TargetID: e.ID})
}

func (r *Runtime) send(ctx context.Context, inst protocol.InstantReq) error {
	sender, _, _ := r.deps()
	if sender == nil {
		return errNotAttached
	}
	return sender.Send(ctx, []protocol.InstantReq{inst}, nil, nil)
}
