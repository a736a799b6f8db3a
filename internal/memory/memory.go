// Package memory keeps the conversational transcript the agent replays to
// the language model on every turn.
package memory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Entry is one completed exchange. Entries are never modified once stored.
type Entry struct {
	User     string `json:"user"`
	Message  string `json:"message"`
	Response string `json:"response"`
}

// Store persists the transcript. Load is called once at startup; Save is
// called after every exchange with the full sequence and the entry just
// appended, so whole-file and append-only backends can both be served.
type Store interface {
	Load() ([]Entry, error)
	Save(all []Entry, added Entry) error
	Clear() error
	Close() error
}

var ErrUnknownBackend = errors.New("memory: unknown backend")

const (
	BackendJSON   = "json"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Open returns the Store for backend at path.
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendJSON, "":
		return NewJSONFile(path), nil
	case BackendJSONL:
		return OpenZstdLog(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Log is the in-memory transcript backed by a Store. It grows without bound;
// contextLimit only caps how many recent entries are rendered for the model.
type Log struct {
	store        Store
	contextLimit int

	mu      sync.Mutex
	entries []Entry
}

// Load reads the existing transcript from store.
func Load(store Store, contextLimit int) (*Log, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("memory: load: %w", err)
	}
	return &Log{store: store, contextLimit: contextLimit, entries: entries}, nil
}

// Append records e in arrival order and persists it. The entry stays in the
// in-memory transcript even when persisting fails.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if err := l.store.Save(l.entries, e); err != nil {
		return fmt.Errorf("memory: save: %w", err)
	}
	return nil
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the transcript.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Context renders the transcript as one block, one exchange per line:
// "<user>: <message> -> <botName>: <response>".
func (l *Log) Context(botName string) string {
	l.mu.Lock()
	entries := l.entries
	if l.contextLimit > 0 && len(entries) > l.contextLimit {
		entries = entries[len(entries)-l.contextLimit:]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s -> %s: %s", e.User, e.Message, botName, e.Response))
	}
	l.mu.Unlock()
	return strings.Join(lines, "\n")
}
