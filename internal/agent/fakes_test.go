package agent

import (
	"context"
	"errors"
	"sync"

	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/memory"
	"voxelmate.ai/internal/nav"
	"voxelmate.ai/internal/world"
)

type navCall struct {
	Op   string
	Goal nav.Goal
}

type fakeNav struct {
	mu    sync.Mutex
	calls []navCall
	ticks []nav.TickFunc
	err   error
}

func (n *fakeNav) SetGoal(_ context.Context, g nav.Goal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{Op: "set", Goal: g})
	return n.err
}

func (n *fakeNav) Stop(_ context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{Op: "stop"})
	return n.err
}

func (n *fakeNav) OnMovementTick(fn nav.TickFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ticks = append(n.ticks, fn)
}

func (n *fakeNav) fire(ctx context.Context, tick uint64) {
	n.mu.Lock()
	subs := append([]nav.TickFunc(nil), n.ticks...)
	n.mu.Unlock()
	for _, fn := range subs {
		fn(ctx, tick)
	}
}

func (n *fakeNav) ops() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.calls))
	for _, c := range n.calls {
		op := c.Op
		if c.Op == "set" {
			op += ":" + c.Goal.String()
		}
		out = append(out, op)
	}
	return out
}

type fakeLocator map[string]world.Entity

func (l fakeLocator) Resolve(name string) (world.Entity, bool) {
	e, ok := l[name]
	return e, ok
}

type fakeBlocks map[world.Vec3i]string

func (b fakeBlocks) BlockAt(p world.Vec3) (world.Block, bool) {
	cell := p.Cell()
	name, ok := b[cell]
	if !ok {
		return world.Block{}, false
	}
	return world.Block{Pos: cell, Name: name}, true
}

type fakeChat struct {
	mu   sync.Mutex
	said []string
}

func (c *fakeChat) Emit(_ context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.said = append(c.said, text)
}

func (c *fakeChat) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.said...)
}

// fakeModel answers every prompt with reply and records what it was asked.
type fakeModel struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (m *fakeModel) Complete(_ context.Context, msgs []llm.Message) (string, error) {
	m.calls = append(m.calls, msgs)
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

type fakeLooker struct {
	looked []string
	err    error
}

func (l *fakeLooker) LookAt(_ context.Context, e world.Entity) error {
	l.looked = append(l.looked, e.ID)
	return l.err
}

type fakeIdentity string

func (id fakeIdentity) IsSelf(s string) bool { return s == string(id) }

type fakeMemory struct {
	entries []memory.Entry
	err     error
}

func (m *fakeMemory) Append(e memory.Entry) error {
	m.entries = append(m.entries, e)
	return m.err
}

func (m *fakeMemory) Context(botName string) string {
	if len(m.entries) == 0 {
		return ""
	}
	return "ctx:" + botName
}

var errBoom = errors.New("boom")
