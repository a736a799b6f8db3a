package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mudler/xlog"

	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/nav"
)

// LostTargetPolicy decides what happens to a follow session whose target
// can no longer be resolved on a tick. Navigation stops either way.
type LostTargetPolicy string

const (
	// HoldOnTargetLost keeps the session until an explicit stop; following
	// resumes if the target shows up again.
	HoldOnTargetLost LostTargetPolicy = "hold"
	// ClearOnTargetLost ends the session silently.
	ClearOnTargetLost LostTargetPolicy = "clear"
)

func ParseLostTargetPolicy(s string) (LostTargetPolicy, error) {
	switch p := LostTargetPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", HoldOnTargetLost:
		return HoldOnTargetLost, nil
	case ClearOnTargetLost:
		return p, nil
	default:
		return "", fmt.Errorf("unknown on_target_lost policy %q", s)
	}
}

type followSession struct {
	target string
}

// FollowController owns the one follow session. States are Idle (no
// session) and Following(target).
type FollowController struct {
	locator  EntityLocator
	nav      Navigator
	chat     Chat
	model    llm.Completer
	distance float64
	onLost   LostTargetPolicy

	mu      sync.Mutex
	session *followSession
}

func NewFollowController(locator EntityLocator, n Navigator, chat Chat, model llm.Completer, distance float64, onLost LostTargetPolicy) *FollowController {
	return &FollowController{
		locator:  locator,
		nav:      n,
		chat:     chat,
		model:    model,
		distance: distance,
		onLost:   onLost,
	}
}

// Following returns the current target, if any.
func (f *FollowController) Following() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return "", false
	}
	return f.session.target, true
}

// Start follows name, replacing any current session. If name cannot be
// resolved the current state is kept and the model is asked to say so.
func (f *FollowController) Start(ctx context.Context, name string) error {
	f.mu.Lock()
	e, ok := f.locator.Resolve(name)
	if !ok {
		f.mu.Unlock()
		xlog.Info("follow target not found", "target", name)
		relay(ctx, f.model, f.chat, fmt.Sprintf(playerNotFoundPrompt, name))
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	defer f.mu.Unlock()
	if err := f.nav.SetGoal(ctx, nav.Follow(e, f.distance)); err != nil {
		return fmt.Errorf("follow %s: %w", name, err)
	}
	f.session = &followSession{target: name}
	xlog.Info("following", "target", name, "entity", e.ID)
	return nil
}

// Stop ends the session and confirms in chat. It is a no-op when idle.
func (f *FollowController) Stop(ctx context.Context) error {
	f.mu.Lock()
	if f.session == nil {
		f.mu.Unlock()
		return nil
	}
	target := f.session.target
	err := f.nav.Stop(ctx)
	f.session = nil
	f.mu.Unlock()

	xlog.Info("stopped following", "target", target)
	f.chat.Emit(ctx, StopConfirmation)
	if err != nil {
		return fmt.Errorf("stop following %s: %w", target, err)
	}
	return nil
}

// Replace ends any session without chat and hands g to the navigator in
// the same critical section, so no tick can re-target in between.
func (f *FollowController) Replace(ctx context.Context, g nav.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		xlog.Info("follow session replaced", "target", f.session.target, "goal", g.String())
		f.session = nil
	}
	return f.nav.SetGoal(ctx, g)
}

// OnTick re-issues the follow goal with a fresh handle so a moving target
// is tracked. It does nothing while idle.
func (f *FollowController) OnTick(ctx context.Context, tick uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return
	}
	e, ok := f.locator.Resolve(f.session.target)
	if ok {
		if err := f.nav.SetGoal(ctx, nav.Follow(e, f.distance)); err != nil {
			xlog.Warn("follow re-target failed", "target", f.session.target, "tick", tick, "error", err)
		}
		return
	}
	if err := f.nav.Stop(ctx); err != nil {
		xlog.Warn("stop after lost target failed", "target", f.session.target, "tick", tick, "error", err)
	}
	if f.onLost == ClearOnTargetLost {
		xlog.Info("follow target lost, session cleared", "target", f.session.target, "tick", tick)
		f.session = nil
	}
}
