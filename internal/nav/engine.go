// Package nav turns navigation goals into FOLLOW / MOVE_TO tasks on the
// world server and reports movement ticks back to the agent.
package nav

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"voxelmate.ai/internal/protocol"
)

// Sender delivers an ACT to the world server.
type Sender interface {
	Send(ctx context.Context, instants []protocol.InstantReq, tasks []protocol.TaskReq, cancel []string) error
}

// TickFunc is called once per observed world tick.
type TickFunc func(ctx context.Context, tick uint64)

type Option func(*Engine)

// WithTolerance sets the MOVE_TO arrival tolerance.
func WithTolerance(t float64) Option {
	return func(e *Engine) { e.tolerance = t }
}

// WithIDs overrides request id generation.
func WithIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// movement is the task occupying the server's single movement slot on our
// behalf. reqID is the id we sent; taskID is assigned by the server in the
// ACTION_RESULT and is empty until that arrives.
type movement struct {
	goal   Goal
	reqID  string
	taskID string
	seen   bool
}

// Engine holds exactly one goal at a time and keeps the server's movement
// slot in line with it.
//
// The server cancels by its own task id and rejects a second movement task
// with E_CONFLICT, so a goal change while a request is unacknowledged is held
// until the ack names the task; the cancel and the replacement then go out
// in one ACT (cancels are applied first).
type Engine struct {
	sender    Sender
	tolerance float64
	newID     func() string

	mu   sync.Mutex
	goal Goal
	task *movement
	// Request ids given up on before their ack, and server ids of tasks we
	// no longer own that still need a cancel.
	abandoned map[string]struct{}
	orphans   []string

	subsMu sync.Mutex
	subs   []TickFunc
}

func NewEngine(s Sender, opts ...Option) *Engine {
	e := &Engine{
		sender:    s,
		tolerance: 1.2,
		newID:     func() string { return "K_" + uuid.NewString() },
		abandoned: map[string]struct{}{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Goal returns the active goal.
func (e *Engine) Goal() Goal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.goal
}

// SetGoal replaces the active goal. Re-issuing the active goal while a task
// for it is held sends nothing.
func (e *Engine) SetGoal(ctx context.Context, g Goal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch g.Kind {
	case GoalNone:
		return e.stopLocked(ctx)
	case GoalFollow, GoalGoTo:
	default:
		return fmt.Errorf("nav: unknown goal kind %d", g.Kind)
	}
	if e.task != nil && e.goal.Same(g) {
		e.goal = g
		return nil
	}
	prev := e.goal
	e.goal = g
	if err := e.reconcileLocked(ctx); err != nil {
		e.goal = prev
		return fmt.Errorf("nav: set %s: %w", g, err)
	}
	return nil
}

// Stop clears the goal. It is a no-op when nothing is active.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopLocked(ctx)
}

func (e *Engine) stopLocked(ctx context.Context) error {
	prev := e.goal
	e.goal = None()
	if err := e.reconcileLocked(ctx); err != nil {
		e.goal = prev
		return fmt.Errorf("nav: stop: %w", err)
	}
	return nil
}

// reconcileLocked sends whatever ACT brings the server's slot to e.goal.
func (e *Engine) reconcileLocked(ctx context.Context) error {
	cancel := append([]string(nil), e.orphans...)
	replace := false
	switch {
	case e.task != nil && e.task.taskID == "":
		// No server id to cancel by yet; picked up again once acked.
	case e.task != nil && e.task.goal.Same(e.goal):
		e.task.goal = e.goal
	default:
		if e.task != nil {
			cancel = append(cancel, e.task.taskID)
		}
		replace = true
	}

	var (
		tasks []protocol.TaskReq
		next  *movement
	)
	if replace && e.goal.Kind != GoalNone {
		req, err := e.request(e.goal)
		if err != nil {
			return err
		}
		tasks = []protocol.TaskReq{req}
		next = &movement{goal: e.goal, reqID: req.ID}
	}
	if len(cancel) == 0 && len(tasks) == 0 {
		return nil
	}
	if err := e.sender.Send(ctx, nil, tasks, cancel); err != nil {
		return err
	}
	e.orphans = nil
	if replace {
		e.task = next
		if next != nil {
			xlog.Debug("nav goal set", "goal", next.goal.String(), "request", next.reqID, "cancel", cancel)
		} else {
			xlog.Debug("nav stopped", "cancel", cancel)
		}
	}
	return nil
}

func (e *Engine) request(g Goal) (protocol.TaskReq, error) {
	req := protocol.TaskReq{ID: e.newID()}
	switch g.Kind {
	case GoalFollow:
		req.Type = protocol.TaskFollow
		req.TargetID = g.Entity.ID
		req.Distance = g.Distance
	case GoalGoTo:
		req.Type = protocol.TaskMoveTo
		req.Target = g.Cell.ToArray()
		req.Tolerance = e.tolerance
	default:
		return protocol.TaskReq{}, fmt.Errorf("nav: unknown goal kind %d", g.Kind)
	}
	return req, nil
}

// OnMovementTick registers fn for every subsequent tick.
func (e *Engine) OnMovementTick(fn TickFunc) {
	e.subsMu.Lock()
	e.subs = append(e.subs, fn)
	e.subsMu.Unlock()
}

// Tick folds obs into the task state, sends any held cancel or replacement
// and then fires tick callbacks. A task the server rejected or finished
// drops the goal it was serving.
func (e *Engine) Tick(ctx context.Context, obs *protocol.ObsMsg) {
	e.mu.Lock()
	e.observeLocked(obs)
	if err := e.reconcileLocked(ctx); err != nil {
		xlog.Warn("nav reconcile failed", "goal", e.goal.String(), "error", err)
	}
	e.mu.Unlock()

	e.subsMu.Lock()
	subs := append([]TickFunc(nil), e.subs...)
	e.subsMu.Unlock()
	for _, fn := range subs {
		fn(ctx, obs.Tick)
	}
}

func (e *Engine) observeLocked(obs *protocol.ObsMsg) {
	for _, ev := range obs.Events {
		if r, ok := ev.ActionResult(); ok {
			e.onResultLocked(r, obs.Tasks)
			continue
		}
		if end, ok := ev.TaskEnd(); ok && e.task != nil && e.task.taskID != "" && end.TaskID == e.task.taskID {
			xlog.Debug("nav task ended", "goal", e.task.goal.String(), "task", end.TaskID, "code", end.Code, "message", end.Message)
			e.endLocked()
		}
	}

	if e.task == nil || e.task.taskID == "" {
		return
	}
	live := false
	for _, t := range obs.Tasks {
		if t.TaskID == e.task.taskID {
			live = true
			break
		}
	}
	switch {
	case live:
		e.task.seen = true
	case e.task.seen:
		xlog.Debug("nav task gone", "goal", e.task.goal.String(), "task", e.task.taskID)
		e.endLocked()
	}
}

func (e *Engine) onResultLocked(r protocol.ActionResult, live []protocol.TaskObs) {
	if _, ok := e.abandoned[r.Ref]; ok {
		delete(e.abandoned, r.Ref)
		if r.OK && r.TaskID != "" {
			e.orphans = append(e.orphans, r.TaskID)
		}
		return
	}
	m := e.task
	if m == nil || m.taskID != "" {
		return
	}
	switch {
	case r.Ref == m.reqID && r.OK:
		if r.TaskID == "" {
			xlog.Warn("nav task accepted without id", "goal", m.goal.String(), "request", m.reqID)
			e.endLocked()
			return
		}
		m.taskID = r.TaskID
	case r.Ref == m.reqID && r.Code == protocol.ErrConflict:
		// Slot held by a task we lost track of, e.g. across a resume.
		// Cancel it and let the next reconcile re-send the goal.
		xlog.Warn("nav slot occupied", "goal", m.goal.String(), "request", m.reqID)
		for _, t := range live {
			e.orphans = append(e.orphans, t.TaskID)
		}
		e.task = nil
	case r.Ref == m.reqID:
		xlog.Warn("nav task rejected", "goal", m.goal.String(), "request", r.Ref, "code", r.Code, "reason", protocol.CodeText(r.Code))
		e.endLocked()
	case r.Code == protocol.ErrStale:
		// The whole ACT was dropped; the ref does not say which one. Give
		// the request up and cancel it should an ack still turn up.
		xlog.Warn("nav act stale", "goal", m.goal.String(), "request", m.reqID)
		e.abandoned[m.reqID] = struct{}{}
		e.endLocked()
	}
}

// endLocked forgets the current task. The goal it served is dropped too
// unless the goal has moved on in the meantime.
func (e *Engine) endLocked() {
	if e.goal.Same(e.task.goal) {
		e.goal = None()
	}
	e.task = nil
}
