package nav

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxelmate.ai/internal/protocol"
	"voxelmate.ai/internal/world"
)

// simTask is the single movement slot of a simulated agent.
type simTask struct {
	id     string
	kind   string
	target string
}

// simServer applies ACTs the way the world does: cancels first and only by
// server task id, then tasks, with one movement slot per agent. Results
// surface in the next observation.
type simServer struct {
	known     map[string]bool
	slot      *simTask
	nextID    int
	events    []protocol.Event
	acts      []sent
	conflicts int
	badCancel int
}

func newSimServer(entities ...string) *simServer {
	s := &simServer{known: map[string]bool{}}
	for _, id := range entities {
		s.known[id] = true
	}
	return s
}

func (s *simServer) result(ref string, ok bool, extra protocol.Event) {
	ev := protocol.Event{"type": "ACTION_RESULT", "ref": ref, "ok": ok}
	for k, v := range extra {
		ev[k] = v
	}
	s.events = append(s.events, ev)
}

func (s *simServer) Send(_ context.Context, _ []protocol.InstantReq, tasks []protocol.TaskReq, cancel []string) error {
	s.acts = append(s.acts, sent{Tasks: tasks, Cancel: cancel})
	for _, cid := range cancel {
		if s.slot != nil && s.slot.id == cid {
			s.slot = nil
			s.result(cid, true, protocol.Event{"message": "canceled"})
			continue
		}
		s.badCancel++
		s.result(cid, false, protocol.Event{"code": protocol.ErrInvalidTarget, "message": "task not found"})
	}
	for _, tr := range tasks {
		if s.slot != nil {
			s.conflicts++
			s.result(tr.ID, false, protocol.Event{"code": protocol.ErrConflict, "message": "movement task already running"})
			continue
		}
		if tr.Type == protocol.TaskFollow && !s.known[tr.TargetID] {
			s.result(tr.ID, false, protocol.Event{"code": protocol.ErrInvalidTarget, "message": "target not found"})
			continue
		}
		s.nextID++
		s.slot = &simTask{id: fmt.Sprintf("T%06d", s.nextID), kind: tr.Type, target: tr.TargetID}
		if tr.Type == protocol.TaskMoveTo {
			s.slot.target = fmt.Sprint(tr.Target)
		}
		s.result(tr.ID, true, protocol.Event{"task_id": s.slot.id})
	}
	return nil
}

// arrive completes the running MOVE_TO.
func (s *simServer) arrive() {
	s.events = append(s.events, protocol.Event{"type": "TASK_DONE", "task_id": s.slot.id, "kind": s.slot.kind})
	s.slot = nil
}

// lose fails the running FOLLOW as if its target left the world.
func (s *simServer) lose() {
	s.events = append(s.events, protocol.Event{"type": "TASK_FAIL", "task_id": s.slot.id, "code": protocol.ErrInvalidTarget, "message": "follow target not found"})
	s.slot = nil
}

func (s *simServer) obs(tick uint64) *protocol.ObsMsg {
	o := &protocol.ObsMsg{Tick: tick, Events: s.events}
	s.events = nil
	if s.slot != nil {
		o.Tasks = []protocol.TaskObs{{TaskID: s.slot.id, Kind: s.slot.kind}}
	}
	return o
}

func (s *simServer) running() string {
	if s.slot == nil {
		return ""
	}
	return s.slot.kind + ":" + s.slot.target
}

func newSimEngine(entities ...string) (*Engine, *simServer) {
	s := newSimServer(entities...)
	n := 0
	e := NewEngine(s, WithTolerance(0.5), WithIDs(func() string {
		n++
		return fmt.Sprintf("K%d", n)
	}))
	return e, s
}

func (s *simServer) clean(t *testing.T) {
	t.Helper()
	if s.conflicts != 0 || s.badCancel != 0 {
		t.Fatalf("server saw conflicts=%d bad cancels=%d; acts=%+v", s.conflicts, s.badCancel, s.acts)
	}
}

func TestEngineServer_SwitchTargetsThenStop(t *testing.T) {
	e, srv := newSimEngine("A2", "A3")
	ctx := context.Background()

	if err := e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1)); err != nil {
		t.Fatalf("follow A2: %v", err)
	}
	e.Tick(ctx, srv.obs(1))
	if err := e.SetGoal(ctx, Follow(world.Entity{ID: "A3"}, 2)); err != nil {
		t.Fatalf("follow A3: %v", err)
	}
	if got := srv.running(); got != "FOLLOW:A3" {
		t.Fatalf("server running %q after switch", got)
	}
	want := sent{Tasks: []protocol.TaskReq{{ID: "K2", Type: "FOLLOW", TargetID: "A3", Distance: 2}}, Cancel: []string{"T000001"}}
	if diff := cmp.Diff(want, srv.acts[len(srv.acts)-1]); diff != "" {
		t.Fatalf("switch ACT (-want +got):\n%s", diff)
	}

	e.Tick(ctx, srv.obs(2))
	if err := e.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := srv.running(); got != "" {
		t.Fatalf("server still running %q after stop", got)
	}
	e.Tick(ctx, srv.obs(3))
	if g := e.Goal(); g.Kind != GoalNone {
		t.Fatalf("goal after stop: %v", g)
	}
	srv.clean(t)
}

func TestEngineServer_SwitchBeforeAck(t *testing.T) {
	e, srv := newSimEngine("A2", "A3")
	ctx := context.Background()

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A3"}, 1))
	if got := srv.running(); got != "FOLLOW:A2" {
		t.Fatalf("server running %q before ack", got)
	}
	e.Tick(ctx, srv.obs(1))
	if got := srv.running(); got != "FOLLOW:A3" {
		t.Fatalf("server running %q after ack", got)
	}
	e.Tick(ctx, srv.obs(2))
	e.Tick(ctx, srv.obs(3))
	if len(srv.acts) != 2 {
		t.Fatalf("expected two ACTs, got %+v", srv.acts)
	}
	if g := e.Goal(); g.Kind != GoalFollow || g.Entity.ID != "A3" {
		t.Fatalf("goal: %v", g)
	}
	srv.clean(t)
}

func TestEngineServer_StopBeforeAck(t *testing.T) {
	e, srv := newSimEngine("A2")
	ctx := context.Background()

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	if err := e.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	e.Tick(ctx, srv.obs(1))
	if got := srv.running(); got != "" {
		t.Fatalf("server still running %q", got)
	}
	e.Tick(ctx, srv.obs(2))
	if g := e.Goal(); g.Kind != GoalNone {
		t.Fatalf("goal: %v", g)
	}
	srv.clean(t)
}

func TestEngineServer_GoToWhileFollowing(t *testing.T) {
	e, srv := newSimEngine("A2")
	ctx := context.Background()

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	e.Tick(ctx, srv.obs(1))
	e.Tick(ctx, srv.obs(2))
	if err := e.SetGoal(ctx, GoTo(world.Vec3i{X: 5, Y: 1, Z: -2})); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if got := srv.running(); got != "MOVE_TO:[5 1 -2]" {
		t.Fatalf("server running %q", got)
	}
	e.Tick(ctx, srv.obs(3))
	srv.arrive()
	e.Tick(ctx, srv.obs(4))
	if g := e.Goal(); g.Kind != GoalNone {
		t.Fatalf("goal after arrival: %v", g)
	}
	// A fresh follow after arrival needs no cancel.
	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	if last := srv.acts[len(srv.acts)-1]; last.Cancel != nil {
		t.Fatalf("unexpected cancel %v", last.Cancel)
	}
	srv.clean(t)
}

func TestEngineServer_RejectedAndLostTargets(t *testing.T) {
	e, srv := newSimEngine("A2")
	ctx := context.Background()

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A404"}, 1))
	e.Tick(ctx, srv.obs(1))
	if g := e.Goal(); g.Kind != GoalNone {
		t.Fatalf("rejected follow kept goal %v", g)
	}

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	e.Tick(ctx, srv.obs(2))
	srv.lose()
	e.Tick(ctx, srv.obs(3))
	if g := e.Goal(); g.Kind != GoalNone {
		t.Fatalf("lost follow kept goal %v", g)
	}
	srv.clean(t)
}

func TestEngineServer_ResumedSlotIsCancelled(t *testing.T) {
	e, srv := newSimEngine("A2")
	ctx := context.Background()
	srv.nextID = 8
	srv.slot = &simTask{id: "T000008", kind: protocol.TaskMoveTo, target: "[0 0 0]"}

	_ = e.SetGoal(ctx, Follow(world.Entity{ID: "A2"}, 1))
	if srv.conflicts != 1 {
		t.Fatalf("expected the first request to conflict")
	}
	srv.conflicts = 0
	e.Tick(ctx, srv.obs(1))
	if got := srv.running(); got != "FOLLOW:A2" {
		t.Fatalf("server running %q", got)
	}
	e.Tick(ctx, srv.obs(2))
	if g := e.Goal(); g.Kind != GoalFollow {
		t.Fatalf("goal: %v", g)
	}
	srv.clean(t)
}
