package agent

import (
	"context"
	"fmt"

	"github.com/mudler/xlog"

	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/nav"
	"voxelmate.ai/internal/world"
)

// GoalSetter installs a goal. FollowController satisfies it so a go-to
// also ends any follow session.
type GoalSetter interface {
	Replace(ctx context.Context, g nav.Goal) error
}

// TargetResolver sends the agent to the block a player is looking at,
// taken as the cell a fixed distance along their line of sight.
type TargetResolver struct {
	locator   EntityLocator
	blocks    BlockLocator
	goals     GoalSetter
	chat      Chat
	model     llm.Completer
	lookahead float64
}

func NewTargetResolver(locator EntityLocator, blocks BlockLocator, goals GoalSetter, chat Chat, model llm.Completer, lookahead float64) *TargetResolver {
	return &TargetResolver{
		locator:   locator,
		blocks:    blocks,
		goals:     goals,
		chat:      chat,
		model:     model,
		lookahead: lookahead,
	}
}

// LookTarget returns the point lookahead units along e's line of sight.
func LookTarget(e world.Entity, lookahead float64) (world.Vec3, bool) {
	dir, ok := e.Facing()
	if !ok {
		return world.Vec3{}, false
	}
	return e.EyePosition().Add(dir.Scale(lookahead)), true
}

func (r *TargetResolver) GoToLookedAtBlock(ctx context.Context, username string) error {
	var (
		point world.Vec3
		ok    bool
	)
	if e, found := r.locator.Resolve(username); found {
		point, ok = LookTarget(e, r.lookahead)
	}
	if !ok {
		relay(ctx, r.model, r.chat, noDirectionPrompt)
		return fmt.Errorf("%w: %s", ErrNoDirection, username)
	}

	b, ok := r.blocks.BlockAt(point)
	if !ok {
		relay(ctx, r.model, r.chat, noBlockPrompt)
		return fmt.Errorf("%w: %s", ErrNoBlock, username)
	}
	if err := r.goals.Replace(ctx, nav.GoTo(b.Pos)); err != nil {
		return fmt.Errorf("go to block: %w", err)
	}
	xlog.Info("going to looked-at block", "player", username, "cell", b.Pos, "block", b.Name)
	r.chat.Emit(ctx, GoToConfirmation)
	return nil
}
