// Package agent interprets language-model replies and drives the agent's
// navigation: following a player around or walking to the block they look at.
package agent

import (
	"context"
	"errors"

	"github.com/mudler/xlog"

	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/memory"
	"voxelmate.ai/internal/nav"
	"voxelmate.ai/internal/world"
)

var (
	ErrPlayerNotFound = errors.New("agent: player not found")
	ErrNoDirection    = errors.New("agent: player direction unknown")
	ErrNoBlock        = errors.New("agent: no block at look target")
)

// EntityLocator finds live entities by name.
type EntityLocator interface {
	Resolve(name string) (world.Entity, bool)
}

// BlockLocator maps a world point to the cell containing it.
type BlockLocator interface {
	BlockAt(p world.Vec3) (world.Block, bool)
}

// Navigator steers the agent toward a single goal.
type Navigator interface {
	SetGoal(ctx context.Context, g nav.Goal) error
	Stop(ctx context.Context) error
	OnMovementTick(fn nav.TickFunc)
}

// Chat is the outbound chat channel. Delivery is fire-and-forget.
type Chat interface {
	Emit(ctx context.Context, text string)
}

// Looker turns the agent's head toward an entity.
type Looker interface {
	LookAt(ctx context.Context, e world.Entity) error
}

// Memory is the conversational transcript.
type Memory interface {
	Append(e memory.Entry) error
	Context(botName string) string
}

// Identity tells the agent's own chat apart from everyone else's.
type Identity interface {
	IsSelf(idOrName string) bool
}

// Deps are the collaborators the agent talks to.
type Deps struct {
	Identity Identity
	Locator  EntityLocator
	Blocks   BlockLocator
	Nav      Navigator
	Chat     Chat
	Looker   Looker
	Model    llm.Completer
	Memory   Memory
}

// Options tune the agent's behaviour.
type Options struct {
	BotName        string
	SystemPrompt   string
	FollowDistance float64
	Lookahead      float64
	OnTargetLost   LostTargetPolicy
}

func (o *Options) defaults() {
	if o.BotName == "" {
		o.BotName = "Bot"
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	if o.FollowDistance <= 0 {
		o.FollowDistance = DefaultFollowDistance
	}
	if o.Lookahead <= 0 {
		o.Lookahead = DefaultLookahead
	}
	if o.OnTargetLost == "" {
		o.OnTargetLost = HoldOnTargetLost
	}
}

// Agent wires the conversation pipeline together.
type Agent struct {
	Follow       *FollowController
	Target       *TargetResolver
	Interpreter  *Interpreter
	Conversation *Orchestrator
}

// New builds the agent and subscribes the follow controller to movement
// ticks. This is the only tick subscription the agent ever makes.
func New(d Deps, opts Options) *Agent {
	opts.defaults()
	follow := NewFollowController(d.Locator, d.Nav, d.Chat, d.Model, opts.FollowDistance, opts.OnTargetLost)
	target := NewTargetResolver(d.Locator, d.Blocks, follow, d.Chat, d.Model, opts.Lookahead)
	interp := NewInterpreter(follow, target, d.Chat, d.Model)
	conv := NewOrchestrator(d.Identity, d.Locator, d.Looker, d.Model, d.Memory, interp, opts.BotName, opts.SystemPrompt)

	d.Nav.OnMovementTick(follow.OnTick)

	return &Agent{
		Follow:       follow,
		Target:       target,
		Interpreter:  interp,
		Conversation: conv,
	}
}

// OnChatMessage is the single entry point for inbound chat.
func (a *Agent) OnChatMessage(ctx context.Context, sender, text string) {
	a.Conversation.OnChatMessage(ctx, sender, text)
}

// relay asks the model to phrase prompt and emits whatever it says.
func relay(ctx context.Context, model llm.Completer, chat Chat, prompt string) {
	reply, err := model.Complete(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		xlog.Error("model call failed", "prompt", prompt, "error", err)
		return
	}
	chat.Emit(ctx, reply)
}
