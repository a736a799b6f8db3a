package agent

import (
	"context"

	"github.com/mudler/xlog"

	"voxelmate.ai/internal/llm"
	"voxelmate.ai/internal/memory"
)

// Orchestrator runs one conversational turn per inbound chat message.
type Orchestrator struct {
	identity Identity
	locator  EntityLocator
	looker   Looker
	model    llm.Completer
	memory   Memory
	interp   *Interpreter

	botName      string
	systemPrompt string
}

func NewOrchestrator(identity Identity, locator EntityLocator, looker Looker, model llm.Completer, mem Memory, interp *Interpreter, botName, systemPrompt string) *Orchestrator {
	return &Orchestrator{
		identity:     identity,
		locator:      locator,
		looker:       looker,
		model:        model,
		memory:       mem,
		interp:       interp,
		botName:      botName,
		systemPrompt: systemPrompt,
	}
}

// Messages builds the model input for one turn.
func (o *Orchestrator) Messages(sender, text string) []llm.Message {
	return []llm.Message{
		llm.System(o.systemPrompt),
		llm.User(text),
		llm.Assistant(o.memory.Context(o.botName)),
		llm.User("User: " + sender),
	}
}

func (o *Orchestrator) OnChatMessage(ctx context.Context, sender, text string) {
	if o.identity.IsSelf(sender) {
		return
	}
	if e, ok := o.locator.Resolve(sender); ok && o.looker != nil {
		if err := o.looker.LookAt(ctx, e); err != nil {
			xlog.Debug("look at sender failed", "sender", sender, "error", err)
		}
	}

	reply, err := o.model.Complete(ctx, o.Messages(sender, text))
	if err != nil {
		xlog.Error("model call failed", "sender", sender, "error", err)
		return
	}
	xlog.Info("model reply", "sender", sender, "message", text, "reply", reply)

	if err := o.memory.Append(memory.Entry{User: sender, Message: text, Response: reply}); err != nil {
		xlog.Error("persist memory", "error", err)
	}
	o.interp.Interpret(ctx, reply, sender)
}
