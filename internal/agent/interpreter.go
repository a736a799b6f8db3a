package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/mudler/xlog"

	"voxelmate.ai/internal/llm"
)

var followTag = regexp.MustCompile(`\[follow @(\w+)\]`)

const (
	stopTag       = "[stop following]"
	goToTag       = "[go to block]"
	followTrigger = "follow me"
)

// Action is what a reply asks the agent to do.
type Action int

const (
	ActionSay Action = iota
	ActionFollow
	ActionStop
	ActionGoTo
	ActionAskUsername
)

func (a Action) String() string {
	switch a {
	case ActionFollow:
		return "follow"
	case ActionStop:
		return "stop"
	case ActionGoTo:
		return "goto"
	case ActionAskUsername:
		return "ask_username"
	default:
		return "say"
	}
}

// Parse classifies reply. Tags are matched literally and case-sensitively;
// the first match in follow, stop, go-to, "follow me" order wins. arg is
// the follow target for ActionFollow.
func Parse(reply string) (act Action, arg string) {
	if m := followTag.FindStringSubmatch(reply); m != nil {
		return ActionFollow, m[1]
	}
	switch {
	case strings.Contains(reply, stopTag):
		return ActionStop, ""
	case strings.Contains(reply, goToTag):
		return ActionGoTo, ""
	case strings.Contains(reply, followTrigger):
		return ActionAskUsername, ""
	}
	return ActionSay, ""
}

// Follower is the part of FollowController the interpreter drives.
type Follower interface {
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context) error
}

// BlockGoer walks the agent to whatever a player is looking at.
type BlockGoer interface {
	GoToLookedAtBlock(ctx context.Context, username string) error
}

// Interpreter dispatches a model reply to exactly one handler.
type Interpreter struct {
	follow Follower
	target BlockGoer
	chat   Chat
	model  llm.Completer
}

func NewInterpreter(follow Follower, target BlockGoer, chat Chat, model llm.Completer) *Interpreter {
	return &Interpreter{follow: follow, target: target, chat: chat, model: model}
}

// Interpret acts on reply from a conversation with sender. Handler errors
// are logged; the user has already been told through chat where relevant.
func (i *Interpreter) Interpret(ctx context.Context, reply, sender string) {
	act, arg := Parse(reply)
	var err error
	switch act {
	case ActionFollow:
		err = i.follow.Start(ctx, arg)
	case ActionStop:
		err = i.follow.Stop(ctx)
	case ActionGoTo:
		err = i.target.GoToLookedAtBlock(ctx, sender)
	case ActionAskUsername:
		relay(ctx, i.model, i.chat, askUsernamePrompt)
	default:
		i.chat.Emit(ctx, reply)
	}
	if err != nil {
		xlog.Warn("reply action failed", "action", act.String(), "sender", sender, "error", err)
	}
}
