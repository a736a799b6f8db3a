// Package llm adapts chat-completion providers to a single Complete call.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged block of model input.
type Message struct {
	Role    string
	Content string
}

func System(s string) Message    { return Message{Role: RoleSystem, Content: s} }
func User(s string) Message      { return Message{Role: RoleUser, Content: s} }
func Assistant(s string) Message { return Message{Role: RoleAssistant, Content: s} }

// Completer returns the model's reply text for an ordered conversation.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}
