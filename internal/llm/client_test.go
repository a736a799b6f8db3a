package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

func TestOpenAI_CompleteMapsMessages(t *testing.T) {
	var got openai.ChatCompletionRequest
	mock := &MockClient{
		CreateChatCompletionFunc: func(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			got = req
			return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: RoleAssistant, Content: "Sure [go to block]"}},
			}}, nil
		},
	}
	c := NewOpenAI(mock, "gpt-4o-mini")
	text, err := c.Complete(context.Background(), []Message{System("sys"), User("hi"), Assistant(""), User("User: Ace")})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Sure [go to block]" {
		t.Fatalf("text: %q", text)
	}
	want := []openai.ChatCompletionMessage{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: ""},
		{Role: "user", Content: "User: Ace"},
	}
	if got.Model != "gpt-4o-mini" {
		t.Fatalf("model: %q", got.Model)
	}
	if diff := cmp.Diff(want, got.Messages); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}
}

func TestOpenAI_Errors(t *testing.T) {
	boom := errors.New("boom")
	c := NewOpenAI(&MockClient{CreateChatCompletionFunc: func(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
		return openai.ChatCompletionResponse{}, boom
	}}, "m")
	if _, err := c.Complete(context.Background(), []Message{User("x")}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}

	empty := NewOpenAI(&MockClient{}, "m")
	if _, err := empty.Complete(context.Background(), []Message{User("x")}); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	reply    string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.contents, f.config = model, contents, config
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
		{Content: genai.NewContentFromText(f.reply, genai.RoleModel)},
	}}, nil
}

func TestGemini_CompleteMapsRoles(t *testing.T) {
	gen := &fakeGenerator{reply: "hello Ace"}
	g := NewGemini(gen, "gemini-2.0-flash")
	text, err := g.Complete(context.Background(), []Message{
		System("be helpful"),
		User("hi"),
		Assistant(""),
		Assistant("Ace: hi -> Bot: hello"),
		User("User: Ace"),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "hello Ace" {
		t.Fatalf("text: %q", text)
	}
	if gen.model != "gemini-2.0-flash" {
		t.Fatalf("model: %q", gen.model)
	}
	if gen.config == nil || gen.config.SystemInstruction == nil || gen.config.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Fatalf("system instruction not set: %+v", gen.config)
	}
	var roles []string
	for _, c := range gen.contents {
		roles = append(roles, c.Role)
	}
	if diff := cmp.Diff([]string{"user", "model", "user"}, roles); diff != "" {
		t.Fatalf("roles (-want +got):\n%s", diff)
	}
}

func TestParseTimeout(t *testing.T) {
	if got := parseTimeout("30s"); got != 30*time.Second {
		t.Fatalf("30s: %v", got)
	}
	if got := parseTimeout("soon"); got != defaultTimeout {
		t.Fatalf("fallback: %v", got)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "nextway"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	if _, err := New(context.Background(), Options{Provider: "gemini"}); err == nil {
		t.Fatalf("expected error for gemini without api key")
	}
	c, err := New(context.Background(), Options{Provider: "OpenAI", Model: "m", BaseURL: "http://localhost:1/v1"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*OpenAI); !ok {
		t.Fatalf("expected *OpenAI, got %T", c)
	}
}
