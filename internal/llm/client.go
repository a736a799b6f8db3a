package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("llm: completion returned no choices")

const defaultTimeout = 150 * time.Second

// NewClient builds an OpenAI-compatible client for baseURL. An unparsable
// timeout falls back to 150s.
func NewClient(apiKey, baseURL, timeout string) *openai.Client {
	if apiKey == "" {
		apiKey = "sk-xxx"
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: parseTimeout(timeout)}
	return openai.NewClientWithConfig(config)
}

func parseTimeout(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// ChatClient is the slice of *openai.Client the completer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI completes through any OpenAI-compatible chat endpoint.
type OpenAI struct {
	client ChatClient
	model  string
}

func NewOpenAI(client ChatClient, model string) *OpenAI {
	return &OpenAI{client: client, model: model}
}

func (o *OpenAI) Complete(ctx context.Context, msgs []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
