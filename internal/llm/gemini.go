package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ContentGenerator is the slice of genai.Models the completer needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini completes through the Gemini API. System messages become the
// system instruction; assistant messages are sent with the model role.
type Gemini struct {
	models ContentGenerator
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, baseURL, timeout string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: gemini api key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: parseTimeout(timeout)},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}
	return client, nil
}

func NewGemini(models ContentGenerator, model string) *Gemini {
	return &Gemini{models: models, model: model}
}

func (g *Gemini) Complete(ctx context.Context, msgs []Message) (string, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			// Gemini rejects empty parts (e.g. an empty memory block).
			continue
		}
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	var cfg *genai.GenerateContentConfig
	if len(system) > 0 {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser),
		}
	}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("llm: %s: %w", g.model, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Text(), nil
}
