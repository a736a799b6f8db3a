package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  string
}

// New builds the Completer for opts.Provider.
func New(ctx context.Context, opts Options) (Completer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAI(NewClient(opts.APIKey, opts.BaseURL, opts.Timeout), opts.Model), nil
	case ProviderGemini:
		c, err := NewGeminiClient(ctx, opts.APIKey, opts.BaseURL, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return NewGemini(c.Models, opts.Model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
