package ai

import (
	"context"
	"fmt"

	"summary-stack/shared/config"

	"google.golang.org/genai"
)

// NewGemini creates a summarizer backed by the Gemini API.
func NewGemini(ctx context.Context, cfg *config.AIConfig, opts ...GeminiOption) (*Summarizer, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(clientConfig)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	return &Summarizer{
		provider: config.ProviderGemini,
		model:    model,
		complete: func(ctx context.Context, prompt string) (string, error) {
			contents := []*genai.Content{
				genai.NewContentFromText(prompt, genai.RoleUser),
			}
			result, err := client.Models.GenerateContent(ctx, model, contents, nil)
			if err != nil {
				return "", err
			}
			return result.Text(), nil
		},
	}, nil
}

type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL overrides the API host.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}
