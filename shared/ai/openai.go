package ai

import (
	"context"
	"strings"

	"summary-stack/shared/config"

	openai "github.com/sashabaranov/go-openai"
)

const openAIMaxTokens = 1024

// NewOpenAI creates a summarizer for any OpenAI-compatible chat completion API.
func NewOpenAI(cfg *config.AIConfig) *Summarizer {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	model := cfg.Model
	return &Summarizer{
		provider: config.ProviderOpenAI,
		model:    model,
		complete: func(ctx context.Context, prompt string) (string, error) {
			req := openai.ChatCompletionRequest{
				Model: model,
				Messages: []openai.ChatCompletionMessage{
					{
						Role:    openai.ChatMessageRoleUser,
						Content: prompt,
					},
				},
				MaxTokens:   openAIMaxTokens,
				Temperature: 0.3,
			}

			resp, err := client.CreateChatCompletion(ctx, req)
			if err != nil {
				return "", err
			}
			if len(resp.Choices) == 0 {
				return "", ErrEmptyResponse
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		},
	}
}
