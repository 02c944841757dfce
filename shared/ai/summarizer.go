package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"summary-stack/internal/models"
	"summary-stack/shared/config"
)

var (
	ErrAIDisabled    = errors.New("AI summarization is disabled")
	ErrEmptyResponse = errors.New("empty response from model")
)

const (
	maxPromptTranscript  = 30000
	maxPromptDescription = 500
	maxResponseKeywords  = 10
)

// Summary is what a model returned for one transcript.
type Summary struct {
	Content  string
	Keywords []string
}

type completeFunc func(ctx context.Context, prompt string) (string, error)

// Summarizer asks a hosted language model for a summary and keywords.
type Summarizer struct {
	provider string
	model    string
	complete completeFunc
}

// New builds the summarizer for the configured provider. It returns
// ErrAIDisabled when no provider is configured.
func New(ctx context.Context, cfg *config.AIConfig) (*Summarizer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case config.ProviderNone, "":
		return nil, ErrAIDisabled
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func (s *Summarizer) Provider() string {
	return s.provider
}

func (s *Summarizer) Model() string {
	return s.model
}

// Summarize sends the transcript and metadata to the model and parses its JSON reply.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, meta models.VideoMetadata) (*Summary, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript cannot be empty")
	}

	response, err := s.complete(ctx, buildPrompt(transcript, meta.Normalized()))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %q with %s: %w", meta.Title, s.provider, err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("%s: %w", s.provider, ErrEmptyResponse)
	}

	summary, err := parseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response for %q: %w", s.provider, meta.Title, err)
	}
	return summary, nil
}

func buildPrompt(transcript string, meta models.VideoMetadata) string {
	duration := meta.Duration
	if duration == "" {
		duration = "unknown"
	}

	return fmt.Sprintf(`You are an assistant that writes concise, factual summaries of YouTube videos from their transcripts.

VIDEO METADATA:
Title: %s
Channel: %s
Duration: %s
Description: %s

TRANSCRIPT:
%s

INSTRUCTIONS:
1. Open with one sentence naming the video and channel and what the video covers
2. Follow with the main points as short bullet lines starting with "• "
3. Close with one sentence on who would benefit from watching
4. Use only information present in the transcript
5. Also list up to %d lowercase keywords that best describe the content

Please respond in the following JSON format:
{
  "summary": "The summary text, using \n for line breaks",
  "keywords": ["keyword", "keyword"]
}`,
		meta.Title,
		meta.Channel,
		duration,
		truncateString(meta.Description, maxPromptDescription),
		truncateString(transcript, maxPromptTranscript),
		maxResponseKeywords,
	)
}

func parseResponse(response string) (*Summary, error) {
	response = stripCodeFence(response)
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("no JSON found in response: %s", truncateString(response, 200))
	}

	jsonStr := response[startIdx : endIdx+1]

	var result struct {
		Summary  string   `json:"summary"`
		Keywords []string `json:"keywords"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		sanitized := sanitizeJSON(jsonStr)
		if sanitizedErr := json.Unmarshal([]byte(sanitized), &result); sanitizedErr != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w (sanitized version also failed: %v)", err, sanitizedErr)
		}
		log.Printf("Warning: Had to sanitize malformed JSON from model response")
	}

	content := strings.TrimSpace(result.Summary)
	if content == "" {
		return nil, fmt.Errorf("summary is required but was empty")
	}

	return &Summary{
		Content:  content,
		Keywords: cleanKeywords(result.Keywords),
	}, nil
}

func cleanKeywords(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
		if len(keywords) == maxResponseKeywords {
			break
		}
	}
	return keywords
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// sanitizeJSON escapes stray quotes inside single-line string values, the most
// common way models break their own JSON.
func sanitizeJSON(jsonStr string) string {
	lines := strings.Split(jsonStr, "\n")
	var sanitizedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colonIdx := strings.Index(line, ":")
		if colonIdx != -1 && strings.Contains(line, "\"") {
			beforeColon := line[:colonIdx+1]
			afterColon := strings.TrimSpace(line[colonIdx+1:])

			if strings.HasPrefix(afterColon, "\"") {
				lastQuoteIdx := strings.LastIndex(afterColon, "\"")
				if lastQuoteIdx > 0 {
					content := afterColon[1:lastQuoteIdx]
					content = strings.ReplaceAll(content, `\"`, `"`)
					content = strings.ReplaceAll(content, `"`, `\"`)
					line = beforeColon + " \"" + content + "\"" + afterColon[lastQuoteIdx+1:]
				}
			}
		}

		sanitizedLines = append(sanitizedLines, line)
	}

	return strings.Join(sanitizedLines, "\n")
}

// truncateString cuts s to at most maxLength runes.
func truncateString(s string, maxLength int) string {
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	return string([]rune(s)[:maxLength]) + "..."
}
