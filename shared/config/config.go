package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderNone   = "none"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Cache         CacheConfig         `yaml:"cache"`
	Summarization SummarizationConfig `yaml:"summarization"`
	YouTube       YouTubeConfig       `yaml:"youtube"`
	AI            AIConfig            `yaml:"ai"`
	Email         EmailConfig         `yaml:"email"`
}

type ServerConfig struct {
	Port               int      `yaml:"port" env:"PORT"`
	CORSOrigins        []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" env:"RATE_LIMIT_PER_MINUTE"`
}

type CacheConfig struct {
	Enabled       *bool  `yaml:"enabled" env:"CACHE_ENABLED"`
	Dir           string `yaml:"dir" env:"CACHE_DIR"`
	DurationHours int    `yaml:"duration_hours" env:"CACHE_DURATION_HOURS"`
	SweepSchedule string `yaml:"sweep_schedule" env:"CACHE_SWEEP_SCHEDULE"`
}

type SummarizationConfig struct {
	MinTranscriptLength *int `yaml:"min_transcript_length" env:"MIN_TRANSCRIPT_LENGTH"`
	MaxTranscriptLength int  `yaml:"max_transcript_length" env:"MAX_TRANSCRIPT_LENGTH"`
	MaxKeywords         int  `yaml:"max_keywords"`
	MaxItems            int  `yaml:"max_items"`
}

type YouTubeConfig struct {
	APIKey         string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID       string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret   string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile      string `yaml:"token_file"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AIConfig struct {
	Provider      string `yaml:"provider" env:"AI_PROVIDER"`
	GeminiAPIKey  string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	Model         string `yaml:"model"`
}

type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// CacheEnabled reports whether summaries should be cached. Caching is on unless
// explicitly disabled.
func (c CacheConfig) CacheEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// MinLength is the shortest transcript, in characters, that gets more than a
// generic summary. It defaults to 50 when unset; 0 disables the minimum.
func (c SummarizationConfig) MinLength() int {
	if c.MinTranscriptLength == nil {
		return 50
	}
	return *c.MinTranscriptLength
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.DurationHours) * time.Hour
}

func (y YouTubeConfig) Timeout() time.Duration {
	return time.Duration(y.TimeoutSeconds) * time.Second
}

// Enabled reports whether an AI provider is configured.
func (a AIConfig) Enabled() bool {
	return a.Provider != ProviderNone
}

// Load reads config.yaml (or CONFIG_FILE), fills empty fields from the
// environment and applies defaults. A missing default config file is not an
// error; the service runs on environment and defaults alone.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile, explicit := os.LookupEnv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
		explicit = false
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if c.Server.Port == 0 {
		if err := envInt("PORT", &c.Server.Port); err != nil {
			return err
		}
	}
	if len(c.Server.CORSOrigins) == 0 {
		if v := os.Getenv("CORS_ORIGINS"); v != "" {
			c.Server.CORSOrigins = splitList(v)
		}
	}
	if c.Server.RateLimitPerMinute == 0 {
		if err := envInt("RATE_LIMIT_PER_MINUTE", &c.Server.RateLimitPerMinute); err != nil {
			return err
		}
	}

	if c.Cache.Enabled == nil {
		if v := os.Getenv("CACHE_ENABLED"); v != "" {
			enabled, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("CACHE_ENABLED must be a boolean, got %q", v)
			}
			c.Cache.Enabled = &enabled
		}
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = os.Getenv("CACHE_DIR")
	}
	if c.Cache.DurationHours == 0 {
		if err := envInt("CACHE_DURATION_HOURS", &c.Cache.DurationHours); err != nil {
			return err
		}
	}
	if c.Cache.SweepSchedule == "" {
		c.Cache.SweepSchedule = os.Getenv("CACHE_SWEEP_SCHEDULE")
	}

	if c.Summarization.MinTranscriptLength == nil && os.Getenv("MIN_TRANSCRIPT_LENGTH") != "" {
		var minLength int
		if err := envInt("MIN_TRANSCRIPT_LENGTH", &minLength); err != nil {
			return err
		}
		c.Summarization.MinTranscriptLength = &minLength
	}
	if c.Summarization.MaxTranscriptLength == 0 {
		if err := envInt("MAX_TRANSCRIPT_LENGTH", &c.Summarization.MaxTranscriptLength); err != nil {
			return err
		}
	}

	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	if c.AI.Provider == "" {
		c.AI.Provider = os.Getenv("AI_PROVIDER")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AI.OpenAIBaseURL == "" {
		c.AI.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimitPerMinute == 0 {
		c.Server.RateLimitPerMinute = 60
	}

	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache"
	}
	if c.Cache.DurationHours == 0 {
		c.Cache.DurationHours = 24
	}
	if c.Cache.SweepSchedule == "" {
		c.Cache.SweepSchedule = "0 0 * * * *" // Hourly
	}

	if c.Summarization.MaxTranscriptLength == 0 {
		c.Summarization.MaxTranscriptLength = 50000
	}
	if c.Summarization.MaxKeywords == 0 {
		c.Summarization.MaxKeywords = 10
	}
	if c.Summarization.MaxItems == 0 {
		c.Summarization.MaxItems = 6
	}

	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.Language == "" {
		c.YouTube.Language = "en"
	}
	if c.YouTube.TimeoutSeconds == 0 {
		c.YouTube.TimeoutSeconds = 30
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		switch {
		case c.AI.GeminiAPIKey != "":
			c.AI.Provider = ProviderGemini
		case c.AI.OpenAIAPIKey != "":
			c.AI.Provider = ProviderOpenAI
		default:
			c.AI.Provider = ProviderNone
		}
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderGemini:
			c.AI.Model = "gemini-2.5-flash"
		case ProviderOpenAI:
			c.AI.Model = "gpt-4o-mini"
		}
	}

	if c.Email.SMTPServer == "" {
		c.Email.SMTPServer = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.FromEmail == "" {
		c.Email.FromEmail = c.Email.Username
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limit must not be negative (set RATE_LIMIT_PER_MINUTE or server.rate_limit_per_minute)")
	}
	if c.Cache.DurationHours < 0 {
		return fmt.Errorf("cache duration must be positive (set CACHE_DURATION_HOURS or cache.duration_hours)")
	}
	minLength := c.Summarization.MinLength()
	if minLength < 0 {
		return fmt.Errorf("minimum transcript length must not be negative")
	}
	if c.Summarization.MaxTranscriptLength <= minLength {
		return fmt.Errorf("maximum transcript length (%d) must exceed minimum (%d)",
			c.Summarization.MaxTranscriptLength, minLength)
	}
	if c.Summarization.MaxKeywords < 0 || c.Summarization.MaxItems < 0 {
		return fmt.Errorf("summarization limits must not be negative")
	}
	if c.YouTube.TimeoutSeconds < 0 {
		return fmt.Errorf("YouTube timeout must not be negative")
	}

	switch c.AI.Provider {
	case ProviderNone:
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai_api_key)")
		}
	default:
		return fmt.Errorf("unknown AI provider %q (expected none, gemini or openai)", c.AI.Provider)
	}

	if c.Email.Enabled {
		if c.Email.Username == "" {
			return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
		}
		if c.Email.Password == "" {
			return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
		}
		if c.Email.ToEmail == "" {
			return fmt.Errorf("Email recipient is required (set email.to_email)")
		}
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", name, v)
	}
	*dst = n
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
