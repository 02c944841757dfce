package videosummary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"summary-stack/internal/models"
	"summary-stack/services/video-summary/youtube"
	"summary-stack/shared/ai"
	"summary-stack/shared/config"
	"summary-stack/shared/email"
	"summary-stack/shared/storage"
	"summary-stack/shared/summarizer"
)

var (
	// ErrCacheDisabled is returned by cache operations when caching is turned off.
	ErrCacheDisabled = errors.New("caching is disabled")
	// ErrUpstream wraps failures talking to YouTube.
	ErrUpstream = errors.New("upstream request failed")
)

const (
	StatusCompleted = "completed"
	StatusCached    = "cached"

	SourceCaptions    = "captions"
	SourceDescription = "description"
)

// TranscriptSource fetches transcripts and metadata. *youtube.Fetcher satisfies it.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoURL string) (string, models.VideoMetadata, error)
	Metadata(ctx context.Context, videoID string) (models.VideoMetadata, error)
}

// EnhancedSummarizer is a model-backed summarizer tried before the heuristic one.
type EnhancedSummarizer interface {
	Provider() string
	Summarize(ctx context.Context, transcript string, meta models.VideoMetadata) (*ai.Summary, error)
}

type ProcessingStats struct {
	ProcessingTime   float64    `json:"processing_time"`
	TranscriptLength int        `json:"transcript_length,omitempty"`
	SummaryLength    int        `json:"summary_length,omitempty"`
	TranscriptSource string     `json:"transcript_source,omitempty"`
	CachedAt         *time.Time `json:"cached_at,omitempty"`
}

// SummaryResponse is the result of summarizing one video.
type SummaryResponse struct {
	Summary         models.SummaryResult `json:"summary"`
	VideoInfo       models.VideoMetadata `json:"video_info"`
	URL             string               `json:"url"`
	Status          string               `json:"status"`
	Cached          bool                 `json:"cached"`
	ContentType     string               `json:"content_type,omitempty"`
	KeyMoments      []string             `json:"key_moments,omitempty"`
	Statistics      *models.SummaryStats `json:"statistics,omitempty"`
	ProcessingStats ProcessingStats      `json:"processing_stats"`
}

// Email converts the response into a summary email.
func (r *SummaryResponse) Email() *email.SummaryEmail {
	summary := r.Summary
	return &email.SummaryEmail{
		Video:       r.VideoInfo,
		URL:         r.URL,
		Summary:     &summary,
		ContentType: r.ContentType,
		KeyMoments:  r.KeyMoments,
		Stats:       r.Statistics,
	}
}

type VideoInfoResponse struct {
	VideoID   string               `json:"video_id"`
	VideoInfo models.VideoMetadata `json:"video_info"`
	URL       string               `json:"url"`
}

// Service ties transcript fetching, summarization and the cache together.
type Service struct {
	source     TranscriptSource
	summarizer *summarizer.Summarizer
	enhanced   EnhancedSummarizer
	cache      *storage.CacheStore
	now        func() time.Time
}

type Option func(*Service)

func WithEnhancedSummarizer(e EnhancedSummarizer) Option {
	return func(s *Service) {
		s.enhanced = e
	}
}

// WithCache enables the summary cache. A nil store leaves caching off.
func WithCache(c *storage.CacheStore) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(source TranscriptSource, sum *summarizer.Summarizer, opts ...Option) *Service {
	s := &Service{
		source:     source,
		summarizer: sum,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles a Service from configuration. Optional collaborators that
// are not configured (Data API credentials, AI provider) are skipped.
func Build(ctx context.Context, cfg *config.Config) (*Service, error) {
	var fetcherOpts []youtube.FetcherOption
	client, err := youtube.NewClient(ctx, &cfg.YouTube)
	switch {
	case err == nil:
		fetcherOpts = append(fetcherOpts, youtube.WithMetadataSource(client))
		log.Println("YouTube Data API client initialized")
	case errors.Is(err, youtube.ErrNoCredentials):
		log.Println("YouTube Data API not configured, reading metadata from watch pages")
	default:
		log.Printf("Warning: YouTube Data API unavailable, reading metadata from watch pages: %v", err)
	}
	fetcher := youtube.NewFetcher(&cfg.YouTube, fetcherOpts...)

	sum := summarizer.New(
		summarizer.WithTranscriptBounds(cfg.Summarization.MinLength(), cfg.Summarization.MaxTranscriptLength),
		summarizer.WithMaxKeywords(cfg.Summarization.MaxKeywords),
		summarizer.WithMaxItems(cfg.Summarization.MaxItems),
	)

	var opts []Option
	enhanced, err := ai.New(ctx, &cfg.AI)
	switch {
	case err == nil:
		opts = append(opts, WithEnhancedSummarizer(enhanced))
		log.Printf("AI summarizer initialized (%s, %s)", enhanced.Provider(), enhanced.Model())
	case errors.Is(err, ai.ErrAIDisabled):
		log.Println("AI summarizer disabled, using heuristic summaries")
	default:
		return nil, fmt.Errorf("failed to create AI summarizer: %w", err)
	}

	if cfg.Cache.CacheEnabled() {
		cache, err := storage.NewCacheStore(cfg.Cache.Dir, cfg.Cache.TTL())
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		opts = append(opts, WithCache(cache))
		log.Printf("Cache initialized at %s (TTL %v)", cache.Dir(), cache.TTL())
	}

	return NewService(fetcher, sum, opts...), nil
}

func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// Summarize returns a summary for a video URL, serving it from the cache when
// a fresh record exists.
func (s *Service) Summarize(ctx context.Context, videoURL string) (*SummaryResponse, error) {
	return s.summarize(ctx, videoURL, true)
}

// SummarizeFresh ignores any cached record but still stores the new result.
func (s *Service) SummarizeFresh(ctx context.Context, videoURL string) (*SummaryResponse, error) {
	return s.summarize(ctx, videoURL, false)
}

func (s *Service) summarize(ctx context.Context, videoURL string, useCache bool) (*SummaryResponse, error) {
	start := s.now()
	videoURL = strings.TrimSpace(videoURL)
	if !youtube.IsValidVideoURL(videoURL) {
		return nil, fmt.Errorf("%w: %s", youtube.ErrInvalidURL, videoURL)
	}

	if useCache && s.cache != nil {
		if record, ok := s.cache.Get(videoURL); ok {
			log.Printf("Cache hit for %s", videoURL)
			cachedAt := record.CachedAt
			return &SummaryResponse{
				Summary:   record.Summary,
				VideoInfo: record.VideoInfo,
				URL:       videoURL,
				Status:    StatusCached,
				Cached:    true,
				ProcessingStats: ProcessingStats{
					ProcessingTime: s.now().Sub(start).Seconds(),
					CachedAt:       &cachedAt,
				},
			}, nil
		}
	}

	transcript, meta, source, err := s.transcript(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	result, err := s.generate(ctx, transcript, meta)
	if err != nil {
		return nil, err
	}
	stats := summarizer.Statistics(transcript, result.Content)

	if s.cache != nil {
		s.cache.PutResult(videoURL, result, meta)
	}

	return &SummaryResponse{
		Summary:     *result,
		VideoInfo:   meta,
		URL:         videoURL,
		Status:      StatusCompleted,
		ContentType: summarizer.DetectContentType(transcript, meta.Title),
		KeyMoments:  summarizer.KeyMoments(transcript),
		Statistics:  &stats,
		ProcessingStats: ProcessingStats{
			ProcessingTime:   s.now().Sub(start).Seconds(),
			TranscriptLength: utf8.RuneCountInString(transcript),
			SummaryLength:    utf8.RuneCountInString(result.Content),
			TranscriptSource: source,
		},
	}, nil
}

// Transcript fetches the cleaned transcript for a video URL without summarizing it.
func (s *Service) Transcript(ctx context.Context, videoURL string) (string, models.VideoMetadata, error) {
	videoURL = strings.TrimSpace(videoURL)
	if !youtube.IsValidVideoURL(videoURL) {
		return "", models.VideoMetadata{}, fmt.Errorf("%w: %s", youtube.ErrInvalidURL, videoURL)
	}
	transcript, meta, _, err := s.transcript(ctx, videoURL)
	return transcript, meta, err
}

// transcript falls back to the video description when there are no captions.
func (s *Service) transcript(ctx context.Context, videoURL string) (string, models.VideoMetadata, string, error) {
	transcript, meta, err := s.source.Fetch(ctx, videoURL)
	meta = meta.Normalized()
	switch {
	case err == nil && strings.TrimSpace(transcript) != "":
		return transcript, meta, SourceCaptions, nil
	case err == nil, errors.Is(err, youtube.ErrNoCaptions):
		description := strings.TrimSpace(meta.Description)
		if description == "" {
			if err == nil {
				err = youtube.ErrNoCaptions
			}
			return "", meta, "", fmt.Errorf("no transcript or description for %q: %w", meta.Title, err)
		}
		log.Printf("Warning: no captions for %q, summarizing the description instead", meta.Title)
		return summarizer.Normalize(description), meta, SourceDescription, nil
	default:
		return "", meta, "", fmt.Errorf("%w: failed to fetch transcript: %w", ErrUpstream, err)
	}
}

// generate asks the model first, then falls back to the heuristic tiers.
// Transcripts below the minimum length never reach the model, and the
// keywords always come from the ranker.
func (s *Service) generate(ctx context.Context, transcript string, meta models.VideoMetadata) (*models.SummaryResult, error) {
	transcript = s.summarizer.Truncate(transcript)

	if s.enhanced != nil && strings.TrimSpace(transcript) != "" && s.summarizer.Informative(transcript) {
		summary, err := s.enhanced.Summarize(ctx, transcript, meta)
		if err == nil && summary != nil && strings.TrimSpace(summary.Content) != "" {
			log.Printf("Summary for %q produced by the %s tier", meta.Title, models.TierEnhanced)
			return &models.SummaryResult{
				Content:     summary.Content,
				Keywords:    s.summarizer.Keywords(transcript),
				GeneratedAt: s.now(),
				Tier:        models.TierEnhanced,
			}, nil
		}
		if err == nil {
			err = ai.ErrEmptyResponse
		}
		log.Printf("Warning: %s summary failed for %q, using heuristic summary: %v", s.enhanced.Provider(), meta.Title, err)
	}

	result, err := s.summarizer.Generate(transcript, meta)
	if err != nil {
		return nil, err
	}
	log.Printf("Summary for %q produced by the %s tier", meta.Title, result.Tier)
	return result, nil
}

// VideoInfo looks up metadata for a video ID.
func (s *Service) VideoInfo(ctx context.Context, videoID string) (*VideoInfoResponse, error) {
	watchURL := youtube.WatchURL(videoID)
	if id, ok := youtube.ExtractVideoID(watchURL); !ok || id != videoID {
		return nil, fmt.Errorf("%w: invalid video ID %q", youtube.ErrInvalidURL, videoID)
	}

	meta, err := s.source.Metadata(ctx, videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to get video metadata: %w", ErrUpstream, err)
	}
	return &VideoInfoResponse{
		VideoID:   videoID,
		VideoInfo: meta.Normalized(),
		URL:       watchURL,
	}, nil
}

func (s *Service) CacheStats() (storage.CacheStats, error) {
	if s.cache == nil {
		return storage.CacheStats{}, ErrCacheDisabled
	}
	return s.cache.Stats(), nil
}

// ClearCache removes expired records, or every record when all is set.
func (s *Service) ClearCache(all bool) (int, error) {
	if s.cache == nil {
		return 0, ErrCacheDisabled
	}
	if all {
		return s.cache.EvictAll(), nil
	}
	return s.cache.EvictExpired(), nil
}

// Cache exposes the underlying store, nil when caching is disabled.
func (s *Service) Cache() *storage.CacheStore {
	return s.cache
}
