package summarizer

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"summary-stack/internal/models"
)

const (
	DefaultMinTranscriptLength = 50
	DefaultMaxTranscriptLength = 50000
	DefaultBasicSummaryLength  = 500

	// PlaceholderSummary is what a composer emits when it had nothing to say.
	PlaceholderSummary = "Summary not available."

	basicSummarySentences = 5
)

// ErrEmptyInput is returned when there is no transcript text to summarize.
var ErrEmptyInput = errors.New("transcript is empty")

var (
	errPlaceholder = errors.New("composer returned no usable summary")
	errNoSentences = errors.New("transcript has no sentence breaks")
)

// EmptyInputError reports which video arrived without a transcript.
type EmptyInputError struct {
	Title string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("cannot summarize %q: %v", e.Title, ErrEmptyInput)
}

func (e *EmptyInputError) Unwrap() error {
	return ErrEmptyInput
}

// Summarizer turns transcripts into summaries and keywords. It holds only
// configuration and is safe for concurrent use.
type Summarizer struct {
	minLength   int
	maxLength   int
	maxKeywords int
	maxItems    int
	basicLength int
	now         func() time.Time
	compose     func(transcript string, meta models.VideoMetadata) string
}

type Option func(*Summarizer)

// WithTranscriptBounds sets the shortest transcript that gets a real summary
// and the length after which input is truncated.
func WithTranscriptBounds(minLength, maxLength int) Option {
	return func(s *Summarizer) {
		s.minLength = minLength
		if maxLength > 0 {
			s.maxLength = maxLength
		}
	}
}

func WithMaxKeywords(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxKeywords = n
		}
	}
}

func WithMaxItems(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

func WithBasicSummaryLength(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.basicLength = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Summarizer) {
		s.now = now
	}
}

func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		minLength:   DefaultMinTranscriptLength,
		maxLength:   DefaultMaxTranscriptLength,
		maxKeywords: DefaultKeywordLimit,
		maxItems:    DefaultMaxItems,
		basicLength: DefaultBasicSummaryLength,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.compose == nil {
		maxItems := s.maxItems
		s.compose = func(transcript string, meta models.VideoMetadata) string {
			return compose(transcript, meta, maxItems)
		}
	}
	return s
}

// Generate summarizes a transcript. The only error it returns is an
// *EmptyInputError; every other failure degrades to a lower summary tier.
func (s *Summarizer) Generate(transcript string, meta models.VideoMetadata) (*models.SummaryResult, error) {
	meta = meta.Normalized()
	if strings.TrimSpace(transcript) == "" {
		return nil, &EmptyInputError{Title: meta.Title}
	}
	transcript = s.Truncate(transcript)

	content, tier := s.summarize(transcript, meta)
	return &models.SummaryResult{
		Content:     content,
		Keywords:    s.Keywords(transcript),
		GeneratedAt: s.now(),
		Tier:        tier,
	}, nil
}

// Keywords ranks the transcript's keywords using the configured limit.
func (s *Summarizer) Keywords(transcript string) []string {
	return RankKeywords(Normalize(transcript), s.maxKeywords)
}

// Informative reports whether the transcript still holds at least the
// configured minimum of characters once caption noise is normalized away.
func (s *Summarizer) Informative(transcript string) bool {
	return utf8.RuneCountInString(Normalize(transcript)) >= s.minLength
}

// Truncate clips a transcript to the configured maximum length.
func (s *Summarizer) Truncate(transcript string) string {
	if utf8.RuneCountInString(transcript) <= s.maxLength {
		return transcript
	}
	log.Printf("Transcript truncated from %d to %d characters", utf8.RuneCountInString(transcript), s.maxLength)
	return prefixRunes(transcript, s.maxLength)
}

func (s *Summarizer) summarize(transcript string, meta models.VideoMetadata) (string, models.Tier) {
	if !s.Informative(transcript) {
		log.Printf("Warning: transcript for %q is shorter than %d characters, using generic summary", meta.Title, s.minLength)
		return GenericSummary(meta), models.TierGeneric
	}

	content, err := s.safeCompose(transcript, meta)
	if err == nil {
		return content, models.TierComposed
	}
	log.Printf("Warning: composed summary failed for %q, falling back to basic summary: %v", meta.Title, err)

	content, err = s.basicSummary(transcript, meta)
	if err == nil {
		return content, models.TierBasic
	}
	log.Printf("Warning: basic summary failed for %q, using generic summary: %v", meta.Title, err)

	return GenericSummary(meta), models.TierGeneric
}

func (s *Summarizer) safeCompose(transcript string, meta models.VideoMetadata) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("composer panicked: %v", r)
		}
	}()

	content = strings.TrimSpace(s.compose(transcript, meta))
	if content == "" || content == PlaceholderSummary {
		return "", errPlaceholder
	}
	return content, nil
}

func (s *Summarizer) basicSummary(transcript string, meta models.VideoMetadata) (string, error) {
	sentences := strings.Split(Normalize(transcript), ". ")
	if len(sentences) < 2 {
		return "", errNoSentences
	}
	if len(sentences) > basicSummarySentences {
		sentences = sentences[:basicSummarySentences]
	}

	body := strings.Join(sentences, ". ")
	if utf8.RuneCountInString(body) > s.basicLength {
		body = strings.TrimSpace(prefixRunes(body, s.basicLength)) + "..."
	}

	return fmt.Sprintf("📺 Summary of \"%s\" by %s:\n\n%s", meta.Title, meta.Channel, body), nil
}

// GenericSummary is the last-resort summary that only references the metadata.
func GenericSummary(meta models.VideoMetadata) string {
	meta = meta.Normalized()
	return fmt.Sprintf("📺 This video \"%s\" by %s contains content that has been transcribed but could not be automatically summarized.", meta.Title, meta.Channel)
}
