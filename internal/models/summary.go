package models

import (
	"fmt"
	"time"
)

// Tier identifies which level of the summary fallback chain produced a result.
type Tier int

const (
	TierUnknown Tier = iota
	TierEnhanced
	TierComposed
	TierBasic
	TierGeneric
)

func (t Tier) String() string {
	switch t {
	case TierEnhanced:
		return "enhanced"
	case TierComposed:
		return "composed"
	case TierBasic:
		return "basic"
	case TierGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "enhanced":
		*t = TierEnhanced
	case "composed":
		*t = TierComposed
	case "basic":
		*t = TierBasic
	case "generic":
		*t = TierGeneric
	case "unknown", "":
		*t = TierUnknown
	default:
		return fmt.Errorf("unknown summary tier %q", text)
	}
	return nil
}

type SummaryResult struct {
	Content     string    `json:"content"`
	Keywords    []string  `json:"keywords"`
	GeneratedAt time.Time `json:"generated_at"`
	Tier        Tier      `json:"tier,omitempty"`
}

type CacheRecord struct {
	URL       string        `json:"url"`
	Summary   SummaryResult `json:"summary"`
	VideoInfo VideoMetadata `json:"video_info"`
	CachedAt  time.Time     `json:"cached_at"`
}

// Age reports how long ago the record was written.
func (r *CacheRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CachedAt)
}

type SummaryStats struct {
	OriginalWordCount     int     `json:"original_word_count"`
	SummaryWordCount      int     `json:"summary_word_count"`
	CompressionRatio      float64 `json:"compression_ratio"`
	EstimatedReadingTime  int     `json:"estimated_reading_time"`
	OriginalEstimatedTime int     `json:"original_estimated_time"`
}
