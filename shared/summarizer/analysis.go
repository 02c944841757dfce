package summarizer

import (
	"math"
	"strings"
	"unicode/utf8"

	"summary-stack/internal/models"
)

const (
	GeneralContentType = "general"
	maxKeyMoments      = 5
	readingWPM         = 200
	listeningWPM       = 150
)

var contentTypes = []struct {
	name       string
	indicators []string
}{
	{"tutorial", []string{"how to", "tutorial", "guide", "step by step", "learn", "teach"}},
	{"review", []string{"review", "opinion", "rating", "recommend", "pros and cons"}},
	{"educational", []string{"explain", "education", "science", "history", "facts"}},
	{"entertainment", []string{"funny", "comedy", "entertainment", "fun", "laugh"}},
	{"news", []string{"news", "breaking", "report", "update", "current"}},
	{"gaming", []string{"game", "gaming", "play", "level", "boss", "strategy"}},
	{"cooking", []string{"recipe", "cook", "ingredient", "kitchen", "food"}},
	{"fitness", []string{"workout", "exercise", "fitness", "training", "muscle"}},
	{"technology", []string{"tech", "software", "app", "device", "computer"}},
	{"music", []string{"song", "music", "album", "artist", "lyrics"}},
}

var contentTypeTable = func() *weightedTable {
	names := make([]string, len(contentTypes))
	indicators := make([][]string, len(contentTypes))
	for i, ct := range contentTypes {
		names[i] = ct.name
		indicators[i] = ct.indicators
	}
	return newWeightedTable(names, indicators)
}()

var importanceIndicators = []string{
	"important", "key", "main", "first", "second", "third",
	"remember", "note", "tip", "trick", "secret", "best",
	"worst", "never", "always", "must", "should", "need",
}

// DetectContentType labels the format of a video (tutorial, review, ...).
func DetectContentType(transcript, title string) string {
	idx, _ := contentTypeTable.best(transcript, title)
	if idx < 0 {
		return GeneralContentType
	}
	return contentTypes[idx].name
}

// KeyMoments returns up to five sentences that flag something as important.
func KeyMoments(transcript string) []string {
	var moments []string
	for _, sentence := range strings.Split(transcript, ".") {
		sentence = strings.TrimSpace(sentence)
		n := utf8.RuneCountInString(sentence)
		if n <= minItemSentenceLen || n >= maxItemSentenceLen {
			continue
		}
		lowered := strings.ToLower(sentence)
		for _, indicator := range importanceIndicators {
			if strings.Contains(lowered, indicator) {
				moments = append(moments, sentence)
				break
			}
		}
		if len(moments) >= maxKeyMoments {
			break
		}
	}
	return moments
}

// Statistics compares a summary against the transcript it came from.
func Statistics(transcript, summary string) models.SummaryStats {
	original := len(strings.Fields(transcript))
	summarized := len(strings.Fields(summary))

	stats := models.SummaryStats{
		OriginalWordCount:     original,
		SummaryWordCount:      summarized,
		EstimatedReadingTime:  max(1, summarized/readingWPM),
		OriginalEstimatedTime: max(1, original/listeningWPM),
	}
	if original > 0 {
		ratio := (1 - float64(summarized)/float64(original)) * 100
		stats.CompressionRatio = math.Round(ratio*10) / 10
	}
	return stats
}
