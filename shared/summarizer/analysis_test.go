package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		title      string
		want       string
	}{
		{"cooking", "Today we cook with fresh ingredients from the kitchen.", "Easy Recipe", "cooking"},
		{"tutorial", "In this tutorial I will show you step by step.", "How to Solder", "tutorial"},
		{"review", "My honest opinion after a month.", "Headphone Review", "review"},
		{"general", "", "", GeneralContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType(tt.transcript, tt.title))
		})
	}
}

func TestKeyMoments(t *testing.T) {
	transcript := "Hello everyone and welcome. " +
		"The most important thing is to check the line. " +
		"Short one. " +
		"Always keep your hooks sharp before a trip. " +
		"We drove for hours to reach the lake."

	assert.Equal(t, []string{
		"The most important thing is to check the line",
		"Always keep your hooks sharp before a trip",
	}, KeyMoments(transcript))
}

func TestKeyMomentsLimit(t *testing.T) {
	transcript := strings.Repeat("This is a key moment in the video. ", 10)
	assert.Len(t, KeyMoments(transcript), 5)
}

func TestStatistics(t *testing.T) {
	transcript := strings.Repeat("word ", 300)
	summary := strings.Repeat("word ", 30)

	stats := Statistics(transcript, summary)
	assert.Equal(t, 300, stats.OriginalWordCount)
	assert.Equal(t, 30, stats.SummaryWordCount)
	assert.Equal(t, 90.0, stats.CompressionRatio)
	assert.Equal(t, 1, stats.EstimatedReadingTime)
	assert.Equal(t, 2, stats.OriginalEstimatedTime)
}

func TestStatisticsEmptyTranscript(t *testing.T) {
	stats := Statistics("", "")
	assert.Equal(t, 0.0, stats.CompressionRatio)
	assert.Equal(t, 1, stats.EstimatedReadingTime)
	assert.Equal(t, 1, stats.OriginalEstimatedTime)
}
