package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankKeywords(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "orders by frequency",
			text:  "Fishing lures and fishing rods. Fishing is fun with lures.",
			limit: 10,
			want:  []string{"fishing", "lures", "rods", "fun"},
		},
		{
			name:  "respects limit",
			text:  "Fishing lures and fishing rods. Fishing is fun with lures.",
			limit: 2,
			want:  []string{"fishing", "lures"},
		},
		{
			name:  "ties keep first-seen order",
			text:  "zeta alpha zeta alpha beta",
			limit: 10,
			want:  []string{"zeta", "alpha", "beta"},
		},
		{
			name:  "drops short tokens and stopwords",
			text:  "go is ok, fun!",
			limit: 10,
			want:  []string{"fun"},
		},
		{
			name:  "empty input falls back",
			text:  "",
			limit: 10,
			want:  []string{"video", "content", "information"},
		},
		{
			name:  "only stopwords falls back",
			text:  "the and of to it is ... !!!",
			limit: 10,
			want:  []string{"video", "content", "information"},
		},
		{
			name:  "fallback honors limit",
			text:  "",
			limit: 2,
			want:  []string{"video", "content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RankKeywords(tt.text, tt.limit))
		})
	}
}

func TestRankKeywordsDefaultLimitAndUniqueness(t *testing.T) {
	text := "apple banana cherry damson elder figs grape honeydew indigo jackfruit kiwano lemon " +
		"apple banana cherry"

	got := RankKeywords(text, 0)
	assert.Len(t, got, DefaultKeywordLimit)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, got[:3])

	seen := make(map[string]bool)
	for _, kw := range got {
		assert.False(t, seen[kw], "duplicate keyword %q", kw)
		seen[kw] = true
	}
}

func TestRankKeywordsFallbackIsACopy(t *testing.T) {
	got := RankKeywords("", 3)
	got[0] = "mutated"
	assert.Equal(t, "video", FallbackKeywords[0])
}
