package summarizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const DefaultKeywordLimit = 10

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// FallbackKeywords is returned when the text yields no usable tokens.
var FallbackKeywords = []string{"video", "content", "information"}

// RankKeywords returns the most frequent non-stopword tokens of text, most
// frequent first. Ties keep the order in which tokens first appeared.
func RankKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}

	type tokenCount struct {
		token string
		count int
	}

	var ordered []*tokenCount
	index := make(map[string]*tokenCount)
	for _, token := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		token = strings.ReplaceAll(token, "’", "'")
		if utf8.RuneCountInString(token) <= 2 || isStopword(token) {
			continue
		}
		if tc, ok := index[token]; ok {
			tc.count++
			continue
		}
		tc := &tokenCount{token: token, count: 1}
		index[token] = tc
		ordered = append(ordered, tc)
	}

	if len(ordered) == 0 {
		return fallbackKeywords(limit)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	keywords := make([]string, len(ordered))
	for i, tc := range ordered {
		keywords[i] = tc.token
	}
	return keywords
}

func fallbackKeywords(limit int) []string {
	n := min(limit, len(FallbackKeywords))
	keywords := make([]string, n)
	copy(keywords, FallbackKeywords)
	return keywords
}
