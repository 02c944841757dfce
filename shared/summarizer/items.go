package summarizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMaxItems = 6
	BulletMarker    = "• "

	minItemSentenceLen = 20
	maxItemSentenceLen = 200
	maxConceptWords    = 15
	minConceptWords    = 4
	colonDetailLen     = 80
	dedupePrefixLen    = 30
)

var itemIndicators = []string{
	"is called", "tool called", "app called", "feature called",
	"first", "second", "third", "next tool", "finally",
	"allows you to", "helps you", "enables you to", "lets you",
	"perfect for", "great for", "ideal for", "best for",
	"you can use", "you can do", "it can",
	"main feature", "key feature", "important feature",
	"i recommend", "lure", "bait", "technique", "tip",
}

var leadingFillerRe = regexp.MustCompile(`(?i)^(this tool|the tool|this is|you can|it is|it's|so|and|but|the|this|that|it|first|second|third|next|finally|also|now|okay|ok|well)\b,?\s+`)

var conjunctions = map[string]bool{
	"and": true, "but": true, "or": true, "so": true, "because": true,
	"although": true, "yet": true, "nor": true, "then": true,
}

// ExtractItems mines "featured item" bullets from sentences that name a tool,
// tip or technique. At most maxItems bullets are returned in transcript order.
func ExtractItems(transcript string, maxItems int) []string {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	seen := make(map[string]struct{})
	var items []string
	for _, sentence := range splitSentences(transcript) {
		n := utf8.RuneCountInString(sentence)
		if n < minItemSentenceLen || n > maxItemSentenceLen {
			continue
		}
		if !hasItemIndicator(strings.ToLower(sentence)) {
			continue
		}

		concept := conceptFromSentence(sentence)
		if !acceptableConcept(concept) {
			continue
		}

		key := prefixRunes(strings.ToLower(concept), dedupePrefixLen)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		items = append(items, BulletMarker+concept)
		if len(items) >= maxItems {
			break
		}
	}
	return items
}

func hasItemIndicator(lowered string) bool {
	for _, indicator := range itemIndicators {
		if strings.Contains(lowered, indicator) {
			return true
		}
	}
	return false
}

func conceptFromSentence(sentence string) string {
	// One filler only: "First, the tool called X" keeps its subject.
	sentence = strings.TrimSpace(leadingFillerRe.ReplaceAllString(sentence, ""))

	if name, detail, ok := strings.Cut(sentence, ":"); ok {
		name = strings.TrimSpace(name)
		detail = strings.TrimRight(strings.TrimSpace(detail), ".!?")
		if name != "" && detail != "" {
			return capitalize(name) + ": " + prefixRunes(detail, colonDetailLen) + "..."
		}
	}

	words := strings.Fields(sentence)
	if len(words) > maxConceptWords {
		return capitalize(strings.Join(words[:maxConceptWords], " ")) + "..."
	}
	return capitalize(sentence)
}

func acceptableConcept(concept string) bool {
	words := strings.Fields(concept)
	if len(words) < minConceptWords {
		return false
	}
	first := strings.ToLower(strings.TrimFunc(words[0], unicode.IsPunct))
	return !conjunctions[first]
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func prefixRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
