package summarizer

import (
	"html"
	"regexp"
	"strings"
)

var (
	markupTagRe  = regexp.MustCompile(`<[^>]+>`)
	bracketedRe  = regexp.MustCompile(`\[.*?\]`)
	parentheseRe = regexp.MustCompile(`\(.*?\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	vttHeaderRe   = regexp.MustCompile(`^WEBVTT\b`)
	vttMetadataRe = regexp.MustCompile(`^(Kind|Language|NOTE|STYLE|REGION)\b`)
	cueTimingRe   = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?[.,]\d{3}\s*-->`)
	cueIDRe       = regexp.MustCompile(`^\d+$`)
)

// Normalize cleans raw transcript text: markup and bracketed annotations are
// removed, whitespace is collapsed and repeated sentences are dropped.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := markupTagRe.ReplaceAllString(raw, "")
	text = collapseWhitespace(text)
	text = bracketedRe.ReplaceAllString(text, "")
	text = parentheseRe.ReplaceAllString(text, "")
	text = collapseWhitespace(text)

	seen := make(map[string]struct{})
	var unique []string
	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if _, ok := seen[sentence]; ok {
			continue
		}
		seen[sentence] = struct{}{}
		unique = append(unique, sentence)
	}

	return strings.Join(unique, ". ")
}

// ParseSubtitles converts a WebVTT or SRT caption payload into plain text.
// Rolling auto-captions repeat the previous cue, so consecutive duplicate
// lines are collapsed.
func ParseSubtitles(raw string) string {
	if raw == "" {
		return ""
	}

	var lines []string
	prev := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" || vttHeaderRe.MatchString(line) || vttMetadataRe.MatchString(line) {
			continue
		}
		if cueTimingRe.MatchString(line) || cueIDRe.MatchString(line) {
			continue
		}

		line = markupTagRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(html.UnescapeString(line))
		if line == "" || line == prev {
			continue
		}
		lines = append(lines, line)
		prev = line
	}

	return collapseWhitespace(strings.Join(lines, " "))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

// splitSentences breaks text on terminal punctuation. Trailing text without
// punctuation is kept as a final sentence.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
