package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "collapses whitespace",
			input: "  hello \n\t  world  ",
			want:  "hello world",
		},
		{
			name:  "strips annotations",
			input: "[Music] Welcome back (inaudible) everyone.",
			want:  "Welcome back everyone",
		},
		{
			name:  "strips markup tags",
			input: "<b>Bold</b> move. <i>Italic</i> text.",
			want:  "Bold move. Italic text",
		},
		{
			name:  "drops repeated sentences case-sensitively",
			input: "Hello there. Hello there. General Kenobi. hello there.",
			want:  "Hello there. General Kenobi. hello there",
		},
		{
			name:  "only annotations",
			input: "[Applause] (laughs)",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestParseSubtitles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "webvtt with rolling captions",
			input: "WEBVTT\nKind: captions\nLanguage: en\n\n" +
				"00:00:00.000 --> 00:00:02.000 align:start position:0%\nhello <c>world</c>\n\n" +
				"00:00:02.000 --> 00:00:04.000\nhello world\n\n" +
				"00:00:04.000 --> 00:00:06.000\nthis &amp; that\n",
			want: "hello world this & that",
		},
		{
			name:  "srt cues",
			input: "1\r\n00:00:01,000 --> 00:00:02,000\r\nFirst line\r\n\r\n2\r\n00:00:02,000 --> 00:00:03,000\r\nSecond line\r\n",
			want:  "First line Second line",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSubtitles(tt.input))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? trailing words")
	assert.Equal(t, []string{"One.", "Two!", "Three?", "trailing words"}, got)
}
