package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const scenarioTranscript = "Welcome to this tutorial. First, the tool called Alpha allows you to organize tasks. It is great for teams."

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		title      string
		wantTheme  string
		wantEmoji  string
	}{
		{
			name:       "productivity tool video",
			transcript: scenarioTranscript,
			title:      "Best Productivity Tool",
			wantTheme:  "productivity",
			wantEmoji:  "⚡",
		},
		{
			name:       "fishing video",
			transcript: "Bass fishing with a soft plastic lure and the right rod.",
			title:      "Catching Bass",
			wantTheme:  "fishing",
			wantEmoji:  "🎣",
		},
		{
			name:       "empty input is general",
			transcript: "",
			title:      "",
			wantTheme:  GeneralTheme,
			wantEmoji:  DefaultEmoji,
		},
		{
			name:       "ties go to the earlier theme",
			transcript: "software business",
			title:      "",
			wantTheme:  "technology",
			wantEmoji:  "🤖",
		},
		{
			name:       "keywords must be whole words",
			transcript: "She said it again and again.",
			title:      "",
			wantTheme:  GeneralTheme,
			wantEmoji:  DefaultEmoji,
		},
		{
			name:       "title counts double",
			transcript: "We talk about money once.",
			title:      "Camping Trip",
			wantTheme:  "outdoor",
			wantEmoji:  "🏕️",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.transcript, tt.title)
			assert.Equal(t, tt.wantTheme, got.Theme)
			assert.Equal(t, tt.wantEmoji, got.Emoji)
			assert.NotEmpty(t, got.Context)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify(scenarioTranscript, "Best Productivity Tool")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(scenarioTranscript, "Best Productivity Tool"))
	}
}

func TestScoreThemes(t *testing.T) {
	scores := ScoreThemes(scenarioTranscript, "Best Productivity Tool")

	assert.Len(t, scores, len(Themes))
	// title "productivity" x2, "organize", "tasks"
	assert.Equal(t, 4, scores["productivity"])
	// title "tool" x2, transcript "tool"
	assert.Equal(t, 3, scores["technology"])
	assert.Equal(t, 0, scores["fishing"])
}
