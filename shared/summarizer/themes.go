package summarizer

import (
	"regexp"
	"strings"
)

const (
	GeneralTheme   = "general"
	DefaultEmoji   = "🎥"
	GeneralContext = "The presenter shares valuable insights and practical recommendations for viewers looking to improve their approach."
)

// Theme is one row of the classification table.
type Theme struct {
	Name     string
	Keywords []string
	Context  string
	Emoji    string
}

// Themes is scored in declaration order; earlier themes win ties.
var Themes = []Theme{
	{
		Name:     "fishing",
		Keywords: []string{"fish", "fishing", "bass", "bait", "lure", "rod", "reel", "angler", "tackle"},
		Context:  "For anglers of every level, the presenter shares gear choices and on-the-water techniques that help put more fish in the boat.",
		Emoji:    "🎣",
	},
	{
		Name:     "outdoor",
		Keywords: []string{"outdoor", "outdoors", "camping", "hiking", "trail", "wilderness", "campfire", "kayak", "hunting", "backpacking"},
		Context:  "For anyone who spends time outside, the presenter covers gear and skills that make outdoor adventures safer and more enjoyable.",
		Emoji:    "🏕️",
	},
	{
		Name:     "productivity",
		Keywords: []string{"productive", "productivity", "efficiency", "efficient", "workflow", "organize", "manage", "task", "schedule", "time management"},
		Context:  "As productivity becomes increasingly important, the presenter highlights tools that can streamline workflows and boost efficiency.",
		Emoji:    "⚡",
	},
	{
		Name:     "learning",
		Keywords: []string{"learn", "learning", "study", "education", "knowledge", "understand", "tutorial", "course", "lesson", "student"},
		Context:  "With the growing need for continuous learning, these recommendations focus on tools that enhance knowledge acquisition and retention.",
		Emoji:    "📚",
	},
	{
		Name:     "technology",
		Keywords: []string{"ai", "artificial intelligence", "software", "digital", "tech", "technology", "app", "tool", "computer", "automation"},
		Context:  "In today's digital landscape, the presenter showcases cutting-edge technologies that are reshaping how we work and create.",
		Emoji:    "🤖",
	},
	{
		Name:     "business",
		Keywords: []string{"business", "entrepreneur", "money", "income", "profit", "marketing", "sales", "startup", "revenue", "customer"},
		Context:  "For entrepreneurs and business professionals, these tools offer practical solutions for growth and success.",
		Emoji:    "💼",
	},
	{
		Name:     "creative",
		Keywords: []string{"creative", "design", "content", "video", "create", "art", "editing", "photography"},
		Context:  "For creators and designers, the presenter highlights tools and ideas that help turn inspiration into finished work.",
		Emoji:    "🎨",
	},
	{
		Name:     "cooking",
		Keywords: []string{"recipe", "cook", "cooking", "ingredient", "kitchen", "bake", "meal"},
		Context:  "For home cooks, the presenter walks through ingredients and kitchen techniques that make great meals more approachable.",
		Emoji:    "🍳",
	},
	{
		Name:     "fitness",
		Keywords: []string{"workout", "exercise", "fitness", "muscle", "gym", "cardio", "strength"},
		Context:  "For anyone working on their health, the presenter shares training ideas that build strength and consistency.",
		Emoji:    "💪",
	},
	{
		Name:     "travel",
		Keywords: []string{"travel", "trip", "destination", "flight", "hotel", "itinerary", "tourist"},
		Context:  "For travelers planning their next trip, the presenter shares destinations and tips that make journeys smoother.",
		Emoji:    "✈️",
	},
}

// Classification is the outcome of scoring the theme table.
type Classification struct {
	Theme   string
	Context string
	Emoji   string
	Scores  map[string]int
}

// termMatcher counts word-bounded occurrences of a keyword or phrase,
// tolerating a plural suffix.
type termMatcher struct {
	term string
	re   *regexp.Regexp
}

func newTermMatcher(term string) termMatcher {
	return termMatcher{
		term: term,
		re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `(?:e?s)?\b`),
	}
}

func (m termMatcher) count(lowered string) int {
	return len(m.re.FindAllStringIndex(lowered, -1))
}

func (m termMatcher) in(lowered string) bool {
	return m.re.MatchString(lowered)
}

// weightedTable scores named keyword lists against a title and body.
type weightedTable struct {
	names    []string
	matchers [][]termMatcher
}

func newWeightedTable(names []string, keywords [][]string) *weightedTable {
	t := &weightedTable{names: names, matchers: make([][]termMatcher, len(keywords))}
	for i, kws := range keywords {
		for _, kw := range kws {
			t.matchers[i] = append(t.matchers[i], newTermMatcher(kw))
		}
	}
	return t
}

// best returns the index of the top scorer, or -1 when everything scored zero.
func (t *weightedTable) best(body, title string) (int, map[string]int) {
	body = strings.ToLower(body)
	title = strings.ToLower(title)

	scores := make(map[string]int, len(t.names))
	bestIdx, bestScore := -1, 0
	for i, name := range t.names {
		score := 0
		for _, m := range t.matchers[i] {
			score += m.count(title)*2 + m.count(body)
		}
		scores[name] = score
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, scores
}

var themeTable = func() *weightedTable {
	names := make([]string, len(Themes))
	keywords := make([][]string, len(Themes))
	for i, th := range Themes {
		names[i] = th.Name
		keywords[i] = th.Keywords
	}
	return newWeightedTable(names, keywords)
}()

// ScoreThemes returns the raw score of every theme.
func ScoreThemes(transcript, title string) map[string]int {
	_, scores := themeTable.best(transcript, title)
	return scores
}

// Classify picks the dominant theme for a transcript and title.
func Classify(transcript, title string) Classification {
	idx, scores := themeTable.best(transcript, title)
	if idx < 0 {
		return Classification{
			Theme:   GeneralTheme,
			Context: GeneralContext,
			Emoji:   DefaultEmoji,
			Scores:  scores,
		}
	}

	th := Themes[idx]
	return Classification{
		Theme:   th.Name,
		Context: th.Context,
		Emoji:   th.Emoji,
		Scores:  scores,
	}
}
