package summarizer

import (
	"fmt"
	"strings"

	"summary-stack/internal/models"
)

const itemsLeadIn = "Here's a quick breakdown of the featured items:"

// phraseRule maps the presence of any of its terms in lowercased text to a phrase.
type phraseRule struct {
	terms  []termMatcher
	phrase string
}

func newPhraseRule(phrase string, terms ...string) phraseRule {
	r := phraseRule{phrase: phrase}
	for _, t := range terms {
		r.terms = append(r.terms, newTermMatcher(t))
	}
	return r
}

func (r phraseRule) matches(lowered string) bool {
	for _, t := range r.terms {
		if t.in(lowered) {
			return true
		}
	}
	return false
}

var topicRules = []phraseRule{
	newPhraseRule("tools and applications", "tool"),
	newPhraseRule("tips and techniques", "tip"),
	newPhraseRule("methods and strategies", "guide", "how to"),
	newPhraseRule("product reviews and recommendations", "review"),
}

var transcriptTopics = []phraseRule{
	newPhraseRule("techniques", "technique"),
	newPhraseRule("methods", "method"),
	newPhraseRule("strategies", "strategy", "strategies"),
	newPhraseRule("approaches", "approach"),
	newPhraseRule("tools", "tool"),
	newPhraseRule("tips", "tip"),
}

// openingRules carry a %s placeholder for the topic label.
var openingRules = []phraseRule{
	newPhraseRule("explores the most effective %s for enhancing productivity and workflow.", "tool", "app"),
	newPhraseRule("provides comprehensive guidance on %s.", "tip", "guide"),
}

const defaultOpening = "dives into %s."

var (
	toolTitle      = newPhraseRule("", "tool", "app")
	tipTitle       = newPhraseRule("", "tip", "technique")
	tutorialTitle  = newPhraseRule("", "tutorial", "guide", "how to")
	budgetWords    = newPhraseRule("", "budget", "cheap", "affordable", "inexpensive", "bargain")
	beginnerWords  = newPhraseRule("", "beginner", "start", "started", "starting")
	defaultClosing = "The video provides comprehensive insights and practical guidance for viewers interested in the topic."
)

type closingInput struct {
	title      string
	transcript string
	theme      string
}

type closingRule struct {
	when func(in closingInput) bool
	text func(in closingInput) string
}

func fixed(s string) func(closingInput) string {
	return func(closingInput) string { return s }
}

var closingRules = []closingRule{
	{
		when: func(in closingInput) bool { return in.theme == "fishing" && budgetWords.matches(in.transcript) },
		text: fixed("The video shows that effective fishing doesn't require expensive gear, making these picks practical for anglers on a budget."),
	},
	{
		when: func(in closingInput) bool { return in.theme == "fishing" },
		text: fixed("The video offers practical fishing advice that anglers of any experience level can take straight to the water."),
	},
	{
		when: func(in closingInput) bool { return toolTitle.matches(in.title) },
		text: func(in closingInput) string {
			if beginnerWords.matches(in.transcript) {
				return "The video emphasizes choosing the right tools based on your experience level and specific needs, making it accessible for both beginners and advanced users."
			}
			return "The video emphasizes adapting your tool choice to your specific workflow and requirements, ensuring maximum productivity and effectiveness."
		},
	},
	{
		when: func(in closingInput) bool { return tipTitle.matches(in.title) },
		text: fixed("The video emphasizes practical application and provides actionable advice that viewers can implement immediately."),
	},
	{
		when: func(in closingInput) bool { return tutorialTitle.matches(in.title) },
		text: fixed("The video walks through the process step by step, giving viewers guidance they can follow along with."),
	},
}

// Compose builds the styled narrative summary for a transcript.
func Compose(transcript string, meta models.VideoMetadata) string {
	return compose(transcript, meta, DefaultMaxItems)
}

func compose(transcript string, meta models.VideoMetadata, maxItems int) string {
	meta = meta.Normalized()
	class := Classify(transcript, meta.Title)
	title := strings.ToLower(meta.Title)
	lowered := strings.ToLower(transcript)

	opening := fmt.Sprintf("%s The video \"%s\" by %s %s %s",
		class.Emoji, meta.Title, meta.Channel,
		openingPhrase(title, MainTopic(transcript, meta.Title)),
		class.Context)

	blocks := []string{opening}
	if items := ExtractItems(transcript, maxItems); len(items) > 0 {
		blocks = append(blocks, itemsLeadIn)
		blocks = append(blocks, items...)
	}
	blocks = append(blocks, closing(closingInput{title: title, transcript: lowered, theme: class.Theme}))

	return strings.Join(blocks, "\n\n")
}

// MainTopic labels what a video is about as a noun phrase.
func MainTopic(transcript, title string) string {
	lowered := strings.ToLower(title)
	for _, r := range topicRules {
		if r.matches(lowered) {
			return r.phrase
		}
	}

	body := strings.ToLower(transcript)
	for _, r := range transcriptTopics {
		if r.matches(body) {
			return r.phrase + " and related concepts"
		}
	}
	return "key concepts and insights"
}

func openingPhrase(title, topic string) string {
	for _, r := range openingRules {
		if r.matches(title) {
			return fmt.Sprintf(r.phrase, topic)
		}
	}
	return fmt.Sprintf(defaultOpening, topic)
}

func closing(in closingInput) string {
	for _, r := range closingRules {
		if r.when(in) {
			return r.text(in)
		}
	}
	return defaultClosing
}
