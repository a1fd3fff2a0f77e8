// Package sentiment labels text as positive, negative or neutral using a
// small keyword lexicon.
package sentiment

import "strings"

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

var positiveWords = []string{
	"amazing", "awesome", "great", "excellent", "fantastic", "incredible",
	"breakthrough", "impressive", "revolutionary", "game-changing", "love",
	"perfect", "brilliant", "outstanding", "wonderful", "excited",
}

var negativeWords = []string{
	"terrible", "awful", "bad", "horrible", "disappointing", "useless",
	"broken", "failed", "worst", "hate", "sucks", "garbage", "concerning",
	"worried", "dangerous", "scary",
}

// Analyze returns the sentiment label for text.
func Analyze(text string) string {
	lower := strings.ToLower(text)

	positive := 0
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}

	negative := 0
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return Positive
	case negative > positive:
		return Negative
	default:
		return Neutral
	}
}

// Emoji maps a sentiment label to its display emoji.
func Emoji(label string) string {
	switch label {
	case Positive:
		return "😊"
	case Negative:
		return "😟"
	default:
		return "😐"
	}
}
