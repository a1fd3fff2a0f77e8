// Package classify decides whether a text is about voice AI using the
// tiered keyword tables. Matching is case-insensitive unanchored substring
// matching, so a keyword inside a larger word still counts.
package classify

import (
	"fmt"
	"strings"

	"github.com/voicewatch/voicewatch/internal/keywords"
)

type Strategy int

const (
	// StrategyTiered requires a primary keyword and either a second
	// any-tier match or a context keyword in the same sentence.
	StrategyTiered Strategy = iota
	// StrategyAnyPrimary accepts on any single primary match (low
	// precision mode).
	StrategyAnyPrimary
	// StrategyWeighted scores matches per tier and accepts above a
	// threshold, with negative keywords subtracting.
	StrategyWeighted
)

func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "tiered":
		return StrategyTiered, nil
	case "any_primary":
		return StrategyAnyPrimary, nil
	case "weighted":
		return StrategyWeighted, nil
	}
	return StrategyTiered, fmt.Errorf("unknown classify strategy %q", name)
}

func (s Strategy) String() string {
	switch s {
	case StrategyAnyPrimary:
		return "any_primary"
	case StrategyWeighted:
		return "weighted"
	default:
		return "tiered"
	}
}

// Weighted-strategy scoring.
const (
	weightPrimary     = 10
	weightSecondary   = 3
	weightCompany     = 5
	weightTechnical   = 2
	weightApplication = 2
	weightNegative    = -5
	weightedThreshold = 5
)

type Classifier struct {
	set      *keywords.Set
	strategy Strategy
}

func New(set *keywords.Set, strategy Strategy) *Classifier {
	return &Classifier{set: set, strategy: strategy}
}

// Classify reports whether the text is relevant and returns the matched
// keywords for logging. It never panics and never errors: empty text or a
// broken keyword set simply classifies as not relevant.
func (c *Classifier) Classify(text string) (bool, []string) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if c == nil || !c.set.Valid() {
		return false, nil
	}

	lower := strings.ToLower(text)

	switch c.strategy {
	case StrategyAnyPrimary:
		return c.classifyAnyPrimary(lower)
	case StrategyWeighted:
		return c.classifyWeighted(lower)
	default:
		return c.classifyTiered(lower)
	}
}

func (c *Classifier) classifyTiered(lower string) (bool, []string) {
	primary := matchAny(lower, c.set.Primary)
	if len(primary) == 0 {
		return false, nil
	}

	all := matchAny(lower, c.set.All())
	ctx := matchAny(lower, c.set.Context)
	matched := append(all, ctx...)

	if len(all) >= 2 {
		return true, matched
	}

	// Single match: accept only when a sentence pairs it with a context
	// keyword.
	for _, sentence := range splitSentences(lower) {
		if len(matchAny(sentence, c.set.All())) == 0 {
			continue
		}
		if len(matchAny(sentence, c.set.Context)) > 0 {
			return true, matched
		}
	}

	return false, matched
}

func (c *Classifier) classifyAnyPrimary(lower string) (bool, []string) {
	primary := matchAny(lower, c.set.Primary)
	if len(primary) > 0 {
		return true, primary
	}

	all := matchAny(lower, c.set.All())
	if len(all) >= 2 {
		return true, all
	}

	return false, all
}

func (c *Classifier) classifyWeighted(lower string) (bool, []string) {
	score := 0
	var matched []string

	for _, group := range []struct {
		kws    []string
		weight int
	}{
		{c.set.Primary, weightPrimary},
		{c.set.Secondary, weightSecondary},
		{c.set.Company, weightCompany},
		{c.set.Technical, weightTechnical},
		{c.set.Application, weightApplication},
	} {
		hits := matchAny(lower, group.kws)
		score += len(hits) * group.weight
		matched = append(matched, hits...)
	}

	score += len(matchAny(lower, c.set.Negative)) * weightNegative
	if score < 0 {
		score = 0
	}

	return score >= weightedThreshold, matched
}

// matchAny returns the keywords found as substrings of the lower-cased
// text.
func matchAny(lower string, kws []string) []string {
	var found []string
	for _, k := range kws {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(lower, k) {
			found = append(found, k)
		}
	}
	return found
}

// splitSentences splits on sentence terminators. Runs of terminators
// yield no empty sentences.
func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}
