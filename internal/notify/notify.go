// Package notify renders digests and delivers them over email and Slack.
package notify

import (
	"sort"
	"strings"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/trends"
)

// Digest bundles everything a delivery channel needs to render one
// digest message.
type Digest struct {
	Date             string
	NewsItems        []content.ContentItem
	Reactions        []content.ReactionItem
	ExecutiveSummary string
	Trends           *trends.Report
}

var highValueKeywords = []string{
	"elevenlabs", "openai voice", "breakthrough", "launch", "release",
	"funding", "acquisition", "partnership", "new model", "api",
}

var mediumValueKeywords = []string{
	"voice ai", "text-to-speech", "speech synthesis", "voice cloning",
	"ai voice", "neural voice", "voice generation",
}

// TopArticles ranks articles by how newsworthy they look and returns
// the best ones, at most limit. Ties keep their original feed order.
func TopArticles(items []content.ContentItem, limit int) []content.ContentItem {
	if len(items) == 0 || limit <= 0 {
		return nil
	}

	ranked := make([]content.ContentItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return articleScore(ranked[i]) > articleScore(ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func articleScore(item content.ContentItem) int {
	title := strings.ToLower(item.Title)
	summary := strings.ToLower(item.Summary)

	score := 0
	for _, kw := range highValueKeywords {
		if strings.Contains(title, kw) || strings.Contains(summary, kw) {
			score += 10
		}
	}
	for _, kw := range mediumValueKeywords {
		if strings.Contains(title, kw) {
			score += 5
		} else if strings.Contains(summary, kw) {
			score += 3
		}
	}
	if strings.Contains(summary, "today") || strings.Contains(summary, "announced") {
		score += 5
	}
	return score
}

// reactionsByPlatform groups reactions by platform and returns the
// platform names sorted, so rendered output is deterministic.
func reactionsByPlatform(reactions []content.ReactionItem) ([]string, map[string][]content.ReactionItem) {
	grouped := make(map[string][]content.ReactionItem)
	for _, r := range reactions {
		platform := r.Platform
		if platform == "" {
			platform = "unknown"
		}
		grouped[platform] = append(grouped[platform], r)
	}

	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, grouped
}

// truncate cuts s to at most limit runes, marking the cut with an
// ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// datePart extracts the YYYY-MM-DD prefix from a published string.
func datePart(published string) string {
	if len(published) > 10 {
		return published[:10]
	}
	return published
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// reactionBody picks the best short text for a reaction.
func reactionBody(r content.ReactionItem) string {
	if r.Summary != "" {
		return r.Summary
	}
	if r.Content != "" {
		return r.Content
	}
	return r.Title
}
