package summarize

import (
	"strings"
	"unicode/utf8"
)

const (
	maxSummaryRunes = 500
	maxMiniRunes    = 200
)

// Extractive builds a summary from the title and the first sentences of
// the content, capped at a digest-friendly length.
func Extractive(title, content string) string {
	summary := strings.TrimSpace(title)
	if summary != "" && !strings.HasSuffix(summary, ".") &&
		!strings.HasSuffix(summary, "!") && !strings.HasSuffix(summary, "?") {
		summary += "."
	}

	taken := 0
	for _, sentence := range sentences(content) {
		if taken == 3 {
			break
		}
		candidate := summary
		if candidate != "" {
			candidate += " "
		}
		candidate += sentence + "."
		if utf8.RuneCountInString(candidate) > maxSummaryRunes {
			break
		}
		summary = candidate
		taken++
	}
	return summary
}

// ExtractiveMini produces a short blurb for community reactions, where a
// sentence or two of the post body is plenty.
func ExtractiveMini(text string) string {
	var summary string
	taken := 0
	for _, sentence := range sentences(text) {
		if taken == 2 {
			break
		}
		candidate := summary
		if candidate != "" {
			candidate += " "
		}
		candidate += sentence + "."
		if utf8.RuneCountInString(candidate) > maxMiniRunes {
			break
		}
		summary = candidate
		taken++
	}

	if summary == "" {
		text = strings.TrimSpace(text)
		runes := []rune(text)
		if len(runes) > maxMiniRunes {
			return string(runes[:maxMiniRunes]) + "..."
		}
		return text
	}
	return summary
}

// sentences splits text on sentence punctuation, dropping fragments too
// short to carry meaning.
func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > 10 {
			out = append(out, part)
		}
	}
	return out
}
