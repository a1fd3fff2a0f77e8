package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/trends"
)

const topStoryCount = 5

// RenderHTML builds the HTML body of the digest email.
func RenderHTML(d *Digest) string {
	var body strings.Builder

	body.WriteString(fmt.Sprintf(`<p class="stats">%d articles and %d community reactions about voice AI.</p>`,
		len(d.NewsItems), len(d.Reactions)))
	body.WriteString("\n")

	if d.ExecutiveSummary != "" {
		body.WriteString(`<div class="info-box"><h2>🧭 Executive Summary</h2><p>`)
		body.WriteString(nl2br(html.EscapeString(d.ExecutiveSummary)))
		body.WriteString("</p></div>\n")
	}

	if d.Trends != nil && d.Trends.Available {
		body.WriteString(renderTrendsHTML(d.Trends))
	}

	body.WriteString(renderNewsHTML(d.NewsItems))
	body.WriteString(renderReactionsHTML(d.Reactions))

	return baseHTML(fmt.Sprintf("🔊 AI Voice News Digest - %s", d.Date), body.String())
}

func renderTrendsHTML(report *trends.Report) string {
	var b strings.Builder

	b.WriteString(`<div class="info-box"><h2>📊 Trends</h2>`)
	b.WriteString(fmt.Sprintf(`<p class="meta">Across %d runs (%s)</p>`,
		report.RunsAnalyzed, html.EscapeString(report.DateRange)))
	b.WriteString(fmt.Sprintf("<p>%s Sentiment %s (%+.2f) &bull; %s Activity %s (%+.0f) &bull; %s News %s (%+.0f)</p>",
		report.Sentiment.Emoji, report.Sentiment.Direction, report.Sentiment.Change,
		report.Activity.Emoji, report.Activity.Direction, report.Activity.Change,
		report.NewsVolume.Emoji, report.NewsVolume.Direction, report.NewsVolume.Change))

	if len(report.Insights) > 0 {
		b.WriteString("<ul>")
		for _, insight := range report.Insights {
			b.WriteString("<li>" + html.EscapeString(insight) + "</li>")
		}
		b.WriteString("</ul>")
	}

	if len(report.Subreddits) > 0 {
		b.WriteString(`<p class="meta">Most active subreddits:</p><ul>`)
		for _, sub := range report.Subreddits {
			b.WriteString(fmt.Sprintf("<li>r/%s %s %.1f posts per run</li>",
				html.EscapeString(sub.Name), sub.Emoji, sub.AvgPosts))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</div>\n")
	return b.String()
}

func renderNewsHTML(items []content.ContentItem) string {
	if len(items) == 0 {
		return "<h2>📰 Latest News</h2><p>No new AI voice news today.</p>\n"
	}

	var b strings.Builder
	top := TopArticles(items, topStoryCount)

	b.WriteString("<h2>📰 Top Stories</h2>\n")
	for _, item := range top {
		b.WriteString(`<div class="article">`)
		b.WriteString(fmt.Sprintf(`<h3><a href="%s">%s</a></h3>`,
			html.EscapeString(item.URL), html.EscapeString(item.Title)))
		b.WriteString(fmt.Sprintf(`<p class="meta">%s &bull; %s</p>`,
			html.EscapeString(item.Source), html.EscapeString(datePart(item.Published))))
		if item.Summary != "" {
			b.WriteString("<p>" + html.EscapeString(item.Summary) + "</p>")
		}
		b.WriteString("</div>\n")
	}

	rest := remainingArticles(items, top)
	if len(rest) > 0 {
		b.WriteString("<h2>🗞 Also Covered</h2><ul>\n")
		for _, item := range rest {
			b.WriteString(fmt.Sprintf(`<li><a href="%s">%s</a> <span class="meta">(%s)</span></li>`,
				html.EscapeString(item.URL), html.EscapeString(item.Title), html.EscapeString(item.Source)))
			b.WriteString("\n")
		}
		b.WriteString("</ul>\n")
	}

	return b.String()
}

func remainingArticles(items, top []content.ContentItem) []content.ContentItem {
	seen := make(map[string]bool, len(top))
	for _, item := range top {
		seen[item.URL] = true
	}

	var rest []content.ContentItem
	for _, item := range items {
		if !seen[item.URL] {
			rest = append(rest, item)
		}
	}
	return rest
}

func renderReactionsHTML(reactions []content.ReactionItem) string {
	if len(reactions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<h2>💬 Community Reactions</h2>\n")

	names, grouped := reactionsByPlatform(reactions)
	for _, platform := range names {
		b.WriteString("<h3>" + html.EscapeString(capitalize(platform)) + "</h3>\n")
		for i, r := range grouped[platform] {
			if i >= 3 {
				break
			}
			b.WriteString(`<div class="reaction">`)
			b.WriteString(fmt.Sprintf(`<p><a href="%s">r/%s</a> &bull; %d points &bull; %d comments %s</p>`,
				html.EscapeString(r.URL), html.EscapeString(r.Subreddit),
				r.Score, r.NumComments, r.SentimentEmoji))
			b.WriteString("<p>" + html.EscapeString(truncate(reactionBody(r), 200)) + "</p>")
			b.WriteString("</div>\n")
		}
	}

	return b.String()
}

// RenderText builds the plain text alternative of the digest email.
func RenderText(d *Digest) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("AI Voice News Digest - %s\n", d.Date))
	b.WriteString(strings.Repeat("=", 40) + "\n\n")
	b.WriteString(fmt.Sprintf("%d articles and %d community reactions about voice AI.\n\n",
		len(d.NewsItems), len(d.Reactions)))

	if d.ExecutiveSummary != "" {
		b.WriteString("EXECUTIVE SUMMARY\n")
		b.WriteString(d.ExecutiveSummary + "\n\n")
	}

	if d.Trends != nil && d.Trends.Available {
		b.WriteString("TRENDS\n")
		b.WriteString(d.Trends.Summary + "\n")
		for _, insight := range d.Trends.Insights {
			b.WriteString("- " + insight + "\n")
		}
		b.WriteString("\n")
	}

	if len(d.NewsItems) == 0 {
		b.WriteString("No new AI voice news today.\n")
	} else {
		b.WriteString("TOP STORIES\n")
		for _, item := range TopArticles(d.NewsItems, topStoryCount) {
			b.WriteString(fmt.Sprintf("- %s (%s)\n  %s\n", item.Title, item.Source, item.URL))
		}
		b.WriteString("\n")
	}

	if len(d.Reactions) > 0 {
		b.WriteString("COMMUNITY REACTIONS\n")
		names, grouped := reactionsByPlatform(d.Reactions)
		for _, platform := range names {
			for i, r := range grouped[platform] {
				if i >= 3 {
					break
				}
				b.WriteString(fmt.Sprintf("- [%s] r/%s (%d points): %s\n",
					platform, r.Subreddit, r.Score, truncate(reactionBody(r), 120)))
			}
		}
	}

	return b.String()
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

// baseHTML wraps digest content in a consistent email shell.
func baseHTML(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 640px; margin: 0 auto; padding: 20px; }
        .header { background: #1f2937; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 22px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .content h2 { font-size: 18px; border-bottom: 1px solid #e5e7eb; padding-bottom: 6px; }
        .article { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 12px 15px; margin: 12px 0; }
        .article h3 { margin: 0 0 6px 0; font-size: 16px; }
        .reaction { background: white; border-left: 3px solid #6366f1; padding: 8px 12px; margin: 8px 0; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .meta { color: #6b7280; font-size: 13px; }
        .stats { color: #374151; }
        a { color: #2563eb; text-decoration: none; }
        .footer { background: #f3f4f6; padding: 12px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>Generated by VoiceWatch</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), body)
}
