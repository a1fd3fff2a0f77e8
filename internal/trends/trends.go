// Package trends compares the current run against stored history to
// describe where sentiment, community activity and news volume are
// heading.
package trends

import (
	"fmt"
	"sort"

	"github.com/voicewatch/voicewatch/internal/content"
)

const (
	DirectionImproving = "improving"
	DirectionDeclining = "declining"
	DirectionStable    = "stable"
)

// SeriesTrend describes one measured series across the analyzed runs.
type SeriesTrend struct {
	Direction string
	Emoji     string
	Change    float64
	Current   float64
	Values    []float64 // oldest first
}

// SubredditTrend describes activity for a single subreddit.
type SubredditTrend struct {
	Name      string
	Direction string
	Emoji     string
	AvgPosts  float64
	Current   int
}

// Report is the digest-ready trend analysis.
type Report struct {
	Available    bool
	RunsAnalyzed int
	DateRange    string
	Sentiment    SeriesTrend
	Activity     SeriesTrend
	NewsVolume   SeriesTrend
	Subreddits   []SubredditTrend
	Insights     []string
	Summary      string
}

// Analyze builds a trend report from the current run and the stored
// history, which arrives newest first. With no history there is nothing
// to compare against and the report comes back unavailable.
func Analyze(current *content.RunSummary, history []content.RunSummary) *Report {
	// Reorder to oldest first so "improving" means improving toward now.
	runs := make([]content.RunSummary, 0, len(history)+1)
	for i := len(history) - 1; i >= 0; i-- {
		runs = append(runs, history[i])
	}
	if current != nil {
		runs = append(runs, *current)
	}

	if len(runs) < 2 {
		return &Report{Available: false}
	}

	sentimentValues := make([]float64, len(runs))
	activityValues := make([]float64, len(runs))
	newsValues := make([]float64, len(runs))
	for i, run := range runs {
		sentimentValues[i] = sentimentScore(run.SentimentSummary)
		activityValues[i] = float64(run.RedditPosts)
		newsValues[i] = float64(run.ArticlesProcessed)
	}

	sentiment := seriesTrend(sentimentValues)
	activity := seriesTrend(activityValues)
	news := seriesTrend(newsValues)

	return &Report{
		Available:    true,
		RunsAnalyzed: len(runs),
		DateRange:    fmt.Sprintf("%s to %s", runs[0].Date, runs[len(runs)-1].Date),
		Sentiment:    sentiment,
		Activity:     activity,
		NewsVolume:   news,
		Subreddits:   subredditTrends(runs),
		Insights:     insights(sentiment.Direction, activity.Direction, news.Direction),
		Summary: fmt.Sprintf("Sentiment: %s | Activity: %s | News: %s",
			sentiment.Direction, activity.Direction, news.Direction),
	}
}

// sentimentScore collapses label counts into a score from -1 (all
// negative) to +1 (all positive).
func sentimentScore(counts map[string]int) float64 {
	positive := counts["positive"]
	negative := counts["negative"]
	neutral := counts["neutral"]

	total := positive + negative + neutral
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

func seriesTrend(values []float64) SeriesTrend {
	dir := direction(values)
	return SeriesTrend{
		Direction: dir,
		Emoji:     emojiFor(dir),
		Change:    values[len(values)-1] - values[0],
		Current:   values[len(values)-1],
		Values:    values,
	}
}

// direction compares the average of the earlier half against the later
// half. Values must be ordered oldest first.
func direction(values []float64) string {
	if len(values) < 2 {
		return DirectionStable
	}

	half := len(values) / 2
	earlier := mean(values[:half])
	later := mean(values[half:])

	switch diff := later - earlier; {
	case diff > 0.1:
		return DirectionImproving
	case diff < -0.1:
		return DirectionDeclining
	default:
		return DirectionStable
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func emojiFor(direction string) string {
	switch direction {
	case DirectionImproving:
		return "📈"
	case DirectionDeclining:
		return "📉"
	default:
		return "➡️"
	}
}

// subredditTrends ranks the five most active subreddits across the
// analyzed runs. Subreddits seen in only one run have no trend yet.
func subredditTrends(runs []content.RunSummary) []SubredditTrend {
	series := make(map[string][]float64)
	for _, run := range runs {
		for name, count := range run.SubredditActivity {
			series[name] = append(series[name], float64(count))
		}
	}

	var out []SubredditTrend
	for name, values := range series {
		if len(values) < 2 {
			continue
		}
		dir := direction(values)
		out = append(out, SubredditTrend{
			Name:      name,
			Direction: dir,
			Emoji:     emojiFor(dir),
			AvgPosts:  mean(values),
			Current:   int(values[len(values)-1]),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgPosts != out[j].AvgPosts {
			return out[i].AvgPosts > out[j].AvgPosts
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func insights(sentiment, activity, news string) []string {
	var out []string

	switch sentiment {
	case DirectionImproving:
		out = append(out, "🎉 Community sentiment is becoming more positive")
	case DirectionDeclining:
		out = append(out, "⚠️ Community sentiment is becoming more negative")
	default:
		out = append(out, "😐 Community sentiment remains stable")
	}

	switch activity {
	case DirectionImproving:
		out = append(out, "📈 Reddit discussion activity is increasing")
	case DirectionDeclining:
		out = append(out, "📉 Reddit discussion activity is decreasing")
	}

	switch news {
	case DirectionImproving:
		out = append(out, "📰 More voice AI news articles are being published")
	case DirectionDeclining:
		out = append(out, "📰 Fewer voice AI news articles are being published")
	}

	if sentiment == DirectionImproving && activity == DirectionImproving {
		out = append(out, "🚀 Both sentiment and activity are trending positively!")
	} else if sentiment == DirectionDeclining && activity == DirectionDeclining {
		out = append(out, "🔍 Both sentiment and activity are declining - worth monitoring")
	}

	return out
}
