// Package content defines the records that flow through the pipeline and
// into the store.
package content

import (
	"strings"
	"time"
)

// ContentItem is a scraped article or post under consideration for the
// digest. URL is the natural key; the store rejects nothing but never
// keeps two records with the same URL.
type ContentItem struct {
	ID              string     `json:"id,omitempty"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	Content         string     `json:"content,omitempty"`
	Source          string     `json:"source,omitempty"`
	Published       string     `json:"published,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	Summary         string     `json:"summary,omitempty"`
	Sentiment       string     `json:"sentiment,omitempty"`
	MatchedKeywords []string   `json:"matched_keywords,omitempty"`
	StoredAt        time.Time  `json:"stored_at,omitempty"`
}

// ReactionItem is a social-media post reacting to voice AI news.
type ReactionItem struct {
	ID              string    `json:"id,omitempty"`
	URL             string    `json:"url,omitempty"`
	Platform        string    `json:"platform"`
	Subreddit       string    `json:"subreddit,omitempty"`
	Title           string    `json:"title"`
	Content         string    `json:"content,omitempty"`
	Author          string    `json:"author,omitempty"`
	Score           int       `json:"score"`
	NumComments     int       `json:"num_comments"`
	Sentiment       string    `json:"sentiment,omitempty"`
	SentimentEmoji  string    `json:"sentiment_emoji,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	MatchedKeywords []string  `json:"matched_keywords,omitempty"`
	ExternalURL     string    `json:"external_url,omitempty"`
	CreatedDate     string    `json:"created_date,omitempty"`
	StoredAt        time.Time `json:"stored_at,omitempty"`
}

// NaturalKey is the value used for duplicate detection: the permalink when
// the reaction has one, otherwise the raw content string.
func (r *ReactionItem) NaturalKey() string {
	if r.URL != "" {
		return r.URL
	}
	return r.Content
}

// RunSummary aggregates the counters of one pipeline execution. It is
// append-only; the store keeps a bounded history of them.
type RunSummary struct {
	ID                string         `json:"id,omitempty"`
	Timestamp         time.Time      `json:"timestamp"`
	Date              string         `json:"date"`
	ArticlesFound     int            `json:"articles_found"`
	ArticlesProcessed int            `json:"articles_processed"`
	RedditPosts       int            `json:"reddit_posts"`
	SentimentSummary  map[string]int `json:"sentiment_summary"`
	SubredditActivity map[string]int `json:"subreddit_activity"`
}

// NewRunSummary stamps the timestamp and date and normalizes nil maps.
func NewRunSummary(found, processed, redditPosts int, sentiments, subreddits map[string]int) *RunSummary {
	now := time.Now()
	if sentiments == nil {
		sentiments = map[string]int{}
	}
	if subreddits == nil {
		subreddits = map[string]int{}
	}
	return &RunSummary{
		Timestamp:         now,
		Date:              now.Format("2006-01-02"),
		ArticlesFound:     found,
		ArticlesProcessed: processed,
		RedditPosts:       redditPosts,
		SentimentSummary:  sentiments,
		SubredditActivity: subreddits,
	}
}

var whenFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseWhen parses the timestamp formats seen in feeds and stored records.
// Unparseable input yields nil so callers can fail open.
func ParseWhen(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range whenFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
