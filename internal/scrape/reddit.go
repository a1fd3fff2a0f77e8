package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
)

// Posts older than this are stale chatter, not reactions to current news.
const redditMaxAge = 24 * time.Hour

var defaultSubreddits = []string{
	"MachineLearning",
	"LanguageTechnology",
	"artificial",
	"OpenAI",
	"singularity",
	"ArtificialIntelligence",
	"deeplearning",
	"ChatGPT",
	"LocalLLaMA",
	"MediaSynthesis",
	"compsci",
	"technology",
}

// RedditScraper pulls hot posts from the public listing endpoint. Reddit
// only asks for a descriptive User-Agent; without one configured the
// scraper stays disabled.
type RedditScraper struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	subreddits []string
	pause      time.Duration
}

func NewRedditScraper(userAgent string, timeout time.Duration) *RedditScraper {
	return &RedditScraper{
		client:     &http.Client{Timeout: timeout},
		baseURL:    "https://www.reddit.com",
		userAgent:  userAgent,
		subreddits: defaultSubreddits,
		pause:      time.Second,
	}
}

// Enabled reports whether the scraper is configured to run.
func (rs *RedditScraper) Enabled() bool {
	return rs.userAgent != ""
}

// Limit caps how many subreddits are visited. Smoke runs use this to
// keep the request count down.
func (rs *RedditScraper) Limit(n int) {
	if n > 0 && n < len(rs.subreddits) {
		rs.subreddits = rs.subreddits[:n]
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	URL         string  `json:"url"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

// FetchAll walks the monitored subreddits and returns their fresh posts.
// Relevance filtering happens later in the pipeline; this only drops
// stickied and stale posts. Subreddit failures are logged and skipped.
func (rs *RedditScraper) FetchAll(ctx context.Context) ([]content.ReactionItem, error) {
	if !rs.Enabled() {
		return nil, nil
	}

	var all []content.ReactionItem
	for i, sub := range rs.subreddits {
		if i > 0 && rs.pause > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(rs.pause):
			}
		}

		reactions, err := rs.fetchSubreddit(ctx, sub)
		if err != nil {
			logger.Warn("⚠️ subreddit failed", "subreddit", sub, "error", err)
			continue
		}
		all = append(all, reactions...)
	}

	logger.Info("💬 reddit scrape finished", "posts", len(all))
	return all, nil
}

func (rs *RedditScraper) fetchSubreddit(ctx context.Context, subreddit string) ([]content.ReactionItem, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=20", rs.baseURL, subreddit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", rs.userAgent)

	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	cutoff := time.Now().Add(-redditMaxAge)
	var reactions []content.ReactionItem

	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}

		created := time.Unix(int64(post.CreatedUTC), 0)
		if created.Before(cutoff) {
			continue
		}

		author := post.Author
		if author == "" {
			author = "[deleted]"
		}

		reactions = append(reactions, content.ReactionItem{
			Platform:    "reddit",
			Subreddit:   subreddit,
			Title:       cleanTitle(post.Title),
			Content:     strings.TrimSpace(post.SelfText),
			URL:         "https://reddit.com" + post.Permalink,
			ExternalURL: post.URL,
			Author:      author,
			Score:       post.Score,
			NumComments: post.NumComments,
			CreatedDate: created.Format("2006-01-02 15:04"),
		})
	}
	return reactions, nil
}
