// Package pipeline orchestrates the scrape and digest cycles: fetching
// articles and community posts, filtering them for voice AI relevance,
// summarizing, persisting and finally delivering digests.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/voicewatch/voicewatch/internal/cache"
	"github.com/voicewatch/voicewatch/internal/config"
	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
	"github.com/voicewatch/voicewatch/internal/metrics"
	"github.com/voicewatch/voicewatch/internal/notify"
	"github.com/voicewatch/voicewatch/internal/scrape"
	"github.com/voicewatch/voicewatch/internal/sentiment"
	"github.com/voicewatch/voicewatch/internal/summarize"
	"github.com/voicewatch/voicewatch/internal/trends"
)

// Feed descriptions shorter than this get the full article fetched
// before summarization.
const minContentRunes = 200

// NewsSource delivers candidate articles and can pull full article
// bodies on demand.
type NewsSource interface {
	FetchAll(ctx context.Context) ([]content.ContentItem, error)
	ExtractArticle(ctx context.Context, pageURL string) (*scrape.ArticleContent, error)
}

// SocialSource delivers community posts.
type SocialSource interface {
	Enabled() bool
	FetchAll(ctx context.Context) ([]content.ReactionItem, error)
}

// Classifier decides whether a piece of text is about voice AI.
type Classifier interface {
	Classify(text string) (bool, []string)
}

// Summarizer produces article summaries and the digest's executive
// summary.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) string
	ExecutiveSummary(ctx context.Context, headlines []string) string
}

// Storage is the slice of the store the pipeline needs.
type Storage interface {
	SaveContentItem(item *content.ContentItem) (string, error)
	SaveReaction(r *content.ReactionItem) (string, error)
	SaveRunSummary(run *content.RunSummary) (string, error)
	GetRecentRuns(limit int) ([]content.RunSummary, error)
	GetRecentItems(since time.Duration) ([]content.ContentItem, error)
	GetRecentReactions(since time.Duration) ([]content.ReactionItem, error)
}

// Notifier delivers a rendered digest over one channel.
type Notifier interface {
	Enabled() bool
	SendDigest(ctx context.Context, d *notify.Digest) error
}

// Pipeline wires the collaborators together. Fields are plain so main
// can assemble it as a literal.
type Pipeline struct {
	Config     *config.Config
	News       NewsSource
	Social     SocialSource
	Classifier Classifier
	Summarizer Summarizer
	Store      Storage
	Seen       *cache.SeenCache
	Email      Notifier
	Slack      Notifier
}

// ScrapeResults summarizes one scrape cycle.
type ScrapeResults struct {
	ArticlesFound     int
	ArticlesProcessed int
	RedditPosts       int
}

// RunScrape executes one collection cycle. Individual item failures are
// logged and skipped; only a total news fetch failure is returned as an
// error.
func (p *Pipeline) RunScrape(ctx context.Context) (*ScrapeResults, error) {
	start := time.Now()
	logger.Info("🔄 scrape run started")

	items, err := p.News.FetchAll(ctx)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return nil, fmt.Errorf("news fetch failed: %w", err)
	}
	metrics.Global.AddArticlesFound(len(items))

	results := &ScrapeResults{ArticlesFound: len(items)}
	for i := range items {
		if ctx.Err() != nil {
			break
		}
		if p.processArticle(ctx, items[i]) {
			results.ArticlesProcessed++
		}
	}

	reactions := p.collectReactions(ctx)
	results.RedditPosts = len(reactions)

	sentiments := make(map[string]int)
	subreddits := make(map[string]int)
	for _, r := range reactions {
		sentiments[r.Sentiment]++
		if r.Subreddit != "" {
			subreddits[r.Subreddit]++
		}
	}

	run := content.NewRunSummary(results.ArticlesFound, results.ArticlesProcessed,
		results.RedditPosts, sentiments, subreddits)
	if _, err := p.Store.SaveRunSummary(run); err != nil {
		logger.Warn("⚠️ failed to store run summary", "error", err)
	}

	p.Seen.Cleanup()
	if err := p.Seen.Save(); err != nil {
		logger.Warn("⚠️ failed to save seen cache", "error", err)
	}

	metrics.Global.SetLastRun()
	metrics.Global.RecordRunDuration(time.Since(start))
	logger.Info("✅ scrape run finished",
		"found", results.ArticlesFound,
		"processed", results.ArticlesProcessed,
		"reddit", results.RedditPosts,
		"took", time.Since(start).Round(time.Millisecond))
	return results, nil
}

// processArticle runs one item through dedup, relevance, enrichment,
// summarization and storage. Returns true when the item was stored.
func (p *Pipeline) processArticle(ctx context.Context, item content.ContentItem) bool {
	hash := cache.Hash(item.Title, item.URL)
	if p.Seen.Seen(hash) {
		metrics.Global.IncrementDuplicatesSkipped()
		logger.Debug("skipping already seen item", "title", item.Title)
		return false
	}

	relevant, matched := p.Classifier.Classify(item.Title + " " + item.Content)
	if !relevant {
		logger.Debug("item not relevant", "title", item.Title)
		return false
	}
	metrics.Global.IncrementArticlesRelevant()
	item.MatchedKeywords = matched

	// Thin feed descriptions make for thin summaries. Fetch the full
	// article, and reclassify in case the body changes the verdict.
	if len([]rune(item.Content)) < minContentRunes {
		if article, err := p.News.ExtractArticle(ctx, item.URL); err == nil && article.Content != "" {
			item.Content = article.Content
			if still, more := p.Classifier.Classify(item.Title + " " + item.Content); still {
				item.MatchedKeywords = more
			}
		} else if err != nil {
			logger.Debug("article extraction failed", "url", item.URL, "error", err)
		}
	}

	body := item.Content
	if body == "" {
		body = item.Title
	}
	item.Summary = p.Summarizer.Summarize(ctx, item.Title, body)
	item.Sentiment = sentiment.Analyze(item.Title + " " + item.Content)

	if _, err := p.Store.SaveContentItem(&item); err != nil {
		logger.Warn("❌ failed to store item", "title", item.Title, "error", err)
		return false
	}
	metrics.Global.IncrementArticlesStored()
	p.Seen.Mark(hash, item.Title, item.URL, item.Source)
	return true
}

// collectReactions fetches community posts, keeps the relevant ones up
// to the configured cap and stores them. Failures here never fail the
// run; news delivery matters more than community color.
func (p *Pipeline) collectReactions(ctx context.Context) []content.ReactionItem {
	if p.Social == nil || !p.Social.Enabled() {
		logger.Info("💬 reddit scraping disabled, skipping")
		return nil
	}

	posts, err := p.Social.FetchAll(ctx)
	if err != nil {
		logger.Warn("⚠️ reddit fetch failed", "error", err)
		return nil
	}

	max := p.Config.MaxRedditPosts
	taken := make(map[string]bool)
	var kept []content.ReactionItem
	for i := range posts {
		if max > 0 && len(kept) >= max {
			break
		}
		post := posts[i]

		// One post per subreddit keeps the digest from being swamped by
		// a single community's hot page.
		if post.Subreddit != "" && taken[post.Subreddit] {
			continue
		}

		relevant, matched := p.Classifier.Classify(post.Title + " " + post.Content)
		if !relevant {
			continue
		}
		post.MatchedKeywords = matched

		text := post.Content
		if text == "" {
			text = post.Title
		}
		post.Summary = summarize.ExtractiveMini(text)
		post.Sentiment = sentiment.Analyze(post.Title + " " + post.Content)
		post.SentimentEmoji = sentiment.Emoji(post.Sentiment)

		if _, err := p.Store.SaveReaction(&post); err != nil {
			logger.Warn("❌ failed to store reaction", "title", post.Title, "error", err)
			continue
		}
		metrics.Global.IncrementRedditPostsStored()
		taken[post.Subreddit] = true
		kept = append(kept, post)
	}

	logger.Info("💬 reddit posts processed", "fetched", len(posts), "kept", len(kept))
	return kept
}

// RunDigest gathers everything from the lookback window and sends it
// out. With nothing new the digest is skipped silently. The run fails
// only when every configured channel fails.
func (p *Pipeline) RunDigest(ctx context.Context) error {
	logger.Info("📰 digest run started")

	lookback := p.Config.DigestLookback
	items, err := p.Store.GetRecentItems(lookback)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("failed to load recent items: %w", err)
	}

	reactions, err := p.Store.GetRecentReactions(lookback)
	if err != nil {
		logger.Warn("⚠️ failed to load recent reactions", "error", err)
	}

	if len(items) == 0 && len(reactions) == 0 {
		logger.Info("📭 nothing new to send, skipping digest")
		return nil
	}

	digest := &notify.Digest{
		Date:      time.Now().Format("2006-01-02"),
		NewsItems: items,
		Reactions: reactions,
	}

	if runs, err := p.Store.GetRecentRuns(p.Config.RunHistoryLimit); err != nil {
		logger.Warn("⚠️ failed to load run history for trends", "error", err)
	} else {
		digest.Trends = trends.Analyze(nil, runs)
	}

	digest.ExecutiveSummary = p.Summarizer.ExecutiveSummary(ctx, digestHeadlines(items, reactions))

	configured, delivered := 0, 0
	if p.Email != nil && p.Email.Enabled() {
		configured++
		if err := p.Email.SendDigest(ctx, digest); err != nil {
			logger.Error("❌ email digest failed", "error", err)
		} else {
			metrics.Global.IncrementEmailsSent()
			delivered++
		}
	}
	if p.Slack != nil && p.Slack.Enabled() {
		configured++
		if err := p.Slack.SendDigest(ctx, digest); err != nil {
			logger.Error("❌ slack digest failed", "error", err)
		} else {
			metrics.Global.IncrementSlackMessagesSent()
			delivered++
		}
	}

	if configured == 0 {
		logger.Info("📭 no delivery channels configured")
		return nil
	}
	if delivered == 0 {
		return fmt.Errorf("digest delivery failed on all %d channels", configured)
	}

	logger.Info("✅ digest run finished",
		"items", len(items), "reactions", len(reactions),
		"channels", delivered)
	return nil
}

// digestHeadlines builds the material the executive summary works from.
func digestHeadlines(items []content.ContentItem, reactions []content.ReactionItem) []string {
	var lines []string
	for _, item := range notify.TopArticles(items, 10) {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", item.Title, item.Source, item.Summary))
	}
	for i, r := range reactions {
		if i >= 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("r/%s: %s", r.Subreddit, r.Title))
	}
	return lines
}

// Run executes one scrape cycle followed by one digest cycle.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.RunScrape(ctx); err != nil {
		return err
	}
	return p.RunDigest(ctx)
}
