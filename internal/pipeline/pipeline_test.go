package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicewatch/voicewatch/internal/cache"
	"github.com/voicewatch/voicewatch/internal/config"
	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/notify"
	"github.com/voicewatch/voicewatch/internal/scrape"
)

type fakeNews struct {
	items        []content.ContentItem
	err          error
	extracted    map[string]string
	extractCalls int
}

func (f *fakeNews) FetchAll(ctx context.Context) ([]content.ContentItem, error) {
	return f.items, f.err
}

func (f *fakeNews) ExtractArticle(ctx context.Context, pageURL string) (*scrape.ArticleContent, error) {
	f.extractCalls++
	body, ok := f.extracted[pageURL]
	if !ok {
		return nil, errors.New("no article")
	}
	return &scrape.ArticleContent{URL: pageURL, Content: body}, nil
}

type fakeSocial struct {
	enabled bool
	posts   []content.ReactionItem
	err     error
}

func (f *fakeSocial) Enabled() bool { return f.enabled }

func (f *fakeSocial) FetchAll(ctx context.Context) ([]content.ReactionItem, error) {
	return f.posts, f.err
}

// fakeClassifier accepts anything containing its needle.
type fakeClassifier struct{ needle string }

func (f *fakeClassifier) Classify(text string) (bool, []string) {
	if strings.Contains(strings.ToLower(text), f.needle) {
		return true, []string{f.needle}
	}
	return false, nil
}

type fakeSummarizer struct {
	headlines []string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, body string) string {
	return "summary: " + title
}

func (f *fakeSummarizer) ExecutiveSummary(ctx context.Context, headlines []string) string {
	f.headlines = headlines
	return "the landscape shifted"
}

type fakeStorage struct {
	items           []content.ContentItem
	reactions       []content.ReactionItem
	runs            []content.RunSummary
	recentItems     []content.ContentItem
	recentReactions []content.ReactionItem
	saveItemErr     error
	recentItemsErr  error
}

func (f *fakeStorage) SaveContentItem(item *content.ContentItem) (string, error) {
	if f.saveItemErr != nil {
		return "", f.saveItemErr
	}
	f.items = append(f.items, *item)
	return "id", nil
}

func (f *fakeStorage) SaveReaction(r *content.ReactionItem) (string, error) {
	f.reactions = append(f.reactions, *r)
	return "id", nil
}

func (f *fakeStorage) SaveRunSummary(run *content.RunSummary) (string, error) {
	f.runs = append(f.runs, *run)
	return run.ID, nil
}

func (f *fakeStorage) GetRecentRuns(limit int) ([]content.RunSummary, error) {
	return f.runs, nil
}

func (f *fakeStorage) GetRecentItems(since time.Duration) ([]content.ContentItem, error) {
	return f.recentItems, f.recentItemsErr
}

func (f *fakeStorage) GetRecentReactions(since time.Duration) ([]content.ReactionItem, error) {
	return f.recentReactions, nil
}

type fakeNotifier struct {
	enabled bool
	err     error
	sent    []*notify.Digest
}

func (f *fakeNotifier) Enabled() bool { return f.enabled }

func (f *fakeNotifier) SendDigest(ctx context.Context, d *notify.Digest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, d)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxRedditPosts:  2,
		DigestLookback:  24 * time.Hour,
		RunHistoryLimit: 5,
	}
}

func testPipeline(t *testing.T, news *fakeNews, social *fakeSocial, st *fakeStorage) *Pipeline {
	t.Helper()
	if social == nil {
		social = &fakeSocial{}
	}
	return &Pipeline{
		Config:     testConfig(),
		News:       news,
		Social:     social,
		Classifier: &fakeClassifier{needle: "voice"},
		Summarizer: &fakeSummarizer{},
		Store:      st,
		Seen:       cache.NewSeenCache(filepath.Join(t.TempDir(), "seen.json"), time.Hour),
	}
}

func TestRunScrapeStoresRelevantArticles(t *testing.T) {
	news := &fakeNews{items: []content.ContentItem{
		{Title: "Voice AI startup funding", URL: "https://example.com/1", Content: strings.Repeat("voice cloning news. ", 20)},
		{Title: "New voice model shipped", URL: "https://example.com/2", Content: strings.Repeat("speech synthesis update. ", 20)},
		{Title: "Unrelated database release", URL: "https://example.com/3", Content: strings.Repeat("tables and rows. ", 20)},
	}}
	st := &fakeStorage{}
	p := testPipeline(t, news, nil, st)

	results, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, results.ArticlesFound)
	assert.Equal(t, 2, results.ArticlesProcessed)
	require.Len(t, st.items, 2)
	assert.Equal(t, "summary: Voice AI startup funding", st.items[0].Summary)
	assert.Equal(t, []string{"voice"}, st.items[0].MatchedKeywords)
	assert.NotEmpty(t, st.items[0].Sentiment)

	require.Len(t, st.runs, 1)
	assert.Equal(t, 3, st.runs[0].ArticlesFound)
	assert.Equal(t, 2, st.runs[0].ArticlesProcessed)
}

func TestRunScrapeSecondRunSkipsSeen(t *testing.T) {
	news := &fakeNews{items: []content.ContentItem{
		{Title: "Voice AI roundup", URL: "https://example.com/1", Content: strings.Repeat("voice news. ", 30)},
	}}
	st := &fakeStorage{}
	p := testPipeline(t, news, nil, st)

	first, err := p.RunScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ArticlesProcessed)

	second, err := p.RunScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.ArticlesProcessed)
	assert.Len(t, st.items, 1)
}

func TestRunScrapeTotalFetchFailure(t *testing.T) {
	news := &fakeNews{err: errors.New("all 16 news sources failed")}
	p := testPipeline(t, news, nil, &fakeStorage{})

	results, err := p.RunScrape(context.Background())

	require.Error(t, err)
	assert.Nil(t, results)
}

func TestRunScrapeEnrichesThinContent(t *testing.T) {
	full := strings.Repeat("The voice model impressed reviewers. ", 20)
	news := &fakeNews{
		items: []content.ContentItem{
			{Title: "Voice model review", URL: "https://example.com/thin", Content: "voice"},
		},
		extracted: map[string]string{"https://example.com/thin": full},
	}
	st := &fakeStorage{}
	p := testPipeline(t, news, nil, st)

	_, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, news.extractCalls)
	require.Len(t, st.items, 1)
	assert.Equal(t, full, st.items[0].Content)
}

func TestRunScrapeExtractionFailureKeepsItem(t *testing.T) {
	news := &fakeNews{
		items: []content.ContentItem{
			{Title: "Voice cloning short note", URL: "https://example.com/404", Content: "voice here"},
		},
	}
	st := &fakeStorage{}
	p := testPipeline(t, news, nil, st)

	results, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, results.ArticlesProcessed)
	require.Len(t, st.items, 1)
	assert.Equal(t, "voice here", st.items[0].Content)
}

func TestRunScrapeFailedStoreIsRetriedNextRun(t *testing.T) {
	news := &fakeNews{items: []content.ContentItem{
		{Title: "Voice AI news", URL: "https://example.com/1", Content: strings.Repeat("voice. ", 40)},
	}}
	st := &fakeStorage{saveItemErr: errors.New("disk full")}
	p := testPipeline(t, news, nil, st)

	results, err := p.RunScrape(context.Background())
	require.NoError(t, err, "store failures are isolated per item")
	assert.Equal(t, 0, results.ArticlesProcessed)

	// The item was not marked seen, so the next run picks it up again.
	st.saveItemErr = nil
	results, err = p.RunScrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, results.ArticlesProcessed)
}

func TestRunScrapeRedditFilterAndCap(t *testing.T) {
	social := &fakeSocial{
		enabled: true,
		posts: []content.ReactionItem{
			{Title: "voice cloning is wild", Subreddit: "MachineLearning", Platform: "reddit", URL: "https://reddit.com/1"},
			{Title: "gaming rig question", Subreddit: "buildapc", Platform: "reddit", URL: "https://reddit.com/2"},
			{Title: "new voice model demo", Subreddit: "OpenAI", Platform: "reddit", URL: "https://reddit.com/3"},
			{Title: "another voice thread", Subreddit: "OpenAI", Platform: "reddit", URL: "https://reddit.com/4"},
		},
	}
	news := &fakeNews{}
	st := &fakeStorage{}
	p := testPipeline(t, news, social, st)

	results, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, results.RedditPosts, "capped at MaxRedditPosts")
	require.Len(t, st.reactions, 2)
	assert.NotEmpty(t, st.reactions[0].Sentiment)
	assert.NotEmpty(t, st.reactions[0].SentimentEmoji)
	assert.NotEmpty(t, st.reactions[0].Summary)

	require.Len(t, st.runs, 1)
	assert.Equal(t, 2, st.runs[0].RedditPosts)
	assert.Equal(t, map[string]int{"MachineLearning": 1, "OpenAI": 1}, st.runs[0].SubredditActivity)
}

func TestRunScrapeOnePostPerSubreddit(t *testing.T) {
	social := &fakeSocial{
		enabled: true,
		posts: []content.ReactionItem{
			{Title: "voice cloning is wild", Subreddit: "MachineLearning", Platform: "reddit", URL: "https://reddit.com/1"},
			{Title: "more voice talk", Subreddit: "MachineLearning", Platform: "reddit", URL: "https://reddit.com/2"},
			{Title: "new voice model demo", Subreddit: "OpenAI", Platform: "reddit", URL: "https://reddit.com/3"},
		},
	}
	st := &fakeStorage{}
	p := testPipeline(t, &fakeNews{}, social, st)
	p.Config.MaxRedditPosts = 10

	results, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, results.RedditPosts, "second MachineLearning post skipped")
	require.Len(t, st.reactions, 2)
	assert.Equal(t, "https://reddit.com/1", st.reactions[0].URL)
	assert.Equal(t, "https://reddit.com/3", st.reactions[1].URL)
}

func TestRunScrapeRedditFailureIsolated(t *testing.T) {
	social := &fakeSocial{enabled: true, err: errors.New("reddit down")}
	news := &fakeNews{items: []content.ContentItem{
		{Title: "Voice AI news", URL: "https://example.com/1", Content: strings.Repeat("voice. ", 40)},
	}}
	p := testPipeline(t, news, social, &fakeStorage{})

	results, err := p.RunScrape(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, results.ArticlesProcessed)
	assert.Equal(t, 0, results.RedditPosts)
}

func TestRunDigestSendsToChannels(t *testing.T) {
	st := &fakeStorage{
		recentItems: []content.ContentItem{
			{Title: "Voice AI breakthrough", URL: "https://example.com/1", Source: "AI News", Summary: "big news"},
		},
		recentReactions: []content.ReactionItem{
			{Title: "community take", Subreddit: "OpenAI", Platform: "reddit"},
		},
		runs: []content.RunSummary{
			{Date: "2026-08-20", RedditPosts: 5, SentimentSummary: map[string]int{"positive": 3}},
			{Date: "2026-08-19", RedditPosts: 2, SentimentSummary: map[string]int{"negative": 2}},
		},
	}
	email := &fakeNotifier{enabled: true}
	slack := &fakeNotifier{enabled: true}
	p := testPipeline(t, &fakeNews{}, nil, st)
	p.Email = email
	p.Slack = slack

	err := p.RunDigest(context.Background())

	require.NoError(t, err)
	require.Len(t, email.sent, 1)
	require.Len(t, slack.sent, 1)

	d := email.sent[0]
	assert.Equal(t, time.Now().Format("2006-01-02"), d.Date)
	assert.Len(t, d.NewsItems, 1)
	assert.Len(t, d.Reactions, 1)
	assert.Equal(t, "the landscape shifted", d.ExecutiveSummary)
	require.NotNil(t, d.Trends)
	assert.True(t, d.Trends.Available)

	headlines := p.Summarizer.(*fakeSummarizer).headlines
	assert.Contains(t, headlines, "Voice AI breakthrough (AI News): big news")
	assert.Contains(t, headlines, "r/OpenAI: community take")
}

func TestRunDigestSkipsWhenEmpty(t *testing.T) {
	email := &fakeNotifier{enabled: true}
	p := testPipeline(t, &fakeNews{}, nil, &fakeStorage{})
	p.Email = email

	err := p.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Empty(t, email.sent)
}

func TestRunDigestAllChannelsFail(t *testing.T) {
	st := &fakeStorage{recentItems: []content.ContentItem{{Title: "x", URL: "https://example.com/x"}}}
	p := testPipeline(t, &fakeNews{}, nil, st)
	p.Email = &fakeNotifier{enabled: true, err: errors.New("smtp down")}
	p.Slack = &fakeNotifier{enabled: true, err: errors.New("slack down")}

	err := p.RunDigest(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 channels")
}

func TestRunDigestPartialDeliveryCounts(t *testing.T) {
	st := &fakeStorage{recentItems: []content.ContentItem{{Title: "x", URL: "https://example.com/x"}}}
	slack := &fakeNotifier{enabled: true}
	p := testPipeline(t, &fakeNews{}, nil, st)
	p.Email = &fakeNotifier{enabled: true, err: errors.New("smtp down")}
	p.Slack = slack

	err := p.RunDigest(context.Background())

	require.NoError(t, err)
	assert.Len(t, slack.sent, 1)
}

func TestRunDigestNoChannelsConfigured(t *testing.T) {
	st := &fakeStorage{recentItems: []content.ContentItem{{Title: "x", URL: "https://example.com/x"}}}
	p := testPipeline(t, &fakeNews{}, nil, st)

	err := p.RunDigest(context.Background())

	assert.NoError(t, err)
}

func TestRunDigestStoreReadFailure(t *testing.T) {
	st := &fakeStorage{recentItemsErr: errors.New("both backends broken")}
	p := testPipeline(t, &fakeNews{}, nil, st)

	err := p.RunDigest(context.Background())

	require.Error(t, err)
}
