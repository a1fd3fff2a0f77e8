package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFound     int64
	ArticlesRelevant  int64
	ArticlesStored    int64
	RedditPostsStored int64
	DuplicatesSkipped int64
	SummaryFallbacks  int64
	StoreFallbacks    int64
	StoreRecoveries   int64
	EmailsSent        int64
	SlackMessagesSent int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddArticlesFound(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFound += int64(n)
}

func (m *Metrics) IncrementArticlesRelevant() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesRelevant++
}

func (m *Metrics) IncrementArticlesStored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesStored++
}

func (m *Metrics) IncrementRedditPostsStored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedditPostsStored++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementSummaryFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryFallbacks++
}

func (m *Metrics) IncrementStoreFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreFallbacks++
}

func (m *Metrics) IncrementStoreRecoveries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreRecoveries++
}

func (m *Metrics) IncrementEmailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailsSent++
}

func (m *Metrics) IncrementSlackMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackMessagesSent++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_found":          m.ArticlesFound,
		"articles_relevant":       m.ArticlesRelevant,
		"articles_stored":         m.ArticlesStored,
		"reddit_posts_stored":     m.RedditPostsStored,
		"duplicates_skipped":      m.DuplicatesSkipped,
		"summary_fallbacks":       m.SummaryFallbacks,
		"store_fallbacks":         m.StoreFallbacks,
		"store_recoveries":        m.StoreRecoveries,
		"emails_sent":             m.EmailsSent,
		"slack_messages_sent":     m.SlackMessagesSent,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
