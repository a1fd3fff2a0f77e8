package store

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
	"github.com/voicewatch/voicewatch/internal/metrics"
)

// State says which backend the store is currently writing to.
type State int

const (
	StatePrimary State = iota
	StateFallback
)

func (s State) String() string {
	switch s {
	case StatePrimary:
		return "primary"
	case StateFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Backend is the persistence contract both the database and the local
// file store satisfy.
type Backend interface {
	Ping() error
	UpsertContentItem(item *content.ContentItem) (string, error)
	UpsertReaction(r *content.ReactionItem) (string, error)
	AppendRunSummary(run *content.RunSummary, keep int) (string, error)
	GetRecentRuns(limit int) ([]content.RunSummary, error)
	GetRecentItems(since time.Duration) ([]content.ContentItem, error)
	GetRecentReactions(since time.Duration) ([]content.ReactionItem, error)
	GetStats() (map[string]int, error)
	Close() error
}

// Store routes every call to the primary backend while it is reachable
// and to the local file fallback while it is not. The choice is made per
// call, so a database that comes back mid-run is picked up again without
// a restart.
type Store struct {
	mu        sync.Mutex
	primary   Backend
	fallback  Backend
	state     State
	retention int
}

// New builds the store. A missing or unreachable database is not an
// error; the store simply starts on the file fallback. Only a data
// directory that cannot be created is fatal, because then there is
// nowhere left to write.
func New(databaseURL, dataDir string, retention int) (*Store, error) {
	if retention <= 0 {
		retention = 10
	}

	fallback, err := NewFileStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback store: %w", err)
	}

	s := &Store{fallback: fallback, state: StateFallback, retention: retention}

	if databaseURL == "" {
		logger.Info("📁 no database configured, using local file store")
		return s, nil
	}

	primary, err := NewPostgresStore(databaseURL)
	if err != nil {
		logger.Warn("⚠️ primary store unavailable, starting on local files", "error", err)
		metrics.Global.IncrementStoreFallbacks()
		return s, nil
	}

	s.primary = primary
	s.state = StatePrimary
	return s, nil
}

// active probes the primary and returns the backend to use for this call,
// recording state transitions in both directions.
func (s *Store) active() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primary == nil {
		return s.fallback
	}

	if err := s.primary.Ping(); err != nil {
		if s.state == StatePrimary {
			logger.Warn("🔌 primary store unreachable, switching to local files", "error", err)
			metrics.Global.IncrementStoreFallbacks()
			s.state = StateFallback
		}
		return s.fallback
	}

	if s.state == StateFallback {
		logger.Info("✅ primary store reachable again, switching back")
		metrics.Global.IncrementStoreRecoveries()
		s.state = StatePrimary
	}
	return s.primary
}

// State reports which backend the store last wrote to.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SaveContentItem stamps missing identity fields and upserts the item,
// returning the identifier of the stored record.
func (s *Store) SaveContentItem(item *content.ContentItem) (string, error) {
	stampContentItem(item)
	return s.active().UpsertContentItem(item)
}

// SaveReaction stamps missing identity fields and upserts the reaction.
func (s *Store) SaveReaction(r *content.ReactionItem) (string, error) {
	stampReaction(r)
	return s.active().UpsertReaction(r)
}

// SaveRunSummary appends the run to the history, trimming it to the
// configured retention.
func (s *Store) SaveRunSummary(run *content.RunSummary) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
		run.Date = run.Timestamp.Format("2006-01-02")
	}
	return s.active().AppendRunSummary(run, s.retention)
}

// GetRecentRuns returns up to limit run summaries, newest first.
func (s *Store) GetRecentRuns(limit int) ([]content.RunSummary, error) {
	return s.active().GetRecentRuns(limit)
}

// GetRecentItems returns items published inside the lookback window.
func (s *Store) GetRecentItems(since time.Duration) ([]content.ContentItem, error) {
	return s.active().GetRecentItems(since)
}

// GetRecentReactions returns reactions collected inside the lookback
// window.
func (s *Store) GetRecentReactions(since time.Duration) ([]content.ReactionItem, error) {
	return s.active().GetRecentReactions(since)
}

// GetStats returns record counts from the currently active backend.
func (s *Store) GetStats() (map[string]int, error) {
	return s.active().GetStats()
}

// Close closes both backends.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.primary != nil {
		if err := s.primary.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.fallback.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func stampContentItem(item *content.ContentItem) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.StoredAt.IsZero() {
		item.StoredAt = time.Now()
	}
	if item.PublishedAt == nil && item.Published != "" {
		item.PublishedAt = content.ParseWhen(item.Published)
	}
	if item.URL == "" {
		item.URL = syntheticKey(item.Title)
	}
}

func stampReaction(r *content.ReactionItem) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StoredAt.IsZero() {
		r.StoredAt = time.Now()
	}
	if r.NaturalKey() == "" {
		r.URL = syntheticKey(r.Title)
	}
}

// syntheticKey gives records without a URL a stable deduplication key
// derived from their title.
func syntheticKey(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hash)[:16]
}
