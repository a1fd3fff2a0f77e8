package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
)

// PostgresStore is the primary backend.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database, verifies the connection and makes
// sure the schema exists.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ps := &PostgresStore{db: db}

	if err := ps.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("✅ PostgreSQL store connected")
	return ps, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS content_items (
		id VARCHAR(36) PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		source VARCHAR(100),
		published TEXT,
		published_at TIMESTAMPTZ,
		summary TEXT,
		sentiment VARCHAR(20),
		matched_keywords TEXT[],
		stored_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_content_items_published_at ON content_items(published_at);
	CREATE INDEX IF NOT EXISTS idx_content_items_stored_at ON content_items(stored_at);

	CREATE TABLE IF NOT EXISTS reactions (
		id VARCHAR(36) PRIMARY KEY,
		natural_key TEXT UNIQUE NOT NULL,
		url TEXT,
		platform VARCHAR(50),
		subreddit VARCHAR(100),
		title TEXT,
		content TEXT,
		author VARCHAR(100),
		score INTEGER DEFAULT 0,
		num_comments INTEGER DEFAULT 0,
		sentiment VARCHAR(20),
		sentiment_emoji VARCHAR(16),
		summary TEXT,
		matched_keywords TEXT[],
		external_url TEXT,
		created_date VARCHAR(32),
		stored_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_reactions_stored_at ON reactions(stored_at);

	CREATE TABLE IF NOT EXISTS run_summaries (
		id VARCHAR(36) PRIMARY KEY,
		run_at TIMESTAMPTZ NOT NULL,
		run_date VARCHAR(10) NOT NULL,
		articles_found INTEGER DEFAULT 0,
		articles_processed INTEGER DEFAULT 0,
		reddit_posts INTEGER DEFAULT 0,
		sentiment_summary JSONB,
		subreddit_activity JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_run_summaries_run_at ON run_summaries(run_at);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Ping is the per-call liveness probe.
func (ps *PostgresStore) Ping() error {
	return ps.db.Ping()
}

// UpsertContentItem inserts the item or updates the existing row with the
// same URL. RETURNING id hands back the surviving row's identifier, so an
// update yields the original id rather than the candidate one.
func (ps *PostgresStore) UpsertContentItem(item *content.ContentItem) (string, error) {
	query := `
		INSERT INTO content_items
			(id, url, title, content, source, published, published_at, summary, sentiment, matched_keywords, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			source = EXCLUDED.source,
			published = EXCLUDED.published,
			published_at = EXCLUDED.published_at,
			summary = EXCLUDED.summary,
			sentiment = EXCLUDED.sentiment,
			matched_keywords = EXCLUDED.matched_keywords
		RETURNING id
	`

	var id string
	err := ps.db.QueryRow(query,
		item.ID, item.URL, item.Title, item.Content, item.Source,
		item.Published, nullableTime(item.PublishedAt), item.Summary,
		item.Sentiment, pq.Array(item.MatchedKeywords), item.StoredAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert content item: %w", err)
	}
	return id, nil
}

// UpsertReaction follows the same contract keyed on the reaction's
// natural key.
func (ps *PostgresStore) UpsertReaction(r *content.ReactionItem) (string, error) {
	query := `
		INSERT INTO reactions
			(id, natural_key, url, platform, subreddit, title, content, author,
			 score, num_comments, sentiment, sentiment_emoji, summary,
			 matched_keywords, external_url, created_date, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (natural_key) DO UPDATE SET
			url = EXCLUDED.url,
			platform = EXCLUDED.platform,
			subreddit = EXCLUDED.subreddit,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			author = EXCLUDED.author,
			score = EXCLUDED.score,
			num_comments = EXCLUDED.num_comments,
			sentiment = EXCLUDED.sentiment,
			sentiment_emoji = EXCLUDED.sentiment_emoji,
			summary = EXCLUDED.summary,
			matched_keywords = EXCLUDED.matched_keywords,
			external_url = EXCLUDED.external_url,
			created_date = EXCLUDED.created_date
		RETURNING id
	`

	var id string
	err := ps.db.QueryRow(query,
		r.ID, r.NaturalKey(), r.URL, r.Platform, r.Subreddit, r.Title,
		r.Content, r.Author, r.Score, r.NumComments, r.Sentiment,
		r.SentimentEmoji, r.Summary, pq.Array(r.MatchedKeywords),
		r.ExternalURL, r.CreatedDate, r.StoredAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert reaction: %w", err)
	}
	return id, nil
}

// AppendRunSummary always inserts, then trims the history to the newest
// keep rows.
func (ps *PostgresStore) AppendRunSummary(run *content.RunSummary, keep int) (string, error) {
	sentiments, err := json.Marshal(run.SentimentSummary)
	if err != nil {
		return "", fmt.Errorf("failed to marshal sentiment summary: %w", err)
	}
	activity, err := json.Marshal(run.SubredditActivity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal subreddit activity: %w", err)
	}

	query := `
		INSERT INTO run_summaries
			(id, run_at, run_date, articles_found, articles_processed, reddit_posts, sentiment_summary, subreddit_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = ps.db.Exec(query,
		run.ID, run.Timestamp, run.Date, run.ArticlesFound,
		run.ArticlesProcessed, run.RedditPosts, sentiments, activity,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run summary: %w", err)
	}

	trim := `
		DELETE FROM run_summaries
		WHERE id NOT IN (SELECT id FROM run_summaries ORDER BY run_at DESC LIMIT $1)
	`
	if _, err := ps.db.Exec(trim, keep); err != nil {
		logger.Warn("⚠️ failed to trim run history", "error", err)
	}

	return run.ID, nil
}

// GetRecentRuns returns run summaries newest first.
func (ps *PostgresStore) GetRecentRuns(limit int) ([]content.RunSummary, error) {
	if limit <= 0 {
		limit = 3
	}

	query := `
		SELECT id, run_at, run_date, articles_found, articles_processed, reddit_posts, sentiment_summary, subreddit_activity
		FROM run_summaries
		ORDER BY run_at DESC
		LIMIT $1
	`

	rows, err := ps.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run summaries: %w", err)
	}
	defer rows.Close()

	var runs []content.RunSummary
	for rows.Next() {
		var run content.RunSummary
		var sentiments, activity []byte
		if err := rows.Scan(&run.ID, &run.Timestamp, &run.Date, &run.ArticlesFound,
			&run.ArticlesProcessed, &run.RedditPosts, &sentiments, &activity); err != nil {
			logger.Warn("⚠️ failed to scan run summary", "error", err)
			continue
		}
		if len(sentiments) > 0 {
			if err := json.Unmarshal(sentiments, &run.SentimentSummary); err != nil {
				run.SentimentSummary = map[string]int{}
			}
		}
		if len(activity) > 0 {
			if err := json.Unmarshal(activity, &run.SubredditActivity); err != nil {
				run.SubredditActivity = map[string]int{}
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRecentItems returns content items published inside the lookback
// window. Rows whose publish timestamp never parsed are included.
func (ps *PostgresStore) GetRecentItems(since time.Duration) ([]content.ContentItem, error) {
	cutoff := time.Now().Add(-since)

	query := `
		SELECT id, url, title, content, source, published, published_at, summary, sentiment, matched_keywords, stored_at
		FROM content_items
		WHERE published_at IS NULL OR published_at >= $1
		ORDER BY stored_at DESC
	`

	rows, err := ps.db.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query content items: %w", err)
	}
	defer rows.Close()

	var items []content.ContentItem
	for rows.Next() {
		var item content.ContentItem
		var publishedAt sql.NullTime
		var matched pq.StringArray
		if err := rows.Scan(&item.ID, &item.URL, &item.Title, &item.Content,
			&item.Source, &item.Published, &publishedAt, &item.Summary,
			&item.Sentiment, &matched, &item.StoredAt); err != nil {
			logger.Warn("⚠️ failed to scan content item", "error", err)
			continue
		}
		if publishedAt.Valid {
			t := publishedAt.Time
			item.PublishedAt = &t
		}
		item.MatchedKeywords = matched
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetRecentReactions returns reactions collected inside the lookback
// window, highest scoring first.
func (ps *PostgresStore) GetRecentReactions(since time.Duration) ([]content.ReactionItem, error) {
	cutoff := time.Now().Add(-since)

	query := `
		SELECT id, url, platform, subreddit, title, content, author,
		       score, num_comments, sentiment, sentiment_emoji, summary,
		       matched_keywords, external_url, created_date, stored_at
		FROM reactions
		WHERE stored_at >= $1
		ORDER BY score DESC, stored_at DESC
	`

	rows, err := ps.db.Query(query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions: %w", err)
	}
	defer rows.Close()

	var reactions []content.ReactionItem
	for rows.Next() {
		var r content.ReactionItem
		var matched pq.StringArray
		if err := rows.Scan(&r.ID, &r.URL, &r.Platform, &r.Subreddit, &r.Title,
			&r.Content, &r.Author, &r.Score, &r.NumComments, &r.Sentiment,
			&r.SentimentEmoji, &r.Summary, &matched, &r.ExternalURL,
			&r.CreatedDate, &r.StoredAt); err != nil {
			logger.Warn("⚠️ failed to scan reaction", "error", err)
			continue
		}
		r.MatchedKeywords = matched
		reactions = append(reactions, r)
	}
	return reactions, rows.Err()
}

// GetStats returns row counts per entity kind.
func (ps *PostgresStore) GetStats() (map[string]int, error) {
	stats := make(map[string]int)
	for name, table := range map[string]string{
		"content_items": "content_items",
		"reactions":     "reactions",
		"run_summaries": "run_summaries",
	} {
		var count int
		if err := ps.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			return nil, err
		}
		stats[name] = count
	}
	return stats, nil
}

// Close closes the database connection.
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
