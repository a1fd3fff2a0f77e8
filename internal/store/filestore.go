package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
)

const fileSchemaVersion = 1

// FileStore is the local JSON fallback backend. Each entity kind lives in
// its own file under the data directory and every write rewrites the whole
// file, so a crash can never leave a half-appended record behind.
type FileStore struct {
	mu      sync.RWMutex
	dataDir string
}

type itemsFile struct {
	Version int                   `json:"version"`
	Items   []content.ContentItem `json:"items"`
}

type reactionsFile struct {
	Version   int                    `json:"version"`
	Reactions []content.ReactionItem `json:"reactions"`
}

type runsFile struct {
	Version int                  `json:"version"`
	Runs    []content.RunSummary `json:"runs"`
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

// Ping verifies the data directory is still there and writable.
func (fs *FileStore) Ping() error {
	if err := os.MkdirAll(fs.dataDir, 0755); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

func (fs *FileStore) itemsPath() string     { return filepath.Join(fs.dataDir, "news_items.json") }
func (fs *FileStore) reactionsPath() string { return filepath.Join(fs.dataDir, "reactions.json") }
func (fs *FileStore) runsPath() string      { return filepath.Join(fs.dataDir, "runs.json") }

// readFile unmarshals path into v. A missing, empty or corrupt file is not
// an error; the caller starts from an empty document and the next save
// rewrites it.
func (fs *FileStore) readFile(path string, v interface{}) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		logger.Warn("⚠️ corrupt store file, starting fresh", "file", filepath.Base(path), "error", err)
	}
	return nil
}

func (fs *FileStore) writeFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// UpsertContentItem replaces the item sharing the same URL or appends a
// new one. The surviving record keeps the original id and stored_at.
func (fs *FileStore) UpsertContentItem(item *content.ContentItem) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var doc itemsFile
	if err := fs.readFile(fs.itemsPath(), &doc); err != nil {
		return "", err
	}
	doc.Version = fileSchemaVersion

	id := item.ID
	replaced := false
	for i := range doc.Items {
		if doc.Items[i].URL == item.URL {
			id = doc.Items[i].ID
			storedAt := doc.Items[i].StoredAt
			doc.Items[i] = *item
			doc.Items[i].ID = id
			doc.Items[i].StoredAt = storedAt
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Items = append(doc.Items, *item)
	}

	if err := fs.writeFile(fs.itemsPath(), &doc); err != nil {
		return "", err
	}
	return id, nil
}

// UpsertReaction replaces the reaction sharing the same natural key or
// appends a new one.
func (fs *FileStore) UpsertReaction(r *content.ReactionItem) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var doc reactionsFile
	if err := fs.readFile(fs.reactionsPath(), &doc); err != nil {
		return "", err
	}
	doc.Version = fileSchemaVersion

	key := r.NaturalKey()
	id := r.ID
	replaced := false
	for i := range doc.Reactions {
		if doc.Reactions[i].NaturalKey() == key {
			id = doc.Reactions[i].ID
			storedAt := doc.Reactions[i].StoredAt
			doc.Reactions[i] = *r
			doc.Reactions[i].ID = id
			doc.Reactions[i].StoredAt = storedAt
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Reactions = append(doc.Reactions, *r)
	}

	if err := fs.writeFile(fs.reactionsPath(), &doc); err != nil {
		return "", err
	}
	return id, nil
}

// AppendRunSummary appends the run and drops everything beyond the newest
// keep entries.
func (fs *FileStore) AppendRunSummary(run *content.RunSummary, keep int) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var doc runsFile
	if err := fs.readFile(fs.runsPath(), &doc); err != nil {
		return "", err
	}
	doc.Version = fileSchemaVersion

	doc.Runs = append(doc.Runs, *run)
	sort.Slice(doc.Runs, func(i, j int) bool {
		return doc.Runs[i].Timestamp.After(doc.Runs[j].Timestamp)
	})
	if keep > 0 && len(doc.Runs) > keep {
		doc.Runs = doc.Runs[:keep]
	}

	if err := fs.writeFile(fs.runsPath(), &doc); err != nil {
		return "", err
	}
	return run.ID, nil
}

// GetRecentRuns returns run summaries newest first.
func (fs *FileStore) GetRecentRuns(limit int) ([]content.RunSummary, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if limit <= 0 {
		limit = 3
	}

	var doc runsFile
	if err := fs.readFile(fs.runsPath(), &doc); err != nil {
		return nil, err
	}

	runs := make([]content.RunSummary, len(doc.Runs))
	copy(runs, doc.Runs)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// GetRecentItems returns items published inside the lookback window.
// Items with no parseable publish time are included.
func (fs *FileStore) GetRecentItems(since time.Duration) ([]content.ContentItem, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var doc itemsFile
	if err := fs.readFile(fs.itemsPath(), &doc); err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-since)
	var items []content.ContentItem
	for _, item := range doc.Items {
		if item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StoredAt.After(items[j].StoredAt)
	})
	return items, nil
}

// GetRecentReactions returns reactions collected inside the lookback
// window, highest scoring first.
func (fs *FileStore) GetRecentReactions(since time.Duration) ([]content.ReactionItem, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var doc reactionsFile
	if err := fs.readFile(fs.reactionsPath(), &doc); err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-since)
	var reactions []content.ReactionItem
	for _, r := range doc.Reactions {
		if r.StoredAt.Before(cutoff) {
			continue
		}
		reactions = append(reactions, r)
	}
	sort.Slice(reactions, func(i, j int) bool {
		if reactions[i].Score != reactions[j].Score {
			return reactions[i].Score > reactions[j].Score
		}
		return reactions[i].StoredAt.After(reactions[j].StoredAt)
	})
	return reactions, nil
}

// GetStats returns record counts per entity kind.
func (fs *FileStore) GetStats() (map[string]int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var items itemsFile
	if err := fs.readFile(fs.itemsPath(), &items); err != nil {
		return nil, err
	}
	var reactions reactionsFile
	if err := fs.readFile(fs.reactionsPath(), &reactions); err != nil {
		return nil, err
	}
	var runs runsFile
	if err := fs.readFile(fs.runsPath(), &runs); err != nil {
		return nil, err
	}

	return map[string]int{
		"content_items": len(items.Items),
		"reactions":     len(reactions.Reactions),
		"run_summaries": len(runs.Runs),
	}, nil
}

// Close is a no-op for the file backend.
func (fs *FileStore) Close() error {
	return nil
}
