// Package cache tracks which items earlier runs already processed, so
// restarts and overlapping feeds do not produce duplicates.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/voicewatch/voicewatch/internal/logger"
)

// SeenItem records one processed item.
type SeenItem struct {
	Hash   string    `json:"hash"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	Source string    `json:"source"`
	SeenAt time.Time `json:"seen_at"`
}

// SeenCache is a TTL'd set of item hashes backed by a JSON file.
type SeenCache struct {
	mu    sync.RWMutex
	path  string
	ttl   time.Duration
	items map[string]SeenItem
}

func NewSeenCache(path string, ttl time.Duration) *SeenCache {
	return &SeenCache{
		path:  path,
		ttl:   ttl,
		items: make(map[string]SeenItem),
	}
}

// Load reads the cache file, dropping entries past their TTL. A missing
// or unreadable file starts the cache empty rather than failing the run.
func (c *SeenCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read seen cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("⚠️ corrupt seen cache, starting fresh", "path", c.path, "error", err)
		return nil
	}

	cutoff := time.Now().Add(-c.ttl)
	for _, item := range items {
		if item.SeenAt.After(cutoff) {
			c.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the cache back to disk.
func (c *SeenCache) Save() error {
	c.mu.RLock()
	items := make([]SeenItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write seen cache: %w", err)
	}
	return nil
}

// Hash builds a stable identity for an item from its normalized title
// and the domain of its URL, so the same story syndicated under
// slightly different URLs on one site still matches.
func Hash(title, url string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")

	h := sha256.New()
	h.Write([]byte(normalized + "|" + extractDomain(url)))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Seen reports whether the hash is present and still within TTL.
func (c *SeenCache) Seen(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[hash]
	if !exists {
		return false
	}
	return item.SeenAt.After(time.Now().Add(-c.ttl))
}

// Mark records an item as processed.
func (c *SeenCache) Mark(hash, title, url, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[hash] = SeenItem{
		Hash:   hash,
		Title:  title,
		URL:    url,
		Source: source,
		SeenAt: time.Now(),
	}
}

// Cleanup drops expired entries from memory.
func (c *SeenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl)
	for hash, item := range c.items {
		if item.SeenAt.Before(cutoff) {
			delete(c.items, hash)
		}
	}
}

// Len returns the number of entries currently held.
func (c *SeenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func extractDomain(url string) string {
	if url == "" {
		return "unknown"
	}

	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")

	parts := strings.Split(url, "/")
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.ToLower(strings.TrimPrefix(parts[0], "www."))
}
