package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicewatch/voicewatch/internal/content"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestFileStoreUpsertUpdatesNotDuplicates(t *testing.T) {
	fs := newTestFileStore(t)

	first := &content.ContentItem{
		ID:       "id-1",
		URL:      "https://example.com/story",
		Title:    "Voice AI startup raises funding",
		Summary:  "short version",
		StoredAt: time.Now().Add(-time.Hour),
	}
	id, err := fs.UpsertContentItem(first)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	second := &content.ContentItem{
		ID:       "id-2",
		URL:      "https://example.com/story",
		Title:    "Voice AI startup raises funding",
		Summary:  "longer updated version",
		StoredAt: time.Now(),
	}
	id, err = fs.UpsertContentItem(second)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id, "update keeps the original identifier")

	items, err := fs.GetRecentItems(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "longer updated version", items[0].Summary)
	assert.Equal(t, "id-1", items[0].ID)
}

func TestFileStoreReactionNaturalKey(t *testing.T) {
	fs := newTestFileStore(t)

	noURL := &content.ReactionItem{
		ID:      "r-1",
		Content: "this new tts model sounds amazing",
		Score:   10,
	}
	_, err := fs.UpsertReaction(noURL)
	require.NoError(t, err)

	sameContent := &content.ReactionItem{
		ID:      "r-2",
		Content: "this new tts model sounds amazing",
		Score:   55,
	}
	id, err := fs.UpsertReaction(sameContent)
	require.NoError(t, err)
	assert.Equal(t, "r-1", id, "same content without URL dedupes to one record")

	stats, err := fs.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["reactions"])
}

func TestFileStoreRunRetention(t *testing.T) {
	fs := newTestFileStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		run := &content.RunSummary{
			ID:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Date:      base.Format("2006-01-02"),
		}
		_, err := fs.AppendRunSummary(run, 3)
		require.NoError(t, err)
	}

	runs, err := fs.GetRecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3, "history trimmed to the newest entries")

	assert.Equal(t, "d", runs[0].ID, "newest first")
	assert.Equal(t, "c", runs[1].ID)
	assert.Equal(t, "b", runs[2].ID)
}

func TestFileStoreRecentItemsWindow(t *testing.T) {
	fs := newTestFileStore(t)

	old := time.Now().Add(-72 * time.Hour)
	fresh := time.Now().Add(-2 * time.Hour)

	items := []*content.ContentItem{
		{ID: "old", URL: "https://example.com/old", PublishedAt: &old, StoredAt: old},
		{ID: "fresh", URL: "https://example.com/fresh", PublishedAt: &fresh, StoredAt: fresh},
		{ID: "undated", URL: "https://example.com/undated", StoredAt: time.Now()},
	}
	for _, item := range items {
		_, err := fs.UpsertContentItem(item)
		require.NoError(t, err)
	}

	recent, err := fs.GetRecentItems(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	got := []string{recent[0].ID, recent[1].ID}
	assert.Contains(t, got, "fresh")
	assert.Contains(t, got, "undated", "items without a parsed timestamp stay in the window")
}

func TestFileStoreRecentReactionsWindow(t *testing.T) {
	fs := newTestFileStore(t)

	old := time.Now().Add(-72 * time.Hour)
	reactions := []*content.ReactionItem{
		{ID: "old", URL: "https://reddit.com/old", Score: 900, StoredAt: old},
		{ID: "low", URL: "https://reddit.com/low", Score: 5, StoredAt: time.Now()},
		{ID: "high", URL: "https://reddit.com/high", Score: 50, StoredAt: time.Now()},
	}
	for _, r := range reactions {
		_, err := fs.UpsertReaction(r)
		require.NoError(t, err)
	}

	recent, err := fs.GetRecentReactions(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, "high", recent[0].ID, "highest score first")
	assert.Equal(t, "low", recent[1].ID)
}

func TestFileStoreSurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "news_items.json"), []byte("{not json"), 0644)
	require.NoError(t, err)

	_, err = fs.UpsertContentItem(&content.ContentItem{
		ID:  "id-1",
		URL: "https://example.com/after-corruption",
	})
	require.NoError(t, err)

	stats, err := fs.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats["content_items"])
}

func TestFileStoreRewritesWholeFile(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := fs.UpsertContentItem(&content.ContentItem{
			ID:      "same",
			URL:     "https://example.com/rewrite",
			Summary: "pass",
		})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "news_items.json"))
	require.NoError(t, err)

	var doc itemsFile
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, fileSchemaVersion, doc.Version)
	assert.Len(t, doc.Items, 1)
}

func TestFileStoreEmptyReads(t *testing.T) {
	fs := newTestFileStore(t)

	items, err := fs.GetRecentItems(24 * time.Hour)
	require.NoError(t, err)
	assert.Empty(t, items)

	runs, err := fs.GetRecentRuns(5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	stats, err := fs.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats["content_items"])
}
