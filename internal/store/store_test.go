package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicewatch/voicewatch/internal/content"
)

type fakeBackend struct {
	pingErr   error
	upsertErr error
	items     []content.ContentItem
	reactions []content.ReactionItem
	runs      []content.RunSummary
}

func (f *fakeBackend) Ping() error { return f.pingErr }

func (f *fakeBackend) UpsertContentItem(item *content.ContentItem) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	f.items = append(f.items, *item)
	return item.ID, nil
}

func (f *fakeBackend) UpsertReaction(r *content.ReactionItem) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	f.reactions = append(f.reactions, *r)
	return r.ID, nil
}

func (f *fakeBackend) AppendRunSummary(run *content.RunSummary, keep int) (string, error) {
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	f.runs = append(f.runs, *run)
	return run.ID, nil
}

func (f *fakeBackend) GetRecentRuns(limit int) ([]content.RunSummary, error) {
	return f.runs, nil
}

func (f *fakeBackend) GetRecentItems(since time.Duration) ([]content.ContentItem, error) {
	return f.items, nil
}

func (f *fakeBackend) GetRecentReactions(since time.Duration) ([]content.ReactionItem, error) {
	return f.reactions, nil
}

func (f *fakeBackend) GetStats() (map[string]int, error) {
	return map[string]int{"content_items": len(f.items)}, nil
}

func (f *fakeBackend) Close() error { return nil }

func TestStoreFallsBackWhenPrimaryDown(t *testing.T) {
	primary := &fakeBackend{pingErr: errors.New("connection refused")}
	fallback := &fakeBackend{}
	s := &Store{primary: primary, fallback: fallback, state: StatePrimary, retention: 10}

	id, err := s.SaveContentItem(&content.ContentItem{Title: "Voice AI funding round", URL: "https://example.com/a"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Empty(t, primary.items)
	assert.Len(t, fallback.items, 1)
	assert.Equal(t, StateFallback, s.State())
}

func TestStoreRecoversWhenPrimaryReturns(t *testing.T) {
	primary := &fakeBackend{}
	fallback := &fakeBackend{}
	s := &Store{primary: primary, fallback: fallback, state: StateFallback, retention: 10}

	id, err := s.SaveContentItem(&content.ContentItem{Title: "TTS latency improvements", URL: "https://example.com/b"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Len(t, primary.items, 1)
	assert.Empty(t, fallback.items)
	assert.Equal(t, StatePrimary, s.State())
}

func TestStoreFlipsPerCall(t *testing.T) {
	primary := &fakeBackend{}
	fallback := &fakeBackend{}
	s := &Store{primary: primary, fallback: fallback, state: StatePrimary, retention: 10}

	_, err := s.SaveContentItem(&content.ContentItem{Title: "first", URL: "https://example.com/1"})
	require.NoError(t, err)
	assert.Equal(t, StatePrimary, s.State())

	primary.pingErr = errors.New("network is unreachable")
	_, err = s.SaveContentItem(&content.ContentItem{Title: "second", URL: "https://example.com/2"})
	require.NoError(t, err)
	assert.Equal(t, StateFallback, s.State())

	primary.pingErr = nil
	_, err = s.SaveContentItem(&content.ContentItem{Title: "third", URL: "https://example.com/3"})
	require.NoError(t, err)
	assert.Equal(t, StatePrimary, s.State())

	assert.Len(t, primary.items, 2)
	assert.Len(t, fallback.items, 1)
}

func TestStoreSurfacesBackendErrors(t *testing.T) {
	primary := &fakeBackend{upsertErr: errors.New("relation does not exist")}
	s := &Store{primary: primary, fallback: &fakeBackend{}, state: StatePrimary, retention: 10}

	id, err := s.SaveContentItem(&content.ContentItem{Title: "broken", URL: "https://example.com/x"})
	assert.Error(t, err)
	assert.Empty(t, id)
}

func TestStoreStampsIdentity(t *testing.T) {
	fallback := &fakeBackend{}
	s := &Store{fallback: fallback, state: StateFallback, retention: 10}

	item := &content.ContentItem{
		Title:     "ElevenLabs ships a new voice model",
		URL:       "https://example.com/eleven",
		Published: "2026-08-20T10:00:00Z",
	}
	id, err := s.SaveContentItem(item)
	require.NoError(t, err)

	assert.Equal(t, item.ID, id)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.StoredAt.IsZero())
	require.NotNil(t, item.PublishedAt)
	assert.Equal(t, 2026, item.PublishedAt.Year())
}

func TestStoreSynthesizesKeyWithoutURL(t *testing.T) {
	fallback := &fakeBackend{}
	s := &Store{fallback: fallback, state: StateFallback, retention: 10}

	item := &content.ContentItem{Title: "Untitled voice cloning demo"}
	_, err := s.SaveContentItem(item)
	require.NoError(t, err)
	assert.Len(t, item.URL, 16)

	again := &content.ContentItem{Title: "  UNTITLED Voice Cloning Demo "}
	_, err = s.SaveContentItem(again)
	require.NoError(t, err)
	assert.Equal(t, item.URL, again.URL)
}

func TestStoreStampsRunSummary(t *testing.T) {
	fallback := &fakeBackend{}
	s := &Store{fallback: fallback, state: StateFallback, retention: 10}

	run := &content.RunSummary{ArticlesFound: 12}
	id, err := s.SaveRunSummary(run)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.False(t, run.Timestamp.IsZero())
	assert.Equal(t, run.Timestamp.Format("2006-01-02"), run.Date)
}

func TestNewWithoutDatabaseStartsOnFiles(t *testing.T) {
	s, err := New("", t.TempDir(), 5)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, StateFallback, s.State())

	id, err := s.SaveContentItem(&content.ContentItem{
		Title: "Speech synthesis benchmark released",
		URL:   "https://example.com/bench",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
