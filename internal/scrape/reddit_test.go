package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redditFixture(now time.Time) string {
	recent := now.Add(-time.Hour).Unix()
	old := now.Add(-48 * time.Hour).Unix()

	return fmt.Sprintf(`{"data":{"children":[
{"data":{"title":"New TTS model dropped","selftext":"It sounds great","permalink":"/r/MachineLearning/comments/abc/new_tts","url":"https://example.com/model","author":"researcher","score":420,"num_comments":57,"created_utc":%d,"stickied":false}},
{"data":{"title":"Welcome thread","selftext":"","permalink":"/r/MachineLearning/comments/def/welcome","url":"","author":"mod","score":1,"num_comments":0,"created_utc":%d,"stickied":true}},
{"data":{"title":"Ancient post","selftext":"","permalink":"/r/MachineLearning/comments/ghi/ancient","url":"","author":"historian","score":5,"num_comments":2,"created_utc":%d,"stickied":false}},
{"data":{"title":"Orphaned post","selftext":"body","permalink":"/r/MachineLearning/comments/jkl/orphan","url":"","author":"","score":3,"num_comments":1,"created_utc":%d,"stickied":false}}
]}}`, recent, recent, old, recent)
}

func TestRedditFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "voicewatch-test/1.0", r.Header.Get("User-Agent"))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/hot.json"))
		fmt.Fprint(w, redditFixture(time.Now()))
	}))
	defer server.Close()

	rs := NewRedditScraper("voicewatch-test/1.0", 5*time.Second)
	rs.baseURL = server.URL
	rs.subreddits = []string{"MachineLearning"}
	rs.pause = 0

	reactions, err := rs.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, reactions, 2, "stickied and stale posts are dropped")

	first := reactions[0]
	assert.Equal(t, "reddit", first.Platform)
	assert.Equal(t, "MachineLearning", first.Subreddit)
	assert.Equal(t, "New TTS model dropped", first.Title)
	assert.Equal(t, "It sounds great", first.Content)
	assert.Equal(t, "https://reddit.com/r/MachineLearning/comments/abc/new_tts", first.URL)
	assert.Equal(t, "https://example.com/model", first.ExternalURL)
	assert.Equal(t, "researcher", first.Author)
	assert.Equal(t, 420, first.Score)
	assert.Equal(t, 57, first.NumComments)
	assert.NotEmpty(t, first.CreatedDate)

	assert.Equal(t, "[deleted]", reactions[1].Author)
}

func TestRedditSubredditFailureIsSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/r/bad/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, redditFixture(time.Now()))
	}))
	defer server.Close()

	rs := NewRedditScraper("voicewatch-test/1.0", 5*time.Second)
	rs.baseURL = server.URL
	rs.subreddits = []string{"bad", "MachineLearning"}
	rs.pause = 0

	reactions, err := rs.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, reactions, 2)
}

func TestRedditDisabled(t *testing.T) {
	rs := NewRedditScraper("", time.Second)
	assert.False(t, rs.Enabled())

	reactions, err := rs.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, reactions)
}
