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

func TestExtractArticle(t *testing.T) {
	html := `<html><head><title>Page Title</title></head><body>
<h1>Neural voices hit production</h1>
<article>
<p>The first paragraph talks about neural speech systems in live products.</p>
<p>The second paragraph covers latency numbers and deployment details.</p>
<p>The third paragraph quotes the engineering team on output quality.</p>
</article>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, html)
	}))
	defer server.Close()

	ns := NewNewsScraper(nil, 5*time.Second, time.Hour, 10)

	article, err := ns.ExtractArticle(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Neural voices hit production", article.Title)
	assert.Contains(t, article.Content, "first paragraph")
	assert.Contains(t, article.Content, "third paragraph")
	assert.Equal(t, server.URL, article.URL)
}

func TestExtractArticleNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>short</p></body></html>`)
	}))
	defer server.Close()

	ns := NewNewsScraper(nil, 5*time.Second, time.Hour, 10)

	_, err := ns.ExtractArticle(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestExtractArticleHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	ns := NewNewsScraper(nil, 5*time.Second, time.Hour, 10)

	_, err := ns.ExtractArticle(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestCleanContent(t *testing.T) {
	in := "Subscribe to our newsletter\n" +
		"The model quality is higher than previous systems shipped today.\n" +
		"Please click here to win a prize\n" +
		"Another solid paragraph describing the release in real detail."

	out := cleanContent(in)

	assert.NotContains(t, out, "Subscribe")
	assert.NotContains(t, out, "click here")
	assert.Contains(t, out, "model quality")
	assert.Contains(t, out, "solid paragraph")
}

func TestCleanContentCapsLength(t *testing.T) {
	line := "A paragraph of reasonable size that ends with a period and keeps going a bit.\n"
	out := cleanContent(strings.Repeat(line, 40))

	assert.NotEmpty(t, out)
	assert.Less(t, len(out), 1800)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Hello world", stripTags("<div>Hello <b>world</b></div>"))
	assert.Equal(t, "para", stripTags("<p>para</p>"))
	assert.Equal(t, "a b", stripTags("a<br>b"))
	assert.Equal(t, "plain text", stripTags("plain text"))
}
