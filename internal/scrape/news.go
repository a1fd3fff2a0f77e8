// Package scrape gathers raw material for the pipeline: articles from RSS
// feeds and listing pages, full article text and Reddit posts. Nothing
// here decides relevance; that stays with the classifier.
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/voicewatch/voicewatch/internal/content"
	"github.com/voicewatch/voicewatch/internal/logger"
)

const scrapeUserAgent = "Mozilla/5.0 (compatible; VoiceWatch/1.0; +https://github.com/voicewatch/voicewatch)"

// NewsScraper fetches articles from all configured sources.
type NewsScraper struct {
	sources     []Source
	client      *http.Client
	maxAge      time.Duration
	maxArticles int
}

func NewNewsScraper(sources []Source, timeout, maxAge time.Duration, maxArticles int) *NewsScraper {
	return &NewsScraper{
		sources:     sources,
		client:      &http.Client{Timeout: timeout},
		maxAge:      maxAge,
		maxArticles: maxArticles,
	}
}

// FetchAll pulls every source concurrently. Individual source failures
// are logged and skipped; an error comes back only when every single
// source failed, which usually means the network is gone.
func (ns *NewsScraper) FetchAll(ctx context.Context) ([]content.ContentItem, error) {
	var (
		mu      sync.Mutex
		all     []content.ContentItem
		success int
	)

	var wg sync.WaitGroup
	for _, source := range ns.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			items, err := ns.fetchSource(ctx, src)
			if err != nil {
				logger.Warn("❌ source failed", "source", src.Name, "error", err)
				return
			}

			mu.Lock()
			all = append(all, items...)
			success++
			mu.Unlock()

			logger.Info("📰 fetched source", "source", src.Name, "items", len(items))
		}(source)
	}
	wg.Wait()

	if success == 0 && len(ns.sources) > 0 {
		return nil, fmt.Errorf("all %d news sources failed", len(ns.sources))
	}
	return ns.sift(all), nil
}

func (ns *NewsScraper) fetchSource(ctx context.Context, source Source) ([]content.ContentItem, error) {
	switch source.Type {
	case "rss":
		return ns.fetchRSS(ctx, source)
	case "web":
		return ns.fetchWeb(ctx, source)
	default:
		return nil, fmt.Errorf("unknown source type %q", source.Type)
	}
}

func (ns *NewsScraper) fetchRSS(ctx context.Context, source Source) ([]content.ContentItem, error) {
	// gofeed parsers initialize lazily, so each fetch gets its own.
	parser := gofeed.NewParser()
	parser.Client = ns.client
	parser.UserAgent = scrapeUserAgent

	feed, err := parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, err
	}

	var items []content.ContentItem
	for _, entry := range feed.Items {
		body := entry.Content
		if strings.TrimSpace(body) == "" {
			body = entry.Description
		}

		item := content.ContentItem{
			Title:     cleanTitle(entry.Title),
			URL:       strings.TrimSpace(entry.Link),
			Content:   strings.TrimSpace(stripTags(body)),
			Source:    source.Name,
			Published: entry.Published,
		}
		if entry.PublishedParsed != nil {
			t := *entry.PublishedParsed
			item.PublishedAt = &t
		}
		items = append(items, item)
	}
	return items, nil
}

func (ns *NewsScraper) fetchWeb(ctx context.Context, source Source) ([]content.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := ns.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, err
	}

	var items []content.ContentItem
	doc.Find(source.Selector).Each(func(i int, s *goquery.Selection) {
		title := s.Find("h1, h2, h3").First().Text()
		if strings.TrimSpace(title) == "" {
			title = s.Text()
		}
		title = cleanTitle(title)

		link, ok := s.Attr("href")
		if !ok {
			link = s.Find("a").First().AttrOr("href", "")
		}
		link = resolveLink(base, link)

		if title == "" || link == "" {
			return
		}
		items = append(items, content.ContentItem{
			Title:  title,
			URL:    link,
			Source: source.Name,
		})
	})
	return items, nil
}

// sift dedupes by URL, drops articles older than the age window and caps
// the batch. Articles whose publish date never parsed stay in.
func (ns *NewsScraper) sift(items []content.ContentItem) []content.ContentItem {
	cutoff := time.Now().Add(-ns.maxAge)
	seen := make(map[string]bool)

	var kept []content.ContentItem
	for _, item := range items {
		if item.URL == "" || item.Title == "" {
			continue
		}
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true

		if item.PublishedAt == nil {
			item.PublishedAt = content.ParseWhen(item.Published)
		}
		if item.PublishedAt != nil && item.PublishedAt.Before(cutoff) {
			continue
		}

		kept = append(kept, item)
		if ns.maxArticles > 0 && len(kept) == ns.maxArticles {
			break
		}
	}
	return kept
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveLink turns a possibly relative href into an absolute URL.
func resolveLink(base *url.URL, link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "javascript:") {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
