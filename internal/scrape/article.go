package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleContent is the full text pulled from an article page.
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// ExtractArticle fetches an article page and pulls out its readable text.
// Feed entries often carry only a teaser; this fills in the rest so the
// classifier and summarizer have something to work with.
func (ns *NewsScraper) ExtractArticle(ctx context.Context, pageURL string) (*ArticleContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := ns.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	body := cleanContent(extractParagraphs(doc, selectorsFor(pageURL)))
	if body == "" {
		return nil, fmt.Errorf("no readable content at %s", pageURL)
	}

	return &ArticleContent{
		Title:   extractTitle(doc),
		Content: body,
		URL:     pageURL,
	}, nil
}

// selectorsFor returns content selectors for known sites, with a generic
// list for everything else.
func selectorsFor(pageURL string) []string {
	switch {
	case strings.Contains(pageURL, "techcrunch.com"):
		return []string{".article-content p", ".entry-content p", "article p"}
	case strings.Contains(pageURL, "theverge.com"):
		return []string{".duet--article--article-body-component p", ".c-entry-content p", "article p"}
	case strings.Contains(pageURL, "venturebeat.com"):
		return []string{".article-content p", ".Article__content p", "article p"}
	case strings.Contains(pageURL, "arstechnica.com"):
		return []string{".article-content p", ".post-content p", "article p"}
	default:
		return []string{
			"article p",
			".article p",
			".content p",
			".post-content p",
			".entry-content p",
			"main p",
			"#content p",
			"p",
		}
	}
}

func extractParagraphs(doc *goquery.Document, selectors []string) string {
	var paragraphs []string

	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		"title",
		".article-title",
		".headline",
		".entry-title",
	}

	for _, selector := range selectors {
		title := doc.Find(selector).First().Text()
		title = cleanTitle(title)
		if title != "" {
			return title
		}
	}
	return ""
}

// stripTags removes HTML markup, keeping paragraph breaks.
func stripTags(content string) string {
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "<br/>", " ")
	content = strings.ReplaceAll(content, "<p>", "\n\n")
	content = strings.ReplaceAll(content, "</p>", "")

	inTag := false
	var result strings.Builder
	for _, char := range content {
		if char == '<' {
			inTag = true
		} else if char == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(char)
		}
	}
	return strings.TrimSpace(result.String())
}

// cleanContent normalizes extracted text into readable paragraphs,
// dropping boilerplate and capping the length for storage.
func cleanContent(text string) string {
	if text == "" {
		return ""
	}

	text = stripTags(text)

	junkPhrases := []string{
		"Subscribe to our newsletter",
		"Sign up for our newsletter",
		"Share this article",
		"Read more:",
		"Related:",
		"See also:",
		"Advertisement",
		"All rights reserved",
		"Terms of Service",
		"Privacy Policy",
		"Follow us on",
		"Click here to",
		"Log in",
		"Create an account",
	}
	for _, phrase := range junkPhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}

	junkIndicators := []string{
		"cookie", "subscribe", "newsletter", "advertisement", "sponsored",
		"sign up", "read more", "click here", "follow us", "share this",
	}

	lines := strings.Split(text, "\n")
	var cleanLines []string
	var currentParagraph strings.Builder

	flush := func() {
		if currentParagraph.Len() > 0 {
			paragraph := strings.TrimSpace(currentParagraph.String())
			if len(paragraph) > 30 {
				cleanLines = append(cleanLines, paragraph)
			}
			currentParagraph.Reset()
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if len(line) < 8 {
			flush()
			continue
		}

		lower := strings.ToLower(line)
		isJunk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				isJunk = true
				break
			}
		}
		if isJunk {
			continue
		}

		if currentParagraph.Len() > 0 {
			currentParagraph.WriteString(" ")
		}
		currentParagraph.WriteString(line)

		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
			flush()
		}
	}
	flush()

	result := strings.Join(cleanLines, "\n\n")

	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}
	result = strings.TrimSpace(result)

	// Keep whole paragraphs when trimming to storage size.
	if len(result) > 1800 {
		paragraphs := strings.Split(result, "\n\n")
		var selected []string
		total := 0

		for _, paragraph := range paragraphs {
			if total+len(paragraph) < 1600 {
				selected = append(selected, paragraph)
				total += len(paragraph) + 2
			} else {
				break
			}
		}
		if len(selected) > 0 {
			result = strings.Join(selected, "\n\n")
		}
	}

	return result
}
