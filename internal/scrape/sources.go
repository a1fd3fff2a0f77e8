package scrape

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voicewatch/voicewatch/internal/logger"
)

// Source is one news source, either an RSS feed or a listing page
// scraped with a CSS selector.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Type     string `yaml:"type"`
	Selector string `yaml:"selector,omitempty"`
}

// SourcesConfig is the YAML config structure
// sources:
//   - name: ...
//     url: https://...
//     type: rss
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the source list from a YAML file. Entries missing a
// URL or carrying an unknown type are skipped with a warning rather than
// failing the whole list.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	var sources []Source
	for _, s := range cfg.Sources {
		if s.URL == "" {
			logger.Warn("⚠️ skipping source without URL", "name", s.Name)
			continue
		}
		switch s.Type {
		case "rss":
		case "web":
			if s.Selector == "" {
				logger.Warn("⚠️ skipping web source without selector", "name", s.Name)
				continue
			}
		default:
			logger.Warn("⚠️ skipping source with unknown type", "name", s.Name, "type", s.Type)
			continue
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// DefaultSources is the built-in source list, used when no sources file
// is configured.
func DefaultSources() []Source {
	return []Source{
		{Name: "Hacker News", URL: "https://news.ycombinator.com/rss", Type: "rss"},
		{Name: "AI News", URL: "https://artificialintelligence-news.com/feed/", Type: "rss"},
		{Name: "VentureBeat AI", URL: "https://venturebeat.com/category/ai/feed/", Type: "rss"},
		{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Type: "rss"},
		{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml", Type: "rss"},
		{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index", Type: "rss"},
		{Name: "MIT Technology Review AI", URL: "https://www.technologyreview.com/topic/artificial-intelligence/feed/", Type: "rss"},
		{Name: "Wired AI", URL: "https://www.wired.com/feed/tag/ai/latest/rss", Type: "rss"},
		{Name: "Voicebot.ai", URL: "https://voicebot.ai/feed/", Type: "rss"},
		{Name: "Speech Technology Magazine", URL: "https://www.speechtechmag.com/rss.aspx", Type: "rss"},
		{Name: "ElevenLabs Blog", URL: "https://elevenlabs.io/blog/rss/", Type: "rss"},
		{Name: "Resemble AI Blog", URL: "https://www.resemble.ai/blog/rss/", Type: "rss"},
		{Name: "OpenAI Blog", URL: "https://openai.com/blog", Type: "web", Selector: `a[href*="/blog/"]`},
		{Name: "Google AI Blog", URL: "https://ai.googleblog.com/", Type: "web", Selector: "h2.post-title a"},
		{Name: "DeepMind Blog", URL: "https://deepmind.com/blog", Type: "web", Selector: `a[href*="/blog/"]`},
		{Name: "Anthropic News", URL: "https://www.anthropic.com/news", Type: "web", Selector: `a[href*="/news/"]`},
	}
}
