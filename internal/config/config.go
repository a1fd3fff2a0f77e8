package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Storage settings
	DatabaseURL     string // empty means file-only storage
	DataDir         string
	RunHistoryLimit int

	// Keyword/classifier settings
	KeywordsPath     string // empty means built-in keyword set
	ClassifyStrategy string // tiered | any_primary | weighted

	// News scraping settings
	SourcesPath    string
	MaxArticles    int
	NewsMaxAge     time.Duration
	RequestTimeout time.Duration

	// Reddit settings
	RedditUserAgent string // empty disables the Reddit stage
	MaxRedditPosts  int

	// Summarizer settings
	SummaryProvider string // auto | gemini | openai | none
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIModel     string
	MaxLLMRequests  int // maximum LLM summary calls per run (0 = unlimited)

	// Email settings
	EnableEmail  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLSMode  string // tls | starttls | none
	EmailFrom    string
	EmailTo      string // comma-separated recipients

	// Slack settings
	EnableSlack  bool
	SlackToken   string
	SlackChannel string

	// Scheduling settings
	ScrapeInterval time.Duration
	DigestInterval time.Duration
	DigestLookback time.Duration

	// Seen-cache settings
	SeenCachePath string
	SeenTTLHours  int

	// App settings
	Debug         bool
	LogLevel      string
	RetryAttempts int
	RetryDelay    time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		DataDir:          "data",
		RunHistoryLimit:  10,
		ClassifyStrategy: "tiered",
		SourcesPath:      "config/sources.yml",
		MaxArticles:      50,
		NewsMaxAge:       7 * 24 * time.Hour,
		RequestTimeout:   30 * time.Second,
		MaxRedditPosts:   30,
		SummaryProvider:  "auto",
		OpenAIModel:      "gpt-4o-mini",
		MaxLLMRequests:   0,
		EnableEmail:      true,
		EnableSlack:      true,
		SMTPPort:         587,
		SMTPTLSMode:      "starttls",
		SlackChannel:     "#ai-voice-news",
		ScrapeInterval:   time.Hour,
		DigestInterval:   24 * time.Hour,
		DigestLookback:   24 * time.Hour,
		SeenTTLHours:     48,
		LogLevel:         "info",
		RetryAttempts:    3,
		RetryDelay:       5 * time.Second,
	}

	// Load from environment
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.RedditUserAgent = os.Getenv("REDDIT_USER_AGENT")
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.EmailFrom = os.Getenv("EMAIL_FROM")
	cfg.EmailTo = os.Getenv("EMAIL_TO")
	cfg.SlackToken = os.Getenv("SLACK_API_TOKEN")
	cfg.KeywordsPath = os.Getenv("KEYWORDS_PATH")

	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.SourcesPath = getEnvOrDefault("SOURCES_PATH", cfg.SourcesPath)
	cfg.ClassifyStrategy = getEnvOrDefault("CLASSIFY_STRATEGY", cfg.ClassifyStrategy)
	cfg.SummaryProvider = getEnvOrDefault("SUMMARY_PROVIDER", cfg.SummaryProvider)
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.SMTPTLSMode = getEnvOrDefault("SMTP_TLS_MODE", cfg.SMTPTLSMode)
	cfg.SlackChannel = getEnvOrDefault("SLACK_CHANNEL", cfg.SlackChannel)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.SeenCachePath = getEnvOrDefault("SEEN_CACHE_PATH", "")

	cfg.RunHistoryLimit = getEnvIntOrDefault("RUN_HISTORY_LIMIT", cfg.RunHistoryLimit)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.MaxRedditPosts = getEnvIntOrDefault("MAX_REDDIT_POSTS", cfg.MaxRedditPosts)
	cfg.MaxLLMRequests = getEnvIntOrDefault("MAX_LLM_REQUESTS", cfg.MaxLLMRequests)
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)
	cfg.SeenTTLHours = getEnvIntOrDefault("SEEN_TTL_HOURS", cfg.SeenTTLHours)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	cfg.EnableEmail = getEnvBoolOrDefault("ENABLE_EMAIL", cfg.EnableEmail)
	cfg.EnableSlack = getEnvBoolOrDefault("ENABLE_SLACK", cfg.EnableSlack)

	if v := os.Getenv("SCRAPING_INTERVAL"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeInterval = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("DIGEST_INTERVAL"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.DigestInterval = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("DIGEST_LOOKBACK_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.DigestLookback = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("NEWS_MAX_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.NewsMaxAge = time.Duration(val) * time.Hour
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}

	if cfg.SeenCachePath == "" {
		cfg.SeenCachePath = cfg.DataDir + "/seen_cache.json"
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.ClassifyStrategy {
	case "tiered", "any_primary", "weighted":
	default:
		return fmt.Errorf("CLASSIFY_STRATEGY must be 'tiered', 'any_primary' or 'weighted'")
	}
	switch c.SummaryProvider {
	case "auto", "gemini", "openai", "none":
	default:
		return fmt.Errorf("SUMMARY_PROVIDER must be 'auto', 'gemini', 'openai' or 'none'")
	}
	switch c.SMTPTLSMode {
	case "tls", "starttls", "none":
	default:
		return fmt.Errorf("SMTP_TLS_MODE must be 'tls', 'starttls' or 'none'")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.RunHistoryLimit <= 0 {
		return fmt.Errorf("RUN_HISTORY_LIMIT must be positive")
	}
	return nil
}

// EmailConfigured reports whether the minimum settings for the email
// stage are present.
func (c *Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.EmailFrom != "" && c.EmailTo != ""
}

// SlackConfigured reports whether the Slack stage can run.
func (c *Config) SlackConfigured() bool {
	return c.SlackToken != ""
}
