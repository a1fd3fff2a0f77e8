package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/voicewatch/voicewatch/internal/cache"
	"github.com/voicewatch/voicewatch/internal/classify"
	"github.com/voicewatch/voicewatch/internal/config"
	"github.com/voicewatch/voicewatch/internal/keywords"
	"github.com/voicewatch/voicewatch/internal/logger"
	"github.com/voicewatch/voicewatch/internal/metrics"
	"github.com/voicewatch/voicewatch/internal/notify"
	"github.com/voicewatch/voicewatch/internal/pipeline"
	"github.com/voicewatch/voicewatch/internal/ratelimit"
	"github.com/voicewatch/voicewatch/internal/schedule"
	"github.com/voicewatch/voicewatch/internal/scrape"
	"github.com/voicewatch/voicewatch/internal/store"
	"github.com/voicewatch/voicewatch/internal/summarize"
)

func main() {
	once := flag.Bool("once", false, "run one scrape+digest cycle and exit")
	testMode := flag.Bool("test", false, "single cycle against a few sources only (limited API calls)")
	noEmail := flag.Bool("no-email", false, "disable the email channel for this process")
	noSlack := flag.Bool("no-slack", false, "disable the Slack channel for this process")
	logLevel := flag.String("log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	flag.Parse()

	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Error("❌ invalid configuration", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger.InitLevel(cfg.LogLevel)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	p, cleanup, err := buildPipeline(cfg, buildOptions{
		noEmail:  *noEmail,
		noSlack:  *noSlack,
		testMode: *testMode,
	})
	if err != nil {
		logger.Error("❌ startup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once || *testMode {
		if err := runOnce(ctx, p); err != nil {
			cleanup()
			os.Exit(1)
		}
		return
	}
	runScheduled(ctx, cfg, p)
}

// runOnce executes a single full cycle and prints the counts, the mode
// cron deployments and smoke tests use.
func runOnce(ctx context.Context, p *pipeline.Pipeline) error {
	results, err := p.RunScrape(ctx)
	if err != nil {
		logger.Error("❌ run failed", "error", err)
		return err
	}
	if err := p.RunDigest(ctx); err != nil {
		logger.Error("❌ digest failed", "error", err)
		return err
	}

	fmt.Println("\n📊 Results:")
	fmt.Printf("  Articles found: %d\n", results.ArticlesFound)
	fmt.Printf("  Articles processed: %d (relevant to voice AI)\n", results.ArticlesProcessed)
	fmt.Printf("  Reddit posts found: %d\n", results.RedditPosts)
	return nil
}

type buildOptions struct {
	noEmail  bool
	noSlack  bool
	testMode bool
}

// buildPipeline assembles every stage from configuration. The cleanup
// function closes the store and the model provider.
func buildPipeline(cfg *config.Config, opts buildOptions) (*pipeline.Pipeline, func(), error) {
	st, err := store.New(cfg.DatabaseURL, cfg.DataDir, cfg.RunHistoryLimit)
	if err != nil {
		return nil, nil, err
	}

	seen := cache.NewSeenCache(cfg.SeenCachePath, time.Duration(cfg.SeenTTLHours)*time.Hour)
	if err := seen.Load(); err != nil {
		logger.Warn("⚠️ could not load seen cache, starting fresh", "path", cfg.SeenCachePath, "error", err)
	}

	set := keywords.Default()
	if cfg.KeywordsPath != "" {
		set, err = keywords.LoadFile(cfg.KeywordsPath)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
	}
	strategy, err := classify.ParseStrategy(cfg.ClassifyStrategy)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	classifier := classify.New(set, strategy)

	provider, err := summarize.SelectProvider(cfg.SummaryProvider, cfg.GeminiAPIKey, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	summarizer := summarize.New(provider, ratelimit.NewAILimiter(0, 0, cfg.MaxLLMRequests))

	sources := scrape.DefaultSources()
	if _, statErr := os.Stat(cfg.SourcesPath); statErr == nil {
		sources, err = scrape.LoadSources(cfg.SourcesPath)
		if err != nil {
			logger.Warn("⚠️ could not load sources file, using built-in sources", "path", cfg.SourcesPath, "error", err)
			sources = scrape.DefaultSources()
		}
	} else {
		logger.Info("📁 no sources file, using built-in sources", "path", cfg.SourcesPath)
	}

	reddit := scrape.NewRedditScraper(cfg.RedditUserAgent, cfg.RequestTimeout)
	if opts.testMode {
		logger.Info("🧪 test mode, limiting sources and subreddits")
		if len(sources) > 5 {
			sources = sources[:5]
		}
		reddit.Limit(2)
	}

	var email pipeline.Notifier
	if cfg.EnableEmail && !opts.noEmail {
		email = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			TLSMode:  cfg.SMTPTLSMode,
			From:     cfg.EmailFrom,
			To:       cfg.EmailTo,
		})
	}
	var slack pipeline.Notifier
	if cfg.EnableSlack && !opts.noSlack {
		slack = notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel)
	}

	p := &pipeline.Pipeline{
		Config:     cfg,
		News:       scrape.NewNewsScraper(sources, cfg.RequestTimeout, cfg.NewsMaxAge, cfg.MaxArticles),
		Social:     reddit,
		Classifier: classifier,
		Summarizer: summarizer,
		Store:      st,
		Seen:       seen,
		Email:      email,
		Slack:      slack,
	}

	cleanup := func() {
		summarizer.Close()
		if err := st.Close(); err != nil {
			logger.Warn("⚠️ store close failed", "error", err)
		}
	}
	return p, cleanup, nil
}

// runScheduled keeps the scrape and digest jobs running until the
// process is told to stop.
func runScheduled(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline) {
	group := schedule.NewGroup(ctx)

	group.Add(schedule.NewRunner(schedule.JobConfig{
		Name:           "scrape",
		Interval:       cfg.ScrapeInterval,
		BackoffOnError: true,
		RunImmediately: true,
	}, func(ctx context.Context) error {
		_, err := p.RunScrape(ctx)
		return err
	}))

	group.Add(schedule.NewRunner(schedule.JobConfig{
		Name:           "digest",
		Interval:       cfg.DigestInterval,
		BackoffOnError: true,
	}, p.RunDigest))

	<-ctx.Done()
	logger.Info("🛑 shutdown signal received, stopping jobs")
	group.StopAll()
	logger.Info("✅ all jobs stopped")
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("🩺 monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("❌ monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
