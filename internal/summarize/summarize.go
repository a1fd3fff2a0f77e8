// Package summarize turns scraped articles into digest-ready summaries.
// A model provider does the work when one is configured; everything falls
// back to extractive summaries, so the pipeline never loses an article to
// a summarization failure.
package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/voicewatch/voicewatch/internal/logger"
	"github.com/voicewatch/voicewatch/internal/metrics"
	"github.com/voicewatch/voicewatch/internal/ratelimit"
	"github.com/voicewatch/voicewatch/internal/retry"
)

// Provider is a model backend capable of summarizing articles.
type Provider interface {
	Name() string
	Summarize(ctx context.Context, title, content string) (string, error)
	ExecutiveSummary(ctx context.Context, headlines []string) (string, error)
	Close()
}

// Summarizer wraps a provider with rate limiting, retries and the
// extractive fallback.
type Summarizer struct {
	provider Provider
	limiter  *ratelimit.AILimiter
	retry    retry.RetryConfig
}

// New builds a summarizer. A nil provider is valid and means every
// summary is extractive.
func New(provider Provider, limiter *ratelimit.AILimiter) *Summarizer {
	return &Summarizer{
		provider: provider,
		limiter:  limiter,
		retry: retry.RetryConfig{
			MaxAttempts: 2,
			Delay:       2 * time.Second,
			Backoff:     true,
		},
	}
}

// SelectProvider picks the provider named by configuration. With "auto"
// the first configured API key wins; no key at all means extractive
// summaries only.
func SelectProvider(name, geminiKey, openaiKey, openaiModel string) (Provider, error) {
	switch name {
	case "none":
		return nil, nil
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("summary provider gemini requires GEMINI_API_KEY")
		}
		return NewGeminiProvider(geminiKey)
	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("summary provider openai requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(openaiKey, openaiModel), nil
	default:
		if geminiKey != "" {
			return NewGeminiProvider(geminiKey)
		}
		if openaiKey != "" {
			return NewOpenAIProvider(openaiKey, openaiModel), nil
		}
		logger.Info("📝 no model API key configured, summaries will be extractive")
		return nil, nil
	}
}

// Summarize returns a summary for the article. It never fails; when the
// provider is missing, over budget or erroring, the extractive summary is
// returned instead.
func (s *Summarizer) Summarize(ctx context.Context, title, content string) string {
	if s.provider != nil && s.limiter.CanUse(s.provider.Name()) {
		var out string
		err := retry.WithRetry(ctx, s.retry, func() error {
			var callErr error
			out, callErr = s.provider.Summarize(ctx, title, content)
			return callErr
		})
		out = strings.TrimSpace(out)
		if err == nil && out != "" {
			if useErr := s.limiter.Use(s.provider.Name()); useErr != nil {
				logger.Warn("⚠️ rate limiter rejected completed request", "error", useErr)
			}
			return out
		}
		logger.Warn("⚠️ model summary failed, falling back to extractive", "provider", s.provider.Name(), "error", err)
		metrics.Global.IncrementSummaryFallbacks()
	}
	return Extractive(title, content)
}

// ExecutiveSummary produces a short overview of the day's headlines for
// the digest header. An empty string means the digest goes out without
// one.
func (s *Summarizer) ExecutiveSummary(ctx context.Context, headlines []string) string {
	if s.provider == nil || len(headlines) == 0 || !s.limiter.CanUse(s.provider.Name()) {
		return ""
	}

	var out string
	err := retry.WithRetry(ctx, s.retry, func() error {
		var callErr error
		out, callErr = s.provider.ExecutiveSummary(ctx, headlines)
		return callErr
	})
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		logger.Warn("⚠️ executive summary failed, digest goes out without one", "error", err)
		return ""
	}

	if useErr := s.limiter.Use(s.provider.Name()); useErr != nil {
		logger.Warn("⚠️ rate limiter rejected completed request", "error", useErr)
	}
	return out
}

// Close releases the provider, if any.
func (s *Summarizer) Close() {
	if s.provider != nil {
		s.provider.Close()
	}
}

// prepare normalizes article content for a prompt and trims it to a size
// the cheap model tiers accept, cutting on a sentence boundary when one
// is close enough.
func prepare(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.TrimSpace(content)
	content = strings.Join(strings.Fields(content), " ")

	maxChars := 6000
	if utf8.RuneCountInString(content) > maxChars {
		runes := []rune(content)
		trimmed := string(runes[:maxChars])
		if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
			trimmed = trimmed[:idx+1]
		}
		content = trimmed + "\n[TRUNCATED]"
	}
	return content
}
