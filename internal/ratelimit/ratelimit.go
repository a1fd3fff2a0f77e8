package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/voicewatch/voicewatch/internal/logger"
)

// AILimiter caps how many model requests the pipeline may spend per day.
// Scheduled runs share one budget, so a noisy news day cannot burn through
// a free API tier by itself.
type AILimiter struct {
	mu          sync.Mutex
	geminiCount int
	openaiCount int
	totalCount  int
	maxGemini   int
	maxOpenAI   int
	maxTotal    int
	resetTime   time.Time
}

// NewAILimiter creates a limiter with daily per-provider and total caps.
// A cap of zero means unlimited.
func NewAILimiter(maxGemini, maxOpenAI, maxTotal int) *AILimiter {
	return &AILimiter{
		maxGemini: maxGemini,
		maxOpenAI: maxOpenAI,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// CanUse reports whether a request to the named provider fits the budget.
func (rl *AILimiter) CanUse(provider string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	count, max := rl.counters(provider)
	if max > 0 && count >= max {
		logger.Warn("⚠️ provider rate limit reached", "provider", provider, "used", count, "limit", max)
		return false
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		logger.Warn("⚠️ total AI rate limit reached", "used", rl.totalCount, "limit", rl.maxTotal)
		return false
	}

	return true
}

// Use spends one request from the named provider's budget.
func (rl *AILimiter) Use(provider string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	count, max := rl.counters(provider)
	if max > 0 && count >= max {
		return fmt.Errorf("%s rate limit exceeded", provider)
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	switch provider {
	case "gemini":
		rl.geminiCount++
	case "openai":
		rl.openaiCount++
	}
	rl.totalCount++

	logger.Debug("📊 AI usage", "provider", provider, "total", rl.totalCount, "total_limit", rl.maxTotal)
	return nil
}

// GetStats returns the current counters.
func (rl *AILimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":  rl.geminiCount,
		"gemini_limit": rl.maxGemini,
		"openai_used":  rl.openaiCount,
		"openai_limit": rl.maxOpenAI,
		"total_used":   rl.totalCount,
		"total_limit":  rl.maxTotal,
		"reset_time":   rl.resetTime,
	}
}

func (rl *AILimiter) counters(provider string) (int, int) {
	switch provider {
	case "gemini":
		return rl.geminiCount, rl.maxGemini
	case "openai":
		return rl.openaiCount, rl.maxOpenAI
	default:
		return 0, 0
	}
}

// checkReset rolls the daily window forward once it has passed.
func (rl *AILimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		logger.Info("🔄 resetting AI rate limiter counters")
		rl.geminiCount = 0
		rl.openaiCount = 0
		rl.totalCount = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
