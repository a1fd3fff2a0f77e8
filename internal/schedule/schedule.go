// Package schedule runs the scrape and digest cycles on their
// intervals, backing off when a cycle keeps failing.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voicewatch/voicewatch/internal/logger"
)

// JobConfig configures one recurring job.
type JobConfig struct {
	Name           string
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffOnError bool // retry on an exponential schedule instead of waiting out the interval
	RunImmediately bool // run once before the first tick
}

// Runner manages the lifecycle of a single recurring job.
type Runner struct {
	cfg    JobConfig
	fn     func(ctx context.Context) error
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(cfg JobConfig, fn func(ctx context.Context) error) *Runner {
	return &Runner{cfg: cfg, fn: fn}
}

// Start launches the job loop in a goroutine.
func (r *Runner) Start(ctx context.Context) {
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(jobCtx)
	}()
}

// Stop cancels the job and waits for the loop to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context) {
	if r.cfg.RunImmediately {
		if err := r.invoke(ctx); err != nil {
			logger.Error("❌ initial job run failed", "job", r.cfg.Name, "error", err)
		}
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	backoff := time.Duration(0)

	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 job stopped", "job", r.cfg.Name)
			return
		case <-ticker.C:
			err := r.invoke(ctx)
			if err != nil {
				if r.cfg.BackoffOnError {
					backoff = r.nextBackoff(backoff)
					logger.Warn("⚠️ job backing off", "job", r.cfg.Name, "backoff", backoff, "error", err)
					ticker.Reset(backoff)
					continue
				}
				logger.Error("❌ job failed", "job", r.cfg.Name, "error", err)
				continue
			}
			if backoff > 0 {
				logger.Info("✅ backoff cleared, resuming normal interval", "job", r.cfg.Name)
				backoff = 0
				ticker.Reset(r.cfg.Interval)
			}
		}
	}
}

// invoke runs the job once, converting a panic into an error so one bad
// cycle cannot kill the loop.
func (r *Runner) invoke(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return r.fn(ctx)
}

func (r *Runner) nextBackoff(current time.Duration) time.Duration {
	initial := r.cfg.InitialBackoff
	if initial == 0 {
		initial = 30 * time.Second
	}
	max := r.cfg.MaxBackoff
	if max == 0 {
		max = 5 * time.Minute
	}

	if current == 0 {
		return initial
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// Group owns a set of runners sharing one context.
type Group struct {
	runners []*Runner
	ctx     context.Context
}

func NewGroup(ctx context.Context) *Group {
	return &Group{ctx: ctx}
}

// Add starts the runner under the group's context.
func (g *Group) Add(r *Runner) {
	g.runners = append(g.runners, r)
	logger.Info("▶️ starting job", "job", r.cfg.Name, "interval", r.cfg.Interval)
	r.Start(g.ctx)
}

// StopAll stops every runner and waits for them.
func (g *Group) StopAll() {
	for _, r := range g.runners {
		r.Stop()
	}
}
