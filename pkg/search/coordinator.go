// Package search coordinates a pool of workers hunting for a suffix match
// while sampling every generated address.
package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screa/vanity-sampler/internal/logger"
	"github.com/screa/vanity-sampler/pkg/types"
	"github.com/screa/vanity-sampler/pkg/worker"
)

// ErrNoWorkers is returned by Run when the pool size is not positive
var ErrNoWorkers = errors.New("at least one worker is required")

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the diagnostics logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithProgressEvery sets how many guesses separate progress notifications.
// Zero disables them.
func WithProgressEvery(n uint64) Option {
	return func(c *Coordinator) { c.progressEvery = n }
}

// WithRateLogging logs attempts and hash rate at the given interval
func WithRateLogging(interval time.Duration) Option {
	return func(c *Coordinator) { c.logInterval = interval }
}

// Coordinator owns the shared counters and histogram of one search run
type Coordinator struct {
	search        types.SearchConfig
	workers       int
	generator     types.KeyGenerator
	notifier      worker.Notifier
	logger        *logger.Logger
	progressEvery uint64
	logInterval   time.Duration

	shared *worker.Shared
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewCoordinator creates a coordinator for a single run
func NewCoordinator(cfg types.SearchConfig, workers int, gen types.KeyGenerator, notifier worker.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		search:        cfg,
		workers:       workers,
		generator:     gen,
		notifier:      notifier,
		logger:        logger.Nop(),
		progressEvery: 100_000,
		shared:        worker.NewShared(),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run starts the workers and blocks until every one of them has returned.
// The first worker error cancels the others and is returned; no partial
// outcome is produced in that case.
func (c *Coordinator) Run(ctx context.Context) (*types.Outcome, error) {
	if c.workers <= 0 {
		return nil, ErrNoWorkers
	}
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	// a Stop issued before Run still wins
	select {
	case <-c.done:
		cancel()
	default:
	}

	c.logger.Info(map[string]any{
		"workers":     c.workers,
		"suffix":      c.search.Suffix,
		"sample_size": c.search.SampleSize,
	}, "search started")

	var logDone chan struct{}
	if c.logInterval > 0 {
		ticker := time.NewTicker(c.logInterval)
		logDone = make(chan struct{})
		go c.periodicLogger(ticker, logDone, start)
	}

	wcfg := &worker.Config{Search: c.search, ProgressEvery: c.progressEvery}
	pool := make([]*worker.Worker, c.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range pool {
		w := worker.NewWorker(i, wcfg, c.shared, c.generator, c.notifier)
		pool[i] = w
		g.Go(func() error { return w.Run(gctx) })
	}
	err := g.Wait()

	if logDone != nil {
		close(logDone)
	}
	if err != nil {
		c.logger.Error(map[string]any{
			"error":   err.Error(),
			"guesses": c.shared.Guesses.Load(),
		}, "search aborted")
		return nil, err
	}

	out := &types.Outcome{
		Guesses:   c.shared.Guesses.Load(),
		Found:     c.shared.Found.Load(),
		Histogram: c.shared.Histogram.Snapshot(),
		PerWorker: make([]uint64, len(pool)),
		Duration:  time.Since(start),
	}
	for i, w := range pool {
		out.PerWorker[i] = w.Iterations()
	}

	c.logger.Info(map[string]any{
		"guesses":  out.Guesses,
		"found":    out.Found,
		"distinct": len(out.Histogram),
		"duration": out.Duration.String(),
		"rate":     rate(out.Guesses, out.Duration),
	}, "search completed")
	return out, nil
}

// Stop cancels a running search. Run then returns context.Canceled.
func (c *Coordinator) Stop() {
	c.once.Do(func() { close(c.done) })
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// Guesses returns the live guess counter
func (c *Coordinator) Guesses() uint64 {
	return c.shared.Guesses.Load()
}

// Found returns the live match counter
func (c *Coordinator) Found() uint64 {
	return c.shared.Found.Load()
}

// periodicLogger logs search progress at regular intervals
func (c *Coordinator) periodicLogger(ticker *time.Ticker, done chan struct{}, start time.Time) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			guesses := c.shared.Guesses.Load()
			c.logger.Info(map[string]any{
				"guesses": guesses,
				"found":   c.shared.Found.Load(),
				"target":  c.search.SampleSize,
				"rate":    rate(guesses, time.Since(start)),
			}, "progress")
		case <-done:
			return
		}
	}
}

// rate returns keys per second, zero for an empty duration
func rate(n uint64, d time.Duration) float64 {
	if d.Seconds() <= 0 {
		return 0
	}
	return float64(n) / d.Seconds()
}
