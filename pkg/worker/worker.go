package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/screa/vanity-sampler/pkg/stats"
	"github.com/screa/vanity-sampler/pkg/types"
)

// ErrGeneration wraps any failure of the key generator. It is fatal to the run.
var ErrGeneration = errors.New("key generation failed")

// Notifier receives matches and progress as they happen. Calls arrive
// concurrently from every worker.
type Notifier interface {
	Match(kp types.Keypair)
	Progress(guesses uint64)
}

// Shared is the state every worker of a run mutates
type Shared struct {
	Guesses   atomic.Uint64
	Found     atomic.Uint64
	Histogram *stats.Histogram
}

// NewShared creates zeroed counters and an empty histogram
func NewShared() *Shared {
	return &Shared{Histogram: stats.NewHistogram()}
}

// Config contains configuration for individual workers
type Config struct {
	Search        types.SearchConfig
	ProgressEvery uint64 // zero disables progress notifications
}

// Worker runs the generate/count/match loop of a single goroutine
type Worker struct {
	id         int
	config     *Config
	shared     *Shared
	generator  types.KeyGenerator
	notifier   Notifier
	iterations uint64
}

// NewWorker creates a new worker instance
func NewWorker(id int, config *Config, shared *Shared, gen types.KeyGenerator, notifier Notifier) *Worker {
	return &Worker{
		id:        id,
		config:    config,
		shared:    shared,
		generator: gen,
		notifier:  notifier,
	}
}

// ID returns the worker's index within its run
func (w *Worker) ID() int {
	return w.id
}

// Iterations returns how many keypairs this worker generated. Only read it
// after Run has returned.
func (w *Worker) Iterations() uint64 {
	return w.iterations
}

// Run loops until the shared found counter reaches the sample size, the
// context is cancelled or the generator fails. The found counter is read
// without synchronising against other workers, so up to one extra match per
// worker may be recorded past the target.
func (w *Worker) Run(ctx context.Context) error {
	for w.shared.Found.Load() < w.config.Search.SampleSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := w.step(); err != nil {
			return err
		}
	}
	return nil
}

// step performs a single iteration
func (w *Worker) step() error {
	kp, err := w.generator.Generate()
	if err != nil {
		return fmt.Errorf("worker %d: %w: %w", w.id, ErrGeneration, err)
	}
	w.iterations++

	n := w.shared.Guesses.Add(1)
	if every := w.config.ProgressEvery; every > 0 && n%every == 0 {
		w.notifier.Progress(n)
	}

	w.shared.Histogram.Record(kp.Address)

	if w.matches(kp.Address) {
		w.notifier.Match(kp)
		w.shared.Found.Add(1)
	}
	return nil
}

// matches is an exact, case-sensitive suffix comparison
func (w *Worker) matches(address string) bool {
	return strings.HasSuffix(address, w.config.Search.Suffix)
}
