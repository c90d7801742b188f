package search

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/vanity-sampler/internal/crypto"
	"github.com/screa/vanity-sampler/internal/logger"
	"github.com/screa/vanity-sampler/pkg/types"
	"github.com/screa/vanity-sampler/pkg/worker"
)

type recorder struct {
	mu       sync.Mutex
	matches  []types.Keypair
	progress []uint64
}

func (r *recorder) Match(kp types.Keypair) {
	r.mu.Lock()
	r.matches = append(r.matches, kp)
	r.mu.Unlock()
}

func (r *recorder) Progress(n uint64) {
	r.mu.Lock()
	r.progress = append(r.progress, n)
	r.mu.Unlock()
}

// blockingGenerator never matches anything and keeps the workers busy
type blockingGenerator struct{}

func (blockingGenerator) Generate() (types.Keypair, error) {
	time.Sleep(time.Millisecond)
	return types.Keypair{PrivateKey: "k", Address: "zz"}, nil
}

func histogramTotal(h map[string]uint64) uint64 {
	var total uint64
	for _, c := range h {
		total += c
	}
	return total
}

func sum(xs []uint64) uint64 {
	var total uint64
	for _, x := range xs {
		total += x
	}
	return total
}

func TestCoordinatorInvariants(t *testing.T) {
	const workers = 4
	const sampleSize = 200

	seq := crypto.NewSequence("aa1", "bb2", "cc3", "dd2", "ee5")
	rec := &recorder{}
	c := NewCoordinator(types.SearchConfig{Suffix: "2", SampleSize: sampleSize}, workers, seq, rec)

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, out.Found, uint64(sampleSize))
	assert.LessOrEqual(t, out.Found, uint64(sampleSize+workers-1))
	assert.GreaterOrEqual(t, out.Guesses, out.Found)
	assert.Equal(t, out.Guesses, sum(out.PerWorker))
	assert.Equal(t, out.Guesses, histogramTotal(out.Histogram))
	assert.Equal(t, out.Guesses, seq.Calls())
	assert.Len(t, out.PerWorker, workers)

	require.Len(t, rec.matches, int(out.Found))
	for _, m := range rec.matches {
		assert.True(t, strings.HasSuffix(m.Address, "2"), m.Address)
	}
}

func TestCoordinatorZeroSample(t *testing.T) {
	seq := crypto.NewSequence("X1", "X2")
	c := NewCoordinator(types.SearchConfig{Suffix: "aaa", SampleSize: 0}, 4, seq, &recorder{})

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, out.Guesses)
	assert.Zero(t, out.Found)
	assert.Empty(t, out.Histogram)
	assert.Zero(t, seq.Calls())
}

func TestCoordinatorCycleSingleWorker(t *testing.T) {
	seq := crypto.NewSequence("X1", "X2", "X1", "X2")
	rec := &recorder{}
	c := NewCoordinator(types.SearchConfig{Suffix: "2", SampleSize: 1}, 1, seq, rec)

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), out.Found)
	assert.Equal(t, uint64(2), out.Guesses)
	assert.Equal(t, map[string]uint64{"X1": 1, "X2": 1}, out.Histogram)
	require.Len(t, rec.matches, 1)
	assert.Equal(t, "X2", rec.matches[0].Address)
}

func TestCoordinatorCycleManyWorkers(t *testing.T) {
	const workers = 4
	seq := crypto.NewSequence("X1", "X2", "X1", "X2")
	rec := &recorder{}
	c := NewCoordinator(types.SearchConfig{Suffix: "2", SampleSize: 1}, workers, seq, rec)

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, out.Found, uint64(1))
	assert.LessOrEqual(t, out.Found, uint64(workers))
	assert.GreaterOrEqual(t, out.Guesses, uint64(2))
	assert.Equal(t, out.Guesses, histogramTotal(out.Histogram))
	for addr := range out.Histogram {
		assert.Contains(t, []string{"X1", "X2"}, addr)
	}
	for _, m := range rec.matches {
		assert.Equal(t, "X2", m.Address)
	}
}

func TestCoordinatorEmptySuffixSingleWorker(t *testing.T) {
	seq := crypto.NewSequence("a", "b", "c")
	rec := &recorder{}
	c := NewCoordinator(types.SearchConfig{Suffix: "", SampleSize: 5}, 1, seq, rec)

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(5), out.Guesses)
	assert.Equal(t, uint64(5), out.Found)
	assert.Equal(t, uint64(5), histogramTotal(out.Histogram))
	assert.Len(t, rec.matches, 5)
}

func TestCoordinatorProgressEvery(t *testing.T) {
	seq := crypto.NewSequence("a")
	rec := &recorder{}
	c := NewCoordinator(types.SearchConfig{Suffix: "", SampleSize: 100}, 3, seq, rec, WithProgressEvery(10))

	out, err := c.Run(context.Background())
	require.NoError(t, err)

	// the post-increment value is unique per guess, so every multiple fires once
	assert.Len(t, rec.progress, int(out.Guesses/10))
	for _, n := range rec.progress {
		assert.Zero(t, n%10)
	}
}

func TestCoordinatorGenerationFailure(t *testing.T) {
	seq := crypto.NewSequence("a")
	seq.FailAfter = 10
	c := NewCoordinator(types.SearchConfig{Suffix: "zzz", SampleSize: 1}, 4, seq, &recorder{})

	out, err := c.Run(context.Background())
	require.ErrorIs(t, err, worker.ErrGeneration)
	assert.Nil(t, out)
}

func TestCoordinatorStop(t *testing.T) {
	c := NewCoordinator(types.SearchConfig{Suffix: "never", SampleSize: 1}, 2, blockingGenerator{}, &recorder{})

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background())
		errCh <- err
	}()

	require.Eventually(t, func() bool { return c.Guesses() > 0 }, 5*time.Second, time.Millisecond)
	c.Stop()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop")
	}
	assert.Zero(t, c.Found())
}

func TestCoordinatorStopBeforeRun(t *testing.T) {
	c := NewCoordinator(types.SearchConfig{Suffix: "never", SampleSize: 1}, 2, blockingGenerator{}, &recorder{})
	c.Stop()

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoordinatorNoWorkers(t *testing.T) {
	c := NewCoordinator(types.SearchConfig{Suffix: "a", SampleSize: 1}, 0, crypto.NewSequence("a"), &recorder{})
	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestCoordinatorLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewWriter(&buf, "prod", "info")
	require.NoError(t, err)

	c := NewCoordinator(types.SearchConfig{Suffix: "", SampleSize: 3}, 1, crypto.NewSequence("a"), &recorder{},
		WithLogger(l), WithRateLogging(time.Hour))
	_, err = c.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "search started")
	assert.Contains(t, buf.String(), "search completed")
}

func TestRate(t *testing.T) {
	assert.Zero(t, rate(100, 0))
	assert.InDelta(t, 50.0, rate(100, 2*time.Second), 1e-9)
}
