package types

import "time"

// Keypair is a freshly generated private key and the address derived from it,
// both in their canonical string form.
type Keypair struct {
	PrivateKey string
	Address    string
}

// KeyGenerator produces uniformly random keypairs from a cryptographically
// secure source. Implementations must be safe for concurrent use.
type KeyGenerator interface {
	Generate() (Keypair, error)
}

// SearchConfig is the immutable input of a single search run
type SearchConfig struct {
	Suffix     string
	SampleSize uint64
}

// Outcome is the aggregated state returned once every worker has stopped
type Outcome struct {
	Guesses   uint64
	Found     uint64
	Histogram map[string]uint64
	PerWorker []uint64 // iterations performed by each worker, indexed by worker ID
	Duration  time.Duration
}

// Report is the chi-square summary of a finished run.
//
// StatisticOK is false when the histogram is empty, PValueOK is false when
// fewer than two distinct addresses were observed.
type Report struct {
	Distinct         int
	ChiSquare        float64
	DegreesOfFreedom int
	PValue           float64
	StatisticOK      bool
	PValueOK         bool
}
