package stats

import "sync"

// Histogram counts occurrences of address strings. It is shared by every
// worker of a run and only ever grows.
type Histogram struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewHistogram creates an empty histogram
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[string]uint64)}
}

// Record increments the count for address.
func (h *Histogram) Record(address string) {
	h.mu.Lock()
	h.counts[address]++
	h.mu.Unlock()
}

// Len returns the number of distinct addresses seen so far
func (h *Histogram) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.counts)
}

// Total returns the sum of all counts
func (h *Histogram) Total() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total uint64
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Snapshot returns a copy of the current counts.
func (h *Histogram) Snapshot() map[string]uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]uint64, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}
