package crypto

import (
	"fmt"
	"sync"

	"github.com/screa/vanity-sampler/pkg/types"
)

// Sequence replays a fixed cycle of addresses. It is deterministic and
// meant for exercising the search loop without real key material.
type Sequence struct {
	mu        sync.Mutex
	addresses []string
	next      int
	calls     uint64

	// FailAfter makes Generate return an error once this many calls have
	// succeeded. Zero disables it.
	FailAfter uint64
}

// NewSequence creates a generator cycling over addresses
func NewSequence(addresses ...string) *Sequence {
	return &Sequence{addresses: addresses}
}

// Generate returns the next address of the cycle with a synthetic key
func (s *Sequence) Generate() (types.Keypair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAfter > 0 && s.calls >= s.FailAfter {
		return types.Keypair{}, fmt.Errorf("sequence exhausted after %d keys", s.calls)
	}
	if len(s.addresses) == 0 {
		return types.Keypair{}, fmt.Errorf("sequence has no addresses")
	}

	addr := s.addresses[s.next]
	s.next = (s.next + 1) % len(s.addresses)
	s.calls++
	return types.Keypair{
		PrivateKey: fmt.Sprintf("key-%d", s.calls),
		Address:    addr,
	}, nil
}

// Calls returns how many keypairs were handed out
func (s *Sequence) Calls() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
