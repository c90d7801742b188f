// Package report writes the human readable output of a search: matches and
// progress while it runs, and the statistical summary once it is done.
package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/screa/vanity-sampler/pkg/types"
)

// NotComputable is printed in place of a statistic that could not be derived
const NotComputable = "n/a"

// Printer serialises writes from concurrent workers to a single writer
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Match writes the address and private key lines of a match as one block
func (p *Printer) Match(kp types.Keypair) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Found address: %s\nFound private key: %s\n", kp.Address, kp.PrivateKey)
}

// Progress writes the running guess count
func (p *Printer) Progress(guesses uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Number of guesses: %d\n", guesses)
}

// Final writes the closing summary block
func (p *Printer) Final(guesses uint64, r types.Report) {
	chi, pv := NotComputable, NotComputable
	if r.StatisticOK {
		chi = formatFloat(r.ChiSquare)
	}
	if r.PValueOK {
		pv = formatFloat(r.PValue)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, "Sample collection completed.")
	fmt.Fprintf(p.out, "Number of guesses: %d\n", guesses)
	fmt.Fprintf(p.out, "Chi-square: %s\n", chi)
	fmt.Fprintf(p.out, "Degrees of freedom: %d\n", r.DegreesOfFreedom)
	fmt.Fprintf(p.out, "P-value: %s\n", pv)
}

// formatFloat prints the shortest decimal that round-trips, without an exponent
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
