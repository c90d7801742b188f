// Package stats holds the address histogram and the chi-square uniformity
// test computed over it once a search has finished.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/screa/vanity-sampler/pkg/types"
)

// Errors
var (
	ErrEmptyHistogram   = errors.New("histogram has no observations")
	ErrZeroSample       = errors.New("sample size must be positive")
	ErrDegreesOfFreedom = errors.New("degrees of freedom must be at least 1")
	ErrStatistic        = errors.New("chi-square statistic must be a non-negative number")
)

// ChiSquare computes the chi-square statistic of counts against a uniform
// expectation of sampleSize/k per distinct address, k being len(counts).
func ChiSquare(counts map[string]uint64, sampleSize uint64) (float64, error) {
	k := len(counts)
	if k == 0 {
		return 0, ErrEmptyHistogram
	}
	if sampleSize == 0 {
		return 0, ErrZeroSample
	}

	expected := float64(sampleSize) / float64(k)
	var chi float64
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi, nil
}

// PValue returns 1 - CDF(statistic) for the chi-square distribution with df
// degrees of freedom.
func PValue(statistic float64, df int) (float64, error) {
	if df < 1 {
		return 0, ErrDegreesOfFreedom
	}
	if math.IsNaN(statistic) || statistic < 0 {
		return 0, ErrStatistic
	}

	p := distuv.ChiSquared{K: float64(df)}.Survival(statistic)
	// Survival can drift a hair outside [0,1] for extreme inputs
	return math.Min(1, math.Max(0, p)), nil
}

// BuildReport computes the final report for a run. Degenerate histograms do
// not fail: the parts that cannot be computed are flagged in the report.
func BuildReport(counts map[string]uint64, sampleSize uint64) types.Report {
	r := types.Report{Distinct: len(counts)}
	if r.Distinct > 1 {
		r.DegreesOfFreedom = r.Distinct - 1
	}

	chi, err := ChiSquare(counts, sampleSize)
	if err != nil {
		return r
	}
	r.ChiSquare = chi
	r.StatisticOK = true

	p, err := PValue(chi, r.DegreesOfFreedom)
	if err != nil {
		return r
	}
	r.PValue = p
	r.PValueOK = true
	return r
}
