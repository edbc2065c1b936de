// Package analysis reduces a completed Monte Carlo run to distribution
// statistics: percentiles, descriptive stats, and a kernel density estimate
// for downstream plotting.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"storage-npv/internal/model"
)

// MinTrials is the smallest NPV collection that can be summarized:
// percentile interpolation and bandwidth selection both need two points.
const MinTrials = 2

// kdeGridPoints is the fixed evaluation grid size of the density curve.
const kdeGridPoints = 256

// KDECurve is a Gaussian kernel density estimate evaluated on an evenly
// spaced grid spanning the sample ± 3 bandwidths.
type KDECurve struct {
	X         []float64 `json:"x"`
	Density   []float64 `json:"density"`
	Bandwidth float64   `json:"bandwidth"`
}

// Summary is the derived statistics block of a ResultSet.
type Summary struct {
	Count int `json:"count"`

	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`

	P5  float64 `json:"p5"`
	P10 float64 `json:"p10"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`

	KDE KDECurve `json:"kde"`
}

// Summarize computes the summary statistics over a raw NPV collection.
// Input order is irrelevant; the input slice is not modified. Deterministic:
// the same collection always yields the same summary, KDE included.
func Summarize(npvs []float64) (*Summary, error) {
	if len(npvs) < MinTrials {
		return nil, fmt.Errorf("%w: summarization needs at least %d trials, got %d",
			model.ErrInsufficientData, MinTrials, len(npvs))
	}
	for i, v := range npvs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite NPV at index %d", model.ErrNumericOverflow, i)
		}
	}

	sorted := make([]float64, len(npvs))
	copy(sorted, npvs)
	sort.Float64s(sorted)

	mean, _ := stats.Mean(sorted)
	median, _ := stats.Median(sorted)
	minv, _ := stats.Min(sorted)
	maxv, _ := stats.Max(sorted)

	s := &Summary{
		Count:  len(sorted),
		Mean:   mean,
		Median: median,
		StdDev: stat.StdDev(sorted, nil),
		Min:    minv,
		Max:    maxv,
		P5:     percentileSorted(sorted, 0.05),
		P10:    percentileSorted(sorted, 0.10),
		P90:    percentileSorted(sorted, 0.90),
		P95:    percentileSorted(sorted, 0.95),
	}
	s.KDE = kdeSorted(sorted, s.StdDev)
	return s, nil
}

// percentileSorted interpolates linearly between order statistics at rank
// q*(n-1). This matches the numpy/gonum default quantile definition.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// silvermanBandwidth is Silverman's rule of thumb:
//
//	h = 0.9 × min(σ, IQR/1.34) × n^(−1/5)
//
// Degenerate samples (every value equal) get a small positive floor so the
// density stays finite.
func silvermanBandwidth(sorted []float64, stddev float64) float64 {
	iqr := percentileSorted(sorted, 0.75) - percentileSorted(sorted, 0.25)
	spread := stddev
	if iqr > 0 && iqr/1.34 < spread {
		spread = iqr / 1.34
	}
	h := 0.9 * spread * math.Pow(float64(len(sorted)), -0.2)
	if h <= 0 {
		h = math.Max(math.Abs(sorted[0])*1e-3, 1e-9)
	}
	return h
}

func kdeSorted(sorted []float64, stddev float64) KDECurve {
	h := silvermanBandwidth(sorted, stddev)
	n := float64(len(sorted))

	grid := make([]float64, kdeGridPoints)
	floats.Span(grid, sorted[0]-3*h, sorted[len(sorted)-1]+3*h)

	density := make([]float64, kdeGridPoints)
	for i, x := range grid {
		sum := 0.0
		for _, xi := range sorted {
			sum += distuv.UnitNormal.Prob((x - xi) / h)
		}
		density[i] = sum / (n * h)
	}
	return KDECurve{X: grid, Density: density, Bandwidth: h}
}
