package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"storage-npv/internal/model"
)

func TestSummarizeRequiresMinimumTrials(t *testing.T) {
	_, err := Summarize(nil)
	require.ErrorIs(t, err, model.ErrInsufficientData)
	_, err = Summarize([]float64{1})
	require.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = Summarize([]float64{1, 2})
	require.NoError(t, err)
}

func TestSummarizeRejectsNonFinite(t *testing.T) {
	_, err := Summarize([]float64{1, math.NaN(), 3})
	require.ErrorIs(t, err, model.ErrNumericOverflow)
	_, err = Summarize([]float64{1, math.Inf(1), 3})
	require.ErrorIs(t, err, model.ErrNumericOverflow)
}

func TestSummarizeKnownPercentiles(t *testing.T) {
	// Linear interpolation between order statistics at rank q*(n-1).
	s, err := Summarize([]float64{5, 3, 1, 2, 4})
	require.NoError(t, err)

	assert.InDelta(t, 1.2, s.P5, 1e-12)
	assert.InDelta(t, 1.4, s.P10, 1e-12)
	assert.InDelta(t, 3.0, s.Median, 1e-12)
	assert.InDelta(t, 4.6, s.P90, 1e-12)
	assert.InDelta(t, 4.8, s.P95, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
}

func TestSummarizeOrderIrrelevant(t *testing.T) {
	a, err := Summarize([]float64{9, -4, 2.5, 0, 7})
	require.NoError(t, err)
	b, err := Summarize([]float64{0, 7, 9, 2.5, -4})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSummarizePercentileOrderingProperty(t *testing.T) {
	src := rand.NewSource(99)
	dist := distuv.Normal{Mu: 1e6, Sigma: 5e5, Src: src}
	npvs := make([]float64, 5000)
	for i := range npvs {
		npvs[i] = dist.Rand()
	}

	s, err := Summarize(npvs)
	require.NoError(t, err)

	assert.LessOrEqual(t, s.P5, s.Median)
	assert.LessOrEqual(t, s.Median, s.P95)
	assert.GreaterOrEqual(t, s.P5, s.Min)
	assert.LessOrEqual(t, s.P95, s.Max)
	assert.LessOrEqual(t, s.P5, s.P10)
	assert.LessOrEqual(t, s.P90, s.P95)
}

func TestKDEDeterministic(t *testing.T) {
	npvs := []float64{1, 5, 2, 8, 3, 3, 7}
	a, err := Summarize(npvs)
	require.NoError(t, err)
	b, err := Summarize(npvs)
	require.NoError(t, err)
	require.Equal(t, a.KDE, b.KDE)
}

func TestKDEIntegratesToOne(t *testing.T) {
	src := rand.NewSource(4)
	dist := distuv.Normal{Mu: 0, Sigma: 2, Src: src}
	npvs := make([]float64, 500)
	for i := range npvs {
		npvs[i] = dist.Rand()
	}

	s, err := Summarize(npvs)
	require.NoError(t, err)
	require.Len(t, s.KDE.X, kdeGridPoints)
	require.Len(t, s.KDE.Density, kdeGridPoints)
	assert.Positive(t, s.KDE.Bandwidth)

	// Trapezoid rule over the grid; the ±3h margin captures nearly all
	// kernel mass.
	integral := 0.0
	for i := 1; i < len(s.KDE.X); i++ {
		dx := s.KDE.X[i] - s.KDE.X[i-1]
		integral += dx * (s.KDE.Density[i] + s.KDE.Density[i-1]) / 2
	}
	assert.InDelta(t, 1.0, integral, 0.02)
}

func TestKDEDegenerateSample(t *testing.T) {
	s, err := Summarize([]float64{42, 42, 42})
	require.NoError(t, err)
	assert.Positive(t, s.KDE.Bandwidth)
	for _, d := range s.KDE.Density {
		assert.False(t, math.IsNaN(d))
		assert.False(t, math.IsInf(d, 0))
	}
}

func TestPercentileSortedEdges(t *testing.T) {
	sorted := []float64{10, 20, 30}
	assert.Equal(t, 10.0, percentileSorted(sorted, 0))
	assert.Equal(t, 30.0, percentileSorted(sorted, 1))
	assert.InDelta(t, 20.0, percentileSorted(sorted, 0.5), 1e-12)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}
