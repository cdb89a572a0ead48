package lcp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticChain builds a chain whose theta alpha value encodes the walker and
// step, for checking burn-in and thinning order.
func syntheticChain(walkers, steps int) *MarkovChain {
	chain := &MarkovChain{
		Samples:  make([][][]float64, walkers),
		LogProb:  make([][]float64, walkers),
		Accepted: make([]int, walkers),
		Steps:    steps,
	}

	for w := 0; w < walkers; w++ {
		for s := 0; s < steps; s++ {
			chain.Samples[w] = append(chain.Samples[w], []float64{float64(100*w + s), 0, 0, 1, 0.01})
			chain.LogProb[w] = append(chain.LogProb[w], 0)
		}
	}

	return chain
}

func alphas(set *PosteriorSampleSet) []float64 {
	out := make([]float64, 0, set.Len())
	for _, theta := range set.Samples {
		out = append(out, theta[IdxAlpha])
	}

	return out
}

func TestBurnIn(t *testing.T) {
	chain := syntheticChain(3, 5)

	set, err := BurnIn(chain, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4, 102, 103, 104, 202, 203, 204}, alphas(set))

	set, err = BurnIn(chain, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 103, 202, 204}, alphas(set))

	set, err = BurnIn(chain, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, set.Len())
}

func TestBurnInClampsToLastStep(t *testing.T) {
	set, err := BurnIn(syntheticChain(3, 5), 300, 1)
	require.NoError(t, err)

	assert.Equal(t, []float64{4, 104, 204}, alphas(set))
}

func TestBurnInErrors(t *testing.T) {
	_, err := BurnIn(nil, 0, 1)
	assert.ErrorIs(t, err, ErrNoChain)

	_, err = BurnIn(&MarkovChain{}, 0, 1)
	assert.ErrorIs(t, err, ErrNoChain)

	_, err = BurnIn(syntheticChain(2, 2), -1, 1)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = BurnIn(syntheticChain(2, 2), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPredictiveDistribution(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	set := &PosteriorSampleSet{Samples: [][]float64{
		{0.9, 0.1, 0.5, 1, 0.01},
		{0.8, 0.2, 0.0, 1, 5},
		{0.7, 0.3, 1.0, 2, -3},
	}}

	var first []float64
	for y := range engine.PredictiveDistribution(4, set) {
		first = append(first, y)
	}

	// Restartable: a second pass yields the same values.
	var second []float64
	for y := range engine.PredictiveDistribution(4, set) {
		second = append(second, y)
	}

	require.Len(t, first, 3)
	assert.Equal(t, first, second)

	// Sigma plays no role in the curve value.
	assert.InDelta(t, 0.9-0.8*math.Exp(-2), first[0], 1e-12)
	assert.InDelta(t, 0.2, first[1], 1e-12)
	assert.InDelta(t, 0.7-0.4*math.Exp(-16), first[2], 1e-12)
}

func TestPredict(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	// kappa=0 keeps each curve at beta.
	set := &PosteriorSampleSet{Samples: [][]float64{
		{0.9, 0.2, 0, 1, 0.01},
		{0.9, 0.4, 0, 1, 0.01},
		{0.9, 0.6, 0, 1, 0.01},
	}}

	summary, err := engine.Predict(10, set)
	require.NoError(t, err)

	assert.Equal(t, 10.0, summary.X)
	assert.InDelta(t, 0.4, summary.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.08/3), summary.Std, 1e-12)
	assert.Equal(t, 3, summary.N)
	assert.Equal(t, 0, summary.Masked)
}

func TestPredictMasksNonFinite(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	set := &PosteriorSampleSet{Samples: [][]float64{
		{0.9, 0.5, 0, 1, 0.01},
		{math.Inf(1), 0.5, 0.5, 1, 0.01},
		{math.NaN(), 0.5, 0.5, 1, 0.01},
		{0.9, 0.7, 0, 1, 0.01},
	}}

	summary, err := engine.Predict(10, set)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, summary.Mean, 1e-12)
	assert.InDelta(t, 0.1, summary.Std, 1e-12)
	assert.Equal(t, 2, summary.N)
	assert.Equal(t, 2, summary.Masked)
}

func TestPredictUnpredictable(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	set := &PosteriorSampleSet{Samples: [][]float64{
		{math.NaN(), 0.5, 0.5, 1, 0.01},
		{math.Inf(1), 0.5, 0.5, 1, 0.01},
	}}

	summary, err := engine.Predict(10, set)
	assert.ErrorIs(t, err, ErrUnpredictable)
	assert.False(t, math.IsNaN(summary.Mean) || math.IsInf(summary.Mean, 0))
	assert.False(t, math.IsNaN(summary.Std) || math.IsInf(summary.Std, 0))

	_, err = engine.Predict(10, &PosteriorSampleSet{})
	assert.ErrorIs(t, err, ErrUnpredictable)

	_, err = engine.PredictQuantiles(10, set, 0.5)
	assert.ErrorIs(t, err, ErrUnpredictable)
}

func TestPredictQuantiles(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	set := &PosteriorSampleSet{}
	for _, beta := range []float64{0.5, 0.1, 0.4, 0.2, 0.3} {
		set.Samples = append(set.Samples, []float64{0.9, beta, 0, 1, 0.01})
	}

	qs, err := engine.PredictQuantiles(3, set, 0, 0.5, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.1, 0.3, 0.5}, qs, 1e-12)

	_, err = engine.PredictQuantiles(3, set, 1.5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPredictEachHorizonIndependently(t *testing.T) {
	engine := NewPredictiveEngine(NewCurveModel(Weibull{}, DefaultBounds()))

	// delta=2 with a large kappa underflows to the asymptote for large x, but
	// stays finite: the same set is predictable at every horizon.
	set := &PosteriorSampleSet{Samples: [][]float64{
		{0.9, 0.1, 1, 2, 0.01},
		{0.8, 0.1, 1, 2, 0.01},
	}}

	for _, x := range []float64{1, 10, 1e3, 1e6} {
		summary, err := engine.Predict(x, set)
		require.NoError(t, err, "x=%v", x)
		assert.Equal(t, 2, summary.N)
	}
}
