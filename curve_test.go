package lcp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// randomTheta draws a theta uniformly inside bounds, with a positive sigma.
func randomTheta(rng *rand.Rand, bounds ParameterBounds) []float64 {
	theta := make([]float64, len(bounds.Lower)+1)
	for i := range bounds.Lower {
		theta[i] = bounds.Lower[i] + rng.Float64()*(bounds.Upper[i]-bounds.Lower[i])
	}

	theta[len(theta)-1] = 0.001 + rng.Float64()*0.1

	return theta
}

func TestWeibullEvaluate(t *testing.T) {
	w := Weibull{}

	// At x=0 the curve starts at the lower asymptote.
	assert.InDelta(t, 0.1, w.Evaluate(0, []float64{0.9, 0.1, 0.5, 1.5}), 1e-12)

	// Far out it reaches the upper asymptote.
	assert.InDelta(t, 0.9, w.Evaluate(1e6, []float64{0.9, 0.1, 0.5, 1.5}), 1e-12)

	// delta=1 is plain exponential saturation.
	assert.InDelta(t, 0.9-0.8*math.Exp(-0.2), w.Evaluate(2, []float64{0.9, 0.1, 0.1, 1}), 1e-12)

	assert.Equal(t, 4, w.NumParams())
	assert.Equal(t, "weibull", w.Name())
}

func TestWeibullFlatWhenKappaIsZero(t *testing.T) {
	model := NewCurveModel(Weibull{}, DefaultBounds())
	theta := []float64{0.9, 0.4, 0, 1.3, 0.01}

	assert.True(t, model.IsInBounds(theta))

	params, _ := model.SplitParameters(theta)
	for x := 1.0; x <= 200; x++ {
		// exp(-0) = 1, so the curve stays at beta.
		assert.InDelta(t, 0.4, model.Evaluate(x, params), 1e-12)
	}
}

func TestInBoundsThetaIsFinite(t *testing.T) {
	model := NewCurveModel(Weibull{}, DefaultBounds())
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		theta := randomTheta(rng, model.Bounds())
		assert.True(t, model.IsInBounds(theta), "theta %v", theta)

		params, _ := model.SplitParameters(theta)
		for x := 1.0; x <= 200; x++ {
			y := model.Evaluate(x, params)
			assert.False(t, math.IsNaN(y) || math.IsInf(y, 0), "theta %v, x %v", theta, x)
		}
	}
}

func TestIsInBounds(t *testing.T) {
	model := NewCurveModel(Weibull{}, DefaultBounds())

	tests := []struct {
		name  string
		theta []float64
		want  bool
	}{
		{"default seed", []float64{0.7, 0.1, 0.01, 1, 0.01}, true},
		{"box corners", []float64{1, 0, 1, 2, 0.5}, true},
		{"sigma is not boxed", []float64{0.7, 0.1, 0.01, 1, 42}, true},
		{"negative sigma still in box", []float64{0.7, 0.1, 0.01, 1, -1}, true},
		{"alpha above one", []float64{1.01, 0.1, 0.01, 1, 0.01}, false},
		{"negative beta", []float64{0.7, -0.01, 0.01, 1, 0.01}, false},
		{"delta below one", []float64{0.7, 0.1, 0.01, 0.99, 0.01}, false},
		{"delta above two", []float64{0.7, 0.1, 0.01, 2.01, 0.01}, false},
		{"NaN kappa", []float64{0.7, 0.1, math.NaN(), 1, 0.01}, false},
		{"too short", []float64{0.7, 0.1, 0.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, model.IsInBounds(tt.theta))
		})
	}
}

func TestSplitParameters(t *testing.T) {
	model := NewCurveModel(Weibull{}, DefaultBounds())

	params, sigma := model.SplitParameters([]float64{0.7, 0.1, 0.01, 1, 0.02})

	assert.Equal(t, []float64{0.7, 0.1, 0.01, 1}, params)
	assert.Equal(t, 0.02, sigma)
	assert.Equal(t, 5, model.Dim())
}

func TestCurveModelCopiesBounds(t *testing.T) {
	bounds := DefaultBounds()
	model := NewCurveModel(Weibull{}, bounds)

	bounds.Upper[IdxAlpha] = 100

	assert.False(t, model.IsInBounds([]float64{50, 0.1, 0.01, 1, 0.01}))
}
