package lcp

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSeeder(t *testing.T) {
	initial := []float64{0.7, 0.1, 0.01, 1, 0.01}

	seed := FixedSeeder{}.Seed(nil, nil, initial, nil)
	assert.Equal(t, initial, seed)

	seed[IdxAlpha] = 0.5
	assert.Equal(t, 0.7, initial[IdxAlpha], "seed must not alias the config")
}

func TestMayflySeederImprovesSeed(t *testing.T) {
	model := NewCurveModel(Weibull{}, DefaultBounds())
	post := newPosterior(model, scenarioACurve(t), 100)
	initial := DefaultConfig().InitialTheta

	seeder := NewMayflySeeder()

	seed := seeder.Seed(post.LogProb, model, initial, rand.New(rand.NewSource(42)))
	require.Len(t, seed, 5)

	assert.True(t, model.IsInBounds(seed))
	assert.GreaterOrEqual(t, post.LogProb(seed), post.LogProb(initial))
	assert.Equal(t, []float64{0.7, 0.1, 0.01, 1, 0.01}, initial)

	// Same random state, same seed.
	again := seeder.Seed(post.LogProb, model, initial, rand.New(rand.NewSource(42)))
	assert.Equal(t, seed, again)
}

func TestFitWithMayflySeeder(t *testing.T) {
	sampler, err := NewSampler(quickConfig(), WithSeeder(NewMayflySeeder()))
	require.NoError(t, err)

	_, err = sampler.Fit(scenarioACurve(t), rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	summary, err := sampler.Predict(6)
	require.NoError(t, err)

	// Starting near the mode, even a short run tracks the last observation.
	assert.InDelta(t, 0.92, summary.Mean, 0.05)
}
