package lcp

import (
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// Seeder picks the point around which the walkers are jittered.
type Seeder interface {
	// Seed returns a theta vector in canonical order. It must not modify
	// initial and must draw randomness only from rng.
	Seed(logProb func([]float64) float64, model *CurveModel, initial []float64, rng *rand.Rand) []float64
}

// FixedSeeder returns the configured informed seed unchanged.
type FixedSeeder struct{}

// Seed implements Seeder.
func (FixedSeeder) Seed(_ func([]float64) float64, _ *CurveModel, initial []float64, _ *rand.Rand) []float64 {
	return append([]float64(nil), initial...)
}

// MayflySeeder refines the informed seed with a short run of the Mayfly
// metaheuristic maximizing the log-posterior, so that walkers start near the
// posterior mode instead of a fixed guess.
//
// The search runs in the unit cube: curve parameters are mapped linearly onto
// their bounds, sigma log-linearly onto [SigmaMin, SigmaMax]. If the search
// does not beat the informed seed, the informed seed is returned.
type MayflySeeder struct {
	// MaxIterations of the Mayfly run.
	MaxIterations int

	// Population size. Mayfly needs at least 20.
	Population int

	// SigmaMin and SigmaMax bound the noise scale explored by the search.
	SigmaMin float64
	SigmaMax float64
}

// infeasibleCost is the cost reported for a theta with a -Inf log-posterior.
// Half of MaxFloat64 leaves room for the optimizer's own arithmetic.
const infeasibleCost = math.MaxFloat64 / 2

// NewMayflySeeder returns a MayflySeeder with settings suitable for the
// default Weibull family.
func NewMayflySeeder() *MayflySeeder {
	return &MayflySeeder{
		MaxIterations: 100,
		Population:    20,
		SigmaMin:      1e-4,
		SigmaMax:      0.5,
	}
}

// Seed implements Seeder.
func (m *MayflySeeder) Seed(logProb func([]float64) float64, model *CurveModel, initial []float64, rng *rand.Rand) []float64 {
	fallback := append([]float64(nil), initial...)
	dim := model.Dim()
	bounds := model.Bounds()

	decode := func(u []float64) []float64 {
		theta := make([]float64, dim)

		for i := 0; i < dim-1; i++ {
			theta[i] = bounds.Lower[i] + clamp01(u[i])*(bounds.Upper[i]-bounds.Lower[i])
		}

		logMin, logMax := math.Log(m.SigmaMin), math.Log(m.SigmaMax)
		theta[dim-1] = math.Exp(logMin + clamp01(u[dim-1])*(logMax-logMin))

		return theta
	}

	eval := func(u []float64) float64 {
		lp := logProb(decode(u))
		if math.IsInf(lp, -1) || math.IsNaN(lp) {
			return infeasibleCost
		}

		return -lp
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = eval
	config.ProblemSize = dim
	config.MaxIterations = m.MaxIterations
	config.NPop = m.Population
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = rand.New(rand.NewSource(rng.Int63()))

	result, err := mayfly.Optimize(config)
	if err != nil || result.GlobalBest.Cost >= infeasibleCost {
		return fallback
	}

	best := decode(result.GlobalBest.Position)
	if logProb(best) <= logProb(fallback) {
		return fallback
	}

	return best
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
