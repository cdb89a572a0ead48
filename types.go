package lcp

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

// Canonical positions inside a theta vector. The curve parameters come first,
// sigma is always last.
const (
	IdxAlpha = iota
	IdxBeta
	IdxKappa
	IdxDelta
	IdxSigma
)

// ProgressUpdate represents the current state of a sampling run.
type ProgressUpdate struct {
	// RunID identifies the Fit call that emitted the update.
	RunID string

	// CurrentStep is the number of completed ensemble steps.
	CurrentStep int

	// TotalSteps is the number of steps the run will perform.
	TotalSteps int

	// AcceptanceFraction is the fraction of accepted proposals so far,
	// averaged over all walkers.
	AcceptanceFraction float64

	// FiniteWalkers is the number of walkers currently at a finite posterior.
	FiniteWalkers int
}

// ObservedCurve is a partially observed learning curve: scores Y measured at
// strictly increasing, positive integer iterations X.
//
// The curve is owned by the caller. The sampler copies it on Fit and never
// writes to it.
//
// Usage:
//
//	curve, err := NewObservedCurve(
//	    []int{1, 2, 3, 4, 5, 6},
//	    []float64{0.70, 0.73, 0.83, 0.88, 0.91, 0.92},
//	)
type ObservedCurve struct {
	// X holds the iteration indices.
	X []float64

	// Y holds the score observed at each iteration.
	Y []float64
}

// NewObservedCurve builds an ObservedCurve from any integer iteration type and
// any float score type, and validates it.
//
// Type Parameters:
//   - I: integer type of the iteration indices (int, int64, uint32, ...)
//   - F: float type of the scores (float32 or float64)
//
// Returns ErrInvalidObservedCurve when the curve cannot be fitted.
func NewObservedCurve[I constraints.Integer, F constraints.Float](xs []I, ys []F) (ObservedCurve, error) {
	curve := ObservedCurve{
		X: make([]float64, len(xs)),
		Y: make([]float64, len(ys)),
	}

	for i, v := range xs {
		curve.X[i] = float64(v)
	}

	for i, v := range ys {
		curve.Y[i] = float64(v)
	}

	if err := curve.Validate(); err != nil {
		return ObservedCurve{}, err
	}

	return curve, nil
}

// Len returns the number of observations.
func (c ObservedCurve) Len() int {
	return len(c.X)
}

// Last returns the last observed iteration index, or 0 for an empty curve.
func (c ObservedCurve) Last() float64 {
	if len(c.X) == 0 {
		return 0
	}

	return c.X[len(c.X)-1]
}

// Validate checks that the curve can be fitted: matching lengths, at least two
// observations, positive integer iterations in strictly increasing order and
// finite scores.
func (c ObservedCurve) Validate() error {
	if len(c.X) != len(c.Y) {
		return fmt.Errorf("%w: %d iterations but %d scores", ErrInvalidObservedCurve, len(c.X), len(c.Y))
	}

	if len(c.X) < 2 {
		return fmt.Errorf("%w: need at least 2 observations, got %d", ErrInvalidObservedCurve, len(c.X))
	}

	for i, x := range c.X {
		if x < 1 || x != math.Trunc(x) {
			return fmt.Errorf("%w: iteration %v at position %d is not a positive integer", ErrInvalidObservedCurve, x, i)
		}

		if i > 0 && x <= c.X[i-1] {
			return fmt.Errorf("%w: iterations must be strictly increasing (%v after %v)", ErrInvalidObservedCurve, x, c.X[i-1])
		}

		if math.IsNaN(c.Y[i]) || math.IsInf(c.Y[i], 0) {
			return fmt.Errorf("%w: score at iteration %v is not finite", ErrInvalidObservedCurve, x)
		}
	}

	return nil
}

// clone returns a deep copy so the sampler never aliases caller memory.
func (c ObservedCurve) clone() ObservedCurve {
	return ObservedCurve{
		X: append([]float64(nil), c.X...),
		Y: append([]float64(nil), c.Y...),
	}
}

// ParameterBounds holds the box constraints of the curve parameters, in
// canonical order. Sigma is not part of the box.
//
// Defaults (see DefaultBounds):
//   - alpha, beta, kappa: [0, 1]
//   - delta: [1, 2]
//
// Both ends are inclusive. A zero Lower kappa keeps flat curves representable.
type ParameterBounds struct {
	// Lower holds the inclusive lower bound of each curve parameter.
	Lower []float64 `yaml:"lower"`

	// Upper holds the inclusive upper bound of each curve parameter.
	Upper []float64 `yaml:"upper"`
}

// Contains reports whether every value of params falls inside the box.
func (b ParameterBounds) Contains(params []float64) bool {
	if len(params) != len(b.Lower) || len(params) != len(b.Upper) {
		return false
	}

	for i, p := range params {
		// Written so that NaN fails both comparisons.
		if !(p >= b.Lower[i] && p <= b.Upper[i]) {
			return false
		}
	}

	return true
}

func (b ParameterBounds) clone() ParameterBounds {
	return ParameterBounds{
		Lower: append([]float64(nil), b.Lower...),
		Upper: append([]float64(nil), b.Upper...),
	}
}

// MarkovChain is the outcome of one Fit call.
//
// Samples is indexed [walker][step][parameter]; LogProb is indexed
// [walker][step] and holds the log-posterior of the matching sample. Only the
// first Steps steps are populated.
type MarkovChain struct {
	// RunID identifies the Fit call in logs and progress updates. It is
	// correlation metadata only: it is random per call and is not covered by
	// the determinism guarantee, so compare chains by their other fields.
	RunID string

	// Samples holds every position of every walker.
	Samples [][][]float64

	// LogProb holds the log-posterior at each recorded position.
	LogProb [][]float64

	// Accepted counts accepted proposals per walker.
	Accepted []int

	// Steps is the number of completed steps.
	Steps int
}

// Walkers returns the number of walkers in the chain.
func (c *MarkovChain) Walkers() int {
	return len(c.Samples)
}

// Dim returns the dimensionality of a theta vector, or 0 for an empty chain.
func (c *MarkovChain) Dim() int {
	if len(c.Samples) == 0 || len(c.Samples[0]) == 0 {
		return 0
	}

	return len(c.Samples[0][0])
}

// AcceptanceFraction returns the per-walker fraction of accepted proposals.
func (c *MarkovChain) AcceptanceFraction() []float64 {
	fractions := make([]float64, len(c.Accepted))
	if c.Steps == 0 {
		return fractions
	}

	for i, a := range c.Accepted {
		fractions[i] = float64(a) / float64(c.Steps)
	}

	return fractions
}

// PosteriorSampleSet is a burned-in, flattened and thinned view of a chain.
// Each element is one theta vector. It is read-only by convention.
type PosteriorSampleSet struct {
	Samples [][]float64
}

// Len returns the number of theta vectors in the set.
func (s *PosteriorSampleSet) Len() int {
	return len(s.Samples)
}

// PredictiveSummary is the Monte-Carlo summary of the predictive distribution
// at one horizon.
type PredictiveSummary struct {
	// X is the queried horizon.
	X float64

	// Mean of the finite predictive samples.
	Mean float64

	// Std is the population standard deviation of the finite samples.
	Std float64

	// N is the number of finite samples used.
	N int

	// Masked is the number of non-finite samples dropped.
	Masked int
}

// Config holds every knob of the sampler and the predictive engine. It is a
// plain value: NewSampler takes a private copy, so changing a Config after
// construction never affects a running sampler.
//
// Usage example:
//
//	config := DefaultConfig()
//
//	// Shorter run for a quick pruning decision.
//	config.SampleCount = 400
//	config.BurnIn = 150
//
//	// Evaluate walkers on 4 goroutines.
//	config.Workers = 4
//
//	sampler, err := NewSampler(config)
//
// Default values:
//   - Walkers: 100
//   - SampleCount: 800
//   - BurnIn: 300
//   - Thin: 1
//   - InitialTheta: {0.7, 0.1, 0.01, 1, 0.01}
type Config struct {
	// Walkers is the ensemble size. Must be even and at least twice the
	// dimensionality of theta.
	Walkers int `yaml:"walkers"`

	// SampleCount is the number of ensemble steps per Fit call.
	SampleCount int `yaml:"samples"`

	// MaxSteps caps the number of completed steps. Zero means SampleCount.
	MaxSteps int `yaml:"max_steps"`

	// BurnIn is the number of leading steps dropped by Sampler.Predict.
	BurnIn int `yaml:"burn_in"`

	// Thin keeps every Thin-th post burn-in sample.
	Thin int `yaml:"thin"`

	// Workers selects the walker evaluator. Zero or one evaluates serially,
	// larger values evaluate on that many goroutines.
	Workers int `yaml:"workers"`

	// StretchScale is the "a" parameter of the stretch move.
	StretchScale float64 `yaml:"stretch_scale"`

	// Jitter is the standard deviation of the Gaussian noise added to the
	// seed to place each walker.
	Jitter float64 `yaml:"jitter"`

	// ProbePoints is the size of the grid used by the monotonicity prior.
	ProbePoints int `yaml:"probe_points"`

	// InitialTheta is the informed seed, in canonical order, sigma last.
	InitialTheta []float64 `yaml:"initial_theta"`

	// Bounds holds the curve parameter box.
	Bounds ParameterBounds `yaml:"bounds"`

	// RandomSeed seeds the source returned by Config.Rand. Nil means unset.
	RandomSeed *int64 `yaml:"random_seed"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ProgressChan receives a ProgressUpdate after every step.
	// If nil, no updates will be sent.
	ProgressChan chan<- ProgressUpdate `yaml:"-"`
}

// clone deep-copies the slice fields of the config.
func (c Config) clone() Config {
	out := c
	out.InitialTheta = append([]float64(nil), c.InitialTheta...)
	out.Bounds = c.Bounds.clone()

	if c.RandomSeed != nil {
		seed := *c.RandomSeed
		out.RandomSeed = &seed
	}

	return out
}
