package lcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sync"

	"github.com/google/uuid"
)

//////
// Const, vars, types.
//////

// Sampler fits a growth curve to an observed learning curve by ensemble MCMC
// and keeps the chain of its latest Fit for prediction.
//
// Thread safety:
// - Fit and FitContext are serialized per instance; each call replaces the
//   stored chain
// - Chain, SampleSet and Predict wait for a running Fit to finish
// - Separate instances may fit concurrently
type Sampler struct {
	mu sync.Mutex

	config    Config
	model     *CurveModel
	evaluator WalkerEvaluator
	seeder    Seeder
	logger    *slog.Logger
	logOutput io.Writer

	chain *MarkovChain
}

// Option customizes a Sampler at construction.
type Option func(*Sampler)

// WithEvaluator overrides the walker evaluator chosen from Config.Workers.
func WithEvaluator(evaluator WalkerEvaluator) Option {
	return func(s *Sampler) {
		s.evaluator = evaluator
	}
}

// WithSeeder overrides the default FixedSeeder.
func WithSeeder(seeder Seeder) Option {
	return func(s *Sampler) {
		s.seeder = seeder
	}
}

// WithLogger sets the structured logger. It takes precedence over
// Config.LogLevel and WithLogOutput.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithLogOutput redirects the default logger, built from Config.LogLevel,
// to w. The default output is os.Stderr.
func WithLogOutput(w io.Writer) Option {
	return func(s *Sampler) {
		s.logOutput = w
	}
}

// WithCurveFamily replaces the Weibull family. Config.Bounds and
// Config.InitialTheta must match the family's parameter count.
func WithCurveFamily(family CurveFamily) Option {
	return func(s *Sampler) {
		s.model = NewCurveModel(family, s.config.Bounds)
	}
}

//////
// Exported functionalities.
//////

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Walkers:      100,
		SampleCount:  800,
		MaxSteps:     0, // Default to SampleCount.
		BurnIn:       300,
		Thin:         1,
		Workers:      0, // Default to serial evaluation.
		StretchScale: 2.0,
		Jitter:       1e-6,
		ProbePoints:  100,
		InitialTheta: []float64{0.7, 0.1, 0.01, 1, 0.01},
		Bounds:       DefaultBounds(),
		LogLevel:     "info",
		ProgressChan: nil, // Default to no progress updates.
	}
}

// NewSampler validates config and builds a Sampler from a private copy of it.
//
// Usage example:
//
//	sampler, err := NewSampler(DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	rng := rand.New(rand.NewSource(42))
//	if _, err := sampler.Fit(curve, rng); err != nil {
//	    // Insufficient data: keep training, no pruning decision this round.
//	    return nil
//	}
//
//	summary, err := sampler.Predict(50)
func NewSampler(config Config, opts ...Option) (*Sampler, error) {
	config = config.clone()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Sampler{
		config:    config,
		model:     NewCurveModel(Weibull{}, config.Bounds),
		evaluator: newEvaluator(config.Workers),
		seeder:    FixedSeeder{},
		logOutput: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = NewLogger(config.LogLevel, s.logOutput)
	}

	if s.model.Dim() != len(config.InitialTheta) {
		return nil, fmt.Errorf(
			"%w: curve family %q needs %d parameters plus sigma, initial_theta has %d values",
			ErrInvalidConfig, s.model.Family().Name(), s.model.Family().NumParams(), len(config.InitialTheta),
		)
	}

	return s, nil
}

// Model returns the curve model the sampler fits.
func (s *Sampler) Model() *CurveModel {
	return s.model
}

// Engine returns a predictive engine for the sampler's curve model.
func (s *Sampler) Engine() *PredictiveEngine {
	return NewPredictiveEngine(s.model)
}

// Fit runs the ensemble sampler on curve. It is FitContext with a background
// context.
func (s *Sampler) Fit(curve ObservedCurve, rng *rand.Rand) (*MarkovChain, error) {
	return s.FitContext(context.Background(), curve, rng)
}

// FitContext approximates the posterior over theta given curve and stores the
// resulting chain on the sampler.
//
// Parameters:
// - ctx: checked between steps; when done, sampling stops at a step boundary
// - curve: the observed learning curve, not modified
// - rng: the only source of randomness (seed jitter and stretch moves)
//
// Returns:
// - *MarkovChain: every step of every walker
// - error: ErrInvalidObservedCurve before any work, ErrNumericalDivergence if
//   no walker ever reached a finite posterior, or ctx.Err() if ctx was done
//   before the first step completed
//
// Every call supersedes the stored chain: a failed call leaves none, so
// Predict reports ErrNoChain instead of answering for an older curve.
//
// How it works:
// 1. Seeds every walker at the informed seed plus N(0, Jitter^2) noise
// 2. For each step, moves each half of the ensemble with the stretch move,
//    using the other half as the complementary ensemble
// 3. Records the position and log-posterior of every walker
//
// Important notes:
// - Identical curve, config and rng state produce identical chains, whatever
//   evaluator is used
// - A chain cut short by MaxSteps or ctx remains usable for prediction
func (s *Sampler) FitContext(ctx context.Context, curve ObservedCurve, rng *rand.Rand) (*MarkovChain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain = nil

	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}

	if err := curve.Validate(); err != nil {
		return nil, err
	}

	curve = curve.clone()
	post := newPosterior(s.model, curve, s.config.ProbePoints)

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "family", s.model.Family().Name())

	walkers := s.config.Walkers
	totalSteps := s.config.steps()

	// Place the walkers around the seed. Nearly coincident but never
	// identical, otherwise the stretch move cannot leave the seed.
	seed := s.seeder.Seed(post.LogProb, s.model, s.config.InitialTheta, rng)
	start := make([][]float64, walkers)

	for w := range start {
		start[w] = make([]float64, len(seed))
		for d, v := range seed {
			start[w][d] = v + s.config.Jitter*rng.NormFloat64()
		}
	}

	logger.Debug("Starting ensemble sampler",
		"walkers", walkers,
		"steps", totalSteps,
		"observations", curve.Len(),
		"seed", seed,
	)

	ens := newEnsemble(post.LogProb, s.evaluator, rng, s.config.StretchScale, start)

	chain := &MarkovChain{
		RunID:   runID,
		Samples: make([][][]float64, walkers),
		LogProb: make([][]float64, walkers),
	}

	for w := 0; w < walkers; w++ {
		chain.Samples[w] = make([][]float64, 0, totalSteps)
		chain.LogProb[w] = make([]float64, 0, totalSteps)
	}

	everFinite := ens.finite() > 0

	for step := 0; step < totalSteps; step++ {
		if ctx.Err() != nil {
			break
		}

		ens.step()

		for w := 0; w < walkers; w++ {
			chain.Samples[w] = append(chain.Samples[w], append([]float64(nil), ens.pos[w]...))
			chain.LogProb[w] = append(chain.LogProb[w], ens.lnp[w])
		}

		chain.Steps++

		finite := ens.finite()
		if finite > 0 {
			everFinite = true
		}

		s.sendProgress(runID, chain.Steps, totalSteps, ens, finite)
	}

	chain.Accepted = append([]int(nil), ens.accepted...)

	if chain.Steps == 0 {
		return nil, fmt.Errorf("sampling stopped before the first step: %w", ctx.Err())
	}

	if !everFinite {
		logger.Warn("No walker reached a finite log-posterior", "steps", chain.Steps)

		return nil, fmt.Errorf("%w: no walker reached a finite log-posterior in %d steps",
			ErrNumericalDivergence, chain.Steps)
	}

	if chain.Steps < totalSteps {
		logger.Info("Sampling stopped early", "completed_steps", chain.Steps, "requested_steps", totalSteps)
	}

	logger.Info("Ensemble sampler finished",
		"steps", chain.Steps,
		"acceptance_fraction", meanAcceptance(ens.accepted, chain.Steps),
		"finite_walkers", ens.finite(),
	)

	s.chain = chain

	return chain, nil
}

// Chain returns the chain of the latest successful Fit, or nil.
func (s *Sampler) Chain() *MarkovChain {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain
}

// SampleSet burns in and thins the latest chain with the configured BurnIn
// and Thin.
func (s *Sampler) SampleSet() (*PosteriorSampleSet, error) {
	chain := s.Chain()
	if chain == nil {
		return nil, ErrNoChain
	}

	return BurnIn(chain, s.config.BurnIn, s.config.Thin)
}

// Predict summarizes the predictive distribution of the latest chain at
// horizon x. Multi-horizon queries are repeated calls.
func (s *Sampler) Predict(x float64) (PredictiveSummary, error) {
	set, err := s.SampleSet()
	if err != nil {
		return PredictiveSummary{}, err
	}

	return s.Engine().Predict(x, set)
}

// PredictMany summarizes the predictive distribution of the latest chain at
// every horizon of xs. The chain is burned in once; each horizon masks its own
// non-finite samples.
//
// The returned slice always has one summary per horizon. When some horizons
// are unpredictable their summary is zero apart from X, and the error joins
// one ErrUnpredictable per failed horizon; the other summaries stay valid.
func (s *Sampler) PredictMany(xs []float64) ([]PredictiveSummary, error) {
	set, err := s.SampleSet()
	if err != nil {
		return nil, err
	}

	engine := s.Engine()
	summaries := make([]PredictiveSummary, len(xs))

	var errs []error

	for i, x := range xs {
		summary, err := engine.Predict(x, set)
		if err != nil {
			summary = PredictiveSummary{X: x}
			errs = append(errs, fmt.Errorf("horizon %d: %w", i, err))
		}

		summaries[i] = summary
	}

	return summaries, errors.Join(errs...)
}

//////
// Helper functions.
//////

// steps is the number of steps a Fit call performs.
func (c Config) steps() int {
	if c.MaxSteps > 0 && c.MaxSteps < c.SampleCount {
		return c.MaxSteps
	}

	return c.SampleCount
}

// sendProgress emits a progress update without ever blocking the sampler.
func (s *Sampler) sendProgress(runID string, step, total int, ens *ensemble, finite int) {
	if s.config.ProgressChan == nil {
		return
	}

	update := ProgressUpdate{
		RunID:              runID,
		CurrentStep:        step,
		TotalSteps:         total,
		AcceptanceFraction: meanAcceptance(ens.accepted, step),
		FiniteWalkers:      finite,
	}

	select {
	case s.config.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}

func meanAcceptance(accepted []int, steps int) float64 {
	if steps == 0 || len(accepted) == 0 {
		return 0
	}

	var total int
	for _, a := range accepted {
		total += a
	}

	return float64(total) / float64(steps*len(accepted))
}
