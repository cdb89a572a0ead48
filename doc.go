// Package lcp predicts where a partially observed learning curve is heading.
// Given the first few (iteration, score) points of a training run, it infers
// the posterior over the parameters of a saturating growth curve with ensemble
// MCMC and summarizes the predicted score at any future iteration. Outer
// hyperparameter searches use the prediction to stop unpromising runs early.
//
// # Features
//
// The package includes the following key features:
//
//   - Weibull Growth Curve: f(x) = alpha - (alpha-beta)*exp(-(kappa*x)^delta),
//     with box constraints and a prior that rejects decreasing curves
//   - Ensemble MCMC: affine-invariant stretch move over a walker ensemble,
//     noise scale sigma sampled jointly with the curve
//   - Reproducible: every random draw comes from an injected *rand.Rand
//   - Parallel Evaluation: serial or goroutine-backed walker evaluation, with
//     identical chains either way
//   - Robust Predictions: non-finite predictive samples are masked, an
//     all-masked horizon is reported as ErrUnpredictable
//   - Pruning Helpers: confidence bounds, probability of beating a threshold,
//     expected improvement and domination checks
//   - YAML Configuration: every knob loadable from a file
//
// # Usage
//
//	curve, err := lcp.NewObservedCurve(
//	    []int{1, 2, 3, 4, 5, 6},
//	    []float64{0.70, 0.73, 0.83, 0.88, 0.91, 0.92},
//	)
//	if err != nil {
//	    return err
//	}
//
//	sampler, err := lcp.NewSampler(lcp.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	if _, err := sampler.Fit(curve, rand.New(rand.NewSource(42))); err != nil {
//	    // Not enough signal: keep training, no pruning decision this round.
//	    return nil
//	}
//
//	summary, err := sampler.Predict(50)
//	if errors.Is(err, lcp.ErrUnpredictable) {
//	    // Skip the pruning decision.
//	}
//
//	if summary.UpperBound(2) < incumbent {
//	    // Terminate the configuration.
//	}
//
// # Configuration
//
// Config carries every knob; DefaultConfig returns:
//
//	Walkers:      100
//	SampleCount:  800
//	BurnIn:       300
//	Thin:         1
//	StretchScale: 2
//	Jitter:       1e-6
//	InitialTheta: [0.7, 0.1, 0.01, 1, 0.01]  // alpha, beta, kappa, delta, sigma
//	Bounds:       alpha, beta, kappa in [0, 1], delta in [1, 2]
//
//	LogLevel:     info  // default logger, JSON on os.Stderr
//
// LoadConfig and ParseConfigYAML read the same knobs from YAML.
//
// # Thread Safety
//
//   - A Sampler serializes its own Fit calls; each Fit replaces the stored chain,
//     and a failed Fit leaves none
//   - Different Sampler instances can fit concurrently
//   - PredictiveEngine, CurveModel and PosteriorSampleSet are read-only
//   - A *rand.Rand must not be shared between concurrent Fit calls
package lcp
