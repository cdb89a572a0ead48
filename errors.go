package lcp

import "errors"

// Sentinel errors. Returned errors wrap one of these with context, test them
// with errors.Is.
var (
	// ErrInvalidObservedCurve is returned by Fit, before any sampling, when the
	// observed curve has fewer than two observations, non-increasing or
	// non-positive iterations, or non-finite scores.
	ErrInvalidObservedCurve = errors.New("invalid observed curve")

	// ErrNumericalDivergence is returned by Fit when no walker ever reached a
	// finite log-posterior.
	ErrNumericalDivergence = errors.New("numerical divergence")

	// ErrUnpredictable is returned by Predict when every predictive sample at
	// the queried horizon is non-finite. Callers should skip the pruning
	// decision rather than treat it as fatal.
	ErrUnpredictable = errors.New("unpredictable")

	// ErrInvalidConfig is returned when a Config or an argument of the
	// predictive engine is out of range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNoChain is returned by the Sampler prediction helpers before the
	// first successful Fit.
	ErrNoChain = errors.New("no chain fitted")
)
