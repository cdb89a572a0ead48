package lcp

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

//////
// Decision helpers for pruning configurations.
// Each helper reads a PredictiveSummary (higher scores are better) and helps
// the caller decide whether a configuration deserves more budget.
//////

// UpperBound returns the optimistic bound Mean + beta*Std.
//
// How it works:
// - Combines the predicted score with its uncertainty
// - Beta controls how optimistic the bound is (2.0 covers ~97.7% one-sided)
//
// Example:
//
//	if summary.UpperBound(2) < threshold {
//	    // Even an optimistic forecast misses the target: terminate.
//	}
func (p PredictiveSummary) UpperBound(beta float64) float64 {
	return p.Mean + beta*p.Std
}

// LowerBound returns the pessimistic bound Mean - beta*Std.
func (p PredictiveSummary) LowerBound(beta float64) float64 {
	return p.Mean - beta*p.Std
}

// Dominated reports whether candidate's upper bound falls below competitor's
// lower bound, i.e. the candidate can be pruned in favor of the competitor.
//
// Example:
//
//	if Dominated(current, best, 2.0) {
//	    // Stop training current.
//	}
func Dominated(candidate, competitor PredictiveSummary, beta float64) bool {
	return candidate.UpperBound(beta) < competitor.LowerBound(beta)
}

// ProbabilityAbove estimates the probability that the score at the summary's
// horizon exceeds threshold + xi, assuming a normal predictive distribution.
//
// Parameters:
// - threshold: score to beat, e.g. the incumbent's score
// - xi: minimum improvement required
//
// When to use:
// - Conservative pruning: terminate when the probability falls under a
//   small value such as 0.05
func (p PredictiveSummary) ProbabilityAbove(threshold, xi float64) float64 {
	target := threshold + xi

	if p.Std == 0 {
		if p.Mean > target {
			return 1
		}

		return 0
	}

	return 1 - distuv.UnitNormal.CDF((target-p.Mean)/p.Std)
}

// ExpectedImprovement returns the expected amount by which the score exceeds
// best + xi.
//
// How it works:
// - Combines the probability of improvement with its magnitude
// - Reduces to max(Mean-best-xi, 0) when the prediction is certain
func (p PredictiveSummary) ExpectedImprovement(best, xi float64) float64 {
	improvement := p.Mean - best - xi

	if p.Std == 0 {
		return math.Max(improvement, 0)
	}

	z := improvement / p.Std

	return improvement*distuv.UnitNormal.CDF(z) + p.Std*distuv.UnitNormal.Prob(z)
}

// ThompsonSample draws one score from N(Mean, Std^2). Ranking configurations by
// a draw instead of the mean breaks ties and keeps some exploration.
//
// Warning:
// - Do not share rng between concurrent callers.
func (p PredictiveSummary) ThompsonSample(rng *rand.Rand) float64 {
	return p.Mean + p.Std*rng.NormFloat64()
}
