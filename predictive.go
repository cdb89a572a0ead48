package lcp

import (
	"fmt"
	"iter"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// PredictiveEngine turns posterior samples into predictions of the curve at a
// horizon. It only evaluates the deterministic curve: sigma models residual
// noise around the curve and does not contribute to the predictive spread.
type PredictiveEngine struct {
	model *CurveModel
}

// NewPredictiveEngine returns an engine evaluating curves of model.
func NewPredictiveEngine(model *CurveModel) *PredictiveEngine {
	return &PredictiveEngine{model: model}
}

// BurnIn drops the first burnInSteps steps of every walker, flattens the rest
// walker after walker and keeps every thin-th sample of the flattened
// sequence.
//
// When burnInSteps is not smaller than the number of completed steps, the last
// completed step of each walker is kept, so that a chain cut short by a step
// cap stays usable.
//
// The returned set aliases the chain's theta vectors; neither is modified.
func BurnIn(chain *MarkovChain, burnInSteps, thin int) (*PosteriorSampleSet, error) {
	if chain == nil || chain.Steps == 0 || len(chain.Samples) == 0 {
		return nil, ErrNoChain
	}

	if burnInSteps < 0 {
		return nil, fmt.Errorf("%w: burn-in must not be negative, got %d", ErrInvalidConfig, burnInSteps)
	}

	if thin < 1 {
		return nil, fmt.Errorf("%w: thin must be at least 1, got %d", ErrInvalidConfig, thin)
	}

	burnInSteps = min(burnInSteps, chain.Steps-1)

	set := &PosteriorSampleSet{
		Samples: make([][]float64, 0, (len(chain.Samples)*(chain.Steps-burnInSteps))/thin+1),
	}

	var i int

	for _, walker := range chain.Samples {
		steps := min(chain.Steps, len(walker))

		for _, theta := range walker[min(burnInSteps, steps):steps] {
			if i%thin == 0 {
				set.Samples = append(set.Samples, theta)
			}

			i++
		}
	}

	return set, nil
}

// PredictiveDistribution yields the curve value at x for every theta of set,
// in order. The sequence is finite, has set.Len() elements and can be ranged
// over any number of times. Non-finite values are yielded as they are.
func (e *PredictiveEngine) PredictiveDistribution(x float64, set *PosteriorSampleSet) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for _, theta := range set.Samples {
			params, _ := e.model.SplitParameters(theta)
			if !yield(e.model.Evaluate(x, params)) {
				return
			}
		}
	}
}

// Predict returns the mean and population standard deviation of the
// predictive distribution at x, ignoring non-finite samples.
//
// Returns ErrUnpredictable when the set is empty or every sample is
// non-finite; the summary is then zero and never carries NaN or Inf.
func (e *PredictiveEngine) Predict(x float64, set *PosteriorSampleSet) (PredictiveSummary, error) {
	values, masked := e.finiteValues(x, set)
	if len(values) == 0 {
		return PredictiveSummary{}, fmt.Errorf("%w: %d of %d samples are non-finite at x=%v",
			ErrUnpredictable, masked, set.Len(), x)
	}

	mean, std := stat.PopMeanStdDev(values, nil)

	return PredictiveSummary{
		X:      x,
		Mean:   mean,
		Std:    std,
		N:      len(values),
		Masked: masked,
	}, nil
}

// PredictQuantiles returns the empirical quantiles qs of the finite predictive
// samples at x, e.g. 0.05 and 0.95 for a 90% credible band.
func (e *PredictiveEngine) PredictQuantiles(x float64, set *PosteriorSampleSet, qs ...float64) ([]float64, error) {
	for _, q := range qs {
		if !(q >= 0 && q <= 1) {
			return nil, fmt.Errorf("%w: quantile %v outside [0, 1]", ErrInvalidConfig, q)
		}
	}

	values, masked := e.finiteValues(x, set)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %d of %d samples are non-finite at x=%v",
			ErrUnpredictable, masked, set.Len(), x)
	}

	slices.Sort(values)

	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = stat.Quantile(q, stat.Empirical, values, nil)
	}

	return out, nil
}

// finiteValues collects the finite predictive samples at x and counts the
// masked ones.
func (e *PredictiveEngine) finiteValues(x float64, set *PosteriorSampleSet) ([]float64, int) {
	values := make([]float64, 0, set.Len())
	masked := 0

	for y := range e.PredictiveDistribution(x, set) {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			masked++

			continue
		}

		values = append(values, y)
	}

	return values, masked
}
