package lcp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// posterior is the unnormalized log-posterior of theta given one observed
// curve. It is read-only after construction and safe for concurrent use.
type posterior struct {
	model *CurveModel
	x, y  []float64

	// probe is the grid over [1, last observed x] on which prior-accepted
	// curves must be non-decreasing.
	probe []float64
}

func newPosterior(model *CurveModel, curve ObservedCurve, probePoints int) *posterior {
	return &posterior{
		model: model,
		x:     curve.X,
		y:     curve.Y,
		probe: floats.Span(make([]float64, probePoints), 1, curve.Last()),
	}
}

// LogPrior is flat (0) inside the box for curves that never decrease over the
// probe grid, and -Inf elsewhere.
func (p *posterior) LogPrior(theta []float64) float64 {
	if !p.model.IsInBounds(theta) {
		return math.Inf(-1)
	}

	params, _ := p.model.SplitParameters(theta)

	prev := p.model.Evaluate(p.probe[0], params)
	for _, x := range p.probe[1:] {
		cur := p.model.Evaluate(x, params)
		if cur < prev {
			return math.Inf(-1)
		}

		prev = cur
	}

	return 0
}

// LogLikelihood treats residuals as i.i.d. N(0, sigma^2). A non-finite sum,
// e.g. from sigma <= 0, is reported as -Inf.
func (p *posterior) LogLikelihood(theta []float64) float64 {
	params, sigma := p.model.SplitParameters(theta)
	noise := distuv.Normal{Mu: 0, Sigma: sigma}

	var ll float64
	for i, x := range p.x {
		ll += noise.LogProb(p.y[i] - p.model.Evaluate(x, params))
	}

	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return math.Inf(-1)
	}

	return ll
}

// LogProb is LogPrior + LogLikelihood. The likelihood is not evaluated when
// the prior already rules theta out.
func (p *posterior) LogProb(theta []float64) float64 {
	lp := p.LogPrior(theta)
	if math.IsInf(lp, -1) {
		return lp
	}

	return lp + p.LogLikelihood(theta)
}
