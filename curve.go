package lcp

import "math"

//////
// Const, vars, types.
//////

// CurveFamily is a parametric, monotonic and saturating function of the
// iteration count.
//
// Implementations must be pure and safe for concurrent use: the parallel
// evaluator calls Evaluate from several goroutines at once.
type CurveFamily interface {
	// Name identifies the family in logs.
	Name() string

	// NumParams is the number of curve parameters (sigma excluded).
	NumParams() int

	// Evaluate returns the curve value at x for the given parameters.
	Evaluate(x float64, params []float64) float64
}

// Weibull is the generalized Weibull growth curve
//
//	f(x) = alpha - (alpha - beta) * exp(-(kappa * x)^delta)
//
// Parameters, in order:
//   - alpha: upper asymptote
//   - beta: lower asymptote
//   - kappa: growth rate
//   - delta: shape exponent, position of the inflection point
type Weibull struct{}

// Name implements CurveFamily.
func (Weibull) Name() string { return "weibull" }

// NumParams implements CurveFamily.
func (Weibull) NumParams() int { return 4 }

// Evaluate implements CurveFamily. Defined for x >= 0.
func (Weibull) Evaluate(x float64, params []float64) float64 {
	alpha, beta, kappa, delta := params[IdxAlpha], params[IdxBeta], params[IdxKappa], params[IdxDelta]

	return alpha - (alpha-beta)*math.Exp(-math.Pow(kappa*x, delta))
}

// CurveModel couples a curve family with the box constraints of its
// parameters. It is immutable after construction.
//
// Fields:
// - family: the curve shape
// - bounds: box constraints for the curve parameters (sigma excluded)
type CurveModel struct {
	family CurveFamily
	bounds ParameterBounds
}

//////
// Methods.
//////

// Family returns the curve family.
func (m *CurveModel) Family() CurveFamily {
	return m.family
}

// Bounds returns a copy of the parameter box.
func (m *CurveModel) Bounds() ParameterBounds {
	return m.bounds.clone()
}

// Dim returns the length of a theta vector: the curve parameters plus sigma.
func (m *CurveModel) Dim() int {
	return m.family.NumParams() + 1
}

// Evaluate returns the deterministic curve value at x.
//
// Parameters:
// - x: iteration index, x >= 0
// - curveParams: curve parameters in canonical order, without sigma
func (m *CurveModel) Evaluate(x float64, curveParams []float64) float64 {
	return m.family.Evaluate(x, curveParams)
}

// IsInBounds reports whether each curve parameter of theta lies inside its
// box. Sigma is ignored.
func (m *CurveModel) IsInBounds(theta []float64) bool {
	params, _ := m.SplitParameters(theta)

	return m.bounds.Contains(params)
}

// SplitParameters splits theta into the curve parameters and sigma. The
// returned slice aliases theta.
func (m *CurveModel) SplitParameters(theta []float64) (curveParams []float64, sigma float64) {
	if len(theta) == 0 {
		return nil, math.NaN()
	}

	return theta[:len(theta)-1], theta[len(theta)-1]
}

//////
// Factory.
//////

// DefaultBounds returns the default box of the Weibull family: asymptotes and
// growth rate in [0, 1], shape exponent in [1, 2].
func DefaultBounds() ParameterBounds {
	return ParameterBounds{
		Lower: []float64{0, 0, 0, 1},
		Upper: []float64{1, 1, 1, 2},
	}
}

// NewCurveModel creates a curve model for the given family and bounds.
//
// Important notes:
// - bounds are copied; later changes by the caller are not observed
// - bounds must have one entry per curve parameter (see Config.Validate)
func NewCurveModel(family CurveFamily, bounds ParameterBounds) *CurveModel {
	return &CurveModel{
		family: family,
		bounds: bounds.clone(),
	}
}
