package lcp

import (
	"math"
	"math/rand"
)

// ensemble advances a set of walkers with the affine-invariant stretch move.
// The walkers are split in two halves; each half moves using the current
// positions of the other half as the complementary ensemble.
type ensemble struct {
	logProb   func([]float64) float64
	evaluator WalkerEvaluator
	rng       *rand.Rand

	// scale is the stretch parameter "a"; z is drawn from g(z) ∝ 1/sqrt(z)
	// on [1/a, a].
	scale float64

	pos      [][]float64
	lnp      []float64
	accepted []int

	// Scratch buffers reused across half-steps.
	proposals [][]float64
	newLnp    []float64
	logZ      []float64
	logU      []float64
}

func newEnsemble(logProb func([]float64) float64, evaluator WalkerEvaluator, rng *rand.Rand, scale float64, start [][]float64) *ensemble {
	n := len(start)
	dim := len(start[0])

	e := &ensemble{
		logProb:   logProb,
		evaluator: evaluator,
		rng:       rng,
		scale:     scale,
		pos:       start,
		lnp:       make([]float64, n),
		accepted:  make([]int, n),
		proposals: make([][]float64, n/2+n%2),
		newLnp:    make([]float64, n/2+n%2),
		logZ:      make([]float64, n/2+n%2),
		logU:      make([]float64, n/2+n%2),
	}

	for i := range e.proposals {
		e.proposals[i] = make([]float64, dim)
	}

	evaluator.Evaluate(logProb, e.pos, e.lnp)

	return e
}

// step moves the first half against the second, then the second half against
// the freshly updated first half.
func (e *ensemble) step() {
	half := len(e.pos) / 2

	e.moveHalf(0, half, half, len(e.pos))
	e.moveHalf(half, len(e.pos), 0, half)
}

// moveHalf proposes a stretch move for walkers [lo, hi) using walkers
// [clo, chi) as the complementary ensemble.
func (e *ensemble) moveHalf(lo, hi, clo, chi int) {
	ns := hi - lo
	nc := chi - clo
	dim := len(e.pos[lo])

	proposals := e.proposals[:ns]

	// Every random number is drawn here, in walker order, so that evaluation
	// below may run in any order or in parallel.
	for k := 0; k < ns; k++ {
		z := (e.scale-1)*e.rng.Float64() + 1
		z = z * z / e.scale

		c := e.pos[clo+e.rng.Intn(nc)]
		s := e.pos[lo+k]

		for d := 0; d < dim; d++ {
			proposals[k][d] = c[d] + z*(s[d]-c[d])
		}

		e.logZ[k] = float64(dim-1) * math.Log(z)
		e.logU[k] = math.Log(e.rng.Float64())
	}

	e.evaluator.Evaluate(e.logProb, proposals, e.newLnp[:ns])

	for k := 0; k < ns; k++ {
		w := lo + k
		if !accept(e.lnp[w], e.newLnp[k], e.logZ[k], e.logU[k]) {
			continue
		}

		copy(e.pos[w], proposals[k])
		e.lnp[w] = e.newLnp[k]
		e.accepted[w]++
	}
}

// accept is the Metropolis criterion of the stretch move. A walker stuck at
// -Inf accepts any finite proposal; a -Inf proposal is always rejected.
func accept(oldLnp, newLnp, logZ, logU float64) bool {
	switch {
	case math.IsInf(newLnp, -1) || math.IsNaN(newLnp):
		return false
	case math.IsInf(oldLnp, -1):
		return true
	default:
		return logZ+newLnp-oldLnp > logU
	}
}

// finite returns the number of walkers currently at a finite log-posterior.
func (e *ensemble) finite() int {
	n := 0

	for _, l := range e.lnp {
		if !math.IsInf(l, 0) && !math.IsNaN(l) {
			n++
		}
	}

	return n
}
