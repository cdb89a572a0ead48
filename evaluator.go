package lcp

import (
	"runtime"
	"sync"
)

// WalkerEvaluator computes the log-posterior of a batch of walker positions.
//
// Implementations must write logProb(positions[i]) into out[i] for every i and
// must not depend on evaluation order: the sampler draws all random numbers
// before calling Evaluate, so the chain is the same whichever implementation
// is used.
type WalkerEvaluator interface {
	Evaluate(logProb func([]float64) float64, positions [][]float64, out []float64)
}

// SerialEvaluator evaluates walkers one after another on the calling
// goroutine.
type SerialEvaluator struct{}

// Evaluate implements WalkerEvaluator.
func (SerialEvaluator) Evaluate(logProb func([]float64) float64, positions [][]float64, out []float64) {
	for i, pos := range positions {
		out[i] = logProb(pos)
	}
}

// ParallelEvaluator splits each batch into contiguous chunks evaluated on at
// most Workers goroutines.
type ParallelEvaluator struct {
	// Workers is the maximum number of goroutines per batch. Values below one
	// fall back to runtime.GOMAXPROCS(0).
	Workers int
}

// Evaluate implements WalkerEvaluator.
func (p ParallelEvaluator) Evaluate(logProb func([]float64) float64, positions [][]float64, out []float64) {
	workers := p.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	if workers > len(positions) {
		workers = len(positions)
	}

	if workers <= 1 {
		SerialEvaluator{}.Evaluate(logProb, positions, out)

		return
	}

	chunk := (len(positions) + workers - 1) / workers

	var wg sync.WaitGroup

	for start := 0; start < len(positions); start += chunk {
		end := min(start+chunk, len(positions))

		wg.Add(1)

		go func(lo, hi int) {
			defer wg.Done()

			// Each goroutine owns out[lo:hi], no locking needed.
			for i := lo; i < hi; i++ {
				out[i] = logProb(positions[i])
			}
		}(start, end)
	}

	wg.Wait()
}

// newEvaluator picks the evaluator strategy for a worker count.
func newEvaluator(workers int) WalkerEvaluator {
	if workers > 1 {
		return ParallelEvaluator{Workers: workers}
	}

	return SerialEvaluator{}
}
