package minimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// lineSearchResult carries the accepted trial of a line search together with
// the oracle call counts it consumed. Counts are valid even when the search
// fails, so callers can keep their bookkeeping exact.
type lineSearchResult struct {
	Step      float64
	X         []float64
	F         float64
	Gradient  []float64
	Aux       interface{}
	FuncEvals int
	GradEvals int
}

// trialPoint returns x + t*dir in a slice drawn from the work pool. Rejected
// trials go back via workPool.put; the accepted one becomes the next state's
// point.
func trialPoint(x, dir []float64, t float64) []float64 {
	y := workPool.get(len(x))
	for i := range x {
		y[i] = x[i] + t*dir[i]
	}
	return y
}

// armijoSearch backtracks from the trial length t0, shrinking by
// opts.Backtrack until the sufficient-decrease condition
//
//	f(x + t*dir) <= f(x) + c1*t*<g, dir>
//
// holds with a finite value. The gradient is evaluated once, at the accepted
// point. Fails with ErrLineSearch when the trial budget runs out.
func armijoSearch(p *Problem, x []float64, f0 float64, g0, dir []float64, t0 float64, opts *Options) (*lineSearchResult, error) {
	slope := floats.Dot(g0, dir)
	res := &lineSearchResult{}

	t := t0
	for i := 0; i < opts.MaxBacktracks; i++ {
		y := trialPoint(x, dir, t)
		f, aux, err := p.value(y)
		res.FuncEvals++
		if err != nil {
			return res, WrapError(err, "trial evaluation").WithComponent("line search")
		}
		if isFinite(f) && f <= f0+opts.SufficientDecrease*t*slope {
			g, err := p.gradient(y)
			res.GradEvals++
			if err != nil {
				return res, WrapError(err, "gradient at accepted step").WithComponent("line search")
			}
			res.Step, res.X, res.F, res.Gradient, res.Aux = t, y, f, g, aux
			return res, nil
		}
		workPool.put(y)
		t *= opts.Backtrack
	}

	return res, WrapErrorf(ErrLineSearch, "no sufficient decrease within %d backtracks", opts.MaxBacktracks).WithComponent("line search")
}

// wolfeSearch finds a step satisfying the strong Wolfe conditions:
// sufficient decrease plus the curvature bound
//
//	|<g(x + t*dir), dir>| <= c2*|<g(x), dir>|
//
// It brackets by doubling while the slope stays too negative and bisects once
// an upper bound is known. Quasi-Newton and conjugate-gradient memory updates
// rely on the curvature bound, so they must use this search rather than plain
// backtracking.
func wolfeSearch(p *Problem, x []float64, f0 float64, g0, dir []float64, t0 float64, opts *Options) (*lineSearchResult, error) {
	slope0 := floats.Dot(g0, dir)
	res := &lineSearchResult{}
	if slope0 >= 0 {
		return res, WrapError(ErrLineSearch, "search direction is not a descent direction").WithComponent("line search")
	}

	lo, hi := 0.0, math.Inf(1)
	t := t0
	for i := 0; i < opts.MaxBacktracks; i++ {
		y := trialPoint(x, dir, t)
		f, aux, err := p.value(y)
		res.FuncEvals++
		if err != nil {
			return res, WrapError(err, "trial evaluation").WithComponent("line search")
		}

		if !isFinite(f) || f > f0+opts.SufficientDecrease*t*slope0 {
			workPool.put(y)
			hi = t
			t = 0.5 * (lo + hi)
			continue
		}

		g, err := p.gradient(y)
		res.GradEvals++
		if err != nil {
			return res, WrapError(err, "trial gradient").WithComponent("line search")
		}
		slope := floats.Dot(g, dir)

		switch {
		case math.Abs(slope) <= opts.Curvature*math.Abs(slope0):
			res.Step, res.X, res.F, res.Gradient, res.Aux = t, y, f, g, aux
			return res, nil
		case slope < opts.Curvature*slope0:
			// Still descending steeply: the step is too short.
			workPool.put(y)
			lo = t
			if math.IsInf(hi, 1) {
				t *= 2
			} else {
				t = 0.5 * (lo + hi)
			}
		default:
			// Positive slope beyond the bound: overshot the minimum.
			workPool.put(y)
			hi = t
			t = 0.5 * (lo + hi)
		}
	}

	return res, WrapErrorf(ErrLineSearch, "no Wolfe step within %d trials", opts.MaxBacktracks).WithComponent("line search")
}
