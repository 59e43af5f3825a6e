package minimize

import (
	"context"
	"math"
)

// newInitialState copies x0, evaluates the oracle once and builds the state
// every solver starts from. The algorithm-specific memory is attached by the
// caller.
func newInitialState(p *Problem, x0 []float64) (*State, error) {
	if len(x0) == 0 {
		return nil, NewError("initial point must not be empty").WithComponent("init")
	}
	x := append([]float64(nil), x0...)
	f, aux, g, err := p.evaluate(x)
	if err != nil {
		return nil, WrapError(err, "initial evaluation").WithOperation("init")
	}
	return &State{
		X:         x,
		F:         f,
		Gradient:  g,
		Direction: make([]float64, len(x)),
		Iter:      0,
		Aux:       aux,
		FuncEvals: 1,
		GradEvals: 1,
		Status:    StatusRunning,
		stepNorm:  math.Inf(1),
	}, nil
}

// idleStep returns an unmoved copy of a terminal state with the iteration
// counter advanced. Terminal states are absorbing, so stepping one produces
// a zero-length step rather than a transition.
func idleStep(s *State, status Status) *State {
	c := s.clone()
	c.Status = status
	c.Iter++
	c.stepNorm = 0
	return c
}

// resultFrom assembles the run result from the final state. Slices are
// copied so the result stays valid after the state's buffers are recycled.
func resultFrom(s *State, status Status) *Result {
	return &Result{
		X:          append([]float64(nil), s.X...),
		F:          s.F,
		Status:     status,
		Iterations: s.Iter,
		FuncEvals:  s.FuncEvals,
		GradEvals:  s.GradEvals,
		Aux:        s.Aux,
	}
}

// Solve is the driving loop: it initializes the solver, repeatedly calls
// Step until Terminate fires, and assembles the final result.
//
// Configuration problems (missing objective, dimension mismatch at Init) are
// always returned as errors. Run failures — divergence and line-search
// exhaustion — are folded into Result.Status when opts.Throw is false and
// returned as errors otherwise. A line-search failure maps to
// StatusDiverged with the best point found so far.
//
// ctx is checked between iterations only; each Step runs to completion once
// started. Solve never mutates p, x0 or opts, so any number of runs may
// share them concurrently.
func Solve(ctx context.Context, p *Problem, x0 []float64, solver Solver, opts *Options) (*Result, error) {
	if p == nil || p.Func == nil {
		return nil, WrapError(ErrNoObjective, "solve").WithComponent("driver")
	}
	if solver == nil {
		return nil, NewError("no solver supplied").WithComponent("driver")
	}
	if opts == nil {
		opts = DefaultOptions()
	} else {
		opts = opts.sanitize()
	}

	state, err := solver.Init(p, x0, opts)
	if err != nil {
		return nil, err
	}

	for {
		if status, done := solver.Terminate(state, opts); done {
			res := resultFrom(state, status)
			if status == StatusDiverged && opts.Throw {
				return res, NewError("solver diverged").WithComponent("driver")
			}
			return res, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next, err := solver.Step(p, state, opts)
		if err != nil {
			if opts.Throw {
				return nil, err
			}
			return resultFrom(state, StatusDiverged), nil
		}

		workPool.release(solver.Buffers(state))
		state = next
	}
}
