package minimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GradientDescent is the steepest-descent solver. With a positive
// LearningRate it takes fixed (optionally decaying) steps along the negative
// gradient; otherwise the step length is chosen by an Armijo backtracking
// line search, which guarantees a non-increasing objective across accepted
// steps.
type GradientDescent struct {
	// LearningRate, when positive, disables the line search and uses this
	// fixed step length.
	LearningRate float64
	// Decay multiplies the learning rate by Decay^iter when set in (0, 1).
	// Ignored when the line search is active.
	Decay float64
	// Normalize rescales the descent direction to unit length before the
	// step is taken.
	Normalize bool
}

// NewGradientDescent returns a gradient-descent solver using the Armijo line
// search.
func NewGradientDescent() *GradientDescent {
	return &GradientDescent{}
}

// NewFixedStepGradientDescent returns a gradient-descent solver taking fixed
// steps of length lr with no line search.
func NewFixedStepGradientDescent(lr float64) *GradientDescent {
	return &GradientDescent{LearningRate: lr}
}

// Init evaluates the objective and gradient at x0. Gradient descent keeps no
// memory beyond the direction.
func (gd *GradientDescent) Init(p *Problem, x0 []float64, opts *Options) (*State, error) {
	return newInitialState(p, x0)
}

// Step takes one steepest-descent step.
func (gd *GradientDescent) Step(p *Problem, s *State, opts *Options) (*State, error) {
	if status, done := checkTermination(s, opts); done {
		return idleStep(s, status), nil
	}

	n := len(s.X)
	dir := workPool.get(n)
	for i := range dir {
		dir[i] = -s.Gradient[i]
	}
	if gd.Normalize {
		if nrm := floats.Norm(dir, 2); nrm > 0 {
			floats.Scale(1/nrm, dir)
		}
	}

	if gd.LearningRate > 0 {
		t := gd.LearningRate
		if gd.Decay > 0 && gd.Decay < 1 {
			t *= math.Pow(gd.Decay, float64(s.Iter))
		}
		y := trialPoint(s.X, dir, t)
		f, aux, g, err := p.evaluate(y)
		if err != nil {
			return nil, err
		}
		return &State{
			X:         y,
			F:         f,
			Gradient:  g,
			Direction: dir,
			StepSize:  t,
			Iter:      s.Iter + 1,
			Aux:       aux,
			FuncEvals: s.FuncEvals + 1,
			GradEvals: s.GradEvals + 1,
			Status:    StatusRunning,
			stepNorm:  t * floats.Norm(dir, 2),
		}, nil
	}

	t0 := s.StepSize
	if t0 <= 0 {
		t0 = opts.InitialStep
	}
	res, err := armijoSearch(p, s.X, s.F, s.Gradient, dir, t0, opts)
	if err != nil {
		return nil, err
	}
	return &State{
		X:         res.X,
		F:         res.F,
		Gradient:  res.Gradient,
		Direction: dir,
		StepSize:  res.Step,
		Iter:      s.Iter + 1,
		Aux:       res.Aux,
		FuncEvals: s.FuncEvals + res.FuncEvals,
		GradEvals: s.GradEvals + res.GradEvals,
		Status:    StatusRunning,
		stepNorm:  res.Step * floats.Norm(dir, 2),
	}, nil
}

// Terminate delegates to the shared termination policy.
func (gd *GradientDescent) Terminate(s *State, opts *Options) (Status, bool) {
	return checkTermination(s, opts)
}

// Buffers reports the slices of a consumed state that may be recycled.
func (gd *GradientDescent) Buffers(s *State) Workspace {
	return Workspace{Vectors: [][]float64{s.Direction, s.Gradient}}
}
