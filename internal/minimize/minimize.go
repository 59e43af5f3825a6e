// Package minimize implements unconstrained smooth minimization: gradient
// descent, the BFGS quasi-Newton method and four variants of nonlinear
// conjugate gradient, all built on a single iterative solver contract.
package minimize

// Objective is the function being minimized. It receives the current point
// and the fixed auxiliary arguments of the problem and returns the scalar
// value together with an opaque auxiliary output that is passed through to
// the caller unmodified.
type Objective func(x []float64, args interface{}) (float64, interface{}, error)

// Gradient evaluates the gradient of the objective at x. How the gradient is
// produced (hand-written, symbolic, algorithmic differentiation) is up to the
// caller; the solvers only consume the returned vector.
type Gradient func(x []float64, args interface{}) ([]float64, error)

// Problem bundles the objective, its gradient oracle and the fixed arguments.
// A Problem is immutable for the duration of a run and may be shared between
// concurrent runs.
type Problem struct {
	// Func is the objective. Required.
	Func Objective

	// Grad is the gradient oracle. When nil, a central finite-difference
	// approximation of Func is used instead.
	Grad Gradient

	// Args is passed through to Func and Grad on every evaluation.
	Args interface{}
}

// Status describes where a solver run stands.
type Status int

const (
	// StatusRunning means no termination condition has fired yet.
	StatusRunning Status = iota
	// StatusConverged means both the step-size and gradient-norm criteria
	// were satisfied.
	StatusConverged
	// StatusDiverged means a non-finite value was produced, or the line
	// search could not find an acceptable step.
	StatusDiverged
	// StatusMaxSteps means the iteration budget ran out before convergence.
	StatusMaxSteps
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusConverged:
		return "converged"
	case StatusDiverged:
		return "diverged"
	case StatusMaxSteps:
		return "max_steps_reached"
	default:
		return "unknown"
	}
}

// State is the snapshot threaded through successive Step calls. Each Step
// returns a fresh State; no two live states alias the same slice, so a prior
// snapshot can be read concurrently with the next transition.
type State struct {
	// X is the current point.
	X []float64
	// F is the objective value at X.
	F float64
	// Gradient is the gradient at X.
	Gradient []float64
	// Direction is the search direction used to reach X (negative gradient
	// scaled by the step for the first iterate).
	Direction []float64
	// StepSize is the accepted step length along Direction. It seeds the
	// initial trial length of the next line search.
	StepSize float64
	// Iter counts completed Step calls. Strictly increases by one per Step.
	Iter int
	// Aux is the auxiliary output of the most recent objective evaluation.
	Aux interface{}
	// FuncEvals and GradEvals count oracle calls made so far in this run.
	FuncEvals int
	GradEvals int
	// Status is StatusRunning until a terminal condition fires. Once
	// terminal it never changes again.
	Status Status

	// stepNorm is the norm of the displacement X - prevX, used by the
	// termination policy. Infinite before the first step.
	stepNorm float64

	// mem holds algorithm-specific memory (inverse Hessian for BFGS,
	// previous direction and gradient for nonlinear CG, rule state for
	// update-rule solvers).
	mem memory
}

// memory is the per-algorithm portion of a State. Implementations deep-copy
// on clone so that state snapshots never share mutable storage.
type memory interface {
	clone() memory
}

// clone deep-copies a state, including algorithm memory.
func (s *State) clone() *State {
	c := *s
	c.X = append([]float64(nil), s.X...)
	c.Gradient = append([]float64(nil), s.Gradient...)
	c.Direction = append([]float64(nil), s.Direction...)
	if s.mem != nil {
		c.mem = s.mem.clone()
	}
	return &c
}

// Solver is the uniform contract every minimization algorithm implements.
// The driver repeatedly calls Step until Terminate fires.
type Solver interface {
	// Init evaluates the objective and gradient at x0 and allocates the
	// algorithm-specific memory. A dimension mismatch between x0 and the
	// gradient is reported immediately and never retried.
	Init(p *Problem, x0 []float64, opts *Options) (*State, error)

	// Step computes a search direction, selects a step length, advances the
	// point and re-evaluates the oracle. Calling Step on a state that is
	// already terminal returns an unmoved copy with the iteration counter
	// advanced.
	Step(p *Problem, s *State, opts *Options) (*State, error)

	// Terminate reports whether the state satisfies the termination policy
	// and with which terminal status. It never mutates the state.
	Terminate(s *State, opts *Options) (Status, bool)

	// Buffers reports which slices of a consumed state may be recycled for
	// later allocations. It is a memory-reuse hint only; callers are free to
	// ignore it.
	Buffers(s *State) Workspace
}

// Result is produced once per run by the driver.
type Result struct {
	// X is the final (best-so-far on exhaustion) point.
	X []float64
	// F is the objective value at X.
	F float64
	// Status is the terminal status of the run.
	Status Status
	// Iterations is the number of completed steps.
	Iterations int
	// FuncEvals and GradEvals count oracle calls over the whole run.
	FuncEvals int
	GradEvals int
	// Aux is the auxiliary output of the final objective evaluation.
	Aux interface{}
}
