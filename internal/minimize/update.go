package minimize

import (
	"gonum.org/v1/gonum/floats"
)

// UpdateRule is an externally defined per-step update rule, such as a
// momentum or Adam-style optimizer. The adapter below maps it onto the
// Solver contract: the rule's update becomes the search direction and the
// step length is fixed at 1, with no line search.
type UpdateRule interface {
	// Init allocates the rule's memory for an n-dimensional problem.
	Init(n int) interface{}

	// Apply writes the update for the current point into delta and returns
	// the successor memory. Implementations must treat mem as immutable and
	// return fresh storage, so that state snapshots never share it.
	Apply(delta, x, grad []float64, mem interface{}) interface{}
}

// RuleSolver wraps an UpdateRule into the Solver contract.
type RuleSolver struct {
	Rule UpdateRule
}

// NewRuleSolver returns a solver driven by the given update rule.
func NewRuleSolver(rule UpdateRule) *RuleSolver {
	return &RuleSolver{Rule: rule}
}

// ruleMemory carries the opaque rule memory through state snapshots. Rules
// return fresh memory from Apply, so a shallow copy is a valid clone.
type ruleMemory struct {
	rule interface{}
}

func (m *ruleMemory) clone() memory {
	return &ruleMemory{rule: m.rule}
}

// Init evaluates the objective and gradient at x0 and allocates the rule
// memory.
func (rs *RuleSolver) Init(p *Problem, x0 []float64, opts *Options) (*State, error) {
	s, err := newInitialState(p, x0)
	if err != nil {
		return nil, err
	}
	s.mem = &ruleMemory{rule: rs.Rule.Init(len(x0))}
	return s, nil
}

// Step applies the rule's update with step length 1.
func (rs *RuleSolver) Step(p *Problem, s *State, opts *Options) (*State, error) {
	if status, done := checkTermination(s, opts); done {
		return idleStep(s, status), nil
	}

	mem := s.mem.(*ruleMemory)
	n := len(s.X)

	delta := workPool.get(n)
	nextRule := rs.Rule.Apply(delta, s.X, s.Gradient, mem.rule)

	y := trialPoint(s.X, delta, 1)
	f, aux, g, err := p.evaluate(y)
	if err != nil {
		return nil, err
	}

	return &State{
		X:         y,
		F:         f,
		Gradient:  g,
		Direction: delta,
		StepSize:  1,
		Iter:      s.Iter + 1,
		Aux:       aux,
		FuncEvals: s.FuncEvals + 1,
		GradEvals: s.GradEvals + 1,
		Status:    StatusRunning,
		stepNorm:  floats.Norm(delta, 2),
		mem:       &ruleMemory{rule: nextRule},
	}, nil
}

// Terminate delegates to the shared termination policy.
func (rs *RuleSolver) Terminate(s *State, opts *Options) (Status, bool) {
	return checkTermination(s, opts)
}

// Buffers reports the slices of a consumed state that may be recycled.
func (rs *RuleSolver) Buffers(s *State) Workspace {
	return Workspace{Vectors: [][]float64{s.Direction, s.Gradient}}
}
