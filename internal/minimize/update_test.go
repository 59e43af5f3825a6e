package minimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// scaledGradRule is a minimal update rule: delta = -lr * grad, no memory.
type scaledGradRule struct {
	lr float64
}

func (r scaledGradRule) Init(n int) interface{} { return nil }

func (r scaledGradRule) Apply(delta, x, grad []float64, mem interface{}) interface{} {
	for i := range grad {
		delta[i] = -r.lr * grad[i]
	}
	return nil
}

// countingRule threads an iteration counter through the rule memory.
type countingRule struct{}

func (countingRule) Init(n int) interface{} { return 0 }

func (countingRule) Apply(delta, x, grad []float64, mem interface{}) interface{} {
	for i := range delta {
		delta[i] = -0.01 * grad[i]
	}
	return mem.(int) + 1
}

func TestRuleSolverStepLengthIsOne(t *testing.T) {
	p := scaledQuadraticProblem()
	opts := DefaultOptions()
	rs := NewRuleSolver(scaledGradRule{lr: 0.05})

	s, err := rs.Init(p, []float64{1, 1}, opts)
	require.NoError(t, err)

	next, err := rs.Step(p, s, opts)
	require.NoError(t, err)

	// The rule's delta is applied verbatim: step length 1, no line search.
	assert.Equal(t, 1.0, next.StepSize)
	assert.InDeltaSlice(t, []float64{0.9, 0}, next.X, 1e-12)
	assert.InDelta(t, floats.Norm(next.Direction, 2), next.stepNorm, 1e-12)
	assert.Equal(t, s.FuncEvals+1, next.FuncEvals)
}

func TestRuleSolverConverges(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSteps = 500
	opts.GradAtol = 1e-6

	res, err := Solve(context.Background(), scaledQuadraticProblem(), []float64{1, 1},
		NewRuleSolver(scaledGradRule{lr: 0.05}), opts)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, res.Status)
	assert.InDelta(t, 0, res.X[0], 1e-5)
	assert.InDelta(t, 0, res.X[1], 1e-5)
}

func TestRuleSolverThreadsMemory(t *testing.T) {
	p := sphereProblem()
	opts := DefaultOptions()
	rs := NewRuleSolver(countingRule{})

	s, err := rs.Init(p, []float64{1, 1}, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, s.mem.(*ruleMemory).rule)

	for i := 1; i <= 3; i++ {
		s, err = rs.Step(p, s, opts)
		require.NoError(t, err)
		assert.Equal(t, i, s.mem.(*ruleMemory).rule)
	}
}
