package minimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGradientDescentSolvesSphere(t *testing.T) {
	res, err := Solve(context.Background(), sphereProblem(), []float64{3, -4}, NewGradientDescent(), nil)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, res.Status)
	assert.InDelta(t, 0, res.F, 1e-12)
	assert.InDelta(t, 0, res.X[0], 1e-6)
	assert.InDelta(t, 0, res.X[1], 1e-6)
	assert.LessOrEqual(t, res.Iterations, 3)
}

func TestGradientDescentIsMonotone(t *testing.T) {
	// The Armijo condition guarantees the objective never increases across
	// accepted steps.
	p := rosenbrockProblem()
	opts := DefaultOptions()
	gd := NewGradientDescent()

	s, err := gd.Init(p, []float64{-1.2, 1.0}, opts)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		next, err := gd.Step(p, s, opts)
		require.NoError(t, err)
		assert.LessOrEqual(t, next.F, s.F, "objective increased at iteration %d", i)
		assert.Equal(t, s.Iter+1, next.Iter)
		s = next
	}
}

func TestFixedStepGradientDescentConverges(t *testing.T) {
	// f(x, y) = x^2 + 10y^2 with learning rate 0.05: the y coordinate is
	// eliminated in one step (1 - 20*0.05 = 0) and x contracts by 0.9 per
	// iteration, so the run converges well inside a 500-step budget.
	opts := DefaultOptions()
	opts.MaxSteps = 500
	opts.GradAtol = 1e-6

	res, err := Solve(context.Background(), scaledQuadraticProblem(), []float64{1, 1},
		NewFixedStepGradientDescent(0.05), opts)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, res.Status)
	assert.Less(t, res.Iterations, 500)
	assert.InDelta(t, 0, res.X[0], 1e-5)
	assert.InDelta(t, 0, res.X[1], 1e-5)
}

func TestFixedStepDecay(t *testing.T) {
	p := sphereProblem()
	opts := DefaultOptions()
	gd := &GradientDescent{LearningRate: 0.1, Decay: 0.5}

	s, err := gd.Init(p, []float64{1}, opts)
	require.NoError(t, err)

	// Step sizes follow lr * decay^iter exactly.
	s1, err := gd.Step(p, s, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s1.StepSize, 1e-15)

	s2, err := gd.Step(p, s1, opts)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, s2.StepSize, 1e-15)
}

func TestNormalizedDirection(t *testing.T) {
	p := scaledQuadraticProblem()
	opts := DefaultOptions()
	gd := &GradientDescent{LearningRate: 0.01, Normalize: true}

	s, err := gd.Init(p, []float64{1, 1}, opts)
	require.NoError(t, err)

	next, err := gd.Step(p, s, opts)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Norm(next.Direction, 2), 1e-12)
}

func TestGradientDescentFiniteDifferenceFallback(t *testing.T) {
	// No gradient oracle: the solver falls back to central differences and
	// still minimizes the sphere.
	p := &Problem{
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			return x[0]*x[0] + x[1]*x[1], nil, nil
		},
	}
	opts := DefaultOptions()
	opts.GradAtol = 1e-6
	opts.StepAtol = 1e-6

	res, err := Solve(context.Background(), p, []float64{1, 2}, NewGradientDescent(), opts)
	require.NoError(t, err)
	assert.Equal(t, StatusConverged, res.Status)
	assert.InDelta(t, 0, res.X[0], 1e-4)
	assert.InDelta(t, 0, res.X[1], 1e-4)
}
