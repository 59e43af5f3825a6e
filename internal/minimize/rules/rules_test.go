package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/descent/internal/minimize"
)

func sphere() *minimize.Problem {
	return &minimize.Problem{
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			sum := 0.0
			for _, v := range x {
				sum += v * v
			}
			return sum, nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			g := make([]float64, len(x))
			for i, v := range x {
				g[i] = 2 * v
			}
			return g, nil
		},
	}
}

func TestMomentumUpdate(t *testing.T) {
	m := NewMomentum(0.1, 0.5)
	mem := m.Init(2)

	grad := []float64{1, 2}
	delta := make([]float64, 2)

	// First apply: velocity = grad, delta = -lr*velocity.
	mem = m.Apply(delta, nil, grad, mem)
	assert.InDeltaSlice(t, []float64{-0.1, -0.2}, delta, 1e-12)

	// Second apply accumulates: velocity = 0.5*(1,2) + (1,2) = (1.5, 3).
	mem2 := m.Apply(delta, nil, grad, mem)
	assert.InDeltaSlice(t, []float64{-0.15, -0.3}, delta, 1e-12)

	// The previous memory is untouched; a re-apply from it gives the same
	// answer again.
	m.Apply(delta, nil, grad, mem)
	assert.InDeltaSlice(t, []float64{-0.15, -0.3}, delta, 1e-12)
	assert.NotSame(t, mem, mem2)
}

func TestMomentumDefaultLearningRate(t *testing.T) {
	m := NewMomentum(0, 0)
	mem := m.Init(1)
	delta := make([]float64, 1)
	m.Apply(delta, nil, []float64{1}, mem)
	assert.InDelta(t, -0.01, delta[0], 1e-12)
}

func TestAdamFirstStep(t *testing.T) {
	a := NewAdam(0.001)
	mem := a.Init(1)
	delta := make([]float64, 1)

	// With bias correction the first update is -lr * g/(|g| + eps),
	// essentially -lr * sign(g).
	a.Apply(delta, nil, []float64{4}, mem)
	assert.InDelta(t, -0.001, delta[0], 1e-6)

	a.Apply(delta, nil, []float64{-4}, mem)
	assert.InDelta(t, 0.001, delta[0], 1e-6)
}

func TestAdamMemoryImmutable(t *testing.T) {
	a := NewAdam(0.001)
	mem := a.Init(2)
	st := mem.(*adamState)

	delta := make([]float64, 2)
	next := a.Apply(delta, nil, []float64{1, 2}, mem)

	assert.Equal(t, []float64{0, 0}, st.m, "input memory must not be written")
	assert.Equal(t, []float64{0, 0}, st.v)
	assert.Equal(t, 0, st.t)
	assert.Equal(t, 1, next.(*adamState).t)
}

func TestMomentumMinimizesSphere(t *testing.T) {
	opts := minimize.DefaultOptions()
	opts.MaxSteps = 300
	opts.GradAtol = 1e-4
	opts.StepAtol = 1e-4

	res, err := minimize.Solve(context.Background(), sphere(), []float64{1, -1},
		minimize.NewRuleSolver(NewMomentum(0.05, 0.5)), opts)
	require.NoError(t, err)

	assert.Equal(t, minimize.StatusConverged, res.Status)
	assert.InDelta(t, 0, res.X[0], 1e-3)
	assert.InDelta(t, 0, res.X[1], 1e-3)
}

func TestAdamDecreasesObjective(t *testing.T) {
	opts := minimize.DefaultOptions()
	opts.MaxSteps = 50

	p := sphere()
	f0, _, err := p.Func([]float64{1, -1}, nil)
	require.NoError(t, err)

	res, err := minimize.Solve(context.Background(), p, []float64{1, -1},
		minimize.NewRuleSolver(NewAdam(0.01)), opts)
	require.NoError(t, err)
	assert.Less(t, res.F, f0)
}
