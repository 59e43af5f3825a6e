package minimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBetaMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    BetaMethod
		wantErr bool
	}{
		{"fletcher-reeves", FletcherReeves, false},
		{"fr", FletcherReeves, false},
		{"polak-ribiere", PolakRibiere, false},
		{"pr", PolakRibiere, false},
		{"hestenes-stiefel", HestenesStiefel, false},
		{"hs", HestenesStiefel, false},
		{"dai-yuan", DaiYuan, false},
		{"dy", DaiYuan, false},
		{"FR", FletcherReeves, false},
		{"newton", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBetaMethod(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBetaMethodString(t *testing.T) {
	assert.Equal(t, "fletcher-reeves", FletcherReeves.String())
	assert.Equal(t, "polak-ribiere", PolakRibiere.String())
	assert.Equal(t, "hestenes-stiefel", HestenesStiefel.String())
	assert.Equal(t, "dai-yuan", DaiYuan.String())
}

func TestBetaFormulas(t *testing.T) {
	// Hand-picked vectors with distinct values per formula:
	// g = (2, 1), g_prev = (1, 3), d_prev = (-1, -3).
	g := []float64{2, 1}
	prevGrad := []float64{1, 3}
	prevDir := []float64{-1, -3}

	tests := []struct {
		method BetaMethod
		want   float64
	}{
		{FletcherReeves, 0.5}, // ||g||^2 / ||g_prev||^2 = 5/10
		{PolakRibiere, 0},     // <g, g - g_prev> / ||g_prev||^2 = 0/10
		{HestenesStiefel, 0},  // <g, g - g_prev> / <d_prev, g - g_prev> = 0/5
		{DaiYuan, 1},          // ||g||^2 / <d_prev, g - g_prev> = 5/5
	}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			cg := NewNonlinearCG(tt.method)
			assert.InDelta(t, tt.want, cg.beta(g, prevGrad, prevDir), 1e-12)
		})
	}
}

func TestBetaZeroDenominatorRestarts(t *testing.T) {
	cg := NewNonlinearCG(FletcherReeves)
	// Vanishing previous gradient: the quotient is undefined, so the formula
	// must restart with beta = 0 instead of propagating Inf.
	beta := cg.beta([]float64{1, 1}, []float64{0, 0}, []float64{1, 0})
	assert.Equal(t, 0.0, beta)
}

func TestCGFirstStepIsSteepestDescent(t *testing.T) {
	for _, method := range []BetaMethod{FletcherReeves, PolakRibiere, HestenesStiefel, DaiYuan} {
		t.Run(method.String(), func(t *testing.T) {
			p := scaledQuadraticProblem()
			opts := DefaultOptions()
			cg := NewNonlinearCG(method)

			s, err := cg.Init(p, []float64{1, 1}, opts)
			require.NoError(t, err)

			next, err := cg.Step(p, s, opts)
			require.NoError(t, err)

			// No previous direction exists, so the first direction is exactly
			// the negative gradient at the start.
			assert.InDeltaSlice(t, []float64{-2, -20}, next.Direction, 1e-12)
		})
	}
}

func TestCGNegativeBetaRestarts(t *testing.T) {
	p := scaledQuadraticProblem()
	opts := DefaultOptions()
	cg := NewNonlinearCG(PolakRibiere)

	s, err := cg.Init(p, []float64{1, 1}, opts)
	require.NoError(t, err)

	// A previous gradient parallel to and larger than the current one makes
	// the Polak-Ribiere numerator negative, which must clamp beta to zero
	// and restart from steepest descent.
	s.Iter = 1
	s.StepSize = 0.1
	s.mem = &cgMemory{
		prevDir:  []float64{1, 1},
		prevGrad: []float64{4, 40},
	}

	next, err := cg.Step(p, s, opts)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, -20}, next.Direction, 1e-12)
}

func TestCGSolvesQuadraticAllFormulas(t *testing.T) {
	for _, method := range []BetaMethod{FletcherReeves, PolakRibiere, HestenesStiefel, DaiYuan} {
		t.Run(method.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.MaxSteps = 200
			opts.GradAtol = 1e-6
			opts.StepAtol = 1e-6

			res, err := Solve(context.Background(), scaledQuadraticProblem(), []float64{1, 1},
				NewNonlinearCG(method), opts)
			require.NoError(t, err)

			assert.Equal(t, StatusConverged, res.Status)
			assert.InDelta(t, 0, res.X[0], 1e-4)
			assert.InDelta(t, 0, res.X[1], 1e-4)
		})
	}
}

func TestCGSolvesRosenbrock(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxSteps = 1000
	opts.GradAtol = 1e-5
	opts.StepAtol = 1e-5

	res, err := Solve(context.Background(), rosenbrockProblem(), []float64{-1.2, 1.0},
		NewNonlinearCG(PolakRibiere), opts)
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, res.Status)
	assert.InDelta(t, 1, res.X[0], 1e-3)
	assert.InDelta(t, 1, res.X[1], 1e-3)
}

func TestCGCarriesStepSize(t *testing.T) {
	p := rosenbrockProblem()
	opts := DefaultOptions()
	cg := NewNonlinearCG(FletcherReeves)

	s, err := cg.Init(p, []float64{-1.2, 1.0}, opts)
	require.NoError(t, err)

	s1, err := cg.Step(p, s, opts)
	require.NoError(t, err)
	assert.Greater(t, s1.StepSize, 0.0)

	// The accepted step seeds the next search; memory carries the direction
	// just used and the gradient of the point stepped from, as private copies.
	mem := s1.mem.(*cgMemory)
	assert.Equal(t, s1.Direction, mem.prevDir)
	assert.Equal(t, s.Gradient, mem.prevGrad)
	assert.False(t, &s1.Direction[0] == &mem.prevDir[0], "memory must not alias the state")
	assert.False(t, &s.Gradient[0] == &mem.prevGrad[0], "memory must not alias the consumed state")
}

func TestCGSecondDirectionCombinesPreviousGradient(t *testing.T) {
	p := scaledQuadraticProblem()
	opts := DefaultOptions()
	cg := NewNonlinearCG(FletcherReeves)

	s0, err := cg.Init(p, []float64{1, 1}, opts)
	require.NoError(t, err)

	s1, err := cg.Step(p, s0, opts)
	require.NoError(t, err)

	// The memory stores the gradient of the point stepped from. If it held
	// the new iterate's own gradient instead, g - g_prev would vanish and
	// Fletcher-Reeves would degenerate to beta = 1.
	mem := s1.mem.(*cgMemory)
	assert.InDeltaSlice(t, s0.Gradient, mem.prevGrad, 1e-12)

	s2, err := cg.Step(p, s1, opts)
	require.NoError(t, err)

	// d1 = -g1 + beta*d0 with beta computed from (g1, g0, d0).
	beta := cg.beta(s1.Gradient, s0.Gradient, s1.Direction)
	require.Greater(t, beta, 0.0)
	want := make([]float64, len(s1.Gradient))
	for i := range want {
		want[i] = -s1.Gradient[i] + beta*s1.Direction[i]
	}
	assert.InDeltaSlice(t, want, s2.Direction, 1e-12)
}
