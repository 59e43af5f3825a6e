package minimize

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// BetaMethod selects the formula combining the previous search direction into
// the new one in nonlinear conjugate gradient.
type BetaMethod int

const (
	// FletcherReeves: beta = ||g_k||^2 / ||g_{k-1}||^2.
	FletcherReeves BetaMethod = iota
	// PolakRibiere: beta = <g_k, g_k - g_{k-1}> / ||g_{k-1}||^2.
	PolakRibiere
	// HestenesStiefel: beta = <g_k, g_k - g_{k-1}> / <d_{k-1}, g_k - g_{k-1}>.
	HestenesStiefel
	// DaiYuan: beta = ||g_k||^2 / <d_{k-1}, g_k - g_{k-1}>.
	DaiYuan
)

// String returns the conventional name of the formula.
func (m BetaMethod) String() string {
	switch m {
	case FletcherReeves:
		return "fletcher-reeves"
	case PolakRibiere:
		return "polak-ribiere"
	case HestenesStiefel:
		return "hestenes-stiefel"
	case DaiYuan:
		return "dai-yuan"
	default:
		return "unknown"
	}
}

// ParseBetaMethod maps a formula name to its BetaMethod.
func ParseBetaMethod(name string) (BetaMethod, error) {
	switch strings.ToLower(name) {
	case "fletcher-reeves", "fr":
		return FletcherReeves, nil
	case "polak-ribiere", "pr":
		return PolakRibiere, nil
	case "hestenes-stiefel", "hs":
		return HestenesStiefel, nil
	case "dai-yuan", "dy":
		return DaiYuan, nil
	default:
		return 0, NewErrorf("unknown beta method %q", name).WithComponent("nonlinear-cg")
	}
}

// NonlinearCG is the nonlinear conjugate-gradient solver. The direction is
// -g + beta*d_prev with beta computed by the configured formula. A restart
// policy keeps every accepted direction a descent direction: when beta is
// negative, or the combined direction fails <g, d> < 0, beta is reset to zero
// and the step degenerates to steepest descent for that iteration.
type NonlinearCG struct {
	// Method selects the beta formula. The zero value is Fletcher-Reeves.
	Method BetaMethod
}

// NewNonlinearCG returns a conjugate-gradient solver using the given beta
// formula.
func NewNonlinearCG(method BetaMethod) *NonlinearCG {
	return &NonlinearCG{Method: method}
}

// cgMemory is the algorithm-specific portion of a nonlinear CG state.
type cgMemory struct {
	prevDir  []float64
	prevGrad []float64
	beta     float64
}

func (m *cgMemory) clone() memory {
	return &cgMemory{
		prevDir:  append([]float64(nil), m.prevDir...),
		prevGrad: append([]float64(nil), m.prevGrad...),
		beta:     m.beta,
	}
}

// Init evaluates the objective and gradient at x0. The first step always uses
// beta = 0 since no previous direction exists.
func (cg *NonlinearCG) Init(p *Problem, x0 []float64, opts *Options) (*State, error) {
	s, err := newInitialState(p, x0)
	if err != nil {
		return nil, err
	}
	s.mem = &cgMemory{}
	return s, nil
}

// beta computes the configured formula for the current gradient g given the
// previous gradient and direction. A vanishing denominator triggers a
// restart (beta = 0).
func (cg *NonlinearCG) beta(g, prevGrad, prevDir []float64) float64 {
	gg := floats.Dot(g, g)

	var num, den float64
	switch cg.Method {
	case FletcherReeves:
		num = gg
		den = floats.Dot(prevGrad, prevGrad)
	case PolakRibiere, HestenesStiefel, DaiYuan:
		var gy float64 // <g, g - g_prev>
		var dy float64 // <d_prev, g - g_prev>
		for i := range g {
			diff := g[i] - prevGrad[i]
			gy += g[i] * diff
			dy += prevDir[i] * diff
		}
		switch cg.Method {
		case PolakRibiere:
			num = gy
			den = floats.Dot(prevGrad, prevGrad)
		case HestenesStiefel:
			num = gy
			den = dy
		case DaiYuan:
			num = gg
			den = dy
		}
	default:
		panic(fmt.Sprintf("minimize: invalid beta method %d", cg.Method))
	}

	if den == 0 || !isFinite(num/den) {
		return 0
	}
	return num / den
}

// Step takes one conjugate-gradient step with a strong-Wolfe line search.
func (cg *NonlinearCG) Step(p *Problem, s *State, opts *Options) (*State, error) {
	if status, done := checkTermination(s, opts); done {
		return idleStep(s, status), nil
	}

	mem := s.mem.(*cgMemory)
	n := len(s.X)

	beta := 0.0
	if s.Iter > 0 && len(mem.prevDir) == n {
		beta = cg.beta(s.Gradient, mem.prevGrad, mem.prevDir)
		if beta < 0 {
			beta = 0
		}
	}

	dir := workPool.get(n)
	for i := range dir {
		dir[i] = -s.Gradient[i]
	}
	if beta != 0 {
		floats.AddScaled(dir, beta, mem.prevDir)
		if floats.Dot(s.Gradient, dir) >= 0 {
			// Not a descent direction: restart from steepest descent.
			beta = 0
			for i := range dir {
				dir[i] = -s.Gradient[i]
			}
		}
	}

	t0 := s.StepSize
	if t0 <= 0 {
		t0 = opts.InitialStep
	}
	res, err := wolfeSearch(p, s.X, s.F, s.Gradient, dir, t0, opts)
	if err != nil {
		return nil, err
	}

	// The memory holds the gradient of the point stepped from: the next beta
	// compares the successor's own gradient against it.
	newMem := &cgMemory{
		prevDir:  append([]float64(nil), dir...),
		prevGrad: append([]float64(nil), s.Gradient...),
		beta:     beta,
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
		mem:       newMem,
	}, nil
}

// Terminate delegates to the shared termination policy.
func (cg *NonlinearCG) Terminate(s *State, opts *Options) (Status, bool) {
	return checkTermination(s, opts)
}

// Buffers reports the slices of a consumed state that may be recycled. The
// memory keeps its own copies of the direction and gradient, so both are safe
// to reuse.
func (cg *NonlinearCG) Buffers(s *State) Workspace {
	return Workspace{Vectors: [][]float64{s.Direction, s.Gradient}}
}
