package minimize

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BFGS is the quasi-Newton solver. It maintains a symmetric positive-definite
// approximation of the inverse Hessian, refined after every accepted step via
// the secant update. A strong-Wolfe line search is mandatory: without the
// curvature condition the update cannot be guaranteed to preserve positive
// definiteness.
type BFGS struct{}

// NewBFGS returns a BFGS solver. The inverse-Hessian approximation starts at
// the identity.
func NewBFGS() *BFGS {
	return &BFGS{}
}

// bfgsMemory is the algorithm-specific portion of a BFGS state.
type bfgsMemory struct {
	hinv     *mat.SymDense
	prevX    []float64
	prevGrad []float64
}

func (m *bfgsMemory) clone() memory {
	c := &bfgsMemory{
		prevX:    append([]float64(nil), m.prevX...),
		prevGrad: append([]float64(nil), m.prevGrad...),
	}
	if m.hinv != nil {
		n := m.hinv.SymmetricDim()
		c.hinv = mat.NewSymDense(n, nil)
		c.hinv.CopySym(m.hinv)
	}
	return c
}

// identitySym writes the n-by-n identity into dst.
func identitySym(dst *mat.SymDense) {
	n := dst.SymmetricDim()
	dst.Zero()
	for i := 0; i < n; i++ {
		dst.SetSym(i, i, 1)
	}
}

// Init evaluates the objective and gradient at x0 and allocates the inverse
// Hessian, initialized to the identity.
func (b *BFGS) Init(p *Problem, x0 []float64, opts *Options) (*State, error) {
	s, err := newInitialState(p, x0)
	if err != nil {
		return nil, err
	}
	hinv := mat.NewSymDense(len(x0), nil)
	identitySym(hinv)
	s.mem = &bfgsMemory{hinv: hinv}
	return s, nil
}

// Step takes one quasi-Newton step: direction -Hinv*g, strong-Wolfe line
// search, then the secant update of Hinv. The update is skipped, not applied,
// when the curvature condition <y, s> > 0 fails, which keeps the
// approximation positive definite.
func (b *BFGS) Step(p *Problem, s *State, opts *Options) (*State, error) {
	if status, done := checkTermination(s, opts); done {
		return idleStep(s, status), nil
	}

	mem := s.mem.(*bfgsMemory).clone().(*bfgsMemory)
	n := len(s.X)

	dir := workPool.get(n)
	dv := mat.NewVecDense(n, dir)
	dv.MulVec(mem.hinv, mat.NewVecDense(n, s.Gradient))
	floats.Scale(-1, dir)

	// A stale approximation can stop producing descent directions; reset it
	// to the identity and fall back to steepest descent for this step.
	if floats.Dot(s.Gradient, dir) >= 0 {
		identitySym(mem.hinv)
		for i := range dir {
			dir[i] = -s.Gradient[i]
		}
	}

	// Always try the unit step first: near the minimizer the quasi-Newton
	// step is the Newton step and must be accepted unscaled.
	res, err := wolfeSearch(p, s.X, s.F, s.Gradient, dir, opts.InitialStep, opts)
	if err != nil {
		return nil, err
	}

	sk := workPool.get(n)
	yk := workPool.get(n)
	floats.SubTo(sk, res.X, s.X)
	floats.SubTo(yk, res.Gradient, s.Gradient)

	if sy := floats.Dot(sk, yk); sy > 0 {
		updateInverseHessian(mem.hinv, sk, yk, sy)
	}
	workPool.put(sk)
	workPool.put(yk)

	mem.prevX = append(mem.prevX[:0], s.X...)
	mem.prevGrad = append(mem.prevGrad[:0], s.Gradient...)

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
		mem:       mem,
	}, nil
}

// updateInverseHessian applies the BFGS secant update
//
//	H' = H - (s (Hy)^T + (Hy) s^T)/<s,y> + (1 + <y,Hy>/<s,y>) (s s^T)/<s,y>
//
// in place. Only the upper triangle is written, so exact symmetry is
// preserved by construction.
func updateInverseHessian(h *mat.SymDense, sk, yk []float64, sy float64) {
	n := len(sk)
	hy := make([]float64, n)
	mat.NewVecDense(n, hy).MulVec(h, mat.NewVecDense(n, yk))
	yhy := floats.Dot(yk, hy)

	rho := 1 / sy
	c := (1 + yhy*rho) * rho
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := h.At(i, j) -
				rho*(sk[i]*hy[j]+hy[i]*sk[j]) +
				c*sk[i]*sk[j]
			h.SetSym(i, j, v)
		}
	}
}

// Terminate delegates to the shared termination policy.
func (b *BFGS) Terminate(s *State, opts *Options) (Status, bool) {
	return checkTermination(s, opts)
}

// Buffers reports the slices of a consumed state that may be recycled. The
// inverse Hessian is not listed: it is cloned per step so snapshots never
// share it.
func (b *BFGS) Buffers(s *State) Workspace {
	return Workspace{Vectors: [][]float64{s.Direction, s.Gradient}}
}
