// Package rules provides externally defined update rules — momentum and
// Adam-style optimizers — that plug into the solver contract through
// minimize.RuleSolver. Rules keep their memory immutable across steps: Apply
// returns fresh storage instead of updating in place.
package rules

import (
	"math"
)

// Momentum implements gradient descent with classical momentum.
//
// Update rule:
//
//	velocity = momentum*velocity + gradient
//	delta    = -lr*velocity
type Momentum struct {
	// LearningRate scales the velocity into the step. Defaults to 0.01 when
	// zero.
	LearningRate float64
	// Coefficient is the momentum factor in [0, 1).
	Coefficient float64
}

// NewMomentum returns a momentum rule with the given learning rate and
// momentum coefficient.
func NewMomentum(lr, momentum float64) *Momentum {
	return &Momentum{LearningRate: lr, Coefficient: momentum}
}

type momentumState struct {
	velocity []float64
}

// Init allocates the zero velocity buffer.
func (m *Momentum) Init(n int) interface{} {
	return &momentumState{velocity: make([]float64, n)}
}

// Apply computes the momentum update. The previous velocity is read, never
// written.
func (m *Momentum) Apply(delta, x, grad []float64, mem interface{}) interface{} {
	st := mem.(*momentumState)
	lr := m.LearningRate
	if lr <= 0 {
		lr = 0.01
	}

	next := &momentumState{velocity: make([]float64, len(grad))}
	for i := range grad {
		next.velocity[i] = m.Coefficient*st.velocity[i] + grad[i]
		delta[i] = -lr * next.velocity[i]
	}
	return next
}

// Adam implements the Adam optimizer: per-coordinate step sizes from
// bias-corrected first and second moment estimates of the gradient.
type Adam struct {
	// LearningRate defaults to 0.001 when zero.
	LearningRate float64
	// Beta1 and Beta2 are the moment decay rates; 0.9 and 0.999 when zero.
	Beta1 float64
	Beta2 float64
	// Epsilon guards the division; 1e-8 when zero.
	Epsilon float64
}

// NewAdam returns an Adam rule with the standard defaults.
func NewAdam(lr float64) *Adam {
	return &Adam{LearningRate: lr}
}

type adamState struct {
	m []float64 // first moment
	v []float64 // second moment
	t int       // step count for bias correction
}

// Init allocates zeroed moment buffers.
func (a *Adam) Init(n int) interface{} {
	return &adamState{m: make([]float64, n), v: make([]float64, n)}
}

// Apply computes the Adam update with bias correction.
func (a *Adam) Apply(delta, x, grad []float64, mem interface{}) interface{} {
	st := mem.(*adamState)

	lr := a.LearningRate
	if lr <= 0 {
		lr = 0.001
	}
	b1 := a.Beta1
	if b1 <= 0 {
		b1 = 0.9
	}
	b2 := a.Beta2
	if b2 <= 0 {
		b2 = 0.999
	}
	eps := a.Epsilon
	if eps <= 0 {
		eps = 1e-8
	}

	next := &adamState{
		m: make([]float64, len(grad)),
		v: make([]float64, len(grad)),
		t: st.t + 1,
	}
	c1 := 1 - math.Pow(b1, float64(next.t))
	c2 := 1 - math.Pow(b2, float64(next.t))
	for i := range grad {
		next.m[i] = b1*st.m[i] + (1-b1)*grad[i]
		next.v[i] = b2*st.v[i] + (1-b2)*grad[i]*grad[i]
		mhat := next.m[i] / c1
		vhat := next.v[i] / c2
		delta[i] = -lr * mhat / (math.Sqrt(vhat) + eps)
	}
	return next
}
