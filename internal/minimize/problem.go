package minimize

import (
	"gonum.org/v1/gonum/diff/fd"
)

// value evaluates the objective at x.
func (p *Problem) value(x []float64) (float64, interface{}, error) {
	if p.Func == nil {
		return 0, nil, ErrNoObjective
	}
	return p.Func(x, p.Args)
}

// gradient evaluates the gradient oracle at x, falling back to a central
// finite-difference approximation of Func when no oracle is configured.
func (p *Problem) gradient(x []float64) ([]float64, error) {
	if p.Grad != nil {
		return p.Grad(x, p.Args)
	}
	if p.Func == nil {
		return nil, ErrNoObjective
	}
	g := fd.Gradient(nil, func(y []float64) float64 {
		v, _, _ := p.Func(y, p.Args)
		return v
	}, x, &fd.Settings{Formula: fd.Central})
	return g, nil
}

// evaluate computes value and gradient at x and checks that the gradient
// dimension matches the point.
func (p *Problem) evaluate(x []float64) (f float64, aux interface{}, g []float64, err error) {
	f, aux, err = p.value(x)
	if err != nil {
		return 0, nil, nil, WrapError(err, "objective evaluation").WithComponent("problem")
	}
	g, err = p.gradient(x)
	if err != nil {
		return 0, nil, nil, WrapError(err, "gradient evaluation").WithComponent("problem")
	}
	if len(g) != len(x) {
		return 0, nil, nil, WrapErrorf(ErrDimension, "gradient has %d elements for a %d-dimensional point", len(g), len(x)).WithComponent("problem")
	}
	return f, aux, g, nil
}
