// Package objectives provides a registry of smooth benchmark objectives with
// analytic gradients. The HTTP and CLI surfaces reference objectives by name;
// the core solvers take arbitrary Go functions and do not depend on this
// package.
package objectives

import (
	"fmt"
	"sort"

	"github.com/copyleftdev/descent/internal/minimize"
)

// Objective pairs a benchmark function with its gradient and metadata.
type Objective struct {
	// Name is the registry key.
	Name string
	// Description is a one-line summary for listings.
	Description string
	// Func and Grad plug directly into a minimize.Problem.
	Func minimize.Objective
	Grad minimize.Gradient
	// Minimum is a known global minimizer for the default dimension, used in
	// documentation and tests. Nil when dimension-dependent.
	Minimum []float64
}

// Problem returns a minimize.Problem backed by this objective.
func (o *Objective) Problem() *minimize.Problem {
	return &minimize.Problem{Func: o.Func, Grad: o.Grad}
}

var registry = map[string]*Objective{}

func register(o *Objective) {
	registry[o.Name] = o
}

// Lookup returns the named objective.
func Lookup(name string) (*Objective, error) {
	o, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q", name)
	}
	return o, nil
}

// Names returns the registered objective names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	register(&Objective{
		Name:        "sphere",
		Description: "sum of squares, minimum at the origin",
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
	})

	register(&Objective{
		Name:        "scaled-quadratic",
		Description: "f(x,y) = x^2 + 10y^2, a mildly ill-conditioned quadratic",
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			if len(x) != 2 {
				return 0, nil, fmt.Errorf("scaled-quadratic expects 2 dimensions, got %d", len(x))
			}
			return x[0]*x[0] + 10*x[1]*x[1], nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			return []float64{2 * x[0], 20 * x[1]}, nil
		},
		Minimum: []float64{0, 0},
	})

	register(&Objective{
		Name:        "rosenbrock",
		Description: "the banana valley, minimum at (1, ..., 1)",
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			if len(x) < 2 {
				return 0, nil, fmt.Errorf("rosenbrock needs at least 2 dimensions, got %d", len(x))
			}
			sum := 0.0
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				b := 1 - x[i]
				sum += 100*a*a + b*b
			}
			return sum, nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			g := make([]float64, len(x))
			for i := 0; i < len(x)-1; i++ {
				a := x[i+1] - x[i]*x[i]
				g[i] += -400*x[i]*a - 2*(1-x[i])
				g[i+1] += 200 * a
			}
			return g, nil
		},
	})

	register(&Objective{
		Name:        "beale",
		Description: "two-dimensional multimodal surface, minimum at (3, 0.5)",
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			if len(x) != 2 {
				return 0, nil, fmt.Errorf("beale expects 2 dimensions, got %d", len(x))
			}
			a := 1.5 - x[0] + x[0]*x[1]
			b := 2.25 - x[0] + x[0]*x[1]*x[1]
			c := 2.625 - x[0] + x[0]*x[1]*x[1]*x[1]
			return a*a + b*b + c*c, nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			a := 1.5 - x[0] + x[0]*x[1]
			b := 2.25 - x[0] + x[0]*x[1]*x[1]
			c := 2.625 - x[0] + x[0]*x[1]*x[1]*x[1]
			da := x[1] - 1
			db := x[1]*x[1] - 1
			dc := x[1]*x[1]*x[1] - 1
			return []float64{
				2*a*da + 2*b*db + 2*c*dc,
				2*a*x[0] + 2*b*2*x[0]*x[1] + 2*c*3*x[0]*x[1]*x[1],
			}, nil
		},
		Minimum: []float64{3, 0.5},
	})
}
