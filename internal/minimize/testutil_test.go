package minimize

// Shared test problems. All are smooth with hand-written gradients so runs
// are fully deterministic.

// sphereProblem is sum of squares with its minimum at the origin.
func sphereProblem() *Problem {
	return &Problem{
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

// scaledQuadraticProblem is f(x, y) = x^2 + 10y^2, a mildly ill-conditioned
// convex quadratic with its minimum at the origin.
func scaledQuadraticProblem() *Problem {
	return &Problem{
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			return x[0]*x[0] + 10*x[1]*x[1], nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			return []float64{2 * x[0], 20 * x[1]}, nil
		},
	}
}

// rosenbrockProblem is the two-dimensional banana valley with its minimum at
// (1, 1).
func rosenbrockProblem() *Problem {
	return &Problem{
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			a := x[1] - x[0]*x[0]
			b := 1 - x[0]
			return 100*a*a + b*b, nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			a := x[1] - x[0]*x[0]
			return []float64{-400*x[0]*a - 2*(1-x[0]), 200 * a}, nil
		},
	}
}

// uphillProblem lies about its gradient: the objective increases along the
// reported descent direction, so every line search must fail.
func uphillProblem() *Problem {
	return &Problem{
		Func: func(x []float64, _ interface{}) (float64, interface{}, error) {
			return x[0], nil, nil
		},
		Grad: func(x []float64, _ interface{}) ([]float64, error) {
			return []float64{-1}, nil
		},
	}
}
