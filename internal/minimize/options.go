package minimize

// Options holds the run configuration shared by every solver. A zero value is
// not usable; start from DefaultOptions and override fields as needed.
// Options are immutable for the duration of a run.
type Options struct {
	// MaxSteps is the iteration budget. The run terminates with
	// StatusMaxSteps when the counter reaches it without convergence.
	MaxSteps int

	// GradAtol and GradRtol form the mixed gradient-norm criterion
	// ||g|| <= GradAtol + GradRtol*|f|.
	GradAtol float64
	GradRtol float64

	// StepAtol and StepRtol form the mixed step-size criterion
	// ||dx|| <= StepAtol + StepRtol*||x||.
	StepAtol float64
	StepRtol float64

	// SufficientDecrease is the Armijo constant c1 in (0, 1).
	SufficientDecrease float64

	// Curvature is the strong-Wolfe constant c2 in (c1, 1). Used by solvers
	// whose memory updates need the curvature condition (BFGS, nonlinear CG).
	Curvature float64

	// Backtrack is the factor in (0, 1) by which a rejected trial step is
	// shrunk.
	Backtrack float64

	// MaxBacktracks bounds the number of line-search trials per step. When
	// exhausted the step fails with ErrLineSearch.
	MaxBacktracks int

	// InitialStep is the first trial step length of the first line search.
	// Subsequent searches start from the previously accepted step.
	InitialStep float64

	// Throw controls how Solve surfaces failures: true returns the error to
	// the caller, false folds it into Result.Status.
	Throw bool
}

// DefaultOptions returns the options used when a caller passes nil to Solve.
func DefaultOptions() *Options {
	return &Options{
		MaxSteps:           256,
		GradAtol:           1e-8,
		GradRtol:           1e-8,
		StepAtol:           1e-8,
		StepRtol:           1e-8,
		SufficientDecrease: 1e-4,
		Curvature:          0.9,
		Backtrack:          0.5,
		MaxBacktracks:      50,
		InitialStep:        1.0,
	}
}

// sanitize fills unset fields with defaults so solvers never divide by zero
// or loop forever on a partially populated Options.
func (o *Options) sanitize() *Options {
	def := DefaultOptions()
	c := *o
	if c.MaxSteps <= 0 {
		c.MaxSteps = def.MaxSteps
	}
	if c.SufficientDecrease <= 0 || c.SufficientDecrease >= 1 {
		c.SufficientDecrease = def.SufficientDecrease
	}
	if c.Curvature <= c.SufficientDecrease || c.Curvature >= 1 {
		c.Curvature = def.Curvature
	}
	if c.Backtrack <= 0 || c.Backtrack >= 1 {
		c.Backtrack = def.Backtrack
	}
	if c.MaxBacktracks <= 0 {
		c.MaxBacktracks = def.MaxBacktracks
	}
	if c.InitialStep <= 0 {
		c.InitialStep = def.InitialStep
	}
	return &c
}
