package minimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// checkTermination implements the shared termination policy.
//
// Divergence (any non-finite value) is checked first: a non-finite iterate
// can accidentally satisfy the convergence tolerances, so it must dominate.
// Convergence is checked before exhaustion so a run that converges exactly at
// the boundary iteration reports StatusConverged, not StatusMaxSteps.
func checkTermination(s *State, opts *Options) (Status, bool) {
	if s.Status != StatusRunning {
		// Terminal states are absorbing.
		return s.Status, true
	}

	if !isFinite(s.F) || hasNonFinite(s.X) || hasNonFinite(s.Gradient) {
		return StatusDiverged, true
	}

	gradNorm := floats.Norm(s.Gradient, 2)
	gradOK := gradNorm <= opts.GradAtol+opts.GradRtol*math.Abs(s.F)

	// Before the first step there is no displacement to measure, so a
	// stationary starting point converges on the gradient criterion alone.
	// An exactly stationary iterate converges the same way: there is no
	// descent direction left to measure a step along.
	stepOK := s.Iter == 0 || gradNorm == 0 ||
		s.stepNorm <= opts.StepAtol+opts.StepRtol*floats.Norm(s.X, 2)

	if gradOK && stepOK {
		return StatusConverged, true
	}

	if s.Iter >= opts.MaxSteps {
		return StatusMaxSteps, true
	}

	return StatusRunning, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func hasNonFinite(v []float64) bool {
	for _, x := range v {
		if !isFinite(x) {
			return true
		}
	}
	return false
}
