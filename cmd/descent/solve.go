package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/descent/internal/minimize"
	"github.com/copyleftdev/descent/internal/minimize/objectives"
	"github.com/copyleftdev/descent/internal/minimize/rules"
)

var (
	objectiveName string
	x0            []float64
	method        string
	betaName      string
	learningRate  float64
	momentum      float64
	maxSteps      int
	gradTol       float64
	stepTol       float64
	timeout       time.Duration
	jsonOut       bool
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Minimize a named objective",
	Long: `Runs the selected solver against one of the registered objectives
from the given starting point and prints the minimizer it finds.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&objectiveName, "objective", "", "Objective name (required, see 'descent objectives')")
	solveCmd.Flags().Float64SliceVar(&x0, "x0", nil, "Starting point, comma-separated (required)")
	solveCmd.Flags().StringVar(&method, "method", "bfgs", "Solver: gd, bfgs, cg, momentum, adam")
	solveCmd.Flags().StringVar(&betaName, "beta", "polak-ribiere", "CG beta formula: fletcher-reeves, polak-ribiere, hestenes-stiefel, dai-yuan")
	solveCmd.Flags().Float64Var(&learningRate, "lr", 0, "Fixed learning rate (gd: disables the line search; momentum/adam: step scale)")
	solveCmd.Flags().Float64Var(&momentum, "momentum", 0.9, "Momentum coefficient for the momentum rule")
	solveCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Iteration budget (0 uses the default)")
	solveCmd.Flags().Float64Var(&gradTol, "grad-tol", 0, "Gradient-norm tolerance (0 uses the default)")
	solveCmd.Flags().Float64Var(&stepTol, "step-tol", 0, "Step-size tolerance (0 uses the default)")
	solveCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Wall-clock limit for the run")
	solveCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")

	solveCmd.MarkFlagRequired("objective")
	solveCmd.MarkFlagRequired("x0")
	rootCmd.AddCommand(solveCmd)
}

func buildSolver() (minimize.Solver, error) {
	switch method {
	case "gd", "gradient-descent":
		if learningRate > 0 {
			return minimize.NewFixedStepGradientDescent(learningRate), nil
		}
		return minimize.NewGradientDescent(), nil
	case "bfgs", "":
		return &minimize.BFGS{}, nil
	case "cg", "nonlinear-cg":
		beta, err := minimize.ParseBetaMethod(betaName)
		if err != nil {
			return nil, err
		}
		return minimize.NewNonlinearCG(beta), nil
	case "momentum":
		return minimize.NewRuleSolver(rules.NewMomentum(learningRate, momentum)), nil
	case "adam":
		return minimize.NewRuleSolver(rules.NewAdam(learningRate)), nil
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	obj, err := objectives.Lookup(objectiveName)
	if err != nil {
		return err
	}

	solver, err := buildSolver()
	if err != nil {
		return err
	}

	opts := minimize.DefaultOptions()
	if maxSteps > 0 {
		opts.MaxSteps = maxSteps
	}
	if gradTol > 0 {
		opts.GradAtol = gradTol
		opts.GradRtol = gradTol
	}
	if stepTol > 0 {
		opts.StepAtol = stepTol
		opts.StepRtol = stepTol
	}

	logger.Info("Starting solve", map[string]interface{}{
		"objective": objectiveName,
		"method":    method,
		"dims":      len(x0),
		"max_steps": opts.MaxSteps,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	result, err := minimize.Solve(ctx, obj.Problem(), x0, solver, opts)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	logger.Info("Solve complete", map[string]interface{}{
		"status":     result.Status.String(),
		"iterations": result.Iterations,
		"func_evals": result.FuncEvals,
		"grad_evals": result.GradEvals,
		"elapsed":    elapsed.String(),
	})

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"x":          result.X,
			"f":          result.F,
			"status":     result.Status.String(),
			"iterations": result.Iterations,
			"func_evals": result.FuncEvals,
			"grad_evals": result.GradEvals,
		})
	}

	fmt.Printf("status: %s\n", result.Status)
	fmt.Printf("x:      %v\n", result.X)
	fmt.Printf("f(x):   %.6g\n", result.F)
	fmt.Printf("iters:  %d (%d func evals, %d grad evals, %s)\n",
		result.Iterations, result.FuncEvals, result.GradEvals, elapsed.Round(time.Millisecond))
	return nil
}
