package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Solver run instrumentation, exported on /metrics alongside the standard
// process and Go collectors.
var (
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "descent_solves_total",
		Help: "Completed solver runs by method and terminal status.",
	}, []string{"method", "status"})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "descent_solve_duration_seconds",
		Help:    "Wall-clock duration of solver runs.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"method"})

	solveIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "descent_solve_iterations",
		Help:    "Iterations consumed by solver runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method"})
)
