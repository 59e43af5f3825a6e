package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/descent/internal/config"
	"github.com/copyleftdev/descent/internal/logging"
	"github.com/copyleftdev/descent/internal/minimize"
	"github.com/copyleftdev/descent/internal/minimize/objectives"
	"github.com/copyleftdev/descent/internal/minimize/rules"
)

// Logger defines the logging interface used by the server.
// This allows us to be flexible with our logging implementation.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// SolveRequest describes one minimization run over a named benchmark
// objective.
type SolveRequest struct {
	// Objective is a name registered in the objectives package.
	Objective string `json:"objective"`
	// X0 is the starting point.
	X0 []float64 `json:"x0"`
	// Method selects the algorithm: gd, bfgs, cg, momentum or adam.
	Method string `json:"method"`
	// Beta selects the conjugate-gradient formula (cg only).
	Beta string `json:"beta,omitempty"`
	// LearningRate applies to gd (fixed-step mode), momentum and adam.
	LearningRate float64 `json:"learning_rate,omitempty"`
	// MaxSteps overrides the configured default budget when positive.
	MaxSteps int `json:"max_steps,omitempty"`
	// GradTol overrides the configured absolute gradient tolerance when
	// positive.
	GradTol float64 `json:"grad_tol,omitempty"`
}

// JobState tracks one background solve. It is guarded by the server's
// mutex and safe for concurrent access through the handlers.
type JobState struct {
	ID          string
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	Method      string
	StartTime   time.Time
	EndTime     *time.Time
	Result      *minimize.Result
	Err         string
	CancelFunc  context.CancelFunc
	LastUpdated time.Time
}

// Server implements the HTTP and JSON-RPC API of the minimization service.
// It manages solve jobs and provides endpoints to start, monitor, and cancel
// them.
type Server struct {
	cfg    *config.Config
	logger Logger

	jobs   map[string]*JobState
	jobsMu sync.RWMutex // Protects the jobs map
}

// NewServer creates a new server instance with the given config and logger.
func NewServer(cfg *config.Config, logger Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		jobs:   make(map[string]*JobState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/objectives", s.handleObjectives)
		r.Post("/solve", s.handleSolve)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/solve/{id}", s.handleCancel)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// buildSolver maps a request onto a solver instance.
func buildSolver(req *SolveRequest) (minimize.Solver, error) {
	switch req.Method {
	case "gd", "gradient-descent":
		if req.LearningRate > 0 {
			return minimize.NewFixedStepGradientDescent(req.LearningRate), nil
		}
		return minimize.NewGradientDescent(), nil
	case "bfgs", "":
		return minimize.NewBFGS(), nil
	case "cg", "nonlinear-cg":
		method := minimize.FletcherReeves
		if req.Beta != "" {
			var err error
			method, err = minimize.ParseBetaMethod(req.Beta)
			if err != nil {
				return nil, err
			}
		}
		return minimize.NewNonlinearCG(method), nil
	case "momentum":
		return minimize.NewRuleSolver(rules.NewMomentum(req.LearningRate, 0.9)), nil
	case "adam":
		return minimize.NewRuleSolver(rules.NewAdam(req.LearningRate)), nil
	default:
		return nil, fmt.Errorf("unknown method %q", req.Method)
	}
}

// buildOptions merges a request with the configured solver defaults.
func (s *Server) buildOptions(req *SolveRequest) *minimize.Options {
	opts := minimize.DefaultOptions()
	opts.MaxSteps = s.cfg.Solver.MaxSteps
	opts.GradAtol = s.cfg.Solver.GradTol
	opts.StepAtol = s.cfg.Solver.StepTol
	opts.MaxBacktracks = s.cfg.Solver.MaxBacktracks
	if req.MaxSteps > 0 {
		opts.MaxSteps = req.MaxSteps
	}
	if req.GradTol > 0 {
		opts.GradAtol = req.GradTol
	}
	return opts
}

// startJob validates a request, registers a job and launches the background
// run.
func (s *Server) startJob(req *SolveRequest) (map[string]interface{}, error) {
	if req.Objective == "" {
		return nil, fmt.Errorf("objective is required")
	}
	if len(req.X0) == 0 {
		return nil, fmt.Errorf("x0 is required")
	}

	obj, err := objectives.Lookup(req.Objective)
	if err != nil {
		return nil, err
	}
	solver, err := buildSolver(req)
	if err != nil {
		return nil, err
	}
	opts := s.buildOptions(req)

	id := fmt.Sprintf("solve_%d", time.Now().UnixNano())
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Solver.JobTimeout)

	job := &JobState{
		ID:          id,
		Status:      "pending",
		Method:      req.Method,
		StartTime:   time.Now(),
		CancelFunc:  cancel,
		LastUpdated: time.Now(),
	}

	s.jobsMu.Lock()
	s.jobs[id] = job
	s.jobsMu.Unlock()

	go s.runJob(ctx, job, obj.Problem(), req.X0, solver, opts)

	return map[string]interface{}{
		"job_id": id,
		"status": "pending",
	}, nil
}

// runJob executes a solve in a goroutine and records the outcome.
func (s *Server) runJob(ctx context.Context, job *JobState, p *minimize.Problem, x0 []float64, solver minimize.Solver, opts *minimize.Options) {
	defer job.CancelFunc()

	s.jobsMu.Lock()
	if job.Status == "cancelled" {
		// Cancelled before the run started.
		s.jobsMu.Unlock()
		return
	}
	job.Status = "running"
	job.LastUpdated = time.Now()
	s.jobsMu.Unlock()

	start := time.Now()
	result, err := minimize.Solve(ctx, p, x0, solver, opts)
	elapsed := time.Since(start)

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now

	if err != nil {
		s.logger.Error("Solve failed", map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		})
		if job.Status != "cancelled" {
			job.Status = "failed"
		}
		job.Err = err.Error()
		solvesTotal.WithLabelValues(job.Method, "error").Inc()
		return
	}

	// A cancellation can race a run that finishes anyway; the cancelled
	// status wins, the same as on the error path.
	if job.Status != "cancelled" {
		job.Status = "completed"
	}
	job.Result = result

	solvesTotal.WithLabelValues(job.Method, result.Status.String()).Inc()
	solveDuration.WithLabelValues(job.Method).Observe(elapsed.Seconds())
	solveIterations.WithLabelValues(job.Method).Observe(float64(result.Iterations))

	s.logger.Info("Solve completed", map[string]interface{}{
		"job_id":     job.ID,
		"status":     result.Status.String(),
		"iterations": result.Iterations,
		"value":      result.F,
	})
}

// jobStatus builds the status payload for a job.
func (s *Server) jobStatus(id string) (map[string]interface{}, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, fmt.Errorf("job not found")
	}

	response := map[string]interface{}{
		"status":      job.Status,
		"method":      job.Method,
		"start_time":  job.StartTime.Format(time.RFC3339),
		"last_update": job.LastUpdated.Format(time.RFC3339),
	}
	if job.EndTime != nil {
		response["end_time"] = job.EndTime.Format(time.RFC3339)
	}
	if job.Err != "" {
		response["error"] = job.Err
	}
	if job.Result != nil {
		response["result"] = map[string]interface{}{
			"x":          job.Result.X,
			"value":      job.Result.F,
			"status":     job.Result.Status.String(),
			"iterations": job.Result.Iterations,
			"func_evals": job.Result.FuncEvals,
			"grad_evals": job.Result.GradEvals,
		}
	}
	return response, nil
}

// cancelJob cancels a pending or running job.
func (s *Server) cancelJob(id string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found")
	}

	switch job.Status {
	case "completed", "failed", "cancelled":
		// Already in a terminal state
		return fmt.Errorf("cannot cancel job with status: %s", job.Status)
	}

	if job.CancelFunc != nil {
		job.CancelFunc()
	}

	job.Status = "cancelled"
	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now

	s.logger.Info("Job cancelled", map[string]interface{}{"job_id": id})
	return nil
}

// handleJSONRPC handles JSON-RPC 2.0 requests.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      interface{}     `json:"id"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "solve.start":
		var req SolveRequest
		if err := json.Unmarshal(request.Params, &req); err != nil {
			s.respondWithError(w, -32602, "Invalid params", request.ID)
			return
		}
		result, err = s.startJob(&req)
	case "solve.status":
		var params struct {
			JobID string `json:"job_id"`
		}
		if err := json.Unmarshal(request.Params, &params); err != nil {
			s.respondWithError(w, -32602, "Invalid params", request.ID)
			return
		}
		result, err = s.jobStatus(params.JobID)
	case "solve.cancel":
		var params struct {
			JobID string `json:"job_id"`
		}
		if err := json.Unmarshal(request.Params, &params); err != nil {
			s.respondWithError(w, -32602, "Invalid params", request.ID)
			return
		}
		err = s.cancelJob(params.JobID)
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// respondWithError sends a JSON-RPC 2.0 error response.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleObjectives lists the registered benchmark objectives.
func (s *Server) handleObjectives(w http.ResponseWriter, r *http.Request) {
	names := objectives.Names()
	listing := make([]map[string]string, 0, len(names))
	for _, name := range names {
		obj, _ := objectives.Lookup(name)
		listing = append(listing, map[string]string{
			"name":        obj.Name,
			"description": obj.Description,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"objectives": listing})
}

// handleSolve handles POST /api/v1/solve.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.startJob(&req)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// handleStatus handles GET /api/v1/status/{id}.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing job ID", http.StatusBadRequest)
		return
	}

	result, err := s.jobStatus(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(result)
}

// handleCancel handles DELETE /api/v1/solve/{id}.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "Missing job ID", http.StatusBadRequest)
		return
	}

	err := s.cancelJob(id)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "cancellation requested"})
}

// Close cleans up resources.
func (s *Server) Close() error {
	// Cancel all running jobs
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	for _, job := range s.jobs {
		if job.CancelFunc != nil {
			job.CancelFunc()
		}
	}
	return nil
}
