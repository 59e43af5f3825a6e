package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Solver struct {
		// MaxSteps is the default iteration budget for runs that do not set
		// their own.
		MaxSteps int `env:"SOLVER_MAX_STEPS" envDefault:"256"`
		// GradTol and StepTol are the default absolute tolerances on the
		// gradient norm and step size.
		GradTol float64 `env:"SOLVER_GRAD_TOL" envDefault:"1e-8"`
		StepTol float64 `env:"SOLVER_STEP_TOL" envDefault:"1e-8"`
		// MaxBacktracks bounds line-search trials per step.
		MaxBacktracks int `env:"SOLVER_MAX_BACKTRACKS" envDefault:"50"`
		// JobTimeout bounds a single background solve.
		JobTimeout time.Duration `env:"SOLVER_JOB_TIMEOUT" envDefault:"5m"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
