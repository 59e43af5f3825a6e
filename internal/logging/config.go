package logging

import (
	"io"
	"os"
	"strings"
)

// Config selects the verbosity and destination of the service logger. The
// server populates it from the environment; the CLI populates it from flags.
type Config struct {
	// Level is the minimum severity emitted: debug, info, warn, error or
	// fatal. Matching is case-insensitive and unknown values fall back to
	// info.
	Level string
	// Format is carried for configuration compatibility; entries are always
	// emitted as JSON lines.
	Format string
	// Output is stdout, stderr or a file path. Empty means stderr, so solver
	// results on stdout stay separate from logs.
	Output string
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// NewLogger builds a Logger from the configuration.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output, err := getOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	return New(parseLevel(cfg.Level), output), nil
}

// parseLevel maps a level name onto a LogLevel, defaulting to info.
func parseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "WARN":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	case "FATAL":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// getOutput resolves an output destination to a writer. Anything that is not
// stdout or stderr is opened as an append-only file.
func getOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout":
		return os.Stdout, nil
	case "stderr", "":
		return os.Stderr, nil
	default:
		file, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		return file, nil
	}
}
