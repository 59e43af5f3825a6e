package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestZapLoggerForwardsEntries(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf))

	zl.Info("solve finished",
		zap.String("method", "bfgs"),
		zap.Int64("iterations", 12),
		zap.Bool("converged", true),
	)

	entry := logLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "solve finished", entry["message"])
	assert.Equal(t, "bfgs", entry["method"])
	assert.Equal(t, float64(12), entry["iterations"])
	assert.Equal(t, true, entry["converged"])
}

func TestZapLoggerWithAccumulatesFields(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(InfoLevel, &buf)).With(zap.String("job_id", "solve_1"))

	zl.Warn("line search exhausted")

	entry := logLine(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "solve_1", entry["job_id"])
}

func TestZapAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(WarnLevel, &buf))

	zl.Debug("hidden")
	zl.Info("hidden")
	assert.Zero(t, buf.Len())

	zl.Error("shown")
	assert.NotZero(t, buf.Len())
}

func TestZapLevelMapping(t *testing.T) {
	assert.Equal(t, DebugLevel, zapLevel(zapcore.DebugLevel))
	assert.Equal(t, InfoLevel, zapLevel(zapcore.InfoLevel))
	assert.Equal(t, WarnLevel, zapLevel(zapcore.WarnLevel))
	assert.Equal(t, ErrorLevel, zapLevel(zapcore.ErrorLevel))
	assert.Equal(t, ErrorLevel, zapLevel(zapcore.PanicLevel))
}

func TestZapAdapterEnabled(t *testing.T) {
	core := NewZapAdapter(New(WarnLevel, &bytes.Buffer{}))
	require.False(t, core.Enabled(zapcore.InfoLevel))
	require.True(t, core.Enabled(zapcore.ErrorLevel))
}
