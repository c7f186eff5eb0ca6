package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/driftbyte/loiter-cli/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func newBufferLogger(t *testing.T, cfg config.LoggerConfig) *syncBuffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(cfg, zapcore.Lock(zapcore.AddSync(buf)))
	return buf
}

func TestInitializeWritesToConsole(t *testing.T) {
	buf := newBufferLogger(t, config.LoggerConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "loiter-test",
	})

	GetLogger().Info("session starting")
	out := buf.String()
	assert.Contains(t, out, "session starting")
	assert.Contains(t, out, "loiter-test")
}

func TestInitializeRespectsLevel(t *testing.T) {
	buf := newBufferLogger(t, config.LoggerConfig{
		Level:       "warn",
		Format:      "json",
		ServiceName: "loiter-test",
	})

	logger := GetLogger()
	logger.Info("too quiet to appear")
	logger.Warn("loud enough")

	out := buf.String()
	assert.NotContains(t, out, "too quiet to appear")
	assert.Contains(t, out, "loud enough")
}

func TestInitializeFallsBackOnBadLevel(t *testing.T) {
	buf := newBufferLogger(t, config.LoggerConfig{
		Level:       "shouting",
		Format:      "json",
		ServiceName: "loiter-test",
	})

	GetLogger().Info("info passes at the fallback level")
	assert.Contains(t, buf.String(), "info passes at the fallback level")
}

func TestInitializeRunsOnce(t *testing.T) {
	buf := newBufferLogger(t, config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "first",
	})

	// A second initialization attempt must not replace the logger.
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"},
		zapcore.Lock(zapcore.AddSync(&syncBuffer{})))

	GetLogger().Info("still the first logger")
	require.Contains(t, buf.String(), "still the first logger")
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	assert.NotNil(t, GetLogger())
}
