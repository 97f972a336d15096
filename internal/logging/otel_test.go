package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/noop"
	"go.uber.org/zap/zapcore"
)

func TestNewCore_OTELOnly(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true

	core, err := newCore(cfg, noop.NewLoggerProvider(), zapcore.AddSync(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.NotNil(t, core)
}

func TestNewCore_OTELWithoutProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Stderr = false
	cfg.Output.OTEL = true

	_, err := newCore(cfg, nil, zapcore.AddSync(&bytes.Buffer{}))
	assert.ErrorContains(t, err, "at least one output")
}

func TestNewLogger_WithOTELProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = true

	var buf bytes.Buffer
	logger, err := newLogger(cfg, noop.NewLoggerProvider(), zapcore.AddSync(&buf))
	require.NoError(t, err)
	assert.True(t, logger.Enabled(zapcore.InfoLevel))
}
