package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewDevLogger(t *testing.T) {
	logger := NewDevLogger()
	require.NotNil(t, logger)
	assert.IsType(t, &ZapLogger{}, logger)
}

func TestNewProdLogger(t *testing.T) {
	logger := NewProdLogger()
	require.NotNil(t, logger)
	assert.IsType(t, &ZapLogger{}, logger)
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Named("quiet").With("k", "v").Errorw("dropped", "a", 1)
	})
}

func TestNewZapLogger(t *testing.T) {
	core, obs := observer.New(zap.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.Infow("adapted", "key", "value")
	require.Equal(t, 1, obs.Len())
	assert.Contains(t, obs.All()[0].Context, zap.String("key", "value"))
}

func TestZapLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l Logger)
		msg   string
		level zapcore.Level
	}{
		{"Debug", func(l Logger) { l.Debug("debug message") }, "debug message", zap.DebugLevel},
		{"Debugw", func(l Logger) { l.Debugw("debug message", "key", "value") }, "debug message", zap.DebugLevel},
		{"Debugf", func(l Logger) { l.Debugf("debug: %s %d", "test", 42) }, "debug: test 42", zap.DebugLevel},
		{"Info", func(l Logger) { l.Info("info message") }, "info message", zap.InfoLevel},
		{"Infow", func(l Logger) { l.Infow("info message", "key", "value") }, "info message", zap.InfoLevel},
		{"Infof", func(l Logger) { l.Infof("info: %s", "test") }, "info: test", zap.InfoLevel},
		{"Warn", func(l Logger) { l.Warn("warn message") }, "warn message", zap.WarnLevel},
		{"Warnw", func(l Logger) { l.Warnw("warn message", "key", "value") }, "warn message", zap.WarnLevel},
		{"Warnf", func(l Logger) { l.Warnf("warn: %d", 7) }, "warn: 7", zap.WarnLevel},
		{"Error", func(l Logger) { l.Error("error message") }, "error message", zap.ErrorLevel},
		{"Errorw", func(l Logger) { l.Errorw("error message", "key", "value") }, "error message", zap.ErrorLevel},
		{"Errorf", func(l Logger) { l.Errorf("error: %v", true) }, "error: true", zap.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, obs := observer.New(zap.DebugLevel)
			logger := &ZapLogger{z: zap.New(core).Sugar()}

			tt.log(logger)
			require.Equal(t, 1, obs.Len())
			assert.Equal(t, tt.msg, obs.All()[0].Message)
			assert.Equal(t, tt.level, obs.All()[0].Level)
		})
	}
}

func TestZapLoggerNamed(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := &ZapLogger{z: zap.New(core).Sugar()}

	named := logger.Named("test")
	require.NotNil(t, named)
	require.IsType(t, &ZapLogger{}, named)

	named.Info("test message")
	require.Equal(t, 1, obs.Len())
	assert.Equal(t, "test", obs.All()[0].LoggerName)
}

func TestZapLoggerWith(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := &ZapLogger{z: zap.New(core).Sugar()}

	withFields := logger.With("key", "value")
	require.NotNil(t, withFields)
	require.IsType(t, &ZapLogger{}, withFields)

	withFields.Info("test message")
	require.Equal(t, 1, obs.Len())
	entry := obs.All()[0]
	assert.Equal(t, "test message", entry.Message)
	assert.Contains(t, entry.Context, zap.String("key", "value"))
}
