package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Development(t *testing.T) {
	log := New("development")
	assert.NotNil(t, log)

	core := log.Core()
	assert.True(t, core.Enabled(zapcore.DebugLevel), "development logger should allow debug level")
}

func TestNewLogger_Production(t *testing.T) {
	log := New("production")
	assert.NotNil(t, log)

	core := log.Core()
	assert.False(t, core.Enabled(zapcore.InfoLevel), "production logger should only report warnings and above")
	assert.True(t, core.Enabled(zapcore.WarnLevel))
}

func TestCronAdapterRoutesErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewCronAdapter(zap.New(core))

	adapter.Info("schedule", "entry", 1)
	adapter.Error(errors.New("boom"), "job failed", "entry", 1)

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "job failed", entries[1].Message)
		assert.Equal(t, "cron", entries[1].LoggerName)
	}
}
