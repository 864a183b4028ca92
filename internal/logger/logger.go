// Package logger provides structured logging with zap.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new zap.Logger depending on the environment.
func New(env string) *zap.Logger {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		// Keep stdout clean for command output.
		cfg.OutputPaths = []string{"stderr"}
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		logger, err := cfg.Build()
		if err != nil {
			return zap.NewNop()
		}
		return logger
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// CronAdapter lets robfig/cron report through zap.
type CronAdapter struct {
	log *zap.SugaredLogger
}

func NewCronAdapter(log *zap.Logger) CronAdapter {
	return CronAdapter{log: log.Named("cron").Sugar()}
}

func (a CronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Debugw(msg, keysAndValues...)
}

func (a CronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.log.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
