// Package logger builds the process-wide zap logger.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoder.
type Config struct {
	Level string
	Dev   bool
}

// ParseLevel maps a level name to a zap level. Unknown names fall back to info.
func ParseLevel(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New returns a JSON logger on stdout, or the console development logger when Dev is set.
func New(cfg Config) (*zap.Logger, error) {
	lvl := ParseLevel(cfg.Level)
	if cfg.Dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Install builds the logger and makes it the zap global. The returned func
// restores the previous global and flushes.
func Install(cfg Config) (*zap.Logger, func(), error) {
	l, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return l, func() {
		_ = l.Sync()
		restore()
	}, nil
}
