// Package logging owns the process-wide zap logger used by the CLI. Library
// packages never reach for the global directly; they accept a
// *zap.SugaredLogger through their options and default to a no-op logger.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names shared by every component.
const (
	FieldComponent   = "component"
	FieldTrigger     = "trigger"
	FieldExpansionID = "expansion_id"
	FieldPath        = "path"
	FieldCount       = "count"
	FieldVersion     = "version"
	FieldError       = "error"
	FieldDurationMS  = "duration_ms"
	FieldCommand     = "command"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// Config selects the encoder and level.
type Config struct {
	Level string
	JSON  bool
}

// Initialize replaces the global logger. Console output goes to stderr so it
// never mixes with expansion text written to stdout.
func Initialize(cfg Config) error {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	var zl *zap.Logger
	if cfg.JSON {
		zc := zap.NewProductionConfig()
		zc.Level = level
		zc.OutputPaths = []string{"stderr"}
		built, err := zc.Build()
		if err != nil {
			return err
		}
		zl = built
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zl = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	mu.Lock()
	logger = zl.Sugar()
	mu.Unlock()
	return nil
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns a named child of the global logger.
//
//	w := watcher.New(path, reload, watcher.WithLogger(logging.Component("watcher")))
func Component(name string) *zap.SugaredLogger {
	return Logger().Named(name)
}

// Sync flushes buffered entries. Errors from syncing stderr are ignored.
func Sync() {
	_ = Logger().Sync()
}

// VerbosityLevel maps a -v count onto a level name, never lowering an
// explicitly configured level.
func VerbosityLevel(configured string, verbosity int) string {
	if verbosity <= 0 {
		return configured
	}
	return "debug"
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
