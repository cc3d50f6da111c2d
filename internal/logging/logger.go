// Package logging builds the slog loggers used across spherecmp.
//
// Logs always go to stderr: stdout carries the frame report. Each
// component asks for a module logger, which tags every record with a
// "module" attribute:
//
//	logging.Initialize(logging.Config{Level: "debug", Format: "json"})
//	logger := logging.GetLogger("pipeline")
//	logger.Debug("filter graph configured", "filters", chain)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config represents logging configuration.
type Config struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

var (
	moduleLoggers            = make(map[string]*slog.Logger)
	globalConfig             = Config{Level: "warn", Format: "text"}
	globalLevelVar           = newLevelVar(slog.LevelWarn)
	output         io.Writer = os.Stderr
	mutex          sync.RWMutex
)

func newLevelVar(level slog.Level) *slog.LevelVar {
	v := &slog.LevelVar{}
	v.Set(level)
	return v
}

// Initialize applies config to the default logger and to every module
// logger created so far. Unknown levels fall back to warn.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	level, ok := ParseLevel(config.Level)
	if !ok {
		level = slog.LevelWarn
	}
	globalLevelVar.Set(level)

	for module := range moduleLoggers {
		moduleLoggers[module] = newModuleLogger(module)
	}
	slog.SetDefault(slog.New(createHandler(config.Format)))
}

// SetOutput redirects all loggers, mainly for tests. Existing module
// loggers are rebuilt.
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()

	output = w
	for module := range moduleLoggers {
		moduleLoggers[module] = newModuleLogger(module)
	}
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}
	logger := newModuleLogger(module)
	moduleLoggers[module] = logger
	return logger
}

// newModuleLogger must be called with mutex held.
func newModuleLogger(module string) *slog.Logger {
	return slog.New(createHandler(globalConfig.Format)).With("module", module)
}

func createHandler(format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: globalLevelVar}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(output, opts)
	}
	return slog.NewTextHandler(output, opts)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
