//go:build !ios && !android && (amd64 || arm64)

package spherecmp

import (
	"fmt"
	"strings"

	"github.com/obinnaokechukwu/spherecmp/avutil"
)

// LogLevel represents FFmpeg log levels.
type LogLevel int32

// Log level constants matching FFmpeg's AV_LOG_* values.
const (
	LogQuiet   LogLevel = LogLevel(avutil.LogQuiet)   // Print no output
	LogPanic   LogLevel = LogLevel(avutil.LogPanic)   // Something went really wrong, crash
	LogFatal   LogLevel = LogLevel(avutil.LogFatal)   // Something went wrong, exit now
	LogError   LogLevel = LogLevel(avutil.LogError)   // Something went wrong, recovery possible
	LogWarning LogLevel = LogLevel(avutil.LogWarning) // Something unexpected but recovery possible
	LogInfo    LogLevel = LogLevel(avutil.LogInfo)    // Standard information
	LogVerbose LogLevel = LogLevel(avutil.LogVerbose) // Detailed information
	LogDebug   LogLevel = LogLevel(avutil.LogDebug)   // Stuff for debugging
	LogTrace   LogLevel = LogLevel(avutil.LogTrace)   // Extremely verbose debugging
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch {
	case l <= LogQuiet:
		return "quiet"
	case l <= LogPanic:
		return "panic"
	case l <= LogFatal:
		return "fatal"
	case l <= LogError:
		return "error"
	case l <= LogWarning:
		return "warning"
	case l <= LogInfo:
		return "info"
	case l <= LogVerbose:
		return "verbose"
	case l <= LogDebug:
		return "debug"
	default:
		return "trace"
	}
}

// ParseLogLevel accepts the names used by ffmpeg's -loglevel option.
func ParseLogLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quiet":
		return LogQuiet, nil
	case "panic":
		return LogPanic, nil
	case "fatal":
		return LogFatal, nil
	case "error":
		return LogError, nil
	case "warning", "warn":
		return LogWarning, nil
	case "info":
		return LogInfo, nil
	case "verbose":
		return LogVerbose, nil
	case "debug":
		return LogDebug, nil
	case "trace":
		return LogTrace, nil
	}
	return 0, fmt.Errorf("spherecmp: unknown FFmpeg log level %q", name)
}

// SetLogLevel sets FFmpeg's own log level. Messages go to stderr through
// FFmpeg's default callback.
func SetLogLevel(level LogLevel) error {
	if err := Init(); err != nil {
		return err
	}
	return avutil.SetLogLevel(int32(level))
}
