// Package common provides logging utilities for the application
package common

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// root is the process-wide logger all named loggers derive from. Named
// loggers share the root's level store, so InitLoggers reconfigures
// loggers that were created before it ran.
var root = hclog.New(&hclog.LoggerOptions{
	Name:  "tkv",
	Level: hclog.Info,
})

// GetLogger returns a named logger for the given subsystem
// (e.g. "rpc", "transport", "storage").
func GetLogger(name string) hclog.Logger {
	return root.Named(name)
}

// InitLoggers sets the process-wide log level.
func InitLoggers(level string) {
	root.SetLevel(parseLogLevel(level))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// parseLogLevel converts a string level to hclog.Level. An empty level
// keeps the default.
func parseLogLevel(level string) hclog.Level {
	switch strings.ToLower(level) {
	case "":
		return hclog.Info
	case "trace":
		return hclog.Trace
	case "debug":
		return hclog.Debug
	case "info":
		return hclog.Info
	case "warning", "warn":
		return hclog.Warn
	case "error":
		return hclog.Error
	default:
		panic(fmt.Sprintf("invalid log level: %s. must be one of trace, debug, info, warn, error", level))
	}
}
