// Package logging configures zerolog for the collector binaries and hands
// out per-component child loggers. Both CLIs log JSON to stderr; --log-pretty
// switches to console output for interactive runs.
//
// Level usage across the module: debug for per-collection pagination detail
// (pages, items, duration), info for stage progress and fetch counts, warn
// for rate-limit waits that will be retried, error for failed requests and
// undecodable bodies. Common context fields: url, status, retry_after,
// organization, workspace, count, duration.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component names attached to every log line via NewLogger.
const (
	ComponentClient    = "tfc-client"
	ComponentPager     = "pager"
	ComponentCollector = "collector"
)

// Config holds logger configuration for a collector run.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, or error.
	// Unknown values fall back to info so a mistyped flag never silences
	// a run.
	Level string

	// Pretty enables human-readable console output instead of JSON.
	Pretty bool

	// Output receives the log stream. Defaults to os.Stderr when nil.
	Output io.Writer
}

// Setup configures the global zerolog logger and returns it. Every component
// logger created afterwards inherits the level and output chosen here.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level flag value to a zerolog level. Matching is
// case-insensitive and ignores surrounding whitespace; unknown values map
// to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger tagged with a component
// name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
