// Package logging builds the structured loggers used by the service.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New creates a configured application logger writing to w.
// Format is "text" or "json". It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, format string, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel maps debug, info, warn (or warning) and error to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Leveled adapts a slog.Logger to printf style leveled logging.
type Leveled struct {
	Logger *slog.Logger
}

// Debugf logs at debug level.
func (l Leveled) Debugf(format string, args ...any) { l.Logger.Debug(fmt.Sprintf(format, args...)) }

// Infof logs at info level.
func (l Leveled) Infof(format string, args ...any) { l.Logger.Info(fmt.Sprintf(format, args...)) }

// Warnf logs at warn level.
func (l Leveled) Warnf(format string, args ...any) { l.Logger.Warn(fmt.Sprintf(format, args...)) }

// Errorf logs at error level.
func (l Leveled) Errorf(format string, args ...any) { l.Logger.Error(fmt.Sprintf(format, args...)) }
