package logging

import "log/slog"

// ParseLevel maps the configured logging.level value
// (trace|debug|info|warning|error|fatal) onto slog.Level, extending slog's
// four built-in levels with trace (below debug) and fatal (above error) the
// same way slog's own docs suggest for custom levels.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "fatal":
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}
