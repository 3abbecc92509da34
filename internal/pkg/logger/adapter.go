package logger

import "portfolio_tracker/internal/app/port"

// slogAdapter implements port.Logger on top of the package-level functions,
// optionally prefixing every record with fixed attributes.
type slogAdapter struct {
	attrs []any
}

// NewSlogAdapter creates a port.Logger backed by the global slog logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// With returns a logger that adds args to every record.
func With(l port.Logger, args ...any) port.Logger {
	if a, ok := l.(*slogAdapter); ok {
		merged := make([]any, 0, len(a.attrs)+len(args))
		merged = append(merged, a.attrs...)
		merged = append(merged, args...)
		return &slogAdapter{attrs: merged}
	}
	return l
}

func (a *slogAdapter) merge(args []any) []any {
	if len(a.attrs) == 0 {
		return args
	}
	return append(append(make([]any, 0, len(a.attrs)+len(args)), a.attrs...), args...)
}

// Info logs an informational message.
func (a *slogAdapter) Info(msg string, args ...any) {
	Info(msg, a.merge(args)...)
}

// Debug logs a debug message.
func (a *slogAdapter) Debug(msg string, args ...any) {
	Debug(msg, a.merge(args)...)
}

// Warn logs a warning.
func (a *slogAdapter) Warn(msg string, args ...any) {
	Warn(msg, a.merge(args)...)
}

// Error logs an error.
func (a *slogAdapter) Error(msg string, args ...any) {
	Error(msg, a.merge(args)...)
}
