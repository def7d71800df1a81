package analytics

// Logger defines the interface for logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}
