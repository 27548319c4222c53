package logging

import (
	"log/slog"
)

// Logger is the minimal level-based logging interface accepted by the feed
// fetchers, so tests can plug in a recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter adapts an slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, tagging every record with component when it
// is not empty. If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger, component string) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	if component != "" {
		logger = WithComponent(logger, component)
	}
	return &SlogAdapter{logger: logger}
}

// Discard returns an adapter that drops every record.
func Discard() *SlogAdapter {
	return &SlogAdapter{logger: slog.New(slog.DiscardHandler)}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// With returns an adapter that adds args to every record.
func (a *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{logger: a.logger.With(args...)}
}

// Logger returns the underlying slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
