// Package logging provides the structured logging capability shared by
// every component (Session, Pool, Scheduler, façade): a small interface
// passed explicitly at construction rather than resolved from a global
// logger or package-level singleton.
//
// The capability is backed by go.uber.org/zap, bridged to the standard
// library's *slog.Logger via zap/exp/zapslog so that ftp.Session's public
// WithLogger(*slog.Logger) option continues to accept a stdlib logger
// unchanged while every component underneath is powered by zap's
// structured, leveled, sampling-capable core.
package logging

import (
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Logger is the capability interface passed to Pool, Scheduler and the
// client façade at construction. It mirrors *slog.Logger's method set so
// existing call sites read naturally, but is satisfied by any structured
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// slogLogger adapts *slog.Logger to the Logger capability interface.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// Wrap adapts an existing *slog.Logger (e.g. one built by ftp.WithLogger)
// into the Logger capability.
func Wrap(l *slog.Logger) Logger {
	if l == nil {
		return NoOp()
	}
	return &slogLogger{l: l}
}

// New builds a zap-backed Logger at the given level ("debug", "info",
// "warn", "error"), writing JSON lines to os.Stderr. This is the default
// construction path for components that do not receive a caller-supplied
// *slog.Logger.
func New(level string) Logger {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		zl = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zl,
	)

	slogHandler := zapslog.NewHandler(core)
	return Wrap(slog.New(slogHandler))
}

// NoOp returns a Logger that discards everything, used as the zero-value
// default so components never need to nil-check their logger field.
func NoOp() Logger {
	return Wrap(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	})))
}
