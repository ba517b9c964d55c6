package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWrapNilReturnsNoOp(t *testing.T) {
	l := Wrap(nil)
	if l == nil {
		t.Fatal("Wrap(nil) returned nil Logger")
	}
	// Must not panic even though the underlying *slog.Logger was nil.
	l.Info("hello")
}

func TestWrapForwardsToSlog(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := Wrap(slogger)

	l.Info("connecting", "host", "ftp.example.com")

	out := buf.String()
	if !strings.Contains(out, "connecting") || !strings.Contains(out, "ftp.example.com") {
		t.Errorf("log output = %q, missing expected fields", out)
	}
}

func TestWithReturnsScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := Wrap(slogger).With("component", "pool")

	l.Debug("acquired session")

	out := buf.String()
	if !strings.Contains(out, "component=pool") {
		t.Errorf("log output = %q, missing scoped field", out)
	}
}

func TestNoOpDiscardsEverything(t *testing.T) {
	l := NoOp()
	// Must not panic; nothing to assert on output since it is a no-op.
	l.Debug("x")
	l.Info("y")
	l.Warn("z")
	l.Error("w")
}

func TestNewFallsBackOnInvalidLevel(t *testing.T) {
	l := New("not-a-real-level")
	if l == nil {
		t.Fatal("New returned nil Logger")
	}
	l.Info("constructed despite invalid level")
}
