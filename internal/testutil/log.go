package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything, for components
// that would otherwise log to slog.Default() during tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
