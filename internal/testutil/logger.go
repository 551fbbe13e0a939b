package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything. Tests use it so
// handshake and routing logs don't drown assertion failures.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
