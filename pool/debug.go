//go:build debug

package pool

import (
	"log/slog"
	"os"
)

// defaultLogger writes debug records to stderr when built with -tags debug.
func defaultLogger() *slog.Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	return slog.New(h).With("component", "threadpool")
}
