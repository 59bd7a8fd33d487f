package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Text output goes to stdout;
// handlers attach request_id/user_id attrs per call site.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
