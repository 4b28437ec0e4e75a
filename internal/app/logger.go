package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. JSON output for log collectors, text
// for local runs; every record carries the service name so the API and
// worker binaries are distinguishable in shared sinks.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var h slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With("service", "stayloft")
}
