package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/marcus-crane/depotfinder/config"
)

// setupLogger writes plain text to LOG_FILE when one is configured and
// coloured output to stderr otherwise.
func setupLogger(cfg config.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := cfg.GetLogLevel()

	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
		return slog.New(handler), f.Close, nil
	}

	handler := tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
	return slog.New(handler), func() error { return nil }, nil
}
