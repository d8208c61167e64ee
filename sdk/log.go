package sdk

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger returns the colored slog handler used by the cli and tests.
func NewLogger(verbose bool) *slog.Logger {
	return NewLoggerTo(os.Stdout, verbose)
}

// NewLoggerTo is NewLogger with an explicit writer.
func NewLoggerTo(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.Kitchen,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				t := a.Value.Time()
				a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
			}
			return a
		},
	}))
}
