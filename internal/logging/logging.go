// Package logging constructs this repository's *slog.Logger, matching
// the teacher's newLogger(verbose bool) convention
// (teacherref/telemetry/flow-ingest/cmd/server/main.go): a colorized tint
// handler by default, or a plain JSON handler when Options.JSON is set, as
// the teacher's indexer CLI offers. No terminal detection is done.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures logger construction.
type Options struct {
	Verbose bool
	// JSON forces the plain slog.JSONHandler instead of the colorized
	// tint handler, for non-tty/production use.
	JSON   bool
	Output io.Writer // defaults to os.Stdout
}

// New builds a *slog.Logger per Options.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(out, &tint.Options{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(formatRFC3339Millis(a.Value.Time().UTC()))
			}
			if s, ok := a.Value.Any().(string); ok && s == "" {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func formatRFC3339Millis(t time.Time) string {
	t = t.UTC()
	base := t.Format("2006-01-02T15:04:05")
	ms := t.Nanosecond() / 1_000_000
	return fmt.Sprintf("%s.%03dZ", base, ms)
}
