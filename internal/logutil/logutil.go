package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace sits below slog.LevelDebug and is used for per-chunk records.
const LevelTrace = slog.LevelDebug - 4

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
}

// NewLogger returns a text logger writing to w. Records below level are
// dropped and source locations are shortened to the file base name.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	}))
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			if name, ok := levelNames[l]; ok {
				a.Value = slog.StringValue(name)
			}
		}
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			src.File = filepath.Base(src.File)
		}
	}
	return a
}

// Level maps the number of times --debug was given to a log level.
func Level(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelDebug
	}
	return LevelTrace
}

// Trace logs msg at LevelTrace on l, or on the default logger if l is nil.
// The record's source is the caller of Trace.
func Trace(l *slog.Logger, msg string, args ...any) {
	if l == nil {
		l = slog.Default()
	}
	ctx := context.Background()
	if !l.Enabled(ctx, LevelTrace) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) // skip Callers and Trace
	r := slog.NewRecord(time.Now(), LevelTrace, msg, pcs[0])
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}
