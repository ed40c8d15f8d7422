package main

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/snjsomnath/threejsEditor-sub001/internal/debuglog"
)

// runtimeLogger reports per-second frame statistics when
// FACADE_DEBUG_RUNTIME=1.
var runtimeLogger = debuglog.New("runtime")

// newLogger creates a new logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
