package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one slog record per request.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&LogFormatter{Logger: logger})
}

// LogFormatter adapts chi's request logging to slog.
type LogFormatter struct {
	Logger *slog.Logger
}

// NewLogEntry creates a new LogEntry for the request.
func (l *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{}

	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}
	attrs = append(attrs, slog.String("from", r.RemoteAddr))

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	msg := fmt.Sprintf("%s %s://%s%s %s", r.Method, scheme, r.Host, r.RequestURI, r.Proto)

	return &logEntry{logger: l.Logger, attrs: attrs, msg: msg}
}

type logEntry struct {
	logger *slog.Logger
	attrs  []any
	msg    string
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.String("elapsed", elapsed.String()),
	)

	switch {
	case status >= 500:
		l.logger.Error(l.msg, attrs...)
	case status >= 400:
		l.logger.Warn(l.msg, attrs...)
	default:
		l.logger.Debug(l.msg, attrs...)
	}
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	l.logger.Error("http handler panic", "panic", v, "stack", string(stack))
}
