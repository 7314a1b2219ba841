package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger emits the records whose shape is shared across
// packages, so dashboards can rely on the same keys.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// RequestStarted logs an incoming HTTP request.
func (sl *StructuredLogger) RequestStarted(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	sl.logger.DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// RequestCompleted logs the response at a level derived from its status:
// warn for 4xx, error for 5xx.
func (sl *StructuredLogger) RequestCompleted(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	sl.logger.Log(ctx, levelForStatus(statusCode), "HTTP request completed", fields.ToSlice()...)
}

func levelForStatus(code int) slog.Level {
	switch {
	case code >= 500:
		return slog.LevelError
	case code >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// TransactionRecorded logs a committed transaction mutation.
func (sl *StructuredLogger) TransactionRecorded(ctx context.Context, op string, id int64, amount, category, txType string) {
	fields := NewFields().
		WithTransaction(id, amount, category, txType).
		WithOperation(op).
		WithComponent(ComponentLedger)
	sl.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// Failure logs err for component and operation on top of fields.
func (sl *StructuredLogger) Failure(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
