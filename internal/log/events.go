package log

import (
	"context"
	"log/slog"
)

// EventLogger writes the application's recurring events with a fixed set
// of fields, so log queries stay stable across handlers.
type EventLogger struct {
	logger *Logger
}

func NewEventLogger(logger *Logger) *EventLogger {
	return &EventLogger{logger: logger}
}

// from prefers the request-scoped logger so events carry the request id.
func (e *EventLogger) from(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l.WithComponent(e.logger.component)
	}
	return e.logger
}

// Request logs a finished HTTP request. 4xx is a warning, 5xx an error.
func (e *EventLogger) Request(ctx context.Context, method, path, query string, status int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(method, path, query).
		WithHTTPResponse(status, durationMs).
		WithClientIP(clientIP)
	l := e.from(ctx)
	l.Log(ctx, level, "HTTP request completed", l.tagged(fields.ToSlice())...)
}

// TransactionWritten logs a create or update. The note is never logged.
func (e *EventLogger) TransactionWritten(ctx context.Context, op string, userID, id int64, kind, amount string, categoryID int64) {
	fields := NewFields().
		WithUser(userID).
		WithTransaction(id, kind, amount, categoryID).
		WithOperation(op)
	e.from(ctx).WithComponent(ComponentLedger).InfoContext(ctx, "Transaction "+op+"d", fields.ToSlice()...)
}

func (e *EventLogger) TransactionDeleted(ctx context.Context, userID, id int64) {
	fields := NewFields().WithUser(userID).WithOperation(OpDelete)
	fields[FieldTransactionID] = id
	e.from(ctx).WithComponent(ComponentLedger).InfoContext(ctx, "Transaction deleted", fields.ToSlice()...)
}

// Auth logs a login, logout or registration outcome. Failures are warnings.
func (e *EventLogger) Auth(ctx context.Context, op, username string, success bool, clientIP string) {
	fields := NewFields().WithOperation(op).WithClientIP(clientIP)
	fields[FieldUsername] = username
	fields[FieldSuccess] = success

	l := e.from(ctx).WithComponent(ComponentAuth)
	if success {
		l.InfoContext(ctx, "Auth event", fields.ToSlice()...)
		return
	}
	l.WarnContext(ctx, "Auth event failed", fields.ToSlice()...)
}

// Internal logs an unexpected failure behind a generic 500.
func (e *EventLogger) Internal(ctx context.Context, msg string, err error, path string) {
	fields := NewFields().WithError(err).WithErrorType(ErrorTypeInternal)
	fields[FieldPath] = path
	e.from(ctx).ErrorContext(ctx, msg, fields.ToSlice()...)
}
