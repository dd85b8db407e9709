// Package context carries per-request values (request ID, scoped logger) across
// echo handlers, usecases and the mail queue.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is read from inbound requests and echoed on responses and queued jobs.
const HeaderXRequestID = "X-Request-Id"

const echoKeyRequestID = "request_id"

type requestIDKey struct{}

type loggerKey struct{}

// WithRequestScope stores both the request ID and a logger already tagged with it.
func WithRequestScope(ctx context.Context, requestID string, logger *slog.Logger) context.Context {
	return WithLogger(WithRequestID(ctx, requestID), logger)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestIDFromContext returns "" when no ID was attached.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// SetRequestID mirrors the ID into the echo context for handlers that only see echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoKeyRequestID, requestID)
}

func GetRequestID(c echo.Context) string {
	id, _ := c.Get(echoKeyRequestID).(string)

	return id
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns nil when the request carries no logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault is what services call: the request logger, else fallback.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}
