package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"slynk/config"
	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/delivery/http/response"
	domainerrors "slynk/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	codeHTTPError     = "HTTP_ERROR"
	codeInternalError = "INTERNAL_ERROR"
)

// ErrorMiddleware turns every handler error into {error, code}.
type ErrorMiddleware struct {
	logger    *slog.Logger
	withDebug bool
}

// NewErrorMiddleware exposes the error chain in a debug field outside production.
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger:    logger,
		withDebug: !cfg.IsProduction(),
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, code, message := m.classify(err)

	logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
	attrs := []any{
		slog.Int("status", status),
		slog.String("code", code),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
		slog.String("error", fmt.Sprintf("%+v", err)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", attrs...)
	} else {
		logger.Info("Request rejected", attrs...)
	}

	var debug *response.DebugInfo
	if m.withDebug {
		debug = debugInfo(err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)

		return
	}
	_ = response.Error(c, status, code, message, debug)
}

func (m *ErrorMiddleware) classify(err error) (status int, code, message string) {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message()
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message = http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		}

		return httpErr.Code, codeHTTPError, message
	}

	return http.StatusInternalServerError, codeInternalError, domainerrors.ErrInternalError.Message()
}

func debugInfo(err error) *response.DebugInfo {
	name := fmt.Sprintf("%T", errors.Cause(err))

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		name = appErr.ErrorCode()
		if details := appErr.Details(); details != "" {
			name = name + ": " + details
		}
	}

	return &response.DebugInfo{
		Name:  name,
		Stack: fmt.Sprintf("%+v", err),
	}
}
