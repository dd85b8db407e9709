package context

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestScope(t *testing.T) {
	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil)).With(slog.String("request_id", "req-1"))
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := WithRequestScope(context.Background(), "req-1", scoped)

	assert.Equal(t, "req-1", GetRequestIDFromContext(ctx))
	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))

	GetLoggerOrDefault(ctx, fallback).Info("hello")
	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestEmptyContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := context.Background()

	assert.Empty(t, GetRequestIDFromContext(ctx))
	assert.Nil(t, GetLogger(ctx))
	assert.Same(t, fallback, GetLoggerOrDefault(ctx, fallback))
}

func TestEchoRequestID(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Empty(t, GetRequestID(c))

	SetRequestID(c, "req-2")
	assert.Equal(t, "req-2", GetRequestID(c))
}
