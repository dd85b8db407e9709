// Package handler contains the mail worker's push endpoint.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"slynk/config"
	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/domain/constants"
	"slynk/internal/infra/mail"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// TokenVerifier checks the OIDC token Pub/Sub attaches to authenticated push requests.
type TokenVerifier func(req *http.Request) error

// PushHandler delivers queued mail jobs.
type PushHandler struct {
	verifyPushAuth bool
	verify         TokenVerifier
	logger         *slog.Logger
	sender         mail.Sender
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
	Sender mail.Sender
}

// NewPushHandler verifies push tokens only for the Google provider outside develop.
func NewPushHandler(params PushHandlerParams) *PushHandler {
	verifyPushAuth := params.Config.Mail != nil &&
		params.Config.Mail.Queue.Provider == constants.MailQueueProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		verify:         verifyPubSubToken,
		logger:         params.Logger,
		sender:         params.Sender,
	}
}

// WithVerifier replaces the push token check.
func (h *PushHandler) WithVerifier(verify TokenVerifier) *PushHandler {
	h.verifyPushAuth = true
	h.verify = verify

	return h
}

// HandlePush answers 503 when the job should be redelivered and 200 when it must not be.
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verify(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var envelope mail.PushEnvelope
	if err := c.Bind(&envelope); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	job, err := envelope.DecodeJob()
	if err != nil {
		h.logger.Error("[Worker] Failed to decode mail job",
			slog.String("message_id", envelope.Message.MessageID),
			slog.Any("error", err),
		)

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := extractRequestID(ctx, &envelope)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestScope(ctx, requestID, reqLogger)

	reqLogger.Info("[Worker] Delivering mail",
		slog.String("message_id", envelope.Message.MessageID),
		slog.String("to", job.To),
	)

	if err := h.deliver(ctx, job); err != nil {
		reqLogger.Error("[Worker] Failed to deliver mail",
			slog.String("message_id", envelope.Message.MessageID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Mail delivered", slog.String("message_id", envelope.Message.MessageID))

	return c.NoContent(http.StatusOK)
}

// deliver treats every SMTP failure as transient. Malformed jobs were rejected earlier.
func (h *PushHandler) deliver(ctx context.Context, job *mail.Message) error {
	if err := h.sender.Send(ctx, job); err != nil {
		return newRetryableError(err)
	}

	return nil
}

// extractRequestID prefers the publisher's attribute, then the X-Request-Id header.
func extractRequestID(ctx context.Context, envelope *mail.PushEnvelope) string {
	if requestID := envelope.RequestID(); requestID != "" {
		return requestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is this endpoint's URL.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := idtoken.Validate(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
