package mail

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	deliverycontext "slynk/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// localHTTPPublisher posts jobs straight to the mail worker's push endpoint,
// mimicking a Pub/Sub push subscription for development.
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocalHTTPPublisher creates a publisher for the local worker at endpoint.
func NewLocalHTTPPublisher(endpoint string, timeout time.Duration, logger *slog.Logger) Publisher {
	return &localHTTPPublisher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *localHTTPPublisher) Publish(ctx context.Context, msg *Message) error {
	requestID := deliverycontext.GetRequestIDFromContext(ctx)

	attributes := map[string]string{}
	if requestID != "" {
		attributes[attrRequestID] = requestID
	}

	body, err := newPushEnvelope(msg, uuid.NewString(), time.Now().UTC().Format(time.RFC3339), attributes)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("mail worker returned non-success status: %d", resp.StatusCode)
	}

	p.logger.Info("[LocalMailQueue] Job delivered to worker", slog.String("endpoint", p.endpoint))

	return nil
}

func (p *localHTTPPublisher) Close(context.Context) error {
	return nil
}
