package mail

import (
	"context"
	"log/slog"
	"time"

	"slynk/config"
	"slynk/internal/domain/constants"
	"slynk/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	_ "gocloud.dev/pubsub/gcppubsub"
)

// directMailer renders and sends inside the request.
type directMailer struct {
	renderer *Renderer
	sender   Sender
}

// NewDirectMailer delivers through sender synchronously.
func NewDirectMailer(renderer *Renderer, sender Sender) service.Mailer {
	return &directMailer{renderer: renderer, sender: sender}
}

func (m *directMailer) SendOTP(ctx context.Context, otp *service.OTPMail) error {
	msg, err := m.renderer.RenderOTP(otp)
	if err != nil {
		return err
	}

	return m.sender.Send(ctx, msg)
}

// queueMailer renders inside the request and leaves delivery to the mail worker.
type queueMailer struct {
	renderer  *Renderer
	publisher Publisher
	timeout   time.Duration
}

// NewQueueMailer enqueues rendered messages on publisher. A zero timeout means no extra deadline.
func NewQueueMailer(renderer *Renderer, publisher Publisher, timeout time.Duration) service.Mailer {
	return &queueMailer{renderer: renderer, publisher: publisher, timeout: timeout}
}

func (m *queueMailer) SendOTP(ctx context.Context, otp *service.OTPMail) error {
	msg, err := m.renderer.RenderOTP(otp)
	if err != nil {
		return err
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	return m.publisher.Publish(ctx, msg)
}

// noopMailer drops every message. Only meant for local development.
type noopMailer struct {
	logger *slog.Logger
}

func (m *noopMailer) SendOTP(_ context.Context, otp *service.OTPMail) error {
	m.logger.Warn("[NoopMailer] Mail delivery disabled, dropping OTP email", slog.String("to", otp.To))

	return nil
}

// MailerParams holds dependencies for the Mailer, injected by Fx.
type MailerParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMailer picks the delivery mode from mail.delivery.
func NewMailer(params MailerParams) (service.Mailer, error) {
	cfg := params.Config.Mail
	logger := params.Logger

	if cfg == nil || cfg.Delivery == "" || cfg.Delivery == constants.MailDeliveryNoop {
		if params.Config.IsProduction() {
			return nil, errors.New("mail delivery must be configured in production")
		}
		logger.Warn("Mail delivery not configured, using no-op mailer")

		return &noopMailer{logger: logger}, nil
	}

	renderer, err := NewRenderer(cfg.AppName)
	if err != nil {
		return nil, err
	}

	switch cfg.Delivery {
	case constants.MailDeliverySMTP:
		sender, err := NewSMTPSender(cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using direct SMTP mail delivery",
			slog.String("host", cfg.SMTP.Host),
			slog.Int("port", cfg.SMTP.Port),
		)

		return NewDirectMailer(renderer, sender), nil

	case constants.MailDeliveryQueue:
		publisher, err := newQueuePublisher(params.Ctx, &cfg.Queue, logger)
		if err != nil {
			return nil, err
		}

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info("Closing mail queue publisher")

				return publisher.Close(ctx)
			},
		})

		return NewQueueMailer(renderer, publisher, cfg.Queue.PublishTimeout), nil

	default:
		return nil, errors.Errorf("unknown mail delivery: %s", cfg.Delivery)
	}
}

func newQueuePublisher(ctx context.Context, cfg *config.MailQueueConfig, logger *slog.Logger) (Publisher, error) {
	switch cfg.Provider {
	case constants.MailQueueProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("mail.queue.localEndpoint is required for local provider")
		}
		logger.Info("Using local HTTP mail queue", slog.String("endpoint", cfg.LocalEndpoint))

		return NewLocalHTTPPublisher(cfg.LocalEndpoint, cfg.PublishTimeout, logger), nil

	case constants.MailQueueProviderGoogle:
		if cfg.TopicURL == "" {
			return nil, errors.New("mail.queue.topicUrl is required for google provider")
		}

		return OpenTopicPublisher(ctx, cfg.TopicURL, logger)

	default:
		return nil, errors.Errorf("unknown mail queue provider: %s", cfg.Provider)
	}
}

// Module provides the mail FX module.
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMailer),
)
