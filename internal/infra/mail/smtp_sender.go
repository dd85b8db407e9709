package mail

import (
	"context"
	"log/slog"
	"strings"

	"slynk/config"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// Sender hands a rendered message to a mail transport.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type smtpSender struct {
	client   *gomail.Client
	from     string
	fromName string
	logger   *slog.Logger
}

// NewSMTPSender builds a go-mail client from mail.smtp. A fresh connection is dialed per send.
func NewSMTPSender(cfg *config.MailConfig, logger *slog.Logger) (Sender, error) {
	if cfg.SMTP.Host == "" {
		return nil, errors.New("mail.smtp.host is required for smtp delivery")
	}
	if cfg.From == "" {
		return nil, errors.New("mail.from is required for smtp delivery")
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithTimeout(cfg.SMTP.Timeout),
		gomail.WithTLSPolicy(tlsPolicy(cfg.SMTP.TLS)),
	}
	if cfg.SMTP.UserName != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTP.UserName),
			gomail.WithPassword(cfg.SMTP.Password),
		)
	}

	client, err := gomail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create smtp client")
	}

	return &smtpSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}, nil
}

func tlsPolicy(mode string) gomail.TLSPolicy {
	switch strings.ToLower(mode) {
	case "none", "off":
		return gomail.NoTLS
	case "opportunistic":
		return gomail.TLSOpportunistic
	default:
		return gomail.TLSMandatory
	}
}

func (s *smtpSender) Send(ctx context.Context, msg *Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}

	s.logger.Info("[SMTP] Mail sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))

	return nil
}

func (s *smtpSender) buildMessage(msg *Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	var err error
	if s.fromName != "" {
		err = m.FromFormat(s.fromName, s.from)
	} else {
		err = m.From(s.from)
	}
	if err != nil {
		return nil, errors.Wrap(err, "invalid sender address")
	}
	if err := m.To(msg.To); err != nil {
		return nil, errors.Wrap(err, "invalid recipient address")
	}

	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	if msg.Text != "" {
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		if msg.HTML != "" {
			m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
		}
	} else {
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	}

	return m, nil
}
