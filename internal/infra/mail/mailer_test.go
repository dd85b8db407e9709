package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slynk/config"
	deliverycontext "slynk/internal/delivery/context"
	"slynk/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"gocloud.dev/pubsub/mempubsub"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOTPMail() *service.OTPMail {
	return &service.OTPMail{To: "ada@example.com", Name: "Ada", Code: "123456", ValidFor: 15 * time.Minute}
}

type recordingSender struct {
	sent []*Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg *Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)

	return nil
}

func TestDirectMailer_SendOTP(t *testing.T) {
	sender := &recordingSender{}
	mailer := NewDirectMailer(newTestRenderer(t), sender)

	require.NoError(t, mailer.SendOTP(context.Background(), testOTPMail()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "123456")
}

func TestDirectMailer_PropagatesSendError(t *testing.T) {
	boom := errors.New("relay down")
	mailer := NewDirectMailer(newTestRenderer(t), &recordingSender{err: boom})

	err := mailer.SendOTP(context.Background(), testOTPMail())
	assert.ErrorIs(t, err, boom)
}

func TestQueueMailer_TopicPublisher(t *testing.T) {
	ctx := context.Background()
	topic := mempubsub.NewTopic()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	defer sub.Shutdown(ctx)

	publisher := NewTopicPublisher(topic, newDiscardLogger())
	defer publisher.Close(ctx)

	mailer := NewQueueMailer(newTestRenderer(t), publisher, time.Second)
	reqCtx := deliverycontext.WithRequestID(ctx, "req-1")
	require.NoError(t, mailer.SendOTP(reqCtx, testOTPMail()))

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	received, err := sub.Receive(recvCtx)
	require.NoError(t, err)
	received.Ack()

	assert.Equal(t, "req-1", received.Metadata[attrRequestID])

	job, err := DecodeMessage(received.Body)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", job.To)
	assert.Equal(t, "Slynk OTP Verification", job.Subject)
	assert.Contains(t, job.Text, "123456")
}

func TestQueueMailer_LocalHTTPPublisher(t *testing.T) {
	var envelope PushEnvelope
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(deliverycontext.HeaderXRequestID)
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	publisher := NewLocalHTTPPublisher(srv.URL, time.Second, newDiscardLogger())
	mailer := NewQueueMailer(newTestRenderer(t), publisher, 0)

	ctx := deliverycontext.WithRequestID(context.Background(), "req-2")
	require.NoError(t, mailer.SendOTP(ctx, testOTPMail()))

	assert.Equal(t, "req-2", gotRequestID)
	assert.Equal(t, "req-2", envelope.RequestID())
	assert.NotEmpty(t, envelope.Message.MessageID)

	job, err := envelope.DecodeJob()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", job.To)
}

func TestLocalHTTPPublisher_WorkerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher := NewLocalHTTPPublisher(srv.URL, time.Second, newDiscardLogger())
	err := publisher.Publish(context.Background(), &Message{To: "a@example.com", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNewMailer_Selection(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mail    *config.MailConfig
		wantErr bool
		wantTyp any
	}{
		{name: "unset falls back to noop", env: "develop", mail: nil, wantTyp: &noopMailer{}},
		{name: "noop refused in production", env: "production", mail: &config.MailConfig{Delivery: "noop"}, wantErr: true},
		{
			name:    "smtp",
			env:     "develop",
			mail:    &config.MailConfig{Delivery: "smtp", From: "no-reply@example.com", SMTP: config.SMTPConfig{Host: "localhost", Port: 2525, Timeout: time.Second}},
			wantTyp: &directMailer{},
		},
		{name: "smtp without host", env: "develop", mail: &config.MailConfig{Delivery: "smtp", From: "no-reply@example.com"}, wantErr: true},
		{
			name:    "local queue",
			env:     "develop",
			mail:    &config.MailConfig{Delivery: "queue", Queue: config.MailQueueConfig{Provider: "local", LocalEndpoint: "http://localhost:8081/push"}},
			wantTyp: &queueMailer{},
		},
		{name: "google queue without topic", env: "develop", mail: &config.MailConfig{Delivery: "queue", Queue: config.MailQueueConfig{Provider: "google"}}, wantErr: true},
		{name: "unknown provider", env: "develop", mail: &config.MailConfig{Delivery: "queue", Queue: config.MailQueueConfig{Provider: "kafka"}}, wantErr: true},
		{name: "unknown delivery", env: "develop", mail: &config.MailConfig{Delivery: "pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Mail: tt.mail}
			cfg.Env.Env = tt.env
			if cfg.Mail != nil && cfg.Mail.AppName == "" {
				cfg.Mail.AppName = "Slynk"
			}

			mailer, err := NewMailer(MailerParams{
				Lc:     fxtest.NewLifecycle(t),
				Ctx:    context.Background(),
				Config: cfg,
				Logger: newDiscardLogger(),
			})
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantTyp, mailer)
		})
	}
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	sender, err := NewSMTPSender(&config.MailConfig{
		From:     "no-reply@example.com",
		FromName: "Slynk",
		SMTP:     config.SMTPConfig{Host: "localhost", Port: 2525, Timeout: time.Second, TLS: "none"},
	}, newDiscardLogger())
	require.NoError(t, err)

	m, err := sender.(*smtpSender).buildMessage(&Message{
		To: "ada@example.com", Subject: "Slynk OTP Verification", Text: "code", HTML: "<p>code</p>",
	})
	require.NoError(t, err)

	recipients, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"<ada@example.com>"}, recipients)

	_, err = sender.(*smtpSender).buildMessage(&Message{To: "not an address", Subject: "s", Text: "t"})
	assert.Error(t, err)
}

func TestPushEnvelope_DecodeJob(t *testing.T) {
	body, err := newPushEnvelope(&Message{To: "a@example.com", Subject: "s", Text: "t"}, "id-1", "now", nil)
	require.NoError(t, err)

	var env PushEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	job, err := env.DecodeJob()
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", job.To)

	env.Message.Data = "%%%"
	_, err = env.DecodeJob()
	assert.Error(t, err)

	env.Message.Data = ""
	_, err = env.DecodeJob()
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`{"to":"a@example.com"}`))
	assert.Error(t, err)
}
