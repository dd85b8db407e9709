package mail

import (
	"context"
	"encoding/json"
	"log/slog"

	deliverycontext "slynk/internal/delivery/context"

	"github.com/pkg/errors"
	"gocloud.dev/pubsub"
)

// Publisher enqueues a rendered message for the mail worker.
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
	Close(ctx context.Context) error
}

const attrRequestID = "request_id"

// topicPublisher sends jobs to any gocloud.dev pubsub topic (gcppubsub:// in production, mem:// in tests).
type topicPublisher struct {
	topic  *pubsub.Topic
	logger *slog.Logger
}

// OpenTopicPublisher opens the topic named by url.
func OpenTopicPublisher(ctx context.Context, url string, logger *slog.Logger) (Publisher, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open mail topic %s", url)
	}

	logger.Info("Mail topic publisher initialized", slog.String("topic_url", url))

	return NewTopicPublisher(topic, logger), nil
}

// NewTopicPublisher wraps an already opened topic.
func NewTopicPublisher(topic *pubsub.Topic, logger *slog.Logger) Publisher {
	return &topicPublisher{topic: topic, logger: logger}
}

func (p *topicPublisher) Publish(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	metadata := map[string]string{}
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		metadata[attrRequestID] = requestID
	}

	if err := p.topic.Send(ctx, &pubsub.Message{Body: data, Metadata: metadata}); err != nil {
		return errors.Wrap(err, "failed to publish mail job")
	}

	p.logger.Info("[MailQueue] Job published", slog.String("to", msg.To))

	return nil
}

func (p *topicPublisher) Close(ctx context.Context) error {
	return errors.WithStack(p.topic.Shutdown(ctx))
}
