package mail

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// PushEnvelope is the body Pub/Sub push subscriptions POST to the worker.
// The local publisher produces the same shape so the worker cannot tell them apart.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// RequestID returns the originating request ID, if the publisher attached one.
func (e *PushEnvelope) RequestID() string {
	return e.Message.Attributes[attrRequestID]
}

// DecodeJob unwraps the base64 payload into a mail job.
func (e *PushEnvelope) DecodeJob() (*Message, error) {
	if e.Message.Data == "" {
		return nil, errors.New("push message has no data")
	}

	data, err := base64.StdEncoding.DecodeString(e.Message.Data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode push message data")
	}

	return DecodeMessage(data)
}

func newPushEnvelope(msg *Message, messageID, publishTime string, attributes map[string]string) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var env PushEnvelope
	env.Subscription = "projects/local/subscriptions/mail-sub"
	env.Message.Data = base64.StdEncoding.EncodeToString(payload)
	env.Message.MessageID = messageID
	env.Message.PublishTime = publishTime
	env.Message.Attributes = attributes

	body, err := json.Marshal(env)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return body, nil
}
