// Package mail renders verification emails and moves them out of the process,
// either straight to an SMTP relay or through a queue drained by the mail worker.
package mail

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Message is a fully rendered email. It is also the payload of a queued mail job.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

// Validate rejects jobs that cannot be delivered no matter how often they are retried.
func (m *Message) Validate() error {
	if m.To == "" {
		return errors.New("mail message has no recipient")
	}
	if m.Subject == "" {
		return errors.New("mail message has no subject")
	}
	if m.Text == "" && m.HTML == "" {
		return errors.New("mail message has no body")
	}

	return nil
}

// DecodeMessage parses a queued mail job.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errors.Wrap(err, "failed to decode mail job")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return &msg, nil
}
