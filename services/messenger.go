package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrMessagingFailed wraps every provider failure.
var ErrMessagingFailed = errors.New("messaging provider failed")

// Message is one outbound WhatsApp message. When Template is set the provider
// sends that approved template with Params as body parameters and ignores
// Text.
type Message struct {
	To       string
	Text     string
	Template string
	Params   []string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient phone is required")
	}
	if m.Template == "" && strings.TrimSpace(m.Text) == "" {
		return errors.New("message text or template is required")
	}
	return nil
}

// Messenger delivers messages and returns the provider message id.
type Messenger interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

// LogMessenger writes messages to the log instead of delivering them.
type LogMessenger struct {
	Log logrus.FieldLogger
}

func (LogMessenger) Name() string { return "log" }

func (m LogMessenger) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	m.Log.WithFields(logrus.Fields{
		"to":         msg.To,
		"template":   msg.Template,
		"message_id": id,
	}).Info(msg.Text)
	return id, nil
}

// digits strips everything but digits from a phone number.
func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
