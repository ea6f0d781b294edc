package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// TwilioMessenger sends WhatsApp messages through the Twilio Messaging API.
// Templates map to Twilio content SIDs with numbered variables.
type TwilioMessenger struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioMessenger(cfg TwilioConfig) *TwilioMessenger {
	return &TwilioMessenger{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from: whatsappAddress(cfg.WhatsAppNumber),
	}
}

func (*TwilioMessenger) Name() string { return "twilio" }

func whatsappAddress(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:+" + digits(phone)
}

func (t *TwilioMessenger) params(msg Message) (*twilioApi.CreateMessageParams, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(whatsappAddress(msg.To))
	params.SetFrom(t.from)

	if msg.Template == "" {
		params.SetBody(msg.Text)
		return params, nil
	}
	params.SetContentSid(msg.Template)
	if len(msg.Params) > 0 {
		vars := make(map[string]string, len(msg.Params))
		for i, p := range msg.Params {
			vars[strconv.Itoa(i+1)] = p
		}
		b, err := json.Marshal(vars)
		if err != nil {
			return nil, err
		}
		params.SetContentVariables(string(b))
	}
	return params, nil
}

// Send ignores ctx; the Twilio client has no per-request context.
func (t *TwilioMessenger) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}
	params, err := t.params(msg)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMessagingFailed, err)
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
