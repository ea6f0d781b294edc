package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WhatsAppConfig holds the Cloud API credentials.
type WhatsAppConfig struct {
	APIURL        string
	PhoneNumberID string
	AccessToken   string
	Language      string
	Timeout       time.Duration
}

// WhatsAppMessenger sends through the WhatsApp Business Cloud API.
type WhatsAppMessenger struct {
	cfg    WhatsAppConfig
	client *http.Client
}

func NewWhatsAppMessenger(cfg WhatsAppConfig) *WhatsAppMessenger {
	if cfg.Language == "" {
		cfg.Language = "pt_BR"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &WhatsAppMessenger{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (*WhatsAppMessenger) Name() string { return "whatsapp" }

type waText struct {
	Body string `json:"body"`
}

type waParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type waComponent struct {
	Type       string        `json:"type"`
	Parameters []waParameter `json:"parameters"`
}

type waTemplate struct {
	Name     string `json:"name"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
	Components []waComponent `json:"components"`
}

type waRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             *waText     `json:"text,omitempty"`
	Template         *waTemplate `json:"template,omitempty"`
}

type waResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (w *WhatsAppMessenger) payload(msg Message) waRequest {
	req := waRequest{MessagingProduct: "whatsapp", To: digits(msg.To)}
	if msg.Template == "" {
		req.Type = "text"
		req.Text = &waText{Body: msg.Text}
		return req
	}

	tpl := &waTemplate{Name: msg.Template, Components: []waComponent{}}
	tpl.Language.Code = w.cfg.Language
	if len(msg.Params) > 0 {
		body := waComponent{Type: "body"}
		for _, p := range msg.Params {
			body.Parameters = append(body.Parameters, waParameter{Type: "text", Text: p})
		}
		tpl.Components = append(tpl.Components, body)
	}
	req.Type = "template"
	req.Template = tpl
	return req
}

func (w *WhatsAppMessenger) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(w.payload(msg))
	if err != nil {
		return "", fmt.Errorf("encode whatsapp message: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", w.cfg.APIURL, w.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMessagingFailed, err)
	}
	defer resp.Body.Close()

	var out waResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("%w: decode response: %v", ErrMessagingFailed, err)
	}
	if resp.StatusCode >= 300 {
		reason := "Unknown error"
		if out.Error != nil && out.Error.Message != "" {
			reason = out.Error.Message
		}
		return "", fmt.Errorf("%w: whatsapp api status %d: %s", ErrMessagingFailed, resp.StatusCode, reason)
	}
	if len(out.Messages) == 0 {
		return "", nil
	}
	return out.Messages[0].ID, nil
}
