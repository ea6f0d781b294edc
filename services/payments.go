package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrPaymentsDisabled is returned when no payment provider is configured.
var ErrPaymentsDisabled = errors.New("payment integration is disabled on this deployment")

// PaymentRequest asks for an intent of Amount in major currency units.
type PaymentRequest struct {
	Amount        float64
	Currency      string
	AppointmentID string
	SalonID       string
	Description   string
}

type PaymentHandle struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Payments interface {
	CreateIntent(ctx context.Context, req PaymentRequest) (PaymentHandle, error)
}

// DisabledPayments rejects every request with ErrPaymentsDisabled.
type DisabledPayments struct{}

func (DisabledPayments) CreateIntent(context.Context, PaymentRequest) (PaymentHandle, error) {
	return PaymentHandle{}, ErrPaymentsDisabled
}

type StripeConfig struct {
	SecretKey string
	Currency  string
	// APIURL overrides the Stripe endpoint.
	APIURL string
	Log    logrus.FieldLogger
}

type StripePayments struct {
	api      *client.API
	currency string
}

// NewPayments returns a Stripe backend, or DisabledPayments without a key.
func NewPayments(cfg StripeConfig) Payments {
	if cfg.SecretKey == "" {
		return DisabledPayments{}
	}
	return NewStripePayments(cfg)
}

func NewStripePayments(cfg StripeConfig) *StripePayments {
	backendCfg := &stripe.BackendConfig{}
	if cfg.Log != nil {
		backendCfg.LeveledLogger = cfg.Log
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
		backendCfg.MaxNetworkRetries = stripe.Int64(0)
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, stripe.NewBackendsWithConfig(backendCfg))

	currency := strings.ToLower(cfg.Currency)
	if currency == "" {
		currency = "brl"
	}
	return &StripePayments{api: api, currency: currency}
}

// toCents converts a major-unit amount to the smallest currency unit.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *StripePayments) CreateIntent(ctx context.Context, req PaymentRequest) (PaymentHandle, error) {
	if req.Amount <= 0 {
		return PaymentHandle{}, errors.New("amount must be positive")
	}
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toCents(req.Amount)),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.AppointmentID != "" {
		params.AddMetadata("appointment_id", req.AppointmentID)
	}
	if req.SalonID != "" {
		params.AddMetadata("salon_id", req.SalonID)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return PaymentHandle{}, fmt.Errorf("create payment intent: %w", err)
	}
	return PaymentHandle{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
