package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendapro-backend/models"
	"agendapro-backend/services"
)

func TestSettingsDefaultsAndTemplateUpsert(t *testing.T) {
	env := newTestEnv(t)

	w := env.authed(http.MethodGet, "/api/settings", nil)
	requireStatus(t, w, http.StatusOK)
	var settings SettingsResponse
	decodeBody(t, w, &settings)
	assert.Equal(t, env.salon.ID, settings.Salon.ID)
	require.Len(t, settings.Templates, 2)
	assert.Equal(t, models.TemplateReminder, settings.Templates[0].Type)
	assert.Equal(t, models.DefaultTemplates[models.TemplateReminder], settings.Templates[0].Message)
	assert.True(t, settings.Templates[0].IsActive)

	w = env.authed(http.MethodPut, "/api/settings/templates/reminder", gin.H{"is_active": false})
	requireStatus(t, w, http.StatusOK)
	var tpl models.MessageTemplate
	decodeBody(t, w, &tpl)
	assert.False(t, tpl.IsActive)
	assert.Equal(t, models.DefaultTemplates[models.TemplateReminder], tpl.Message)
	assert.Equal(t, 1, env.gw.Len("message_templates"))

	w = env.authed(http.MethodPut, "/api/settings/templates/reminder", gin.H{"message": "Oi [ClientName], até amanhã!", "is_active": true})
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, 1, env.gw.Len("message_templates"))

	w = env.authed(http.MethodGet, "/api/settings", nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &settings)
	assert.Equal(t, "Oi [ClientName], até amanhã!", settings.Templates[0].Message)
	assert.True(t, settings.Templates[0].IsActive)
}

func TestUpdateTemplateValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.authed(http.MethodPut, "/api/settings/templates/birthday", gin.H{"message": "Parabéns!"})
	requireStatus(t, w, http.StatusBadRequest)
	w = env.authed(http.MethodPut, "/api/settings/templates/reminder", gin.H{"message": "  "})
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 0, env.gw.Len("message_templates"))
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)

	w := env.authed(http.MethodPut, "/api/settings", gin.H{"name": "Studio Bela Centro", "whatsapp_reminders": false})
	requireStatus(t, w, http.StatusOK)
	var salon models.Salon
	decodeBody(t, w, &salon)
	assert.Equal(t, "Studio Bela Centro", salon.Name)
	assert.Equal(t, "studio-bela", salon.Slug)
	assert.False(t, salon.WhatsAppReminders)

	w = env.authed(http.MethodPut, "/api/settings", gin.H{"name": " "})
	requireStatus(t, w, http.StatusBadRequest)
	w = env.authed(http.MethodPut, "/api/settings", gin.H{"phone": "abc"})
	requireStatus(t, w, http.StatusBadRequest)
	w = env.authed(http.MethodPut, "/api/settings", gin.H{})
	requireStatus(t, w, http.StatusBadRequest)
}

func TestCreatePaymentDisabled(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/payments/create", gin.H{"amount": 50}, "")
	requireStatus(t, w, http.StatusNotImplemented)
	assert.Contains(t, w.Body.String(), "Stripe integration is disabled")
}

func TestCreatePaymentForAppointment(t *testing.T) {
	env := newTestEnv(t)
	payments := &recordingPayments{}
	env.h.Payments = payments
	pending := env.appointment(t, models.NewDate(2024, 5, 10), "10:00", models.StatusConfirmed, models.PaymentPending)
	paid := env.appointment(t, models.NewDate(2024, 5, 10), "11:00", models.StatusConfirmed, models.PaymentPaid)

	w := env.do(http.MethodPost, "/api/payments/create", gin.H{"appointment_id": pending, "amount": 1}, "")
	requireStatus(t, w, http.StatusOK)
	var handle services.PaymentHandle
	decodeBody(t, w, &handle)
	assert.Equal(t, "pi_test_secret", handle.ClientSecret)

	require.Len(t, payments.requests, 1)
	req := payments.requests[0]
	assert.Equal(t, 80.0, req.Amount)
	assert.Equal(t, "brl", req.Currency)
	assert.Equal(t, pending.String(), req.AppointmentID)
	assert.Equal(t, env.salon.ID.String(), req.SalonID)
	assert.Equal(t, "Agendamento 2024-05-10 10:00", req.Description)

	w = env.do(http.MethodPost, "/api/payments/create", gin.H{"appointment_id": paid}, "")
	requireStatus(t, w, http.StatusConflict)
	w = env.do(http.MethodPost, "/api/payments/create", gin.H{"appointment_id": env.client}, "")
	requireStatus(t, w, http.StatusNotFound)
	w = env.do(http.MethodPost, "/api/payments/create", gin.H{"amount": 0}, "")
	requireStatus(t, w, http.StatusBadRequest)
	assert.Len(t, payments.requests, 1)
}

func TestNotificationsAndReminderRun(t *testing.T) {
	env := newTestEnv(t)
	tomorrow := models.DateOf(env.now).AddDays(1)
	env.appointment(t, tomorrow, "14:00", models.StatusConfirmed, models.PaymentPending)

	w := env.authed(http.MethodPost, "/api/reminders/run", nil)
	requireStatus(t, w, http.StatusServiceUnavailable)

	env.h.Reminders = services.NewReminderService(env.gw, env.h.Notifier, "0 9 * * *", time.UTC, quietLogger())
	w = env.authed(http.MethodPost, "/api/reminders/run", nil)
	requireStatus(t, w, http.StatusOK)
	var report services.ReminderReport
	decodeBody(t, w, &report)
	assert.Equal(t, tomorrow, report.Day)
	assert.Equal(t, 1, report.Sent)

	sent := env.messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Olá Maria! Lembrete: Corte amanhã, 10/05/2024 às 14:00 em Studio Bela.", sent[0].Text)

	w = env.authed(http.MethodPost, "/api/reminders/run", nil)
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &report)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.Skipped)

	w = env.authed(http.MethodGet, "/api/notifications?limit=10", nil)
	requireStatus(t, w, http.StatusOK)
	var logs []models.NotificationLog
	decodeBody(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "reminder", logs[0].Type)
	assert.Equal(t, "fake", logs[0].Channel)
	assert.Equal(t, "sent", logs[0].Status)

	w = env.authed(http.MethodGet, "/api/notifications?limit=zero", nil)
	requireStatus(t, w, http.StatusBadRequest)
}
