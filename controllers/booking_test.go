package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendapro-backend/models"
)

type bookingResponse struct {
	Success     bool               `json:"success"`
	Appointment models.Appointment `json:"appointment"`
	Client      models.Client      `json:"client"`
}

func (env *testEnv) booking(clock, name, phone string) gin.H {
	return gin.H{
		"salon_id":   env.salon.ID,
		"service_id": env.service,
		"date":       "2024-05-10",
		"time":       clock,
		"client_data": gin.H{
			"name":  name,
			"phone": phone,
		},
	}
}

func TestCreateBookingCreatesClientAndConfirms(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/appointments", env.booking("14:00", "Paula", "(21) 97777-6666"), "")
	requireStatus(t, w, http.StatusCreated)

	var resp bookingResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Paula", resp.Client.Name)
	assert.Equal(t, "21977776666", resp.Client.Phone)
	assert.Equal(t, env.salon.ID, resp.Client.SalonID)
	assert.Equal(t, 2, env.gw.Len("clients"))

	a := resp.Appointment
	assert.Equal(t, models.StatusPending, a.Status)
	assert.Equal(t, models.PaymentPending, a.PaymentStatus)
	assert.Equal(t, models.PaymentCash, a.PaymentMethod)
	assert.Equal(t, env.professional, a.ProfessionalID)
	assert.Equal(t, 30, a.Duration)
	assert.Equal(t, 80.0, a.Price)
	assert.Equal(t, models.NewDate(2024, 5, 10), a.Date)
	assert.Equal(t, "Corte", a.ServiceName)

	sent := env.messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "21977776666", sent[0].To)
	assert.Contains(t, sent[0].Text, "Paula")
	assert.Contains(t, sent[0].Text, "10/05/2024 às 14:00")
	assert.Equal(t, 1, env.gw.Len("notification_logs"))
}

func TestCreateBookingReusesClientByPhone(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/appointments", env.booking("09:00", "Maria Silva", "11 99999-0000"), "")
	requireStatus(t, w, http.StatusCreated)

	var resp bookingResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, env.client, resp.Client.ID)
	assert.Equal(t, "Maria", resp.Client.Name)
	assert.Equal(t, 1, env.gw.Len("clients"))
	assert.Equal(t, env.client, resp.Appointment.ClientID)
}

func TestCreateBookingRejectsTakenSlot(t *testing.T) {
	env := newTestEnv(t)
	env.appointment(t, models.NewDate(2024, 5, 10), "14:00", models.StatusConfirmed, models.PaymentPending)

	w := env.do(http.MethodPost, "/api/appointments", env.booking("14:15", "Paula", "21977776666"), "")
	requireStatus(t, w, http.StatusConflict)
	assert.Equal(t, 1, env.gw.Len("appointments"))
	assert.Equal(t, 1, env.gw.Len("clients"))
	assert.Empty(t, env.messenger.messages())
}

func TestCreateBookingIgnoresCancelledAppointments(t *testing.T) {
	env := newTestEnv(t)
	env.appointment(t, models.NewDate(2024, 5, 10), "14:00", models.StatusCancelled, models.PaymentPending)

	w := env.do(http.MethodPost, "/api/appointments", env.booking("14:00", "Paula", "21977776666"), "")
	requireStatus(t, w, http.StatusCreated)
	assert.Equal(t, 2, env.gw.Len("appointments"))
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
		code int
	}{
		{"bad phone", env.booking("14:00", "Paula", "abc"), http.StatusBadRequest},
		{"bad time", env.booking("25:00", "Paula", "21977776666"), http.StatusBadRequest},
		{"missing client name", env.booking("14:00", "", "21977776666"), http.StatusBadRequest},
		{"missing service", gin.H{"salon_id": env.salon.ID, "date": "2024-05-10", "time": "14:00"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/appointments", tt.body, "")
			requireStatus(t, w, tt.code)
		})
	}
	assert.Equal(t, 0, env.gw.Len("appointments"))
}

func TestCreateBookingWithoutRemindersSendsNothing(t *testing.T) {
	env := newTestEnv(t)
	off := false
	w := env.authed(http.MethodPut, "/api/settings", models.SalonPatch{WhatsAppReminders: &off})
	requireStatus(t, w, http.StatusOK)

	w = env.do(http.MethodPost, "/api/appointments", env.booking("14:00", "Paula", "21977776666"), "")
	requireStatus(t, w, http.StatusCreated)
	assert.Empty(t, env.messenger.messages())
}

func TestGetAvailability(t *testing.T) {
	env := newTestEnv(t)
	env.appointment(t, models.NewDate(2024, 5, 10), "14:00", models.StatusConfirmed, models.PaymentPending)

	w := env.do(http.MethodGet, "/api/salons/studio-bela/availability?date=2024-05-10&service_id="+env.service.String(), nil, "")
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Date  models.Date `json:"date"`
		Times []string    `json:"times"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, models.NewDate(2024, 5, 10), resp.Date)
	assert.Equal(t, []string{"13:30", "14:30"}, resp.Times)

	w = env.do(http.MethodGet, "/api/salons/studio-bela/availability?date=2024-05-11&service_id="+env.service.String(), nil, "")
	requireStatus(t, w, http.StatusOK)
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"13:30", "14:00", "14:30"}, resp.Times)
}

func TestGetAvailabilityRequiresProfessional(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/salons/studio-bela/availability?date=2024-05-10", nil, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = env.do(http.MethodGet, "/api/salons/studio-bela/availability?date=10/05/2024&service_id="+env.service.String(), nil, "")
	requireStatus(t, w, http.StatusBadRequest)
}

func TestGetSalonBySlug(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/salons/studio-bela", nil, "")
	requireStatus(t, w, http.StatusOK)
	var resp struct {
		Salon         models.Salon          `json:"salon"`
		Services      []models.Service      `json:"services"`
		Professionals []models.Professional `json:"professionals"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, env.salon.ID, resp.Salon.ID)
	require.Len(t, resp.Services, 1)
	assert.Equal(t, "Ana", resp.Services[0].ProfessionalName)
	require.Len(t, resp.Professionals, 1)

	w = env.do(http.MethodGet, "/api/salons/unknown", nil, "")
	requireStatus(t, w, http.StatusNotFound)
}

func TestSendWhatsAppFallsBackToDefaultSalon(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/whatsapp/send", gin.H{"phone": "+55 11 99999-0000", "message": "Oi!"}, "")
	requireStatus(t, w, http.StatusOK)

	sent := env.messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "+5511999990000", sent[0].To)
	assert.Equal(t, "Oi!", sent[0].Text)

	var logs []models.NotificationLog
	require.NoError(t, env.gw.Select(context.Background(), notificationsFor(env.h.DefaultSalon), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "manual", logs[0].Type)

	w = env.do(http.MethodPost, "/api/whatsapp/send", gin.H{"phone": "+55 11 99999-0000"}, "")
	requireStatus(t, w, http.StatusBadRequest)
}
