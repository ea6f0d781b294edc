package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/store"
	"agendapro-backend/utils"
)

type ClientData struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone" binding:"required"`
}

type BookingInput struct {
	SalonID        uuid.UUID            `json:"salon_id" binding:"required"`
	ServiceID      uuid.UUID            `json:"service_id" binding:"required"`
	ProfessionalID uuid.UUID            `json:"professional_id"`
	Date           models.Date          `json:"date"`
	Time           string               `json:"time" binding:"required"`
	Duration       int                  `json:"duration"`
	Price          float64              `json:"price"`
	PaymentMethod  models.PaymentMethod `json:"payment_method"`
	Notes          string               `json:"notes"`
	ClientData     ClientData           `json:"client_data"`
}

// salonBySlug loads a public salon page.
func (h *Handler) salonBySlug(c *gin.Context) (models.Salon, bool) {
	var salon models.Salon
	err := h.gw().Get(c.Request.Context(), gateway.From("salons").Eq("slug", c.Param("slug")), &salon)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
			return models.Salon{}, false
		}
		utils.RespondWithStoreError(c, err)
		return models.Salon{}, false
	}
	return salon, true
}

// GetSalonBySlug serves the public booking page data: the salon, its
// services and professionals.
func (h *Handler) GetSalonBySlug(c *gin.Context) {
	salon, ok := h.salonBySlug(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sess := h.Sessions.Session(salon.ID)
	if err := sess.Services.Fetch(ctx); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	professionals := []models.Professional{}
	if err := h.gw().Select(ctx, gateway.From("professionals").Eq("salon_id", salon.ID).OrderBy("name"), &professionals); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salon":         salon,
		"services":      sess.Services.Snapshot(),
		"professionals": professionals,
	})
}

// GetAvailability lists the free start times for a service on a day.
func (h *Handler) GetAvailability(c *gin.Context) {
	salon, ok := h.salonBySlug(c)
	if !ok {
		return
	}
	day, err := models.ParseDate(c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	sess := h.Sessions.Session(salon.ID)

	professionalID, _ := uuid.Parse(c.Query("professional_id"))
	duration, _ := strconv.Atoi(c.Query("duration"))
	if serviceID, err := uuid.Parse(c.Query("service_id")); err == nil {
		svc, err := h.service(c, sess, serviceID)
		if err != nil {
			utils.RespondWithStoreError(c, err)
			return
		}
		if professionalID == uuid.Nil {
			professionalID = svc.ProfessionalID
		}
		if duration <= 0 {
			duration = svc.Duration
		}
	}
	if professionalID == uuid.Nil {
		utils.RespondWithError(c, http.StatusBadRequest, "service_id or professional_id is required")
		return
	}

	booked, err := h.dayAppointments(c, salon.ID, day)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  day,
		"times": booked.AvailableTimes(day, professionalID, duration, h.BookingTimes),
	})
}

// dayAppointments loads one day of a salon into a store of its own, leaving
// the salon session's snapshot alone.
func (h *Handler) dayAppointments(c *gin.Context, salonID uuid.UUID, day models.Date) (*store.AppointmentStore, error) {
	s := store.NewAppointmentStore(h.gw(), salonID, h.Log)
	if err := s.Fetch(c.Request.Context(), &day); err != nil {
		return nil, err
	}
	return s, nil
}

// service finds a service in the session snapshot, fetching once on a miss.
func (h *Handler) service(c *gin.Context, sess *store.Session, id uuid.UUID) (models.Service, error) {
	if svc, ok := sess.Services.Get(id); ok {
		return svc, nil
	}
	if err := sess.Services.Fetch(c.Request.Context()); err != nil {
		return models.Service{}, err
	}
	if svc, ok := sess.Services.Get(id); ok {
		return svc, nil
	}
	return models.Service{}, gateway.ErrNotFound
}

// CreateBooking is the public booking endpoint. The client is matched by
// phone within the salon and created when new; the appointment starts
// pending.
func (h *Handler) CreateBooking(c *gin.Context) {
	var input BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Date.IsZero() {
		utils.RespondWithError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := models.ParseClock(input.Time); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !utils.ValidatePhone(input.ClientData.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentCash
	}
	ctx := c.Request.Context()

	var salon models.Salon
	if err := h.gw().Get(ctx, gateway.From("salons").Eq("id", input.SalonID), &salon); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}
	sess := h.Sessions.Session(salon.ID)

	svc, err := h.service(c, sess, input.ServiceID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown service")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}
	if input.ProfessionalID == uuid.Nil {
		input.ProfessionalID = svc.ProfessionalID
	}
	if input.Duration <= 0 {
		input.Duration = svc.Duration
	}
	if input.Price <= 0 {
		input.Price = svc.Price
	}

	booked, err := h.dayAppointments(c, salon.ID, input.Date)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	free := booked.AvailableTimes(input.Date, input.ProfessionalID, input.Duration, []string{input.Time})
	if len(free) == 0 {
		utils.RespondWithError(c, http.StatusConflict, "Time slot is no longer available")
		return
	}

	phone := utils.NormalizePhone(input.ClientData.Phone)
	client, _, err := sess.Clients.FindOrCreateByPhone(ctx, models.Client{
		Name:     strings.TrimSpace(input.ClientData.Name),
		Email:    input.ClientData.Email,
		Phone:    phone,
		WhatsApp: phone,
	})
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	appointment, err := sess.Appointments.Create(ctx, models.Appointment{
		ClientID:       client.ID,
		ServiceID:      svc.ID,
		ProfessionalID: input.ProfessionalID,
		Date:           input.Date,
		Time:           input.Time,
		Duration:       input.Duration,
		Price:          input.Price,
		Status:         models.StatusPending,
		PaymentStatus:  models.PaymentPending,
		PaymentMethod:  input.PaymentMethod,
		Notes:          input.Notes,
	})
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	appointment.ClientName = client.Name
	appointment.ClientPhone = client.WhatsApp
	appointment.ServiceName = svc.Name
	appointment.ProfessionalName = svc.ProfessionalName

	if h.Notifier != nil && salon.WhatsAppReminders {
		if _, err := h.Notifier.NotifyAppointment(ctx, salon, appointment, models.TemplateConfirmation); err != nil {
			h.Log.WithError(err).WithField("appointment_id", appointment.ID).Warn("booking confirmation not sent")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"appointment": appointment,
		"client":      client,
	})
}
