package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/models"
	"agendapro-backend/utils"
)

type CreateAppointmentInput struct {
	ClientID       uuid.UUID                `json:"client_id" binding:"required"`
	ServiceID      uuid.UUID                `json:"service_id" binding:"required"`
	ProfessionalID uuid.UUID                `json:"professional_id"`
	Date           models.Date              `json:"date"`
	Time           string                   `json:"time" binding:"required"`
	Duration       int                      `json:"duration"`
	Price          float64                  `json:"price"`
	Status         models.AppointmentStatus `json:"status"`
	PaymentMethod  models.PaymentMethod     `json:"payment_method"`
	Notes          string                   `json:"notes"`
}

// GetAppointments lists the salon's appointments, optionally for one date
// and status.
func (h *Handler) GetAppointments(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	date, err := utils.ParseDateParam(c.Query("date"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	status := models.AppointmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown status "+string(status))
		return
	}

	// The shared snapshot always holds every appointment; a day view
	// reads through a store of its own.
	source := sess.Appointments
	if date != nil {
		source, err = h.dayAppointments(c, sess.SalonID, *date)
	} else {
		err = source.Fetch(c.Request.Context(), nil)
	}
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	appointments := source.Snapshot()
	if status != "" {
		appointments = source.QueryByStatus(status)
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// CreateAppointment books on behalf of an existing client from the
// dashboard.
func (h *Handler) CreateAppointment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	svc, err := h.service(c, sess, input.ServiceID)
	if err != nil {
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
	if input.Status == "" {
		input.Status = models.StatusPending
	}

	appointment, err := sess.Appointments.Create(c.Request.Context(), models.Appointment{
		ClientID:       input.ClientID,
		ServiceID:      svc.ID,
		ProfessionalID: input.ProfessionalID,
		Date:           input.Date,
		Time:           input.Time,
		Duration:       input.Duration,
		Price:          input.Price,
		Status:         input.Status,
		PaymentStatus:  models.PaymentPending,
		PaymentMethod:  input.PaymentMethod,
		Notes:          input.Notes,
	})
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	appointment.ServiceName = svc.Name
	appointment.ProfessionalName = svc.ProfessionalName
	if client, ok := sess.Clients.GetByID(appointment.ClientID); ok {
		appointment.ClientName = client.Name
		appointment.ClientPhone = client.Phone
	}
	c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment applies a partial update. Completing an appointment
// counts a visit for its client.
func (h *Handler) UpdateAppointment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "appointment")
	if !ok {
		return
	}
	var patch models.AppointmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	appointment, before, err := sess.Appointments.Change(ctx, id, patch)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	if appointment.Status == models.StatusCompleted && before.Status != models.StatusCompleted {
		if _, err := sess.Clients.RecordVisit(ctx, appointment.ClientID, h.now()); err != nil {
			h.Log.WithError(err).WithField("appointment_id", id).Warn("failed to record client visit")
		}
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "appointment")
	if !ok {
		return
	}
	if err := sess.Appointments.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
