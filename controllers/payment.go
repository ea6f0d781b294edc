package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/services"
	"agendapro-backend/utils"
)

type CreatePaymentInput struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Description   string    `json:"description"`
}

// CreatePayment opens a payment intent. With an appointment id the amount
// is the appointment price.
func (h *Handler) CreatePayment(c *gin.Context) {
	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	req := services.PaymentRequest{
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
	}
	if req.Currency == "" {
		req.Currency = h.Currency
	}

	if input.AppointmentID != uuid.Nil {
		var a models.Appointment
		err := h.gw().Get(c.Request.Context(), gateway.From("appointments").Eq("id", input.AppointmentID), &a)
		if err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
				return
			}
			utils.RespondWithStoreError(c, err)
			return
		}
		if a.PaymentStatus != models.PaymentPending {
			utils.RespondWithError(c, http.StatusConflict, "Appointment is already "+string(a.PaymentStatus))
			return
		}
		req.Amount = a.Price
		req.AppointmentID = a.ID.String()
		req.SalonID = a.SalonID.String()
		if req.Description == "" {
			req.Description = fmt.Sprintf("Agendamento %s %s", a.Date, a.Time)
		}
	}
	if req.Amount <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "amount must be greater than zero")
		return
	}

	handle, err := h.Payments.CreateIntent(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrPaymentsDisabled) {
			utils.RespondWithError(c, http.StatusNotImplemented, "Stripe integration is disabled on this deployment.")
			return
		}
		h.Log.WithError(err).Error("failed to create payment intent")
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to create payment")
		return
	}
	c.JSON(http.StatusOK, handle)
}
