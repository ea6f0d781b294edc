// controllers/reminder.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/services"
	"agendapro-backend/utils"
)

type SendMessageInput struct {
	SalonID      uuid.UUID `json:"salon_id"`
	Phone        string    `json:"phone" binding:"required"`
	Message      string    `json:"message"`
	TemplateName string    `json:"template_name"`
	TemplateData []string  `json:"template_data"`
}

// SendWhatsApp sends a free-form or template WhatsApp message. Requests
// carrying a session are logged under that salon.
func (h *Handler) SendWhatsApp(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Message == "" && input.TemplateName == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "message or template_name is required")
		return
	}
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	salonID, ok := utils.SalonID(c)
	if !ok {
		salonID = input.SalonID
	}
	if salonID == uuid.Nil {
		salonID = h.DefaultSalon
	}
	entry, err := h.Notifier.Send(c.Request.Context(), salonID, services.Message{
		To:       utils.NormalizePhone(input.Phone),
		Text:     input.Message,
		Template: input.TemplateName,
		Params:   input.TemplateData,
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send WhatsApp message")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message_id": entry.ProviderID,
	})
}

// GetNotifications lists the salon's most recent outbound messages.
func (h *Handler) GetNotifications(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "limit must be a positive number")
		return
	}
	logs, err := h.Notifier.Recent(c.Request.Context(), salonID, limit)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// RunReminders sends tomorrow's reminders for the caller's salon now
// instead of waiting for the schedule.
func (h *Handler) RunReminders(c *gin.Context) {
	if h.Reminders == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Reminders are disabled")
		return
	}
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	day := h.today().AddDays(1)
	sent, failed, skipped, err := h.Reminders.ProcessSalonReminders(c.Request.Context(), salon, day)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.ReminderReport{Day: day, Salons: 1, Sent: sent, Failed: failed, Skipped: skipped})
}
