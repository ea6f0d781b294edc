package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/utils"
)

type SettingsResponse struct {
	Salon     models.Salon             `json:"salon"`
	Templates []models.MessageTemplate `json:"templates"`
}

func (h *Handler) loadSalon(c *gin.Context) (models.Salon, bool) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return models.Salon{}, false
	}
	var salon models.Salon
	if err := h.gw().Get(c.Request.Context(), gateway.From("salons").Eq("id", salonID), &salon); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
			return models.Salon{}, false
		}
		utils.RespondWithStoreError(c, err)
		return models.Salon{}, false
	}
	return salon, true
}

func (h *Handler) templates(c *gin.Context, salonID uuid.UUID) ([]models.MessageTemplate, error) {
	out := make([]models.MessageTemplate, 0, 2)
	for _, kind := range []models.TemplateType{models.TemplateReminder, models.TemplateConfirmation} {
		tpl, err := h.Notifier.Template(c.Request.Context(), salonID, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

// GetSettings returns the salon profile and its message templates.
func (h *Handler) GetSettings(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	templates, err := h.templates(c, salon.ID)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, SettingsResponse{Salon: salon, Templates: templates})
}

// UpdateSettings updates salon profile, working hours and notification
// switches.
func (h *Handler) UpdateSettings(c *gin.Context) {
	salon, ok := h.loadSalon(c)
	if !ok {
		return
	}
	var patch models.SalonPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Salon name cannot be empty")
		return
	}
	if patch.Phone != nil && *patch.Phone != "" && !utils.ValidatePhone(*patch.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	fields := patch.Fields()
	if len(fields) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := h.gw().Update(c.Request.Context(), "salons", salon.ID, fields); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	if !h.refreshSalon(c, &salon) {
		return
	}
	c.JSON(http.StatusOK, salon)
}

func (h *Handler) refreshSalon(c *gin.Context, salon *models.Salon) bool {
	if err := h.gw().Get(c.Request.Context(), gateway.From("salons").Eq("id", salon.ID), salon); err != nil {
		utils.RespondWithStoreError(c, err)
		return false
	}
	return true
}

type TemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"is_active"`
}

// UpdateTemplate creates or updates the salon's template of one type.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	kind := models.TemplateType(c.Param("type"))
	if _, known := models.DefaultTemplates[kind]; !known {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown template type")
		return
	}
	var input TemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Message != nil && strings.TrimSpace(*input.Message) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Template message cannot be empty")
		return
	}
	ctx := c.Request.Context()

	var tpl models.MessageTemplate
	err := h.gw().Get(ctx, gateway.From("message_templates").Eq("salon_id", salonID).Eq("type", string(kind)), &tpl)
	switch {
	case err == nil:
		fields := map[string]interface{}{}
		if input.Message != nil {
			tpl.Message = *input.Message
			fields["message"] = tpl.Message
		}
		if input.IsActive != nil {
			tpl.IsActive = *input.IsActive
			fields["is_active"] = tpl.IsActive
		}
		if len(fields) > 0 {
			if err := h.gw().Update(ctx, "message_templates", tpl.ID, fields); err != nil {
				utils.RespondWithStoreError(c, err)
				return
			}
		}
	case errors.Is(err, gateway.ErrNotFound):
		tpl = models.MessageTemplate{SalonID: salonID, Type: kind, Message: models.DefaultTemplates[kind], IsActive: true}
		if input.Message != nil {
			tpl.Message = *input.Message
		}
		if input.IsActive != nil {
			tpl.IsActive = *input.IsActive
		}
		if tpl.ID, err = h.gw().Insert(ctx, "message_templates", tpl.Values()); err != nil {
			utils.RespondWithStoreError(c, err)
			return
		}
	default:
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
