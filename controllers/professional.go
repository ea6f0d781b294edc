package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/utils"
)

const tableProfessionals = "professionals"

type ProfessionalInput struct {
	Name        *string         `json:"name"`
	Specialties models.JSONList `json:"specialties"`
}

func (h *Handler) GetProfessionals(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	professionals := []models.Professional{}
	err := h.gw().Select(c.Request.Context(), gateway.From(tableProfessionals).Eq("salon_id", salonID).OrderBy("name"), &professionals)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, professionals)
}

func (h *Handler) AddProfessional(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	var input ProfessionalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Professional name is required")
		return
	}

	pro := models.Professional{
		SalonID:     salonID,
		Name:        strings.TrimSpace(*input.Name),
		Specialties: input.Specialties,
	}
	id, err := h.gw().Insert(c.Request.Context(), tableProfessionals, pro.Values())
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	pro.ID = id
	if pro.Specialties == nil {
		pro.Specialties = models.JSONList{}
	}
	c.JSON(http.StatusCreated, pro)
}

func (h *Handler) UpdateProfessional(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	id, ok := paramID(c, "professional")
	if !ok {
		return
	}
	var input ProfessionalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Professional name is required")
			return
		}
		fields["name"] = name
	}
	if input.Specialties != nil {
		fields["specialties"] = input.Specialties
	}
	if len(fields) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	ctx := c.Request.Context()
	q := gateway.From(tableProfessionals).Eq("salon_id", salonID).Eq("id", id)
	var pro models.Professional
	if err := h.gw().Get(ctx, q, &pro); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	if err := h.gw().Update(ctx, tableProfessionals, id, fields); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	if input.Name != nil {
		pro.Name = fields["name"].(string)
	}
	if input.Specialties != nil {
		pro.Specialties = input.Specialties
	}
	c.JSON(http.StatusOK, pro)
}

func (h *Handler) DeleteProfessional(c *gin.Context) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return
	}
	id, ok := paramID(c, "professional")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var pro models.Professional
	if err := h.gw().Get(ctx, gateway.From(tableProfessionals).Eq("salon_id", salonID).Eq("id", id), &pro); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	if err := h.gw().Delete(ctx, tableProfessionals, id); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Professional deleted successfully"})
}
