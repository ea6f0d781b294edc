// controllers/service.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"agendapro-backend/models"
	"agendapro-backend/utils"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name           string    `json:"name" binding:"required"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	Price          float64   `json:"price"`
	Duration       int       `json:"duration"` // in minutes
	Category       string    `json:"category"`
}

// CreateService creates a new service for the salon
func (h *Handler) CreateService(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	svc, err := sess.Services.Create(c.Request.Context(), models.Service{
		ProfessionalID: input.ProfessionalID,
		Name:           input.Name,
		Duration:       input.Duration,
		Price:          input.Price,
		Category:       &input.Category,
	})
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// GetServices retrieves all services for the salon
func (h *Handler) GetServices(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Services.Fetch(c.Request.Context()); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Services.Snapshot())
}

// GetService retrieves a specific service by ID
func (h *Handler) GetService(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "service")
	if !ok {
		return
	}
	svc, err := h.service(c, sess, id)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// UpdateService updates an existing service
func (h *Handler) UpdateService(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "service")
	if !ok {
		return
	}
	var patch models.ServicePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	svc, err := sess.Services.Update(c.Request.Context(), id, patch)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) DeleteService(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "service")
	if !ok {
		return
	}
	if err := sess.Services.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
