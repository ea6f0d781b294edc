package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/utils"
)

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

func (h *Handler) CreateClient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Validate phone format
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}

	client, err := sess.Clients.Create(c.Request.Context(), models.Client{
		Name:     input.Name,
		Phone:    utils.NormalizePhone(input.Phone),
		Email:    input.Email,
		WhatsApp: utils.NormalizePhone(input.WhatsApp),
	})
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			utils.RespondWithError(c, http.StatusConflict, "Client with this phone number already exists")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients retrieves all clients for the salon
func (h *Handler) GetClients(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Clients.Fetch(c.Request.Context()); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Clients.Snapshot())
}

func (h *Handler) GetClient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "client")
	if !ok {
		return
	}
	client, found := sess.Clients.GetByID(id)
	if !found {
		if err := sess.Clients.Fetch(c.Request.Context()); err != nil {
			utils.RespondWithStoreError(c, err)
			return
		}
		client, found = sess.Clients.GetByID(id)
	}
	if !found {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "client")
	if !ok {
		return
	}
	var patch models.ClientPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if patch.Phone != nil {
		if !utils.ValidatePhone(*patch.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		phone := utils.NormalizePhone(*patch.Phone)
		patch.Phone = &phone
	}

	client, err := sess.Clients.Update(c.Request.Context(), id, patch)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "client")
	if !ok {
		return
	}
	if err := sess.Clients.Delete(c.Request.Context(), id); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}
