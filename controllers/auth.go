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

type RegisterInput struct {
	Email        string              `json:"email" binding:"required,email"`
	Name         string              `json:"name" binding:"required"`
	Password     string              `json:"password" binding:"required,min=8"`
	SalonName    string              `json:"salonName" binding:"required"`
	SalonAddress string              `json:"salonAddress"`
	Phone        string              `json:"phone"`
	WhatsApp     string              `json:"whatsapp"`
	BusinessType models.BusinessType `json:"businessType"`
	WorkingHours models.JSONB        `json:"workingHours"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const sessionCookie = "token"

// Register creates a salon, its admin user and the default message
// templates.
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	ctx := c.Request.Context()

	var existing models.User
	err := h.gw().Get(ctx, gateway.From("users").Eq("email", email), &existing)
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		utils.RespondWithStoreError(c, err)
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	salon := models.Salon{
		Name:              strings.TrimSpace(input.SalonName),
		Address:           input.SalonAddress,
		Phone:             input.Phone,
		WhatsApp:          input.WhatsApp,
		BusinessType:      input.BusinessType,
		WorkingHours:      input.WorkingHours,
		WhatsAppReminders: true,
	}
	if salon.BusinessType == "" {
		salon.BusinessType = models.BusinessSalon
	}
	if salon.WorkingHours == nil {
		salon.WorkingHours = models.DefaultWorkingHours()
	}
	if salon.WhatsApp == "" {
		salon.WhatsApp = salon.Phone
	}
	salon.ID, err = h.insertSalon(c, &salon)
	if err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	user := models.User{
		SalonID:      salon.ID,
		Email:        email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         models.RoleAdmin,
	}
	user.ID, err = h.gw().Insert(ctx, "users", user.Values())
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			utils.RespondWithError(c, http.StatusConflict, "Email already registered")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}

	if err := h.createDefaultTemplates(c, salon.ID); err != nil {
		h.Log.WithError(err).WithField("salon_id", salon.ID).Warn("failed to create default templates")
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
		"salon":   salon,
	})
}

// insertSalon derives a unique slug from the salon name.
func (h *Handler) insertSalon(c *gin.Context, salon *models.Salon) (uuid.UUID, error) {
	base := utils.Slugify(salon.Name)
	if base == "" {
		base = "salao"
	}
	salon.Slug = base
	for attempt := 0; ; attempt++ {
		id, err := h.gw().Insert(c.Request.Context(), "salons", salon.Values())
		if err == nil || !errors.Is(err, gateway.ErrConflict) || attempt == 4 {
			return id, err
		}
		salon.Slug = base + "-" + uuid.NewString()[:6]
	}
}

func (h *Handler) createDefaultTemplates(c *gin.Context, salonID uuid.UUID) error {
	for _, kind := range []models.TemplateType{models.TemplateReminder, models.TemplateConfirmation} {
		tpl := models.MessageTemplate{
			SalonID:  salonID,
			Type:     kind,
			Message:  models.DefaultTemplates[kind],
			IsActive: true,
		}
		if _, err := h.gw().Insert(c.Request.Context(), "message_templates", tpl.Values()); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var user models.User
	if err := h.gw().Get(c.Request.Context(), gateway.From("users").Eq("email", email), &user); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := h.now().UTC()
	if err := h.gw().Update(c.Request.Context(), "users", user.ID, map[string]interface{}{"last_login": now}); err != nil {
		h.Log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	token, ok := h.issueToken(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) issueToken(c *gin.Context, user models.User) (string, bool) {
	token, err := h.Tokens.Generate(user.ID, user.SalonID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}
	c.SetCookie(sessionCookie, token, int(h.Tokens.Expiry.Seconds()), "/", "", true, true)
	return token, true
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := utils.UserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusInternalServerError, "User ID not found in context")
		return
	}

	var user models.User
	if err := h.gw().Get(c.Request.Context(), gateway.From("users").Eq("id", userID), &user); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		utils.RespondWithStoreError(c, err)
		return
	}

	var salon models.Salon
	if err := h.gw().Get(c.Request.Context(), gateway.From("salons").Eq("id", user.SalonID), &salon); err != nil {
		utils.RespondWithStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"salon": salon,
	})
}
