package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/services"
	"agendapro-backend/store"
	"agendapro-backend/utils"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	Sessions     *store.Registry
	Notifier     *services.Notifier
	Payments     services.Payments
	Reminders    *services.ReminderService
	Tokens       utils.TokenIssuer
	BookingTimes []string
	Currency     string
	// DefaultSalon receives public messages that name no salon.
	DefaultSalon uuid.UUID
	// Location decides the calendar day; nil means UTC.
	Location *time.Location
	Log      logrus.FieldLogger

	now func() time.Time
}

func New(h Handler) *Handler {
	if h.Payments == nil {
		h.Payments = services.DisabledPayments{}
	}
	if h.Log == nil {
		h.Log = logrus.StandardLogger()
	}
	if h.Notifier == nil {
		h.Notifier = services.NewNotifier(h.Sessions.Gateway(), services.LogMessenger{Log: h.Log}, h.Log)
	}
	if h.DefaultSalon == uuid.Nil {
		h.DefaultSalon = store.DefaultSalonID
	}
	if h.now == nil {
		h.now = time.Now
	}
	return &h
}

func (h *Handler) today() models.Date {
	return utils.Today(h.now(), h.Location)
}

func (h *Handler) gw() gateway.Gateway {
	return h.Sessions.Gateway()
}

// session returns the stores of the authenticated user's salon.
func (h *Handler) session(c *gin.Context) (*store.Session, bool) {
	salonID, ok := utils.SalonID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Salon ID not found in context")
		return nil, false
	}
	return h.Sessions.Session(salonID), true
}

func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}
