package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/store"
)

func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// StatusFor maps a store or gateway error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrConflict), errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, gateway.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrRemote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// RespondWithStoreError writes err with the status StatusFor picks. Remote
// failures are reported without their internal detail.
func RespondWithStoreError(c *gin.Context, err error) {
	code := StatusFor(err)
	_ = c.Error(err)
	switch code {
	case http.StatusBadGateway, http.StatusInternalServerError:
		RespondWithError(c, code, "Data service unavailable")
	case http.StatusServiceUnavailable:
		RespondWithError(c, code, "Data service not configured")
	case http.StatusNotFound:
		RespondWithError(c, code, "Not found")
	default:
		RespondWithError(c, code, errorMessage(err))
	}
}

func errorMessage(err error) string {
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var terr *models.TransitionError
	if errors.As(err, &terr) {
		return terr.Error()
	}
	if errors.Is(err, gateway.ErrConflict) {
		return "Record already exists"
	}
	return err.Error()
}
