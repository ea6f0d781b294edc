package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"11999990000", "+55 11 99999-0000", "(21) 97777-6666", "+1.415.555.0100"}
	invalid := []string{"", "abc", "12", "0119999900", "+55 11 9999-0000 ramal 2"}
	for _, p := range valid {
		assert.True(t, ValidatePhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidatePhone(p), p)
	}
	assert.Equal(t, "+5511999990000", NormalizePhone(" +55 (11) 99999-0000 "))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Studio Bela":             "studio-bela",
		"  Salão da Bia  ":        "salao-da-bia",
		"Barbearia Zé & Cia.":     "barbearia-ze-cia",
		"Espaço Ñandú 2024":       "espaco-nandu-2024",
		"---":                     "",
		"Clínica   Estética Luz!": "clinica-estetica-luz",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	remoteNotFound := fmt.Errorf("%w: load: %w", store.ErrRemote, gateway.ErrNotFound)
	tests := []struct {
		err  error
		code int
	}{
		{&store.ValidationError{Field: "name", Message: "name is required"}, http.StatusBadRequest},
		{remoteNotFound, http.StatusNotFound},
		{fmt.Errorf("insert: %w", gateway.ErrConflict), http.StatusConflict},
		{&models.TransitionError{Field: "status", From: "cancelled", To: "confirmed"}, http.StatusConflict},
		{fmt.Errorf("select: %w", gateway.ErrNotConfigured), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: timeout", store.ErrRemote), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusFor(tt.err), tt.err.Error())
	}
}

func TestRespondWithStoreError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithStoreError(c, &store.ValidationError{Field: "price", Message: "price must be greater than zero"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"price must be greater than zero"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondWithStoreError(c, fmt.Errorf("%w: dial tcp: connection refused", store.ErrRemote))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("segredo123", hash))
	assert.False(t, CheckPasswordHash("segredo124", hash))
}

func newAuthRouter(issuer TokenIssuer) *gin.Engine {
	r := gin.New()
	r.GET("/me", issuer.Middleware(), func(c *gin.Context) {
		userID, _ := UserID(c)
		salonID, _ := SalonID(c)
		c.JSON(http.StatusOK, gin.H{"user": userID, "salon": salonID})
	})
	return r
}

func TestTokenMiddleware(t *testing.T) {
	issuer := TokenIssuer{Secret: "s3cret", Expiry: time.Hour}
	r := newAuthRouter(issuer)
	userID, salonID := uuid.New(), uuid.New()

	token, err := issuer.Generate(userID, salonID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"user":%q,"salon":%q}`, userID, salonID), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	other, err := TokenIssuer{Secret: "other", Expiry: time.Hour}.Generate(userID, salonID)
	require.NoError(t, err)
	expired, err := TokenIssuer{Secret: "s3cret", Expiry: -time.Minute}.Generate(userID, salonID)
	require.NoError(t, err)
	for name, header := range map[string]string{
		"missing":      "",
		"wrong secret": "Bearer " + other,
		"expired":      "Bearer " + expired,
		"garbage":      "Bearer abc.def.ghi",
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestGenerateRequiresSecret(t *testing.T) {
	_, err := TokenIssuer{}.Generate(uuid.New(), uuid.New())
	assert.Error(t, err)
	assert.Len(t, GenerateJWTSecret(), 44)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, quietLogger())
	r := gin.New()
	r.POST("/book", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/book", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/book", nil)
	req.RemoteAddr = "198.51.100.9:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	rl.Cleanup(1)
	assert.Empty(t, rl.limiters)
}

func TestDates(t *testing.T) {
	first, last := MonthRange(models.NewDate(2024, time.February, 14))
	assert.Equal(t, models.NewDate(2024, time.February, 1), first)
	assert.Equal(t, models.NewDate(2024, time.February, 29), last)

	assert.Equal(t, 166, DaysBetween(models.NewDate(2023, time.December, 1), models.NewDate(2024, time.May, 15)))

	d, err := ParseDateParam("")
	require.NoError(t, err)
	assert.Nil(t, d)
	d, err = ParseDateParam("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, models.NewDate(2024, time.May, 10), *d)
	_, err = ParseDateParam("10/05/2024")
	assert.Error(t, err)

	saoPaulo := time.FixedZone("BRT", -3*3600)
	late := time.Date(2024, time.May, 10, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, models.NewDate(2024, time.May, 9), Today(late, saoPaulo))
	assert.Equal(t, models.NewDate(2024, time.May, 10), Today(late, nil))
}
