package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
	"agendapro-backend/services"
	"agendapro-backend/store"
	"agendapro-backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []services.Message
}

func (*fakeMessenger) Name() string { return "fake" }

func (m *fakeMessenger) Send(_ context.Context, msg services.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "wamid." + uuid.NewString()[:8], nil
}

func (m *fakeMessenger) messages() []services.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.Message(nil), m.sent...)
}

type recordingPayments struct {
	requests []services.PaymentRequest
}

func (p *recordingPayments) CreateIntent(_ context.Context, req services.PaymentRequest) (services.PaymentHandle, error) {
	p.requests = append(p.requests, req)
	return services.PaymentHandle{ID: "pi_test", ClientSecret: "pi_test_secret", Status: "requires_payment_method", Amount: int64(req.Amount * 100), Currency: req.Currency}, nil
}

// testEnv is a salon with one professional, one service and one client on
// the in-memory gateway.
type testEnv struct {
	gw        *gateway.Memory
	h         *Handler
	router    *gin.Engine
	messenger *fakeMessenger
	tokens    utils.TokenIssuer
	now       time.Time

	salon        models.Salon
	professional uuid.UUID
	service      uuid.UUID
	client       uuid.UUID
	token        string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := quietLogger()
	env := &testEnv{
		gw:        gateway.NewMemory(),
		messenger: &fakeMessenger{},
		tokens:    utils.TokenIssuer{Secret: "test-secret", Expiry: time.Hour},
		now:       time.Date(2024, time.May, 9, 10, 0, 0, 0, time.UTC),
	}

	env.salon = models.Salon{ID: uuid.New(), Name: "Studio Bela", Slug: "studio-bela", WhatsAppReminders: true}
	_, err := env.gw.Insert(ctx, "salons", env.salon.Values())
	require.NoError(t, err)
	env.professional, err = env.gw.Insert(ctx, "professionals", models.Professional{SalonID: env.salon.ID, Name: "Ana"}.Values())
	require.NoError(t, err)
	env.service, err = env.gw.Insert(ctx, "services", models.Service{SalonID: env.salon.ID, ProfessionalID: env.professional, Name: "Corte", Duration: 30, Price: 80}.Values())
	require.NoError(t, err)
	env.client, err = env.gw.Insert(ctx, "clients", models.Client{SalonID: env.salon.ID, Name: "Maria", Phone: "11999990000", WhatsApp: "11999990000"}.Values())
	require.NoError(t, err)

	userID, err := env.gw.Insert(ctx, "users", models.User{SalonID: env.salon.ID, Email: "dona@studiobela.com", Name: "Dona", Role: models.RoleAdmin}.Values())
	require.NoError(t, err)
	env.token, err = env.tokens.Generate(userID, env.salon.ID)
	require.NoError(t, err)

	env.h = New(Handler{
		Sessions:     store.NewRegistry(env.gw, log),
		Notifier:     services.NewNotifier(env.gw, env.messenger, log),
		Tokens:       env.tokens,
		BookingTimes: []string{"13:30", "14:00", "14:30"},
		Currency:     "brl",
		Log:          log,
	})
	env.h.now = func() time.Time { return env.now }
	env.router = env.routes()
	return env
}

func (env *testEnv) routes() *gin.Engine {
	r := gin.New()
	h := env.h
	auth := env.tokens.Middleware()

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", auth, h.Me)

	r.GET("/api/salons/:slug", h.GetSalonBySlug)
	r.GET("/api/salons/:slug/availability", h.GetAvailability)
	r.POST("/api/appointments", h.CreateBooking)
	r.POST("/api/whatsapp/send", h.SendWhatsApp)
	r.POST("/api/payments/create", h.CreatePayment)

	private := r.Group("/api", auth)
	private.GET("/dashboard", h.GetDashboardOverview)
	private.GET("/reports", h.GetReportAnalytics)
	private.GET("/appointments", h.GetAppointments)
	private.POST("/appointments/manual", h.CreateAppointment)
	private.PATCH("/appointments/:id", h.UpdateAppointment)
	private.DELETE("/appointments/:id", h.DeleteAppointment)
	private.POST("/services", h.CreateService)
	private.GET("/services", h.GetServices)
	private.DELETE("/services/:id", h.DeleteService)
	private.POST("/clients", h.CreateClient)
	private.GET("/clients", h.GetClients)
	private.DELETE("/clients/:id", h.DeleteClient)
	private.GET("/professionals", h.GetProfessionals)
	private.POST("/professionals", h.AddProfessional)
	private.GET("/settings", h.GetSettings)
	private.PUT("/settings", h.UpdateSettings)
	private.PUT("/settings/templates/:type", h.UpdateTemplate)
	private.GET("/notifications", h.GetNotifications)
	private.POST("/reminders/run", h.RunReminders)
	return r
}

// appointment inserts an appointment for the fixture client and service.
func (env *testEnv) appointment(t *testing.T, day models.Date, clock string, status models.AppointmentStatus, payment models.PaymentStatus) uuid.UUID {
	t.Helper()
	id, err := env.gw.Insert(context.Background(), "appointments", models.Appointment{
		SalonID:        env.salon.ID,
		ClientID:       env.client,
		ServiceID:      env.service,
		ProfessionalID: env.professional,
		Date:           day,
		Time:           clock,
		Duration:       30,
		Price:          80,
		Status:         status,
		PaymentStatus:  payment,
	}.Values())
	require.NoError(t, err)
	return id
}

func notificationsFor(salonID uuid.UUID) gateway.Query {
	return gateway.From("notification_logs").Eq("salon_id", salonID)
}

func (env *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) authed(method, path string, body interface{}) *httptest.ResponseRecorder {
	return env.do(method, path, body, env.token)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, w.Code, w.Body.String())
}
