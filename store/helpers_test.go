package store

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// countingGateway counts every call that reaches the wrapped gateway.
type countingGateway struct {
	gateway.Gateway
	calls atomic.Int32
}

func (c *countingGateway) Select(ctx context.Context, q gateway.Query, dest interface{}) error {
	c.calls.Add(1)
	return c.Gateway.Select(ctx, q, dest)
}

func (c *countingGateway) Get(ctx context.Context, q gateway.Query, dest interface{}) error {
	c.calls.Add(1)
	return c.Gateway.Get(ctx, q, dest)
}

func (c *countingGateway) Insert(ctx context.Context, table string, values map[string]interface{}) (uuid.UUID, error) {
	c.calls.Add(1)
	return c.Gateway.Insert(ctx, table, values)
}

func (c *countingGateway) Update(ctx context.Context, table string, id uuid.UUID, fields map[string]interface{}) error {
	c.calls.Add(1)
	return c.Gateway.Update(ctx, table, id, fields)
}

func (c *countingGateway) Delete(ctx context.Context, table string, id uuid.UUID) error {
	c.calls.Add(1)
	return c.Gateway.Delete(ctx, table, id)
}

var errUnreachable = errors.New("connection refused")

// brokenGateway fails every call.
type brokenGateway struct{}

func (brokenGateway) Select(context.Context, gateway.Query, interface{}) error {
	return errUnreachable
}

func (brokenGateway) Get(context.Context, gateway.Query, interface{}) error {
	return errUnreachable
}

func (brokenGateway) Insert(context.Context, string, map[string]interface{}) (uuid.UUID, error) {
	return uuid.Nil, errUnreachable
}

func (brokenGateway) Update(context.Context, string, uuid.UUID, map[string]interface{}) error {
	return errUnreachable
}

func (brokenGateway) Delete(context.Context, string, uuid.UUID) error {
	return errUnreachable
}

type fixture struct {
	gw           *gateway.Memory
	salonID      uuid.UUID
	clientID     uuid.UUID
	serviceID    uuid.UUID
	professional uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{gw: gateway.NewMemory(), salonID: uuid.New()}

	var err error
	f.professional, err = f.gw.Insert(ctx, tableProfessionals, map[string]interface{}{"salon_id": f.salonID, "name": "Ana"})
	require.NoError(t, err)
	f.clientID, err = f.gw.Insert(ctx, tableClients, models.Client{SalonID: f.salonID, Name: "Maria", Phone: "11999990000"}.Values())
	require.NoError(t, err)
	f.serviceID, err = f.gw.Insert(ctx, tableServices, models.Service{SalonID: f.salonID, ProfessionalID: f.professional, Name: "Corte", Duration: 30, Price: 80}.Values())
	require.NoError(t, err)
	return f
}

func (f fixture) appointment(date models.Date, clock string) models.Appointment {
	return models.Appointment{
		ClientID:       f.clientID,
		ServiceID:      f.serviceID,
		ProfessionalID: f.professional,
		Date:           date,
		Time:           clock,
		Duration:       30,
		Price:          80,
		Status:         models.StatusPending,
		PaymentStatus:  models.PaymentPending,
	}
}
