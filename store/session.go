package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

// Session groups the three stores of one salon.
type Session struct {
	SalonID      uuid.UUID
	Appointments *AppointmentStore
	Services     *ServiceStore
	Clients      *ClientStore
}

func NewSession(gw gateway.Gateway, salonID uuid.UUID, log logrus.FieldLogger) *Session {
	return &Session{
		SalonID:      salonID,
		Appointments: NewAppointmentStore(gw, salonID, log),
		Services:     NewServiceStore(gw, salonID, log),
		Clients:      NewClientStore(gw, salonID, log),
	}
}

// LoadDashboard fetches appointments, services and clients concurrently.
// Each store is populated on its own; one failing fetch does not undo the
// others. The first error is returned.
func (s *Session) LoadDashboard(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.Appointments.Fetch(ctx, nil) })
	g.Go(func() error { return s.Services.Fetch(ctx) })
	g.Go(func() error { return s.Clients.Fetch(ctx) })
	return g.Wait()
}

func (s *Session) Stats(today models.Date) DashboardStats {
	return ProjectStats(s.Appointments.Snapshot(), today)
}

// Registry hands out one Session per salon.
type Registry struct {
	gw  gateway.Gateway
	log logrus.FieldLogger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry(gw gateway.Gateway, log logrus.FieldLogger) *Registry {
	return &Registry{
		gw:       gw,
		log:      log,
		sessions: map[uuid.UUID]*Session{},
	}
}

func (r *Registry) Session(salonID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[salonID]
	if !ok {
		s = NewSession(r.gw, salonID, r.log)
		r.sessions[salonID] = s
	}
	return s
}

func (r *Registry) Gateway() gateway.Gateway {
	return r.gw
}
