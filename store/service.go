package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

type ServiceStore struct {
	gw  gateway.Gateway
	rec recorder

	salonID uuid.UUID

	mu    sync.RWMutex
	items []models.Service
}

func NewServiceStore(gw gateway.Gateway, salonID uuid.UUID, log logrus.FieldLogger) *ServiceStore {
	return &ServiceStore{
		gw:      gw,
		rec:     newRecorder("service", salonID, log),
		salonID: salonID,
	}
}

func (s *ServiceStore) query() gateway.Query {
	return gateway.From(tableServices).
		Join(tableProfessionals, "professional_id", "name", "professional_name").
		Eq("salon_id", s.salonID)
}

// Fetch replaces the snapshot with the salon's services. Failure semantics
// match AppointmentStore.Fetch.
func (s *ServiceStore) Fetch(ctx context.Context) error {
	var rows []models.Service
	if err := s.gw.Select(ctx, s.query().OrderBy("name"), &rows); err != nil {
		if notConfigured(err) {
			s.rec.log.Warn("data gateway not configured, using empty service list")
			s.replace(nil)
			return s.rec.done("fetch", nil)
		}
		return s.rec.done("fetch", remote("fetch services", err))
	}
	for i := range rows {
		if rows[i].ProfessionalName == "" {
			rows[i].ProfessionalName = fallbackProfessionalName
		}
	}
	s.replace(rows)
	return s.rec.done("fetch", nil)
}

func (s *ServiceStore) replace(rows []models.Service) {
	if rows == nil {
		rows = []models.Service{}
	}
	s.mu.Lock()
	s.items = rows
	s.mu.Unlock()
}

// Create validates svc before touching the gateway.
func (s *ServiceStore) Create(ctx context.Context, svc models.Service) (models.Service, error) {
	svc.Name = strings.TrimSpace(svc.Name)
	if err := validateService(svc); err != nil {
		return models.Service{}, s.rec.done("create", err)
	}
	if svc.Category != nil && *svc.Category == "" {
		svc.Category = nil
	}
	svc.ID = uuid.Nil
	svc.SalonID = s.salonID

	id, err := s.gw.Insert(ctx, tableServices, svc.Values())
	if err != nil {
		return models.Service{}, s.rec.done("create", remote("insert service", err))
	}
	svc.ID = id

	s.mu.Lock()
	s.items = append(s.items, svc)
	s.mu.Unlock()
	return svc, s.rec.done("create", nil)
}

func validateService(svc models.Service) error {
	switch {
	case svc.Name == "":
		return invalid("name", "service name is required")
	case svc.Duration <= 0:
		return invalid("duration", "duration must be greater than zero")
	case svc.Price <= 0:
		return invalid("price", "price must be greater than zero")
	case svc.ProfessionalID == uuid.Nil:
		return invalid("professional_id", "professional is required")
	}
	return nil
}

func validateServicePatch(p *models.ServicePatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name", "service name is required")
		}
		p.Name = &name
	}
	switch {
	case p.Duration != nil && *p.Duration <= 0:
		return invalid("duration", "duration must be greater than zero")
	case p.Price != nil && *p.Price <= 0:
		return invalid("price", "price must be greater than zero")
	case p.ProfessionalID != nil && *p.ProfessionalID == uuid.Nil:
		return invalid("professional_id", "professional is required")
	}
	if len(p.Fields()) == 0 {
		return invalid("", "no fields to update")
	}
	return nil
}

func (s *ServiceStore) Update(ctx context.Context, id uuid.UUID, patch models.ServicePatch) (models.Service, error) {
	if err := validateServicePatch(&patch); err != nil {
		return models.Service{}, s.rec.done("update", err)
	}

	current, ok := s.Get(id)
	if !ok {
		if err := s.gw.Get(ctx, s.query().Eq("id", id), &current); err != nil {
			return models.Service{}, s.rec.done("update", remote("load service", err))
		}
	}
	if err := s.gw.Update(ctx, tableServices, id, patch.Fields()); err != nil {
		return models.Service{}, s.rec.done("update", remote("update service", err))
	}

	patch.ApplyTo(&current)
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			patch.ApplyTo(&s.items[i])
			current = s.items[i]
			break
		}
	}
	s.mu.Unlock()
	return current, s.rec.done("update", nil)
}

func (s *ServiceStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, cached := s.Get(id); !cached {
		ok, err := owned(ctx, s.gw, tableServices, s.salonID, id)
		if err != nil {
			return s.rec.done("delete", remote("load service", err))
		}
		if !ok {
			// Missing or owned by another salon.
			return s.rec.done("delete", nil)
		}
	}
	if err := s.gw.Delete(ctx, tableServices, id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
		return s.rec.done("delete", remote("delete service", err))
	}
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, svc := range s.items {
		if svc.ID != id {
			kept = append(kept, svc)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return s.rec.done("delete", nil)
}

func (s *ServiceStore) Snapshot() []models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Service, len(s.items))
	copy(out, s.items)
	return out
}

func (s *ServiceStore) Get(id uuid.UUID) (models.Service, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range s.items {
		if svc.ID == id {
			return svc, true
		}
	}
	return models.Service{}, false
}
