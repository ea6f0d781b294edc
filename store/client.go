package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

// PointsPerVisit is added to a client's loyalty balance on every completed
// appointment.
const PointsPerVisit = 10

type ClientStore struct {
	gw  gateway.Gateway
	rec recorder

	salonID uuid.UUID

	mu    sync.RWMutex
	items []models.Client
}

func NewClientStore(gw gateway.Gateway, salonID uuid.UUID, log logrus.FieldLogger) *ClientStore {
	return &ClientStore{
		gw:      gw,
		rec:     newRecorder("client", salonID, log),
		salonID: salonID,
	}
}

func (s *ClientStore) query() gateway.Query {
	return gateway.From(tableClients).Eq("salon_id", s.salonID)
}

// Fetch replaces the snapshot with the salon's clients ordered by name.
func (s *ClientStore) Fetch(ctx context.Context) error {
	var rows []models.Client
	if err := s.gw.Select(ctx, s.query().OrderBy("name"), &rows); err != nil {
		if notConfigured(err) {
			s.rec.log.Warn("data gateway not configured, using empty client list")
			s.replace(nil)
			return s.rec.done("fetch", nil)
		}
		return s.rec.done("fetch", remote("fetch clients", err))
	}
	s.replace(rows)
	return s.rec.done("fetch", nil)
}

func (s *ClientStore) replace(rows []models.Client) {
	if rows == nil {
		rows = []models.Client{}
	}
	s.mu.Lock()
	s.items = rows
	s.mu.Unlock()
}

func validateClient(c models.Client) error {
	switch {
	case c.Name == "":
		return invalid("name", "client name is required")
	case c.Phone == "":
		return invalid("phone", "phone is required")
	case c.LoyaltyPoints < 0:
		return invalid("loyalty_points", "loyalty points cannot be negative")
	case c.TotalVisits < 0:
		return invalid("total_visits", "total visits cannot be negative")
	}
	return nil
}

// Create inserts c. A second client with the same phone in this salon is
// rejected by the gateway with gateway.ErrConflict.
func (s *ClientStore) Create(ctx context.Context, c models.Client) (models.Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	if err := validateClient(c); err != nil {
		return models.Client{}, s.rec.done("create", err)
	}
	if c.WhatsApp == "" {
		c.WhatsApp = c.Phone
	}
	c.ID = uuid.Nil
	c.SalonID = s.salonID

	id, err := s.gw.Insert(ctx, tableClients, c.Values())
	if err != nil {
		return models.Client{}, s.rec.done("create", remote("insert client", err))
	}
	c.ID = id

	s.mu.Lock()
	s.items = append(s.items, c)
	s.mu.Unlock()
	return c, s.rec.done("create", nil)
}

func (s *ClientStore) Update(ctx context.Context, id uuid.UUID, patch models.ClientPatch) (models.Client, error) {
	if err := validateClientPatch(&patch); err != nil {
		return models.Client{}, s.rec.done("update", err)
	}
	return s.update(ctx, "update", id, patch)
}

func validateClientPatch(p *models.ClientPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return invalid("name", "client name is required")
		}
		p.Name = &name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if phone == "" {
			return invalid("phone", "phone is required")
		}
		p.Phone = &phone
	}
	switch {
	case len(p.Fields()) == 0:
		return invalid("", "no fields to update")
	case p.LoyaltyPoints != nil && *p.LoyaltyPoints < 0:
		return invalid("loyalty_points", "loyalty points cannot be negative")
	case p.TotalVisits != nil && *p.TotalVisits < 0:
		return invalid("total_visits", "total visits cannot be negative")
	}
	return nil
}

func (s *ClientStore) update(ctx context.Context, op string, id uuid.UUID, patch models.ClientPatch) (models.Client, error) {
	current, ok := s.GetByID(id)
	if !ok {
		if err := s.gw.Get(ctx, s.query().Eq("id", id), &current); err != nil {
			return models.Client{}, s.rec.done(op, remote("load client", err))
		}
	}
	if err := s.gw.Update(ctx, tableClients, id, patch.Fields()); err != nil {
		return models.Client{}, s.rec.done(op, remote("update client", err))
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
	return current, s.rec.done(op, nil)
}

func (s *ClientStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, cached := s.GetByID(id); !cached {
		ok, err := owned(ctx, s.gw, tableClients, s.salonID, id)
		if err != nil {
			return s.rec.done("delete", remote("load client", err))
		}
		if !ok {
			// Missing or owned by another salon.
			return s.rec.done("delete", nil)
		}
	}
	if err := s.gw.Delete(ctx, tableClients, id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
		return s.rec.done("delete", remote("delete client", err))
	}
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, c := range s.items {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return s.rec.done("delete", nil)
}

func (s *ClientStore) Snapshot() []models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Client, len(s.items))
	copy(out, s.items)
	return out
}

// GetByID looks in the snapshot only.
func (s *ClientStore) GetByID(id uuid.UUID) (models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.items {
		if c.ID == id {
			return c, true
		}
	}
	return models.Client{}, false
}

// FindByPhone asks the gateway for this salon's client with the given phone.
// It returns gateway.ErrNotFound (wrapped) when there is none.
func (s *ClientStore) FindByPhone(ctx context.Context, phone string) (models.Client, error) {
	var c models.Client
	if err := s.gw.Get(ctx, s.query().Eq("phone", strings.TrimSpace(phone)), &c); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return models.Client{}, remote("find client by phone", err)
		}
		return models.Client{}, s.rec.done("find_by_phone", remote("find client by phone", err))
	}
	return c, s.rec.done("find_by_phone", nil)
}

// FindOrCreateByPhone returns the existing client for c.Phone or creates c.
// When a concurrent booking wins the insert race, the unique (salon_id, phone)
// index rejects this insert and the winner's row is returned instead.
func (s *ClientStore) FindOrCreateByPhone(ctx context.Context, c models.Client) (models.Client, bool, error) {
	existing, err := s.FindByPhone(ctx, c.Phone)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gateway.ErrNotFound) {
		return models.Client{}, false, err
	}

	created, err := s.Create(ctx, c)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, gateway.ErrConflict) {
		return models.Client{}, false, err
	}
	existing, err = s.FindByPhone(ctx, c.Phone)
	if err != nil {
		return models.Client{}, false, err
	}
	return existing, false, nil
}

// RecordVisit counts a completed appointment towards the client's totals.
func (s *ClientStore) RecordVisit(ctx context.Context, id uuid.UUID, at time.Time) (models.Client, error) {
	current, ok := s.GetByID(id)
	if !ok {
		if err := s.gw.Get(ctx, s.query().Eq("id", id), &current); err != nil {
			return models.Client{}, s.rec.done("record_visit", remote("load client", err))
		}
	}
	visits := current.TotalVisits + 1
	points := current.LoyaltyPoints + PointsPerVisit
	at = at.UTC()
	return s.update(ctx, "record_visit", id, models.ClientPatch{
		TotalVisits:   &visits,
		LoyaltyPoints: &points,
		LastVisit:     &at,
	})
}
