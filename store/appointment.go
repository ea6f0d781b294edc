package store

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

// Display names used when a joined row is missing.
const (
	fallbackClientName       = "Cliente"
	fallbackServiceName      = "Serviço"
	fallbackProfessionalName = "Profissional"
)

type AppointmentStore struct {
	gw  gateway.Gateway
	rec recorder

	salonID uuid.UUID

	mu    sync.RWMutex
	items []models.Appointment

	// writeMu orders updates so each one sees the status left by the last.
	writeMu sync.Mutex
}

func NewAppointmentStore(gw gateway.Gateway, salonID uuid.UUID, log logrus.FieldLogger) *AppointmentStore {
	return &AppointmentStore{
		gw:      gw,
		rec:     newRecorder("appointment", salonID, log),
		salonID: salonID,
	}
}

func (s *AppointmentStore) query() gateway.Query {
	return gateway.From(tableAppointments).
		Join(tableClients, "client_id", "name", "client_name").
		Join(tableClients, "client_id", "phone", "client_phone").
		Join(tableServices, "service_id", "name", "service_name").
		Join(tableProfessionals, "professional_id", "name", "professional_name").
		Eq("salon_id", s.salonID)
}

// Fetch replaces the snapshot with the salon's appointments ordered by time,
// optionally restricted to one day. An unconfigured gateway yields an empty
// snapshot and no error; any other failure leaves the snapshot as it was.
func (s *AppointmentStore) Fetch(ctx context.Context, date *models.Date) error {
	q := s.query()
	if date != nil {
		q = q.Eq("date", *date)
	}
	q = q.OrderBy("time")

	var rows []models.Appointment
	if err := s.gw.Select(ctx, q, &rows); err != nil {
		if notConfigured(err) {
			s.rec.log.Warn("data gateway not configured, using empty appointment list")
			s.replace(nil)
			return s.rec.done("fetch", nil)
		}
		return s.rec.done("fetch", remote("fetch appointments", err))
	}
	for i := range rows {
		fillDisplayNames(&rows[i])
	}
	s.replace(rows)
	return s.rec.done("fetch", nil)
}

func fillDisplayNames(a *models.Appointment) {
	if a.ClientName == "" {
		a.ClientName = fallbackClientName
	}
	if a.ServiceName == "" {
		a.ServiceName = fallbackServiceName
	}
	if a.ProfessionalName == "" {
		a.ProfessionalName = fallbackProfessionalName
	}
}

func (s *AppointmentStore) replace(rows []models.Appointment) {
	if rows == nil {
		rows = []models.Appointment{}
	}
	s.mu.Lock()
	s.items = rows
	s.mu.Unlock()
}

// Create inserts a under this store's salon and appends it with the assigned id.
func (s *AppointmentStore) Create(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	if err := validateAppointment(a); err != nil {
		return models.Appointment{}, s.rec.done("create", err)
	}
	a.ID = uuid.Nil
	a.SalonID = s.salonID

	id, err := s.gw.Insert(ctx, tableAppointments, a.Values())
	if err != nil {
		return models.Appointment{}, s.rec.done("create", remote("insert appointment", err))
	}
	a.ID = id

	s.mu.Lock()
	s.items = append(s.items, a)
	s.mu.Unlock()
	return a, s.rec.done("create", nil)
}

func validateAppointment(a models.Appointment) error {
	switch {
	case a.ClientID == uuid.Nil:
		return invalid("client_id", "client is required")
	case a.ServiceID == uuid.Nil:
		return invalid("service_id", "service is required")
	case a.ProfessionalID == uuid.Nil:
		return invalid("professional_id", "professional is required")
	case a.Date.IsZero():
		return invalid("date", "date is required")
	case a.Duration <= 0:
		return invalid("duration", "duration must be greater than zero")
	case a.Price < 0:
		return invalid("price", "price cannot be negative")
	case !a.Status.Valid():
		return invalid("status", "unknown status "+string(a.Status))
	case !a.PaymentStatus.Valid():
		return invalid("payment_status", "unknown payment status "+string(a.PaymentStatus))
	case a.PaymentMethod != "" && !a.PaymentMethod.Valid():
		return invalid("payment_method", "unknown payment method "+string(a.PaymentMethod))
	}
	if _, err := models.ParseClock(a.Time); err != nil {
		return invalid("time", err.Error())
	}
	return nil
}

func validateAppointmentPatch(p models.AppointmentPatch) error {
	if len(p.Fields()) == 0 {
		return invalid("", "no fields to update")
	}
	switch {
	case p.Status != nil && !p.Status.Valid():
		return invalid("status", "unknown status "+string(*p.Status))
	case p.PaymentStatus != nil && !p.PaymentStatus.Valid():
		return invalid("payment_status", "unknown payment status "+string(*p.PaymentStatus))
	case p.PaymentMethod != nil && !p.PaymentMethod.Valid():
		return invalid("payment_method", "unknown payment method "+string(*p.PaymentMethod))
	case p.Duration != nil && *p.Duration <= 0:
		return invalid("duration", "duration must be greater than zero")
	case p.Price != nil && *p.Price < 0:
		return invalid("price", "price cannot be negative")
	case p.Date != nil && p.Date.IsZero():
		return invalid("date", "date is required")
	}
	if p.Time != nil {
		if _, err := models.ParseClock(*p.Time); err != nil {
			return invalid("time", err.Error())
		}
	}
	return nil
}

// Update writes patch to the remote row and merges it into the snapshot.
// Status and payment status changes must follow the transition table; the
// current values come from the snapshot, or from the gateway when the
// appointment is not cached.
func (s *AppointmentStore) Update(ctx context.Context, id uuid.UUID, patch models.AppointmentPatch) (models.Appointment, error) {
	updated, _, err := s.Change(ctx, id, patch)
	return updated, err
}

// Change is Update that also returns the appointment as it was before the
// write.
func (s *AppointmentStore) Change(ctx context.Context, id uuid.UUID, patch models.AppointmentPatch) (updated, previous models.Appointment, err error) {
	if err := validateAppointmentPatch(patch); err != nil {
		return models.Appointment{}, models.Appointment{}, s.rec.done("update", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current, ok := s.Get(id)
	if !ok {
		if err := s.gw.Get(ctx, s.query().Eq("id", id), &current); err != nil {
			return models.Appointment{}, models.Appointment{}, s.rec.done("update", remote("load appointment", err))
		}
		fillDisplayNames(&current)
	}
	if err := checkTransitions(current, patch); err != nil {
		return models.Appointment{}, models.Appointment{}, s.rec.done("update", err)
	}

	if err := s.gw.Update(ctx, tableAppointments, id, patch.Fields()); err != nil {
		return models.Appointment{}, models.Appointment{}, s.rec.done("update", remote("update appointment", err))
	}
	previous = current

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
	return current, previous, s.rec.done("update", nil)
}

func checkTransitions(current models.Appointment, patch models.AppointmentPatch) error {
	if patch.Status != nil && !models.CanTransition(current.Status, *patch.Status) {
		return &models.TransitionError{Field: "status", From: string(current.Status), To: string(*patch.Status)}
	}
	if patch.PaymentStatus != nil && !models.CanTransitionPayment(current.PaymentStatus, *patch.PaymentStatus) {
		return &models.TransitionError{Field: "payment_status", From: string(current.PaymentStatus), To: string(*patch.PaymentStatus)}
	}
	return nil
}

// Delete removes the remote row and drops it from the snapshot. Deleting an
// id that no longer exists is not an error.
func (s *AppointmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, cached := s.Get(id); !cached {
		ok, err := owned(ctx, s.gw, tableAppointments, s.salonID, id)
		if err != nil {
			return s.rec.done("delete", remote("load appointment", err))
		}
		if !ok {
			// Missing or owned by another salon.
			return s.rec.done("delete", nil)
		}
	}
	if err := s.gw.Delete(ctx, tableAppointments, id); err != nil && !errors.Is(err, gateway.ErrNotFound) {
		return s.rec.done("delete", remote("delete appointment", err))
	}
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, a := range s.items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return s.rec.done("delete", nil)
}

// Snapshot returns a copy of the cached appointments.
func (s *AppointmentStore) Snapshot() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, len(s.items))
	copy(out, s.items)
	return out
}

func (s *AppointmentStore) Get(id uuid.UUID) (models.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.items {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// QueryByDate returns cached appointments on the given calendar day.
func (s *AppointmentStore) QueryByDate(date models.Date) []models.Appointment {
	return s.filter(func(a models.Appointment) bool { return a.Date == date })
}

func (s *AppointmentStore) QueryByStatus(status models.AppointmentStatus) []models.Appointment {
	return s.filter(func(a models.Appointment) bool { return a.Status == status })
}

func (s *AppointmentStore) filter(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Appointment{}
	for _, a := range s.items {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// AvailableTimes returns the candidate start times on date for which a
// booking of the given duration does not overlap any cached, non-cancelled
// appointment of the professional. Candidates are returned in input order.
func (s *AppointmentStore) AvailableTimes(date models.Date, professionalID uuid.UUID, duration int, candidates []string) []string {
	type window struct{ start, end int }
	var busy []window
	for _, a := range s.QueryByDate(date) {
		if a.ProfessionalID != professionalID || a.Status == models.StatusCancelled {
			continue
		}
		start, end, err := a.Window()
		if err != nil {
			continue
		}
		busy = append(busy, window{start, end})
	}

	free := []string{}
	for _, c := range candidates {
		start, err := models.ParseClock(c)
		if err != nil {
			continue
		}
		end := start + duration
		overlaps := false
		for _, b := range busy {
			if start < b.end && b.start < end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			free = append(free, c)
		}
	}
	return free
}
