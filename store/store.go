// Package store holds the per-salon entity stores. Each store keeps an
// in-memory snapshot of remote rows; the data gateway stays authoritative.
// A mutation touches the snapshot only after the gateway accepted the write.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/metrics"
)

// DefaultSalonID is the tenant used when no salon is given.
var DefaultSalonID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

const (
	tableAppointments  = "appointments"
	tableServices      = "services"
	tableClients       = "clients"
	tableProfessionals = "professionals"
)

type recorder struct {
	entity  string
	salonID uuid.UUID
	log     logrus.FieldLogger
}

func newRecorder(entity string, salonID uuid.UUID, log logrus.FieldLogger) recorder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return recorder{
		entity:  entity,
		salonID: salonID,
		log:     log.WithFields(logrus.Fields{"entity": entity, "salon_id": salonID}),
	}
}

// done records the outcome of op and logs failures. It returns err unchanged.
func (r recorder) done(op string, err error) error {
	metrics.RecordStoreOp(r.entity, op, err)
	if err == nil {
		return nil
	}
	entry := r.log.WithField("op", op).WithError(err)
	if errors.Is(err, ErrValidation) {
		entry.Warn("store operation rejected")
	} else {
		entry.Error("store operation failed")
	}
	return err
}

// notConfigured reports whether a read should fail soft to an empty snapshot.
func notConfigured(err error) bool {
	return errors.Is(err, gateway.ErrNotConfigured)
}

type rowID struct {
	ID uuid.UUID `json:"id" gorm:"column:id"`
}

// owned reports whether table holds a row id that belongs to salonID.
func owned(ctx context.Context, gw gateway.Gateway, table string, salonID, id uuid.UUID) (bool, error) {
	var row rowID
	err := gw.Get(ctx, gateway.From(table).Eq("salon_id", salonID).Eq("id", id), &row)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gateway.ErrNotFound):
		return false, nil
	}
	return false, err
}
