package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendapro-backend/gateway"
	"agendapro-backend/models"
)

func TestServiceCreateRejectsNonPositiveWithoutRemoteCall(t *testing.T) {
	f := newFixture(t)
	gw := &countingGateway{Gateway: f.gw}
	s := NewServiceStore(gw, f.salonID, quietLogger())

	cases := []models.Service{
		{Name: "Cut", Duration: 0, Price: 50, ProfessionalID: f.professional},
		{Name: "Cut", Duration: 30, Price: 0, ProfessionalID: f.professional},
		{Name: "Cut", Duration: 30, Price: -5, ProfessionalID: f.professional},
		{Name: "   ", Duration: 30, Price: 50, ProfessionalID: f.professional},
		{Name: "Cut", Duration: 30, Price: 50},
	}
	for _, c := range cases {
		_, err := s.Create(context.Background(), c)
		assert.ErrorIs(t, err, ErrValidation)
	}

	assert.Zero(t, gw.calls.Load())
	assert.Empty(t, s.Snapshot())
}

func TestServiceValidationNamesField(t *testing.T) {
	s := NewServiceStore(gateway.NewMemory(), uuid.New(), quietLogger())
	_, err := s.Create(context.Background(), models.Service{Name: "Cut", Duration: 0, Price: 50, ProfessionalID: uuid.New()})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duration", verr.Field)
}

func TestServiceCreateTrimsNameAndNullsEmptyCategory(t *testing.T) {
	f := newFixture(t)
	s := NewServiceStore(f.gw, f.salonID, quietLogger())
	empty := ""

	created, err := s.Create(context.Background(), models.Service{Name: "  Escova  ", Duration: 40, Price: 60, ProfessionalID: f.professional, Category: &empty})
	require.NoError(t, err)
	assert.Equal(t, "Escova", created.Name)
	assert.Nil(t, created.Category)

	var row models.Service
	require.NoError(t, f.gw.Get(context.Background(), gateway.From(tableServices).Eq("id", created.ID), &row))
	assert.Equal(t, "Escova", row.Name)
	assert.Nil(t, row.Category)
	assert.Equal(t, f.salonID, row.SalonID)
}

func TestServiceFetchJoinsProfessional(t *testing.T) {
	f := newFixture(t)
	s := NewServiceStore(f.gw, f.salonID, quietLogger())
	require.NoError(t, s.Fetch(context.Background()))

	got := s.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, f.serviceID, got[0].ID)
	assert.Equal(t, "Ana", got[0].ProfessionalName)
}

func TestServiceUpdate(t *testing.T) {
	f := newFixture(t)
	s := NewServiceStore(f.gw, f.salonID, quietLogger())
	require.NoError(t, s.Fetch(context.Background()))
	before, _ := s.Get(f.serviceID)

	price := 95.0
	category := "Cabelo"
	updated, err := s.Update(context.Background(), f.serviceID, models.ServicePatch{Price: &price, Category: &category})
	require.NoError(t, err)

	want := before
	want.Price = price
	want.Category = &category
	assert.Equal(t, want, updated)

	zero := 0
	_, err = s.Update(context.Background(), f.serviceID, models.ServicePatch{Duration: &zero})
	assert.ErrorIs(t, err, ErrValidation)
	got, _ := s.Get(f.serviceID)
	assert.Equal(t, want, got)

	none := ""
	updated, err = s.Update(context.Background(), f.serviceID, models.ServicePatch{Category: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.Category)
}

func TestServiceDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	s := NewServiceStore(f.gw, f.salonID, quietLogger())
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.Delete(context.Background(), f.serviceID))
	assert.Empty(t, s.Snapshot())
	require.NoError(t, s.Delete(context.Background(), f.serviceID))
	assert.Equal(t, 0, f.gw.Len(tableServices))
}
