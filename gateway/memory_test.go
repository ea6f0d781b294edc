package gateway

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendapro-backend/models"
)

func TestMemoryInsertSelectWithJoin(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	salonID := uuid.New()

	proID, err := m.Insert(ctx, "professionals", map[string]interface{}{"salon_id": salonID, "name": "Ana"})
	require.NoError(t, err)
	_, err = m.Insert(ctx, "services", models.Service{SalonID: salonID, ProfessionalID: proID, Name: "Corte", Duration: 30, Price: 50}.Values())
	require.NoError(t, err)
	_, err = m.Insert(ctx, "services", models.Service{SalonID: uuid.New(), ProfessionalID: proID, Name: "Outro salão", Duration: 30, Price: 50}.Values())
	require.NoError(t, err)

	var out []models.Service
	q := From("services").Join("professionals", "professional_id", "name", "professional_name").Eq("salon_id", salonID)
	require.NoError(t, m.Select(ctx, q, &out))

	require.Len(t, out, 1)
	assert.Equal(t, "Corte", out[0].Name)
	assert.Equal(t, "Ana", out[0].ProfessionalName)
	assert.Nil(t, out[0].Category)
}

func TestMemorySelectOrdersRows(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, tm := range []string{"14:00", "09:00", "10:30"} {
		_, err := m.Insert(ctx, "appointments", map[string]interface{}{"time": tm, "date": models.NewDate(2024, 5, 10)})
		require.NoError(t, err)
	}

	var out []models.Appointment
	require.NoError(t, m.Select(ctx, From("appointments").Eq("date", models.NewDate(2024, 5, 10)).OrderBy("time"), &out))
	require.Len(t, out, 3)
	assert.Equal(t, []string{"09:00", "10:30", "14:00"}, []string{out[0].Time, out[1].Time, out[2].Time})
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id, err := m.Insert(ctx, "services", map[string]interface{}{"name": "Corte", "category": "Cabelo"})
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "services", id, map[string]interface{}{"category": nil}))
	var s models.Service
	require.NoError(t, m.Get(ctx, From("services").Eq("id", id), &s))
	assert.Equal(t, id, s.ID)
	assert.Nil(t, s.Category)

	assert.ErrorIs(t, m.Update(ctx, "services", uuid.New(), map[string]interface{}{"name": "x"}), ErrNotFound)

	require.NoError(t, m.Delete(ctx, "services", id))
	require.NoError(t, m.Delete(ctx, "services", id))
	assert.Equal(t, 0, m.Len("services"))
	assert.ErrorIs(t, m.Get(ctx, From("services").Eq("id", id), &s), ErrNotFound)
}

func TestMemoryUniqueKeys(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	salonID := uuid.New()

	_, err := m.Insert(ctx, "clients", map[string]interface{}{"salon_id": salonID, "phone": "11999990000"})
	require.NoError(t, err)
	_, err = m.Insert(ctx, "clients", map[string]interface{}{"salon_id": salonID, "phone": "11999990000"})
	assert.ErrorIs(t, err, ErrConflict)

	// same phone in another salon is fine
	_, err = m.Insert(ctx, "clients", map[string]interface{}{"salon_id": uuid.New(), "phone": "11999990000"})
	assert.NoError(t, err)
}

func TestMemoryKeepsCallerID(t *testing.T) {
	m := NewMemory()
	want := uuid.New()
	got, err := m.Insert(context.Background(), "salons", map[string]interface{}{"id": want.String(), "slug": "studio"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnconfiguredFailsEveryCall(t *testing.T) {
	var g Gateway = Unconfigured{}
	ctx := context.Background()
	var out []models.Service
	assert.ErrorIs(t, g.Select(ctx, From("services"), &out), ErrNotConfigured)
	_, err := g.Insert(ctx, "services", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, g.Delete(ctx, "services", uuid.New()), ErrNotConfigured)
}
