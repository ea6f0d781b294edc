package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteLeavesOtherSalonsRows(t *testing.T) {
	f := newFixture(t)
	owner := seedAppointments(t, f, "09:00")
	appointmentID := owner.Snapshot()[0].ID
	ctx := context.Background()
	other := uuid.New()

	require.NoError(t, NewAppointmentStore(f.gw, other, quietLogger()).Delete(ctx, appointmentID))
	require.NoError(t, NewServiceStore(f.gw, other, quietLogger()).Delete(ctx, f.serviceID))
	require.NoError(t, NewClientStore(f.gw, other, quietLogger()).Delete(ctx, f.clientID))

	assert.Equal(t, 1, f.gw.Len(tableAppointments))
	assert.Equal(t, 1, f.gw.Len(tableServices))
	assert.Equal(t, 1, f.gw.Len(tableClients))

	require.NoError(t, owner.Fetch(ctx, nil))
	assert.Len(t, owner.Snapshot(), 1)
}

func TestDeleteChecksOwnershipWhenNotCached(t *testing.T) {
	f := newFixture(t)
	seedAppointments(t, f, "09:00")
	ctx := context.Background()

	// Nothing fetched yet, so ownership comes from the gateway.
	services := NewServiceStore(f.gw, f.salonID, quietLogger())
	require.NoError(t, services.Delete(ctx, f.serviceID))
	assert.Zero(t, f.gw.Len(tableServices))

	clients := NewClientStore(f.gw, f.salonID, quietLogger())
	require.NoError(t, clients.Delete(ctx, f.clientID))
	assert.Zero(t, f.gw.Len(tableClients))
}

func TestDeleteOwnershipLookupFailure(t *testing.T) {
	s := NewAppointmentStore(brokenGateway{}, uuid.New(), quietLogger())
	err := s.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, errUnreachable)
}
