package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusNoShow, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusNoShow, StatusConfirmed, false},
		{StatusCompleted, StatusCompleted, true},
		{StatusPending, "archived", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, CanTransitionPayment(PaymentPending, PaymentPaid))
	assert.True(t, CanTransitionPayment(PaymentPaid, PaymentRefunded))
	assert.True(t, CanTransitionPayment(PaymentPaid, PaymentPaid))
	assert.False(t, CanTransitionPayment(PaymentPending, PaymentRefunded))
	assert.False(t, CanTransitionPayment(PaymentRefunded, PaymentPaid))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusNoShow.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, AppointmentStatus("bogus").Terminal())
}

func TestTransitionErrorMatchesSentinel(t *testing.T) {
	var err error = &TransitionError{Field: "status", From: "pending", To: "completed"}
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), `"pending"`)
}
