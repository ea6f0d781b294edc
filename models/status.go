package models

import (
	"errors"
	"fmt"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
	StatusCompleted AppointmentStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
	PaymentCash PaymentMethod = "cash"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusNoShow, StatusCancelled},
	StatusCancelled: nil,
	StatusNoShow:    nil,
	StatusCompleted: nil,
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentPaid},
	PaymentPaid:     {PaymentRefunded},
	PaymentRefunded: nil,
}

func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// Terminal reports whether no further status change is allowed.
func (s AppointmentStatus) Terminal() bool {
	return s.Valid() && len(appointmentTransitions[s]) == 0
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentPix, PaymentCash:
		return true
	}
	return false
}

// CanTransition reports whether an appointment may move from one status to
// another. Rewriting the current value is always allowed.
func CanTransition(from, to AppointmentStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionPayment(from, to PaymentStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError names the rejected move. It matches ErrInvalidTransition.
type TransitionError struct {
	Field string
	From  string
	To    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot change from %q to %q", e.Field, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
