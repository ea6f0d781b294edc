package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID        uuid.UUID         `json:"salon_id" gorm:"type:uuid;index;not null"`
	ClientID       uuid.UUID         `json:"client_id" gorm:"type:uuid;index;not null"`
	ServiceID      uuid.UUID         `json:"service_id" gorm:"type:uuid;index;not null"`
	ProfessionalID uuid.UUID         `json:"professional_id" gorm:"type:uuid;index;not null"`
	Date           Date              `json:"date" gorm:"index;not null"`
	Time           string            `json:"time" gorm:"type:varchar(5);not null"` // HH:MM
	Duration       int               `json:"duration"`                             // in minutes
	Price          float64           `json:"price" gorm:"type:decimal(10,2);not null"`
	Status         AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentStatus  PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentMethod  PaymentMethod     `json:"payment_method,omitempty" gorm:"type:varchar(10)"`
	Notes          string            `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      *time.Time        `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`

	// Copied from joined rows at fetch time. Not authoritative and never
	// refreshed by updates.
	ClientName       string `json:"client_name,omitempty" gorm:"->;-:migration"`
	ClientPhone      string `json:"client_phone,omitempty" gorm:"->;-:migration"`
	ServiceName      string `json:"service_name,omitempty" gorm:"->;-:migration"`
	ProfessionalName string `json:"professional_name,omitempty" gorm:"->;-:migration"`
}

func (Appointment) TableName() string { return "appointments" }

// Values returns the persisted columns of a new appointment row.
func (a Appointment) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":        a.SalonID,
		"client_id":       a.ClientID,
		"service_id":      a.ServiceID,
		"professional_id": a.ProfessionalID,
		"date":            a.Date,
		"time":            a.Time,
		"duration":        a.Duration,
		"price":           a.Price,
		"status":          string(a.Status),
		"payment_status":  string(a.PaymentStatus),
		"payment_method":  nil,
		"notes":           nil,
	}
	if a.ID != uuid.Nil {
		v["id"] = a.ID
	}
	if a.PaymentMethod != "" {
		v["payment_method"] = string(a.PaymentMethod)
	}
	if a.Notes != "" {
		v["notes"] = a.Notes
	}
	return v
}

// Window returns the start and end of the appointment in minutes after midnight.
func (a Appointment) Window() (int, int, error) {
	start, err := ParseClock(a.Time)
	if err != nil {
		return 0, 0, err
	}
	return start, start + a.Duration, nil
}

// AppointmentPatch is a partial update; nil fields are left untouched.
type AppointmentPatch struct {
	ClientID       *uuid.UUID         `json:"client_id"`
	ServiceID      *uuid.UUID         `json:"service_id"`
	ProfessionalID *uuid.UUID         `json:"professional_id"`
	Date           *Date              `json:"date"`
	Time           *string            `json:"time"`
	Duration       *int               `json:"duration"`
	Price          *float64           `json:"price"`
	Status         *AppointmentStatus `json:"status"`
	PaymentStatus  *PaymentStatus     `json:"payment_status"`
	PaymentMethod  *PaymentMethod     `json:"payment_method"`
	Notes          *string            `json:"notes"`
}

func (p AppointmentPatch) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if p.ClientID != nil {
		f["client_id"] = *p.ClientID
	}
	if p.ServiceID != nil {
		f["service_id"] = *p.ServiceID
	}
	if p.ProfessionalID != nil {
		f["professional_id"] = *p.ProfessionalID
	}
	if p.Date != nil {
		f["date"] = *p.Date
	}
	if p.Time != nil {
		f["time"] = *p.Time
	}
	if p.Duration != nil {
		f["duration"] = *p.Duration
	}
	if p.Price != nil {
		f["price"] = *p.Price
	}
	if p.Status != nil {
		f["status"] = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		f["payment_status"] = string(*p.PaymentStatus)
	}
	if p.PaymentMethod != nil {
		f["payment_method"] = string(*p.PaymentMethod)
	}
	if p.Notes != nil {
		f["notes"] = *p.Notes
	}
	return f
}

func (p AppointmentPatch) ApplyTo(a *Appointment) {
	if p.ClientID != nil {
		a.ClientID = *p.ClientID
	}
	if p.ServiceID != nil {
		a.ServiceID = *p.ServiceID
	}
	if p.ProfessionalID != nil {
		a.ProfessionalID = *p.ProfessionalID
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.Time != nil {
		a.Time = *p.Time
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.Price != nil {
		a.Price = *p.Price
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		a.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		a.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ParseClock converts an "HH:MM" wall-clock string to minutes after midnight.
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, nil
}
