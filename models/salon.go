package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type BusinessType string

const (
	BusinessSalon      BusinessType = "salon"
	BusinessBarbershop BusinessType = "barbershop"
	BusinessClinic     BusinessType = "clinic"
	BusinessSpa        BusinessType = "spa"
	BusinessNails      BusinessType = "nails"
)

type Salon struct {
	ID                uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name              string       `json:"name" gorm:"not null"`
	Slug              string       `json:"slug" gorm:"uniqueIndex;not null"`
	Address           string       `json:"address"`
	Phone             string       `json:"phone,omitempty"`
	WhatsApp          string       `json:"whatsapp"`
	BusinessType      BusinessType `json:"business_type" gorm:"type:varchar(20);default:'salon'"`
	WorkingHours      JSONB        `json:"working_hours" gorm:"type:jsonb;default:'{}'"`
	WhatsAppReminders bool         `json:"whatsapp_reminders" gorm:"default:true"`
	EmailReminders    bool         `json:"email_reminders" gorm:"default:false"`
	CreatedAt         *time.Time   `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`
}

func (Salon) TableName() string { return "salons" }

func (s Salon) Values() map[string]interface{} {
	v := map[string]interface{}{
		"name":               s.Name,
		"slug":               s.Slug,
		"address":            s.Address,
		"phone":              s.Phone,
		"whatsapp":           s.WhatsApp,
		"business_type":      string(s.BusinessType),
		"working_hours":      s.WorkingHours,
		"whatsapp_reminders": s.WhatsAppReminders,
		"email_reminders":    s.EmailReminders,
	}
	if s.ID != uuid.Nil {
		v["id"] = s.ID
	}
	return v
}

type SalonPatch struct {
	Name              *string       `json:"name"`
	Address           *string       `json:"address"`
	Phone             *string       `json:"phone"`
	WhatsApp          *string       `json:"whatsapp"`
	BusinessType      *BusinessType `json:"business_type"`
	WorkingHours      JSONB         `json:"working_hours"`
	WhatsAppReminders *bool         `json:"whatsapp_reminders"`
	EmailReminders    *bool         `json:"email_reminders"`
}

func (p SalonPatch) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Address != nil {
		f["address"] = *p.Address
	}
	if p.Phone != nil {
		f["phone"] = *p.Phone
	}
	if p.WhatsApp != nil {
		f["whatsapp"] = *p.WhatsApp
	}
	if p.BusinessType != nil {
		f["business_type"] = string(*p.BusinessType)
	}
	if p.WorkingHours != nil {
		f["working_hours"] = p.WorkingHours
	}
	if p.WhatsAppReminders != nil {
		f["whatsapp_reminders"] = *p.WhatsAppReminders
	}
	if p.EmailReminders != nil {
		f["email_reminders"] = *p.EmailReminders
	}
	return f
}

// DefaultWorkingHours is applied to salons registered without hours.
func DefaultWorkingHours() JSONB {
	return JSONB{
		"monday":    map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
		"tuesday":   map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
		"wednesday": map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
		"thursday":  map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
		"friday":    map[string]interface{}{"open": "09:00", "close": "18:00", "closed": false},
		"saturday":  map[string]interface{}{"open": "09:00", "close": "16:00", "closed": false},
		"sunday":    map[string]interface{}{"open": "09:00", "close": "16:00", "closed": true},
	}
}

type Professional struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID     uuid.UUID  `json:"salon_id" gorm:"type:uuid;index;not null"`
	Name        string     `json:"name" gorm:"not null"`
	Specialties JSONList   `json:"specialties" gorm:"type:jsonb;default:'[]'"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`
}

func (Professional) TableName() string { return "professionals" }

func (p Professional) Values() map[string]interface{} {
	specialties := p.Specialties
	if specialties == nil {
		specialties = JSONList{}
	}
	v := map[string]interface{}{
		"salon_id":    p.SalonID,
		"name":        p.Name,
		"specialties": specialties,
	}
	if p.ID != uuid.Nil {
		v["id"] = p.ID
	}
	return v
}

// Custom JSONB type for working hours
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		s, isString := value.(string)
		if !isString {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, &j)
}

type JSONList []string

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *JSONList) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		s, isString := value.(string)
		if !isString {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, l)
}
