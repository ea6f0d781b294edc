package models

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID        uuid.UUID  `json:"salon_id" gorm:"type:uuid;index;not null"`
	ProfessionalID uuid.UUID  `json:"professional_id" gorm:"type:uuid;index;not null"`
	Name           string     `json:"name" gorm:"not null"`
	Duration       int        `json:"duration"` // in minutes
	Price          float64    `json:"price" gorm:"type:decimal(10,2);not null"`
	Category       *string    `json:"category,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`

	ProfessionalName string `json:"professional_name,omitempty" gorm:"->;-:migration"`
}

func (Service) TableName() string { return "services" }

func (s Service) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":        s.SalonID,
		"professional_id": s.ProfessionalID,
		"name":            s.Name,
		"duration":        s.Duration,
		"price":           s.Price,
		"category":        nil,
	}
	if s.ID != uuid.Nil {
		v["id"] = s.ID
	}
	if s.Category != nil && *s.Category != "" {
		v["category"] = *s.Category
	}
	return v
}

type ServicePatch struct {
	Name           *string    `json:"name"`
	Duration       *int       `json:"duration"`
	Price          *float64   `json:"price"`
	ProfessionalID *uuid.UUID `json:"professional_id"`
	Category       *string    `json:"category"`
}

// Fields maps the patch to columns. An empty category clears the column.
func (p ServicePatch) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Duration != nil {
		f["duration"] = *p.Duration
	}
	if p.Price != nil {
		f["price"] = *p.Price
	}
	if p.ProfessionalID != nil {
		f["professional_id"] = *p.ProfessionalID
	}
	if p.Category != nil {
		if *p.Category == "" {
			f["category"] = nil
		} else {
			f["category"] = *p.Category
		}
	}
	return f
}

func (p ServicePatch) ApplyTo(s *Service) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.ProfessionalID != nil {
		s.ProfessionalID = *p.ProfessionalID
	}
	if p.Category != nil {
		if *p.Category == "" {
			s.Category = nil
		} else {
			c := *p.Category
			s.Category = &c
		}
	}
}
