package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer of a salon. Phone is the natural dedup key within a
// salon.
type Client struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID       uuid.UUID  `json:"salon_id" gorm:"type:uuid;not null;uniqueIndex:idx_salon_phone,priority:1"`
	Name          string     `json:"name" gorm:"not null"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone" gorm:"not null;uniqueIndex:idx_salon_phone,priority:2"`
	WhatsApp      string     `json:"whatsapp"`
	LoyaltyPoints int        `json:"loyalty_points" gorm:"default:0"`
	TotalVisits   int        `json:"total_visits" gorm:"default:0"`
	LastVisit     *time.Time `json:"last_visit,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`
}

func (Client) TableName() string { return "clients" }

func (c Client) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":       c.SalonID,
		"name":           c.Name,
		"email":          c.Email,
		"phone":          c.Phone,
		"whatsapp":       c.WhatsApp,
		"loyalty_points": c.LoyaltyPoints,
		"total_visits":   c.TotalVisits,
		"last_visit":     nil,
	}
	if c.ID != uuid.Nil {
		v["id"] = c.ID
	}
	if c.LastVisit != nil {
		v["last_visit"] = c.LastVisit.UTC()
	}
	return v
}

type ClientPatch struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Phone         *string    `json:"phone"`
	WhatsApp      *string    `json:"whatsapp"`
	LoyaltyPoints *int       `json:"loyalty_points"`
	TotalVisits   *int       `json:"total_visits"`
	LastVisit     *time.Time `json:"last_visit"`
}

func (p ClientPatch) Fields() map[string]interface{} {
	f := map[string]interface{}{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Email != nil {
		f["email"] = *p.Email
	}
	if p.Phone != nil {
		f["phone"] = *p.Phone
	}
	if p.WhatsApp != nil {
		f["whatsapp"] = *p.WhatsApp
	}
	if p.LoyaltyPoints != nil {
		f["loyalty_points"] = *p.LoyaltyPoints
	}
	if p.TotalVisits != nil {
		f["total_visits"] = *p.TotalVisits
	}
	if p.LastVisit != nil {
		f["last_visit"] = p.LastVisit.UTC()
	}
	return f
}

func (p ClientPatch) ApplyTo(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.WhatsApp != nil {
		c.WhatsApp = *p.WhatsApp
	}
	if p.LoyaltyPoints != nil {
		c.LoyaltyPoints = *p.LoyaltyPoints
	}
	if p.TotalVisits != nil {
		c.TotalVisits = *p.TotalVisits
	}
	if p.LastVisit != nil {
		t := *p.LastVisit
		c.LastVisit = &t
	}
}
