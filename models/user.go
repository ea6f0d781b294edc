package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProfessional Role = "professional"
	RoleClient       Role = "client"
)

type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID      uuid.UUID  `json:"salon_id" gorm:"type:uuid;index;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"password_hash,omitempty" gorm:"column:password_hash;not null"`
	Name         string     `json:"name" gorm:"not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty" gorm:"->;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }

// MarshalJSON leaves the password hash out of API responses. Decoding still
// reads it so gateway rows round-trip.
func (u User) MarshalJSON() ([]byte, error) {
	type public User
	p := public(u)
	p.PasswordHash = ""
	return json.Marshal(p)
}

func (u User) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":      u.SalonID,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
		"name":          u.Name,
		"role":          string(u.Role),
	}
	if u.ID != uuid.Nil {
		v["id"] = u.ID
	}
	return v
}
