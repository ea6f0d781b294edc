// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLog records every outbound WhatsApp message, sent or failed.
type NotificationLog struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID       uuid.UUID  `json:"salon_id" gorm:"type:uuid;index;not null"`
	ClientID      *uuid.UUID `json:"client_id,omitempty" gorm:"type:uuid;index"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty" gorm:"type:uuid;index"`
	Type          string     `json:"type" gorm:"type:varchar(20)"`   // reminder, confirmation, manual
	Channel       string     `json:"channel" gorm:"type:varchar(20)"` // whatsapp, sms, log
	Recipient     string     `json:"recipient"`
	Message       string     `json:"message" gorm:"type:text"`
	Status        string     `json:"status" gorm:"type:varchar(20)"` // sent, failed
	ProviderID    string     `json:"provider_id,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty" gorm:"type:text"`
	SentAt        time.Time  `json:"sent_at"`
}

func (NotificationLog) TableName() string { return "notification_logs" }

func (l NotificationLog) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":       l.SalonID,
		"client_id":      nil,
		"appointment_id": nil,
		"type":           l.Type,
		"channel":        l.Channel,
		"recipient":      l.Recipient,
		"message":        l.Message,
		"status":         l.Status,
		"provider_id":    l.ProviderID,
		"error_message":  l.ErrorMessage,
		"sent_at":        l.SentAt.UTC(),
	}
	if l.ClientID != nil {
		v["client_id"] = *l.ClientID
	}
	if l.AppointmentID != nil {
		v["appointment_id"] = *l.AppointmentID
	}
	return v
}
