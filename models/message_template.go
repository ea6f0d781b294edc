package models

import (
	"strings"

	"github.com/google/uuid"
)

type TemplateType string

const (
	TemplateReminder     TemplateType = "reminder"
	TemplateConfirmation TemplateType = "confirmation"
)

// MessageTemplate is a salon-specific WhatsApp text with [Placeholders].
type MessageTemplate struct {
	ID       uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	SalonID  uuid.UUID    `json:"salon_id" gorm:"type:uuid;not null;uniqueIndex:idx_salon_template_type,priority:1"`
	Type     TemplateType `json:"type" gorm:"type:varchar(20);not null;uniqueIndex:idx_salon_template_type,priority:2"`
	Message  string       `json:"message" gorm:"type:text;not null"`
	IsActive bool         `json:"is_active" gorm:"default:true"`
}

func (MessageTemplate) TableName() string { return "message_templates" }

func (t MessageTemplate) Values() map[string]interface{} {
	v := map[string]interface{}{
		"salon_id":  t.SalonID,
		"type":      string(t.Type),
		"message":   t.Message,
		"is_active": t.IsActive,
	}
	if t.ID != uuid.Nil {
		v["id"] = t.ID
	}
	return v
}

var DefaultTemplates = map[TemplateType]string{
	TemplateReminder:     "Olá [ClientName]! Lembrete: [Service] amanhã, [Date] às [Time] em [Salon].",
	TemplateConfirmation: "Olá [ClientName]! Seu agendamento de [Service] em [Date] às [Time] foi recebido por [Salon].",
}

// Render replaces [Key] placeholders with values.
func (t MessageTemplate) Render(values map[string]string) string {
	msg := t.Message
	for k, v := range values {
		msg = strings.ReplaceAll(msg, "["+k+"]", v)
	}
	return msg
}

// AppointmentPlaceholders returns the values known to message templates.
func AppointmentPlaceholders(salon Salon, a Appointment) map[string]string {
	return map[string]string{
		"ClientName":   a.ClientName,
		"Service":      a.ServiceName,
		"Professional": a.ProfessionalName,
		"Date":         a.Date.Time().Format("02/01/2006"),
		"Time":         a.Time,
		"Salon":        salon.Name,
	}
}
