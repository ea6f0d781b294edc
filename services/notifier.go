package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/metrics"
	"agendapro-backend/models"
)

const (
	tableSalons           = "salons"
	tableTemplates        = "message_templates"
	tableNotificationLogs = "notification_logs"

	NotificationManual = "manual"

	statusSent   = "sent"
	statusFailed = "failed"
)

// ErrTemplateDisabled is returned when the salon switched a template off.
var ErrTemplateDisabled = errors.New("message template is disabled")

// Notifier sends salon messages and records each attempt in
// notification_logs.
type Notifier struct {
	gw        gateway.Gateway
	messenger Messenger
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewNotifier(gw gateway.Gateway, messenger Messenger, log logrus.FieldLogger) *Notifier {
	return &Notifier{gw: gw, messenger: messenger, log: log, now: time.Now}
}

func (n *Notifier) Provider() string {
	return n.messenger.Name()
}

// Template returns the salon's template of the given type, or the built-in
// default when the salon has none.
func (n *Notifier) Template(ctx context.Context, salonID uuid.UUID, kind models.TemplateType) (models.MessageTemplate, error) {
	var tpl models.MessageTemplate
	err := n.gw.Get(ctx, gateway.From(tableTemplates).Eq("salon_id", salonID).Eq("type", string(kind)), &tpl)
	switch {
	case err == nil:
		return tpl, nil
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, gateway.ErrNotConfigured):
		return models.MessageTemplate{
			SalonID:  salonID,
			Type:     kind,
			Message:  models.DefaultTemplates[kind],
			IsActive: true,
		}, nil
	}
	return models.MessageTemplate{}, err
}

// NotifyAppointment renders the salon's template for a and sends it to the
// client's phone.
func (n *Notifier) NotifyAppointment(ctx context.Context, salon models.Salon, a models.Appointment, kind models.TemplateType) (models.NotificationLog, error) {
	tpl, err := n.Template(ctx, salon.ID, kind)
	if err != nil {
		return models.NotificationLog{}, err
	}
	if !tpl.IsActive {
		return models.NotificationLog{}, ErrTemplateDisabled
	}

	clientID, appointmentID := a.ClientID, a.ID
	entry := models.NotificationLog{
		SalonID:       salon.ID,
		ClientID:      &clientID,
		AppointmentID: &appointmentID,
		Type:          string(kind),
	}
	msg := Message{To: a.ClientPhone, Text: tpl.Render(models.AppointmentPlaceholders(salon, a))}
	return n.deliver(ctx, entry, msg)
}

// Send delivers a free-form message on behalf of a salon.
func (n *Notifier) Send(ctx context.Context, salonID uuid.UUID, msg Message) (models.NotificationLog, error) {
	return n.deliver(ctx, models.NotificationLog{SalonID: salonID, Type: NotificationManual}, msg)
}

func (n *Notifier) deliver(ctx context.Context, entry models.NotificationLog, msg Message) (models.NotificationLog, error) {
	provider := n.messenger.Name()
	id, err := n.messenger.Send(ctx, msg)
	metrics.RecordNotification(provider, err)

	entry.Channel = provider
	entry.Recipient = msg.To
	entry.Message = msg.Text
	if msg.Template != "" {
		entry.Message = msg.Template
	}
	entry.SentAt = n.now().UTC()
	entry.ProviderID = id
	entry.Status = statusSent
	if err != nil {
		entry.Status = statusFailed
		entry.ErrorMessage = err.Error()
	}

	logger := n.log.WithFields(logrus.Fields{
		"salon_id": entry.SalonID,
		"type":     entry.Type,
		"provider": provider,
	})
	if err != nil {
		logger.WithError(err).Error("failed to send message")
	} else {
		logger.WithField("message_id", id).Info("message sent")
	}

	logID, logErr := n.gw.Insert(ctx, tableNotificationLogs, entry.Values())
	if logErr != nil {
		logger.WithError(logErr).Warn("failed to record notification")
	} else {
		entry.ID = logID
	}
	return entry, err
}

// Recent lists a salon's notification log, newest first.
func (n *Notifier) Recent(ctx context.Context, salonID uuid.UUID, limit int) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	if err := n.gw.Select(ctx, gateway.From(tableNotificationLogs).Eq("salon_id", salonID).OrderBy("sent_at"), &logs); err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			return []models.NotificationLog{}, nil
		}
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

// alreadySent reports whether a message of kind went out for the appointment.
func (n *Notifier) alreadySent(ctx context.Context, appointmentID uuid.UUID, kind models.TemplateType) (bool, error) {
	var entry models.NotificationLog
	err := n.gw.Get(ctx, gateway.From(tableNotificationLogs).
		Eq("appointment_id", appointmentID).
		Eq("type", string(kind)).
		Eq("status", statusSent), &entry)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gateway.ErrNotFound):
		return false, nil
	}
	return false, err
}
