// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"agendapro-backend/gateway"
	"agendapro-backend/metrics"
	"agendapro-backend/models"
	"agendapro-backend/store"
)

// ReminderReport summarises one reminder run.
type ReminderReport struct {
	Day     models.Date `json:"day"`
	Salons  int         `json:"salons"`
	Sent    int         `json:"sent"`
	Failed  int         `json:"failed"`
	Skipped int         `json:"skipped"`
}

// ReminderService sends the WhatsApp reminder for tomorrow's appointments on
// a cron schedule.
type ReminderService struct {
	gw       gateway.Gateway
	notifier *Notifier
	log      logrus.FieldLogger
	schedule string
	loc      *time.Location
	cron     *cron.Cron
	now      func() time.Time
}

// NewReminderService reads schedule and decides "tomorrow" in loc; nil
// means UTC.
func NewReminderService(gw gateway.Gateway, notifier *Notifier, schedule string, loc *time.Location, log logrus.FieldLogger) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	logger := cron.PrintfLogger(log)
	return &ReminderService{
		gw:       gw,
		notifier: notifier,
		log:      log.WithField("component", "reminders"),
		schedule: schedule,
		loc:      loc,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.SkipIfStillRunning(logger)),
		),
		now: time.Now,
	}
}

func (s *ReminderService) StartScheduler() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.SendDailyReminders(ctx); err != nil {
			s.log.WithError(err).Error("reminder run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.WithFields(logrus.Fields{"schedule": s.schedule, "timezone": s.loc.String()}).Info("Reminder scheduler started")
	return nil
}

// Stop halts the scheduler; the returned context is done once a running job
// has finished.
func (s *ReminderService) Stop() context.Context {
	return s.cron.Stop()
}

// SendDailyReminders reminds every client with an appointment tomorrow, for
// each salon that has WhatsApp reminders on.
func (s *ReminderService) SendDailyReminders(ctx context.Context) (ReminderReport, error) {
	start := time.Now()
	defer func() { metrics.RecordReminderRun(time.Since(start)) }()

	day := models.DateOf(s.now().In(s.loc)).AddDays(1)
	report := ReminderReport{Day: day}
	s.log.WithField("day", day).Info("Starting daily reminder processing")

	var salons []models.Salon
	if err := s.gw.Select(ctx, gateway.From(tableSalons).Eq("whatsapp_reminders", true), &salons); err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			s.log.Warn("data gateway not configured, skipping reminders")
			return report, nil
		}
		return report, fmt.Errorf("list salons: %w", err)
	}

	for _, salon := range salons {
		sent, failed, skipped, err := s.ProcessSalonReminders(ctx, salon, day)
		if err != nil {
			s.log.WithError(err).WithField("salon_id", salon.ID).Error("failed to process salon reminders")
			continue
		}
		report.Salons++
		report.Sent += sent
		report.Failed += failed
		report.Skipped += skipped
	}

	s.log.WithFields(logrus.Fields{
		"salons":  report.Salons,
		"sent":    report.Sent,
		"failed":  report.Failed,
		"skipped": report.Skipped,
	}).Info("Daily reminder processing completed")
	return report, nil
}

// ProcessSalonReminders sends one reminder per non-cancelled appointment of
// salon on day. Appointments already reminded are skipped.
func (s *ReminderService) ProcessSalonReminders(ctx context.Context, salon models.Salon, day models.Date) (sent, failed, skipped int, err error) {
	appointments := store.NewAppointmentStore(s.gw, salon.ID, s.log)
	if err := appointments.Fetch(ctx, &day); err != nil {
		return 0, 0, 0, err
	}

	list := appointments.Snapshot()
	for i, a := range list {
		if a.Status == models.StatusCancelled || a.ClientPhone == "" {
			skipped++
			continue
		}
		done, err := s.notifier.alreadySent(ctx, a.ID, models.TemplateReminder)
		if err != nil {
			return sent, failed, skipped, err
		}
		if done {
			skipped++
			continue
		}

		if _, err := s.notifier.NotifyAppointment(ctx, salon, a, models.TemplateReminder); err != nil {
			if errors.Is(err, ErrTemplateDisabled) {
				// Reminders are off for this salon.
				return sent, failed, skipped + len(list) - i, nil
			}
			failed++
			continue
		}
		sent++
	}
	return sent, failed, skipped, nil
}
