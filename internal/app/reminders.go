package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"miturno/internal/booking"
	"miturno/internal/mailer"
)

type reminderStore interface {
	DueReminders(ctx context.Context, from, to time.Time) ([]AppointmentDetail, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// Reminders emails every client whose confirmed appointment starts tomorrow,
// once per appointment.
type Reminders struct {
	store    reminderStore
	mailer   *mailer.Mailer
	emailFor func(*AppointmentDetail) mailer.AppointmentEmail
	loc      *time.Location
	log      *zap.Logger
	cron     *cron.Cron
	spec     string
}

func NewReminders(a *App) *Reminders {
	return &Reminders{
		store:    a,
		mailer:   a.Mailer,
		emailFor: a.appointmentEmail,
		loc:      a.Location,
		log:      a.Log,
		cron:     cron.New(cron.WithLocation(a.Location)),
		spec:     a.Cfg.ReminderCron,
	}
}

func (r *Reminders) Start() error {
	if _, err := r.cron.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		r.RunOnce(ctx, time.Now())
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.log.Info("Reminder job scheduled", zap.String("spec", r.spec), zap.String("tz", r.loc.String()))
	return nil
}

// Stop waits for a running job to finish.
func (r *Reminders) Stop() {
	<-r.cron.Stop().Done()
	r.log.Info("Reminder job stopped")
}

// RunOnce sends the reminders for the day after now and returns how many
// went out.
func (r *Reminders) RunOnce(ctx context.Context, now time.Time) int {
	from := booking.StartOfDay(now, r.loc).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	due, err := r.store.DueReminders(ctx, from, to)
	if err != nil {
		r.log.Error("Could not load reminders", zap.Error(err))
		return 0
	}

	sent := 0
	for i := range due {
		d := &due[i]
		if err := r.mailer.SendReminder(ctx, r.emailFor(d)); err != nil {
			r.log.Warn("Reminder email failed", zap.String("appointment_id", d.ID), zap.Error(err))
			continue
		}
		if err := r.store.MarkReminderSent(ctx, d.ID, time.Now()); err != nil {
			r.log.Warn("Could not mark reminder", zap.String("appointment_id", d.ID), zap.Error(err))
			continue
		}
		sent++
	}
	r.log.Info("Reminders processed", zap.Int("due", len(due)), zap.Int("sent", sent))
	return sent
}
