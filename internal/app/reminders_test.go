package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"miturno/internal/mailer"
)

type fakeReminderStore struct {
	due      []AppointmentDetail
	err      error
	from, to time.Time
	marked   []string
}

func (f *fakeReminderStore) DueReminders(_ context.Context, from, to time.Time) ([]AppointmentDetail, error) {
	f.from, f.to = from, to
	return f.due, f.err
}

func (f *fakeReminderStore) MarkReminderSent(_ context.Context, id string, _ time.Time) error {
	f.marked = append(f.marked, id)
	return nil
}

type countingSender struct{ to []string }

func (s *countingSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	s.to = append(s.to, msg.To...)
	return "id", nil
}

func testReminders(t *testing.T, store reminderStore, sender mailer.Sender) *Reminders {
	t.Helper()
	a := testApp(t)
	return &Reminders{
		store:    store,
		mailer:   mailer.New(sender, zap.NewNop()),
		emailFor: a.appointmentEmail,
		loc:      a.Location,
		log:      zap.NewNop(),
		cron:     cron.New(cron.WithLocation(a.Location)),
		spec:     "0 18 * * *",
	}
}

func TestRemindersRunOnce(t *testing.T) {
	store := &fakeReminderStore{due: []AppointmentDetail{
		{Appointment: Appointment{ID: "a-1", StartsAt: time.Date(2030, 1, 8, 14, 0, 0, 0, time.UTC)}, ClientEmail: "ana@example.com", ServicePrice: 25000},
		{Appointment: Appointment{ID: "a-2", StartsAt: time.Date(2030, 1, 8, 15, 0, 0, 0, time.UTC)}},
	}}
	sender := &countingSender{}
	r := testReminders(t, store, sender)

	now := time.Date(2030, 1, 7, 18, 0, 0, 0, r.loc)
	sent := r.RunOnce(context.Background(), now)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"ana@example.com"}, sender.to)
	assert.Equal(t, []string{"a-1"}, store.marked)
	assert.Equal(t, time.Date(2030, 1, 8, 0, 0, 0, 0, r.loc), store.from)
	assert.Equal(t, time.Date(2030, 1, 9, 0, 0, 0, 0, r.loc), store.to)
}

func TestRemindersRunOnceLoadFailure(t *testing.T) {
	store := &fakeReminderStore{err: errors.New("db down")}
	r := testReminders(t, store, &countingSender{})

	assert.Zero(t, r.RunOnce(context.Background(), time.Now()))
	assert.Empty(t, store.marked)
}

func TestRemindersRejectBadSchedule(t *testing.T) {
	r := testReminders(t, &fakeReminderStore{}, &countingSender{})
	r.spec = "every tuesday"
	require.Error(t, r.Start())
}
