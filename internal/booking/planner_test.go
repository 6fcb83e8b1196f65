package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchedules struct {
	rows    map[int]*WeeklySchedule
	err     error
	weekday int
}

func (f *fakeSchedules) WeeklySchedule(_ context.Context, _ string, weekday int) (*WeeklySchedule, error) {
	f.weekday = weekday
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[weekday], nil
}

type fakeAppointments struct {
	starts   []time.Time
	err      error
	from, to time.Time
	calls    int
}

func (f *fakeAppointments) ConfirmedStarts(_ context.Context, _ string, from, to time.Time) ([]time.Time, error) {
	f.calls++
	f.from, f.to = from, to
	return f.starts, f.err
}

func bogota(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	return loc
}

func TestDaySlotsExcludesConfirmedStarts(t *testing.T) {
	loc := bogota(t)
	// 2025-11-03 is a Monday.
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, loc)

	sched := &fakeSchedules{rows: map[int]*WeeklySchedule{
		1: {Weekday: 1, OpenTime: "09:00:00", CloseTime: "11:00:00"},
	}}
	appts := &fakeAppointments{starts: []time.Time{
		time.Date(2025, 11, 3, 9, 30, 0, 0, loc).UTC(),
	}}

	p := NewPlanner(sched, appts, loc)
	got, err := p.DaySlots(context.Background(), "emp-1", day, 30)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, got)
	assert.Equal(t, 1, sched.weekday)
	assert.True(t, appts.from.Equal(day))
	assert.True(t, appts.to.Equal(day.AddDate(0, 0, 1)))
}

func TestDaySlotsSundayIsSeven(t *testing.T) {
	loc := bogota(t)
	sunday := time.Date(2025, 11, 9, 15, 0, 0, 0, loc)

	sched := &fakeSchedules{rows: map[int]*WeeklySchedule{
		7: {Weekday: 7, OpenTime: "10:00", CloseTime: "11:00"},
	}}
	p := NewPlanner(sched, &fakeAppointments{}, loc)

	got, err := p.DaySlots(context.Background(), "emp-1", sunday, 60)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, got)
	assert.Equal(t, 7, sched.weekday)
}

func TestDaySlotsDayOff(t *testing.T) {
	loc := bogota(t)
	day := time.Date(2025, 11, 4, 0, 0, 0, 0, loc)

	t.Run("flagged", func(t *testing.T) {
		appts := &fakeAppointments{}
		sched := &fakeSchedules{rows: map[int]*WeeklySchedule{
			2: {Weekday: 2, OpenTime: "00:00", CloseTime: "00:00", IsDayOff: true},
		}}
		_, err := NewPlanner(sched, appts, loc).DaySlots(context.Background(), "emp-1", day, 30)
		assert.ErrorIs(t, err, ErrDayOff)
		assert.Zero(t, appts.calls)
	})

	t.Run("no row", func(t *testing.T) {
		sched := &fakeSchedules{rows: map[int]*WeeklySchedule{}}
		_, err := NewPlanner(sched, &fakeAppointments{}, loc).DaySlots(context.Background(), "emp-1", day, 30)
		assert.ErrorIs(t, err, ErrDayOff)
	})
}

func TestDaySlotsLoadFailures(t *testing.T) {
	loc := bogota(t)
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, loc)
	boom := errors.New("connection refused")

	_, err := NewPlanner(&fakeSchedules{err: boom}, &fakeAppointments{}, loc).
		DaySlots(context.Background(), "emp-1", day, 30)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "schedule", le.Op)
	assert.ErrorIs(t, err, boom)

	sched := &fakeSchedules{rows: map[int]*WeeklySchedule{1: {Weekday: 1, OpenTime: "09:00", CloseTime: "10:00"}}}
	_, err = NewPlanner(sched, &fakeAppointments{err: boom}, loc).
		DaySlots(context.Background(), "emp-1", day, 30)
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "appointments", le.Op)
}

func TestDaySlotsEmptyIsNotAnError(t *testing.T) {
	loc := bogota(t)
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, loc)
	sched := &fakeSchedules{rows: map[int]*WeeklySchedule{1: {Weekday: 1, OpenTime: "09:00", CloseTime: "09:20"}}}

	got, err := NewPlanner(sched, &fakeAppointments{}, loc).DaySlots(context.Background(), "emp-1", day, 30)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsAvailable(t *testing.T) {
	loc := bogota(t)
	day := time.Date(2025, 11, 3, 0, 0, 0, 0, loc)
	sched := &fakeSchedules{rows: map[int]*WeeklySchedule{1: {Weekday: 1, OpenTime: "09:00", CloseTime: "10:00"}}}
	appts := &fakeAppointments{starts: []time.Time{time.Date(2025, 11, 3, 9, 0, 0, 0, loc)}}
	p := NewPlanner(sched, appts, loc)

	ok, err := p.IsAvailable(context.Background(), "emp-1", day, 30, "09:30")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.IsAvailable(context.Background(), "emp-1", day, 30, "09:00")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.IsAvailable(context.Background(), "emp-1", day, 30, "09:15")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAt(t *testing.T) {
	loc := bogota(t)
	day, err := ParseDate("2025-11-03", loc)
	require.NoError(t, err)

	got, err := At(day, "14:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 3, 14, 30, 0, 0, loc), got)
	assert.Equal(t, time.Date(2025, 11, 3, 19, 30, 0, 0, time.UTC), got.UTC())

	_, err = At(day, "2:30pm", loc)
	assert.Error(t, err)
}
