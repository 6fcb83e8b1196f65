// Package booking derives the bookable times of one employee on one day
// from the weekly schedule and the confirmed appointments of that day.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"miturno/internal/slots"
)

var ErrDayOff = errors.New("this employee does not work that day")

// LoadError reports that one of the upstream lookups feeding the
// calculation failed. The calculation is abandoned; nothing is retried.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// WeeklySchedule is the working window of one employee for one ISO weekday.
type WeeklySchedule struct {
	Weekday   int
	OpenTime  string
	CloseTime string
	IsDayOff  bool
}

// ScheduleReader returns nil, nil when the employee has no row for the weekday.
type ScheduleReader interface {
	WeeklySchedule(ctx context.Context, employeeID string, weekday int) (*WeeklySchedule, error)
}

// AppointmentReader lists start instants of confirmed appointments of an
// employee that start in [from, to).
type AppointmentReader interface {
	ConfirmedStarts(ctx context.Context, employeeID string, from, to time.Time) ([]time.Time, error)
}

type Planner struct {
	schedules    ScheduleReader
	appointments AppointmentReader
	loc          *time.Location
}

func NewPlanner(schedules ScheduleReader, appointments AppointmentReader, loc *time.Location) *Planner {
	if loc == nil {
		loc = time.UTC
	}
	return &Planner{schedules: schedules, appointments: appointments, loc: loc}
}

func (p *Planner) Location() *time.Location { return p.loc }

// DaySlots returns the free "HH:MM" starts for employeeID on the calendar
// day of date, using durationMinutes as both slot length and grid step.
// An employee without a schedule row for that weekday is treated as off.
func (p *Planner) DaySlots(ctx context.Context, employeeID string, date time.Time, durationMinutes int) ([]string, error) {
	dayStart := StartOfDay(date, p.loc)

	sched, err := p.schedules.WeeklySchedule(ctx, employeeID, ISOWeekday(dayStart))
	if err != nil {
		return nil, &LoadError{Op: "schedule", Err: err}
	}
	if sched == nil || sched.IsDayOff {
		return nil, ErrDayOff
	}

	starts, err := p.appointments.ConfirmedStarts(ctx, employeeID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, &LoadError{Op: "appointments", Err: err}
	}

	booked := make([]string, 0, len(starts))
	for _, s := range starts {
		booked = append(booked, s.In(p.loc).Format("15:04"))
	}

	return slots.Available(sched.OpenTime, sched.CloseTime, durationMinutes, booked), nil
}

// IsAvailable reports whether clock ("HH:MM") is one of the free slots.
func (p *Planner) IsAvailable(ctx context.Context, employeeID string, date time.Time, durationMinutes int, clock string) (bool, error) {
	free, err := p.DaySlots(ctx, employeeID, date, durationMinutes)
	if err != nil {
		return false, err
	}
	for _, s := range free {
		if s == clock {
			return true, nil
		}
	}
	return false, nil
}

// ISOWeekday maps Monday..Sunday to 1..7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDate parses "YYYY-MM-DD" as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// At combines a calendar day with an "HH:MM" wall-clock time in loc.
func At(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	m, err := slots.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.In(loc).Date()
	return time.Date(y, mo, d, m/60, m%60, 0, 0, loc), nil
}
