package app

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"miturno/internal/booking"
)

func TestCheckSlot(t *testing.T) {
	now := time.Date(2030, 1, 7, 12, 0, 0, 0, time.UTC)
	future := now.Add(2 * time.Hour)

	tests := []struct {
		name       string
		start      time.Time
		free       bool
		err        error
		wantStatus int
		wantMsg    string
		wantCheck  bool
	}{
		{"past start", now.Add(-time.Minute), true, nil, http.StatusBadRequest, "cannot book a time in the past", false},
		{"day off", future, false, booking.ErrDayOff, http.StatusConflict, "this employee does not work that day", true},
		{"load failure", future, false, &booking.LoadError{Op: "schedule", Err: errors.New("db down")}, http.StatusInternalServerError, "could not load available times", true},
		{"taken", future, false, nil, http.StatusConflict, "slot not available", true},
		{"free", future, true, nil, 0, "", true},
		{"starting now", now, true, nil, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checked := false
			status, msg, _ := checkSlot(tt.start, now, func() (bool, error) {
				checked = true
				return tt.free, tt.err
			})
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
			assert.Equal(t, tt.wantCheck, checked)
		})
	}
}
