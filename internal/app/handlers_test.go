package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"miturno/internal/booking"
)

func TestAvailabilityResponse(t *testing.T) {
	status, body := availabilityResponse([]string{"09:00", "09:30"}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, []string{"09:00", "09:30"}, body["slots"])

	status, body = availabilityResponse(nil, booking.ErrDayOff)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "day_off", body["status"])
	assert.Equal(t, "this employee does not work that day", body["message"])
	assert.Equal(t, []string{}, body["slots"])

	status, body = availabilityResponse([]string{}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", body["status"])
	assert.Equal(t, "no available times for this date", body["message"])

	status, body = availabilityResponse(nil, &booking.LoadError{Op: "schedule", Err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, gin.H{"error": "could not load available times"}, body)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Barbería El Elegante":   "barberia-el-elegante",
		"  Spa  Ñandú & Co. ":    "spa-nandu-co",
		"Peluquería 24/7":        "peluqueria-24-7",
		"¡¡¡":                    "",
		"Uñas-Bonitas--Centro":   "unas-bonitas-centro",
		"ESTÉTICA Corazón Feliz": "estetica-corazon-feliz",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestFormatCOP(t *testing.T) {
	got := FormatCOP(25000)
	assert.True(t, strings.HasPrefix(got, "$ "), got)
	assert.Equal(t, "25000", strings.NewReplacer(".", "", ",", "", " ", "", "\u00a0", "", "\u202f", "").Replace(strings.TrimPrefix(got, "$ ")))
	assert.Equal(t, "$ 0", FormatCOP(0))
}

func TestScheduleDayValidate(t *testing.T) {
	open, closeAt, msg := scheduleDayReq{OpenTime: "09:00", CloseTime: "17:30:00"}.validate()
	assert.Empty(t, msg)
	assert.Equal(t, "09:00", open)
	assert.Equal(t, "17:30", closeAt)

	open, closeAt, msg = scheduleDayReq{IsDayOff: true, OpenTime: "garbage"}.validate()
	assert.Empty(t, msg)
	assert.Equal(t, "00:00", open)
	assert.Equal(t, "00:00", closeAt)

	_, _, msg = scheduleDayReq{OpenTime: "10:00", CloseTime: "10:00"}.validate()
	assert.Equal(t, "open_time must be before close_time", msg)

	_, _, msg = scheduleDayReq{OpenTime: "25:00", CloseTime: "26:00"}.validate()
	assert.Equal(t, "invalid open_time", msg)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, zap.NewNop())
	r := gin.New()
	r.GET("/x", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"))
}

func TestIntQuery(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		n, ok := intQuery(c, "days", 7, 1, 62)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": n})
	})

	for q, want := range map[string]int{"": 200, "?days=3": 200, "?days=0": 400, "?days=abc": 400, "?days=63": 400} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x"+q, nil))
		assert.Equal(t, want, w.Code, q)
	}
}
