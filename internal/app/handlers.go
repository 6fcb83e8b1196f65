package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"miturno/internal/booking"
	"miturno/internal/slots"
)

const (
	msgLoadFailed = "could not load available times"
	msgNoSlots    = "no available times for this date"
)

type publicEmployee struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// intQuery reads an optional integer query parameter bounded to [lo, hi].
func intQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	s := c.Query(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		badRequest(c, name+" must be a number between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return 0, false
	}
	return n, true
}

func (a *App) serviceMinutes(s *Service) int {
	if s.DurationMinutes > 0 {
		return s.DurationMinutes
	}
	return a.Cfg.DefaultServiceMinutes
}

// availabilityResponse maps a planner result onto the public response.
func availabilityResponse(free []string, err error) (int, gin.H) {
	switch {
	case errors.Is(err, booking.ErrDayOff):
		return http.StatusOK, gin.H{"slots": []string{}, "status": "day_off", "message": booking.ErrDayOff.Error()}
	case err != nil:
		return http.StatusInternalServerError, gin.H{"error": msgLoadFailed}
	case len(free) == 0:
		return http.StatusOK, gin.H{"slots": []string{}, "status": "empty", "message": msgNoSlots}
	default:
		return http.StatusOK, gin.H{"slots": free, "status": "available"}
	}
}

// GET /api/public/businesses
func (a *App) PublicBusinessesHandler(c *gin.Context) {
	list, err := a.ListBusinesses(c.Request.Context())
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/public/businesses/:slug
func (a *App) PublicBusinessHandler(c *gin.Context) {
	ctx := c.Request.Context()
	biz, err := a.GetBusinessBySlug(ctx, c.Param("slug"))
	if err != nil {
		a.respondError(c, err, "business not found")
		return
	}
	services, err := a.ListServices(ctx, biz.ID, true)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	staff, err := a.ListEmployees(ctx, biz.ID)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	employees := make([]publicEmployee, 0, len(staff))
	for _, u := range staff {
		employees = append(employees, publicEmployee{ID: u.ID, FullName: u.FullName, PhotoURL: u.PhotoURL})
	}
	c.JSON(http.StatusOK, gin.H{"business": biz, "services": services, "employees": employees})
}

// bookingTarget is the business, service and employee a public request
// refers to, all checked to belong together.
type bookingTarget struct {
	business *Business
	service  *Service
	employee *User
}

func (a *App) resolveTarget(c *gin.Context, serviceID, employeeID string) (*bookingTarget, bool) {
	ctx := c.Request.Context()
	biz, err := a.GetBusinessBySlug(ctx, c.Param("slug"))
	if err != nil {
		a.respondError(c, err, "business not found")
		return nil, false
	}
	svc, err := a.GetService(ctx, biz.ID, serviceID)
	if err == nil && !svc.IsActive {
		err = ErrNotFound
	}
	if err != nil {
		a.respondError(c, err, "service not found")
		return nil, false
	}
	emp, err := a.GetEmployee(ctx, biz.ID, employeeID)
	if err != nil {
		a.respondError(c, err, "employee not found")
		return nil, false
	}
	return &bookingTarget{business: biz, service: svc, employee: emp}, true
}

type availabilityQuery struct {
	ServiceID  string `form:"service_id" binding:"required,uuid"`
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	Date       string `form:"date" binding:"required"`
}

// GET /api/public/businesses/:slug/availability
func (a *App) AvailabilityHandler(c *gin.Context) {
	var q availabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := booking.ParseDate(q.Date, a.Location)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	t, ok := a.resolveTarget(c, q.ServiceID, q.EmployeeID)
	if !ok {
		return
	}

	free, err := a.Planner.DaySlots(c.Request.Context(), t.employee.ID, date, a.serviceMinutes(t.service))
	if err != nil && !errors.Is(err, booking.ErrDayOff) {
		a.Log.Error("Availability lookup failed",
			zap.String("employee_id", t.employee.ID),
			zap.String("date", q.Date),
			zap.Error(err),
		)
	}
	status, body := availabilityResponse(free, err)
	c.JSON(status, body)
}

type publicBookingReq struct {
	ServiceID  string `json:"service_id" binding:"required,uuid"`
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Client     struct {
		FullName string `json:"full_name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone" binding:"required"`
	} `json:"client"`
}

// POST /api/public/businesses/:slug/appointments
func (a *App) PublicBookHandler(c *gin.Context) {
	var req publicBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	date, err := booking.ParseDate(req.Date, a.Location)
	if err != nil {
		badRequest(c, "date must be YYYY-MM-DD")
		return
	}
	minutes, err := slots.ParseClock(req.Time)
	if err != nil {
		badRequest(c, "time must be HH:MM")
		return
	}
	clock := slots.FormatClock(minutes)

	t, ok := a.resolveTarget(c, req.ServiceID, req.EmployeeID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	duration := a.serviceMinutes(t.service)
	start, err := booking.At(date, clock, a.Location)
	if err != nil {
		badRequest(c, "time must be HH:MM")
		return
	}
	status, msg, err := checkSlot(start, time.Now(), func() (bool, error) {
		return a.Planner.IsAvailable(ctx, t.employee.ID, date, duration, clock)
	})
	if status == http.StatusInternalServerError {
		a.Log.Error("Availability re-check failed", zap.String("employee_id", t.employee.ID), zap.Error(err))
	}
	if status != 0 {
		c.JSON(status, gin.H{"error": msg})
		return
	}

	client := &Client{
		BusinessID: t.business.ID,
		FullName:   strings.TrimSpace(req.Client.FullName),
		Email:      normalizeEmail(req.Client.Email),
		Phone:      strings.TrimSpace(req.Client.Phone),
	}
	ap := &Appointment{
		BusinessID: t.business.ID,
		EmployeeID: t.employee.ID,
		ServiceID:  t.service.ID,
		StartsAt:   start,
		EndsAt:     start.Add(time.Duration(duration) * time.Minute),
		Status:     StatusConfirmed,
	}
	if err := a.book(ctx, client, ap); err != nil {
		a.respondError(c, err, "")
		return
	}

	d, err := a.GetAppointmentDetail(ctx, ap.ID)
	if err != nil {
		a.respondError(c, err, "appointment not found")
		return
	}
	a.notifyBooked(ctx, d)
	c.JSON(http.StatusCreated, d)
}

// checkSlot decides whether a public booking for start may proceed. A zero
// status means yes; recheck recomputes availability and is skipped for
// starts already in the past.
func checkSlot(start, now time.Time, recheck func() (bool, error)) (int, string, error) {
	if start.Before(now) {
		return http.StatusBadRequest, "cannot book a time in the past", nil
	}
	free, err := recheck()
	switch {
	case errors.Is(err, booking.ErrDayOff):
		return http.StatusConflict, booking.ErrDayOff.Error(), err
	case err != nil:
		return http.StatusInternalServerError, msgLoadFailed, err
	case !free:
		return http.StatusConflict, "slot not available", nil
	}
	return 0, "", nil
}

// book stores the client and the appointment atomically. A concurrent
// booking of the same start fails on appointments_confirmed_start_uniq.
func (a *App) book(ctx context.Context, client *Client, ap *Appointment) error {
	return a.withTx(ctx, func(tx pgx.Tx) error {
		if err := upsertClient(ctx, tx, client); err != nil {
			return err
		}
		ap.ClientID = client.ID
		return insertAppointment(ctx, tx, ap)
	})
}

// GET /api/health
func (a *App) HealthHandler(c *gin.Context) {
	if err := a.Ping(c.Request.Context()); err != nil {
		a.Log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
