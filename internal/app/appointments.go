package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"miturno/internal/booking"
	"miturno/internal/cache"
	"miturno/internal/mailer"
)

func (a *App) appointmentEmail(d *AppointmentDetail) mailer.AppointmentEmail {
	start := d.StartsAt.In(a.Location)
	return mailer.AppointmentEmail{
		To:           d.ClientEmail,
		ClientName:   d.ClientName,
		BusinessName: d.BusinessName,
		ServiceName:  d.ServiceName,
		EmployeeName: d.EmployeeName,
		Date:         start.Format("2006-01-02"),
		Time:         start.Format("15:04"),
		Price:        FormatCOP(d.ServicePrice),
	}
}

// notifyBooked runs after a booking commits. Email and calendar failures
// are logged and never undo the appointment.
func (a *App) notifyBooked(ctx context.Context, d *AppointmentDetail) {
	if err := a.Mailer.SendConfirmation(ctx, a.appointmentEmail(d)); err != nil {
		a.Log.Warn("Confirmation email failed", zap.String("appointment_id", d.ID), zap.Error(err))
	}
	a.syncBooked(ctx, d)
	a.invalidateDashboard(ctx, d.BusinessID)
}

func (a *App) notifyCancelled(ctx context.Context, d *AppointmentDetail) {
	if err := a.Mailer.SendCancellation(ctx, a.appointmentEmail(d)); err != nil {
		a.Log.Warn("Cancellation email failed", zap.String("appointment_id", d.ID), zap.Error(err))
	}
	a.syncCancelled(ctx, d)
	a.invalidateDashboard(ctx, d.BusinessID)
}

// GET /api/appointments?status=
func (a *App) ListAppointmentsHandler(c *gin.Context) {
	status := AppointmentStatus(c.Query("status"))
	switch status {
	case "", StatusConfirmed, StatusCancelled:
	default:
		badRequest(c, "status must be confirmed or cancelled")
		return
	}
	list, err := a.ListAppointments(c.Request.Context(), mustPrincipal(c).BusinessID, status)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

type statusReq struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

// PATCH /api/appointments/:id/status
func (a *App) UpdateAppointmentStatusHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Status != StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "appointments can only move from confirmed to cancelled"})
		return
	}

	ctx := c.Request.Context()
	d, err := a.CancelAppointment(ctx, mustPrincipal(c).BusinessID, id)
	if errors.Is(err, ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "appointment is not confirmed"})
		return
	}
	if err != nil {
		a.respondError(c, err, "appointment not found")
		return
	}
	a.notifyCancelled(ctx, d)
	c.JSON(http.StatusOK, d)
}

// DELETE /api/appointments/:id
func (a *App) DeleteAppointmentHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID
	d, err := a.GetAppointmentDetail(ctx, id)
	if err == nil && d.BusinessID != businessID {
		err = ErrNotFound
	}
	if err != nil {
		a.respondError(c, err, "appointment not found")
		return
	}
	if err := a.DeleteAppointment(ctx, businessID, id); err != nil {
		a.respondError(c, err, "appointment not found")
		return
	}
	a.appointmentRemoved(ctx, d)
	c.Status(http.StatusNoContent)
}

// appointmentRemoved drops the calendar event of a deleted appointment.
// No email goes out.
func (a *App) appointmentRemoved(ctx context.Context, d *AppointmentDetail) {
	a.syncCancelled(ctx, d)
	a.invalidateDashboard(ctx, d.BusinessID)
}

type sampleReq struct {
	BusinessID string `json:"business_id" binding:"omitempty,uuid"`
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	ClientID   string `json:"client_id" binding:"required,uuid"`
	ServiceID  string `json:"service_id" binding:"required,uuid"`
}

// POST /api/appointments/sample creates a confirmed appointment tomorrow at
// 10:00 so a fresh business has something to look at.
func (a *App) SampleAppointmentHandler(c *gin.Context) {
	var req sampleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p := mustPrincipal(c)
	businessID := p.BusinessID
	if p.Role == RoleService {
		businessID = req.BusinessID
	}
	if businessID == "" {
		badRequest(c, "business_id required")
		return
	}

	ctx := c.Request.Context()
	if _, err := a.GetEmployee(ctx, businessID, req.EmployeeID); err != nil {
		a.respondError(c, err, "employee not found")
		return
	}
	if _, err := a.GetClient(ctx, businessID, req.ClientID); err != nil {
		a.respondError(c, err, "client not found")
		return
	}
	if _, err := a.GetService(ctx, businessID, req.ServiceID); err != nil {
		a.respondError(c, err, "service not found")
		return
	}

	tomorrow := time.Now().In(a.Location).AddDate(0, 0, 1)
	y, m, d := tomorrow.Date()
	start := time.Date(y, m, d, 10, 0, 0, 0, a.Location)
	ap := &Appointment{
		BusinessID: businessID,
		EmployeeID: req.EmployeeID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		StartsAt:   start,
		EndsAt:     start.Add(30 * time.Minute),
		Status:     StatusConfirmed,
		Notes:      "Sample appointment",
	}
	if err := a.CreateAppointment(ctx, ap); err != nil {
		a.respondError(c, err, "")
		return
	}
	a.invalidateDashboard(ctx, businessID)
	c.JSON(http.StatusCreated, ap)
}

func dashboardKey(businessID string) string { return "dashboard:" + businessID }

func (a *App) invalidateDashboard(ctx context.Context, businessID string) {
	if err := a.Cache.Delete(ctx, dashboardKey(businessID)); err != nil {
		a.Log.Debug("Dashboard cache invalidation failed", zap.Error(err))
	}
}

// GET /api/dashboard
func (a *App) DashboardHandler(c *gin.Context) {
	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID
	key := dashboardKey(businessID)

	var st DashboardStats
	err := a.Cache.GetJSON(ctx, key, &st)
	if err == nil {
		c.JSON(http.StatusOK, st)
		return
	}
	if !errors.Is(err, cache.ErrMiss) {
		a.Log.Debug("Dashboard cache read failed", zap.Error(err))
	}

	now := time.Now().In(a.Location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.Location)
	fresh, err := a.DashboardStats(ctx, businessID, monthStart)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	if err := a.Cache.SetJSON(ctx, key, fresh, a.Cfg.DashboardCacheTTL); err != nil {
		a.Log.Debug("Dashboard cache write failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, fresh)
}

// GET /api/me/agenda?from=YYYY-MM-DD&days=N
func (a *App) AgendaHandler(c *gin.Context) {
	from := booking.StartOfDay(time.Now(), a.Location)
	if s := c.Query("from"); s != "" {
		d, err := booking.ParseDate(s, a.Location)
		if err != nil {
			badRequest(c, "from must be YYYY-MM-DD")
			return
		}
		from = d
	}
	days, ok := intQuery(c, "days", 7, 1, 62)
	if !ok {
		return
	}

	list, err := a.ListAgenda(c.Request.Context(), mustPrincipal(c).UserID, from, from.AddDate(0, 0, days))
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from.Format("2006-01-02"), "days": days, "appointments": list})
}

type emailReq struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// POST /api/email
func (a *App) SendEmailHandler(c *gin.Context) {
	var req emailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var to []string
	if req.To != "" {
		to = []string{req.To}
	}
	id, err := a.Mailer.Send(c.Request.Context(), mailer.Message{To: to, Subject: req.Subject, HTML: req.HTML})
	if errors.Is(err, mailer.ErrMissingFields) {
		badRequest(c, "to, subject and html are required")
		return
	}
	if err != nil {
		a.Log.Error("Email send failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "email provider rejected the message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}
