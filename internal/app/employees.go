package app

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"miturno/internal/slots"
)

type createEmployeeReq struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone"`
}

type updateEmployeeReq struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
}

// GET /api/employees
func (a *App) ListEmployeesHandler(c *gin.Context) {
	list, err := a.ListEmployees(c.Request.Context(), mustPrincipal(c).BusinessID)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/employees
func (a *App) CreateEmployeeHandler(c *gin.Context) {
	var req createEmployeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	u := &User{
		BusinessID:   mustPrincipal(c).BusinessID,
		Role:         RoleEmployee,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        normalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}
	if err := a.CreateUser(c.Request.Context(), u); err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, u)
}

// PUT /api/employees/:id
func (a *App) UpdateEmployeeHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateEmployeeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID
	u := &User{
		ID:         id,
		BusinessID: businessID,
		FullName:   strings.TrimSpace(req.FullName),
		Email:      normalizeEmail(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
	}
	if err := a.UpdateEmployee(ctx, u); err != nil {
		a.respondError(c, err, "employee not found")
		return
	}
	updated, err := a.GetEmployee(ctx, businessID, id)
	if err != nil {
		a.respondError(c, err, "employee not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/employees/:id
func (a *App) DeleteEmployeeHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.DeleteEmployee(c.Request.Context(), mustPrincipal(c).BusinessID, id); err != nil {
		a.respondError(c, err, "employee not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/employees/:id/schedule
func (a *App) GetScheduleHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	days, err := a.ListSchedule(c.Request.Context(), mustPrincipal(c).BusinessID, id)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, days)
}

type scheduleDayReq struct {
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsDayOff  bool   `json:"is_day_off"`
}

// validate normalises the request into a row; a day off always stores 00:00.
func (r scheduleDayReq) validate() (openAt, closeAt string, msg string) {
	if r.IsDayOff {
		return "00:00", "00:00", ""
	}
	o, err := slots.ParseClock(r.OpenTime)
	if err != nil {
		return "", "", "invalid open_time"
	}
	cl, err := slots.ParseClock(r.CloseTime)
	if err != nil {
		return "", "", "invalid close_time"
	}
	if o >= cl {
		return "", "", "open_time must be before close_time"
	}
	return slots.FormatClock(o), slots.FormatClock(cl), ""
}

// PUT /api/employees/:id/schedule/:weekday
func (a *App) PutScheduleDayHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || weekday < 1 || weekday > 7 {
		badRequest(c, "weekday must be between 1 (Monday) and 7 (Sunday)")
		return
	}
	var req scheduleDayReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	open, closeAt, msg := req.validate()
	if msg != "" {
		badRequest(c, msg)
		return
	}

	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID
	if _, err := a.GetEmployee(ctx, businessID, id); err != nil {
		a.respondError(c, err, "employee not found")
		return
	}

	day := &ScheduleDay{
		EmployeeID: id,
		BusinessID: businessID,
		Weekday:    weekday,
		OpenTime:   open,
		CloseTime:  closeAt,
		IsDayOff:   req.IsDayOff,
	}
	if err := a.UpsertScheduleDay(ctx, day); err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, day)
}
