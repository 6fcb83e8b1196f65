package app

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"miturno/internal/media"
)

const maxImageBytes = 5 << 20

type serviceReq struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Price           int64  `json:"price" binding:"min=0"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	IsActive        *bool  `json:"is_active"`
}

func (r serviceReq) toService(businessID string) *Service {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Service{
		BusinessID:      businessID,
		Name:            strings.TrimSpace(r.Name),
		Description:     strings.TrimSpace(r.Description),
		Price:           r.Price,
		DurationMinutes: r.DurationMinutes,
		IsActive:        active,
	}
}

// GET /api/services
func (a *App) ListServicesHandler(c *gin.Context) {
	list, err := a.ListServices(c.Request.Context(), mustPrincipal(c).BusinessID, false)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/services
func (a *App) CreateServiceHandler(c *gin.Context) {
	var req serviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	svc := req.toService(mustPrincipal(c).BusinessID)
	if err := a.CreateService(c.Request.Context(), svc); err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// PUT /api/services/:id
func (a *App) UpdateServiceHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req serviceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID
	svc := req.toService(businessID)
	svc.ID = id
	if err := a.UpdateService(ctx, svc); err != nil {
		a.respondError(c, err, "service not found")
		return
	}
	a.invalidateDashboard(ctx, businessID)

	updated, err := a.GetService(ctx, businessID, id)
	if err != nil {
		a.respondError(c, err, "service not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/services/:id
func (a *App) DeleteServiceHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := a.DeleteService(c.Request.Context(), mustPrincipal(c).BusinessID, id); err != nil {
		a.respondError(c, err, "service not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/services/:id/image
func (a *App) UploadServiceImageHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	businessID := mustPrincipal(c).BusinessID

	if _, err := a.GetService(ctx, businessID, id); err != nil {
		a.respondError(c, err, "service not found")
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file required")
		return
	}
	if fh.Size > maxImageBytes {
		badRequest(c, "image too large")
		return
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		badRequest(c, "unsupported image type")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "could not read image")
		return
	}
	defer f.Close()

	url, err := a.Media.UploadImage(ctx, f, id)
	if errors.Is(err, media.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		a.respondError(c, err, "")
		return
	}

	if err := a.SetServiceImage(ctx, businessID, id, url); err != nil {
		a.respondError(c, err, "service not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
