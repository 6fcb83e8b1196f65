package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type registerReq struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6,max=72"`
	BusinessName string `json:"business_name" binding:"required"`
	Phone        string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileReq struct {
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// records builds the business and its first admin. The phone belongs to
// both.
func (r registerReq) records(slug, hash string) (*Business, *User) {
	phone := strings.TrimSpace(r.Phone)
	biz := &Business{Name: strings.TrimSpace(r.BusinessName), Slug: slug, Phone: phone}
	user := &User{
		Role:         RoleAdmin,
		FullName:     strings.TrimSpace(r.FullName),
		Email:        normalizeEmail(r.Email),
		Phone:        phone,
		PasswordHash: hash,
	}
	return biz, user
}

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// POST /api/auth/register
func (a *App) RegisterHandler(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	slug := Slug(req.BusinessName)
	if slug == "" {
		badRequest(c, "business name must contain letters or digits")
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err, "")
		return
	}

	biz, user := req.records(slug, hash)

	ctx := c.Request.Context()
	err = a.withTx(ctx, func(tx pgx.Tx) error {
		if err := insertBusiness(ctx, tx, biz); err != nil {
			return err
		}
		user.BusinessID = biz.ID
		return insertUser(ctx, tx, user)
	})
	if err != nil {
		a.respondError(c, err, "")
		return
	}

	token, err := a.Tokens.Issue(user)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token":    token,
		"user":     user,
		"business": biz,
		"home":     HomePath(user.Role),
	})
}

// POST /api/auth/login
func (a *App) LoginHandler(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := a.GetUserByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !isNoRows(err) {
		a.respondError(c, err, "")
		return
	}
	if user == nil || !checkPassword(user.PasswordHash, req.Password) {
		a.respondError(c, ErrInvalidLogin, "")
		return
	}

	token, err := a.Tokens.Issue(user)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "home": HomePath(user.Role)})
}

// GET /api/auth/me
func (a *App) MeHandler(c *gin.Context) {
	p := mustPrincipal(c)
	if p.Role == RoleService {
		c.JSON(http.StatusOK, gin.H{"role": p.Role})
		return
	}
	user, err := a.GetUser(c.Request.Context(), p.UserID)
	if err != nil {
		a.respondError(c, err, "user not found")
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/me
func (a *App) UpdateProfileHandler(c *gin.Context) {
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := mustPrincipal(c)
	ctx := c.Request.Context()
	if err := a.UpdateUserProfile(ctx, p.UserID, strings.TrimSpace(req.FullName), strings.TrimSpace(req.Phone)); err != nil {
		a.respondError(c, err, "user not found")
		return
	}
	a.MeHandler(c)
}

// PUT /api/me/password
func (a *App) ChangePasswordHandler(c *gin.Context) {
	var req passwordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		badRequest(c, "passwords do not match")
		return
	}

	p := mustPrincipal(c)
	ctx := c.Request.Context()
	user, err := a.GetUser(ctx, p.UserID)
	if err != nil {
		a.respondError(c, err, "user not found")
		return
	}
	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}
	if err := a.setPassword(ctx, user.ID, req.NewPassword); err != nil {
		a.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *App) setPassword(ctx context.Context, userID, pw string) error {
	hash, err := hashPassword(pw)
	if err != nil {
		return err
	}
	return a.UpdateUserPassword(ctx, userID, hash)
}

// GET /api/business
func (a *App) GetBusinessHandler(c *gin.Context) {
	biz, err := a.GetBusiness(c.Request.Context(), mustPrincipal(c).BusinessID)
	if err != nil {
		a.respondError(c, err, "business not found")
		return
	}
	c.JSON(http.StatusOK, biz)
}

type businessReq struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// PUT /api/business
func (a *App) UpdateBusinessHandler(c *gin.Context) {
	var req businessReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	slug := Slug(req.Name)
	if slug == "" {
		badRequest(c, "business name must contain letters or digits")
		return
	}

	ctx := c.Request.Context()
	biz := &Business{
		ID:      mustPrincipal(c).BusinessID,
		Name:    strings.TrimSpace(req.Name),
		Slug:    slug,
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
	}
	if err := a.UpdateBusiness(ctx, biz); err != nil {
		a.respondError(c, err, "business not found")
		return
	}
	updated, err := a.GetBusiness(ctx, biz.ID)
	if err != nil {
		a.respondError(c, err, "business not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}
