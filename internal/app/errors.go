package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidLogin = errors.New("invalid email or password")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgCode(err) == pgUniqueViolation }

func isForeignKeyViolation(err error) bool { return pgCode(err) == pgForeignKeyViolation }

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// paramID reads a UUID path parameter, answering 400 when it is malformed.
func paramID(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

// respondError maps domain and database errors to a status; anything
// unrecognised is logged and hidden behind a generic 500.
func (a *App) respondError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, ErrNotFound) || isNoRows(err):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, ErrConflict) || isUniqueViolation(err) || isForeignKeyViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": conflictMessage(err)})
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		badRequest(c, "password must be at most 72 bytes")
	case errors.Is(err, ErrInvalidLogin):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		a.Log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func conflictMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return "email already registered"
		case "businesses_slug_key":
			return "a business with that name already exists"
		case "appointments_confirmed_start_uniq":
			return "slot already booked"
		}
		if pgErr.Code == pgForeignKeyViolation {
			return "record is still referenced by appointments"
		}
		return "conflict"
	}
	return err.Error()
}
