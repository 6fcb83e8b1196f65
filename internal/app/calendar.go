package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"miturno/internal/config"
)

var ErrCalendarNotConfigured = errors.New("google calendar not configured")

// CalendarTokenStore persists one OAuth token per employee.
type CalendarTokenStore interface {
	SaveCalendarToken(ctx context.Context, employeeID string, tok *oauth2.Token) error
	CalendarToken(ctx context.Context, employeeID string) (*oauth2.Token, error)
}

// CalendarSync mirrors confirmed appointments into the employee's primary
// Google Calendar. Every method is a no-op when OAuth is not configured or
// the employee never connected.
type CalendarSync struct {
	oauth *oauth2.Config
	store CalendarTokenStore
	loc   *time.Location
	log   *zap.Logger

	// endpoint overrides the Calendar API base URL when set.
	endpoint string
}

func NewCalendarSync(cfg *config.Config, store CalendarTokenStore, log *zap.Logger) *CalendarSync {
	cs := &CalendarSync{store: store, loc: cfg.Location(), log: log}
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		return cs
	}
	cs.oauth = &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	return cs
}

func (cs *CalendarSync) Enabled() bool { return cs.oauth != nil }

func (cs *CalendarSync) AuthURL(state string) (string, error) {
	if !cs.Enabled() {
		return "", ErrCalendarNotConfigured
	}
	return cs.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Connect exchanges the consent code and stores the token for employeeID.
func (cs *CalendarSync) Connect(ctx context.Context, employeeID, code string) error {
	if !cs.Enabled() {
		return ErrCalendarNotConfigured
	}
	tok, err := cs.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return cs.store.SaveCalendarToken(ctx, employeeID, tok)
}

// service returns nil, nil when the employee has no stored token.
func (cs *CalendarSync) service(ctx context.Context, employeeID string) (*calendar.Service, error) {
	if !cs.Enabled() {
		return nil, nil
	}
	tok, err := cs.store.CalendarToken(ctx, employeeID)
	if err != nil || tok == nil {
		return nil, err
	}
	opts := []option.ClientOption{option.WithHTTPClient(cs.oauth.Client(ctx, tok))}
	if cs.endpoint != "" {
		opts = append(opts, option.WithEndpoint(cs.endpoint))
	}
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return srv, nil
}

// PushAppointment inserts an event and returns its id, or "" when the
// employee has no connected calendar.
func (cs *CalendarSync) PushAppointment(ctx context.Context, d *AppointmentDetail) (string, error) {
	srv, err := cs.service(ctx, d.EmployeeID)
	if err != nil || srv == nil {
		return "", err
	}

	ev := &calendar.Event{
		Summary:     fmt.Sprintf("%s - %s", d.ServiceName, d.ClientName),
		Description: fmt.Sprintf("Cliente: %s\nCorreo: %s\nTeléfono: %s", d.ClientName, d.ClientEmail, d.ClientPhone),
		Start: &calendar.EventDateTime{
			DateTime: d.StartsAt.In(cs.loc).Format(time.RFC3339),
			TimeZone: cs.loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: d.EndsAt.In(cs.loc).Format(time.RFC3339),
			TimeZone: cs.loc.String(),
		},
	}
	created, err := srv.Events.Insert("primary", ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

func (cs *CalendarSync) RemoveAppointment(ctx context.Context, d *AppointmentDetail) error {
	if d.CalendarEventID == "" {
		return nil
	}
	srv, err := cs.service(ctx, d.EmployeeID)
	if err != nil || srv == nil {
		return err
	}
	if err := srv.Events.Delete("primary", d.CalendarEventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

// syncBooked pushes a new appointment to the calendar. Failures are logged.
func (a *App) syncBooked(ctx context.Context, d *AppointmentDetail) {
	eventID, err := a.Calendar.PushAppointment(ctx, d)
	if err != nil {
		a.Log.Warn("Calendar sync failed", zap.String("appointment_id", d.ID), zap.Error(err))
		return
	}
	if eventID == "" {
		return
	}
	if err := a.SetCalendarEventID(ctx, d.ID, eventID); err != nil {
		a.Log.Warn("Could not store calendar event id", zap.String("appointment_id", d.ID), zap.Error(err))
	}
}

func (a *App) syncCancelled(ctx context.Context, d *AppointmentDetail) {
	if err := a.Calendar.RemoveAppointment(ctx, d); err != nil {
		a.Log.Warn("Calendar event removal failed", zap.String("appointment_id", d.ID), zap.Error(err))
	}
}

// GET /api/calendar/auth
func (a *App) CalendarAuthHandler(c *gin.Context) {
	p := mustPrincipal(c)
	state, err := a.Tokens.SignState(p.UserID)
	if err != nil {
		a.respondError(c, err, "")
		return
	}
	url, err := a.Calendar.AuthURL(state)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": url})
}

// GET /oauth2callback
func (a *App) OAuth2CallbackHandler(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		badRequest(c, "authorization code required")
		return
	}
	employeeID, err := a.Tokens.VerifyState(c.Query("state"))
	if err != nil {
		badRequest(c, "invalid or expired state")
		return
	}

	if err := a.Calendar.Connect(c.Request.Context(), employeeID, code); err != nil {
		if errors.Is(err, ErrCalendarNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		a.Log.Warn("Calendar connect failed", zap.String("employee_id", employeeID), zap.Error(err))
		badRequest(c, "failed to exchange code for token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "calendar connected"})
}
