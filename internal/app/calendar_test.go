package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"miturno/internal/cache"
)

type memoryTokens struct{ tok *oauth2.Token }

func (m *memoryTokens) SaveCalendarToken(_ context.Context, _ string, tok *oauth2.Token) error {
	m.tok = tok
	return nil
}

func (m *memoryTokens) CalendarToken(context.Context, string) (*oauth2.Token, error) {
	return m.tok, nil
}

type calendarCall struct {
	method string
	path   string
	auth   string
}

func fakeCalendarAPI(t *testing.T) (*httptest.Server, func() []calendarCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []calendarCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, calendarCall{r.Method, r.URL.Path, r.Header.Get("Authorization")})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []calendarCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]calendarCall(nil), calls...)
	}
}

func calendarApp(t *testing.T, endpoint string, tok *oauth2.Token) *App {
	t.Helper()
	a := testApp(t)
	a.Cache = cache.Nop{}
	a.Calendar = &CalendarSync{
		oauth: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: endpoint + "/token"},
		},
		store:    &memoryTokens{tok: tok},
		loc:      a.Location,
		log:      zap.NewNop(),
		endpoint: endpoint + "/calendar/v3/",
	}
	return a
}

func TestAppointmentRemovedDeletesCalendarEvent(t *testing.T) {
	srv, calls := fakeCalendarAPI(t)
	tok := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	a := calendarApp(t, srv.URL, tok)

	a.appointmentRemoved(context.Background(), &AppointmentDetail{
		Appointment: Appointment{ID: "a-1", BusinessID: "b-1", EmployeeID: "e-1", CalendarEventID: "ev-1"},
	})

	got := calls()
	require.Len(t, got, 1)
	assert.Equal(t, http.MethodDelete, got[0].method)
	assert.Equal(t, "/calendar/v3/calendars/primary/events/ev-1", got[0].path)
	assert.Equal(t, "Bearer access", got[0].auth)
}

func TestAppointmentRemovedWithoutEventOrToken(t *testing.T) {
	srv, calls := fakeCalendarAPI(t)
	tok := &oauth2.Token{AccessToken: "access", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}

	a := calendarApp(t, srv.URL, tok)
	a.appointmentRemoved(context.Background(), &AppointmentDetail{
		Appointment: Appointment{ID: "a-1", BusinessID: "b-1", EmployeeID: "e-1"},
	})

	a = calendarApp(t, srv.URL, nil)
	a.appointmentRemoved(context.Background(), &AppointmentDetail{
		Appointment: Appointment{ID: "a-2", BusinessID: "b-1", EmployeeID: "e-1", CalendarEventID: "ev-2"},
	})

	assert.Empty(t, calls())
}

func TestCalendarDisabledWithoutCredentials(t *testing.T) {
	a := testApp(t)
	cs := NewCalendarSync(a.Cfg, &memoryTokens{}, zap.NewNop())
	assert.False(t, cs.Enabled())

	_, err := cs.AuthURL("state")
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)
}
