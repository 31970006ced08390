package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/nota-sync/internal/config"
	"github.com/MKhiriev/nota-sync/internal/logger"
)

func newTestCalendar(t *testing.T, serverURL string) *httpCalendarClient {
	t.Helper()

	c, err := NewHTTPCalendarClient(config.Calendar{BaseURL: serverURL}, logger.Nop())
	require.NoError(t, err)
	return c.(*httpCalendarClient)
}

func TestFetchCalendars_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me/calendarList", r.URL.Path)
		assert.Equal(t, "Bearer gtok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"primary","summary":"Alice","primary":true}]}`))
	}))
	defer srv.Close()

	c := newTestCalendar(t, srv.URL)
	c.SetAccessToken("gtok")

	calendars, err := c.FetchCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 1)
	assert.Equal(t, "primary", calendars[0].ID)
	assert.True(t, calendars[0].Primary)
}

func TestFetchCalendars_ExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestCalendar(t, srv.URL)
	c.SetAccessToken("stale")

	_, err := c.FetchCalendars(context.Background())
	assert.ErrorIs(t, err, ErrCalendarAuthExpired)
}

func TestFetchEvents_WindowAndExpansion(t *testing.T) {
	from := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/calendars/primary/events", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, from.Format(time.RFC3339), q.Get("timeMin"))
		assert.Equal(t, to.Format(time.RFC3339), q.Get("timeMax"))
		assert.Equal(t, "true", q.Get("singleEvents"))
		assert.Equal(t, "startTime", q.Get("orderBy"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":"ev1","summary":"Dentist","start":{"dateTime":"2026-03-20T09:00:00Z"},"end":{"dateTime":"2026-03-20T10:00:00Z"}},
			{"id":"ev2","start":{"date":"2026-03-21"},"end":{"date":"2026-03-22"}}
		]}`))
	}))
	defer srv.Close()

	c := newTestCalendar(t, srv.URL)
	c.SetAccessToken("gtok")

	events, err := c.FetchEvents(context.Background(), "primary", from, to)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Dentist", events[0].Summary)
	assert.Equal(t, "2026-03-21", events[1].Start.Date)
}

func TestFetchEvents_ExpiredToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestCalendar(t, srv.URL)
	_, err := c.FetchEvents(context.Background(), "primary", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrCalendarAuthExpired)
}
