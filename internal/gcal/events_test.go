package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

func testInput() EventInput {
	start := time.Date(2024, 6, 10, 23, 45, 0, 0, timeutil.Zone)
	return EventInput{
		Summary:      "Comprar pan",
		Description:  "Creado por TuCalendarioBot para Lucía",
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		TimeZone:     timeutil.DefaultTimezone,
		PopupMinutes: 30,
		Visibility:   "public",
	}
}

func TestBuildEvent(t *testing.T) {
	ev := BuildEvent(testInput())

	assert.Equal(t, "Comprar pan", ev.Summary)
	assert.Equal(t, "Creado por TuCalendarioBot para Lucía", ev.Description)
	assert.Equal(t, "2024-06-10T23:45:00-03:00", ev.Start.DateTime)
	assert.Equal(t, "2024-06-11T00:15:00-03:00", ev.End.DateTime)
	assert.Equal(t, timeutil.DefaultTimezone, ev.Start.TimeZone)
	assert.Equal(t, timeutil.DefaultTimezone, ev.End.TimeZone)
	assert.Equal(t, "public", ev.Visibility)

	require.NotNil(t, ev.Reminders)
	assert.False(t, ev.Reminders.UseDefault)
	require.Len(t, ev.Reminders.Overrides, 1)
	assert.Equal(t, "popup", ev.Reminders.Overrides[0].Method)
	assert.Equal(t, int64(30), ev.Reminders.Overrides[0].Minutes)
}

func TestBuildEvent_SerializesUseDefaultFalse(t *testing.T) {
	data, err := json.Marshal(BuildEvent(testInput()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"useDefault":false`)
}

func TestBuildEvent_NoPopupKeepsDefaults(t *testing.T) {
	in := testInput()
	in.PopupMinutes = 0
	in.TimeZone = ""

	ev := BuildEvent(in)
	assert.Nil(t, ev.Reminders)
	assert.Equal(t, timeutil.DefaultTimezone, ev.Start.TimeZone)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithOptions(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/calendar/v3/"),
	)
	require.NoError(t, err)
	return client
}

func TestCreateEvent(t *testing.T) {
	var received calendar.Event
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "evt123", "htmlLink": "https://calendar.google.com/event?eid=abc"}`))
	})

	created, err := client.CreateEvent(context.Background(), "", testInput())
	require.NoError(t, err)
	assert.Equal(t, "evt123", created.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=abc", created.HTMLLink)

	assert.Equal(t, "Comprar pan", received.Summary)
	assert.Equal(t, "2024-06-10T23:45:00-03:00", received.Start.DateTime)
	assert.Equal(t, "public", received.Visibility)
	require.NotNil(t, received.Reminders)
	require.Len(t, received.Reminders.Overrides, 1)
}

func TestCreateEvent_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "Rate Limit Exceeded", "errors": [{"reason": "rateLimitExceeded"}]}}`))
	})

	_, err := client.CreateEvent(context.Background(), "primary", testInput())
	require.Error(t, err)
	assert.Equal(t, "Rate Limit Exceeded", ProviderMessage(err))
}

func TestCreateEvent_Validation(t *testing.T) {
	var unauthenticated *Client
	_, err := unauthenticated.CreateEvent(context.Background(), "", testInput())
	assert.True(t, errors.Is(err, ErrNotConfigured))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	in := testInput()
	in.EndTime = in.StartTime
	_, err = client.CreateEvent(context.Background(), "", in)
	assert.Error(t, err)
}

func TestGetCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary"), r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "bot@project.iam.gserviceaccount.com", "summary": "bot", "timeZone": "UTC"}`))
	})

	info, err := client.GetCalendar(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "bot@project.iam.gserviceaccount.com", info.ID)
	assert.Equal(t, "UTC", info.TimeZone)
}

func TestProviderMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", ProviderMessage(errors.New("boom")))
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Credentials{})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Credentials{File: "/nonexistent/credenciales.json"})
	assert.Error(t, err)

	_, err = NewClient(context.Background(), Credentials{JSON: `{"type": "authorized_user"}`})
	assert.Error(t, err)
}
