package nlu

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name            string
		cfg             Config
		expectedURL     string
		expectedVersion string
		expectedConfig  bool
	}{
		{
			name:            "defaults",
			cfg:             Config{Token: "tok"},
			expectedURL:     defaultAPIURL,
			expectedVersion: defaultAPIVersion,
			expectedConfig:  true,
		},
		{
			name:            "custom url trims slash",
			cfg:             Config{Token: "tok", APIURL: "http://localhost:9999/", APIVersion: "20240101"},
			expectedURL:     "http://localhost:9999",
			expectedVersion: "20240101",
			expectedConfig:  true,
		},
		{
			name:            "no token",
			cfg:             Config{},
			expectedURL:     defaultAPIURL,
			expectedVersion: defaultAPIVersion,
			expectedConfig:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.cfg)
			require.NotNil(t, c)
			assert.Equal(t, tt.expectedURL, c.apiURL)
			assert.Equal(t, tt.expectedVersion, c.apiVersion)
			assert.Equal(t, tt.expectedConfig, c.IsConfigured())
			assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
		})
	}
}

func TestUnderstand_ReminderWithDateTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/message", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "20230514", r.URL.Query().Get("v"))
		assert.Equal(t, "recordarme comprar pan mañana a las 18hs", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"text": "recordarme comprar pan mañana a las 18hs",
			"intents": [{"id": "1", "name": "create_reminder", "confidence": 0.97}],
			"entities": {
				"wit$datetime:datetime": [{
					"body": "mañana a las 18hs",
					"type": "value",
					"grain": "hour",
					"value": "2024-06-11T18:00:00.000-03:00"
				}]
			},
			"traits": {}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{Token: "secret", APIURL: server.URL})
	res, err := c.Understand(context.Background(), "recordarme comprar pan mañana a las 18hs")
	require.NoError(t, err)

	assert.Equal(t, IntentCreateReminder, res.Intent)
	assert.InDelta(t, 0.97, res.Confidence, 0.0001)
	require.NotNil(t, res.DateTime)
	assert.Equal(t, "2024-06-11T18:00:00.000-03:00", res.DateTime.Value)
	assert.Equal(t, "mañana a las 18hs", res.DateTime.Body)
	assert.False(t, res.DateTime.DateOnly())
}

func TestUnderstand_IntervalAndDayGrain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"intents": [{"name": "create_reminder", "confidence": 0.9}],
			"entities": {
				"wit$datetime:datetime": [{
					"body": "el fin de semana",
					"type": "interval",
					"from": {"value": "2024-06-15T00:00:00.000-03:00", "grain": "day"},
					"to": {"value": "2024-06-17T00:00:00.000-03:00", "grain": "day"}
				}]
			}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{Token: "secret", APIURL: server.URL})
	res, err := c.Understand(context.Background(), "limpiar el fin de semana")
	require.NoError(t, err)

	require.NotNil(t, res.DateTime)
	assert.Equal(t, "2024-06-15T00:00:00.000-03:00", res.DateTime.Value)
	assert.True(t, res.DateTime.DateOnly())
}

func TestUnderstand_NoIntentNoEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text": "hola", "intents": [], "entities": {}, "traits": {}}`))
	}))
	defer server.Close()

	c := NewClient(Config{Token: "secret", APIURL: server.URL})
	res, err := c.Understand(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, IntentNone, res.Intent)
	assert.Nil(t, res.DateTime)
}

func TestUnderstand_RoleKeyedEntity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"intents": [{"name": "create_reminder", "confidence": 0.9}],
			"entities": {"wit$datetime:due": [{"body": "hoy", "value": "2024-06-10T00:00:00.000-03:00", "grain": "day"}]}
		}`))
	}))
	defer server.Close()

	c := NewClient(Config{Token: "secret", APIURL: server.URL})
	res, err := c.Understand(context.Background(), "pagar hoy")
	require.NoError(t, err)
	require.NotNil(t, res.DateTime)
	assert.Equal(t, "hoy", res.DateTime.Body)
}

func TestUnderstand_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		c := NewClient(Config{})
		_, err := c.Understand(context.Background(), "hola")
		assert.True(t, errors.Is(err, ErrNotConfigured))
	})

	t.Run("http error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Bad auth, check token/params", "code": "no-auth"}`))
		}))
		defer server.Close()

		c := NewClient(Config{Token: "bad", APIURL: server.URL})
		_, err := c.Understand(context.Background(), "hola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		c := NewClient(Config{Token: "tok", APIURL: server.URL})
		_, err := c.Understand(context.Background(), "hola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse response")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		c := NewClient(Config{Token: "tok", APIURL: server.URL, Timeout: 20 * time.Millisecond})
		_, err := c.Understand(context.Background(), "hola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send request")
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxLen   int
		expected string
	}{
		{name: "short", in: "hola", maxLen: 10, expected: "hola"},
		{name: "ascii", in: "abcdef", maxLen: 3, expected: "abc..."},
		{name: "cut inside a rune", in: "mañana", maxLen: 3, expected: "ma..."},
		{name: "cut after a rune", in: "mañana", maxLen: 4, expected: "mañ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.maxLen)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
