package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/calendar/v3"
)

// WitReply is a canned wit.ai /message response for one query text.
type WitReply struct {
	Intent   string
	Value    string // datetime value; empty means no datetime entity
	Body     string
	Grain    string
	Status   int // 0 means 200
	RawError string
}

// FakeWit serves /message from a map of query text to reply. Unknown texts get no
// intent and no entities.
type FakeWit struct {
	Server  *httptest.Server
	Token   string
	mu      sync.Mutex
	replies map[string]WitReply
	queries []string
}

// NewFakeWit starts a fake wit.ai server closed at test cleanup.
func NewFakeWit(t *testing.T) *FakeWit {
	t.Helper()
	f := &FakeWit{Token: "test-token", replies: make(map[string]WitReply)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// On registers the reply for text.
func (f *FakeWit) On(text string, reply WitReply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[text] = reply
}

// Queries returns every text received so far.
func (f *FakeWit) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *FakeWit) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/message" || r.Header.Get("Authorization") != "Bearer "+f.Token {
		http.Error(w, `{"error":"Bad auth","code":"no-auth"}`, http.StatusUnauthorized)
		return
	}

	text := r.URL.Query().Get("q")
	f.mu.Lock()
	f.queries = append(f.queries, text)
	reply, ok := f.replies[text]
	f.mu.Unlock()

	if ok && reply.Status != 0 && reply.Status != http.StatusOK {
		w.WriteHeader(reply.Status)
		_, _ = w.Write([]byte(reply.RawError))
		return
	}

	resp := map[string]interface{}{
		"text":     text,
		"intents":  []interface{}{},
		"entities": map[string]interface{}{},
		"traits":   map[string]interface{}{},
	}
	if ok && reply.Intent != "" {
		resp["intents"] = []map[string]interface{}{
			{"id": "1", "name": reply.Intent, "confidence": 0.99},
		}
	}
	if ok && reply.Value != "" {
		grain := reply.Grain
		if grain == "" {
			grain = "hour"
		}
		resp["entities"] = map[string]interface{}{
			"wit$datetime:datetime": []map[string]interface{}{{
				"body":  reply.Body,
				"type":  "value",
				"value": reply.Value,
				"grain": grain,
			}},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// FakeCalendar records events inserted through the Calendar v3 REST API.
type FakeCalendar struct {
	Server *httptest.Server
	mu     sync.Mutex
	events []*calendar.Event
	failed *calendarError
}

type calendarError struct {
	code    int
	message string
}

// NewFakeCalendar starts a fake Calendar API closed at test cleanup. Point the client
// at Endpoint().
func NewFakeCalendar(t *testing.T) *FakeCalendar {
	t.Helper()
	f := &FakeCalendar{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// Endpoint is the base URL to pass to option.WithEndpoint.
func (f *FakeCalendar) Endpoint() string {
	return f.Server.URL + "/calendar/v3/"
}

// Fail makes every following insert return a Google API error.
func (f *FakeCalendar) Fail(code int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = &calendarError{code: code, message: message}
}

// Events returns the inserted events in order.
func (f *FakeCalendar) Events() []*calendar.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*calendar.Event(nil), f.events...)
}

func (f *FakeCalendar) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/events") {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failed != nil {
		w.WriteHeader(f.failed.code)
		_, _ = fmt.Fprintf(w, `{"error": {"code": %d, "message": %q}}`, f.failed.code, f.failed.message)
		return
	}

	var ev calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "Parse Error"}}`))
		return
	}

	ev.Id = fmt.Sprintf("evt%d", len(f.events)+1)
	ev.HtmlLink = "https://www.google.com/calendar/event?eid=" + ev.Id
	f.events = append(f.events, &ev)
	_ = json.NewEncoder(w).Encode(&ev)
}
