package nlu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tucalendariobot/tucalendariobot/internal/metrics"
)

const (
	defaultAPIURL     = "https://api.wit.ai"
	defaultAPIVersion = "20230514"
	defaultTimeout    = 15 * time.Second

	// DateTimeEntity is the wit.ai built-in datetime entity key.
	DateTimeEntity = "wit$datetime:datetime"
	// IntentCreateReminder is the only intent the bot acts on.
	IntentCreateReminder = "create_reminder"
	// IntentNone is reported when the service returns no intent.
	IntentNone = "none"
)

// ErrNotConfigured is returned when no bearer token was provided.
var ErrNotConfigured = errors.New("nlu client not configured")

// Client is a wit.ai message-understanding client
type Client struct {
	token      string
	apiURL     string
	apiVersion string
	httpClient *http.Client
}

// Config holds the client settings. Empty fields use defaults.
type Config struct {
	Token      string
	APIURL     string
	APIVersion string
	Timeout    time.Duration
}

// NewClient creates a new wit.ai client
func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		token:      cfg.Token,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// IsConfigured reports whether a token is set.
func (c *Client) IsConfigured() bool {
	return c.token != ""
}

// Result is what the bot reads from one NLU response.
type Result struct {
	Intent     string
	Confidence float64
	DateTime   *DateTime
}

// DateTime is the first datetime entity found in the message.
type DateTime struct {
	Value string // ISO-8601 datetime
	Body  string // substring of the message that was matched
	Grain string // "second", "minute", "hour", "day", "week", ...
}

// DateOnly reports whether the value carries no meaningful time of day.
func (d *DateTime) DateOnly() bool {
	switch d.Grain {
	case "day", "week", "month", "quarter", "year":
		return true
	}
	return false
}

type witResponse struct {
	Text    string `json:"text"`
	Intents []struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"intents"`
	Entities map[string][]witEntity `json:"entities"`
	Error    string                 `json:"error,omitempty"`
	Code     string                 `json:"code,omitempty"`
}

type witEntity struct {
	Body   string     `json:"body"`
	Type   string     `json:"type"`
	Value  string     `json:"value"`
	Grain  string     `json:"grain"`
	From   *witBound  `json:"from,omitempty"`
	To     *witBound  `json:"to,omitempty"`
	Values []witValue `json:"values,omitempty"`
}

type witBound struct {
	Value string `json:"value"`
	Grain string `json:"grain"`
}

type witValue struct {
	Type  string    `json:"type"`
	Value string    `json:"value"`
	Grain string    `json:"grain"`
	From  *witBound `json:"from,omitempty"`
}

// Understand sends text to the /message endpoint and extracts the intent and the
// first datetime entity.
func (c *Client) Understand(ctx context.Context, text string) (*Result, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("v", c.apiVersion)
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/message?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveNLU("error", time.Since(start))
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveNLU(strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed witResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("API error (%s): %s", parsed.Code, parsed.Error)
	}

	return toResult(&parsed), nil
}

func toResult(r *witResponse) *Result {
	result := &Result{Intent: IntentNone}
	if len(r.Intents) > 0 && r.Intents[0].Name != "" {
		result.Intent = r.Intents[0].Name
		result.Confidence = r.Intents[0].Confidence
	}

	entities, ok := r.Entities[DateTimeEntity]
	if !ok {
		// Custom roles are keyed "wit$datetime:<role>".
		for key, list := range r.Entities {
			if strings.HasPrefix(key, "wit$datetime:") {
				entities = list
				break
			}
		}
	}
	if len(entities) > 0 {
		result.DateTime = toDateTime(entities[0])
	}
	return result
}

func toDateTime(e witEntity) *DateTime {
	dt := &DateTime{Body: e.Body, Value: e.Value, Grain: e.Grain}
	if dt.Value == "" && e.From != nil {
		dt.Value, dt.Grain = e.From.Value, e.From.Grain
	}
	if dt.Value == "" && len(e.Values) > 0 {
		v := e.Values[0]
		dt.Value, dt.Grain = v.Value, v.Grain
		if dt.Value == "" && v.From != nil {
			dt.Value, dt.Grain = v.From.Value, v.From.Grain
		}
	}
	if dt.Value == "" {
		return nil
	}
	return dt
}

// truncate cuts s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
