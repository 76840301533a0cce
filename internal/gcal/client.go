package gcal

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultCalendarID is the service account's own calendar.
const DefaultCalendarID = "primary"

// ErrNotConfigured is returned when the calendar service was never initialized.
var ErrNotConfigured = errors.New("calendar service not initialized")

// Client wraps the Google Calendar API client
type Client struct {
	service        *calendar.Service
	serviceAccount string
}

// NewClient creates a Google Calendar client authenticated as a service account
func NewClient(ctx context.Context, creds Credentials) (*Client, error) {
	httpClient, email, err := serviceAccountClient(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to load service account: %w", err)
	}

	client, err := NewClientWithOptions(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	client.serviceAccount = email
	return client, nil
}

// NewClientWithOptions creates a client from raw API options (custom endpoint,
// pre-authenticated HTTP client).
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{service: service}, nil
}

// IsAuthenticated returns true if the client is authenticated
func (c *Client) IsAuthenticated() bool {
	return c != nil && c.service != nil
}

// ServiceAccount returns the client email of the service account, if known.
func (c *Client) ServiceAccount() string {
	return c.serviceAccount
}
