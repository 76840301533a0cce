package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

const reminderMethodPopup = "popup"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary      string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	TimeZone     string
	PopupMinutes int    // 0 keeps the calendar's default reminders
	Visibility   string // "default", "public", "private"
}

// CreatedEvent is what the API returned for an inserted event.
type CreatedEvent struct {
	ID       string
	HTMLLink string
}

// BuildEvent converts the input into the API payload. Times are written as local
// time with the fixed -03:00 offset plus the IANA zone name.
func BuildEvent(input EventInput) *calendar.Event {
	tz := input.TimeZone
	if tz == "" {
		tz = timeutil.DefaultTimezone
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: timeutil.FormatLocalISO(input.StartTime),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: timeutil.FormatLocalISO(input.EndTime),
			TimeZone: tz,
		},
		Visibility: input.Visibility,
	}

	if input.PopupMinutes > 0 {
		event.Reminders = &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: reminderMethodPopup, Minutes: int64(input.PopupMinutes)},
			},
			// UseDefault=false is the zero value and would be dropped otherwise.
			ForceSendFields: []string{"UseDefault"},
		}
	}

	return event
}

// CreateEvent inserts a new event and returns its ID and link
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*CreatedEvent, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotConfigured
	}

	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("event end must be after start")
	}

	created, err := c.service.Events.Insert(calendarID, BuildEvent(input)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &CreatedEvent{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

// ProviderMessage extracts the human-readable message from a Google API error,
// falling back to the full error text.
func ProviderMessage(err error) string {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Message != "" {
		return gErr.Message
	}
	return err.Error()
}
