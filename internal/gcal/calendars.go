package gcal

import (
	"context"
	"fmt"
)

// CalendarInfo represents a Google Calendar
type CalendarInfo struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	TimeZone string `json:"time_zone"`
}

// GetCalendar fetches calendar metadata. Used at startup to verify the service
// account can reach the target calendar.
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotConfigured
	}
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	cal, err := c.service.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	return &CalendarInfo{
		ID:       cal.Id,
		Summary:  cal.Summary,
		TimeZone: cal.TimeZone,
	}, nil
}
