package reminder

import (
	"fmt"
	"time"

	"github.com/tucalendariobot/tucalendariobot/internal/schedule"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

const (
	// Duration is the fixed length of every created event.
	Duration = 30 * time.Minute
	// PopupMinutes is how long before the start the single popup reminder fires.
	PopupMinutes = 30
	// Visibility marks created events as public.
	Visibility = "public"
)

// Event is the calendar event built for one message. Start and End are in timeutil.Zone.
type Event struct {
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	TimeZone     string
	PopupMinutes int
	Visibility   string
}

// ComposeInput holds what the composer merges into an Event.
type ComposeInput struct {
	Schedule   schedule.Schedule
	Title      string
	SenderName string
	BotName    string
	TimeZone   string
}

// Compose builds the event. End is computed with time arithmetic so a start late in
// the evening rolls the end over to the next day.
func Compose(in ComposeInput) Event {
	start := in.Schedule.Time(timeutil.Zone)
	tz := in.TimeZone
	if tz == "" {
		tz = timeutil.DefaultTimezone
	}

	return Event{
		Title:        in.Title,
		Description:  Description(in.BotName, in.SenderName),
		Start:        start,
		End:          start.Add(Duration),
		TimeZone:     tz,
		PopupMinutes: PopupMinutes,
		Visibility:   Visibility,
	}
}

// Description is the fixed event description naming the bot and the sender.
func Description(botName, senderName string) string {
	if senderName == "" {
		return fmt.Sprintf("Creado por %s", botName)
	}
	return fmt.Sprintf("Creado por %s para %s", botName, senderName)
}

// StartISO is the start as local time with the fixed -03:00 suffix.
func (e Event) StartISO() string { return timeutil.FormatLocalISO(e.Start) }

// EndISO is the end as local time with the fixed -03:00 suffix.
func (e Event) EndISO() string { return timeutil.FormatLocalISO(e.End) }
