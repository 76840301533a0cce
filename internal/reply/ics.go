package reply

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/tucalendariobot/tucalendariobot/internal/reminder"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

// ICS renders ev as a single-event iCalendar document with the same popup alarm the
// Google event carries. The UID depends only on title and start.
func ICS(ev reminder.Event, organizer string, stamp time.Time) ([]byte, error) {
	if ev.Start.IsZero() || !ev.End.After(ev.Start) {
		return nil, fmt.Errorf("event has an invalid time range")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TuCalendarioBot//ES")

	vev := cal.AddEvent(eventUID(ev))
	vev.SetDtStampTime(stamp)
	vev.SetStartAt(ev.Start)
	vev.SetEndAt(ev.End)
	vev.SetSummary(ev.Title)
	vev.SetDescription(ev.Description)
	vev.SetProperty(ics.ComponentPropertyClass, "PUBLIC")
	if organizer != "" {
		vev.SetOrganizer("mailto:" + organizer)
	}

	alarm := vev.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.PopupMinutes))
	alarm.SetProperty(ics.ComponentPropertyDescription, ev.Title)

	return []byte(cal.Serialize()), nil
}

func eventUID(ev reminder.Event) string {
	name := timeutil.FormatCompact(ev.Start) + "/" + ev.Title
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@tucalendariobot"
}
