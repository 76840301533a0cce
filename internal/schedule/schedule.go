// Package schedule turns a free-text Spanish reminder request into a concrete date,
// time of day and task title.
//
// Three extractors run independently over the same raw text: the weekday resolver,
// the time extractor and the title cleaner. Resolve merges their outputs with the
// coarse datetime reported by the NLU service.
package schedule

import (
	"time"
)

// Schedule is a wall-clock date and time. Month is 1-based.
type Schedule struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// Time returns the schedule as an instant in loc.
func (s Schedule) Time(loc *time.Location) time.Time {
	return time.Date(s.Year, s.Month, s.Day, s.Hour, s.Minute, 0, 0, loc)
}

// Input is everything Resolve needs for one message.
type Input struct {
	Text string

	// Base is the NLU datetime already converted to local wall-clock time.
	Base time.Time

	// EntityBody is the substring the NLU service matched as the datetime.
	EntityBody string

	// DateOnly reports that the NLU datetime has no time-of-day component
	// (day grain or coarser); its midnight hour is then ignored.
	DateOnly bool

	Now time.Time
}

// Resolution is the merged result of the three extractors.
type Resolution struct {
	Schedule Schedule
	Title    string
	Weekday  *WeekdayMatch
	Time     Guess
}

// Resolve derives the schedule and title for a message.
func Resolve(in Input) Resolution {
	year, month, day := in.Base.Date()

	var weekday *WeekdayMatch
	if m, ok := ResolveWeekday(in.Text, in.Now); ok {
		weekday = &m
		year, month, day = m.Date.Date()
	}

	initial := Guess{Hour: in.Base.Hour(), Minute: in.Base.Minute()}
	if in.DateOnly {
		initial = Guess{Hour: DefaultHour}
	}
	guess := ExtractTime(in.Text, initial)

	titleIn := TitleInput{
		Text:            in.Text,
		EntityBody:      in.EntityBody,
		ClockLiteral:    guess.ClockLiteral,
		MeridiemLiteral: guess.MeridiemLiteral,
	}
	if weekday != nil {
		titleIn.WeekdayLiteral = weekday.Literal
	}

	return Resolution{
		Schedule: Schedule{
			Year:   year,
			Month:  month,
			Day:    day,
			Hour:   guess.Hour,
			Minute: guess.Minute,
		},
		Title:   CleanTitle(titleIn),
		Weekday: weekday,
		Time:    guess,
	}
}
