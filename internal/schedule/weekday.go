package schedule

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var weekdayPattern = regexp.MustCompile(`(?i)\b(?:lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)\b`)

var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

// WeekdayMatch is the outcome of scanning a message for a Spanish weekday name.
type WeekdayMatch struct {
	Literal string // substring as written in the message
	Weekday time.Weekday
	Date    time.Time // midnight of the resolved day, in now's location
}

// ResolveWeekday finds the first weekday name in text and returns the next date on
// that weekday strictly after now. When the named day is today it rolls to next week.
func ResolveWeekday(text string, now time.Time) (WeekdayMatch, bool) {
	literal := weekdayPattern.FindString(text)
	if literal == "" {
		return WeekdayMatch{}, false
	}

	target, ok := weekdays[foldDiacritics(strings.ToLower(literal))]
	if !ok {
		return WeekdayMatch{}, false
	}

	offset := int(target) - int(now.Weekday())
	if offset <= 0 {
		offset += 7
	}

	date := time.Date(now.Year(), now.Month(), now.Day()+offset, 0, 0, 0, 0, now.Location())
	return WeekdayMatch{Literal: literal, Weekday: target, Date: date}, true
}

// foldDiacritics strips combining marks so "miércoles" and "miercoles" compare equal.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
