package timeutil

import (
	"fmt"
	"time"
	_ "time/tzdata" // hosts without a zoneinfo database
)

// DefaultTimezone is the IANA name reported to Google Calendar and the deep link.
const DefaultTimezone = "America/Argentina/Buenos_Aires"

// Zone is Argentina standard time. The offset is hardcoded: Argentina does not observe
// DST and events must never shift with a tz database update.
var Zone = time.FixedZone("-03", -3*60*60)

const (
	localISOLayout = "2006-01-02T15:04:05-07:00"
	compactLayout  = "20060102T150405"
)

// ResolveLocation validates a timezone name, falling back to DefaultTimezone.
// The second return value reports whether the fallback was used.
func ResolveLocation(timezone string) (string, bool) {
	if timezone == "" {
		return DefaultTimezone, true
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return DefaultTimezone, true
	}
	return timezone, false
}

// ParseDateTime parses a datetime in RFC3339 (with explicit offset) or local layouts
// and returns it as wall-clock time in Zone.
func ParseDateTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(Zone), nil
	}

	layouts := []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, Zone); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", value)
}

// FormatLocalISO renders t as local time with the fixed -03:00 suffix.
func FormatLocalISO(t time.Time) string {
	return t.In(Zone).Format(localISOLayout)
}

// FormatCompact renders t as YYYYMMDDTHHMMSS with no separators or offset.
func FormatCompact(t time.Time) string {
	return t.In(Zone).Format(compactLayout)
}

// ParseCompact is the inverse of FormatCompact.
func ParseCompact(value string) (time.Time, error) {
	t, err := time.ParseInLocation(compactLayout, value, Zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse compact time %q: %w", value, err)
	}
	return t, nil
}
