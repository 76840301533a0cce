package schedule

import (
	"regexp"
	"strconv"
)

// DefaultHour is used when no usable hour can be derived from the message.
const DefaultHour = 9

var (
	// "14hs", "9:30hs", "8h", "10 horas"
	suffixedClockPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{1,2}))?\s*(?:hs|hrs|horas|h)\b`)
	// "18:45"
	bareClockPattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	// "8pm", "9:15am", "9 p.m."
	meridiemPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?\s?m\b\.?`)

	morningPattern   = regexp.MustCompile(`(?i)\b(?:de|por|a|en)\s+la\s+ma(?:ñ|n)ana\b`)
	dayAfterPattern  = regexp.MustCompile(`(?i)\bpasado\s+ma(?:ñ|n)ana\b`)
	afternoonPattern = regexp.MustCompile(`(?i)\b(?:tarde|noche)\b`)
)

// Guess is the running time-of-day estimate threaded through the rules.
type Guess struct {
	Hour   int
	Minute int

	// Explicit is set when a numeric clock time ("14hs", "9:30") was found.
	Explicit bool
	// Meridiem is set when an AM/PM time overrode the hour.
	Meridiem bool

	ClockLiteral    string
	MeridiemLiteral string
}

// Rule is one named step of the time disambiguation. Rules are pure and are applied
// in order, each seeing the guess produced by the previous one.
type Rule struct {
	Name  string
	Apply func(text string, g Guess) Guess
}

// TimeRules is the precedence order: later rules override earlier ones when they match.
var TimeRules = []Rule{
	{Name: "explicit-clock", Apply: explicitClock},
	{Name: "meridiem", Apply: meridiem},
	{Name: "day-part", Apply: dayPart},
	{Name: "validate", Apply: validate},
}

// ExtractTime folds TimeRules over an initial guess. The initial guess carries the
// NLU-provided hour and minute, which win only when no rule overrides them.
func ExtractTime(text string, initial Guess) Guess {
	return ApplyRules(TimeRules, text, initial)
}

// ApplyRules folds rules over g.
func ApplyRules(rules []Rule, text string, g Guess) Guess {
	for _, r := range rules {
		g = r.Apply(text, g)
	}
	return g
}

func explicitClock(text string, g Guess) Guess {
	m := suffixedClockPattern.FindStringSubmatch(text)
	if m == nil {
		m = bareClockPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return g
	}

	g.Hour = parseNumber(m[1], -1)
	g.Minute = parseNumber(m[2], 0)
	g.Explicit = true
	g.ClockLiteral = m[0]
	return g
}

func meridiem(text string, g Guess) Guess {
	m := meridiemPattern.FindStringSubmatch(text)
	if m == nil {
		return g
	}

	hour := parseNumber(m[1], -1)
	if hour < 1 || hour > 12 {
		return g
	}

	switch m[3] {
	case "p", "P":
		if hour < 12 {
			hour += 12
		}
	default:
		if hour == 12 {
			hour = 0
		}
	}

	g.Hour = hour
	g.Minute = parseNumber(m[2], 0)
	g.Meridiem = true
	g.MeridiemLiteral = m[0]
	return g
}

// dayPart pushes an ambiguous morning hour into the afternoon or evening when the
// message says "tarde" or "noche". A morning phrase ("de la mañana") keeps it.
// "pasado mañana" means the day after tomorrow and never counts as morning.
func dayPart(text string, g Guess) Guess {
	if g.Explicit || g.Meridiem || g.Hour >= 12 || g.Hour < 0 {
		return g
	}
	if !afternoonPattern.MatchString(text) {
		return g
	}
	if morningPattern.MatchString(dayAfterPattern.ReplaceAllString(text, " ")) {
		return g
	}
	g.Hour += 12
	return g
}

func validate(_ string, g Guess) Guess {
	if g.Hour < 0 || g.Hour > 23 {
		g.Hour = DefaultHour
	}
	if g.Minute < 0 || g.Minute > 59 {
		g.Minute = 0
	}
	return g
}

func parseNumber(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
