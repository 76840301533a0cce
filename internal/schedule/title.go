package schedule

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FallbackTitle is used when nothing meaningful survives cleaning.
const FallbackTitle = "Recordatorio"

// fillerPatterns are tried in order, each once, each anchored at the start of what the
// previous one left. Several may strip cumulatively ("por favor recordarme que ...").
var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:por\s*favor|porfa),?\s+`),
	regexp.MustCompile(`(?i)^(?:podr[ií]as|pod[eé]s|puedes|quiero\s+que)\s+`),
	regexp.MustCompile(`(?i)^(?:recordarme|recordame|recordáme|recuérdame|recuerdame|acordarme|haceme\s+acordar|hazme\s+acordar|recordatorio|agendar|agendame|agéndame|anotar|anotame|anótame)\b\s*(?:(?:de|para|que|a)\s+)?`),
	regexp.MustCompile(`(?i)^(?:que\s+)?(?:tengo|debo|hay|necesito)\s+que\s+`),
	regexp.MustCompile(`(?i)^(?:que\s+)?no\s+me\s+olvide\s+(?:de\s+)?`),
}

var (
	connectorPattern  = regexp.MustCompile(`(?i)(?:^|\s)(?:a\s+las|el\s+d[ií]a|este|esta|pr[oó]ximo|pr[oó]xima)(?:\s|$)`)
	danglingPattern   = regexp.MustCompile(`(?i)\s+(?:para|el|la|los|las|a|al|de|del|en)$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

const edgePunctuation = ",.;:!?¡¿-–— "

// TitleInput carries what the other extractors found, so their literals can be removed.
type TitleInput struct {
	Text            string
	EntityBody      string // substring the NLU service matched as the date/time
	ClockLiteral    string
	MeridiemLiteral string
	WeekdayLiteral  string
}

// CleanTitle derives the task title from the raw message.
func CleanTitle(in TitleInput) string {
	text := in.Text
	if in.EntityBody != "" {
		text = strings.Replace(text, in.EntityBody, " ", 1)
	}
	text = strings.TrimSpace(text)
	beforeFiller := text

	for _, p := range fillerPatterns {
		text = p.ReplaceAllString(text, "")
	}

	// "9:30 pm" contains "9:30", so the meridiem literal goes first.
	for _, literal := range []string{in.MeridiemLiteral, in.ClockLiteral, in.WeekdayLiteral} {
		if literal != "" {
			text = strings.ReplaceAll(text, literal, " ")
		}
	}

	text = removeConnectors(text)
	title := tidy(text)
	if title == "" {
		title = tidy(beforeFiller)
	}
	if title == "" {
		return FallbackTitle
	}
	return capitalize(title)
}

// removeConnectors drops "a las", "el día", "este", "próxima"... wherever they appear.
// Matches share their surrounding spaces, so the replacement loops until stable.
func removeConnectors(s string) string {
	for {
		next := connectorPattern.ReplaceAllString(s, " ")
		if next == s {
			return next
		}
		s = next
	}
}

func tidy(s string) string {
	s = strings.Trim(whitespacePattern.ReplaceAllString(s, " "), edgePunctuation)
	for {
		next := strings.Trim(danglingPattern.ReplaceAllString(s, ""), edgePunctuation)
		if next == s {
			return next
		}
		s = next
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Spanish).String(string(r)) + s[size:]
}
