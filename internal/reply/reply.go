// Package reply renders what the bot sends back to the chat: the confirmation text,
// the calendar deep link, the optional iCalendar attachment and the canned answers.
package reply

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tucalendariobot/tucalendariobot/internal/reminder"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

const deepLinkBase = "https://www.google.com/calendar/event"

// Canned replies.
const (
	NotUnderstood = "No entendí qué querés hacer. ¿Querés que agende algo?"
	NoDateTime    = "❌ No pude entender la fecha/hora del evento."
	NLUFailed     = "❌ No pude procesar tu mensaje en este momento. Probá de nuevo en unos minutos."
	Help          = "👋 Escribime lo que querés recordar y cuándo, por ejemplo:\n" +
		"• recordarme comprar pan mañana a las 18hs\n" +
		"• reunión con Juan el jueves a las 9am\n\n" +
		"Lo agendo en el calendario con un recordatorio 30 minutos antes."
)

var (
	spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	spanishMonths   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// Reply is one outbound chat message, optionally with a file attached.
type Reply struct {
	Text     string
	Document *Document
}

// Document is a file sent alongside the text.
type Document struct {
	Name string
	Data []byte
}

// Text wraps a plain-text reply.
func Text(s string) Reply {
	return Reply{Text: s}
}

// CreationFailed is the reply for a calendar insert error carrying the provider's message.
func CreationFailed(message string) Reply {
	return Text("❌ Error al crear el evento: " + message)
}

// Formatter renders confirmations. It holds no per-message state.
type Formatter struct {
	BotName   string
	AttachICS bool
	Organizer string // email used as ICS organizer; optional
	Now       func() time.Time
}

// Confirmation renders the success reply for a created event. The text depends only on
// ev; the ICS attachment also carries DTSTAMP from f.Now.
func (f *Formatter) Confirmation(ev reminder.Event) (Reply, error) {
	r := Reply{Text: f.ConfirmationText(ev)}
	if !f.AttachICS {
		return r, nil
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	data, err := ICS(ev, f.Organizer, now())
	if err != nil {
		return r, fmt.Errorf("failed to build ics: %w", err)
	}
	r.Document = &Document{Name: "evento.ics", Data: data}
	return r, nil
}

// ConfirmationText is the human-readable confirmation with the deep link.
func (f *Formatter) ConfirmationText(ev reminder.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Evento \"%s\"\n", ev.Title)
	fmt.Fprintf(&b, "📅 Creado para: %s\n", FormatDate(ev.Start))
	fmt.Fprintf(&b, "🕒 Horario: %s\n\n", FormatClock(ev.Start))
	b.WriteString("📱 Toca el siguiente enlace para agregar este evento a tu calendario:\n")
	b.WriteString(f.DeepLink(ev))
	fmt.Fprintf(&b, "\n\n⏰ El evento incluye un recordatorio %d minutos antes.", ev.PopupMinutes)
	return b.String()
}

// DeepLink builds the Google Calendar template link that opens the app on mobile.
func (f *Formatter) DeepLink(ev reminder.Event) string {
	params := []struct{ key, value string }{
		{"action", "TEMPLATE"},
		{"text", encodeComponent(ev.Title)},
		{"details", encodeComponent(reminder.Description(f.BotName, ""))},
		{"dates", timeutil.FormatCompact(ev.Start) + "/" + timeutil.FormatCompact(ev.End)},
		{"ctz", encodeComponent(ev.TimeZone)},
		{"output", "mobile"},
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+p.value)
	}
	return deepLinkBase + "?" + strings.Join(parts, "&")
}

// FormatDate renders t like es-AR "Lunes, 10 de junio de 2024" with a capitalized weekday.
func FormatDate(t time.Time) string {
	t = t.In(timeutil.Zone)
	weekday := spanishWeekdays[t.Weekday()]
	weekday = strings.ToUpper(weekday[:1]) + weekday[1:]
	return fmt.Sprintf("%s, %d de %s de %d", weekday, t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatClock renders t as two-digit 24h "HH:MM".
func FormatClock(t time.Time) string {
	return t.In(timeutil.Zone).Format("15:04")
}

// componentUnescaper undoes the QueryEscape choices that encodeURIComponent does not make.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes like JavaScript's encodeURIComponent.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
