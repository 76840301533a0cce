package reply

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tucalendariobot/tucalendariobot/internal/reminder"
	"github.com/tucalendariobot/tucalendariobot/internal/schedule"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

func testEvent(hour, minute int) reminder.Event {
	return reminder.Compose(reminder.ComposeInput{
		Schedule:   schedule.Schedule{Year: 2024, Month: time.June, Day: 10, Hour: hour, Minute: minute},
		Title:      "Comprar pan",
		SenderName: "Lucía",
		BotName:    "TuCalendarioBot",
	})
}

func TestConfirmationText(t *testing.T) {
	f := &Formatter{BotName: "TuCalendarioBot"}

	expected := "✅ Evento \"Comprar pan\"\n" +
		"📅 Creado para: Lunes, 10 de junio de 2024\n" +
		"🕒 Horario: 18:00\n\n" +
		"📱 Toca el siguiente enlace para agregar este evento a tu calendario:\n" +
		"https://www.google.com/calendar/event?action=TEMPLATE&text=Comprar%20pan" +
		"&details=Creado%20por%20TuCalendarioBot&dates=20240610T180000/20240610T183000" +
		"&ctz=America%2FArgentina%2FBuenos_Aires&output=mobile\n\n" +
		"⏰ El evento incluye un recordatorio 30 minutos antes."

	assert.Equal(t, expected, f.ConfirmationText(testEvent(18, 0)))
}

func TestConfirmation_Idempotent(t *testing.T) {
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &Formatter{BotName: "TuCalendarioBot", AttachICS: true, Now: func() time.Time { return stamp }}
	ev := testEvent(9, 5)

	first, err := f.Confirmation(ev)
	require.NoError(t, err)
	second, err := f.Confirmation(ev)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	require.NotNil(t, first.Document)
	require.NotNil(t, second.Document)
	assert.True(t, bytes.Equal(first.Document.Data, second.Document.Data))
}

func TestDeepLink_DatesRoundTrip(t *testing.T) {
	f := &Formatter{BotName: "TuCalendarioBot"}

	for _, ev := range []reminder.Event{testEvent(18, 0), testEvent(23, 45)} {
		link := f.DeepLink(ev)

		u, err := url.Parse(link)
		require.NoError(t, err)
		q := u.Query()

		parts := strings.Split(q.Get("dates"), "/")
		require.Len(t, parts, 2)

		start, err := timeutil.ParseCompact(parts[0])
		require.NoError(t, err)
		end, err := timeutil.ParseCompact(parts[1])
		require.NoError(t, err)

		assert.True(t, ev.Start.Equal(start))
		assert.True(t, ev.End.Equal(end))
		assert.Equal(t, "Comprar pan", q.Get("text"))
		assert.Equal(t, "Creado por TuCalendarioBot", q.Get("details"))
		assert.Equal(t, timeutil.DefaultTimezone, q.Get("ctz"))
		assert.Equal(t, "mobile", q.Get("output"))
	}
}

func TestDeepLink_EscapesReservedCharacters(t *testing.T) {
	f := &Formatter{BotName: "Bot"}
	ev := testEvent(10, 0)
	ev.Title = "Pan & queso = 100% rico"

	u, err := url.Parse(f.DeepLink(ev))
	require.NoError(t, err)
	assert.Equal(t, "Pan & queso = 100% rico", u.Query().Get("text"))
	assert.NotContains(t, u.RawQuery, "+")
}

func TestEncodeComponent(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Comprar pan", "Comprar%20pan"},
		{"Cumple (Ana)! ~*'", "Cumple%20(Ana)!%20~*'"},
		{"1+1 = 2", "1%2B1%20%3D%202"},
		{"a/b?c#d", "a%2Fb%3Fc%23d"},
		{"Lucía", "Luc%C3%ADa"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, encodeComponent(tt.in))
		})
	}
}

func TestConfirmation_TextIndependentOfClock(t *testing.T) {
	ev := testEvent(9, 5)
	early := &Formatter{BotName: "TuCalendarioBot", AttachICS: true, Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }}
	late := &Formatter{BotName: "TuCalendarioBot", AttachICS: true, Now: func() time.Time { return time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC) }}

	first, err := early.Confirmation(ev)
	require.NoError(t, err)
	second, err := late.Confirmation(ev)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	require.NotNil(t, first.Document)
	assert.Contains(t, string(first.Document.Data), "DTSTAMP:20240601T000000Z")
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		when     time.Time
		expected string
	}{
		{time.Date(2024, 6, 10, 18, 0, 0, 0, timeutil.Zone), "Lunes, 10 de junio de 2024"},
		{time.Date(2024, 1, 3, 9, 0, 0, 0, timeutil.Zone), "Miércoles, 3 de enero de 2024"},
		{time.Date(2024, 12, 28, 9, 0, 0, 0, timeutil.Zone), "Sábado, 28 de diciembre de 2024"},
		// 02:00 UTC is still the previous evening in Argentina.
		{time.Date(2024, 6, 11, 2, 0, 0, 0, time.UTC), "Lunes, 10 de junio de 2024"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDate(tt.when))
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:05", FormatClock(time.Date(2024, 6, 10, 9, 5, 0, 0, timeutil.Zone)))
	assert.Equal(t, "00:15", FormatClock(time.Date(2024, 6, 11, 0, 15, 0, 0, timeutil.Zone)))
}

func TestICS(t *testing.T) {
	ev := testEvent(18, 0)
	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	data, err := ICS(ev, "owner@example.com", stamp)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "TRIGGER:-PT30M")
	assert.Contains(t, body, "ORGANIZER:mailto:owner@example.com")

	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)

	summary := events[0].GetProperty(ics.ComponentPropertySummary)
	require.NotNil(t, summary)
	assert.Equal(t, "Comprar pan", summary.Value)

	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, ev.Start.Equal(start))
}

func TestICS_InvalidRange(t *testing.T) {
	_, err := ICS(reminder.Event{Title: "x"}, "", time.Now())
	assert.Error(t, err)
}

func TestCreationFailed(t *testing.T) {
	r := CreationFailed("quota exceeded")
	assert.Equal(t, "❌ Error al crear el evento: quota exceeded", r.Text)
	assert.Nil(t, r.Document)
}

func TestEventUID_Stable(t *testing.T) {
	start := time.Date(2024, 6, 10, 15, 0, 0, 0, time.FixedZone("-03", -3*60*60))
	ev := reminder.Event{Title: "Comprar pan", Start: start, End: start.Add(30 * time.Minute)}

	assert.Equal(t, eventUID(ev), eventUID(ev))
	assert.True(t, strings.HasSuffix(eventUID(ev), "@tucalendariobot"))

	other := ev
	other.Title = "Comprar leche"
	assert.NotEqual(t, eventUID(ev), eventUID(other))
}
