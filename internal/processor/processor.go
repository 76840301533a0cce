package processor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tucalendariobot/tucalendariobot/internal/gcal"
	"github.com/tucalendariobot/tucalendariobot/internal/metrics"
	"github.com/tucalendariobot/tucalendariobot/internal/nlu"
	"github.com/tucalendariobot/tucalendariobot/internal/reminder"
	"github.com/tucalendariobot/tucalendariobot/internal/reply"
	"github.com/tucalendariobot/tucalendariobot/internal/schedule"
	"github.com/tucalendariobot/tucalendariobot/internal/source"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

// Understander classifies a message and extracts its datetime.
type Understander interface {
	Understand(ctx context.Context, text string) (*nlu.Result, error)
}

// EventCreator inserts calendar events.
type EventCreator interface {
	CreateEvent(ctx context.Context, calendarID string, input gcal.EventInput) (*gcal.CreatedEvent, error)
}

// Config holds the processor settings.
type Config struct {
	CalendarID string
	BotName    string
	TimeZone   string
	Formatter  *reply.Formatter
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Processor turns one incoming message into one reply. It keeps no state between
// messages and is safe for concurrent use.
type Processor struct {
	nlu        Understander
	calendar   EventCreator
	formatter  *reply.Formatter
	calendarID string
	botName    string
	timeZone   string
	log        zerolog.Logger
	now        func() time.Time
}

// New creates a message processor
func New(understander Understander, calendar EventCreator, cfg Config) *Processor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = timeutil.DefaultTimezone
	}
	if cfg.Formatter == nil {
		cfg.Formatter = &reply.Formatter{BotName: cfg.BotName, Now: cfg.Now}
	}

	return &Processor{
		nlu:        understander,
		calendar:   calendar,
		formatter:  cfg.Formatter,
		calendarID: cfg.CalendarID,
		botName:    cfg.BotName,
		timeZone:   cfg.TimeZone,
		log:        cfg.Logger.With().Str("component", "processor").Logger(),
		now:        cfg.Now,
	}
}

// Handle runs the whole pipeline for msg and returns the reply to send back.
func (p *Processor) Handle(ctx context.Context, msg source.Message) reply.Reply {
	log := p.log.With().Int64("chat_id", msg.ChatID).Logger()

	if cmd, ok := msg.Command(); ok && (cmd == "start" || cmd == "help") {
		metrics.MessagesTotal.WithLabelValues("command").Inc()
		return reply.Text(reply.Help)
	}

	result, err := p.nlu.Understand(ctx, msg.Text)
	if err != nil {
		metrics.MessagesTotal.WithLabelValues("nlu_error").Inc()
		if errors.Is(err, nlu.ErrNotConfigured) {
			log.Error().Msg("nlu client has no token")
		} else {
			log.Error().Err(err).Msg("nlu request failed")
		}
		return reply.Text(reply.NLUFailed)
	}
	metrics.MessagesTotal.WithLabelValues(result.Intent).Inc()

	if result.Intent != nlu.IntentCreateReminder {
		log.Debug().Str("intent", result.Intent).Msg("unsupported intent")
		return reply.Text(reply.NotUnderstood)
	}
	if result.DateTime == nil {
		return reply.Text(reply.NoDateTime)
	}

	base, err := timeutil.ParseDateTime(result.DateTime.Value)
	if err != nil {
		log.Warn().Err(err).Str("value", result.DateTime.Value).Msg("unparseable datetime entity")
		return reply.Text(reply.NoDateTime)
	}

	ev := p.compose(msg, result.DateTime, base)

	created, err := p.calendar.CreateEvent(ctx, p.calendarID, gcal.EventInput{
		Summary:      ev.Title,
		Description:  ev.Description,
		StartTime:    ev.Start,
		EndTime:      ev.End,
		TimeZone:     ev.TimeZone,
		PopupMinutes: ev.PopupMinutes,
		Visibility:   ev.Visibility,
	})
	if err != nil {
		metrics.EventCreateErrors.Inc()
		log.Error().Err(err).
			Str("title", ev.Title).
			Str("start", ev.StartISO()).
			Msg("failed to create calendar event")
		return reply.CreationFailed(gcal.ProviderMessage(err))
	}
	metrics.EventsCreated.Inc()
	log.Info().
		Str("event_id", created.ID).
		Str("title", ev.Title).
		Str("start", ev.StartISO()).
		Msg("calendar event created")

	r, err := p.formatter.Confirmation(ev)
	if err != nil {
		log.Warn().Err(err).Msg("sending confirmation without attachment")
	}
	return r
}

// Preview resolves the event a message would create without calling any external
// service. dt is the datetime the NLU service would have reported.
func (p *Processor) Preview(msg source.Message, dt *nlu.DateTime) (reminder.Event, error) {
	base, err := timeutil.ParseDateTime(dt.Value)
	if err != nil {
		return reminder.Event{}, err
	}
	return p.compose(msg, dt, base), nil
}

func (p *Processor) compose(msg source.Message, dt *nlu.DateTime, base time.Time) reminder.Event {
	res := schedule.Resolve(schedule.Input{
		Text:       msg.Text,
		Base:       base.In(timeutil.Zone),
		EntityBody: dt.Body,
		DateOnly:   dt.DateOnly(),
		Now:        p.now().In(timeutil.Zone),
	})

	return reminder.Compose(reminder.ComposeInput{
		Schedule:   res.Schedule,
		Title:      res.Title,
		SenderName: msg.Sender(),
		BotName:    p.botName,
		TimeZone:   p.timeZone,
	})
}
