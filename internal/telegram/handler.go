package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tucalendariobot/tucalendariobot/internal/metrics"
	"github.com/tucalendariobot/tucalendariobot/internal/reply"
	"github.com/tucalendariobot/tucalendariobot/internal/source"
)

// Sender delivers outbound messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// MessageProcessor turns an incoming message into the reply to send back.
type MessageProcessor interface {
	Handle(ctx context.Context, msg source.Message) reply.Reply
}

// Handler processes incoming Telegram updates. Each text message is handled in
// its own goroutine.
type Handler struct {
	sender    Sender
	processor MessageProcessor
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewHandler creates a new Telegram update handler
func NewHandler(sender Sender, processor MessageProcessor, log zerolog.Logger) *Handler {
	return &Handler{
		sender:    sender,
		processor: processor,
		log:       log.With().Str("component", "telegram").Logger(),
	}
}

// HandleUpdate dispatches a text message update; everything else is ignored.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg, ok := ToMessage(upd.Message)
	if !ok {
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.handleMessage(ctx, msg)
	}()
}

// Wait blocks until every in-flight message has been answered.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) handleMessage(ctx context.Context, msg source.Message) {
	h.log.Debug().
		Int64("chat_id", msg.ChatID).
		Int64("sender_id", msg.SenderID).
		Str("text", msg.Text).
		Msg("message received")

	r := h.processor.Handle(ctx, msg)
	if err := h.deliver(msg.ChatID, r); err != nil {
		metrics.ReplyErrors.Inc()
		h.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("failed to send reply")
	}
}

// deliver sends the reply text and then its attachment, if any.
func (h *Handler) deliver(chatID int64, r reply.Reply) error {
	out := tgbotapi.NewMessage(chatID, r.Text)
	out.DisableWebPagePreview = true
	if _, err := h.sender.Send(out); err != nil {
		return fmt.Errorf("send text: %w", err)
	}

	if r.Document == nil {
		return nil
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: r.Document.Name, Bytes: r.Document.Data})
	if _, err := h.sender.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// ToMessage converts a Telegram message into a source.Message. Messages without
// text (stickers, photos, joins) are rejected.
func ToMessage(m *tgbotapi.Message) (source.Message, bool) {
	if m == nil || m.Text == "" || m.Chat == nil {
		return source.Message{}, false
	}

	msg := source.Message{
		ChatID:     m.Chat.ID,
		MessageID:  m.MessageID,
		SenderName: source.DefaultSenderName,
		Text:       m.Text,
		Timestamp:  time.Unix(int64(m.Date), 0),
	}
	if m.From != nil {
		msg.SenderID = m.From.ID
		if m.From.FirstName != "" {
			msg.SenderName = m.From.FirstName
		}
	}
	return msg, true
}
