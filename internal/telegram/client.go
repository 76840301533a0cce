package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const pollTimeoutSeconds = 60

// Client manages the Bot API connection and the long-polling loop
type Client struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewClient authenticates the bot token and returns a client ready to poll.
func NewClient(token string, log zerolog.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect bot api: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		api:    api,
		log:    log.With().Str("component", "telegram").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// API exposes the underlying bot, which also implements Sender.
func (c *Client) API() *tgbotapi.BotAPI {
	return c.api
}

// Username returns the bot's @username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Start begins long polling and hands every update to handler.
func (c *Client) Start(handler *Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("telegram client already started")
	}
	c.running = true
	c.handler = handler

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := c.api.GetUpdatesChan(u)

	// In-flight messages finish even after polling is cancelled.
	handleCtx := context.WithoutCancel(c.ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				handler.HandleUpdate(handleCtx, upd)
			}
		}
	}()

	c.log.Info().Str("bot", c.Username()).Msg("telegram polling started")
	return nil
}

// Stop ends polling and waits for in-flight replies.
func (c *Client) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}

	c.api.StopReceivingUpdates()
	c.cancel()
	c.wg.Wait()
	if c.handler != nil {
		c.handler.Wait()
	}
	c.running = false
	c.log.Info().Msg("telegram polling stopped")
}
