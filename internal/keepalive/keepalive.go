// Package keepalive pings the bot's own public URL so an idle free-tier host does
// not suspend the process.
package keepalive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tucalendariobot/tucalendariobot/internal/metrics"
)

const (
	DefaultInterval = 14 * time.Minute
	pingTimeout     = 30 * time.Second
)

// ErrNoURL is returned by Start when no external URL is configured.
var ErrNoURL = errors.New("keepalive url not configured")

type Config struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
	Logger   zerolog.Logger
}

// Pinger periodically GETs URL.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      zerolog.Logger
	cron     *cron.Cron
}

func New(cfg Config) *Pinger {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: pingTimeout}
	}

	return &Pinger{
		url:      strings.TrimSpace(cfg.URL),
		interval: cfg.Interval,
		client:   cfg.Client,
		log:      cfg.Logger.With().Str("component", "keepalive").Logger(),
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Enabled reports whether a URL is configured.
func (p *Pinger) Enabled() bool {
	return p.url != ""
}

// Ping sends one GET and discards the body. Non-2xx responses are errors.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *Pinger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		metrics.KeepalivePings.WithLabelValues("error").Inc()
		p.log.Warn().Err(err).Str("url", p.url).Msg("self ping failed")
		return
	}
	metrics.KeepalivePings.WithLabelValues("ok").Inc()
	p.log.Debug().Str("url", p.url).Msg("self ping ok")
}

// Start schedules the ping every interval.
func (p *Pinger) Start() error {
	if !p.Enabled() {
		return ErrNoURL
	}

	p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(p.run))
	p.cron.Start()
	p.log.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keepalive started")
	return nil
}

// Stop stops scheduling and waits for a running ping to finish.
func (p *Pinger) Stop() {
	<-p.cron.Stop().Done()
}
