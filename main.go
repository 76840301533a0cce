package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tucalendariobot/tucalendariobot/internal/config"
	"github.com/tucalendariobot/tucalendariobot/internal/gcal"
	"github.com/tucalendariobot/tucalendariobot/internal/keepalive"
	"github.com/tucalendariobot/tucalendariobot/internal/logging"
	"github.com/tucalendariobot/tucalendariobot/internal/nlu"
	"github.com/tucalendariobot/tucalendariobot/internal/processor"
	"github.com/tucalendariobot/tucalendariobot/internal/reply"
	"github.com/tucalendariobot/tucalendariobot/internal/server"
	"github.com/tucalendariobot/tucalendariobot/internal/telegram"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		bootLog := logging.New("", "")
		bootLog.Fatal().Err(err).Msg("loading config")
	}
	log := logging.New(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.TimezoneFallback {
		log.Warn().Str("timezone", cfg.DefaultTimezone).Msg("DEFAULT_TIMEZONE invalid, using fallback")
	}

	ctx := context.Background()

	nluClient := nlu.NewClient(nlu.Config{
		Token:      cfg.WitAIToken,
		APIURL:     cfg.WitAPIURL,
		APIVersion: cfg.WitAPIVersion,
		Timeout:    cfg.HTTPTimeout,
	})
	if !nluClient.IsConfigured() {
		log.Warn().Msg("WIT_AI_TOKEN not set, every message will get the NLU error reply")
	}

	gcalClient := initCalendar(ctx, cfg, log)

	proc := processor.New(nluClient, gcalClient, processor.Config{
		CalendarID: cfg.CalendarID,
		BotName:    cfg.BotName,
		TimeZone:   cfg.DefaultTimezone,
		Logger:     log,
		Formatter: &reply.Formatter{
			BotName:   cfg.BotName,
			AttachICS: cfg.AttachICS,
			Organizer: cfg.UserEmail,
		},
	})

	srv := server.New(server.ServerConfig{
		Port:    cfg.Port,
		BotName: cfg.BotName,
		Checks: map[string]server.Check{
			"calendar": gcalClient.IsAuthenticated,
			"nlu":      nluClient.IsConfigured,
		},
		Logger: log,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	tgClient, err := telegram.NewClient(cfg.TelegramBotToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("creating telegram client")
	}
	handler := telegram.NewHandler(tgClient.API(), proc, log)
	if err := tgClient.Start(handler); err != nil {
		log.Fatal().Err(err).Msg("starting telegram polling")
	}

	pinger := keepalive.New(keepalive.Config{
		URL:      cfg.ExternalURL,
		Interval: cfg.KeepaliveInterval,
		Logger:   log,
	})
	if err := pinger.Start(); err != nil {
		log.Info().Msg("RENDER_EXTERNAL_URL not set, keepalive disabled")
	}

	log.Info().Str("bot", tgClient.Username()).Msg("🤖 Bot en marcha")
	waitForShutdown(log, tgClient, srv, pinger)
}

func initCalendar(ctx context.Context, cfg *config.Config, log zerolog.Logger) *gcal.Client {
	client, err := gcal.NewClient(ctx, gcal.Credentials{
		JSON: cfg.GoogleCredentials,
		File: cfg.GoogleCredentialsFile,
	})
	if err != nil {
		log.Error().Err(err).Msg("Google Calendar not configured, event creation will fail")
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
	defer cancel()
	info, err := client.GetCalendar(checkCtx, cfg.CalendarID)
	if err != nil {
		log.Warn().Err(err).
			Str("calendar_id", cfg.CalendarID).
			Str("service_account", client.ServiceAccount()).
			Msg("calendar not reachable, check that it is shared with the service account")
		return client
	}

	log.Info().
		Str("calendar", info.Summary).
		Str("service_account", client.ServiceAccount()).
		Msg("Google Calendar client initialized")
	return client
}

func waitForShutdown(log zerolog.Logger, tgClient *telegram.Client, srv *server.Server, pinger *keepalive.Pinger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	sig := <-c

	log.Info().Str("signal", sig.String()).Msg("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pinger.Stop()
	tgClient.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
}
