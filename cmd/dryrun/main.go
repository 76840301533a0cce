// Package main runs the reminder pipeline for one message without touching
// Telegram or Google Calendar and prints the resolved event as YAML.
//
// Usage:
//
//	go run ./cmd/dryrun -at 2024-06-11T09:00:00-03:00 -body "el jueves a las 18hs" "recordarme ir al médico el jueves a las 18hs"
//	WIT_AI_TOKEN=... go run ./cmd/dryrun "recordarme comprar pan mañana"
//
// Without -at the datetime entity is fetched from wit.ai.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tucalendariobot/tucalendariobot/internal/config"
	"github.com/tucalendariobot/tucalendariobot/internal/nlu"
	"github.com/tucalendariobot/tucalendariobot/internal/processor"
	"github.com/tucalendariobot/tucalendariobot/internal/reply"
	"github.com/tucalendariobot/tucalendariobot/internal/source"
	"github.com/tucalendariobot/tucalendariobot/internal/timeutil"
)

type output struct {
	Intent      string `yaml:"intent"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	TimeZone    string `yaml:"time_zone"`
	DeepLink    string `yaml:"deep_link"`
	Reply       string `yaml:"reply"`
}

func main() {
	at := flag.String("at", "", "datetime the NLU service would report (skips wit.ai)")
	body := flag.String("body", "", "substring matched as the datetime, used with -at")
	grain := flag.String("grain", "hour", "datetime grain, used with -at")
	now := flag.String("now", "", "reference time for weekday resolution (default: current time)")
	sender := flag.String("sender", "", "sender first name")
	icsPath := flag.String("ics", "", "also write the .ics attachment to this path")
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "usage: dryrun [flags] <mensaje>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fatal("loading config", err)
	}

	clock := time.Now
	if *now != "" {
		ref, err := timeutil.ParseDateTime(*now)
		if err != nil {
			fatal("parsing -now", err)
		}
		clock = func() time.Time { return ref }
	}

	result := &nlu.Result{Intent: nlu.IntentCreateReminder}
	if *at != "" {
		result.DateTime = &nlu.DateTime{Value: *at, Body: *body, Grain: *grain}
	} else {
		client := nlu.NewClient(nlu.Config{
			Token:      cfg.WitAIToken,
			APIURL:     cfg.WitAPIURL,
			APIVersion: cfg.WitAPIVersion,
			Timeout:    cfg.HTTPTimeout,
		})
		result, err = client.Understand(context.Background(), text)
		if err != nil {
			fatal("querying wit.ai", err)
		}
	}

	formatter := &reply.Formatter{
		BotName:   cfg.BotName,
		AttachICS: *icsPath != "",
		Organizer: cfg.UserEmail,
		Now:       clock,
	}
	proc := processor.New(nil, nil, processor.Config{
		BotName:   cfg.BotName,
		TimeZone:  cfg.DefaultTimezone,
		Formatter: formatter,
		Logger:    zerolog.Nop(),
		Now:       clock,
	})

	out := output{Intent: result.Intent}
	switch {
	case result.Intent != nlu.IntentCreateReminder:
		out.Reply = reply.NotUnderstood
	case result.DateTime == nil:
		out.Reply = reply.NoDateTime
	default:
		msg := source.Message{SenderName: *sender, Text: text}
		ev, err := proc.Preview(msg, result.DateTime)
		if err != nil {
			out.Reply = reply.NoDateTime
			break
		}

		r, err := formatter.Confirmation(ev)
		if err != nil {
			fatal("rendering confirmation", err)
		}
		if r.Document != nil {
			if err := os.WriteFile(*icsPath, r.Document.Data, 0o644); err != nil {
				fatal("writing ics", err)
			}
		}

		out.Title = ev.Title
		out.Description = ev.Description
		out.Start = ev.StartISO()
		out.End = ev.EndISO()
		out.TimeZone = ev.TimeZone
		out.DeepLink = formatter.DeepLink(ev)
		out.Reply = r.Text
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		fatal("encoding output", err)
	}
	_ = enc.Close()
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}
