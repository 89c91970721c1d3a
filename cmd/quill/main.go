package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/quill/internal/api"
	"github.com/MikeSquared-Agency/quill/internal/chatbase"
	"github.com/MikeSquared-Agency/quill/internal/config"
	"github.com/MikeSquared-Agency/quill/internal/hermes"
	"github.com/MikeSquared-Agency/quill/internal/recorder"
	"github.com/MikeSquared-Agency/quill/internal/schedule"
	"github.com/MikeSquared-Agency/quill/internal/slack"
	"github.com/MikeSquared-Agency/quill/internal/store"
)

func main() {
	serve := flag.Bool("serve", false, "run as a long-lived service with schedule, API, and bus")
	flag.Parse()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("quill starting", "serve", *serve)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Required configuration — absence is fatal, not a per-run skip.
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.ChatbaseAPIKey == "" {
		slog.Error("CHATBASE_API_KEY is required")
		os.Exit(1)
	}
	if cfg.ChatbaseBotID == "" {
		slog.Error("CHATBASE_BOT_ID is required")
		os.Exit(1)
	}

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Chatbase client
	cb := chatbase.NewClient(cfg.ChatbaseAPIKey, cfg.ChatbaseBotID, cfg.ChatbaseAPIURL, cfg.ChatbaseTimeout, slog.Default())
	slog.Info("chatbase client ready", "bot_id", cfg.ChatbaseBotID, "window", cfg.SyncWindow.String())

	// Recorder — the main pipeline
	rec := recorder.New(db, db, cfg.InteractionType, slog.Default())

	// NATS/Hermes (optional — quill works without the bus, just no events)
	var bus *hermes.Client
	if cfg.NatsURL != "" {
		bus, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer bus.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without bus events")
	}

	// Slack poster (optional — run summaries only)
	var slackPoster *slack.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		slackPoster = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured — running without run summaries")
	}

	var mu sync.Mutex
	var lastReport *recorder.Report

	runSync := func() {
		window := chatbase.LastWindow(cfg.SyncWindow)
		convos, err := cb.Fetch(ctx, window)
		if err != nil {
			slog.Error("fetch failed", "error", err)
			return
		}

		report := rec.Record(ctx, convos)

		mu.Lock()
		lastReport = &report
		mu.Unlock()

		if bus != nil {
			if err := bus.Publish(hermes.SubjectRunCompleted, hermes.RunCompleted{
				Window:     window.String(),
				Considered: report.Considered(),
				Recorded:   report.Recorded(),
				Skipped:    report.Skipped(),
				Failed:     report.Failed(),
				DurationMS: report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
			}); err != nil {
				slog.Warn("failed to publish run event", "error", err)
			}
		}
		if slackPoster != nil {
			if err := slackPoster.PostRunSummary(ctx, report, window.String()); err != nil {
				slog.Warn("failed to post run summary", "error", err)
			}
		}
	}

	if !*serve {
		runSync()
		slog.Info("quill run complete")
		return
	}

	// Serve mode: cron schedule + HTTP API + bus triggers.
	sched, err := schedule.New(cfg.SyncSchedule, runSync, slog.Default())
	if err != nil {
		slog.Error("invalid sync schedule", "schedule", cfg.SyncSchedule, "error", err)
		os.Exit(1)
	}
	sched.Start()
	slog.Info("schedule started", "schedule", cfg.SyncSchedule)

	if bus != nil {
		if err := bus.Subscribe(hermes.SubjectSyncRequested, func(subject string, data []byte) {
			slog.Info("sync requested via bus")
			sched.Run()
		}); err != nil {
			slog.Error("failed to subscribe to sync requests", "error", err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(cfg.Port,
		func() *recorder.Report {
			mu.Lock()
			defer mu.Unlock()
			return lastReport
		},
		func() { go sched.Run() },
	)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if bus != nil {
		if err := bus.Publish("swarm.agent.quill.registered", map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
			"schedule":  cfg.SyncSchedule,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("quill ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	sched.Stop()
	cancel()
	slog.Info("quill stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
