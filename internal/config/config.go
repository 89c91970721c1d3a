package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	DatabaseURL     string
	LogLevel        string
	ChatbaseAPIKey  string
	ChatbaseBotID   string
	ChatbaseAPIURL  string
	ChatbaseTimeout time.Duration
	SyncWindow      time.Duration
	SyncSchedule    string
	InteractionType string
	NatsURL         string
	NatsToken       string
	SlackBotToken   string
	SlackChannel    string
}

func Load() Config {
	return Config{
		Port:            envInt("QUILL_PORT", 8760),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		ChatbaseAPIKey:  envStr("CHATBASE_API_KEY", ""),
		ChatbaseBotID:   envStr("CHATBASE_BOT_ID", ""),
		ChatbaseAPIURL:  envStr("CHATBASE_API_URL", "https://www.chatbase.co/api/v1"),
		ChatbaseTimeout: envDur("CHATBASE_TIMEOUT", 30*time.Second),
		SyncWindow:      envDur("SYNC_WINDOW", time.Hour),
		SyncSchedule:    envStr("SYNC_SCHEDULE", "@hourly"),
		InteractionType: envStr("INTERACTION_TYPE", "chatbase_summary"),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:    envStr("SLACK_SYNC_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
