package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config keeps runtime settings for the tracker daemon.
type Config struct {
	DatabaseURL      string
	ReminderInterval time.Duration

	// DailyReminderAt is an "HH:MM" wall-clock time. When set, reminders go
	// out once a day at that time instead of on the interval.
	DailyReminderAt string

	// Telegram delivery is optional; reminders are only logged without it.
	TelegramToken  string
	TelegramChatID int64
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:      strings.TrimSpace(os.Getenv("HEIST_DB")),
		ReminderInterval: parseInterval(strings.TrimSpace(os.Getenv("REMINDER_INTERVAL_HOURS"))),
		DailyReminderAt:  strings.TrimSpace(os.Getenv("REMINDER_DAILY_AT")),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "heist_tracker.db"
	}

	if cfg.ReminderInterval == 0 {
		cfg.ReminderInterval = 6 * time.Hour
	}

	if rawChat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); rawChat != "" {
		chatID, err := strconv.ParseInt(rawChat, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", rawChat)
		}
		cfg.TelegramChatID = chatID
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
