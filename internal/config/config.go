package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr      string
	LogLevel      slog.Level
	PublicBaseURL string
	DefaultStyle  string
	DefaultFilter string
	SettleDelay   time.Duration
	ShuffleAnim   time.Duration
}

func Load() (Config, error) {
	c := Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		PublicBaseURL: envOr("PUBLIC_BASE_URL", "http://localhost:8080"),
		DefaultStyle:  envOr("DEFAULT_STYLE", "marseille"),
		DefaultFilter: envOr("DEFAULT_FILTER", "all"),
		SettleDelay:   450 * time.Millisecond,
		ShuffleAnim:   600 * time.Millisecond,
	}

	var err error
	if c.SettleDelay, err = durationOr("SETTLE_DELAY", c.SettleDelay); err != nil {
		return Config{}, err
	}
	if c.ShuffleAnim, err = durationOr("SHUFFLE_ANIM", c.ShuffleAnim); err != nil {
		return Config{}, err
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
