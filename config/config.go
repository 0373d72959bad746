/*
Package config loads server configuration from the environment.

An optional .env file is read first (development convenience), then
individual variables override it. The engines take no configuration at
all; everything here belongs to the HTTP shell.

VARIABLES:
  PORT             HTTP server port             (default 8080)
  DB_PATH          SQLite database path         (default site.db)
  WEEK_START       Week-start day for rollups   (default monday)
  ALLOWED_ORIGINS  Comma-separated CORS origins
  LOG_LEVEL        debug | info | warn | error  (default info)
*/
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DBPath         string
	WeekStart      time.Weekday
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// .env is optional; absence is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath: getEnv("DB_PATH", "site.db"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	weekStart, err := parseWeekday(getEnv("WEEK_START", "monday"))
	if err != nil {
		return nil, err
	}
	cfg.WeekStart = weekStart

	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("invalid WEEK_START %q", s)
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
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}
