package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string
	DataDir  string

	// StepDelay paces dispatched actions during a run.
	StepDelay time.Duration

	// OwnedSubjects is the comma-separated set of subject ids this
	// process automates turns for.
	OwnedSubjects []string

	// SceneID names the active combat scene in storage.
	SceneID string

	// APIURL is where the console client finds the API.
	APIURL string
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		StepDelay:     parseMillis(getEnv("STEP_DELAY_MS", "500")),
		OwnedSubjects: splitList(getEnv("OWNED_SUBJECTS", "")),
		SceneID:       getEnv("SCENE_ID", "default"),
		APIURL:        getEnv("API_URL", "http://localhost:8080"),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseMillis(s string) time.Duration {
	ms, err := strconv.Atoi(s)
	if err != nil || ms < 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
