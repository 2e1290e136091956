package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"taskdesk/internal/config"
)

const logLevelEnvKey = "TASKDESK_LOG_LEVEL"

// configureLoggerForCLI installs the default logger. The level comes from
// the first non-blank of flag, env and config. A bad flag is an error; a bad
// env or config value falls back to the default level with a warning.
func configureLoggerForCLI(flagLevel, configLevel string) (string, error) {
	envLevel := os.Getenv(logLevelEnvKey)
	raw, source := selectedLogLevel(flagLevel, envLevel, configLevel)

	level, err := parseLogLevel(raw)
	if err == nil {
		slog.SetDefault(newLogger(level))
		return "", nil
	}

	var origin string
	switch source {
	case "flag":
		return "", fmt.Errorf("invalid --log-level %q", flagLevel)
	case "env":
		origin = logLevelEnvKey
	case "config":
		origin = "log_level"
	}
	fallback, _ := parseLogLevel(config.DefaultLogLevel)
	slog.SetDefault(newLogger(fallback))
	return fmt.Sprintf("warning: invalid %s=%q; defaulting to %s", origin, raw, config.DefaultLogLevel), nil
}

// selectedLogLevel returns the raw level and where it came from.
func selectedLogLevel(flagLevel, envLevel, configLevel string) (string, string) {
	candidates := []struct{ source, value string }{
		{"flag", flagLevel},
		{"env", envLevel},
		{"config", configLevel},
	}
	for _, c := range candidates {
		if strings.TrimSpace(c.value) != "" {
			return c.value, c.source
		}
	}
	return "", "default"
}

// parseLogLevel accepts slog level names, "warning", or a numeric level.
// Blank means debug.
func parseLogLevel(raw string) (slog.Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return slog.LevelDebug, nil
	case "warning":
		return slog.LevelWarn, nil
	}
	if numeric, err := strconv.Atoi(value); err == nil {
		return slog.Level(numeric), nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelDebug, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
