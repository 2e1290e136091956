package main

import (
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{raw: "", want: slog.LevelDebug},
		{raw: " INFO ", want: slog.LevelInfo},
		{raw: "warning", want: slog.LevelWarn},
		{raw: "error", want: slog.LevelError},
		{raw: "8", want: slog.Level(8)},
		{raw: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseLogLevel(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseLogLevel(%q)=%v, %v want %v", tt.raw, got, err, tt.want)
		}
	}
}

func TestSelectedLogLevelPrecedence(t *testing.T) {
	tests := []struct {
		flag, env, cfg string
		wantRaw        string
		wantSource     string
	}{
		{flag: "error", env: "warn", cfg: "info", wantRaw: "error", wantSource: "flag"},
		{env: "warn", cfg: "info", wantRaw: "warn", wantSource: "env"},
		{cfg: "info", wantRaw: "info", wantSource: "config"},
		{flag: "  ", wantSource: "default"},
	}
	for _, tt := range tests {
		raw, source := selectedLogLevel(tt.flag, tt.env, tt.cfg)
		if raw != tt.wantRaw || source != tt.wantSource {
			t.Fatalf("selectedLogLevel(%q,%q,%q)=%q,%q want %q,%q", tt.flag, tt.env, tt.cfg, raw, source, tt.wantRaw, tt.wantSource)
		}
	}
}

func TestConfigureLoggerForCLI(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		flag        string
		cfg         string
		wantErr     bool
		wantWarning string
	}{
		{name: "valid flag wins over bad env", env: "chatty", flag: "info", cfg: "warn"},
		{name: "bad flag fails", flag: "chatty", wantErr: true},
		{name: "bad env warns", env: "chatty", cfg: "info", wantWarning: "invalid TASKDESK_LOG_LEVEL"},
		{name: "bad config warns", cfg: "chatty", wantWarning: "invalid log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(logLevelEnvKey, tt.env)
			warning, err := configureLoggerForCLI(tt.flag, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("configure logger: %v", err)
			}
			if tt.wantWarning == "" {
				if warning != "" {
					t.Fatalf("expected no warning, got %q", warning)
				}
				return
			}
			if !strings.Contains(warning, tt.wantWarning) || !strings.Contains(warning, "defaulting to debug") {
				t.Fatalf("expected warning containing %q, got %q", tt.wantWarning, warning)
			}
		})
	}
}
