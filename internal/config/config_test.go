// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers defaults, file parsing, env overrides, and bad values
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if config.Audio.WireRate != 24000 {
		t.Errorf("expected 24000 wire rate, got %d", config.Audio.WireRate)
	}
	if config.Session.SettleDelayMs != 500 {
		t.Errorf("expected 500ms settle delay, got %d", config.Session.SettleDelayMs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/voicelink.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voicelink.yaml")

	content := `
backend:
  url: wss://assistant.example.com/realtime
audio:
  capture_rate: 16000
  wire_rate: 24000
  frame_ms: 10
session:
  settle_delay_ms: 250
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if config.Backend.URL != "wss://assistant.example.com/realtime" {
		t.Errorf("unexpected url: %s", config.Backend.URL)
	}
	if config.FrameSize() != 160 {
		t.Errorf("expected 160-sample frames, got %d", config.FrameSize())
	}
	if config.SettleDelay().Milliseconds() != 250 {
		t.Errorf("expected 250ms settle delay, got %v", config.SettleDelay())
	}
	// Unset fields keep their defaults.
	if config.Logging.Level != "info" {
		t.Errorf("expected default log level, got %s", config.Logging.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOICELINK_SERVER_URL", "ws://override:9999/rt")
	t.Setenv("VOICELINK_LOG_LEVEL", "debug")

	config, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if config.Backend.URL != "ws://override:9999/rt" {
		t.Errorf("env url override not applied: %s", config.Backend.URL)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("env level override not applied: %s", config.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Backend.URL = "" }},
		{"zero capture rate", func(c *Config) { c.Audio.CaptureRate = 0 }},
		{"negative wire rate", func(c *Config) { c.Audio.WireRate = -1 }},
		{"zero frame", func(c *Config) { c.Audio.FrameMs = 0 }},
		{"huge frame", func(c *Config) { c.Audio.FrameMs = 2000 }},
		{"negative settle", func(c *Config) { c.Session.SettleDelayMs = -1 }},
		{"metrics without address", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Address = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
