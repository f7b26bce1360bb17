// ABOUTME: Service configuration loaded from YAML with env overrides
// ABOUTME: Covers the backend endpoint, audio rates, and ambient settings
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete client configuration.
type Config struct {
	Backend Backend `yaml:"backend"`
	Audio   Audio   `yaml:"audio"`
	Session Session `yaml:"session"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Backend locates the voice-assistant endpoint.
type Backend struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Audio contains capture and wire audio parameters.
type Audio struct {
	CaptureRate int `yaml:"capture_rate"`
	WireRate    int `yaml:"wire_rate"`
	FrameMs     int `yaml:"frame_ms"`
}

// Session contains turn-cycle tuning.
type Session struct {
	SettleDelayMs int `yaml:"settle_delay_ms"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`
}

// Metrics contains the Prometheus endpoint settings.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend: Backend{URL: "ws://localhost:8000/realtime"},
		Audio:   Audio{CaptureRate: 16000, WireRate: 24000, FrameMs: 20},
		Session: Session{SettleDelayMs: 500},
		Logging: Logging{Level: "info", Format: "console", File: "voicelink.log"},
		Metrics: Metrics{Enabled: false, Address: ":9102"},
	}
}

// Load reads the configuration file, falling back to defaults for absent
// fields, then applies environment overrides.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// applyEnv lets the environment override file values; the API key in
// particular should never live in a config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("VOICELINK_SERVER_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("VOICELINK_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv("VOICELINK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	if c.Audio.CaptureRate <= 0 {
		return fmt.Errorf("capture_rate must be positive, got %d", c.Audio.CaptureRate)
	}
	if c.Audio.WireRate <= 0 {
		return fmt.Errorf("wire_rate must be positive, got %d", c.Audio.WireRate)
	}
	if c.Audio.FrameMs <= 0 || c.Audio.FrameMs > 1000 {
		return fmt.Errorf("frame_ms must be in (0, 1000], got %d", c.Audio.FrameMs)
	}
	if c.Session.SettleDelayMs < 0 {
		return fmt.Errorf("settle_delay_ms must not be negative, got %d", c.Session.SettleDelayMs)
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}
	return nil
}

// FrameSize returns the capture frame length in samples.
func (c *Config) FrameSize() int {
	return c.Audio.CaptureRate * c.Audio.FrameMs / 1000
}

// SettleDelay returns the session settle delay as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Session.SettleDelayMs) * time.Millisecond
}
