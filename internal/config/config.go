// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/wayralabs/wayra-tui/internal/util"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the full wayra configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Assistant AssistantConfig `toml:"assistant" json:"assistant"`
	Session   SessionConfig   `toml:"session" json:"session"`
	Input     InputConfig     `toml:"input" json:"input"`
	UI        UIConfig        `toml:"ui" json:"ui"`
}

// AssistantConfig configures the outbound webhook.
type AssistantConfig struct {
	// WebhookURL is the assistant endpoint. Empty means not configured.
	WebhookURL string `toml:"webhook_url" json:"webhook_url"`

	// Source identifies this client in payloads.
	Source string `toml:"source" json:"source"`

	// TimeoutSecs bounds one send (default: 180).
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// NotifyTimeoutSecs bounds the session-start POST (default: 10).
	NotifyTimeoutSecs int `toml:"notify_timeout_secs" json:"notify_timeout_secs"`
}

// SessionConfig configures session identity and transcript persistence.
type SessionConfig struct {
	// TTLHours is the sliding session expiry (default: 72).
	TTLHours int `toml:"ttl_hours" json:"ttl_hours"`

	// HistoryLimit bounds the persisted transcript (default: 200).
	HistoryLimit int `toml:"history_limit" json:"history_limit"`
}

// InputConfig holds the interaction thresholds. The deletion and drag
// constants are tuned values, not hard assumptions; they stay adjustable.
type InputConfig struct {
	// ArmWindowMs is the two-press token deletion window (default: 1200).
	ArmWindowMs int `toml:"arm_window_ms" json:"arm_window_ms"`

	// DragThreshold is the badge drag displacement in cells (default: 8).
	DragThreshold int `toml:"drag_threshold" json:"drag_threshold"`

	// ClickMaxMs is the longest press still treated as a click (default: 150).
	ClickMaxMs int `toml:"click_max_ms" json:"click_max_ms"`

	// RecentMoveMs is the recent-movement window for slow presses
	// (default: 400).
	RecentMoveMs int `toml:"recent_move_ms" json:"recent_move_ms"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme selects the color theme ("dark" or "light").
	Theme string `toml:"theme" json:"theme"`

	// Markdown renders assistant replies through glamour.
	Markdown bool `toml:"markdown" json:"markdown"`

	// BadgeX and BadgeY persist the dragged badge position. Negative
	// means "never moved": snap to the default corner on startup.
	BadgeX int `toml:"badge_x" json:"badge_x"`
	BadgeY int `toml:"badge_y" json:"badge_y"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Assistant: AssistantConfig{
			Source:            "wayra-tui",
			TimeoutSecs:       180,
			NotifyTimeoutSecs: 10,
		},
		Session: SessionConfig{
			TTLHours:     72,
			HistoryLimit: 200,
		},
		Input: InputConfig{
			ArmWindowMs:   1200,
			DragThreshold: 8,
			ClickMaxMs:    150,
			RecentMoveMs:  400,
		},
		UI: UIConfig{
			Theme:    "dark",
			Markdown: true,
			BadgeX:   -1,
			BadgeY:   -1,
		},
	}
}

// ConfigDir returns the wayra configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".wayra"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD AND SAVE
// =============================================================================

// Load reads the config file, applying defaults for anything missing,
// then environment overrides, then validation clamps. A missing file is
// not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadPath(path)
}

// LoadPath loads configuration from an explicit file path. TOML is the
// native format; a JSON file at the same path is accepted for tooling
// that writes config programmatically.
func LoadPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return Default(), fmt.Errorf("could not parse %s: %w", path, err)
		}
		cfg = Default()
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return Default(), fmt.Errorf("could not parse %s: %w", path, err)
		}
	}
	cfg.ApplyEnvOverrides()
	cfg.Clamp()
	return cfg, nil
}

// Save writes the configuration to the default path atomically.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SavePath(cfg, path)
}

// SavePath writes the configuration to an explicit path.
func SavePath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("could not encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}

// ApplyEnvOverrides applies WAYRA_* environment variables on top of the
// loaded file.
func (c *Config) ApplyEnvOverrides() {
	if url := os.Getenv("WAYRA_WEBHOOK_URL"); url != "" {
		c.Assistant.WebhookURL = url
	}
	if source := os.Getenv("WAYRA_SOURCE"); source != "" {
		c.Assistant.Source = source
	}
	if theme := os.Getenv("WAYRA_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if md := os.Getenv("WAYRA_MARKDOWN"); md != "" {
		c.UI.Markdown = md == "1" || strings.ToLower(md) == "true"
	}
}

// Clamp pulls out-of-range values back to sane bounds instead of failing.
func (c *Config) Clamp() {
	clampInt(&c.Assistant.TimeoutSecs, 1, 600, 180)
	clampInt(&c.Assistant.NotifyTimeoutSecs, 1, 60, 10)
	clampInt(&c.Session.TTLHours, 1, 24*30, 72)
	clampInt(&c.Session.HistoryLimit, 1, 10000, 200)
	clampInt(&c.Input.ArmWindowMs, 100, 10000, 1200)
	clampInt(&c.Input.DragThreshold, 1, 100, 8)
	clampInt(&c.Input.ClickMaxMs, 10, 5000, 150)
	clampInt(&c.Input.RecentMoveMs, 10, 5000, 400)
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = "dark"
	}
}

func clampInt(v *int, lo, hi, def int) {
	if *v == 0 {
		*v = def
	}
	if *v < lo {
		*v = lo
	}
	if *v > hi {
		*v = hi
	}
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// SendTimeout returns the assistant send timeout.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.Assistant.TimeoutSecs) * time.Second
}

// NotifyTimeout returns the session-start notification timeout.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Assistant.NotifyTimeoutSecs) * time.Second
}

// SessionTTL returns the sliding session expiry.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// ArmWindow returns the two-press deletion window.
func (c *Config) ArmWindow() time.Duration {
	return time.Duration(c.Input.ArmWindowMs) * time.Millisecond
}

// ClickMax returns the maximum click press duration.
func (c *Config) ClickMax() time.Duration {
	return time.Duration(c.Input.ClickMaxMs) * time.Millisecond
}

// RecentMove returns the recent-movement window.
func (c *Config) RecentMove() time.Duration {
	return time.Duration(c.Input.RecentMoveMs) * time.Millisecond
}

// =============================================================================
// GET/SET BY KEY
// =============================================================================

// Get retrieves a configuration value by dot-notation key, for the
// `wayra config get` command.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "assistant.webhook_url":
		return c.Assistant.WebhookURL, nil
	case "assistant.source":
		return c.Assistant.Source, nil
	case "assistant.timeout_secs":
		return strconv.Itoa(c.Assistant.TimeoutSecs), nil
	case "session.ttl_hours":
		return strconv.Itoa(c.Session.TTLHours), nil
	case "session.history_limit":
		return strconv.Itoa(c.Session.HistoryLimit), nil
	case "input.arm_window_ms":
		return strconv.Itoa(c.Input.ArmWindowMs), nil
	case "input.drag_threshold":
		return strconv.Itoa(c.Input.DragThreshold), nil
	case "input.click_max_ms":
		return strconv.Itoa(c.Input.ClickMaxMs), nil
	case "input.recent_move_ms":
		return strconv.Itoa(c.Input.RecentMoveMs), nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.markdown":
		return strconv.FormatBool(c.UI.Markdown), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a configuration value by dot-notation key, for the
// `wayra config set` command. Clamp runs afterwards.
func (c *Config) Set(key, value string) error {
	switch key {
	case "assistant.webhook_url":
		c.Assistant.WebhookURL = value
	case "assistant.source":
		c.Assistant.Source = value
	case "assistant.timeout_secs":
		return setInt(&c.Assistant.TimeoutSecs, value)
	case "session.ttl_hours":
		return setInt(&c.Session.TTLHours, value)
	case "session.history_limit":
		return setInt(&c.Session.HistoryLimit, value)
	case "input.arm_window_ms":
		return setInt(&c.Input.ArmWindowMs, value)
	case "input.drag_threshold":
		return setInt(&c.Input.DragThreshold, value)
	case "input.click_max_ms":
		return setInt(&c.Input.ClickMaxMs, value)
	case "input.recent_move_ms":
		return setInt(&c.Input.RecentMoveMs, value)
	case "ui.theme":
		c.UI.Theme = value
	case "ui.markdown":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("ui.markdown wants true or false: %w", err)
		}
		c.UI.Markdown = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("expected a number: %w", err)
	}
	*dst = n
	return nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	return []string{
		"assistant.webhook_url",
		"assistant.source",
		"assistant.timeout_secs",
		"session.ttl_hours",
		"session.history_limit",
		"input.arm_window_ms",
		"input.drag_threshold",
		"input.click_max_ms",
		"input.recent_move_ms",
		"ui.theme",
		"ui.markdown",
	}
}

// =============================================================================
// GLOBAL ACCESSOR
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
