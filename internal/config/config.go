// Package config loads and validates the concierge configuration.
//
// Configuration is YAML with ${ENV_VAR} expansion. Defaults live in
// defaults.go; Load applies them to any field left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brightpath-advisory/concierge/internal/costcontrol"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration.
type Config struct {
	Provider    ProviderConfig     `yaml:"provider"`
	RateLimit   RateLimitConfig    `yaml:"rate_limit"`
	CostControl costcontrol.Config `yaml:"cost_control"`
	Session     SessionConfig      `yaml:"session"`
	Booking     BookingConfig      `yaml:"booking"`
	Lead        LeadConfig         `yaml:"lead"`
}

// ProviderConfig configures the language model provider.
type ProviderConfig struct {
	Endpoint string   `yaml:"endpoint"` // Messages API endpoint
	APIKey   string   `yaml:"api_key"`  // Supports ${ENV} expansion
	Model    string   `yaml:"model"`
	Timeout  Duration `yaml:"timeout"`
}

// RateLimitConfig configures per-caller admission limits.
type RateLimitConfig struct {
	ShortWindow   Duration `yaml:"short_window"`
	ShortLimit    int      `yaml:"short_limit"`
	LongWindow    Duration `yaml:"long_window"`
	LongLimit     int      `yaml:"long_limit"`
	BlockDuration Duration `yaml:"block_duration"`
}

// SessionConfig selects and tunes the conversation store.
type SessionConfig struct {
	Driver   string   `yaml:"driver"` // "memory" or "redis"
	RedisURL string   `yaml:"redis_url"`
	TTL      Duration `yaml:"ttl"`
	MaxTurns int      `yaml:"max_turns"`
}

// BookingConfig tunes the scheduling surface.
type BookingConfig struct {
	WindowDays  int    `yaml:"window_days"`
	SlotMinutes int    `yaml:"slot_minutes"`
	Timezone    string `yaml:"timezone"`
}

// LeadConfig holds the lead-score weighting heuristic.
// The weights are a business knob, not a correctness property.
type LeadConfig struct {
	IndustryWeight int `yaml:"industry_weight"`
	TeamSizeWeight int `yaml:"team_size_weight"`
	ContactWeight  int `yaml:"contact_weight"`
}

// Load reads a YAML config file, expands ${ENV} references, and applies
// defaults. A missing path returns a config of pure defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		expanded := os.ExpandEnv(string(raw))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Provider.Model == "" {
		c.Provider.Model = DefaultModel
	}
	if c.Provider.Timeout <= 0 {
		c.Provider.Timeout = Duration(DefaultModelTimeout)
	}
	if c.RateLimit.ShortWindow <= 0 {
		c.RateLimit.ShortWindow = Duration(DefaultShortWindow)
	}
	if c.RateLimit.ShortLimit <= 0 {
		c.RateLimit.ShortLimit = DefaultShortLimit
	}
	if c.RateLimit.LongWindow <= 0 {
		c.RateLimit.LongWindow = Duration(DefaultLongWindow)
	}
	if c.RateLimit.LongLimit <= 0 {
		c.RateLimit.LongLimit = DefaultLongLimit
	}
	if c.RateLimit.BlockDuration <= 0 {
		c.RateLimit.BlockDuration = Duration(DefaultBlockDuration)
	}
	if c.CostControl.DailyLimitUSD <= 0 {
		c.CostControl.DailyLimitUSD = DefaultDailyLimitUSD
	}
	if c.CostControl.MaxEntries <= 0 {
		c.CostControl.MaxEntries = DefaultMaxLedgerEntries
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = Duration(DefaultSessionTTL)
	}
	if c.Session.MaxTurns <= 0 {
		c.Session.MaxTurns = DefaultMaxTurns
	}
	if c.Booking.WindowDays <= 0 {
		c.Booking.WindowDays = DefaultBookingWindowDays
	}
	if c.Booking.SlotMinutes <= 0 {
		c.Booking.SlotMinutes = DefaultSlotMinutes
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "Europe/Madrid"
	}
	if c.Lead.IndustryWeight == 0 && c.Lead.TeamSizeWeight == 0 && c.Lead.ContactWeight == 0 {
		c.Lead.IndustryWeight = 30
		c.Lead.TeamSizeWeight = 40
		c.Lead.ContactWeight = 30
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Session.Driver != "memory" && c.Session.Driver != "redis" {
		return fmt.Errorf("session.driver must be memory or redis, got %q", c.Session.Driver)
	}
	if c.Session.Driver == "redis" && c.Session.RedisURL == "" {
		return fmt.Errorf("session.redis_url is required for the redis driver")
	}
	if err := c.CostControl.Validate(); err != nil {
		return err
	}
	return nil
}
