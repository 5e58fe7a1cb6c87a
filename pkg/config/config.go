// Package config loads arena configuration from defaults, a YAML file, the
// environment and CLI overrides, in that order.
package config

import (
	"fmt"
	"time"

	"github.com/picogrid/tank-arena/pkg/arena"
	"github.com/picogrid/tank-arena/pkg/logger"
)

// Config holds the complete arena configuration
type Config struct {
	// Arena geometry and combat constants
	Arena arena.Rules `yaml:"arena"`

	// Match settings
	Match MatchConfig `yaml:"match"`

	// Static obstacles handed to brains
	Obstacles []arena.Obstacle `yaml:"obstacles,omitempty"`

	// HTTP and WebSocket server
	Server ServerConfig `yaml:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Debug export
	Export ExportConfig `yaml:"export"`

	// Optional NATS mirror of match events
	Events EventsConfig `yaml:"events"`
}

// MatchConfig holds per-match defaults and the tick loop rate
type MatchConfig struct {
	MaxRounds         int           `yaml:"max_rounds"`
	RoundTime         time.Duration `yaml:"round_time"`
	ThinkTimeout      time.Duration `yaml:"think_timeout"`
	TickRate          int           `yaml:"tick_rate"` // ticks per second
	ScriptLoadTimeout time.Duration `yaml:"script_load_timeout"`
}

// ServerConfig defines the HTTP server
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format  string `yaml:"format"` // "text", "json"
	NoColor bool   `yaml:"no_color"`
}

// EventsConfig defines the NATS event mirror. Disabled when NatsURL is empty.
type EventsConfig struct {
	NatsURL    string `yaml:"nats_url"`
	Subject    string `yaml:"subject"`
	StateEvery int    `yaml:"state_every"` // publish the state every N ticks
}

// ExportConfig defines debug export settings
type ExportConfig struct {
	Dir       string `yaml:"dir"`
	ServerURL string `yaml:"server_url"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Settings returns the match settings for the engine
func (m MatchConfig) Settings() arena.Settings {
	return arena.Settings{
		MaxRounds:    m.MaxRounds,
		RoundTime:    m.RoundTime,
		ThinkTimeout: m.ThinkTimeout,
	}
}

// LoggerConfig converts the logging section for pkg/logger
func (l LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:    logger.ParseLevel(l.Level),
		Format:   logger.ParseFormat(l.Format),
		NoColor:  l.NoColor,
		ShowTime: true,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Arena.Validate(); err != nil {
		return fmt.Errorf("arena: %w", err)
	}

	if err := c.Match.Settings().Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}

	if c.Match.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}

	if c.Match.ScriptLoadTimeout <= 0 {
		return fmt.Errorf("script load timeout must be positive")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}

	if c.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("broadcast interval must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if !oneOf(c.Logging.Level, validLevels) {
		return fmt.Errorf("log level must be one of %v", validLevels)
	}

	if !oneOf(c.Logging.Format, validFormats) {
		return fmt.Errorf("log format must be one of %v", validFormats)
	}

	if c.Events.NatsURL != "" {
		if c.Events.Subject == "" {
			return fmt.Errorf("events subject is required when nats_url is set")
		}
		if c.Events.StateEvery < 1 {
			return fmt.Errorf("events state_every must be at least 1")
		}
	}

	for i, o := range c.Obstacles {
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("obstacle %d must have a positive size", i)
		}
	}

	return nil
}

// String returns a human-readable representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf(`Arena Configuration:
  Size: %.0fx%.0f
  Tank Size: %.0f
  Max Health: %d
  Damage Per Hit: %d
  Shot Cooldown: %v

Match:
  Max Rounds: %d
  Round Time: %v
  Think Timeout: %v
  Tick Rate: %d/s

Server:
  Address: %s
  Broadcast Interval: %v

Logging:
  Level: %s
  Format: %s`,
		c.Arena.Width,
		c.Arena.Height,
		c.Arena.TankSize,
		c.Arena.MaxHealth,
		c.Arena.DamagePerHit,
		c.Arena.ShotCooldown,
		c.Match.MaxRounds,
		c.Match.RoundTime,
		c.Match.ThinkTimeout,
		c.Match.TickRate,
		c.Server.Addr,
		c.Server.BroadcastInterval,
		c.Logging.Level,
		c.Logging.Format,
	)
}

// GetDefaultConfig returns the stock configuration
func GetDefaultConfig() *Config {
	settings := arena.DefaultSettings()
	return &Config{
		Arena: arena.DefaultRules(),

		Match: MatchConfig{
			MaxRounds:         settings.MaxRounds,
			RoundTime:         settings.RoundTime,
			ThinkTimeout:      settings.ThinkTimeout,
			TickRate:          60,
			ScriptLoadTimeout: time.Second,
		},

		Server: ServerConfig{
			Addr:              ":5000",
			BroadcastInterval: 50 * time.Millisecond,
			ShutdownTimeout:   5 * time.Second,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},

		Export: ExportConfig{
			Dir:       "debug_exports",
			ServerURL: "http://localhost:5000",
		},

		Events: EventsConfig{
			Subject:    "arena",
			StateEvery: 6,
		},
	}
}

func oneOf(value string, valid []string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
