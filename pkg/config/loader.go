package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/tank-arena/pkg/logger"
)

// DefaultPaths are searched when no config path is given
var DefaultPaths = []string{
	"arena.yaml",
	"config.yaml",
	filepath.Join("configs", "arena.yaml"),
}

// LoadConfig loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or the default locations,
// falling back to defaults, then applies environment overrides
func LoadConfigOrDefault(path string) (*Config, error) {
	var config *Config
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	if config == nil {
		for _, p := range DefaultPaths {
			if _, statErr := os.Stat(p); statErr != nil {
				continue
			}
			config, err = LoadConfig(p)
			if err == nil {
				logger.Debugf("Loaded config from: %s", p)
				break
			}
			logger.Warnf("Ignoring %s: %v", p, err)
		}
	}

	if config == nil {
		logger.Debug("Using default configuration")
		config = GetDefaultConfig()
	}

	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies CLI parameter overrides to the configuration.
// Values of the wrong type or out of range are ignored.
func MergeWithCLIOverrides(config *Config, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "max_rounds":
			if count, ok := value.(int); ok && count > 0 {
				config.Match.MaxRounds = count
			}
		case "round_time":
			if d, ok := durationValue(value, time.Second); ok {
				config.Match.RoundTime = d
			}
		case "think_timeout":
			if d, ok := durationValue(value, time.Second); ok {
				config.Match.ThinkTimeout = d
			}
		case "tick_rate":
			if rate, ok := value.(int); ok && rate > 0 {
				config.Match.TickRate = rate
			}
		case "addr":
			if addr, ok := value.(string); ok && addr != "" {
				config.Server.Addr = addr
			}
		case "export_dir":
			if dir, ok := value.(string); ok && dir != "" {
				config.Export.Dir = dir
			}
		case "server_url":
			if url, ok := value.(string); ok && url != "" {
				config.Export.ServerURL = url
			}
		case "nats_url":
			if url, ok := value.(string); ok {
				config.Events.NatsURL = url
			}
		case "log_level":
			if level, ok := value.(string); ok && oneOf(strings.ToLower(level), validLevels) {
				config.Logging.Level = strings.ToLower(level)
			}
		case "log_format":
			if format, ok := value.(string); ok && oneOf(strings.ToLower(format), validFormats) {
				config.Logging.Format = strings.ToLower(format)
			}
		case "no_color":
			if noColor, ok := value.(bool); ok {
				config.Logging.NoColor = noColor
			}
		}
	}
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*Config, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with environment variables. Invalid
// values are ignored and the current value is kept.
func MergeWithEnvironment(config *Config) {
	// Seconds, fractional allowed
	if timeout := os.Getenv("BRAIN_THINK_TIMEOUT"); timeout != "" {
		if d, ok := durationValue(timeout, time.Second); ok {
			config.Match.ThinkTimeout = d
		}
	}

	if rounds := os.Getenv("ARENA_MAX_ROUNDS"); rounds != "" {
		if count, err := strconv.Atoi(rounds); err == nil && count > 0 {
			config.Match.MaxRounds = count
		}
	}

	if roundTime := os.Getenv("ARENA_ROUND_TIME"); roundTime != "" {
		if d, ok := durationValue(roundTime, time.Second); ok {
			config.Match.RoundTime = d
		}
	}

	if tickRate := os.Getenv("ARENA_TICK_RATE"); tickRate != "" {
		if rate, err := strconv.Atoi(tickRate); err == nil && rate > 0 {
			config.Match.TickRate = rate
		}
	}

	if addr := os.Getenv("ARENA_ADDR"); addr != "" {
		config.Server.Addr = addr
	}

	if dir := os.Getenv("ARENA_EXPORT_DIR"); dir != "" {
		config.Export.Dir = dir
	}

	if url := os.Getenv("ARENA_NATS_URL"); url != "" {
		config.Events.NatsURL = url
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		if level := strings.ToLower(logLevel); oneOf(level, validLevels) {
			config.Logging.Level = level
		}
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		if format := strings.ToLower(logFormat); oneOf(format, validFormats) {
			config.Logging.Format = format
		}
	}

	if os.Getenv("NO_COLOR") != "" {
		config.Logging.NoColor = true
	}
}

// durationValue reads a positive duration from a Go duration, a duration
// string, or a bare number in units of unit
func durationValue(value interface{}, unit time.Duration) (time.Duration, bool) {
	var d time.Duration
	switch v := value.(type) {
	case time.Duration:
		d = v
	case int:
		d = time.Duration(v) * unit
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		d = time.Duration(v * float64(unit))
	case string:
		s := strings.TrimSpace(v)
		if parsed, err := time.ParseDuration(s); err == nil {
			d = parsed
		} else if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			d = time.Duration(f * float64(unit))
		} else {
			return 0, false
		}
	default:
		return 0, false
	}
	return d, d > 0
}
