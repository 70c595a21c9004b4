// YAML config loader with CUE validation and environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Rates holds per-loop default intervals in seconds. Live values are store
// overrides; these apply when no override exists.
type Rates struct {
	EventSec int `yaml:"event_sec"`
	AssetSec int `yaml:"asset_sec"`
	AlertSec int `yaml:"alert_sec"`
}

// Admin holds the cooldown/lock guard durations in seconds.
type Admin struct {
	CooldownSec int `yaml:"cooldown_sec"`
	LockSec     int `yaml:"lock_sec"`
}

// Stream tunes the SSE reader loop.
type Stream struct {
	HeartbeatSec int `yaml:"heartbeat_sec"`
	PollMs       int `yaml:"poll_ms"`
	RetryMs      int `yaml:"retry_ms"`
}

// Config is the root runtime configuration.
type Config struct {
	ListenAddr        string   `yaml:"listen_addr"`
	RedisURL          string   `yaml:"redis_url"`
	CORSOrigins       []string `yaml:"cors_origins"`
	GeneratorsEnabled bool     `yaml:"generators_enabled"`
	FleetSize         int      `yaml:"fleet_size"`
	Rates             Rates    `yaml:"rates"`
	Admin             Admin    `yaml:"admin"`
	Stream            Stream   `yaml:"stream"`
}

// Default returns the built-in configuration, matching the "normal"
// scenario preset.
func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		RedisURL:          "redis://localhost:6379/0",
		CORSOrigins:       []string{"http://localhost:5173", "http://localhost:3000"},
		GeneratorsEnabled: true,
		FleetSize:         60,
		Rates:             Rates{EventSec: 6, AssetSec: 2, AlertSec: 3},
		Admin:             Admin{CooldownSec: 300, LockSec: 10},
		Stream:            Stream{HeartbeatSec: 10, PollMs: 500, RetryMs: 2000},
	}
}

// Load reads YAML config over the defaults, validating against the CUE
// schema first when cuePath is non-empty, then applies environment
// overrides. An empty path yields defaults plus environment.
func Load(path, cuePath string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if cuePath != "" {
			if err := ValidateWithCue(path, cuePath); err != nil {
				return nil, err
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if cfg.FleetSize <= 0 {
		return nil, fmt.Errorf("fleet_size must be positive, got %d", cfg.FleetSize)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("FLEET_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FleetSize = n
		}
	}
	if v := os.Getenv("GENERATORS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.GeneratorsEnabled = b
		}
	}
}
