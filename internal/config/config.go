package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Generator GeneratorConfig `yaml:"generator"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig switches the server to a tsnet listener. Callers are then
// identified by their tailnet login instead of the API key.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// GeneratorConfig bounds every timeline generation run. Zero values fall
// back to the generator defaults.
type GeneratorConfig struct {
	MaxEvents     int `yaml:"max_events"`
	MaxNoProgress int `yaml:"max_no_progress"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix SHOTCALLER_ and underscore-separated paths:
//
//	SHOTCALLER_SERVER_HOST, SHOTCALLER_SERVER_PORT,
//	SHOTCALLER_DB_HOST, SHOTCALLER_DB_PORT, SHOTCALLER_DB_NAME,
//	SHOTCALLER_DB_USER, SHOTCALLER_DB_PASSWORD, SHOTCALLER_DB_SSLMODE,
//	SHOTCALLER_AUTH_API_KEY, SHOTCALLER_TAILSCALE_ENABLED,
//	SHOTCALLER_TAILSCALE_HOSTNAME, SHOTCALLER_TAILSCALE_STATE_DIR,
//	SHOTCALLER_GENERATOR_MAX_EVENTS, SHOTCALLER_GENERATOR_MAX_NO_PROGRESS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("SHOTCALLER_SERVER_HOST", &cfg.Server.Host)
	num("SHOTCALLER_SERVER_PORT", &cfg.Server.Port)
	str("SHOTCALLER_DB_HOST", &cfg.Database.Host)
	num("SHOTCALLER_DB_PORT", &cfg.Database.Port)
	str("SHOTCALLER_DB_NAME", &cfg.Database.Name)
	str("SHOTCALLER_DB_USER", &cfg.Database.User)
	str("SHOTCALLER_DB_PASSWORD", &cfg.Database.Password)
	str("SHOTCALLER_DB_SSLMODE", &cfg.Database.SSLMode)
	str("SHOTCALLER_AUTH_API_KEY", &cfg.Auth.APIKey)
	if v := os.Getenv("SHOTCALLER_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	str("SHOTCALLER_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	str("SHOTCALLER_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
	num("SHOTCALLER_GENERATOR_MAX_EVENTS", &cfg.Generator.MaxEvents)
	num("SHOTCALLER_GENERATOR_MAX_NO_PROGRESS", &cfg.Generator.MaxNoProgress)
}

func (c *Config) applyDefaults() {
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "shotcaller"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" && !c.Tailscale.Enabled {
		return fmt.Errorf("auth.api_key is required unless tailscale is enabled")
	}
	if c.Generator.MaxEvents < 0 || c.Generator.MaxNoProgress < 0 {
		return fmt.Errorf("generator limits must not be negative")
	}
	return nil
}
