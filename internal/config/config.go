// Package config handles the YAML configuration file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen          = "127.0.0.1:8787"
	defaultGeoapifyBaseURL = "https://api.geoapify.com"
	defaultRadius          = 3000
	defaultPollInterval    = 60 * time.Second
	defaultNotificationTTL = 10 * time.Second
)

// GeoapifyConfig holds credentials for the places API.
type GeoapifyConfig struct {
	APIKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// HomeConfig is the fallback location used when no coordinates are passed.
type HomeConfig struct {
	Lat *float64 `yaml:"lat,omitempty" json:"lat,omitempty"`
	Lon *float64 `yaml:"lon,omitempty" json:"lon,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Env selects the logger flavor ("production" or "development").
	Env string `yaml:"env" json:"env"`

	// Listen is the loopback address used by `gonext serve`.
	Listen string `yaml:"listen" json:"listen"`

	Geoapify GeoapifyConfig `yaml:"geoapify" json:"geoapify"`

	// DefaultRadius is the search radius in meters when none is given.
	DefaultRadius int `yaml:"default_radius" json:"default_radius"`

	// PollInterval is how often today's events are scanned.
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// NotificationTTL is how long a published notification stays visible.
	NotificationTTL time.Duration `yaml:"notification_ttl" json:"notification_ttl"`

	Home HomeConfig `yaml:"home" json:"home"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Env:             "production",
		Listen:          defaultListen,
		Geoapify:        GeoapifyConfig{BaseURL: defaultGeoapifyBaseURL},
		DefaultRadius:   defaultRadius,
		PollInterval:    defaultPollInterval,
		NotificationTTL: defaultNotificationTTL,
	}
}

// Normalize fills in missing/zero values so partially-filled files still work.
func (c *Config) Normalize() {
	switch c.Env {
	case "production", "development":
	default:
		c.Env = "production"
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Geoapify.BaseURL == "" {
		c.Geoapify.BaseURL = defaultGeoapifyBaseURL
	}
	if c.DefaultRadius <= 0 {
		c.DefaultRadius = defaultRadius
	}
	// robfig/cron cannot schedule below one second.
	if c.PollInterval < time.Second {
		c.PollInterval = defaultPollInterval
	}
	if c.NotificationTTL <= 0 {
		c.NotificationTTL = defaultNotificationTTL
	}
}

// ApplyEnv overrides file values with GONEXT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("GONEXT_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("GONEXT_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("GONEXT_GEOAPIFY_API_KEY"); v != "" {
		c.Geoapify.APIKey = v
	}
	if v := os.Getenv("GONEXT_GEOAPIFY_BASE_URL"); v != "" {
		c.Geoapify.BaseURL = v
	}
	if v := os.Getenv("GONEXT_DEFAULT_RADIUS"); v != "" {
		radius, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GONEXT_DEFAULT_RADIUS %q: %w", v, err)
		}
		c.DefaultRadius = radius
	}
	if v := os.Getenv("GONEXT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GONEXT_POLL_INTERVAL %q: %w", v, err)
		}
		c.PollInterval = d
	}
	c.Normalize()
	return nil
}

// Load reads the YAML file at path. A missing file is created with defaults
// (0600) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gonext-config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// HasHome reports whether both home coordinates are configured.
func (c *Config) HasHome() bool {
	return c.Home.Lat != nil && c.Home.Lon != nil
}
