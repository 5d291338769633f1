package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything loaded from configs/config.yaml. API secrets may
// be overridden through environment variables after loading.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Venue struct {
		RestURL      string `yaml:"rest_url"`
		WSURL        string `yaml:"ws_url"`
		APIKey       string `yaml:"api_key"`
		SecretKey    string `yaml:"secret_key"`
		RecvWindowMS int64  `yaml:"recv_window_ms"`
	} `yaml:"venue"`

	Trading struct {
		Mode            string `yaml:"mode"` // "paper" or "real"
		IdleWaitSec     int    `yaml:"idle_wait_sec"`
		OrderTimeoutSec int    `yaml:"order_timeout_sec"`
		HarvestEvery    int    `yaml:"harvest_every"`
	} `yaml:"trading"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the config file. Environment variables win
// over file values for secrets so keys never need to live on disk.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.Mode == "" {
		c.Trading.Mode = "paper"
	}
	if c.Trading.IdleWaitSec == 0 {
		c.Trading.IdleWaitSec = 5
	}
	if c.Trading.OrderTimeoutSec == 0 {
		c.Trading.OrderTimeoutSec = 15
	}
	if c.Trading.HarvestEvery == 0 {
		c.Trading.HarvestEvery = 200
	}
	if c.Venue.RecvWindowMS == 0 {
		c.Venue.RecvWindowMS = 5000
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	mode := strings.ToLower(c.Trading.Mode)
	if mode != "paper" && mode != "real" {
		return fmt.Errorf("unknown trading mode %q", c.Trading.Mode)
	}
	if mode == "real" {
		if !strings.HasPrefix(c.Venue.RestURL, "https://") {
			return fmt.Errorf("invalid venue REST URL: %s", c.Venue.RestURL)
		}
		if c.Venue.WSURL != "" && !strings.HasPrefix(c.Venue.WSURL, "wss://") && !strings.HasPrefix(c.Venue.WSURL, "ws://") {
			return fmt.Errorf("invalid venue WS URL: %s", c.Venue.WSURL)
		}
		if c.Venue.APIKey == "" || c.Venue.SecretKey == "" {
			return fmt.Errorf("real trading requires venue API credentials")
		}
	}
	if c.Trading.IdleWaitSec < 0 || c.Trading.OrderTimeoutSec < 0 {
		return fmt.Errorf("timing values must not be negative")
	}
	return nil
}

// overrideWithEnv lets environment variables replace file values for the
// credentials. The file path is the fallback, not the recommendation.
func overrideWithEnv(cfg *Config) {
	if cfg.Venue.SecretKey != "" {
		fmt.Println("⚠️  SECURITY WARNING: API secret found in config file.")
		fmt.Println("   Recommendation: use MAKER_API_KEY / MAKER_API_SECRET instead.")
	}
	if key := os.Getenv("MAKER_API_KEY"); key != "" {
		cfg.Venue.APIKey = key
	}
	if secret := os.Getenv("MAKER_API_SECRET"); secret != "" {
		cfg.Venue.SecretKey = secret
	}
}
