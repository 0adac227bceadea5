package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config is the runner's top-level configuration.
type Config struct {
	// ListenAddr is the host:port the HTTP trigger listens on.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// DatabasePath is the SQLite database file backing the stores.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// EmailWebhookURL is the email dispatch endpoint. When empty,
	// outbound emails are logged instead of sent.
	EmailWebhookURL string `mapstructure:"email_webhook_url" yaml:"email_webhook_url"`

	// PassTimeoutSec bounds one full escalation pass.
	PassTimeoutSec int `mapstructure:"pass_timeout_sec" yaml:"pass_timeout_sec"`

	// DedupWindowHours is the rolling window within which a finding is
	// escalated at most once per tier.
	DedupWindowHours int `mapstructure:"dedup_window_hours" yaml:"dedup_window_hours"`
}

func defaults() *Config {
	return &Config{
		ListenAddr:       "127.0.0.1:9001",
		DatabasePath:     "escalation.db",
		PassTimeoutSec:   300,
		DedupWindowHours: 24,
	}
}

// Load reads configuration from a YAML file with ESCALATOR_-prefixed
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ESCALATOR")
	v.AutomaticEnv()

	cfg := defaults()
	v.SetDefault("listen_addr", cfg.ListenAddr)
	v.SetDefault("database_path", cfg.DatabasePath)
	v.SetDefault("email_webhook_url", cfg.EmailWebhookURL)
	v.SetDefault("pass_timeout_sec", cfg.PassTimeoutSec)
	v.SetDefault("dedup_window_hours", cfg.DedupWindowHours)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
