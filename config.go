package main

import (
	"time"

	"github.com/spf13/viper"
)

// Config carries every runtime knob. Values come from a local .env file
// and the real environment, environment winning.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// Snapshot backend selection: DATABASE_URL (Postgres) beats
	// SNAPSHOT_DSN (SQLite file) beats the plain JSON file at
	// SNAPSHOT_PATH.
	SnapshotPath  string `mapstructure:"SNAPSHOT_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	SnapshotDSN   string `mapstructure:"SNAPSHOT_DSN"`
	WatchSnapshot bool   `mapstructure:"WATCH_SNAPSHOT"`

	ExtractFailureRate float64 `mapstructure:"EXTRACT_FAILURE_RATE"`
	ExtractMinDelayMS  int     `mapstructure:"EXTRACT_MIN_DELAY_MS"`
	ExtractMaxDelayMS  int     `mapstructure:"EXTRACT_MAX_DELAY_MS"`
}

func (c *Config) extractMinDelay() time.Duration {
	return time.Duration(c.ExtractMinDelayMS) * time.Millisecond
}

func (c *Config) extractMaxDelay() time.Duration {
	return time.Duration(c.ExtractMaxDelayMS) * time.Millisecond
}

func loadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8084")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SNAPSHOT_PATH", "data/document-store.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SNAPSHOT_DSN", "")
	v.SetDefault("WATCH_SNAPSHOT", true)
	v.SetDefault("EXTRACT_FAILURE_RATE", 0.05)
	v.SetDefault("EXTRACT_MIN_DELAY_MS", 1000)
	v.SetDefault("EXTRACT_MAX_DELAY_MS", 2000)

	// Missing .env is fine; env vars and defaults cover everything.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
