package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	Host string `env:"HOST" default:"127.0.0.1"`
	Port string `env:"PORT" default:"8765"`

	PollInterval time.Duration `env:"POLL_INTERVAL" default:"10ms"`
	SendTimeout  time.Duration `env:"SEND_TIMEOUT" default:"5s"`

	MaxClients      int64   `env:"MAX_CLIENTS" default:"1000"`
	MaxClientsPerIP int     `env:"MAX_CLIENTS_PER_IP" default:"20"`
	ConnectionRate  float64 `env:"CONNECTION_RATE" default:"10"`
	ConnectionBurst int     `env:"CONNECTION_BURST" default:"10"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	SimSource     bool    `env:"SIM_SOURCE" default:"false"`
	SimSampleRate float64 `env:"SIM_SAMPLE_RATE" default:"30"`
}

// Addr returns the listen endpoint in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL must be positive")
	}
	if cfg.SendTimeout <= 0 {
		return errors.New("SEND_TIMEOUT must be positive")
	}
	if cfg.MaxClients <= 0 {
		return errors.New("MAX_CLIENTS must be positive")
	}
	if cfg.MaxClientsPerIP <= 0 {
		return errors.New("MAX_CLIENTS_PER_IP must be positive")
	}
	if cfg.ConnectionRate <= 0 || cfg.ConnectionBurst <= 0 {
		return errors.New("CONNECTION_RATE and CONNECTION_BURST must be positive")
	}
	if cfg.SimSource && cfg.SimSampleRate <= 0 {
		return errors.New("SIM_SAMPLE_RATE must be positive when SIM_SOURCE is enabled")
	}
	return nil
}
