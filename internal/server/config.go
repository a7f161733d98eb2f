package server

import (
	"time"

	"github.com/koustreak/pgdiscovery/internal/errs"
)

// Config holds HTTP listener settings.
type Config struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig listens on :8080.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Validate rejects an empty listen address.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errs.InvalidArgument("server addr is required")
	}
	return nil
}
