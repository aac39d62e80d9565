package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gt=0"`
	ClientBuffer       int           `mapstructure:"client_buffer" yaml:"client_buffer" validate:"gt=0"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute" validate:"gte=0"`
	Store              StoreConfig   `mapstructure:"store" yaml:"store"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver" yaml:"driver" validate:"required,oneof=sqlite postgres"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":3000",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		MaxMessageBytes:    64 << 10,
		ClientBuffer:       16,
		RateLimitPerMinute: 0,
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "dmrelay.db",
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.Store.Driver != "" {
		c.Store.Driver = other.Store.Driver
	}
	if other.Store.SQLitePath != "" {
		c.Store.SQLitePath = other.Store.SQLitePath
	}
	if other.Store.PostgresDSN != "" {
		c.Store.PostgresDSN = other.Store.PostgresDSN
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
