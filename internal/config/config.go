// Package config loads the rategate command's settings from the
// environment and validates them.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every environment variable name.
const Prefix = "RATEGATE_"

// Config holds the settings of one rategate run. Every field can be set
// from a RATEGATE_* variable and overridden by a command line flag.
type Config struct {
	Limit   int           `env:"LIMIT" envDefault:"30" validate:"gt=0"`
	Window  time.Duration `env:"WINDOW" envDefault:"1m" validate:"gt=0s"`
	Poll    time.Duration `env:"POLL" envDefault:"1s" validate:"gt=0s"`
	MaxWait time.Duration `env:"MAX_WAIT" envDefault:"0s" validate:"gte=0s"`

	URL         string        `env:"URL" validate:"required,url"`
	Method      string        `env:"METHOD" envDefault:"POST" validate:"oneof=GET POST PUT PATCH DELETE"`
	Payload     string        `env:"PAYLOAD" validate:"omitempty,json"`
	Status      int           `env:"STATUS" envDefault:"200" validate:"gte=100,lte=599"`
	Requests    int           `env:"REQUESTS" envDefault:"30" validate:"gt=0"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"0" validate:"gte=0"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"0s" validate:"gte=0s"`
	UserAgent   string        `env:"USER_AGENT" envDefault:"rategate/1.0"`

	RedisAddr   string `env:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"rategate:stats" validate:"required"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

// Load parses the environment into a Config. Defaults apply to unset
// variables. The result is not validated, so flags can still override it.
func Load() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
