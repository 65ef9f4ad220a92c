// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file if
// present), loads them into structured Go types and validates them so the
// app fails fast on bad or missing values.
//
// Keys use the MINIVALIDATION_ prefix and a double underscore for nesting:
//
//	MINIVALIDATION_SERVER__PORT            -> server.port
//	MINIVALIDATION_BINDING__NAMING_POLICY  -> binding.naming_policy
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "MINIVALIDATION_"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional; defaults are injected
// when it is missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Binding       BindingConfig        `koanf:"binding"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// BindingConfig is the JSON configuration request bodies are bound with.
type BindingConfig struct {
	// CaseSensitive requires JSON property names to match field names exactly.
	CaseSensitive bool `koanf:"case_sensitive"`

	// NamingPolicy is one of "", camel, snake, kebab.
	NamingPolicy string `koanf:"naming_policy" validate:"omitempty,oneof=camel snake kebab"`

	// MaxBodySize caps request bodies, in bytes.
	MaxBodySize int64 `koanf:"max_body_size" validate:"gte=0"`

	// DisallowUnknownFields rejects properties that match no field.
	DisallowUnknownFields bool `koanf:"disallow_unknown_fields"`

	// Converters names registered value converters, applied in order.
	Converters []string `koanf:"converters"`
}

// RateLimitConfig configures the in-memory request rate limiter.
// A zero Rate disables it.
type RateLimitConfig struct {
	Rate      float64 `koanf:"rate" validate:"gte=0"`
	Burst     int     `koanf:"burst" validate:"gte=0"`
	ExpiresIn int     `koanf:"expires_in" validate:"gte=0"` // seconds
}

// defaultConfig holds the values used for keys the environment leaves out.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Binding: BindingConfig{
			MaxBodySize: 1 << 20,
		},
		RateLimit: RateLimitConfig{
			Rate:      20,
			Burst:     40,
			ExpiresIn: 180,
		},
		// Partial observability settings merge into these.
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys are comma-separated in the environment.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
	"binding.converters":          true,
}

// envKey turns MINIVALIDATION_SERVER__READ_TIMEOUT into server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func envValue(key, value string) (string, any) {
	key = envKey(key)
	if !listKeys[key] {
		return key, value
	}

	items := strings.Split(value, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return key, items
}

// LoadConfig loads configuration from the environment, validates it and
// applies defaults.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := defaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always come from the app itself.
	mainConfig.Observability.ServiceName = "minivalidation"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
