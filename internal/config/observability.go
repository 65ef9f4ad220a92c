package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups logging and APM settings.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs and APM dashboards.
	ServiceName string `koanf:"service_name"`

	// Environment splits telemetry by environment (production, development...).
	Environment string `koanf:"environment"`

	Logging  LoggingConfig  `koanf:"logging"`
	NewRelic NewRelicConfig `koanf:"new_relic"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`

	// SlowRequestThreshold marks requests slower than this as slow in the
	// request log. Zero disables it.
	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM.
//
// An empty LicenseKey leaves New Relic disabled.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`

	// DebugLogging writes agent debug output to stdout; it mixes log formats.
	DebugLogging bool `koanf:"debug_logging"`
}

// DefaultObservabilityConfig is used when no observability block is configured.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "minivalidation",
		Environment: "development",
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "json",
			SlowRequestThreshold: 500 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			LicenseKey:                "",
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false,
		},
	}
}

// Validate checks the values struct tags cannot express.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %s (must be one of: json, console)", c.Logging.Format)
	}

	if c.Logging.SlowRequestThreshold < 0 {
		return fmt.Errorf("logging slow_request_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level, defaulting by environment
// when none is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development":
		if c.Logging.Level == "" {
			return "debug"
		}
	}
	return c.Logging.Level
}

// IsProduction reports whether the application runs in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
