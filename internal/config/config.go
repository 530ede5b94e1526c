// Package config loads the takeout2sms YAML configuration and resolves
// the standard filesystem paths.
package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Config is the root configuration for takeout2sms.
type Config struct {
	Cache   CacheConfig   `yaml:"cache,omitempty"`
	Images  ImagesConfig  `yaml:"images,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// CacheConfig controls the downloaded-image cache.
type CacheConfig struct {
	Path string `yaml:"path,omitempty"` // sqlite file; defaults to <base>/images.db
}

// ImagesConfig controls attachment retrieval.
type ImagesConfig struct {
	MaxBackoffSeconds int `yaml:"maxBackoffSeconds,omitempty"` // retry ceiling for transient server errors
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "error" | "warn" | "info" | "debug" | "trace"
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Images: ImagesConfig{
			MaxBackoffSeconds: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Images.MaxBackoffSeconds == 0 {
		cfg.Images.MaxBackoffSeconds = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
