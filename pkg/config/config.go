package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete gateway configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (DOCGATE_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Backend Configuration Pattern:
// The provider and grant-store sections carry a Type field plus one
// type-specific map per supported implementation; only the section matching
// the selected type is used. Factory functions in factories.go decode the
// selected map into the implementation's own config struct.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the HTTP listener settings.
	Server ServerConfig `mapstructure:"server"`

	// Provider selects the document-provider backend.
	Provider ProviderConfig `mapstructure:"provider"`

	// Grants selects the grant-store backend.
	Grants GrantsConfig `mapstructure:"grants"`

	// Viewer controls the inline view policy.
	Viewer ViewerConfig `mapstructure:"viewer"`

	// Metrics controls the metrics/health sidecar listener.
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output specifies where logs are written: stdout, stderr, or a path.
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	// Listen is the address the gateway listens on.
	Listen string `mapstructure:"listen" validate:"required"`

	// ReadTimeout bounds reading a request.
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"required,gt=0"`

	// WriteTimeout bounds writing a response.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required,gt=0"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`
}

// ProviderConfig selects the document-provider backend.
type ProviderConfig struct {
	// Type specifies which provider implementation to use.
	Type string `mapstructure:"type" validate:"required,oneof=memory s3"`

	// Memory contains memory-provider configuration.
	// Only used when Type = "memory".
	Memory map[string]any `mapstructure:"memory"`

	// S3 contains S3-provider configuration.
	// Only used when Type = "s3".
	S3 map[string]any `mapstructure:"s3"`
}

// GrantsConfig selects the grant-store backend.
type GrantsConfig struct {
	// Type specifies which grant store implementation to use.
	Type string `mapstructure:"type" validate:"required,oneof=memory badger"`

	// Badger contains BadgerDB-specific configuration.
	// Only used when Type = "badger".
	Badger map[string]any `mapstructure:"badger"`
}

// ViewerConfig controls the inline view policy.
type ViewerConfig struct {
	// InlineMimeTypes is the allow-list of MIME types rendered inline as
	// UTF-8 text.
	InlineMimeTypes []string `mapstructure:"inline_mime_types" validate:"required,min=1"`
}

// MetricsConfig controls the metrics sidecar.
type MetricsConfig struct {
	// Enabled starts the /metrics + /healthz listener when true.
	Enabled bool `mapstructure:"enabled"`

	// Listen is the sidecar address. Required when Enabled.
	Listen string `mapstructure:"listen" validate:"required_if=Enabled true"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses the default
//     location under $XDG_CONFIG_HOME/docgate)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config file
// location.
func setupViper(v *viper.Viper, configPath string) {
	// Example: DOCGATE_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("DOCGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is not an error; defaults and environment variables still apply.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the default configuration directory.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "docgate")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "docgate")
}
