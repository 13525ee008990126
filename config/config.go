package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/s0up4200/lpctl/filter"
)

// EnvPrefix prefixes environment overrides, e.g. LPCTL_LUCKPERMS_API_KEY
const EnvPrefix = "LPCTL"

const placeholderAPIKey = "your-api-key-here"

// Load loads the configuration from file and environment.
// Without an explicit path a missing file is fine as long as the environment
// supplies the required settings.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".lpctl"))
		}

		// Check /etc
		v.AddConfigPath("/etc/lpctl/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateLogLevel checks a logging level from the config file or the command line
func ValidateLogLevel(level string) error {
	if !validLevels[level] {
		return fmt.Errorf("invalid logging level: %s", level)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// LuckPerms defaults
	v.SetDefault("luckperms.url", "http://localhost:8080")
	v.SetDefault("luckperms.api_key", "")
	v.SetDefault("luckperms.timeout", 30*time.Second)
	v.SetDefault("luckperms.user_agent", "lpctl")

	// Actor defaults
	v.SetDefault("actor.unique_id", uuid.Nil.String())
	v.SetDefault("actor.name", "lpctl")
	v.SetDefault("actor.record_actions", false)

	v.SetDefault("concurrency", 10)

	// Filter defaults
	v.SetDefault("filter.default", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.LuckPerms.URL == "" {
		return fmt.Errorf("luckperms.url is required")
	}

	if cfg.LuckPerms.APIKey == "" || cfg.LuckPerms.APIKey == placeholderAPIKey {
		return fmt.Errorf("luckperms.api_key must be set to a valid API key")
	}

	if cfg.LuckPerms.Timeout <= 0 {
		return fmt.Errorf("luckperms.timeout must be positive, got %s", cfg.LuckPerms.Timeout)
	}

	if cfg.Concurrency < 1 || cfg.Concurrency > 100 {
		return fmt.Errorf("concurrency must be between 1 and 100, got %d", cfg.Concurrency)
	}

	if cfg.Actor.RecordActions {
		if _, err := uuid.Parse(cfg.Actor.UniqueID); err != nil {
			return fmt.Errorf("actor.unique_id must be a UUID when actor.record_actions is enabled: %w", err)
		}
		if cfg.Actor.Name == "" {
			return fmt.Errorf("actor.name is required when actor.record_actions is enabled")
		}
	}

	if err := ValidateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	// Filters compile here so a typo fails at startup, not mid-command
	if err := filter.NewManager().RegisterPresets(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}
	if cfg.Filter.Default != "" {
		if _, err := filter.Compile(cfg.Filter.Default); err != nil {
			return fmt.Errorf("invalid filter.default: %w", err)
		}
	}

	return nil
}
