package config

import (
	"time"

	"github.com/google/uuid"
)

// Config represents the complete configuration structure
type Config struct {
	LuckPerms   LuckPermsConfig `mapstructure:"luckperms"`
	Actor       ActorConfig     `mapstructure:"actor"`
	Concurrency int             `mapstructure:"concurrency"`
	Filter      FilterConfig    `mapstructure:"filter"`
	Logging     LoggingConfig   `mapstructure:"logging"`
}

// LuckPermsConfig holds REST API connection details
type LuckPermsConfig struct {
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ActorConfig identifies who mutations are recorded as in the action log
type ActorConfig struct {
	UniqueID      string `mapstructure:"unique_id"`
	Name          string `mapstructure:"name"`
	RecordActions bool   `mapstructure:"record_actions"`
}

// ID returns the parsed actor unique id, or uuid.Nil if it does not parse
func (a ActorConfig) ID() uuid.UUID {
	id, err := uuid.Parse(a.UniqueID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// FilterConfig contains the default node filter and named presets
type FilterConfig struct {
	Default string            `mapstructure:"default"`
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
