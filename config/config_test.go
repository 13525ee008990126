package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validConfig() *Config {
	return &Config{
		LuckPerms: LuckPermsConfig{
			URL:     "http://localhost:8080",
			APIKey:  "valid-api-key",
			Timeout: 30 * time.Second,
		},
		Concurrency: 10,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
luckperms:
  url: https://perms.example.com/api
  api_key: secret
  timeout: 5s
actor:
  unique_id: 99999999-9999-9999-9999-999999999999
  name: console
  record_actions: true
concurrency: 4
filter:
  default: 'not isExpired()'
  presets:
    temporary: 'isTemporary()'
    staff: 'Key startsWith "group.staff"'
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://perms.example.com/api", cfg.LuckPerms.URL)
	assert.Equal(t, "secret", cfg.LuckPerms.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LuckPerms.Timeout)
	assert.Equal(t, "lpctl", cfg.LuckPerms.UserAgent)
	assert.True(t, cfg.Actor.RecordActions)
	assert.Equal(t, uuid.MustParse("99999999-9999-9999-9999-999999999999"), cfg.Actor.ID())
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "not isExpired()", cfg.Filter.Default)
	assert.Len(t, cfg.Filter.Presets, 2)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "luckperms:\n  api_key: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.LuckPerms.URL)
	assert.Equal(t, 30*time.Second, cfg.LuckPerms.Timeout)
	assert.Equal(t, 10, cfg.Concurrency)
	assert.False(t, cfg.Actor.RecordActions)
	assert.Equal(t, uuid.Nil, cfg.Actor.ID())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LPCTL_LUCKPERMS_API_KEY", "from-env")
	t.Setenv("LPCTL_CONCURRENCY", "25")

	cfg, err := Load(writeConfig(t, "luckperms:\n  api_key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LuckPerms.APIKey)
	assert.Equal(t, 25, cfg.Concurrency)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("placeholder api key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "luckperms:\n  api_key: your-api-key-here\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "luckperms.api_key")
	})

	t.Run("broken preset", func(t *testing.T) {
		_, err := Load(writeConfig(t, "luckperms:\n  api_key: secret\nfilter:\n  presets:\n    bad: 'Key =='\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing url",
			mutate:  func(c *Config) { c.LuckPerms.URL = "" },
			wantErr: "luckperms.url is required",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.LuckPerms.APIKey = "" },
			wantErr: "luckperms.api_key",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.LuckPerms.Timeout = 0 },
			wantErr: "luckperms.timeout",
		},
		{
			name:    "concurrency too low",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "concurrency too high",
			mutate:  func(c *Config) { c.Concurrency = 101 },
			wantErr: "concurrency",
		},
		{
			name: "actor without uuid",
			mutate: func(c *Config) {
				c.Actor = ActorConfig{UniqueID: "console", Name: "console", RecordActions: true}
			},
			wantErr: "actor.unique_id",
		},
		{
			name: "actor ignored when not recording",
			mutate: func(c *Config) {
				c.Actor = ActorConfig{UniqueID: "console"}
			},
		},
		{
			name:    "invalid level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: "invalid logging level: trace",
		},
		{
			name:    "invalid format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid logging format: xml",
		},
		{
			name:    "invalid default filter",
			mutate:  func(c *Config) { c.Filter.Default = "Key" },
			wantErr: "filter.default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, ValidateLogLevel(level), level)
	}
	for _, level := range []string{"", "bogus", "trace", "INFO"} {
		assert.Error(t, ValidateLogLevel(level), level)
	}
}
