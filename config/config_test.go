package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "memory", cfg.Storage.Adapter)
	assert.True(t, cfg.Storage.SeedCatalog)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(2), cfg.Rewards.CoinsPerCorrectAnswer)
	assert.Equal(t, int64(50), cfg.Rewards.StreakBonusCoins)
}

func TestLoadFromFile(t *testing.T) {
	configContent := `{
		"environment": "testing",
		"server": {
			"address": ":9090"
		},
		"storage": {
			"adapter": "memory"
		},
		"rewards": {
			"coins_per_correct_answer": 5,
			"perfect_game_bonus": 20,
			"streak_bonus_coins": 50,
			"daily_bonus_coins": 10
		}
	}`

	tmpFile, err := os.CreateTemp("", "config_test_*.json")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(configContent)
	require.NoError(t, err)
	tmpFile.Close()

	cfg, err := LoadFromFile(tmpFile.Name())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, EnvTesting, cfg.Environment)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, int64(5), cfg.Rewards.CoinsPerCorrectAnswer)
	assert.Equal(t, int64(5), cfg.Rewards.Rates().CoinsPerCorrectAnswer)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MATHQUEST_SERVER_ADDR", ":7070")
	t.Setenv("MATHQUEST_STORAGE_ADAPTER", "file")
	t.Setenv("MATHQUEST_STORAGE_FILE_PATH", "/tmp/mathquest.json")
	t.Setenv("MATHQUEST_REWARDS_DAILY_BONUS", "25")
	t.Setenv("MATHQUEST_WEBHOOK_ENDPOINTS", "https://a.example.com/hook, https://b.example.com/hook")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "file", cfg.Storage.Adapter)
	assert.Equal(t, "/tmp/mathquest.json", cfg.Storage.File.Path)
	assert.Equal(t, int64(25), cfg.Rewards.DailyBonusCoins)
	assert.Equal(t, []string{"https://a.example.com/hook", "https://b.example.com/hook"}, cfg.Webhook.Endpoints)
}

func validConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Address:           ":8080",
			ReadTimeout:       time.Second,
			WriteTimeout:      time.Second,
			IdleTimeout:       time.Second,
			ReadHeaderTimeout: time.Second,
			ShutdownTimeout:   time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:        "valid config",
			mutate:      func(*Config) {},
			expectError: false,
		},
		{
			name:        "invalid environment",
			mutate:      func(c *Config) { c.Environment = "" },
			expectError: true,
		},
		{
			name:        "invalid server timeout",
			mutate:      func(c *Config) { c.Server.ReadTimeout = 0 },
			expectError: true,
		},
		{
			name:        "unknown storage adapter",
			mutate:      func(c *Config) { c.Storage.Adapter = "cassandra" },
			expectError: true,
		},
		{
			name:        "sql adapter without dsn",
			mutate:      func(c *Config) { c.Storage.Adapter = "sql" },
			expectError: true,
		},
		{
			name:        "negative reward rate",
			mutate:      func(c *Config) { c.Rewards.PerfectGameBonus = -1 },
			expectError: true,
		},
		{
			name:        "bad webhook endpoint",
			mutate:      func(c *Config) { c.Webhook.Endpoints = []string{"not a url"} },
			expectError: true,
		},
		{
			name: "rate limit enabled without budget",
			mutate: func(c *Config) {
				c.Security.EnableRateLimit = true
				c.Security.RateLimit.RequestsPerMinute = 0
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_StringRedactsSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.SQL.DSN = "postgres://user:hunter2@db/mathquest"
	cfg.Storage.Redis.Password = "hunter2"
	cfg.Webhook.AuthToken = "supersecret"

	out := cfg.String()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "supersecret")
	assert.True(t, strings.Contains(out, "[REDACTED]"))
}

func TestLoadFromFileRejectsBadPath(t *testing.T) {
	_, err := LoadFromFile("")
	assert.Error(t, err)

	_, err = LoadFromFile("config.yaml")
	assert.Error(t, err)
}
