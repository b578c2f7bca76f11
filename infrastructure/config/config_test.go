package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
server:
  internalPort: "9090"
  runMode: debug
rooms:
  timeout: 45m
database:
  driver: sqlite
  path: rooms.db
platform:
  driver: memory
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadConfig(t *testing.T, content string) *Config {
	t.Helper()

	v, err := LoadConfigFile(writeConfig(t, content))
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	return cfg
}

func TestParseConfig_AppliesDefaults(t *testing.T) {
	cfg := loadConfig(t, minimalConfig)

	assert.Equal(t, "9090", cfg.Server.InternalPort)
	assert.Equal(t, 45*time.Minute, cfg.Rooms.Timeout)
	assert.Equal(t, 2, cfg.Rooms.DefaultCapacity)
	assert.Equal(t, time.Minute, cfg.Rooms.SweepInterval)
	assert.Equal(t, DefaultDescriptions, cfg.Rooms.Descriptions)
	assert.Equal(t, "!", cfg.Bot.Prefix)
	assert.Equal(t, 10*time.Second, cfg.Platform.CallTimeout)
	assert.Equal(t, 3, cfg.Platform.MaxAttempts)
	assert.Equal(t, "roombot:events", cfg.Redis.Channel)
	assert.Equal(t, ":9090", cfg.GetServerAddress())
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestParseConfig_EnvOverride(t *testing.T) {
	t.Setenv("ROOMS_TIMEOUT", "5m")

	cfg := loadConfig(t, minimalConfig)
	assert.Equal(t, 5*time.Minute, cfg.Rooms.Timeout)
}

func TestLoadConfigFile_Missing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing port", func(c *Config) { c.Server.InternalPort = "" }, "server.internalPort"},
		{"zero timeout", func(c *Config) { c.Rooms.Timeout = 0 }, "rooms.timeout"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"unknown database", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"discord without token", func(c *Config) { c.Platform.Driver = "discord" }, "bot.token"},
		{"unknown platform", func(c *Config) { c.Platform.Driver = "slack" }, "platform.driver"},
		{"redis without host", func(c *Config) { c.Redis.Enabled = true }, "redis.host"},
		{"postgres without host", func(c *Config) { c.Database.Driver = "postgres" }, "database.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadConfig(t, minimalConfig)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5432", User: "bot", Password: "secret", DbName: "rooms", SSLMode: "disable",
	}}

	assert.Equal(t,
		"host=db port=5432 user=bot password=secret dbname=rooms sslmode=disable",
		cfg.GetPostgresConnectionString(),
	)
}
