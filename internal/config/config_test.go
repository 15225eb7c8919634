package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
user = "postgres"
password = "from-file"
dbname = "appointments"
`)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 10, cfg.Subscriptions.FreeBookingLimit)
	assert.Equal(t, 5, cfg.Redis.LockTTLSeconds)
	assert.Equal(t, "from-file", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "dbname=appointments")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"
password = "from-file"

[notifications.kafka]
enabled = true
brokers = ["file:9092"]
`)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Notifications.Kafka.Brokers)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	_, err := Load(writeConfig(t, `[database]
dbname = "x"`))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeConfig(t, `[database`))
	assert.ErrorIs(t, err, ErrReadConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestValidate_SMTPRequiresHost(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{HTTPPort: 8080},
		Database: DatabaseConfig{Host: "h", DBName: "d"},
	}
	cfg.Notifications.SMTP.Enabled = true

	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
