package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BrokerLog, cfg.Broker.Kind)
	assert.Equal(t, 50, cfg.Relay.BatchSize)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COMANDA_SERVER_PORT", "9090")
	t.Setenv("COMANDA_DATABASE_NAME", "comanda_test")
	t.Setenv("COMANDA_BROKER_KIND", "RabbitMQ")
	t.Setenv("COMANDA_RELAY_INTERVAL", "500ms")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "comanda_test", cfg.Database.Name)
	assert.Equal(t, BrokerRabbitMQ, cfg.Broker.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.Relay.Interval)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
database:
  name: floor
  auto_migrate: true
broker:
  kind: kafka
  kafka:
    brokers: ["k1:9092", "k2:9092"]
    topic: RECEIPTS
admin:
  token: letmein
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "floor", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, BrokerKafka, cfg.Broker.Kind)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.Kafka.Brokers)
	assert.Equal(t, "RECEIPTS", cfg.Broker.Kafka.Topic)
	assert.Equal(t, "letmein", cfg.Admin.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_UnknownBroker(t *testing.T) {
	t.Setenv("COMANDA_BROKER_KIND", "carrier-pigeon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("COMANDA_SERVER_READ_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}
