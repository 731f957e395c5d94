package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tempDir) })

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	require.NoError(t, os.Mkdir(tempConfigsSubDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tempConfigsSubDir, name), []byte(content), 0644))

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(originalWD) })
	require.NoError(t, os.Chdir(tempDir))
}

func TestLoadConfig_HappyPath(t *testing.T) {
	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092,kafka2:9092"
	testWebhookSecret := "test-webhook-secret"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\nGATEWAY_WEBHOOK_SECRET=%s\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers, testWebhookSecret,
	)
	writeConfigFile(t, "test_happy.env", envContent)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)
	assert.Equal(t, testWebhookSecret, cfg.Gateway.WebhookSecret)

	// Values not set in the file fall back to defaults
	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "settlement_events", cfg.Kafka.SettlementTopic)
	assert.Equal(t, "mongodb://localhost:27017/?replicaSet=rs0", cfg.MongoDB.URI)
	assert.Equal(t, 10, cfg.WorkerPool.Size)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Outbox.PollingInterval)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestLoadConfig_MissingWebhookSecret(t *testing.T) {
	writeConfigFile(t, "test_nosecret.env", "APP_NAME=NoSecret\n")

	cfg, err := LoadConfig("test_nosecret")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "GATEWAY_WEBHOOK_SECRET is required")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	envContent := "GATEWAY_WEBHOOK_SECRET=secret\n" +
		"SERVER_PORT=0\n" +
		"OTP_LENGTH=2\n" +
		"RETRY_MAX_ATTEMPTS=0\n"
	writeConfigFile(t, "test_invalid.env", envContent)

	cfg, err := LoadConfig("test_invalid")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "SERVER_PORT must be greater than 0")
	assert.Contains(t, err.Error(), "OTP_LENGTH must be at least 4")
	assert.Contains(t, err.Error(), "RETRY_MAX_ATTEMPTS must be greater than 0")
}
