//go:build integration

package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/raksetu/bloodhub/internal/domain/entities"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/postgres"
	"github.com/raksetu/bloodhub/internal/infrastructure/clients/redis"
	"github.com/raksetu/bloodhub/migrations"
	"github.com/raksetu/bloodhub/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	return newPrefixedRedisClient(t, "bloodhub-test:")
}

func newPrefixedRedisClient(t *testing.T, prefix string) *redis.Client {
	t.Helper()

	cfg := &config.RedisConfig{
		Host:      getEnv("TEST_REDIS_HOST", "localhost"),
		Port:      getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password:  getEnv("TEST_REDIS_PASSWORD", ""),
		DB:        getEnvAsInt("TEST_REDIS_DB", 0),
		KeyPrefix: prefix,
	}

	client, err := redis.NewClient(context.Background(), cfg)
	require.NoError(t, err, "Failed to create redis client")
	return client
}

func newTestPostgresClient(t *testing.T) *postgres.Client {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "bloodhub_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),

		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}

	client, err := postgres.NewClient(context.Background(), cfg)
	require.NoError(t, err, "Failed to create postgres client")

	_, err = migrations.Apply(context.Background(), client.DB())
	require.NoError(t, err, "Failed to apply schema")
	return client
}

func cleanupTables(t *testing.T, client *postgres.Client, tables ...string) {
	t.Helper()
	for _, table := range tables {
		_, err := client.DB().Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
}

func waitForEmergencyEvent(t *testing.T, ch <-chan *entities.EmergencyEvent) *entities.EmergencyEvent {
	t.Helper()
	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for emergency event")
		return nil
	}
}
