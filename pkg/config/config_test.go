package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "ALLOWED_ORIGINS", "STORE_BACKEND", "CLICKHOUSE_ADDR",
		"REDIS_ADDR", "MQTT_ENABLED", "SIMULATION_DEVICE_ID", "SIMULATION_INTERVAL_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.AllowedOrigins)
	assert.Equal(t, "clickhouse", cfg.StoreBackend)
	assert.Equal(t, "localhost:9000", cfg.ClickHouseAddr)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, "WALRUS_SIM", cfg.SimulationDeviceID)
	assert.Equal(t, 1, cfg.SimulationIntervalSeconds)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Postgres")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example,,")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("SIMULATION_INTERVAL_SECONDS", "30")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreBackend)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, 30, cfg.SimulationIntervalSeconds)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestGetEnvHelpers_FallBackOnParseError(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	t.Setenv("TEST_BOOL", "maybe")

	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))
	assert.True(t, getEnvBool("TEST_BOOL", true))
	assert.Equal(t, "fallback", getEnv("TEST_MISSING_VAR", "fallback"))
}

func TestLoad_NonPositiveLivenessPollFallsBack(t *testing.T) {
	for _, value := range []string{"0", "-10"} {
		t.Setenv("LIVENESS_POLL_SECONDS", value)
		assert.Equal(t, 60, Load().LivenessPollSeconds)
	}

	t.Setenv("LIVENESS_POLL_SECONDS", "15")
	assert.Equal(t, 15, Load().LivenessPollSeconds)
}
