package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Save current env and restore later
	origHost := os.Getenv("DB_HOST")
	defer os.Setenv("DB_HOST", origHost)

	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_MAX_OPEN_CONNS", "20")
	os.Setenv("STORE_PROVIDER", "s3")
	os.Setenv("S3_USE_SSL", "true")
	os.Setenv("LEDGER_CHAIN_ID", "421614")
	os.Setenv("RECONCILE_MAX_ATTEMPTS", "3")
	defer func() {
		os.Unsetenv("DB_MAX_OPEN_CONNS")
		os.Unsetenv("STORE_PROVIDER")
		os.Unsetenv("S3_USE_SSL")
		os.Unsetenv("LEDGER_CHAIN_ID")
		os.Unsetenv("RECONCILE_MAX_ATTEMPTS")
	}()

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "s3", cfg.Store.Provider)
	assert.True(t, cfg.Store.S3.UseSSL)
	assert.Equal(t, uint64(421614), cfg.Ledger.ChainID)
	assert.Equal(t, 3, cfg.Reconcile.MaxAttempts)
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvUint64(t *testing.T) {
	key := "TEST_UINT_VAR"

	os.Setenv(key, "421614")
	assert.Equal(t, uint64(421614), getEnvUint64(key, 0))

	os.Setenv(key, "-1")
	assert.Equal(t, uint64(7), getEnvUint64(key, 7))

	os.Unsetenv(key)
	assert.Equal(t, uint64(7), getEnvUint64(key, 7))
}
