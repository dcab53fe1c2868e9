package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("JWT_EXPIRE", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()
	assert.Equal(t, ":3002", cfg.HTTPAddr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpire)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("STORE_DRIVER", DriverMemory)

	cfg := Load()
	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpire)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
}

func TestParseDurationDays(t *testing.T) {
	d, err := ParseDuration("3d")
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{StoreDriver: DriverMemory, JWTExpire: time.Hour}
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET is required")

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.StoreDriver = "mongo"
	assert.Error(t, cfg.Validate())
}
