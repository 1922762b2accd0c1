package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("IDP_JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.AllowedHost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_ProductionHostAndOrigins(t *testing.T) {
	t.Setenv("IDP_JWT_SECRET", "secret")
	t.Setenv("ENV", "Production")
	t.Setenv("HOST", "https://api.moodlog.app/v1")
	t.Setenv("ALLOWED_ORIGINS", "https://moodlog.app, https://staging.moodlog.app")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "api.moodlog.app", cfg.AllowedHost)
	assert.Equal(t, []string{
		"https://moodlog.app",
		"https://staging.moodlog.app",
		"https://www.moodlog.app",
	}, cfg.AllowedOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("IDP_JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDP_JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			StoreDriver:  DriverMongo,
			MongoURI:     "mongodb://localhost:27017/moodlog",
			PostgresURI:  "postgres://localhost/moodlog",
			RedisURI:     "redis://localhost:6379/0",
			IDPJWTSecret: "secret",
			LogLevel:     "info",
			SessionTTL:   time.Hour,
			Timezone:     "UTC",
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.StoreDriver = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "STORE_DRIVER")

	cfg = valid()
	cfg.RedisURI = ""
	assert.ErrorContains(t, cfg.Validate(), "REDIS_URI")

	cfg = valid()
	cfg.EncryptionKey = "too-short"
	assert.ErrorContains(t, cfg.Validate(), "ENCRYPTION_KEY")

	cfg = valid()
	cfg.EncryptionKey = base64.StdEncoding.EncodeToString(make([]byte, 32))
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "TIMEZONE")

	cfg = valid()
	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "LOG_LEVEL")
}

func TestConfig_Location(t *testing.T) {
	cfg := Config{Timezone: "Europe/Berlin"}
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())

	cfg.Timezone = "nowhere"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestCloudinaryEnabled(t *testing.T) {
	cfg := Config{CloudinaryName: "demo", CloudinaryAPIKey: "k"}
	assert.False(t, cfg.CloudinaryEnabled())
	cfg.CloudinaryAPISecret = "s"
	assert.True(t, cfg.CloudinaryEnabled())
}
