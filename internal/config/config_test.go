package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:           "development",
		Port:          "8080",
		SessionSecret: "s3cret",
		MediaBackend:  MediaLocal,
		MediaRoot:     "./media",
		IndexCacheTTL: 20 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = defaultSessionSecret
		}, "SESSION_SECRET"},
		{"default secret in development", func(c *Config) { c.SessionSecret = defaultSessionSecret }, ""},
		{"minio without bucket", func(c *Config) {
			c.MediaBackend = MediaMinIO
			c.MinIOEndpoint = "localhost:9000"
		}, "MINIO_BUCKET"},
		{"unknown backend", func(c *Config) { c.MediaBackend = "ftp" }, "MEDIA_BACKEND"},
		{"negative ttl", func(c *Config) { c.IndexCacheTTL = -time.Second }, "INDEX_CACHE_TTL"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("INDEX_CACHE_TTL", "45s")
	t.Setenv("MEDIA_ROOT", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, MediaLocal, cfg.MediaBackend)
	assert.False(t, cfg.IsProduction())
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}
