package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReaderDefaults(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.TrustedOrigins)
	assert.Equal(t, 720*time.Hour, cfg.JWT.TokenTTL)
	assert.Equal(t, StorageMongo, cfg.Storage.Driver)
	assert.Equal(t, "Tms", cfg.Mongo.Database)
	assert.False(t, cfg.HTTP.RateLimit.Enabled)
	assert.Empty(t, cfg.SMTP.Host)
	assert.True(t, cfg.Development())
}

func TestEnvReaderRequired(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := NewEnvReader().Read()
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:     EnvProd,
			JWT:     JWTConfig{SigningKey: "k", TokenTTL: time.Hour},
			Storage: StorageConfig{Driver: StorageMemory},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "postgres without database", mutate: func(c *Config) { c.Storage.Driver = StoragePostgres }, wantErr: true},
		{
			name: "postgres",
			mutate: func(c *Config) {
				c.Storage.Driver = StoragePostgres
				c.Postgres.Username = "tms"
				c.Postgres.Database = "tms"
			},
		},
		{name: "empty signing key", mutate: func(c *Config) { c.JWT.SigningKey = "" }, wantErr: true},
		{name: "blank signing key", mutate: func(c *Config) { c.JWT.SigningKey = "   " }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.JWT.TokenTTL = 0 }, wantErr: true},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.HTTP.RateLimit = RateLimitConfig{Enabled: true, RPS: 1}
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.False(t, valid().Development())
}
