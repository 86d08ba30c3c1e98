package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"AUTH_JWT_SECRET", "AUTH_ISSUER", "AUTH_AUDIENCE", "BOOTSTRAP_TOKEN",
		"DATABASE_FILE", "CACHE_BACKEND", "REDIS_ADDR", "PERMISSION_CACHE_TTL",
		"PUBLIC_BASE_URL", "APP_BASE_URL", "ALLOWED_ORIGINS", "PORT",
		"SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, []string{"authenticated"}, cfg.Audience)
	require.Equal(t, "avaliatec.db", cfg.DatabaseFile)
	require.Equal(t, "memory", cfg.CacheBackend)
	require.Equal(t, 5*time.Minute, cfg.PermissionCacheTTL)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, time.Minute, cfg.HousekeepingInterval)
	require.Empty(t, cfg.AllowedOrigins)
	require.Empty(t, cfg.WebhookURL())

	require.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_AUDIENCE", "authenticated, service ,")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PERMISSION_CACHE_TTL", "90")
	t.Setenv("PUBLIC_BASE_URL", "https://crm.avaliatec.test/")
	t.Setenv("ALLOWED_ORIGINS", "https://app.avaliatec.test")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, []string{"authenticated", "service"}, cfg.Audience)
	require.Equal(t, "redis", cfg.CacheBackend)
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, 90*time.Second, cfg.PermissionCacheTTL)
	require.Equal(t, "https://crm.avaliatec.test/v1/webhooks/evolution", cfg.WebhookURL())
	require.Equal(t, []string{"https://app.avaliatec.test"}, cfg.AllowedOrigins)
	require.Equal(t, 8080, cfg.Port)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		anyErr  bool
	}{
		{"memory ok", Config{JWTSecret: "x", CacheBackend: "memory"}, nil, false},
		{"missing secret", Config{CacheBackend: "memory"}, ErrMissingJWTSecret, true},
		{"redis without addr", Config{JWTSecret: "x", CacheBackend: "redis"}, ErrMissingRedisAddr, true},
		{"unknown backend", Config{JWTSecret: "x", CacheBackend: "memcached"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.anyErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
