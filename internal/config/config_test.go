package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"DB_DSN": "postgres://localhost/clinic"}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.AuditInterval)
	assert.Equal(t, 5.0, cfg.BookRateRPS)
	assert.Equal(t, 10, cfg.BookRateBurst)
	assert.False(t, cfg.SeedDemo)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "postgres://localhost/clinic", cfg.GetDBDSN())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"ENV":             "production",
		"STORAGE":         "memory",
		"HTTP_ADDR":       ":8080",
		"LOCK_TIMEOUT":    "250ms",
		"REQUEST_TIMEOUT": "3s",
		"AUDIT_INTERVAL":  "1m",
		"BOOK_RATE_RPS":   "0",
		"BOOK_RATE_BURST": "1",
		"SEED_DEMO":       "true",
		"TELEGRAM_TOKEN":  "123:abc",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.AuditInterval)
	assert.Zero(t, cfg.BookRateRPS)
	assert.Equal(t, 1, cfg.BookRateBurst)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
}

func TestFromEnv_BoundaryValues(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"STORAGE":         "memory",
		"LOCK_TIMEOUT":    "1ms",
		"BOOK_RATE_RPS":   "0",
		"BOOK_RATE_BURST": "0",
	}))
	require.NoError(t, err)
	assert.Equal(t, time.Millisecond, cfg.LockTimeout)
	assert.Zero(t, cfg.BookRateRPS)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "postgres without dsn", vars: map[string]string{}},
		{name: "unknown storage", vars: map[string]string{"STORAGE": "redis"}},
		{name: "bad lock timeout", vars: map[string]string{"STORAGE": "memory", "LOCK_TIMEOUT": "soon"}},
		{name: "zero lock timeout", vars: map[string]string{"STORAGE": "memory", "LOCK_TIMEOUT": "0s"}},
		{name: "sub-millisecond lock timeout", vars: map[string]string{"STORAGE": "memory", "LOCK_TIMEOUT": "500us"}},
		{name: "negative lock timeout", vars: map[string]string{"STORAGE": "memory", "LOCK_TIMEOUT": "-1s"}},
		{name: "zero burst with limiter on", vars: map[string]string{"STORAGE": "memory", "BOOK_RATE_RPS": "5", "BOOK_RATE_BURST": "0"}},
		{name: "negative burst with limiter on", vars: map[string]string{"STORAGE": "memory", "BOOK_RATE_BURST": "-3"}},
		{name: "bad rps", vars: map[string]string{"STORAGE": "memory", "BOOK_RATE_RPS": "fast"}},
		{name: "bad burst", vars: map[string]string{"STORAGE": "memory", "BOOK_RATE_BURST": "1.5"}},
		{name: "bad seed flag", vars: map[string]string{"STORAGE": "memory", "SEED_DEMO": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tt.vars))
			assert.Error(t, err)
		})
	}
}
