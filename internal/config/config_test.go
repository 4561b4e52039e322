package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(pairs ...string) LookupFunc {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWith(env("DATABASE_URL", "postgres://localhost/test"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10485760), cfg.Import.MaxFileSize)
	assert.Equal(t, 10000, cfg.Import.MaxRows)
	assert.Equal(t, 10, cfg.Import.PreviewSampleSize)
	assert.Equal(t, 4, cfg.Import.MaxConcurrent)
	assert.Equal(t, 30*time.Second, cfg.Import.MaxWaitTime)
	assert.Equal(t, "utf-8", cfg.Import.Encoding)
	assert.Equal(t, 10, cfg.Import.BcryptCost)
	assert.Equal(t, 120, cfg.Rate.RequestsPerMinute)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "gochannel", cfg.Events.Backend)
	assert.Equal(t, "member-imports.completed", cfg.Events.Topic)
	assert.Empty(t, cfg.Security.APIKeys)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadWith(env(
		"DATABASE_URL", "postgres://localhost/test",
		"SERVER_PORT", "9090",
		"IMPORT_MAX_ROWS", "500",
		"IMPORT_ENCODING", "windows-1252",
		"LOG_LEVEL", "debug",
		"TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12",
	))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Import.MaxRows)
	assert.Equal(t, "windows-1252", cfg.Import.Encoding)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12"}, cfg.Security.TrustedProxies)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadWith(env("DB_URL", "postgres://localhost/alttest"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/alttest", cfg.Database.URL)
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := LoadWith(env())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_ReportsEveryProblemAtOnce(t *testing.T) {
	_, err := LoadWith(env("IMPORT_MAX_ROWS", "0", "LOG_LEVEL", "loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
	assert.Contains(t, err.Error(), "IMPORT_MAX_ROWS must be positive")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"non-numeric port", "SERVER_PORT", "http", "SERVER_PORT"},
		{"bad duration", "IMPORT_TIMEOUT", "forever", "IMPORT_TIMEOUT"},
		{"bad bool", "DB_AUTO_MIGRATE", "maybe", "DB_AUTO_MIGRATE"},
		{"port out of range", "SERVER_PORT", "70000", "SERVER_PORT (70000)"},
		{"unknown encoding", "IMPORT_ENCODING", "ebcdic", "IMPORT_ENCODING"},
		{"unknown backend", "EVENTS_BACKEND", "nats", "EVENTS_BACKEND"},
		{"zero rows", "IMPORT_MAX_ROWS", "0", "IMPORT_MAX_ROWS"},
		{"weak bcrypt", "IMPORT_BCRYPT_COST", "2", "IMPORT_BCRYPT_COST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWith(env("DATABASE_URL", "postgres://localhost/test", tt.key, tt.value))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CrossField(t *testing.T) {
	t.Run("api key required without keys", func(t *testing.T) {
		_, err := LoadWith(env("DATABASE_URL", "x", "REQUIRE_API_KEY", "true"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_KEYS is empty")
	})

	t.Run("kafka without brokers", func(t *testing.T) {
		_, err := LoadWith(env("DATABASE_URL", "x", "EVENTS_BACKEND", "kafka"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EVENTS_KAFKA_BROKERS")
	})

	t.Run("min conns above max", func(t *testing.T) {
		_, err := LoadWith(env("DATABASE_URL", "x", "DB_MAX_CONNS", "2", "DB_MIN_CONNS", "5"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be >= DB_MIN_CONNS")
	})
}

func TestConfig_StringMasksURL(t *testing.T) {
	cfg, err := LoadWith(env("DATABASE_URL", "postgres://user:secret@db/members"))
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "[MASKED]")
}
