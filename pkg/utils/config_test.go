package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AKILI_CONFIG", "")
	t.Setenv("RAPIDAPI_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, cfg.News.APIKey)
	assert.Empty(t, cfg.Classifier.APIKey)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.ValidateAdmin(), ErrMissingJWTSecret)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "akili.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  reader_addr: ":9000"
auth:
  jwt_secret: from-file
  jwt_ttl_hours: 2
ingest:
  concurrency: 8
logging:
  level: debug
`), 0o600))

	t.Setenv("AKILI_JWT_SECRET", "from-env")
	t.Setenv("RAPIDAPI_KEY", " rk ")
	t.Setenv("AKILI_JWT_TTL_HOURS", "nope")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.ReaderAddr)
	assert.Equal(t, ":8081", cfg.Server.AdminAddr)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "rk", cfg.News.APIKey)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTDuration())
	assert.Equal(t, 8, cfg.Ingest.Concurrency)
	assert.NoError(t, cfg.ValidateAdmin())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"concurrency", func(c *Config) { c.Ingest.Concurrency = 0 }, ErrInvalidConcurrency},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogLevel},
		{"upload limit", func(c *Config) { c.Media.MaxUploadBytes = 0 }, ErrInvalidUploadLimit},
		{"ttl", func(c *Config) { c.Auth.JWTSecret = "s"; c.Auth.JWTTTLHours = 0 }, ErrInvalidJWTTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.ValidateAdmin(), tt.want)
		})
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("shouty")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}
