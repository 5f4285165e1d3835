package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "techservice"
user = "smc"

[auth]
jwt_secret = "secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Logs.Level)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Contains(t, cfg.Database.DSN(), "dbname=techservice")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "memory"

[auth]
jwt_secret = "from-file"
`)
	t.Setenv(envJWTSecret, "from-env")
	t.Setenv(envDBPassword, "pg-pass")
	t.Setenv(envHTTPPort, "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "pg-pass", cfg.Database.Password)
	assert.Equal(t, 9090, cfg.Server.HTTPPort)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing jwt secret",
			content: "[database]\ndriver = \"memory\"\n",
		},
		{
			name:    "postgres without host",
			content: "[auth]\njwt_secret = \"s\"\n",
		},
		{
			name:    "unknown driver",
			content: "[database]\ndriver = \"mysql\"\n[auth]\njwt_secret = \"s\"\n",
		},
		{
			name:    "rate limit without redis",
			content: "[database]\ndriver = \"memory\"\n[auth]\njwt_secret = \"s\"\n[rate_limit]\nenabled = true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}
