package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5*time.Minute, cfg.Webhook.Tolerance)
	assert.Equal(t, "leads", cfg.Database.Table)
	assert.False(t, cfg.Database.Migrate)
	assert.Equal(t, "checklists", cfg.Storage.Bucket)
	assert.Equal(t, time.Hour, cfg.Storage.SignTTL)
	assert.Equal(t, "https://api.resend.com", cfg.Mailer.Endpoint)
	assert.Equal(t, "ImmigrAI", cfg.Mailer.FromName)
	assert.Equal(t, "Your ImmigrAI USCIS Checklist", cfg.Mailer.Subject)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupTTL)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("DELIVERY_SERVER_PORT", "9090")
	t.Setenv("DELIVERY_WEBHOOK_SIGNING_SECRET", "whsec_env")
	t.Setenv("DELIVERY_DATABASE_URL", "postgres://env/db")
	t.Setenv("DELIVERY_STORAGE_SIGN_TTL", "30m")
	t.Setenv("DELIVERY_REDIS_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "whsec_env", cfg.Webhook.SigningSecret)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.Storage.SignTTL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8181
webhook:
  signing_secret: whsec_file
  tolerance: 10m
mailer:
  from_name: Custom
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, "whsec_file", cfg.Webhook.SigningSecret)
	assert.Equal(t, 10*time.Minute, cfg.Webhook.Tolerance)
	assert.Equal(t, "Custom", cfg.Mailer.FromName)
	// Untouched keys keep their defaults.
	assert.Equal(t, "leads", cfg.Database.Table)
}

func TestLoadEnvironmentBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8181\n"), 0o644))
	t.Setenv("DELIVERY_SERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	missing := cfg.Validate()
	assert.Equal(t, []string{
		"webhook.signing_secret",
		"database.url",
		"storage.url",
		"storage.service_key",
		"mailer.api_key",
		"mailer.from_address",
	}, missing)

	cfg.Webhook.SigningSecret = "whsec_x"
	cfg.Database.URL = "postgres://localhost/db"
	cfg.Storage.URL = "https://proj.supabase.co"
	cfg.Storage.ServiceKey = "service-key"
	cfg.Mailer.APIKey = "re_key"
	cfg.Mailer.FromAddress = "noreply@example.com"
	assert.Empty(t, cfg.Validate())

	cfg.Storage.Bucket = ""
	assert.Equal(t, []string{"storage.bucket"}, cfg.Validate())
}
