package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/insurance-engine/config"
)

// unsetEnv clears keys for the test; t.Setenv restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	unsetEnv(t, "PORT", "DB_PATH", "SMTP_HOST", "SMTP_PORT", "OVERDUE_CRON")
	t.Setenv("TOKEN_SECRET", "s3cret")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./insurance.db", cfg.DBPath)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "0 6 * * *", cfg.OverdueCron)
	assert.False(t, cfg.MailEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("OVERDUE_CRON", "")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.MailEnabled())
	assert.Empty(t, cfg.OverdueCron, "set but empty disables the sweep")
}

func TestFromEnv_Errors(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	_, err := config.FromEnv()
	assert.ErrorContains(t, err, "TOKEN_SECRET")

	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("SMTP_PORT", "abc")
	_, err = config.FromEnv()
	assert.ErrorContains(t, err, "SMTP_PORT")
}
