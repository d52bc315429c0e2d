package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SMS_PROVIDER", "http")
	t.Setenv("SMS_BASE_URL", "https://sms.example.test")
	t.Setenv("TIMEZONE", "Europe/Prague")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data/bogarovo.db", cfg.Store.Path)
	assert.Equal(t, DefaultBroadcastTemplate, cfg.Broadcast.Template)
	assert.False(t, cfg.Broadcast.CameraGranted)
	assert.False(t, cfg.Broadcast.SMSGranted)
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
}

func TestLoad_FromEnvFile(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("PERMIT_SMS", "")
	os.Unsetenv("APP_PORT")
	os.Unsetenv("PERMIT_SMS")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nPERMIT_SMS=true\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("APP_PORT")
		os.Unsetenv("PERMIT_SMS")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Broadcast.SMSGranted)
}

func TestValidate_Provider(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SMS_PROVIDER", "pigeon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMS_PROVIDER")
}

func TestValidate_WhatsAppRequiresCredentials(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SMS_PROVIDER", "whatsapp")
	t.Setenv("WHATSAPP_TOKEN", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHATSAPP_TOKEN")

	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderWhatsApp, cfg.SMS.Provider)
}

func TestValidate_SheetsNeedBothValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate_Timezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load("")
	assert.Error(t, err)
}
