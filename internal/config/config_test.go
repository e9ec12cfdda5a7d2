package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PORT", "")
	t.Setenv("JOTFORM_FORM_ID", "")
	t.Setenv("VITE_JOTFORM_FORM_ID", "251234567890")
	t.Setenv("VITE_API_URL", "https://api.zenshe.test/")

	cfg := Load()

	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "251234567890", cfg.JotForm.FormID)
	assert.Equal(t, "https://api.zenshe.test", cfg.PublicURL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.False(t, cfg.NATS.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PORT", "3307")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "https://zenshe.tn, ,https://admin.zenshe.tn")
	t.Setenv("JOTFORM_FORM_ID", "999")
	t.Setenv("VITE_JOTFORM_FORM_ID", "111")

	cfg := Load()

	assert.Equal(t, 3307, cfg.Database.Port)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, []string{"https://zenshe.tn", "https://admin.zenshe.tn"}, cfg.CORSOrigins)
	assert.Equal(t, "999", cfg.JotForm.FormID)
}

func TestGetEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
