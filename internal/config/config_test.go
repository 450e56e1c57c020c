package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INFERENCE_TIMEOUT", "")
	t.Setenv("CHOICES_WIDTH", "")
	t.Setenv("ALLOWED_EXTENSIONS", "")

	cfg := Load()

	assert.Equal(t, 120*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 4, cfg.Session.ChoicesWidth)
	assert.Contains(t, cfg.Workspace.AllowedExtensions, "pdf")
	assert.Contains(t, cfg.Workspace.AllowedExtensions, "csv")
}

func TestLoadTracingSettings(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg := Load()
	assert.False(t, cfg.App.OtelEnabled)
	assert.Equal(t, "aficionado-backend", cfg.App.ServiceName)
	assert.Equal(t, "localhost:4318", cfg.App.OtelEndpoint)

	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "aficionado-staging")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg = Load()
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, "aficionado-staging", cfg.App.ServiceName)
	assert.Equal(t, "collector:4318", cfg.App.OtelEndpoint)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INFERENCE_TIMEOUT", "15s")
	t.Setenv("CHOICES_WIDTH", "3")
	t.Setenv("ALLOWED_EXTENSIONS", " .PDF, csv ,,")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 15*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, 3, cfg.Session.ChoicesWidth)
	assert.Equal(t, []string{"pdf", "csv"}, cfg.Workspace.AllowedExtensions)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("SOME_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
