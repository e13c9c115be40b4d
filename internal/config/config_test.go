package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config

	assert.Equal(t, 8088, cfg.Server.GetRESTPort())
	assert.Equal(t, 2112, cfg.Server.GetMetricsPort())
	assert.Equal(t, 5, cfg.Migration.GetIntervalSeconds())
	assert.Equal(t, 0.1, cfg.Migration.GetProbability())
	assert.Equal(t, 1024, cfg.EventBus.GetBuffer())
}

func TestConfig_ProbabilityExplicitOff(t *testing.T) {
	cfg := Config{Migration: MigrationConfig{Probability: -1}}

	assert.Equal(t, 0.0, cfg.Migration.GetProbability(),
		"Отрицательное значение в конфиге выключает миграцию")
}

func TestConfig_EnvFallback(t *testing.T) {
	t.Setenv("WORLD_REST_PORT", "9090")

	var cfg Config
	assert.Equal(t, 9090, cfg.Server.GetRESTPort(), "ENV имеет приоритет над дефолтом")

	// Значение из конфига выигрывает у ENV
	cfg.Server.RESTPort = 7070
	assert.Equal(t, 7070, cfg.Server.GetRESTPort())
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yml")
	content := `
server:
  rest_port: 9000
  metrics_port: 9100
migration:
  interval_seconds: 2
  probability: 0.25
  seed: 42
eventbus:
  url: nats://localhost:4222
  stream: WORLD_EVENTS
  buffer: 64
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.Equal(t, 9100, cfg.Server.GetMetricsPort())
	assert.Equal(t, 2, cfg.Migration.GetIntervalSeconds())
	assert.Equal(t, 0.25, cfg.Migration.GetProbability())
	assert.Equal(t, int64(42), cfg.Migration.Seed)
	assert.Equal(t, "nats://localhost:4222", cfg.EventBus.URL)
	assert.Equal(t, 64, cfg.EventBus.GetBuffer())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/world.yml")
	assert.Error(t, err)
}

func TestLoad_NoPathNoEnv(t *testing.T) {
	t.Setenv("WORLD_CONFIG", "")

	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Nil(t, cfg, "Без пути и ENV конфиг не обязателен")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
