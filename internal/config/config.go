package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
// Все секции опциональны; нулевые значения заменяются дефолтами.

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Migration MigrationConfig `yaml:"migration"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type MigrationConfig struct {
	IntervalSeconds int     `yaml:"interval_seconds"`
	Probability     float64 `yaml:"probability"`
	Seed            int64   `yaml:"seed"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "WORLD_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "WORLD_METRICS_PORT", 2112)
}

// GetIntervalSeconds возвращает период миграции (по умолчанию 5 секунд)
func (m *MigrationConfig) GetIntervalSeconds() int {
	if m.IntervalSeconds > 0 {
		return m.IntervalSeconds
	}
	return 5
}

// GetProbability возвращает вероятность миграции персонажа за тик.
// Ноль в конфиге означает "не задано" и заменяется дефолтом 0.1;
// явное отключение миграции задается отрицательным значением.
func (m *MigrationConfig) GetProbability() float64 {
	if m.Probability > 0 {
		return m.Probability
	}
	if m.Probability < 0 {
		return 0
	}
	return 0.1
}

// GetBuffer возвращает размер буфера in-memory шины событий
func (e *EventBusConfig) GetBuffer() int {
	if e.Buffer > 0 {
		return e.Buffer
	}
	return 1024
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV WORLD_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLD_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
