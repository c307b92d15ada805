package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-chunk/internal/logging"
)

// Config корневая структура конфигурации сервера чанков.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Handoff HandoffConfig `yaml:"handoff"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	Blocks  BlocksConfig  `yaml:"blocks"`
	Worker  WorkerConfig  `yaml:"worker"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

type HandoffConfig struct {
	Transport string `yaml:"transport"` // memory | nats
	NATSURL   string `yaml:"nats_url"`
	Subject   string `yaml:"subject"`
	// Compression - уровень zstd, 0 отключает сжатие
	Compression int `yaml:"compression"`
	Buffer      int `yaml:"buffer"`
}

type CacheConfig struct {
	Backend  string        `yaml:"backend"` // memory | redis
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type BlocksConfig struct {
	// Path - YAML таблица свойств блоков; пусто - встроенная таблица
	Path string `yaml:"path"`
}

type WorkerConfig struct {
	Seed   int64 `yaml:"seed"`
	Radius int   `yaml:"radius"`
}

type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"` // Консольный уровень: trace | debug | info | warn | error
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Path: "data/chunks"},
		Handoff: HandoffConfig{Transport: "memory", NATSURL: "nats://127.0.0.1:4222", Subject: "chunks.handoff", Compression: 3, Buffer: 64},
		Cache:   CacheConfig{Backend: "memory", RedisURL: "127.0.0.1:6379", TTL: 30 * time.Second},
		Worker:  WorkerConfig{Seed: 1, Radius: 2},
		Logging: LoggingConfig{Dir: "logs", Level: "info"},
	}
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (m *MetricsConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(m.Port, "CHUNK_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", путь берётся из ENV CHUNK_CONFIG; если и он пуст,
// возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CHUNK_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет значения-перечисления
func (c *Config) Validate() error {
	switch c.Handoff.Transport {
	case "memory", "nats":
	default:
		return fmt.Errorf("unknown handoff transport %q", c.Handoff.Transport)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Handoff.Compression < 0 || c.Handoff.Compression > 22 {
		return fmt.Errorf("zstd level %d out of range", c.Handoff.Compression)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Worker.Radius < 0 {
		return fmt.Errorf("negative worker radius %d", c.Worker.Radius)
	}
	return nil
}
