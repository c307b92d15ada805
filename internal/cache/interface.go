package cache

import (
	"context"
	"fmt"
	"time"
)

// PayloadCache кэширует сетевые снимки чанков (NetworkSerialize) по
// координатам колонки.
//
// Использование:
//
//	cache := NewMemoryPayloadCache(30 * time.Second)
//	payload, err := cache.Get(ctx, x, z)
//	err = cache.Set(ctx, x, z, payload)
//	err = cache.Invalidate(ctx, x, z)
type PayloadCache interface {
	// Get возвращает снимок. Возвращает ErrCacheMiss если его нет.
	Get(ctx context.Context, x, z int32) ([]byte, error)

	// Set сохраняет снимок на время TTL кэша
	Set(ctx context.Context, x, z int32, payload []byte) error

	// Invalidate удаляет снимок
	Invalidate(ctx context.Context, x, z int32) error

	// Close закрывает соединение с кешем.
	Close() error
}

// CacheConfig содержит конфигурацию для кеша.
type CacheConfig struct {
	// Redis конфигурация
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// TTL снимка; 0 - значение по умолчанию
	TTL time.Duration `yaml:"ttl"`

	// Производительность
	MaxConnections int           `yaml:"max_connections"`
	PoolTimeout    time.Duration `yaml:"pool_timeout"`
}

// DefaultTTL - время жизни снимка по умолчанию
const DefaultTTL = 30 * time.Second

// Ошибки кеша
var (
	ErrCacheMiss   = NewCacheError("cache miss")
	ErrCacheClosed = NewCacheError("cache closed")
)

// CacheError представляет ошибку кеша.
type CacheError struct {
	Message string
}

func (e *CacheError) Error() string {
	return e.Message
}

func NewCacheError(message string) *CacheError {
	return &CacheError{Message: message}
}

func payloadKey(x, z int32) string {
	return fmt.Sprintf("chunk:payload:%d:%d", x, z)
}
