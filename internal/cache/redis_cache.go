package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/voxel-chunk/internal/logging"
)

// RedisPayloadCache реализует PayloadCache используя Redis как Hot Cache,
// общий для нескольких узлов.
type RedisPayloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPayloadCache подключается к Redis и проверяет соединение.
func NewRedisPayloadCache(config *CacheConfig) (*RedisPayloadCache, error) {
	if config.MaxConnections == 0 {
		config.MaxConnections = 10
	}
	if config.PoolTimeout == 0 {
		config.PoolTimeout = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.RedisURL,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		PoolSize:     config.MaxConnections,
		PoolTimeout:  config.PoolTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis payload cache initialized: %s", config.RedisURL)
	return NewRedisPayloadCacheWithClient(rdb, config.TTL), nil
}

// NewRedisPayloadCacheWithClient оборачивает готовый клиент
func NewRedisPayloadCacheWithClient(client *redis.Client, ttl time.Duration) *RedisPayloadCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisPayloadCache{client: client, ttl: ttl}
}

func (r *RedisPayloadCache) Get(ctx context.Context, x, z int32) ([]byte, error) {
	val, err := r.client.Get(ctx, payloadKey(x, z)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (r *RedisPayloadCache) Set(ctx context.Context, x, z int32, payload []byte) error {
	if err := r.client.Set(ctx, payloadKey(x, z), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisPayloadCache) Invalidate(ctx context.Context, x, z int32) error {
	if err := r.client.Del(ctx, payloadKey(x, z)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisPayloadCache) Close() error {
	return r.client.Close()
}
