package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/voxel-chunk/internal/logging"
	"github.com/annel0/voxel-chunk/internal/metrics"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

// Snapshotter выдаёт сетевые снимки чанков через кэш.
//
// Пока чанк помечен изменённым, снимок каждый раз строится заново и
// перезаписывается в кэше. Владелец чанка обязан запросить снимок до
// сброса флага (SaveChunk) или вызвать Invalidate после правок.
type Snapshotter struct {
	Cache   PayloadCache
	Metrics *metrics.CodecMetrics
}

// Payload - Snapshotter без метрик
func Payload(ctx context.Context, cache PayloadCache, c *chunk.Chunk) ([]byte, error) {
	return (&Snapshotter{Cache: cache}).Payload(ctx, c)
}

func (s *Snapshotter) Payload(ctx context.Context, c *chunk.Chunk) ([]byte, error) {
	if !c.HasChanged() {
		payload, err := s.Cache.Get(ctx, c.X(), c.Z())
		if err == nil {
			s.Metrics.ObserveCache(true)
			return payload, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			logging.Warn("Кэш снимков недоступен для %d,%d: %v", c.X(), c.Z(), err)
		}
	}
	s.Metrics.ObserveCache(false)

	payload, err := c.NetworkSerialize()
	if err != nil {
		return nil, fmt.Errorf("network serialize %d,%d: %w", c.X(), c.Z(), err)
	}
	s.Metrics.ObserveEncode(metrics.CodecNetwork, len(payload))

	if err := s.Cache.Set(ctx, c.X(), c.Z(), payload); err != nil {
		logging.Warn("Не удалось сохранить снимок %d,%d в кэш: %v", c.X(), c.Z(), err)
	}
	return payload, nil
}
