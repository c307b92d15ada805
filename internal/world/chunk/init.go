package chunk

import (
	"math"

	"github.com/annel0/voxel-chunk/internal/logging"
)

// Materializer строит живые объекты из сохранённых тегов.
// Отказ выражается возвратом nil или ошибки.
type Materializer interface {
	CreateEntity(c *Chunk, id any, tag Tag) (Entity, error)
	CreateTile(c *Chunk, id string, tag Tag) (Tile, error)
}

// InitChunk материализует отложенные теги сущностей и тайлов. Выполняется
// один раз; повторные вызовы ничего не делают. Некорректные теги
// пропускаются по одному, чанк помечается изменённым, чтобы исправленное
// состояние было сохранено.
func (c *Chunk) InitChunk(m Materializer) {
	if c.initialized {
		return
	}
	log := logging.GetChunkLogger()

	for _, tag := range c.pendingEntityTags {
		id, ok := tag["id"]
		if !ok {
			c.changed = true
			log.Warn("Чанк %d,%d: тег сущности без id пропущен", c.x, c.z)
			continue
		}
		if cx, cz, ok := entityChunkPos(tag); !ok || cx != c.x || cz != c.z {
			c.changed = true
			log.Warn("Чанк %d,%d: сущность %v из другого чанка пропущена", c.x, c.z, id)
			continue
		}
		e, err := m.CreateEntity(c, id, tag)
		if err != nil || e == nil {
			c.changed = true
			log.Warn("Чанк %d,%d: не удалось создать сущность %v: %v", c.x, c.z, id, err)
			continue
		}
		if _, indexed := c.entities[e.ID()]; !indexed {
			if err := c.AddEntity(e); err != nil {
				c.changed = true
				log.Warn("Чанк %d,%d: сущность %v не добавлена: %v", c.x, c.z, id, err)
			}
		}
	}

	for _, tag := range c.pendingTileTags {
		id, ok := tag["id"].(string)
		if !ok || id == "" {
			c.changed = true
			log.Warn("Чанк %d,%d: тег тайла без id пропущен", c.x, c.z)
			continue
		}
		tx, okX := intTag(tag["x"])
		tz, okZ := intTag(tag["z"])
		if !okX || !okZ || int32(tx>>4) != c.x || int32(tz>>4) != c.z {
			c.changed = true
			log.Warn("Чанк %d,%d: тайл %s из другого чанка пропущен", c.x, c.z, id)
			continue
		}
		t, err := m.CreateTile(c, id, tag)
		if err != nil || t == nil {
			c.changed = true
			log.Warn("Чанк %d,%d: не удалось создать тайл %s: %v", c.x, c.z, id, err)
			continue
		}
		if _, indexed := c.tiles[t.ID()]; !indexed {
			if err := c.AddTile(t); err != nil {
				c.changed = true
				log.Warn("Чанк %d,%d: тайл %s не добавлен: %v", c.x, c.z, id, err)
			}
		}
	}

	c.pendingEntityTags = nil
	c.pendingTileTags = nil
	c.initialized = true
}

// entityChunkPos извлекает координаты чанка из списка Pos [x, y, z]
func entityChunkPos(tag Tag) (int32, int32, bool) {
	var x, z float64
	switch pos := tag["Pos"].(type) {
	case []any:
		if len(pos) < 3 {
			return 0, 0, false
		}
		var okX, okZ bool
		if x, okX = floatTag(pos[0]); !okX {
			return 0, 0, false
		}
		if z, okZ = floatTag(pos[2]); !okZ {
			return 0, 0, false
		}
	case []float64:
		if len(pos) < 3 {
			return 0, 0, false
		}
		x, z = pos[0], pos[2]
	case []float32:
		if len(pos) < 3 {
			return 0, 0, false
		}
		x, z = float64(pos[0]), float64(pos[2])
	default:
		return 0, 0, false
	}
	return int32(int64(math.Floor(x)) >> 4), int32(int64(math.Floor(z)) >> 4), true
}

func floatTag(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	if i, ok := intTag(v); ok {
		return float64(i), true
	}
	return 0, false
}

func intTag(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	}
	return 0, false
}
