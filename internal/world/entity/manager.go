package entity

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

var (
	// ErrUnknownEntity - для строкового id тега нет зарегистрированной фабрики
	ErrUnknownEntity = errors.New("unknown entity id")
	// ErrUnknownTile - для id тайла нет зарегистрированной фабрики
	ErrUnknownTile = errors.New("unknown tile id")
)

// EntityFactory строит сущность из тега. id уже выделен менеджером.
type EntityFactory func(id uint64, tag chunk.Tag) (chunk.Entity, error)

// TileFactory строит тайл из тега. id уже выделен менеджером.
type TileFactory func(id uint64, tag chunk.Tag) (chunk.Tile, error)

// Manager - реестр фабрик сущностей и тайлов. Реализует chunk.Materializer
// и используется в InitChunk при загрузке колонки.
type Manager struct {
	mu        sync.RWMutex
	entities  map[string]EntityFactory // Фабрики по строковому id
	legacyIDs map[int64]string         // Числовые id старых тегов
	tiles     map[string]TileFactory
	nextID    atomic.Uint64 // Счетчик для генерации ID
}

// NewManager создаёт пустой реестр
func NewManager() *Manager {
	return &Manager{
		entities:  make(map[string]EntityFactory),
		legacyIDs: make(map[int64]string),
		tiles:     make(map[string]TileFactory),
	}
}

// NewDefaultManager регистрирует базовые типы сущностей и тайлов
func NewDefaultManager() *Manager {
	m := NewManager()

	// Животные
	m.RegisterEntity("Cow", 11, Simple(chunk.EntityTypeAnimal))
	m.RegisterEntity("Sheep", 13, Simple(chunk.EntityTypeAnimal))
	m.RegisterEntity("Chicken", 10, Simple(chunk.EntityTypeAnimal))
	m.RegisterEntity("Pig", 12, Simple(chunk.EntityTypeAnimal))

	// Монстры и NPC
	m.RegisterEntity("Zombie", 32, Simple(chunk.EntityTypeMonster))
	m.RegisterEntity("Skeleton", 34, Simple(chunk.EntityTypeMonster))
	m.RegisterEntity("Villager", 15, Simple(chunk.EntityTypeNPC))

	// Предметы и снаряды
	m.RegisterEntity("Item", 64, Simple(chunk.EntityTypeItem))
	m.RegisterEntity("XPOrb", 69, Simple(chunk.EntityTypeExperienceOrb))
	m.RegisterEntity("Arrow", 80, Simple(chunk.EntityTypeProjectile))
	m.RegisterEntity("Minecart", 84, Simple(chunk.EntityTypeVehicle))

	for _, name := range []string{"Chest", "Sign", "Furnace", "FlowerPot"} {
		m.RegisterTile(name, SimpleTile(name))
	}
	return m
}

// RegisterEntity регистрирует фабрику; legacyID != 0 связывает числовой id
// старого формата тега с тем же типом.
func (m *Manager) RegisterEntity(name string, legacyID int64, factory EntityFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[name] = factory
	if legacyID != 0 {
		m.legacyIDs[legacyID] = name
	}
}

// RegisterTile регистрирует фабрику тайла
func (m *Manager) RegisterTile(name string, factory TileFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[name] = factory
}

// NextID выделяет уникальный идентификатор объекта
func (m *Manager) NextID() uint64 {
	return m.nextID.Add(1)
}

// CreateEntity реализует chunk.Materializer. id может быть строкой или
// числом старого формата.
func (m *Manager) CreateEntity(c *chunk.Chunk, id any, tag chunk.Tag) (chunk.Entity, error) {
	m.mu.RLock()
	var (
		name    string
		factory EntityFactory
	)
	if v, ok := id.(string); ok {
		name = v
	} else if legacy, ok := tagInt(id); ok {
		name = m.legacyIDs[legacy]
	}
	factory = m.entities[name]
	m.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEntity, id)
	}
	return factory(m.NextID(), tag)
}

// CreateTile реализует chunk.Materializer
func (m *Manager) CreateTile(c *chunk.Chunk, id string, tag chunk.Tag) (chunk.Tile, error) {
	m.mu.RLock()
	factory := m.tiles[id]
	m.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTile, id)
	}
	return factory(m.NextID(), tag)
}

// Simple возвращает фабрику сущности заданного типа: позиция из Pos,
// остальные поля тега копируются в Payload.
func Simple(kind chunk.EntityType) EntityFactory {
	return func(id uint64, tag chunk.Tag) (chunk.Entity, error) {
		pos, ok := tagPos(tag["Pos"])
		if !ok {
			return nil, fmt.Errorf("entity %d: bad Pos", id)
		}
		name, _ := tag["id"].(string)
		e := NewEntity(id, kind, name, pos)
		for k, v := range tag {
			if k != "id" && k != "Pos" {
				e.Payload[k] = v
			}
		}
		return e, nil
	}
}

// SimpleTile возвращает фабрику тайла: координаты из x/y/z, прочие поля
// тега уходят в Data.
func SimpleTile(name string) TileFactory {
	return func(id uint64, tag chunk.Tag) (chunk.Tile, error) {
		var xyz [3]int
		for i, key := range []string{"x", "y", "z"} {
			v, ok := tagInt(tag[key])
			if !ok {
				return nil, fmt.Errorf("tile %s: bad %s", name, key)
			}
			xyz[i] = int(v)
		}
		t := NewTile(id, name, xyz[0], xyz[1], xyz[2])
		for k, v := range tag {
			switch k {
			case "id", "x", "y", "z":
			default:
				t.Data[k] = v
			}
		}
		return t, nil
	}
}

func tagPos(v any) ([3]float64, bool) {
	var out [3]float64
	switch pos := v.(type) {
	case []float64:
		if len(pos) < 3 {
			return out, false
		}
		copy(out[:], pos)
	case []float32:
		if len(pos) < 3 {
			return out, false
		}
		for i := range out {
			out[i] = float64(pos[i])
		}
	case []any:
		if len(pos) < 3 {
			return out, false
		}
		for i := range out {
			switch n := pos[i].(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			default:
				iv, ok := tagInt(n)
				if !ok {
					return out, false
				}
				out[i] = float64(iv)
			}
		}
	default:
		return out, false
	}
	return out, true
}

func tagInt(v any) (int64, bool) {
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
