package entity

import (
	"sync/atomic"

	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

// Entity представляет базовую сущность, восстановленную из тега чанка
type Entity struct {
	id      uint64
	kind    chunk.EntityType
	Name    string         // Строковый идентификатор из тега ("Cow", "Item", ...)
	Pos     [3]float64     // Точная позиция в мире
	Payload map[string]any // Остальные поля тега без изменений
	closed  atomic.Bool
}

// NewEntity создаёт новую сущность
func NewEntity(id uint64, kind chunk.EntityType, name string, pos [3]float64) *Entity {
	return &Entity{
		id:      id,
		kind:    kind,
		Name:    name,
		Pos:     pos,
		Payload: make(map[string]any),
	}
}

func (e *Entity) ID() uint64             { return e.id }
func (e *Entity) Type() chunk.EntityType { return e.kind }
func (e *Entity) IsClosed() bool         { return e.closed.Load() }
func (e *Entity) Close()                 { e.closed.Store(true) }

// CanSaveWithChunk: игроки хранятся отдельно от чанков
func (e *Entity) CanSaveWithChunk() bool {
	return e.kind != chunk.EntityTypePlayer
}

// Tile - блочная сущность (сундук, табличка). Видимое состояние хранится
// в Data и целиком уходит наблюдателям.
type Tile struct {
	id      uint64
	Name    string
	X, Y, Z int
	Data    map[string]any
	closed  atomic.Bool
}

// NewTile создаёт тайл в мировых координатах блока
func NewTile(id uint64, name string, x, y, z int) *Tile {
	return &Tile{id: id, Name: name, X: x, Y: y, Z: z, Data: make(map[string]any)}
}

func (t *Tile) ID() uint64              { return t.id }
func (t *Tile) Position() (x, y, z int) { return t.X, t.Y, t.Z }
func (t *Tile) IsClosed() bool          { return t.closed.Load() }
func (t *Tile) Close()                  { t.closed.Store(true) }

// SpawnCompound возвращает тег для отправки клиенту: id, координаты и Data
func (t *Tile) SpawnCompound() map[string]any {
	out := make(map[string]any, len(t.Data)+4)
	for k, v := range t.Data {
		out[k] = v
	}
	out["id"] = t.Name
	out["x"] = int32(t.X)
	out["y"] = int32(t.Y)
	out["z"] = int32(t.Z)
	return out
}
