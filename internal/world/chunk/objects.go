package chunk

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeNPC
	EntityTypeMonster
	EntityTypeItem
	EntityTypeProjectile
	EntityTypeAnimal
	EntityTypeVehicle

	// EntityTypeExperienceOrb допускается к добавлению даже закрытой:
	// орбы закрываются при слиянии раньше, чем чанк успевает их принять.
	EntityTypeExperienceOrb
)

// Entity - ссылка на сущность, принадлежащую миру. Чанк только индексирует
// сущности и не управляет их жизненным циклом, кроме OnUnload.
type Entity interface {
	ID() uint64
	Type() EntityType
	IsClosed() bool
	Close()
	// CanSaveWithChunk сообщает, сохраняется ли сущность вместе с чанком
	CanSaveWithChunk() bool
}

// Tile - блочная сущность, привязанная к позиции внутри колонки
type Tile interface {
	ID() uint64
	// Position возвращает координаты блока в мире
	Position() (x, y, z int)
	IsClosed() bool
	Close()
}

// Spawnable - тайл, чьё видимое состояние отправляется наблюдателям
type Spawnable interface {
	Tile
	SpawnCompound() map[string]any
}

// AddEntity индексирует сущность в чанке
func (c *Chunk) AddEntity(e Entity) error {
	if e.IsClosed() && e.Type() != EntityTypeExperienceOrb {
		return ErrClosedEntity
	}
	c.entities[e.ID()] = e
	if e.Type() != EntityTypePlayer && c.initialized {
		c.changed = true
	}
	return nil
}

// RemoveEntity удаляет сущность из индекса, не закрывая её
func (c *Chunk) RemoveEntity(e Entity) {
	delete(c.entities, e.ID())
	if e.Type() != EntityTypePlayer && c.initialized {
		c.changed = true
	}
}

// AddTile индексирует тайл. Тайл, уже занимающий ту же позицию, закрывается
// и удаляется из обоих индексов.
func (c *Chunk) AddTile(t Tile) error {
	if t.IsClosed() {
		return ErrClosedTile
	}
	key := tileKey(t)
	if old, ok := c.tileList[key]; ok && old != t {
		delete(c.tiles, old.ID())
		delete(c.tileList, key)
		old.Close()
	}
	c.tiles[t.ID()] = t
	c.tileList[key] = t
	if c.initialized {
		c.changed = true
	}
	return nil
}

// RemoveTile удаляет тайл из обоих индексов, не закрывая его
func (c *Chunk) RemoveTile(t Tile) {
	delete(c.tiles, t.ID())
	key := tileKey(t)
	if cur, ok := c.tileList[key]; ok && cur == t {
		delete(c.tileList, key)
	}
	if c.initialized {
		c.changed = true
	}
}

func tileKey(t Tile) uint32 {
	x, y, z := t.Position()
	return blockKey(x, y, z)
}

// Entities возвращает снимок индекса сущностей
func (c *Chunk) Entities() map[uint64]Entity {
	out := make(map[uint64]Entity, len(c.entities))
	for id, e := range c.entities {
		out[id] = e
	}
	return out
}

// SavableEntities возвращает сущности, которые сохраняются вместе с чанком
func (c *Chunk) SavableEntities() []Entity {
	var out []Entity
	for _, e := range c.entities {
		if e.Type() != EntityTypePlayer && e.CanSaveWithChunk() && !e.IsClosed() {
			out = append(out, e)
		}
	}
	return out
}

// Tiles возвращает снимок индекса тайлов
func (c *Chunk) Tiles() map[uint64]Tile {
	out := make(map[uint64]Tile, len(c.tiles))
	for id, t := range c.tiles {
		out[id] = t
	}
	return out
}

// Tile возвращает тайл в локальной позиции или nil
func (c *Chunk) Tile(x, y, z int) Tile {
	return c.tileList[blockKey(x, y, z)]
}

func (c *Chunk) PendingEntityTags() []Tag { return c.pendingEntityTags }
func (c *Chunk) PendingTileTags() []Tag   { return c.pendingTileTags }

// OnUnload закрывает все сущности кроме игроков и все тайлы.
// Игроки остаются в индексе: их выгрузкой управляет сессия.
func (c *Chunk) OnUnload() {
	for id, e := range c.entities {
		if e.Type() == EntityTypePlayer {
			continue
		}
		delete(c.entities, id)
		e.Close()
	}
	for id, t := range c.tiles {
		delete(c.tiles, id)
		t.Close()
	}
	clear(c.tileList)
}
