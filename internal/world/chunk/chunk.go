package chunk

import "fmt"

const (
	// Height - число подчанков в колонке
	Height = 16
	// MaxY - максимальная адресуемая высота блока в колонке
	MaxY = Height*16 - 1
	// DefaultHeightMapValue - значение карты высот по умолчанию
	DefaultHeightMapValue = Height * 16
)

// Tag - структурированное дерево тегов (NBT compound) в декодированном виде
type Tag = map[string]any

// BlockOracle предоставляет световые свойства блоков.
// Реализуется реестром блоков (block.Registry).
type BlockOracle interface {
	LightFilter(id uint8) uint8
	DiffusesSkyLight(id uint8) bool
}

// Chunk - вертикальная колонка мира 16x16 блоков из Height подчанков.
//
// Чанк принадлежит одному владельцу в каждый момент времени и не содержит
// внутренних блокировок. Передача между воркерами выполняется копированием
// через FastSerialize/FastDeserialize.
type Chunk struct {
	x, z int32

	subChunks [Height]SubChunk
	heightMap [ColumnArea]uint16
	biomeIDs  [ColumnArea]byte
	extraData map[uint32]uint16

	tiles    map[uint64]Tile
	tileList map[uint32]Tile
	entities map[uint64]Entity

	pendingEntityTags []Tag
	pendingTileTags   []Tag

	initialized      bool
	changed          bool
	lightPopulated   bool
	terrainGenerated bool
	terrainPopulated bool
}

// Options - исходные данные для загрузки колонки
type Options struct {
	// SubChunks - подчанки по индексу. Индекс вне [0, Height) - ошибка.
	SubChunks map[int]SubChunk
	// EntityTags и TileTags ожидают ленивой материализации в InitChunk
	EntityTags []Tag
	TileTags   []Tag
	// BiomeIDs - 256 байт или пусто (нулевые биомы)
	BiomeIDs []byte
	// HeightMap - 256 значений или пусто (DefaultHeightMapValue)
	HeightMap []uint16
	// ExtraData - ключ blockKey -> значение; нули пропускаются
	ExtraData map[uint32]uint16
}

// New создаёт колонку с координатами (x, z) сетки чанков
func New(x, z int32, opts Options) (*Chunk, error) {
	c := &Chunk{
		x:         x,
		z:         z,
		extraData: make(map[uint32]uint16),
		tiles:     make(map[uint64]Tile),
		tileList:  make(map[uint32]Tile),
		entities:  make(map[uint64]Entity),
	}
	for i := range c.subChunks {
		c.subChunks[i] = emptyInstance
	}

	for index, sub := range opts.SubChunks {
		if index < 0 || index >= Height {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSubChunkIndex, index)
		}
		if sub == nil || sub.IsEmpty() {
			continue
		}
		c.subChunks[index] = sub
	}

	switch len(opts.BiomeIDs) {
	case 0:
	case ColumnArea:
		copy(c.biomeIDs[:], opts.BiomeIDs)
	default:
		return nil, fmt.Errorf("%w: biome array length %d", ErrInvalidArgument, len(opts.BiomeIDs))
	}

	switch len(opts.HeightMap) {
	case 0:
		for i := range c.heightMap {
			c.heightMap[i] = DefaultHeightMapValue
		}
	case ColumnArea:
		copy(c.heightMap[:], opts.HeightMap)
	default:
		return nil, fmt.Errorf("%w: height map length %d", ErrInvalidArgument, len(opts.HeightMap))
	}

	for key, value := range opts.ExtraData {
		if value != 0 {
			c.extraData[key] = value
		}
	}

	c.pendingEntityTags = append([]Tag(nil), opts.EntityTags...)
	c.pendingTileTags = append([]Tag(nil), opts.TileTags...)

	return c, nil
}

// NewEmpty создаёт пустую колонку (путь генерации)
func NewEmpty(x, z int32) *Chunk {
	c, _ := New(x, z, Options{})
	return c
}

func (c *Chunk) X() int32 { return c.x }
func (c *Chunk) Z() int32 { return c.z }

// Height возвращает число подчанков в колонке
func (c *Chunk) Height() int { return Height }

// MaxY возвращает максимальную адресуемую высоту блока
func (c *Chunk) MaxY() int { return MaxY }

func (c *Chunk) HasChanged() bool        { return c.changed }
func (c *Chunk) SetChanged(changed bool) { c.changed = changed }

// IsInitialized сообщает, выполнена ли ленивая материализация (InitChunk)
func (c *Chunk) IsInitialized() bool { return c.initialized }

func (c *Chunk) IsLightPopulated() bool     { return c.lightPopulated }
func (c *Chunk) SetLightPopulated(v bool)   { c.lightPopulated = v }
func (c *Chunk) IsPopulated() bool          { return c.terrainPopulated }
func (c *Chunk) SetPopulated(v bool)        { c.terrainPopulated = v }
func (c *Chunk) IsGenerated() bool          { return c.terrainGenerated }
func (c *Chunk) SetGenerated(v bool)        { c.terrainGenerated = v }

// SubChunk возвращает подчанк по индексу; вне диапазона - пустой синглтон
func (c *Chunk) SubChunk(index int) SubChunk {
	if index < 0 || index >= Height {
		return emptyInstance
	}
	return c.subChunks[index]
}

// SubChunks возвращает копию последовательности слотов
func (c *Chunk) SubChunks() [Height]SubChunk {
	return c.subChunks
}

// SetSubChunk заменяет слот. nil (в том числе типизированный), а также пустой по содержимому подчанк
// при allowEmpty == false, заменяются синглтоном. Возвращает false для
// индекса вне диапазона.
func (c *Chunk) SetSubChunk(index int, sub SubChunk, allowEmpty bool) bool {
	if index < 0 || index >= Height {
		return false
	}
	if s, ok := sub.(*Subchunk); ok && s == nil {
		sub = nil
	}
	if sub == nil || (sub.IsEmpty() && !allowEmpty) {
		c.subChunks[index] = emptyInstance
	} else {
		c.subChunks[index] = sub
	}
	c.changed = true
	return true
}

// promoteSubChunk гарантирует, что слот index занят реальными буферами.
// Пустой синглтон заменяется новым нулевым *Subchunk. Индекс должен быть
// в диапазоне [0, Height).
func (c *Chunk) promoteSubChunk(index int) *Subchunk {
	if s, ok := c.subChunks[index].(*Subchunk); ok {
		return s
	}
	s := NewSubchunk()
	c.subChunks[index] = s
	return s
}

// HighestSubChunkIndex возвращает индекс самого верхнего занятого слота или -1
func (c *Chunk) HighestSubChunkIndex() int {
	for i := Height - 1; i >= 0; i-- {
		if !IsEmptyVariant(c.subChunks[i]) {
			return i
		}
	}
	return -1
}

// SubChunkSendCount - число подчанков, отправляемых наблюдателю
func (c *Chunk) SubChunkSendCount() int {
	return c.HighestSubChunkIndex() + 1
}

// HighestBlockAt возвращает y самого верхнего не-воздуха в столбце (x,z) или -1
func (c *Chunk) HighestBlockAt(x, z int) int {
	for i := Height - 1; i >= 0; i-- {
		if h := c.subChunks[i].HighestBlockAt(x, z); h != -1 {
			return h | i<<4
		}
	}
	return -1
}

// CollectGarbage заменяет полностью пустые подчанки синглтоном, остальные
// уплотняет. Возвращает число освобождённых подчанков.
func (c *Chunk) CollectGarbage() int {
	released := 0
	for i, sub := range c.subChunks {
		s, ok := sub.(*Subchunk)
		if !ok {
			continue
		}
		if s.IsEmpty() {
			c.subChunks[i] = emptyInstance
			released++
			continue
		}
		s.Compact()
	}
	return released
}
