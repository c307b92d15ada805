package chunk

// Координаты: локальные x,z в [0,16), y в [0, MaxY]. Чтение вне диапазона
// по y возвращает 0, запись вне диапазона игнорируется.

func inRangeY(y int) bool {
	return y >= 0 && y <= MaxY
}

// FullBlock возвращает (id << 4) | meta
func (c *Chunk) FullBlock(x, y, z int) uint16 {
	if !inRangeY(y) {
		return 0
	}
	i, ly := subChunkIndex(y)
	return c.subChunks[i].FullBlock(x, ly, z)
}

func (c *Chunk) BlockID(x, y, z int) uint8 {
	if !inRangeY(y) {
		return 0
	}
	i, ly := subChunkIndex(y)
	return c.subChunks[i].BlockID(x, ly, z)
}

func (c *Chunk) BlockData(x, y, z int) uint8 {
	if !inRangeY(y) {
		return 0
	}
	i, ly := subChunkIndex(y)
	return c.subChunks[i].BlockData(x, ly, z)
}

func (c *Chunk) BlockSkyLight(x, y, z int) uint8 {
	if !inRangeY(y) {
		return 0
	}
	i, ly := subChunkIndex(y)
	return c.subChunks[i].BlockSkyLight(x, ly, z)
}

func (c *Chunk) BlockLight(x, y, z int) uint8 {
	if !inRangeY(y) {
		return 0
	}
	i, ly := subChunkIndex(y)
	return c.subChunks[i].BlockLight(x, ly, z)
}

// SetBlock записывает ID и метаданные блока. Возвращает true, если
// значение изменилось; только тогда чанк помечается изменённым.
func (c *Chunk) SetBlock(x, y, z int, id, meta uint8) bool {
	if !inRangeY(y) {
		return false
	}
	i, ly := subChunkIndex(y)
	if c.promoteSubChunk(i).SetBlock(x, ly, z, id, meta) {
		c.changed = true
		return true
	}
	return false
}

// SetFullBlock записывает значение в формате (id << 4) | meta
func (c *Chunk) SetFullBlock(x, y, z int, fullBlock uint16) bool {
	return c.SetBlock(x, y, z, uint8(fullBlock>>4), uint8(fullBlock&0x0f))
}

func (c *Chunk) SetBlockID(x, y, z int, id uint8) {
	if !inRangeY(y) {
		return
	}
	i, ly := subChunkIndex(y)
	if c.promoteSubChunk(i).SetBlockID(x, ly, z, id) {
		c.changed = true
	}
}

func (c *Chunk) SetBlockData(x, y, z int, meta uint8) {
	if !inRangeY(y) {
		return
	}
	i, ly := subChunkIndex(y)
	if c.promoteSubChunk(i).SetBlockData(x, ly, z, meta) {
		c.changed = true
	}
}

func (c *Chunk) SetBlockSkyLight(x, y, z int, level uint8) {
	if !inRangeY(y) {
		return
	}
	i, ly := subChunkIndex(y)
	if c.promoteSubChunk(i).SetBlockSkyLight(x, ly, z, level) {
		c.changed = true
	}
}

func (c *Chunk) SetBlockLight(x, y, z int, level uint8) {
	if !inRangeY(y) {
		return
	}
	i, ly := subChunkIndex(y)
	if c.promoteSubChunk(i).SetBlockLight(x, ly, z, level) {
		c.changed = true
	}
}

// SetAllBlockSkyLight заполняет небесный свет одним значением во всех
// подчанках от самого верхнего занятого вниз (пустые между ними повышаются).
func (c *Chunk) SetAllBlockSkyLight(level uint8) {
	for i := c.HighestSubChunkIndex(); i >= 0; i-- {
		c.promoteSubChunk(i).fillSkyLight(level)
		c.changed = true
	}
}

// SetAllBlockLight - то же для света блоков
func (c *Chunk) SetAllBlockLight(level uint8) {
	for i := c.HighestSubChunkIndex(); i >= 0; i-- {
		c.promoteSubChunk(i).fillBlockLight(level)
		c.changed = true
	}
}

// BlockExtraData возвращает дополнительные данные блока (0 - отсутствуют)
func (c *Chunk) BlockExtraData(x, y, z int) uint16 {
	return c.extraData[blockKey(x, y, z)]
}

// SetBlockExtraData записывает дополнительные данные; 0 удаляет запись
func (c *Chunk) SetBlockExtraData(x, y, z int, data uint16) {
	key := blockKey(x, y, z)
	if data == 0 {
		delete(c.extraData, key)
	} else {
		c.extraData[key] = data
	}
	c.changed = true
}

// BlockExtraDataArray возвращает копию карты дополнительных данных
func (c *Chunk) BlockExtraDataArray() map[uint32]uint16 {
	out := make(map[uint32]uint16, len(c.extraData))
	for k, v := range c.extraData {
		out[k] = v
	}
	return out
}

func (c *Chunk) BiomeID(x, z int) uint8 {
	return c.biomeIDs[columnIndex(x, z)]
}

func (c *Chunk) SetBiomeID(x, z int, biome uint8) {
	c.biomeIDs[columnIndex(x, z)] = biome
	c.changed = true
}

// BiomeIDArray возвращает копию 256 байт биомов
func (c *Chunk) BiomeIDArray() []byte {
	out := make([]byte, ColumnArea)
	copy(out, c.biomeIDs[:])
	return out
}

// HeightMap возвращает высоту поверхности, поглощающей свет, в столбце (x,z)
func (c *Chunk) HeightMap(x, z int) int {
	return int(c.heightMap[columnIndex(x, z)])
}

// SetHeightMap помечает чанк изменённым, только если значение другое:
// карта высот входит в оба формата сериализации.
func (c *Chunk) SetHeightMap(x, z, value int) {
	i := columnIndex(x, z)
	if c.heightMap[i] != uint16(value) {
		c.heightMap[i] = uint16(value)
		c.changed = true
	}
}

// HeightMapArray возвращает копию карты высот в порядке (z<<4)|x
func (c *Chunk) HeightMapArray() []uint16 {
	out := make([]uint16, ColumnArea)
	copy(out, c.heightMap[:])
	return out
}

// SetHeightMapArray заменяет карту высот; длина должна быть 256
func (c *Chunk) SetHeightMapArray(values []uint16) bool {
	if len(values) != ColumnArea {
		return false
	}
	for i, v := range values {
		if c.heightMap[i] != v {
			c.heightMap[i] = v
			c.changed = true
		}
	}
	return true
}
