package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsOutOfRangeSubChunkIndex(t *testing.T) {
	_, err := New(0, 0, Options{SubChunks: map[int]SubChunk{16: NewSubchunk()}})
	assert.ErrorIs(t, err, ErrInvalidSubChunkIndex)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = New(0, 0, Options{SubChunks: map[int]SubChunk{-1: NewSubchunk()}})
	assert.ErrorIs(t, err, ErrInvalidSubChunkIndex)
}

func TestNewValidatesArrays(t *testing.T) {
	_, err := New(0, 0, Options{BiomeIDs: make([]byte, 10)})
	assert.ErrorIs(t, err, ErrInvalidArgument, "биомы должны быть длиной 256")

	_, err = New(0, 0, Options{HeightMap: make([]uint16, 3)})
	assert.ErrorIs(t, err, ErrInvalidArgument, "карта высот должна быть длиной 256")
}

func TestNewDefaults(t *testing.T) {
	c := NewEmpty(3, -4)

	assert.Equal(t, int32(3), c.X())
	assert.Equal(t, int32(-4), c.Z())
	assert.Equal(t, 16, c.Height())
	assert.Equal(t, 255, c.MaxY())
	assert.Equal(t, DefaultHeightMapValue, c.HeightMap(7, 7))
	assert.Equal(t, -1, c.HighestSubChunkIndex())
	assert.False(t, c.HasChanged(), "новый чанк чистый")
	for i := 0; i < Height; i++ {
		assert.True(t, IsEmptyVariant(c.SubChunk(i)), "слот %d должен быть пустым синглтоном", i)
	}
}

func TestNewStoresEmptyContentAsSingleton(t *testing.T) {
	occupied := NewSubchunk()
	occupied.SetBlock(0, 0, 0, 1, 0)

	c, err := New(0, 0, Options{SubChunks: map[int]SubChunk{
		2: NewSubchunk(),
		5: occupied,
	}})
	require.NoError(t, err)

	assert.True(t, IsEmptyVariant(c.SubChunk(2)))
	assert.False(t, IsEmptyVariant(c.SubChunk(5)))
	assert.Equal(t, 5, c.HighestSubChunkIndex())
	assert.Equal(t, 6, c.SubChunkSendCount())
}

func TestWritePromotesEmptySubChunk(t *testing.T) {
	c := NewEmpty(0, 0)
	require.True(t, IsEmptyVariant(c.SubChunk(3)))

	c.SetBlockID(4, 3*16+7, 9, 5)

	assert.False(t, IsEmptyVariant(c.SubChunk(3)), "запись должна повысить подчанк")
	assert.Equal(t, uint8(5), c.BlockID(4, 55, 9), "значение сразу читается")
	assert.True(t, c.HasChanged())
	assert.Equal(t, 55, c.HighestBlockAt(4, 9))
}

func TestNoOpWriteLeavesChunkClean(t *testing.T) {
	c := NewEmpty(0, 0)

	assert.False(t, c.SetBlock(0, 0, 0, 0, 0), "запись воздуха в воздух ничего не меняет")
	assert.False(t, c.HasChanged(), "холостая запись не помечает чанк")

	c.SetBlockSkyLight(1, 1, 1, 0)
	assert.False(t, c.HasChanged())

	assert.True(t, c.SetFullBlock(1, 1, 1, 3<<4|2))
	assert.True(t, c.HasChanged())
	assert.Equal(t, uint8(3), c.BlockID(1, 1, 1))
	assert.Equal(t, uint8(2), c.BlockData(1, 1, 1))
}

func TestOutOfRangeYIsIgnored(t *testing.T) {
	c := NewEmpty(0, 0)

	assert.False(t, c.SetBlock(0, 256, 0, 1, 0))
	assert.False(t, c.SetBlock(0, -1, 0, 1, 0))
	c.SetBlockLight(0, 300, 0, 15)

	assert.Equal(t, uint8(0), c.BlockID(0, 256, 0))
	assert.Equal(t, uint16(0), c.FullBlock(0, -5, 0))
	assert.Equal(t, uint8(0), c.BlockLight(0, 300, 0))
	assert.Equal(t, -1, c.HighestSubChunkIndex())
	assert.False(t, c.HasChanged())
}

func TestExtraDataZeroRemovesKey(t *testing.T) {
	c := NewEmpty(0, 0)

	c.SetBlockExtraData(1, 200, 3, 0x1234)
	assert.Equal(t, uint16(0x1234), c.BlockExtraData(1, 200, 3))
	assert.Len(t, c.BlockExtraDataArray(), 1)

	c.SetBlockExtraData(1, 200, 3, 0)
	assert.Equal(t, uint16(0), c.BlockExtraData(1, 200, 3))
	assert.Empty(t, c.BlockExtraDataArray(), "ноль удаляет ключ")
	assert.True(t, c.HasChanged())
}

func TestNewSkipsZeroExtraData(t *testing.T) {
	c, err := New(0, 0, Options{ExtraData: map[uint32]uint16{
		blockKey(1, 1, 1): 0,
		blockKey(2, 2, 2): 7,
	}})
	require.NoError(t, err)

	assert.Equal(t, map[uint32]uint16{blockKey(2, 2, 2): 7}, c.BlockExtraDataArray())
}

func TestBiomeAndHeightMapArrays(t *testing.T) {
	c := NewEmpty(0, 0)

	c.SetBiomeID(3, 5, 21)
	assert.Equal(t, uint8(21), c.BiomeID(3, 5))
	assert.Equal(t, byte(21), c.BiomeIDArray()[5<<4|3], "биомы хранятся в порядке (z<<4)|x")

	c.SetHeightMap(3, 5, 70)
	assert.Equal(t, uint16(70), c.HeightMapArray()[5<<4|3])

	assert.False(t, c.SetHeightMapArray(make([]uint16, 5)))
	values := make([]uint16, ColumnArea)
	values[17] = 99
	require.True(t, c.SetHeightMapArray(values))
	assert.Equal(t, 99, c.HeightMap(1, 1))
}

func TestSetAllBlockLightFillsDownward(t *testing.T) {
	c := NewEmpty(0, 0)
	c.SetBlockID(0, 2*16, 0, 1)

	c.SetAllBlockLight(11)

	for i := 0; i <= 2; i++ {
		assert.False(t, IsEmptyVariant(c.SubChunk(i)), "подчанк %d ниже верхнего должен быть повышен", i)
	}
	assert.True(t, IsEmptyVariant(c.SubChunk(3)), "выше верхнего подчанка ничего не создаётся")
	assert.Equal(t, uint8(11), c.BlockLight(15, 0, 15))
	assert.Equal(t, uint8(11), c.BlockLight(8, 47, 3))
	assert.Equal(t, uint8(0), c.BlockLight(8, 48, 3))
}

func TestSetSubChunk(t *testing.T) {
	c := NewEmpty(0, 0)

	assert.False(t, c.SetSubChunk(16, NewSubchunk(), false))
	assert.True(t, c.SetSubChunk(4, NewSubchunk(), false))
	assert.True(t, IsEmptyVariant(c.SubChunk(4)), "пустой по содержимому подчанк заменяется синглтоном")

	assert.True(t, c.SetSubChunk(4, NewSubchunk(), true))
	assert.False(t, IsEmptyVariant(c.SubChunk(4)))

	assert.True(t, c.SetSubChunk(4, nil, true))
	assert.True(t, IsEmptyVariant(c.SubChunk(4)))
	assert.True(t, IsEmptyVariant(c.SubChunk(99)), "индекс вне диапазона читается как пустой")
}

func TestCollectGarbage(t *testing.T) {
	c := NewEmpty(0, 0)
	c.SetBlockID(0, 0, 0, 1)
	c.SetBlockID(0, 20, 0, 1)
	c.SetBlockID(0, 20, 0, 0)
	c.SetBlockData(5, 5, 5, 0)

	released := c.CollectGarbage()

	assert.Equal(t, 1, released, "подчанк 1 снова пуст")
	assert.False(t, IsEmptyVariant(c.SubChunk(0)))
	assert.True(t, IsEmptyVariant(c.SubChunk(1)))
	assert.Equal(t, uint8(1), c.BlockID(0, 0, 0), "сборка мусора не меняет данные")
	assert.Equal(t, 0, c.CollectGarbage(), "повторный вызов безопасен")
}

func TestHeightMapWritesMarkChangedOnlyOnDifference(t *testing.T) {
	c := NewEmpty(0, 0)

	c.SetHeightMap(3, 4, DefaultHeightMapValue)
	assert.False(t, c.HasChanged(), "то же значение не помечает чанк")

	c.SetHeightMap(3, 4, 70)
	assert.True(t, c.HasChanged(), "карта высот сериализуется, изменение нужно сохранить")
	assert.Equal(t, 70, c.HeightMap(3, 4))

	c.SetChanged(false)
	require.True(t, c.SetHeightMapArray(c.HeightMapArray()))
	assert.False(t, c.HasChanged(), "та же карта высот")

	values := c.HeightMapArray()
	values[0] = 12
	require.True(t, c.SetHeightMapArray(values))
	assert.True(t, c.HasChanged())
	assert.False(t, c.SetHeightMapArray(values[:10]), "неверная длина")
}

func TestSetSubChunkTypedNilIsEmpty(t *testing.T) {
	c := NewEmpty(0, 0)
	var sub *Subchunk

	assert.NotPanics(t, func() {
		assert.True(t, c.SetSubChunk(2, sub, true))
	})
	assert.True(t, IsEmptyVariant(c.SubChunk(2)), "типизированный nil заменяется синглтоном")
}
