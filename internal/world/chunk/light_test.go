package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-chunk/internal/world/block"
)

func TestOpaqueFloorHeightMapAndSkyLight(t *testing.T) {
	reg := block.NewDefaultRegistry()
	c := NewEmpty(0, 0)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := 0; y < 16; y++ {
				c.SetBlockID(x, y, z, block.StoneBlockID)
			}
		}
	}

	c.RecalculateHeightMap(reg)
	c.PopulateSkyLight(reg)

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			require.Equal(t, 16, c.HeightMap(x, z), "столбец %d,%d", x, z)
			for y := 0; y <= MaxY; y++ {
				expected := uint8(0)
				if y >= 16 {
					expected = 15
				}
				require.Equal(t, expected, c.BlockSkyLight(x, y, z), "свет в %d,%d,%d", x, y, z)
			}
		}
	}
}

func TestHeightMapColumnStopsAtFilteringBlock(t *testing.T) {
	reg := block.NewDefaultRegistry()
	c := NewEmpty(0, 0)

	c.SetBlockID(2, 5, 2, block.StoneBlockID)
	c.SetBlockID(2, 20, 2, block.GlassBlockID)
	c.SetBlockID(2, 30, 2, block.TallGrassBlockID)

	h := c.RecalculateHeightMapColumn(2, 2, reg)

	assert.Equal(t, 6, h, "стекло и трава не фильтруют свет")
	assert.Equal(t, 6, c.HeightMap(2, 2))
	for y := h; y <= MaxY; y++ {
		id := c.BlockID(2, y, 2)
		assert.False(t, reg.LightFilter(id) > 1 || reg.DiffusesSkyLight(id), "y=%d выше поверхности", y)
	}
	below := c.BlockID(2, h-1, 2)
	assert.True(t, reg.LightFilter(below) > 1 || reg.DiffusesSkyLight(below))
}

func TestHeightMapDiffusingBlock(t *testing.T) {
	reg := block.NewDefaultRegistry()
	c := NewEmpty(0, 0)
	c.SetBlockID(0, 40, 0, block.LeavesBlockID)

	assert.Equal(t, 41, c.RecalculateHeightMapColumn(0, 0, reg), "листва рассеивает небесный свет")
	assert.Equal(t, 0, c.RecalculateHeightMapColumn(1, 1, reg), "пустой столбец получает 0")
}

func TestSkyLightNeverIncreasesDownward(t *testing.T) {
	reg := block.NewDefaultRegistry()
	c := NewEmpty(0, 0)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for y := 0; y < 4; y++ {
				c.SetBlockID(x, y, z, block.StoneBlockID)
			}
			top := 4 + (x+z)%8
			for y := 4; y <= top; y++ {
				c.SetBlockID(x, y, z, block.WaterBlockID)
			}
			if x == z {
				c.SetBlockID(x, top+3, z, block.LeavesBlockID)
			}
		}
	}

	c.RecalculateHeightMap(reg)
	c.PopulateSkyLight(reg)

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			prev := c.BlockSkyLight(x, MaxY, z)
			assert.Equal(t, uint8(15), prev)
			for y := MaxY - 1; y >= 0; y-- {
				cur := c.BlockSkyLight(x, y, z)
				require.LessOrEqual(t, cur, prev, "свет растёт вниз в %d,%d,%d", x, y, z)
				prev = cur
			}
		}
	}

	// Под водой свет убывает на фильтр воды
	h := c.HeightMap(1, 0)
	assert.Equal(t, uint8(13), c.BlockSkyLight(1, h-1, 0))
}

func TestPopulateSkyLightClearsPreviousLight(t *testing.T) {
	reg := block.NewDefaultRegistry()
	c := NewEmpty(0, 0)
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			c.SetBlockID(x, 10, z, block.StoneBlockID)
		}
	}
	c.SetBlockSkyLight(0, 2, 0, 9)

	c.RecalculateHeightMap(reg)
	c.PopulateSkyLight(reg)

	assert.Equal(t, uint8(0), c.BlockSkyLight(0, 2, 0), "свет под камнем сброшен")
	assert.Equal(t, uint8(15), c.BlockSkyLight(0, 11, 0))
}

func TestRecalculateHeightMapMarksDecodedChunk(t *testing.T) {
	reg := block.NewDefaultRegistry()
	src := NewEmpty(0, 0)
	src.SetBlockID(0, 10, 0, block.StoneBlockID)
	src.SetGenerated(true)

	// Без флага света карта высот не сериализуется и остаётся по умолчанию
	c, err := FastDeserialize(src.FastSerialize())
	require.NoError(t, err)
	require.Equal(t, DefaultHeightMapValue, c.HeightMap(0, 0))
	require.False(t, c.HasChanged())

	c.RecalculateHeightMap(reg)
	assert.Equal(t, 11, c.HeightMap(0, 0))
	assert.True(t, c.HasChanged(), "пересчитанная карта высот должна быть сохранена")
}
