package gen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-chunk/internal/world/block"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

func TestGenerateChunkIsDeterministic(t *testing.T) {
	a := New(12345, nil).GenerateChunk(3, -7)
	b := New(12345, nil).GenerateChunk(3, -7)

	assert.Equal(t, a.FastSerialize(), b.FastSerialize(), "одинаковый сид даёт одинаковый чанк")

	other := New(54321, nil).GenerateChunk(3, -7)
	assert.NotEqual(t, a.FastSerialize(), other.FastSerialize(), "другой сид даёт другой рельеф")
}

func TestGenerateChunkTerrain(t *testing.T) {
	c := New(7, block.Default()).GenerateChunk(0, 0)

	assert.True(t, c.IsGenerated())
	assert.True(t, c.IsLightPopulated())
	assert.False(t, c.IsPopulated())
	assert.Equal(t, int32(0), c.X())

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			assert.Equal(t, block.BedrockBlockID, c.BlockID(x, 0, z), "бедрок в основании колонки")
			assert.GreaterOrEqual(t, c.HeightMap(x, z), MinSurface+1)
			assert.GreaterOrEqual(t, c.HighestBlockAt(x, z), WaterLevel, "ниже уровня воды пустот нет")
			assert.Equal(t, uint8(15), c.BlockSkyLight(x, chunk.MaxY, z), "небо полностью освещено")
			assert.LessOrEqual(t, c.BiomeID(x, z), BiomeForest)
		}
	}
}

func TestGeneratedChunkSurvivesFastCodec(t *testing.T) {
	src := New(99, nil).GenerateChunk(-2, 5)

	dst, err := chunk.FastDeserialize(src.FastSerialize())
	require.NoError(t, err)

	assert.Equal(t, src.HeightMapArray(), dst.HeightMapArray())
	assert.Equal(t, src.BiomeIDArray(), dst.BiomeIDArray())
	for x := 0; x < 16; x += 5 {
		for z := 0; z < 16; z += 5 {
			for y := 0; y < 100; y++ {
				require.Equal(t, src.FullBlock(x, y, z), dst.FullBlock(x, y, z))
				require.Equal(t, src.BlockSkyLight(x, y, z), dst.BlockSkyLight(x, y, z))
			}
		}
	}
}

func TestProduceHonoursContext(t *testing.T) {
	g := New(1, nil)

	c, err := g.Produce(context.Background(), 4, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(4), c.Z())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Produce(ctx, 4, 4)
	assert.ErrorIs(t, err, context.Canceled)
}
