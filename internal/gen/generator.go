package gen

import (
	"context"
	"math/rand"

	"github.com/annel0/voxel-chunk/internal/world/block"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

// Идентификаторы биомов в том виде, в котором их ждёт клиент
const (
	BiomeOcean     uint8 = 0
	BiomePlains    uint8 = 1
	BiomeDesert    uint8 = 2
	BiomeMountains uint8 = 3
	BiomeForest    uint8 = 4
)

// Константы высот для генерации
const (
	WaterLevel  = 62
	MinSurface  = 40
	SurfaceSpan = 56 // Разброс высоты поверхности над MinSurface
	MountainY   = 84 // Выше - каменистые горы
)

// Generator генерирует демонстрационный ландшафт для воркера генерации.
// Генерация детерминирована по сиду и координатам чанка.
type Generator struct {
	Seed          int64
	NoiseScale    float64 // Масштаб основного шума (высота)
	BiomeScale    float64 // Масштаб шума биомов
	ForestDensity float64 // Плотность деревьев в лесу (от 0 до 1)

	oracle chunk.BlockOracle
	height *noise
	biomes *noise
}

// New создаёт генератор. oracle - источник световых свойств блоков для
// расчёта карты высот и небесного света.
func New(seed int64, oracle chunk.BlockOracle) *Generator {
	if oracle == nil {
		oracle = block.Default()
	}
	return &Generator{
		Seed:          seed,
		NoiseScale:    0.02,
		BiomeScale:    0.005,
		ForestDensity: 0.08,
		oracle:        oracle,
		height:        newNoise(seed),
		biomes:        newNoise(seed + 42),
	}
}

// Produce реализует handoff.Producer
func (g *Generator) Produce(ctx context.Context, x, z int32) (*chunk.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.GenerateChunk(x, z), nil
}

// GenerateChunk генерирует колонку: рельеф, воду, растительность, биомы,
// затем карту высот и небесный свет.
func (g *Generator) GenerateChunk(cx, cz int32) *chunk.Chunk {
	c := chunk.NewEmpty(cx, cz)

	// Уникальный сид на основе глобального сида и координат
	chunkSeed := g.Seed + int64(cx)*341873128712 + int64(cz)*132897987541
	rng := rand.New(rand.NewSource(chunkSeed))

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			wx := float64(int64(cx)<<4 + int64(x))
			wz := float64(int64(cz)<<4 + int64(z))

			surface := MinSurface + int(g.height.at(wx*g.NoiseScale, wz*g.NoiseScale)*SurfaceSpan)
			biome := g.biomeAt(surface, g.biomes.at(wx*g.BiomeScale, wz*g.BiomeScale))
			c.SetBiomeID(x, z, biome)

			g.fillColumn(c, x, z, surface, biome)
			g.decorate(c, x, z, surface, biome, rng)
		}
	}

	c.SetGenerated(true)
	c.RecalculateHeightMap(g.oracle)
	c.PopulateSkyLight(g.oracle)
	c.SetLightPopulated(true)
	return c
}

func (g *Generator) biomeAt(surface int, value float64) uint8 {
	switch {
	case surface < WaterLevel-2:
		return BiomeOcean
	case surface >= MountainY:
		return BiomeMountains
	case value < 0.35:
		return BiomeDesert
	case value > 0.65:
		return BiomeForest
	default:
		return BiomePlains
	}
}

func (g *Generator) fillColumn(c *chunk.Chunk, x, z, surface int, biome uint8) {
	top, filler := block.GrassBlockID, block.DirtBlockID
	switch biome {
	case BiomeDesert:
		top, filler = block.SandBlockID, block.SandBlockID
	case BiomeMountains:
		top, filler = block.StoneBlockID, block.StoneBlockID
	case BiomeOcean:
		top, filler = block.GravelBlockID, block.DirtBlockID
	}

	c.SetBlockID(x, 0, z, block.BedrockBlockID)
	for y := 1; y <= surface; y++ {
		switch {
		case y < surface-3:
			c.SetBlockID(x, y, z, block.StoneBlockID)
		case y < surface:
			c.SetBlockID(x, y, z, filler)
		default:
			c.SetBlockID(x, y, z, top)
		}
	}
	for y := surface + 1; y <= WaterLevel; y++ {
		c.SetBlockID(x, y, z, block.WaterBlockID)
	}
}

func (g *Generator) decorate(c *chunk.Chunk, x, z, surface int, biome uint8, rng *rand.Rand) {
	if surface < WaterLevel {
		return
	}
	roll := rng.Float64()
	switch biome {
	case BiomeForest:
		if roll < g.ForestDensity && x > 0 && x < 15 && z > 0 && z < 15 {
			g.placeTree(c, x, surface+1, z, 3+rng.Intn(3))
		}
	case BiomePlains:
		if roll < 0.1 {
			c.SetBlockID(x, surface+1, z, block.TallGrassBlockID)
		} else if roll < 0.12 {
			c.SetBlockID(x, surface+1, z, block.FlowerBlockID)
		}
	case BiomeDesert:
		if roll < 0.02 {
			for y := 1; y <= 1+rng.Intn(3); y++ {
				c.SetBlockID(x, surface+y, z, block.CactusBlockID)
			}
		}
	}
}

// placeTree ставит ствол и крону 3x3; крона занимает только воздух
func (g *Generator) placeTree(c *chunk.Chunk, x, base, z, height int) {
	for y := base; y < base+height; y++ {
		c.SetBlockID(x, y, z, block.LogBlockID)
	}
	top := base + height
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			for y := top - 1; y <= top; y++ {
				if c.BlockID(x+dx, y, z+dz) == block.AirBlockID {
					c.SetBlockID(x+dx, y, z+dz, block.LeavesBlockID)
				}
			}
		}
	}
}
