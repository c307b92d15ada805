package chunk

// RecalculateHeightMap пересчитывает карту высот для всех 256 столбцов
func (c *Chunk) RecalculateHeightMap(oracle BlockOracle) {
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			c.RecalculateHeightMapColumn(x, z, oracle)
		}
	}
}

// RecalculateHeightMapColumn находит первую сверху поверхность, которая
// фильтрует свет (filter > 1) или рассеивает небесный свет, и сохраняет
// её высоту + 1. Колонка из одного воздуха получает 0.
func (c *Chunk) RecalculateHeightMapColumn(x, z int, oracle BlockOracle) int {
	y := c.HighestBlockAt(x, z)
	for ; y >= 0; y-- {
		id := c.BlockID(x, y, z)
		if oracle.LightFilter(id) > 1 || oracle.DiffusesSkyLight(id) {
			break
		}
	}
	c.SetHeightMap(x, z, y+1)
	return y + 1
}

// PopulateSkyLight заполняет небесный свет сверху вниз по каждому столбцу.
// Выше карты высот свет 15, ниже он убывает на фильтр каждого блока до нуля.
//
// Известное ограничение: горизонтальное распространение света из соседних
// столбцов и чанков не учитывается.
func (c *Chunk) PopulateSkyLight(oracle BlockOracle) {
	c.SetAllBlockSkyLight(0)

	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			heightMap := c.HeightMap(x, z)

			y := MaxY
			for ; y >= heightMap; y-- {
				c.SetBlockSkyLight(x, y, z, 15)
			}

			light := 15
			for ; y >= 0; y-- {
				light -= int(oracle.LightFilter(c.BlockID(x, y, z)))
				if light <= 0 {
					break
				}
				c.SetBlockSkyLight(x, y, z, uint8(light))
			}
		}
	}
}
