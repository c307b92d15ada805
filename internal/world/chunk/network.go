package chunk

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"

	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// NetworkSerialize строит снимок видимого состояния колонки для наблюдателя.
// Формат однонаправленный: сущности и отложенные теги не передаются.
func (c *Chunk) NetworkSerialize() ([]byte, error) {
	count := c.SubChunkSendCount()
	buf := make([]byte, 0, 1+count*networkSubChunkSize+ColumnArea*3+16)

	buf = append(buf, byte(count))
	for i := 0; i < count; i++ {
		buf = c.subChunks[i].AppendNetwork(buf)
	}

	for _, h := range c.heightMap {
		buf = binary.LittleEndian.AppendUint16(buf, h)
	}
	buf = append(buf, c.biomeIDs[:]...)

	// Граничные блоки: всегда пусто
	buf = append(buf, 0)

	buf = binary.AppendVarint(buf, int64(len(c.extraData)))
	// Ключи и тайлы по возрастанию: одинаковые колонки дают одинаковые байты
	for _, key := range slices.Sorted(maps.Keys(c.extraData)) {
		buf = binary.AppendVarint(buf, int64(key))
		buf = binary.LittleEndian.AppendUint16(buf, c.extraData[key])
	}

	for _, id := range slices.Sorted(maps.Keys(c.tiles)) {
		t := c.tiles[id]
		s, ok := t.(Spawnable)
		if !ok {
			continue
		}
		data, err := nbt.MarshalEncoding(s.SpawnCompound(), nbt.NetworkLittleEndian)
		if err != nil {
			return nil, fmt.Errorf("encode tile %d spawn compound: %w", t.ID(), err)
		}
		buf = append(buf, data...)
	}
	return buf, nil
}
