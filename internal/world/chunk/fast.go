package chunk

import (
	"encoding/binary"
	"fmt"
)

// Биты байта флагов быстрого кодека
const (
	flagGenerated      = 1 << 0
	flagPopulated      = 1 << 1
	flagLightPopulated = 1 << 2

	knownFlags = flagGenerated | flagPopulated | flagLightPopulated
)

// FastSerialize кодирует блоки, свет, биомы и карту высот для передачи
// колонки между воркерами. Сущности, тайлы и extra data не включаются.
func (c *Chunk) FastSerialize() []byte {
	var flags byte
	if c.lightPopulated {
		flags |= flagLightPopulated
	}
	if c.terrainPopulated {
		flags |= flagPopulated
	}
	if c.terrainGenerated {
		flags |= flagGenerated
	}

	buf := make([]byte, 0, 9)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.x))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.z))
	buf = append(buf, flags)
	if !c.terrainGenerated {
		return buf
	}

	var units []int
	for i, sub := range c.subChunks {
		if !sub.IsEmpty() {
			units = append(units, i)
		}
	}

	unitSize := SubChunkVolume + NibbleArraySize
	if c.lightPopulated {
		unitSize += 2 * NibbleArraySize
	}
	out := make([]byte, 0, len(buf)+1+len(units)*(1+unitSize)+ColumnArea*3)
	out = append(out, buf...)
	out = append(out, byte(len(units)))
	for _, i := range units {
		out = append(out, byte(i))
		out = c.subChunks[i].(*Subchunk).appendRaw(out, c.lightPopulated)
	}

	out = append(out, c.biomeIDs[:]...)
	if c.lightPopulated {
		for _, h := range c.heightMap {
			out = binary.LittleEndian.AppendUint16(out, h)
		}
	}
	return out
}

// FastDeserialize восстанавливает колонку из FastSerialize. Любые
// усечённые, лишние или противоречивые данные дают ErrMalformedPayload.
// Восстановленная колонка считается чистой (HasChanged() == false).
func FastDeserialize(data []byte) (*Chunk, error) {
	r := &fastReader{data: data}

	x := int32(r.readUint32())
	z := int32(r.readUint32())
	flags := r.readByte()
	if r.err != nil {
		return nil, r.err
	}
	if flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: unknown flag bits %#x", ErrMalformedPayload, flags)
	}

	c := NewEmpty(x, z)
	c.terrainGenerated = flags&flagGenerated != 0
	c.terrainPopulated = flags&flagPopulated != 0
	c.lightPopulated = flags&flagLightPopulated != 0

	if c.terrainGenerated {
		if err := c.readUnits(r); err != nil {
			return nil, err
		}
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	c.changed = false
	return c, nil
}

func (c *Chunk) readUnits(r *fastReader) error {
	count := int(r.readByte())
	if r.err != nil {
		return r.err
	}
	if count > Height {
		return fmt.Errorf("%w: %d subchunks at offset %d", ErrMalformedPayload, count, r.off-1)
	}

	var seen [Height]bool
	for n := 0; n < count; n++ {
		index := int(r.readByte())
		if r.err != nil {
			return r.err
		}
		if index >= Height || seen[index] {
			return fmt.Errorf("%w: bad subchunk index %d at offset %d", ErrMalformedPayload, index, r.off-1)
		}
		seen[index] = true

		ids := r.read(SubChunkVolume)
		meta := r.read(NibbleArraySize)
		var sky, light []byte
		if c.lightPopulated {
			sky = r.read(NibbleArraySize)
			light = r.read(NibbleArraySize)
		}
		if r.err != nil {
			return r.err
		}
		sub, err := NewSubchunkFromArrays(ids, meta, sky, light)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		c.subChunks[index] = sub
	}

	copy(c.biomeIDs[:], r.read(ColumnArea))
	if c.lightPopulated {
		raw := r.read(ColumnArea * 2)
		if r.err == nil {
			for i := range c.heightMap {
				c.heightMap[i] = binary.LittleEndian.Uint16(raw[i*2:])
			}
		}
	}
	return r.err
}

// fastReader читает последовательно и запоминает первую ошибку
type fastReader struct {
	data []byte
	off  int
	err  error
}

func (r *fastReader) read(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.off < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrMalformedPayload, n, r.off, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *fastReader) readByte() byte {
	b := r.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *fastReader) readUint32() uint32 {
	b := r.read(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *fastReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.data) {
		return fmt.Errorf("%w: %d trailing bytes at offset %d", ErrMalformedPayload, len(r.data)-r.off, r.off)
	}
	return nil
}
