package chunk

import "fmt"

// SubChunk - объём 16x16x16 блоков внутри колонки. Ровно два варианта:
// *Subchunk (занятый, с реальными буферами) и пустой синглтон EmptySubChunk().
// Пустой вариант не имеет методов записи: запись требует явного
// повышения слота колонки до *Subchunk (см. Chunk.promoteSubChunk).
type SubChunk interface {
	// IsEmpty сообщает, что подчанк неотличим от пустого (все буферы нулевые)
	IsEmpty() bool

	BlockID(x, y, z int) uint8
	BlockData(x, y, z int) uint8
	FullBlock(x, y, z int) uint16
	BlockSkyLight(x, y, z int) uint8
	BlockLight(x, y, z int) uint8

	// HighestBlockAt возвращает локальный y самого верхнего не-воздуха или -1
	HighestBlockAt(x, z int) int

	// Копии сырых буферов
	BlockIDArray() []byte
	BlockDataArray() []byte
	BlockSkyLightArray() []byte
	BlockLightArray() []byte

	// AppendNetwork дописывает сетевое представление подчанка
	AppendNetwork(dst []byte) []byte

	sealed()
}

// networkSubChunkSize - размер сетевого представления одного подчанка
const networkSubChunkSize = 1 + SubChunkVolume + 3*NibbleArraySize

// Версия сетевого формата подчанка
const subChunkNetworkVersion = 0

type emptySubChunk struct{}

var emptyInstance SubChunk = emptySubChunk{}

// EmptySubChunk возвращает общий неизменяемый пустой подчанк
func EmptySubChunk() SubChunk {
	return emptyInstance
}

// IsEmptyVariant сообщает, что слот занят пустым синглтоном
func IsEmptyVariant(s SubChunk) bool {
	_, ok := s.(emptySubChunk)
	return ok
}

func (emptySubChunk) IsEmpty() bool                   { return true }
func (emptySubChunk) BlockID(x, y, z int) uint8       { return 0 }
func (emptySubChunk) BlockData(x, y, z int) uint8     { return 0 }
func (emptySubChunk) FullBlock(x, y, z int) uint16    { return 0 }
func (emptySubChunk) BlockSkyLight(x, y, z int) uint8 { return 0 }
func (emptySubChunk) BlockLight(x, y, z int) uint8    { return 0 }
func (emptySubChunk) HighestBlockAt(x, z int) int     { return -1 }
func (emptySubChunk) BlockIDArray() []byte            { return make([]byte, SubChunkVolume) }
func (emptySubChunk) BlockDataArray() []byte          { return make([]byte, NibbleArraySize) }
func (emptySubChunk) BlockSkyLightArray() []byte      { return make([]byte, NibbleArraySize) }
func (emptySubChunk) BlockLightArray() []byte         { return make([]byte, NibbleArraySize) }
func (emptySubChunk) sealed()                         {}

func (emptySubChunk) AppendNetwork(dst []byte) []byte {
	dst = append(dst, subChunkNetworkVersion)
	return append(dst, make([]byte, networkSubChunkSize-1)...)
}

// Subchunk - занятый подчанк. Буферы метаданных и света, которые целиком
// нулевые, могут не храниться (nil); на чтение это не влияет.
type Subchunk struct {
	ids        [SubChunkVolume]byte
	data       *nibbleArray
	skyLight   *nibbleArray
	blockLight *nibbleArray
}

// NewSubchunk создаёт занятый подчанк с нулевыми буферами
func NewSubchunk() *Subchunk {
	return &Subchunk{}
}

// NewSubchunkFromArrays собирает подчанк из сырых буферов. ids должен
// иметь длину 4096, data - 2048; skyLight и blockLight либо пустые
// (нулевой свет), либо длиной 2048.
func NewSubchunkFromArrays(ids, data, skyLight, blockLight []byte) (*Subchunk, error) {
	if len(ids) != SubChunkVolume {
		return nil, fmt.Errorf("%w: block id array length %d", ErrInvalidArgument, len(ids))
	}
	s := &Subchunk{}
	copy(s.ids[:], ids)

	if len(data) != NibbleArraySize {
		return nil, fmt.Errorf("%w: block data array length %d", ErrInvalidArgument, len(data))
	}

	var err error
	if s.data, err = nibbleFromBytes(data, "block data"); err != nil {
		return nil, err
	}
	if s.skyLight, err = nibbleFromBytes(skyLight, "sky light"); err != nil {
		return nil, err
	}
	if s.blockLight, err = nibbleFromBytes(blockLight, "block light"); err != nil {
		return nil, err
	}
	return s, nil
}

func nibbleFromBytes(b []byte, name string) (*nibbleArray, error) {
	switch len(b) {
	case 0:
		return nil, nil
	case NibbleArraySize:
		if isZero(b) {
			return nil, nil
		}
		arr := new(nibbleArray)
		copy(arr[:], b)
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: %s array length %d", ErrInvalidArgument, name, len(b))
	}
}

func (s *Subchunk) sealed() {}

// IsEmpty сообщает, что все ID, метаданные и свет нулевые
func (s *Subchunk) IsEmpty() bool {
	return isZero(s.ids[:]) && nibblesZero(s.data) && nibblesZero(s.skyLight) && nibblesZero(s.blockLight)
}

func nibblesZero(arr *nibbleArray) bool {
	return arr == nil || isZero(arr[:])
}

func (s *Subchunk) BlockID(x, y, z int) uint8 {
	return s.ids[cellIndex(x, y, z)]
}

func (s *Subchunk) BlockData(x, y, z int) uint8 {
	return getNibble(s.data, cellIndex(x, y, z))
}

// FullBlock возвращает (id << 4) | meta
func (s *Subchunk) FullBlock(x, y, z int) uint16 {
	i := cellIndex(x, y, z)
	return uint16(s.ids[i])<<4 | uint16(getNibble(s.data, i))
}

func (s *Subchunk) BlockSkyLight(x, y, z int) uint8 {
	return getNibble(s.skyLight, cellIndex(x, y, z))
}

func (s *Subchunk) BlockLight(x, y, z int) uint8 {
	return getNibble(s.blockLight, cellIndex(x, y, z))
}

// SetBlock записывает ID и метаданные. Возвращает true, если что-то изменилось.
func (s *Subchunk) SetBlock(x, y, z int, id, meta uint8) bool {
	i := cellIndex(x, y, z)
	changed := false
	if s.ids[i] != id {
		s.ids[i] = id
		changed = true
	}
	if writeNibble(&s.data, i, meta) {
		changed = true
	}
	return changed
}

func (s *Subchunk) SetBlockID(x, y, z int, id uint8) bool {
	i := cellIndex(x, y, z)
	if s.ids[i] == id {
		return false
	}
	s.ids[i] = id
	return true
}

func (s *Subchunk) SetBlockData(x, y, z int, meta uint8) bool {
	return writeNibble(&s.data, cellIndex(x, y, z), meta)
}

func (s *Subchunk) SetBlockSkyLight(x, y, z int, level uint8) bool {
	return writeNibble(&s.skyLight, cellIndex(x, y, z), level)
}

func (s *Subchunk) SetBlockLight(x, y, z int, level uint8) bool {
	return writeNibble(&s.blockLight, cellIndex(x, y, z), level)
}

// writeNibble выделяет буфер лениво: запись нуля в отсутствующий буфер ничего не меняет
func writeNibble(arr **nibbleArray, i int, v uint8) bool {
	if *arr == nil {
		if v&0x0f == 0 {
			return false
		}
		*arr = new(nibbleArray)
	}
	return setNibble(*arr, i, v)
}

// HighestBlockAt сканирует столбец (x,z) сверху вниз
func (s *Subchunk) HighestBlockAt(x, z int) int {
	base := (x&0xf)<<8 | (z&0xf)<<4
	for y := 15; y >= 0; y-- {
		if s.ids[base|y] != 0 {
			return y
		}
	}
	return -1
}

func (s *Subchunk) BlockIDArray() []byte {
	out := make([]byte, SubChunkVolume)
	copy(out, s.ids[:])
	return out
}

func (s *Subchunk) BlockDataArray() []byte     { return nibbleCopy(s.data) }
func (s *Subchunk) BlockSkyLightArray() []byte { return nibbleCopy(s.skyLight) }
func (s *Subchunk) BlockLightArray() []byte    { return nibbleCopy(s.blockLight) }

func nibbleCopy(arr *nibbleArray) []byte {
	out := make([]byte, NibbleArraySize)
	if arr != nil {
		copy(out, arr[:])
	}
	return out
}

// SetBlockSkyLightArray заменяет весь буфер небесного света
func (s *Subchunk) SetBlockSkyLightArray(b []byte) error {
	arr, err := nibbleFromBytes(b, "sky light")
	if err != nil {
		return err
	}
	s.skyLight = arr
	return nil
}

// SetBlockLightArray заменяет весь буфер света блоков
func (s *Subchunk) SetBlockLightArray(b []byte) error {
	arr, err := nibbleFromBytes(b, "block light")
	if err != nil {
		return err
	}
	s.blockLight = arr
	return nil
}

// fillSkyLight и fillBlockLight заполняют буфер одним значением (оба полубайта)
func (s *Subchunk) fillSkyLight(level uint8) {
	s.skyLight = filledNibbles(level)
}

func (s *Subchunk) fillBlockLight(level uint8) {
	s.blockLight = filledNibbles(level)
}

func filledNibbles(level uint8) *nibbleArray {
	b := fillByte(level)
	if b == 0 {
		return nil
	}
	arr := new(nibbleArray)
	for i := range arr {
		arr[i] = b
	}
	return arr
}

// AppendNetwork: версия, ID, метаданные, небесный свет, свет блоков
func (s *Subchunk) AppendNetwork(dst []byte) []byte {
	dst = append(dst, subChunkNetworkVersion)
	dst = append(dst, s.ids[:]...)
	dst = appendNibbles(dst, s.data)
	dst = appendNibbles(dst, s.skyLight)
	return appendNibbles(dst, s.blockLight)
}

// appendRaw пишет буферы для быстрого кодека
func (s *Subchunk) appendRaw(dst []byte, withLight bool) []byte {
	dst = append(dst, s.ids[:]...)
	dst = appendNibbles(dst, s.data)
	if withLight {
		dst = appendNibbles(dst, s.skyLight)
		dst = appendNibbles(dst, s.blockLight)
	}
	return dst
}

// Compact освобождает полностью нулевые буферы полубайтов
func (s *Subchunk) Compact() {
	if s.data != nil && isZero(s.data[:]) {
		s.data = nil
	}
	if s.skyLight != nil && isZero(s.skyLight[:]) {
		s.skyLight = nil
	}
	if s.blockLight != nil && isZero(s.blockLight[:]) {
		s.blockLight = nil
	}
}
