package chunk

// Размеры буферов подчанка
const (
	SubChunkVolume  = 16 * 16 * 16      // ячеек в подчанке, один байт ID на ячейку
	NibbleArraySize = SubChunkVolume / 2 // 4 бита на ячейку
	ColumnArea      = 16 * 16            // ячеек в плане колонки
)

// nibbleArray - упакованный массив 4-битных значений, две ячейки на байт.
// Чётный индекс ячейки хранится в младшем полубайте, нечётный - в старшем.
type nibbleArray [NibbleArraySize]byte

// cellIndex - индекс ячейки внутри подчанка: (x<<8)|(z<<4)|y
func cellIndex(x, y, z int) int {
	return (x&0xf)<<8 | (z&0xf)<<4 | (y & 0xf)
}

// columnIndex - индекс ячейки колонки для карт высот и биомов: (z<<4)|x
func columnIndex(x, z int) int {
	return (z&0xf)<<4 | (x & 0xf)
}

// blockKey упаковывает локальные координаты блока колонки в ключ
// (x<<12)|(z<<8)|y. В отличие от cellIndex охватывает весь диапазон y 0..255.
// Используется для extra data и для слотов тайлов.
func blockKey(x, y, z int) uint32 {
	return uint32(x&0xf)<<12 | uint32(z&0xf)<<8 | uint32(y&0xff)
}

// UnpackBlockKey раскладывает ключ extra data обратно в локальные x, y, z
func UnpackBlockKey(key uint32) (x, y, z int) {
	return int(key>>12) & 0xf, int(key & 0xff), int(key>>8) & 0xf
}

// subChunkIndex раскладывает y колонки на индекс подчанка и локальный y
func subChunkIndex(y int) (index, localY int) {
	return y >> 4, y & 0xf
}

func getNibble(arr *nibbleArray, i int) uint8 {
	if arr == nil {
		return 0
	}
	b := arr[i>>1]
	if i&1 == 0 {
		return b & 0x0f
	}
	return b >> 4
}

// setNibble записывает значение и сообщает, изменилось ли оно
func setNibble(arr *nibbleArray, i int, v uint8) bool {
	v &= 0x0f
	pos := i >> 1
	old := arr[pos]
	var b byte
	if i&1 == 0 {
		b = old&0xf0 | v
	} else {
		b = old&0x0f | v<<4
	}
	arr[pos] = b
	return b != old
}

// fillByte повторяет 4-битное значение в обоих полубайтах
func fillByte(v uint8) byte {
	v &= 0x0f
	return v | v<<4
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// appendNibbles дописывает массив как есть; nil кодируется нулями
func appendNibbles(dst []byte, arr *nibbleArray) []byte {
	if arr == nil {
		return append(dst, zeroNibbles[:]...)
	}
	return append(dst, arr[:]...)
}

var zeroNibbles nibbleArray
