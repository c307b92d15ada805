package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/annel0/voxel-chunk/internal/logging"
	"github.com/annel0/voxel-chunk/internal/metrics"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

var (
	// ErrChunkNotFound возвращается, если чанк ещё не сохранялся
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrStorageClosed - хранилище закрыто
	ErrStorageClosed = errors.New("storage is closed")
)

// ChunkStorage хранит колонки в BadgerDB. Блоки, свет и биомы пишутся
// быстрым кодеком, extra data (которую кодек не переносит) - отдельным ключом.
type ChunkStorage struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
	metrics *metrics.CodecMetrics
}

// NewChunkStorage открывает хранилище по пути path. inMemory открывает
// BadgerDB без диска (тесты, одноразовые воркеры).
func NewChunkStorage(path string, inMemory bool) (*ChunkStorage, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &ChunkStorage{db: db, isReady: true}, nil
}

// WithMetrics подключает счётчики кодека
func (cs *ChunkStorage) WithMetrics(m *metrics.CodecMetrics) *ChunkStorage {
	cs.metrics = m
	return cs
}

// Close закрывает хранилище данных
func (cs *ChunkStorage) Close() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isReady {
		return nil
	}
	cs.isReady = false
	return cs.db.Close()
}

func chunkKey(x, z int32) []byte { return []byte(fmt.Sprintf("chunk:%d:%d", x, z)) }
func extraKey(x, z int32) []byte { return []byte(fmt.Sprintf("extra:%d:%d", x, z)) }

// SaveChunk сохраняет чанк, если он изменён, и сбрасывает флаг изменений.
// Возвращает false, если сохранять было нечего.
func (cs *ChunkStorage) SaveChunk(c *chunk.Chunk) (bool, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return false, ErrStorageClosed
	}
	if !c.HasChanged() {
		return false, nil
	}

	payload := c.FastSerialize()
	extra := encodeExtraData(c.BlockExtraDataArray())
	cs.metrics.ObserveEncode(metrics.CodecFast, len(payload))

	err := cs.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chunkKey(c.X(), c.Z()), payload); err != nil {
			return err
		}
		if extra == nil {
			return txn.Delete(extraKey(c.X(), c.Z()))
		}
		return txn.Set(extraKey(c.X(), c.Z()), extra)
	})
	if err != nil {
		return false, fmt.Errorf("ошибка сохранения чанка %d,%d в BadgerDB: %w", c.X(), c.Z(), err)
	}

	c.SetChanged(false)
	logging.GetStorageLogger().Debug("Чанк %d,%d сохранён (%d байт)", c.X(), c.Z(), len(payload))
	return true, nil
}

// LoadChunk загружает чанк. Отсутствующий чанк - ErrChunkNotFound.
func (cs *ChunkStorage) LoadChunk(x, z int32) (*chunk.Chunk, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return nil, ErrStorageClosed
	}

	var payload, extra []byte
	err := cs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(x, z))
		if err != nil {
			return err
		}
		if payload, err = item.ValueCopy(nil); err != nil {
			return err
		}

		item, err = txn.Get(extraKey(x, z))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		extra, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %d,%d", ErrChunkNotFound, x, z)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	c, err := chunk.FastDeserialize(payload)
	cs.metrics.ObserveDecode(metrics.CodecFast, err)
	if err != nil {
		return nil, fmt.Errorf("чанк %d,%d повреждён: %w", x, z, err)
	}

	entries, err := decodeExtraData(extra)
	if err != nil {
		return nil, fmt.Errorf("extra data чанка %d,%d повреждены: %w", x, z, err)
	}
	for key, value := range entries {
		bx, by, bz := chunk.UnpackBlockKey(key)
		c.SetBlockExtraData(bx, by, bz, value)
	}
	c.SetChanged(false)
	return c, nil
}

// DeleteChunk удаляет чанк и его extra data
func (cs *ChunkStorage) DeleteChunk(x, z int32) error {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return ErrStorageClosed
	}
	return cs.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(chunkKey(x, z)); err != nil {
			return err
		}
		return txn.Delete(extraKey(x, z))
	})
}

// encodeExtraData: uvarint число записей, далее uvarint ключ и uint16 LE.
// Пустая карта не кодируется (nil).
func encodeExtraData(entries map[uint32]uint16) []byte {
	if len(entries) == 0 {
		return nil
	}
	buf := binary.AppendUvarint(nil, uint64(len(entries)))
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		buf = binary.AppendUvarint(buf, uint64(key))
		buf = binary.LittleEndian.AppendUint16(buf, entries[key])
	}
	return buf
}

func decodeExtraData(data []byte) (map[uint32]uint16, error) {
	entries := make(map[uint32]uint16)
	if len(data) == 0 {
		return entries, nil
	}
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, chunk.ErrMalformedPayload
	}
	data = data[n:]
	for i := uint64(0); i < count; i++ {
		key, n := binary.Uvarint(data)
		if n <= 0 || len(data) < n+2 {
			return nil, chunk.ErrMalformedPayload
		}
		entries[uint32(key)] = binary.LittleEndian.Uint16(data[n:])
		data = data[n+2:]
	}
	if len(data) != 0 {
		return nil, chunk.ErrMalformedPayload
	}
	return entries, nil
}
