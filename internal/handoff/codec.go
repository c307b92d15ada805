package handoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

// Envelope - контейнер передачи одного чанка между воркерами.
// Payload начинается с байта формата (FormatRaw | FormatZstd), далее
// байты быстрого кодека чанка.
type Envelope struct {
	ID        string    `json:"id"`         // UUID передачи
	X         int32     `json:"x"`          // Координаты колонки
	Z         int32     `json:"z"`          //
	Source    string    `json:"source"`     // Имя воркера-источника
	CreatedAt time.Time `json:"created_at"` // Время кодирования (UTC)
	Payload   []byte    `json:"payload"`
}

// Форматы полезной нагрузки
const (
	FormatRaw  byte = 0
	FormatZstd byte = 1
)

var ErrBadEnvelope = errors.New("bad handoff envelope")

// Codec упаковывает чанки в Envelope. Безопасен для конкурентного использования.
type Codec struct {
	source string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// NewCodec создаёт кодек. level == 0 отключает сжатие; иначе это уровень
// zstd (1..22), приводимый к ближайшему уровню кодировщика.
func NewCodec(source string, level int) (*Codec, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	c := &Codec{source: source, dec: dec}
	if level > 0 {
		c.enc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			dec.Close()
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
	}
	return c, nil
}

// Encode снимает копию чанка. Исходный чанк остаётся у отправителя.
func (c *Codec) Encode(ch *chunk.Chunk) (*Envelope, error) {
	raw := ch.FastSerialize()

	var payload []byte
	if c.enc != nil {
		payload = c.enc.EncodeAll(raw, append(make([]byte, 0, len(raw)/2+1), FormatZstd))
	} else {
		payload = append(append(make([]byte, 0, len(raw)+1), FormatRaw), raw...)
	}

	return &Envelope{
		ID:        uuid.NewString(),
		X:         ch.X(),
		Z:         ch.Z(),
		Source:    c.source,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}, nil
}

// Decode собирает из конверта новый чанк
func (c *Codec) Decode(env *Envelope) (*chunk.Chunk, error) {
	if env == nil || len(env.Payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrBadEnvelope)
	}

	var raw []byte
	switch env.Payload[0] {
	case FormatRaw:
		raw = env.Payload[1:]
	case FormatZstd:
		var err error
		if raw, err = c.dec.DecodeAll(env.Payload[1:], nil); err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrBadEnvelope, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrBadEnvelope, env.Payload[0])
	}

	ch, err := chunk.FastDeserialize(raw)
	if err != nil {
		return nil, err
	}
	if ch.X() != env.X || ch.Z() != env.Z {
		return nil, fmt.Errorf("%w: envelope %d,%d carries chunk %d,%d", ErrBadEnvelope, env.X, env.Z, ch.X(), ch.Z())
	}
	return ch, nil
}

// Close освобождает ресурсы zstd
func (c *Codec) Close() error {
	c.dec.Close()
	if c.enc != nil {
		return c.enc.Close()
	}
	return nil
}
