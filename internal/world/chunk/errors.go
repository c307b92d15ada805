package chunk

import (
	"errors"
	"fmt"
)

// Ошибки пакета chunk
var (
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidSubChunkIndex - индекс подчанка вне [0, Height) при конструировании
	ErrInvalidSubChunkIndex = fmt.Errorf("%w: subchunk index out of range", ErrInvalidArgument)

	// ErrClosedEntity и ErrClosedTile - попытка добавить уже закрытый объект
	ErrClosedEntity = fmt.Errorf("%w: attempted to add a closed entity to a chunk", ErrInvalidArgument)
	ErrClosedTile   = fmt.Errorf("%w: attempted to add a closed tile to a chunk", ErrInvalidArgument)

	// ErrMalformedPayload - усечённые или некорректные данные быстрого кодека
	ErrMalformedPayload = errors.New("malformed chunk payload")
)
