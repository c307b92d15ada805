package handoff

import (
	"context"
	"errors"
	"sync"
)

var ErrTransportClosed = errors.New("handoff transport closed")

// Transport доставляет конверты от воркера владельцу.
// В дальнейшем может иметь разные реализации (NATS, Kafka, Redis).
type Transport interface {
	Send(ctx context.Context, env *Envelope) error
	// Receive блокируется до прихода конверта, отмены ctx или закрытия.
	Receive(ctx context.Context) (*Envelope, error)
	Close() error
}

//================ In-Memory implementation =================//

// MemoryTransport - буферизованный канал внутри процесса
type MemoryTransport struct {
	buffer chan *Envelope
	done   chan struct{}
	once   sync.Once
}

// NewMemoryTransport создаёт транспорт с указанным буфером
func NewMemoryTransport(capacity int) *MemoryTransport {
	return &MemoryTransport{
		buffer: make(chan *Envelope, capacity),
		done:   make(chan struct{}),
	}
}

func (mt *MemoryTransport) Send(ctx context.Context, env *Envelope) error {
	select {
	case <-mt.done:
		return ErrTransportClosed
	default:
	}
	select {
	case mt.buffer <- env:
		return nil
	case <-mt.done:
		return ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive отдаёт остаток буфера и после закрытия
func (mt *MemoryTransport) Receive(ctx context.Context) (*Envelope, error) {
	select {
	case env := <-mt.buffer:
		return env, nil
	default:
	}
	select {
	case env := <-mt.buffer:
		return env, nil
	case <-mt.done:
		select {
		case env := <-mt.buffer:
			return env, nil
		default:
			return nil, ErrTransportClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (mt *MemoryTransport) Close() error {
	mt.once.Do(func() { close(mt.done) })
	return nil
}
