package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/voxel-chunk/internal/logging"
)

// DefaultSubject - subject NATS для передачи чанков
const DefaultSubject = "chunks.handoff"

// NATSTransport публикует конверты в subject NATS в JSON и принимает их
// через канальную подписку.
type NATSTransport struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	msgs    chan *nats.Msg
	done    chan struct{}
	once    sync.Once
	subject string
}

// NewNATSTransport подключается к NATS. buffer - ёмкость канала приёма.
// url: nats://127.0.0.1:4222
func NewNATSTransport(url, subject string, buffer int) (*NATSTransport, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if buffer <= 0 {
		buffer = 64
	}

	nc, err := nats.Connect(url,
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	t := &NATSTransport{nc: nc, msgs: make(chan *nats.Msg, buffer), done: make(chan struct{}), subject: subject}
	if t.sub, err = nc.ChanSubscribe(subject, t.msgs); err != nil {
		nc.Close()
		return nil, fmt.Errorf("nats subscribe: %w", err)
	}

	logging.GetHandoffLogger().Info("NATS transport initialized: %s (subject: %s)", url, subject)
	return t, nil
}

// Send сериализует Envelope в JSON и публикует в subject
func (t *NATSTransport) Send(ctx context.Context, env *Envelope) error {
	if t.nc.IsClosed() {
		return ErrTransportClosed
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := t.nc.Publish(t.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (t *NATSTransport) Receive(ctx context.Context) (*Envelope, error) {
	select {
	case msg := <-t.msgs:
		var env Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
		}
		return &env, nil
	case <-t.done:
		return nil, ErrTransportClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close отписывается и закрывает соединение; ожидающие Receive получают
// ErrTransportClosed. Повторный вызов ничего не делает.
func (t *NATSTransport) Close() error {
	var err error
	t.once.Do(func() {
		err = t.sub.Unsubscribe()
		t.nc.Close()
		close(t.done)
	})
	return err
}
