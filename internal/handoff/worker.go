package handoff

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/voxel-chunk/internal/logging"
	"github.com/annel0/voxel-chunk/internal/metrics"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

// Coord - координаты колонки в сетке чанков
type Coord struct {
	X, Z int32
}

// Producer строит чанк для координат (например, генератор мира)
type Producer interface {
	Produce(ctx context.Context, x, z int32) (*chunk.Chunk, error)
}

// ProducerFunc позволяет использовать функцию как Producer
type ProducerFunc func(ctx context.Context, x, z int32) (*chunk.Chunk, error)

func (f ProducerFunc) Produce(ctx context.Context, x, z int32) (*chunk.Chunk, error) {
	return f(ctx, x, z)
}

// Worker производит чанки и отправляет их копии владельцу. Созданный
// чанк после отправки воркеру больше не нужен.
type Worker struct {
	Producer  Producer
	Codec     *Codec
	Transport Transport
	Metrics   *metrics.CodecMetrics
}

// Run обрабатывает coords по порядку. Ошибка производителя или транспорта
// прерывает работу.
func (w *Worker) Run(ctx context.Context, coords []Coord) error {
	log := logging.GetHandoffLogger()
	for _, pos := range coords {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := w.Producer.Produce(ctx, pos.X, pos.Z)
		if err != nil {
			return fmt.Errorf("produce %d,%d: %w", pos.X, pos.Z, err)
		}
		env, err := w.Codec.Encode(c)
		if err != nil {
			return fmt.Errorf("encode %d,%d: %w", pos.X, pos.Z, err)
		}
		w.Metrics.ObserveEncode(metrics.CodecFast, len(env.Payload))

		if err := w.Transport.Send(ctx, env); err != nil {
			return fmt.Errorf("send %d,%d: %w", pos.X, pos.Z, err)
		}
		w.Metrics.ObserveHandoff("sent")
		log.Debug("Чанк %d,%d отправлен (%s, %d байт)", pos.X, pos.Z, env.ID, len(env.Payload))
	}
	return nil
}

// Handler получает во владение новый декодированный чанк
type Handler func(ctx context.Context, c *chunk.Chunk) error

// Owner принимает чанки от воркеров
type Owner struct {
	Codec     *Codec
	Transport Transport
	Metrics   *metrics.CodecMetrics
}

// Accept принимает конверты до отмены ctx или закрытия транспорта.
// Повреждённые конверты пропускаются с предупреждением; ошибка handler
// прерывает цикл. Закрытие транспорта - штатное завершение (nil).
func (o *Owner) Accept(ctx context.Context, handler Handler) error {
	log := logging.GetHandoffLogger()
	for {
		env, err := o.Transport.Receive(ctx)
		if errors.Is(err, ErrTransportClosed) {
			return nil
		}
		if errors.Is(err, ErrBadEnvelope) {
			log.Warn("Конверт отброшен: %v", err)
			continue
		}
		if err != nil {
			return err
		}

		c, err := o.Codec.Decode(env)
		o.Metrics.ObserveDecode(metrics.CodecFast, err)
		if err != nil {
			log.Warn("Конверт %s (%d,%d) от %s отброшен: %v", env.ID, env.X, env.Z, env.Source, err)
			continue
		}
		o.Metrics.ObserveHandoff("received")

		if err := handler(ctx, c); err != nil {
			return fmt.Errorf("handle %d,%d: %w", c.X(), c.Z(), err)
		}
	}
}
