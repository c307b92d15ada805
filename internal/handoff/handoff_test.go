package handoff

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-chunk/internal/world/chunk"
)

func testChunk(x, z int32) *chunk.Chunk {
	c := chunk.NewEmpty(x, z)
	for i := 0; i < 16; i++ {
		c.SetBlock(i, 64, i, 2, 0)
		c.SetBlockSkyLight(i, 65, i, 15)
	}
	c.SetGenerated(true)
	c.SetLightPopulated(true)
	return c
}

func TestCodecRoundTrip(t *testing.T) {
	for _, level := range []int{0, 3} {
		codec, err := NewCodec("test", level)
		require.NoError(t, err)
		defer codec.Close()

		src := testChunk(-3, 9)
		env, err := codec.Encode(src)
		require.NoError(t, err)

		assert.NotEmpty(t, env.ID)
		assert.Equal(t, "test", env.Source)
		assert.Equal(t, int32(-3), env.X)
		if level == 0 {
			assert.Equal(t, FormatRaw, env.Payload[0])
		} else {
			assert.Equal(t, FormatZstd, env.Payload[0])
			assert.Less(t, len(env.Payload), len(src.FastSerialize()), "zstd сжимает почти пустой чанк")
		}

		dst, err := codec.Decode(env)
		require.NoError(t, err)
		assert.NotSame(t, src, dst, "передача только копированием")
		assert.Equal(t, uint8(2), dst.BlockID(5, 64, 5))
		assert.Equal(t, uint8(15), dst.BlockSkyLight(5, 65, 5))
		assert.False(t, dst.HasChanged())
	}
}

func TestCodecRejectsBadEnvelope(t *testing.T) {
	codec, err := NewCodec("test", 0)
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decode(&Envelope{})
	assert.ErrorIs(t, err, ErrBadEnvelope)

	_, err = codec.Decode(&Envelope{Payload: []byte{9, 1, 2}})
	assert.ErrorIs(t, err, ErrBadEnvelope, "неизвестный формат")

	_, err = codec.Decode(&Envelope{Payload: []byte{FormatZstd, 1, 2, 3}})
	assert.ErrorIs(t, err, ErrBadEnvelope, "повреждённый zstd")

	env, err := codec.Encode(testChunk(1, 1))
	require.NoError(t, err)
	env.X = 2
	_, err = codec.Decode(env)
	assert.ErrorIs(t, err, ErrBadEnvelope, "координаты конверта и чанка расходятся")

	_, err = codec.Decode(&Envelope{Payload: []byte{FormatRaw, 1}})
	assert.ErrorIs(t, err, chunk.ErrMalformedPayload)
}

func TestMemoryTransport(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTransport(2)

	require.NoError(t, tr.Send(ctx, &Envelope{ID: "a"}))
	require.NoError(t, tr.Send(ctx, &Envelope{ID: "b"}))

	full, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tr.Send(full, &Envelope{ID: "c"}), context.DeadlineExceeded, "буфер заполнен")

	require.NoError(t, tr.Close())
	assert.ErrorIs(t, tr.Send(ctx, &Envelope{}), ErrTransportClosed)

	env, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", env.ID, "остаток буфера доставляется после закрытия")
	env, err = tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", env.ID)

	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestWorkerToOwner(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	codec, err := NewCodec("gen-1", 1)
	require.NoError(t, err)
	defer codec.Close()
	tr := NewMemoryTransport(4)

	produced := make(map[Coord]*chunk.Chunk)
	worker := &Worker{
		Producer: ProducerFunc(func(ctx context.Context, x, z int32) (*chunk.Chunk, error) {
			c := testChunk(x, z)
			produced[Coord{x, z}] = c
			return c, nil
		}),
		Codec:     codec,
		Transport: tr,
	}
	coords := []Coord{{0, 0}, {0, 1}, {-1, 0}}

	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(ctx, coords)
		tr.Close()
	}()

	var received []Coord
	owner := &Owner{Codec: codec, Transport: tr}
	err = owner.Accept(ctx, func(ctx context.Context, c *chunk.Chunk) error {
		received = append(received, Coord{c.X(), c.Z()})
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, <-errCh)

	assert.Equal(t, coords, received)
	assert.Len(t, produced, 3)
}

func TestOwnerSkipsCorruptEnvelope(t *testing.T) {
	ctx := context.Background()
	codec, err := NewCodec("test", 0)
	require.NoError(t, err)
	defer codec.Close()
	tr := NewMemoryTransport(4)

	good, err := codec.Encode(testChunk(7, 7))
	require.NoError(t, err)
	require.NoError(t, tr.Send(ctx, &Envelope{ID: "bad", Payload: []byte{FormatRaw}}))
	require.NoError(t, tr.Send(ctx, good))
	tr.Close()

	var count int
	owner := &Owner{Codec: codec, Transport: tr}
	require.NoError(t, owner.Accept(ctx, func(ctx context.Context, c *chunk.Chunk) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count, "повреждённый конверт пропущен")
}

func TestNATSTransport(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL не задан, пропускаем интеграционный тест NATS")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := NewNATSTransport(url, "chunks.handoff.test", 8)
	require.NoError(t, err)
	defer tr.Close()

	codec, err := NewCodec("nats-test", 3)
	require.NoError(t, err)
	defer codec.Close()

	env, err := codec.Encode(testChunk(2, 3))
	require.NoError(t, err)
	require.NoError(t, tr.Send(ctx, env))

	got, err := tr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, env.ID, got.ID)

	c, err := codec.Decode(got)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), c.BlockID(0, 64, 0))

	// Закрытие из нескольких горутин не паникует на close(done)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotPanics(t, func() { _ = tr.Close() })
		}()
	}
	wg.Wait()
	assert.NoError(t, tr.Close(), "повторное закрытие без ошибки")

	assert.ErrorIs(t, tr.Send(ctx, env), ErrTransportClosed)
	_, err = tr.Receive(ctx)
	assert.ErrorIs(t, err, ErrTransportClosed)
}
