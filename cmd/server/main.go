package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-chunk/internal/cache"
	"github.com/annel0/voxel-chunk/internal/config"
	"github.com/annel0/voxel-chunk/internal/gen"
	"github.com/annel0/voxel-chunk/internal/handoff"
	"github.com/annel0/voxel-chunk/internal/logging"
	"github.com/annel0/voxel-chunk/internal/metrics"
	"github.com/annel0/voxel-chunk/internal/storage"
	"github.com/annel0/voxel-chunk/internal/world/block"
	"github.com/annel0/voxel-chunk/internal/world/chunk"
	"github.com/annel0/voxel-chunk/internal/world/entity"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию CHUNK_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	level, _ := logging.ParseLevel(cfg.Logging.Level) // Уровень уже проверен в config.Load
	if err := logging.GetLoggerManager().ConfigureLevels(level, "chunk", "storage", "handoff", "server"); err != nil {
		logging.Warn("Не удалось настроить уровни логирования: %v", err)
	}

	logging.Info("🧱 Запуск сервера чанков")

	// Таблица свойств блоков
	if cfg.Blocks.Path != "" {
		n, err := block.Default().LoadYAML(cfg.Blocks.Path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Warn("Таблица блоков %s не найдена, используется встроенная", cfg.Blocks.Path)
		case err != nil:
			logging.Error("Ошибка загрузки таблицы блоков: %v", err)
		default:
			logging.Info("Загружено %d описаний блоков из %s", n, cfg.Blocks.Path)
		}
	}

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===
	m := metrics.NewCodecMetrics(nil)
	metricsSrv := metrics.StartHTTP(fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort()))

	store, err := storage.NewChunkStorage(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища чанков: %v", err)
	}
	store.WithMetrics(m)
	defer store.Close()

	payloads, err := newPayloadCache(cfg.Cache)
	if err != nil {
		log.Fatalf("❌ Ошибка создания кэша снимков: %v", err)
	}
	defer payloads.Close()

	transport, err := newTransport(cfg.Handoff)
	if err != nil {
		log.Fatalf("❌ Ошибка создания транспорта передачи: %v", err)
	}

	codec, err := handoff.NewCodec("gen-0", cfg.Handoff.Compression)
	if err != nil {
		log.Fatalf("❌ Ошибка создания кодека передачи: %v", err)
	}
	defer codec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Воркер генерации
	worker := &handoff.Worker{
		Producer:  gen.New(cfg.Worker.Seed, block.Default()),
		Codec:     codec,
		Transport: transport,
		Metrics:   m,
	}
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(ctx, spiral(cfg.Worker.Radius))
	}()

	// Владелец чанков
	snapshots := &cache.Snapshotter{Cache: payloads, Metrics: m}
	objects := entity.NewDefaultManager()
	owner := &handoff.Owner{Codec: codec, Transport: transport, Metrics: m}
	ownerDone := make(chan error, 1)
	go func() {
		ownerDone <- owner.Accept(ctx, func(ctx context.Context, c *chunk.Chunk) error {
			return adopt(ctx, c, objects, snapshots, store, m)
		})
	}()

	logging.Info("✅ Сервер запущен: метрики :%d, транспорт %s, кэш %s, радиус %d",
		cfg.Metrics.GetMetricsPort(), cfg.Handoff.Transport, cfg.Cache.Backend, cfg.Worker.Radius)

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-workerDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("❌ Воркер генерации остановлен: %v", err)
		} else {
			logging.Info("Воркер генерации завершил работу")
		}
		workerDone <- nil
		// Ждём сигнала, владелец продолжает принимать чанки
		sig := <-sigCh
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-ownerDone:
		logging.Error("❌ Владелец чанков остановлен: %v", err)
		ownerDone <- err
	}

	// === GRACEFUL SHUTDOWN ===
	cancel()
	<-workerDone
	if err := transport.Close(); err != nil {
		logging.Warn("Ошибка закрытия транспорта: %v", err)
	}
	<-ownerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Ошибка остановки сервера метрик: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

// adopt принимает чанк во владение: материализует объекты, освобождает
// пустые подчанки, прогревает кэш снимков и сохраняет колонку.
func adopt(ctx context.Context, c *chunk.Chunk, objects chunk.Materializer,
	snapshots *cache.Snapshotter, store *storage.ChunkStorage, m *metrics.CodecMetrics) error {
	// Декодированная копия чиста, но у нового владельца её ещё нет ни в
	// хранилище, ни в кэше
	c.SetChanged(true)
	c.InitChunk(objects)
	m.ObserveGC(c.CollectGarbage())

	// Снимок берётся до SaveChunk: сохранение сбрасывает флаг изменений
	payload, err := snapshots.Payload(ctx, c)
	if err != nil {
		return err
	}
	saved, err := store.SaveChunk(c)
	if err != nil {
		return err
	}
	logging.GetServerLogger().Debug("Чанк %d,%d принят: снимок %d байт, сохранён=%v",
		c.X(), c.Z(), len(payload), saved)
	return nil
}

func newPayloadCache(cfg config.CacheConfig) (cache.PayloadCache, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedisPayloadCache(&cache.CacheConfig{RedisURL: cfg.RedisURL, TTL: cfg.TTL})
	}
	return cache.NewMemoryPayloadCache(cfg.TTL), nil
}

func newTransport(cfg config.HandoffConfig) (handoff.Transport, error) {
	if cfg.Transport == "nats" {
		return handoff.NewNATSTransport(cfg.NATSURL, cfg.Subject, cfg.Buffer)
	}
	return handoff.NewMemoryTransport(cfg.Buffer), nil
}

// spiral возвращает координаты чанков квадрата радиуса r вокруг начала
// координат, от центра к краям.
func spiral(r int) []handoff.Coord {
	coords := []handoff.Coord{{X: 0, Z: 0}}
	for ring := 1; ring <= r; ring++ {
		n := int32(ring)
		for x := -n; x <= n; x++ {
			coords = append(coords, handoff.Coord{X: x, Z: -n}, handoff.Coord{X: x, Z: n})
		}
		for z := -n + 1; z <= n-1; z++ {
			coords = append(coords, handoff.Coord{X: -n, Z: z}, handoff.Coord{X: n, Z: z})
		}
	}
	return coords
}
