package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel-chunk/internal/logging"
)

// CodecMetrics инкапсулирует Prometheus-метрики кодеков, хранилища и передачи чанков.
// Все методы безопасны для nil-получателя: компоненты можно собирать без метрик.
type CodecMetrics struct {
	encoded        *prometheus.CounterVec
	decoded        *prometheus.CounterVec
	encodedBytes   *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	gcReleased     prometheus.Counter
	handoffs       *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// Метки кодеков
const (
	CodecFast    = "fast"
	CodecNetwork = "network"
)

// NewCodecMetrics создаёт и регистрирует метрики в reg.
// nil reg означает глобальный регистр Prometheus.
func NewCodecMetrics(reg prometheus.Registerer) *CodecMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &CodecMetrics{
		encoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "encoded_total",
			Help:      "Число закодированных чанков по кодеку.",
		}, []string{"codec"}),
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "decoded_total",
			Help:      "Число успешно декодированных чанков по кодеку.",
		}, []string{"codec"}),
		encodedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "encoded_bytes_total",
			Help:      "Суммарный размер закодированных данных.",
		}, []string{"codec"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "decode_failures_total",
			Help:      "Ошибки декодирования (усечённые или повреждённые данные).",
		}, []string{"codec"}),
		gcReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "gc_released_subchunks_total",
			Help:      "Подчанки, заменённые пустым синглтоном при сборке мусора.",
		}),
		handoffs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "handoffs_total",
			Help:      "Передачи чанков между воркерами.",
		}, []string{"direction"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chunk",
			Name:      "payload_cache_lookups_total",
			Help:      "Обращения к кэшу сетевых снимков.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.encoded, m.decoded, m.encodedBytes, m.decodeFailures,
		m.gcReleased, m.handoffs, m.cacheLookups)
	return m
}

func (m *CodecMetrics) ObserveEncode(codec string, size int) {
	if m == nil {
		return
	}
	m.encoded.WithLabelValues(codec).Inc()
	m.encodedBytes.WithLabelValues(codec).Add(float64(size))
}

func (m *CodecMetrics) ObserveDecode(codec string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.decodeFailures.WithLabelValues(codec).Inc()
		return
	}
	m.decoded.WithLabelValues(codec).Inc()
}

func (m *CodecMetrics) ObserveGC(released int) {
	if m == nil || released <= 0 {
		return
	}
	m.gcReleased.Add(float64(released))
}

// ObserveHandoff учитывает отправку ("sent") или приём ("received") чанка
func (m *CodecMetrics) ObserveHandoff(direction string) {
	if m == nil {
		return
	}
	m.handoffs.WithLabelValues(direction).Inc()
}

func (m *CodecMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	return srv
}
