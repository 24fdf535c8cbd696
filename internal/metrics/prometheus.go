package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration продолжительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ReadingsReceived показания получены
	ReadingsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readings_received_total",
			Help: "Total number of sensor readings stored",
		},
	)

	// ReadingsRejected показания отклонены валидацией
	ReadingsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "readings_rejected_total",
			Help: "Total number of sensor readings rejected by validation",
		},
	)

	// AlertsRaised оповещения по порогам
	AlertsRaised = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "threshold_alerts_total",
			Help: "Total number of threshold alerts raised for stored readings",
		},
		[]string{"field", "severity"},
	)

	// ActiveAlerts оповещения по самому свежему показанию
	ActiveAlerts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "threshold_alerts_active",
			Help: "Number of threshold alerts for the newest reading",
		},
	)

	// FieldValue последнее значение поля
	FieldValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sensor_field_value",
			Help: "Value of each field in the newest reading",
		},
		[]string{"field"},
	)

	// AnalysisLatency задержка анализа
	AnalysisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_latency_seconds",
			Help:    "Analysis processing latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// QueueSize размер очереди обработки
	QueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "processing_queue_size",
			Help: "Current size of the processing queue",
		},
	)

	// StoreOperations операции с хранилищем
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of backing store operations",
		},
		[]string{"operation", "status"},
	)

	// RedisOperations операции с Redis
	RedisOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total number of Redis operations",
		},
		[]string{"operation", "status"},
	)
)

// ClientRegistry метрики клиента опроса; обслуживаются дашбордом, а не сервером API
var ClientRegistry = prometheus.NewRegistry()

var (
	// PollsTotal циклы опроса по результату
	PollsTotal = promauto.With(ClientRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total number of polling cycles by outcome",
		},
		[]string{"result"},
	)

	// LivenessStatus текущее состояние связи (0 searching, 1 connected, 2 paused)
	LivenessStatus = promauto.With(ClientRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "device_liveness_status",
			Help: "Device liveness status: 0 searching, 1 connected, 2 paused",
		},
	)
)

// ClientHandler отдает метрики клиента опроса
func ClientHandler() http.Handler {
	return promhttp.HandlerFor(ClientRegistry, promhttp.HandlerOpts{})
}

// ResetReadingGauges обнуляет gauges последнего показания (после очистки хранилища)
func ResetReadingGauges() {
	FieldValue.Reset()
	ActiveAlerts.Set(0)
}

// Status возвращает "success" или "error" для метки status
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
