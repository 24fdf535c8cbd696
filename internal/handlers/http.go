package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"proby/internal/analytics"
	"proby/internal/cache"
	"proby/internal/httpx"
	"proby/internal/metrics"
	"proby/internal/models"
	"proby/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler обработчик HTTP запросов
type Handler struct {
	store        store.Store
	cache        cache.ReadingCache
	analyzer     *analytics.Analyzer
	schema       models.Schema
	defaultLimit int
}

// NewHandler создает новый обработчик; cache может быть nil
func NewHandler(s store.Store, c cache.ReadingCache, analyzer *analytics.Analyzer, schema models.Schema, defaultLimit int) *Handler {
	return &Handler{
		store:        s,
		cache:        c,
		analyzer:     analyzer,
		schema:       schema,
		defaultLimit: defaultLimit,
	}
}

// Router собирает маршруты API
func (h *Handler) Router(middlewares ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	for _, m := range middlewares {
		r.Use(m)
	}

	r.HandleFunc("/readings", h.ListReadings).Methods(http.MethodGet)
	r.HandleFunc("/readings", h.SubmitReading).Methods(http.MethodPost)
	r.HandleFunc("/readings", h.ClearReadings).Methods(http.MethodDelete)
	r.HandleFunc("/readings/batch", h.BatchSubmitReadings).Methods(http.MethodPost)
	r.HandleFunc("/alerts", h.GetAlerts).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)

	// Prometheus metrics endpoint
	r.Handle("/prometheus", promhttp.Handler())

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(r.Method, r.URL.Path, "405").Inc()
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	})

	return r
}

func observe(r *http.Request, endpoint string, start time.Time) {
	metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
}

func respond(w http.ResponseWriter, r *http.Request, endpoint string, status int, body interface{}) {
	metrics.RequestsTotal.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
	httpx.WriteJSON(w, status, body)
}

func fail(w http.ResponseWriter, r *http.Request, endpoint string, status int, msg string) {
	respond(w, r, endpoint, status, httpx.ErrorResponse{Error: msg})
}

// ListReadings обрабатывает GET /readings
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/readings", start)

	limit := h.defaultLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			fail(w, r, "/readings", http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	// Поколение фиксируется до чтения хранилища
	generation, cacheable := h.cacheGeneration(r.Context())
	if cacheable {
		data, ok, err := h.cache.GetLatest(r.Context(), generation, limit)
		metrics.RedisOperations.WithLabelValues("get_readings", metrics.Status(err)).Inc()
		if ok {
			metrics.RequestsTotal.WithLabelValues(r.Method, "/readings", "200").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(data)
			return
		}
	}

	readings, err := h.store.Latest(r.Context(), limit)
	metrics.StoreOperations.WithLabelValues("latest", metrics.Status(err)).Inc()
	if err != nil {
		log.Printf("Failed to fetch readings: %v", err)
		fail(w, r, "/readings", http.StatusInternalServerError, "Failed to fetch readings")
		return
	}

	if cacheable {
		if data, err := json.Marshal(readings); err == nil {
			err = h.cache.SetLatest(r.Context(), generation, limit, data)
			metrics.RedisOperations.WithLabelValues("set_readings", metrics.Status(err)).Inc()
		}
	}

	respond(w, r, "/readings", http.StatusOK, readings)
}

// SubmitReading обрабатывает POST /readings
func (h *Handler) SubmitReading(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/readings", start)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		fail(w, r, "/readings", http.StatusBadRequest, "Failed to read request body")
		return
	}

	values, err := h.schema.Decode(body)
	if err != nil {
		metrics.ReadingsRejected.Inc()
		fail(w, r, "/readings", http.StatusBadRequest, err.Error())
		return
	}

	reading, err := h.insert(r.Context(), values)
	if err != nil {
		log.Printf("Failed to save reading: %v", err)
		fail(w, r, "/readings", http.StatusInternalServerError, "Failed to save reading")
		return
	}

	respond(w, r, "/readings", http.StatusOK, reading)
}

// BatchSubmitReadings обрабатывает POST /readings/batch
func (h *Handler) BatchSubmitReadings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/readings/batch", start)

	var batch []map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&batch); err != nil {
		fail(w, r, "/readings/batch", http.StatusBadRequest, "Invalid JSON")
		return
	}

	accepted := 0
	for _, raw := range batch {
		values, err := h.schema.Validate(raw)
		if err != nil {
			metrics.ReadingsRejected.Inc()
			continue
		}

		if _, err := h.insert(r.Context(), values); err != nil {
			log.Printf("Failed to save reading: %v", err)
			fail(w, r, "/readings/batch", http.StatusInternalServerError, "Failed to save reading")
			return
		}
		accepted++
	}

	respond(w, r, "/readings/batch", http.StatusOK, map[string]interface{}{
		"status":   "accepted",
		"total":    len(batch),
		"accepted": accepted,
	})
}

func (h *Handler) insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error) {
	reading, err := h.store.Insert(ctx, values)
	metrics.StoreOperations.WithLabelValues("insert", metrics.Status(err)).Inc()
	if err != nil {
		return models.Reading{}, err
	}

	metrics.ReadingsReceived.Inc()
	h.invalidate(ctx, cache.CounterInserted)

	// Отправляем на анализ
	if h.analyzer != nil {
		h.analyzer.Submit(reading)
	}

	return reading, nil
}

func (h *Handler) cacheGeneration(ctx context.Context) (int64, bool) {
	if h.cache == nil {
		return 0, false
	}
	generation, err := h.cache.Generation(ctx)
	metrics.RedisOperations.WithLabelValues("generation", metrics.Status(err)).Inc()
	return generation, err == nil
}

func (h *Handler) invalidate(ctx context.Context, counter string) {
	if h.cache == nil {
		return
	}

	err := h.cache.Invalidate(ctx)
	metrics.RedisOperations.WithLabelValues("invalidate", metrics.Status(err)).Inc()
	if err != nil {
		log.Printf("Failed to invalidate readings cache: %v", err)
	}

	err = h.cache.IncrementCounter(ctx, counter)
	metrics.RedisOperations.WithLabelValues("incr_counter", metrics.Status(err)).Inc()
}

// ClearReadings обрабатывает DELETE /readings
func (h *Handler) ClearReadings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/readings", start)

	deleted, err := h.store.Clear(r.Context())
	metrics.StoreOperations.WithLabelValues("clear", metrics.Status(err)).Inc()
	if err != nil {
		log.Printf("Failed to clear readings: %v", err)
		fail(w, r, "/readings", http.StatusInternalServerError, "Failed to clear readings")
		return
	}

	h.invalidate(r.Context(), cache.CounterCleared)
	if h.analyzer != nil {
		h.analyzer.Reset()
	}
	metrics.ResetReadingGauges()

	log.Printf("Cleared %d readings", deleted)
	respond(w, r, "/readings", http.StatusOK, map[string]interface{}{
		"message": "All readings cleared",
		"deleted": deleted,
	})
}

// GetAlerts обрабатывает GET /alerts
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/alerts", start)

	readings, err := h.store.Latest(r.Context(), 1)
	metrics.StoreOperations.WithLabelValues("latest", metrics.Status(err)).Inc()
	if err != nil {
		log.Printf("Failed to fetch latest reading: %v", err)
		fail(w, r, "/alerts", http.StatusInternalServerError, "Failed to fetch readings")
		return
	}

	table := analytics.DefaultTable()
	if h.analyzer != nil {
		table = h.analyzer.Table()
	}

	body := map[string]interface{}{
		"alerts": analytics.EvaluateLatest(readings, table),
	}
	if len(readings) > 0 {
		body["reading"] = readings[0]
	}

	respond(w, r, "/alerts", http.StatusOK, body)
}

// HealthCheck обрабатывает GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	storeOK := h.store.Ping(ctx) == nil

	body := map[string]interface{}{
		"store":     storeOK,
		"timestamp": time.Now(),
	}

	status := "healthy"
	httpStatus := http.StatusOK

	if h.cache != nil {
		redisOK := h.cache.Ping(ctx) == nil
		body["redis"] = redisOK
		if !redisOK {
			status = "degraded"
		}
	}

	if !storeOK {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	body["status"] = status
	if httpStatus != http.StatusOK {
		body["error"] = "backing store unavailable"
	}

	httpx.WriteJSON(w, httpStatus, body)
}

// GetStats обрабатывает GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer observe(r, "/stats", start)

	count, err := h.store.Count(r.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Failed to count readings: %v", err)
	}

	body := map[string]interface{}{
		"readings":  count,
		"schema":    h.schema.String(),
		"timestamp": time.Now(),
	}

	if h.analyzer != nil {
		body["analyzer"] = h.analyzer.GetStats()
	}

	if h.cache != nil {
		redisStats := h.cache.GetStats()
		if redisStats == nil {
			redisStats = make(map[string]interface{})
		}
		inserted, _ := h.cache.GetCounter(r.Context(), cache.CounterInserted)
		cleared, _ := h.cache.GetCounter(r.Context(), cache.CounterCleared)
		redisStats["inserted_total"] = inserted
		redisStats["cleared_total"] = cleared
		body["redis"] = redisStats
	}

	respond(w, r, "/stats", http.StatusOK, body)
}
