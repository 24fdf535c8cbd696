package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"proby/internal/analytics"
	"proby/internal/cache"
	"proby/internal/config"
	"proby/internal/handlers"
	"proby/internal/httpx"
	"proby/internal/metrics"
	"proby/internal/store"
)

func main() {
	log.Println("Starting sensor readings service...")

	// Конфигурация из .env и environment variables
	config.LoadDotEnv()
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Инициализация хранилища
	st, err := store.Open(cfg.StoreDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.Close()
	log.Printf("Using %s store, fields: %s\n", cfg.StoreDriver, cfg.Schema)

	// Инициализация Redis (необязательно)
	var readingCache cache.ReadingCache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		readingCache = redisCache
		log.Println("Connected to Redis")
	}

	// Инициализация анализатора
	analyzer := analytics.NewAnalyzer(cfg.Thresholds, 1000)
	analyzer.Start(cfg.AnalyzerWorkers)
	defer analyzer.Stop()
	log.Printf("Analyzer started with %d workers, %d thresholds\n", cfg.AnalyzerWorkers, len(cfg.Thresholds))

	// Запускаем goroutine для обработки результатов анализа
	go processAnalysisResults(analyzer, analytics.NewPublisher())

	// Ограничение частоты записи
	var limiter *rate.Limiter
	if cfg.IngestRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.IngestRate), cfg.IngestBurst)
		log.Printf("Ingest rate limited to %.2f req/s (burst %d)\n", cfg.IngestRate, cfg.IngestBurst)
	}

	// Инициализация HTTP handlers
	handler := handlers.NewHandler(st, readingCache, analyzer, cfg.Schema, cfg.ReadingsLimit)
	router := handler.Router(httpx.RateLimit(limiter))

	// HTTP сервер
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpx.CommonMiddleware(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server listening on port %s\n", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Периодическое обновление метрик
	go updateMetrics(analyzer)

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// processAnalysisResults обрабатывает результаты анализа
func processAnalysisResults(analyzer *analytics.Analyzer, publisher *analytics.Publisher) {
	for result := range analyzer.Results() {
		start := time.Now()
		publisher.Publish(result)
		metrics.AnalysisLatency.Observe(time.Since(start).Seconds())
	}
}

// updateMetrics периодически обновляет метрики
func updateMetrics(analyzer *analytics.Analyzer) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		stats := analyzer.GetStats()

		if queueSize, ok := stats["queue_size"].(int); ok {
			metrics.QueueSize.Set(float64(queueSize))
		}
	}
}
