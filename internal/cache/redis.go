package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination=mock_cache.go -package=cache proby/internal/cache ReadingCache

const (
	latestKeyPrefix = "readings:latest:"
	generationKey   = "readings:generation"

	CounterInserted = "readings:inserted"
	CounterCleared  = "readings:cleared"
)

// ReadingCache кэш ответов GET /readings.
// Записи привязаны к поколению: Invalidate начинает новое поколение, и запись,
// сделанная по старому поколению, больше никогда не читается.
type ReadingCache interface {
	Generation(ctx context.Context) (int64, error)
	GetLatest(ctx context.Context, generation int64, limit int) ([]byte, bool, error)
	SetLatest(ctx context.Context, generation int64, limit int, data []byte) error
	Invalidate(ctx context.Context) error
	IncrementCounter(ctx context.Context, key string) error
	GetCounter(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
	GetStats() map[string]interface{}
	Close() error
}

// RedisCache обертка для Redis клиента
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache создает новый Redis кэш
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 2,
		MaxRetries:   3,
	})

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func latestKey(generation int64, limit int) string {
	return fmt.Sprintf("%s%d:%d", latestKeyPrefix, generation, limit)
}

// Generation текущее поколение кэша (0, пока не было ни одной записи)
func (r *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get cache generation: %w", err)
	}
	return gen, nil
}

// GetLatest возвращает закэшированный список последних показаний
func (r *RedisCache) GetLatest(ctx context.Context, generation int64, limit int) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, latestKey(generation, limit)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get readings: %w", err)
	}
	return data, true, nil
}

// SetLatest сохраняет сериализованный список показаний, прочитанный в поколении generation
func (r *RedisCache) SetLatest(ctx context.Context, generation int64, limit int, data []byte) error {
	if err := r.client.Set(ctx, latestKey(generation, limit), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache readings: %w", err)
	}
	return nil
}

// Invalidate начинает новое поколение (после записи или очистки)
func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate readings: %w", err)
	}
	return nil
}

// IncrementCounter увеличивает счетчик
func (r *RedisCache) IncrementCounter(ctx context.Context, key string) error {
	return r.client.Incr(ctx, key).Err()
}

// GetCounter получает значение счетчика
func (r *RedisCache) GetCounter(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// Close закрывает соединение с Redis
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Ping проверяет доступность Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetStats возвращает статистику Redis
func (r *RedisCache) GetStats() map[string]interface{} {
	stats := r.client.PoolStats()

	return map[string]interface{}{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}
