// Package store хранит показания датчиков.
package store

import (
	"context"
	"errors"
	"fmt"

	"proby/internal/models"
)

//go:generate mockgen -destination=mock_store.go -package=store proby/internal/store Store

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrFailedToQuery = errors.New("failed to query")
	ErrFailedInsert  = errors.New("failed to insert")
	ErrFailedToClear = errors.New("failed to clear")
	ErrFailedToOpen  = errors.New("failed to open database")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store операции хранилища показаний
type Store interface {
	// Insert сохраняет одно показание и возвращает сохраненную строку
	Insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error)
	// Latest возвращает показания от новых к старым; limit <= 0 без ограничения
	Latest(ctx context.Context, limit int) ([]models.Reading, error)
	// Clear удаляет все показания
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open открывает хранилище по имени драйвера
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStore(dsn)
	case DriverPostgres:
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
