package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"proby/internal/models"
)

// sensorReadingRow строка таблицы sensor_readings
type sensorReadingRow struct {
	ID                int64     `gorm:"primaryKey;autoIncrement"`
	CreatedAt         time.Time `gorm:"not null;index"`
	Temperature       *float64
	Humidity          *float64
	Pressure          *float64
	VOCIndex          *float64 `gorm:"column:voc_index"`
	PH                *float64 `gorm:"column:ph"`
	MicrobialActivity *float64
}

func (sensorReadingRow) TableName() string {
	return "sensor_readings"
}

func (r *sensorReadingRow) slots() map[models.Field]**float64 {
	return map[models.Field]**float64{
		models.FieldTemperature:       &r.Temperature,
		models.FieldHumidity:          &r.Humidity,
		models.FieldPressure:          &r.Pressure,
		models.FieldVOCIndex:          &r.VOCIndex,
		models.FieldPH:                &r.PH,
		models.FieldMicrobialActivity: &r.MicrobialActivity,
	}
}

func (r *sensorReadingRow) toReading() models.Reading {
	reading := models.Reading{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Values:    make(map[models.Field]float64),
	}
	for f, slot := range r.slots() {
		if *slot != nil {
			reading.Values[f] = **slot
		}
	}
	return reading
}

// PostgresStore хранилище на PostgreSQL через gorm
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore подключается к базе и выполняет миграцию
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToOpen, err)
	}

	if err := db.AutoMigrate(&sensorReadingRow{}); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Insert сохраняет показание
func (s *PostgresStore) Insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error) {
	row := sensorReadingRow{CreatedAt: time.Now().UTC()}
	slots := row.slots()
	for f, v := range values {
		if slot, ok := slots[f]; ok {
			v := v
			*slot = &v
		}
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return models.Reading{}, fmt.Errorf("%w: %w", ErrFailedInsert, err)
	}

	return row.toReading(), nil
}

// Latest возвращает последние показания
func (s *PostgresStore) Latest(ctx context.Context, limit int) ([]models.Reading, error) {
	var rows []sensorReadingRow

	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w readings: %w", ErrFailedToQuery, err)
	}

	readings := make([]models.Reading, 0, len(rows))
	for i := range rows {
		readings = append(readings, rows[i].toReading())
	}

	return readings, nil
}

// Clear удаляет все показания
func (s *PostgresStore) Clear(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&sensorReadingRow{})
	if result.Error != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToClear, result.Error)
	}
	return result.RowsAffected, nil
}

// Count число показаний
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&sensorReadingRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w count: %w", ErrFailedToQuery, err)
	}
	return n, nil
}

// Ping проверяет доступность базы
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает соединение
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
