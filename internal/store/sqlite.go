package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"proby/internal/models"
)

const createTablesSQL = `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TIMESTAMP NOT NULL,
		temperature REAL,
		humidity REAL,
		pressure REAL,
		voc_index REAL,
		ph REAL,
		microbial_activity REAL
	);

	CREATE INDEX IF NOT EXISTS idx_sensor_readings_created
		ON sensor_readings(created_at);

	PRAGMA journal_mode=WAL;
`

// SQLiteStore хранилище на SQLite
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore открывает базу и создает схему
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToOpen, err)
	}

	// in-memory база живет в пределах одного соединения
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

var columns = func() []string {
	cols := make([]string, len(models.KnownFields))
	for i, info := range models.KnownFields {
		cols[i] = string(info.Field)
	}
	return cols
}()

// Insert сохраняет показание
func (s *SQLiteStore) Insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error) {
	created := s.now().UTC()

	args := make([]interface{}, 0, len(columns)+1)
	args = append(args, created)
	for _, info := range models.KnownFields {
		if v, ok := values[info.Field]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := fmt.Sprintf(`INSERT INTO sensor_readings (created_at, %s) VALUES (%s)`,
		strings.Join(columns, ", "), placeholders)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: %w", ErrFailedInsert, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: %w", ErrFailedInsert, err)
	}

	stored := make(map[models.Field]float64, len(values))
	for f, v := range values {
		stored[f] = v
	}

	return models.Reading{ID: id, CreatedAt: created, Values: stored}, nil
}

// Latest возвращает последние показания
func (s *SQLiteStore) Latest(ctx context.Context, limit int) ([]models.Reading, error) {
	query := fmt.Sprintf(`SELECT id, created_at, %s FROM sensor_readings ORDER BY id DESC`,
		strings.Join(columns, ", "))

	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w readings: %w", ErrFailedToQuery, err)
	}
	defer rows.Close()

	readings := make([]models.Reading, 0)
	for rows.Next() {
		var (
			r    models.Reading
			vals = make([]sql.NullFloat64, len(columns))
			dest = make([]interface{}, 0, len(columns)+2)
		)
		dest = append(dest, &r.ID, &r.CreatedAt)
		for i := range vals {
			dest = append(dest, &vals[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		r.Values = make(map[models.Field]float64)
		for i, v := range vals {
			if v.Valid {
				r.Values[models.KnownFields[i].Field] = v.Float64
			}
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w readings: %w", ErrFailedToQuery, err)
	}

	return readings, nil
}

// Clear удаляет все показания
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sensor_readings`)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToClear, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFailedToClear, err)
	}

	return n, nil
}

// Count число показаний
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w count: %w", ErrFailedToQuery, err)
	}
	return n, nil
}

// Ping проверяет доступность базы
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает соединение
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
