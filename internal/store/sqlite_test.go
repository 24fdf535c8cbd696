package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proby/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSQLiteInsertAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []int64
	for i := 0; i < 5; i++ {
		r, err := s.Insert(ctx, map[models.Field]float64{
			models.FieldTemperature: 20 + float64(i),
			models.FieldPH:          4.5,
		})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1], "ids must increase with insertion order")
	}

	latest, err := s.Latest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, ids[4], latest[0].ID)
	assert.Equal(t, ids[2], latest[2].ID)
	assert.Equal(t, 24.0, latest[0].Values[models.FieldTemperature])
	assert.True(t, base.Add(5*time.Second).Equal(latest[0].CreatedAt))

	_, hasHumidity := latest[0].Value(models.FieldHumidity)
	assert.False(t, hasHumidity, "absent fields stay absent")

	all, err := s.Latest(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestSQLiteClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := s.Insert(ctx, map[models.Field]float64{models.FieldHumidity: 40})
		require.NoError(t, err)
	}

	deleted, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	latest, err := s.Latest(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, latest)
	assert.NotNil(t, latest)

	r, err := s.Insert(ctx, map[models.Field]float64{models.FieldHumidity: 41})
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.ID, "ids are not reused after clear")
}

func TestSQLiteFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	_, err = s.Insert(context.Background(), map[models.Field]float64{models.FieldPressure: 1013.2})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.Latest(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 1013.2, latest[0].Values[models.FieldPressure])
	assert.NoError(t, reopened.Ping(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
