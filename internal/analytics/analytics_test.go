package analytics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proby/internal/models"
)

func reading(id int64, values map[models.Field]float64) models.Reading {
	return models.Reading{ID: id, CreatedAt: time.Unix(id, 0), Values: values}
}

func TestEvaluate(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name   string
		values map[models.Field]float64
		want   []Alert
	}{
		{
			name:   "temperature_above_range",
			values: map[models.Field]float64{models.FieldTemperature: 32},
			want: []Alert{{
				Field:     models.FieldTemperature,
				Message:   "Temperature is above optimal range",
				Severity:  SeverityWarning,
				Threshold: "18-25°C",
			}},
		},
		{
			name:   "ph_above_range",
			values: map[models.Field]float64{models.FieldPH: 8.5},
			want: []Alert{{
				Field:     models.FieldPH,
				Message:   "pH levels outside optimal range",
				Severity:  SeverityWarning,
				Threshold: "4-7",
			}},
		},
		{
			name:   "ph_in_range",
			values: map[models.Field]float64{models.FieldPH: 5},
			want:   []Alert{},
		},
		{
			name:   "bounds_are_inclusive",
			values: map[models.Field]float64{models.FieldTemperature: 25, models.FieldHumidity: 30},
			want:   []Alert{},
		},
		{
			name:   "field_without_range_ignored",
			values: map[models.Field]float64{models.FieldMicrobialActivity: 1e9},
			want:   []Alert{},
		},
		{
			name: "declaration_order",
			values: map[models.Field]float64{
				models.FieldPH:          9,
				models.FieldVOCIndex:    250,
				models.FieldTemperature: 10,
			},
			want: []Alert{
				{Field: models.FieldTemperature, Message: "Temperature is below optimal range", Severity: SeverityWarning, Threshold: "18-25°C"},
				{Field: models.FieldVOCIndex, Message: "High VOC levels detected", Severity: SeverityError, Threshold: "0-200ppm"},
				{Field: models.FieldPH, Message: "pH levels outside optimal range", Severity: SeverityWarning, Threshold: "4-7"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := reading(1, tt.values)
			assert.Equal(t, tt.want, Evaluate(&r, table))
		})
	}
}

func TestEvaluateNoData(t *testing.T) {
	assert.Equal(t, []Alert{NoDataAlert}, Evaluate(nil, DefaultTable()))
	assert.Equal(t, []Alert{NoDataAlert}, EvaluateLatest(nil, DefaultTable()))
}

func TestEvaluateIsIdempotent(t *testing.T) {
	table := DefaultTable()
	r := reading(3, map[models.Field]float64{
		models.FieldTemperature: 40,
		models.FieldHumidity:    75,
		models.FieldPH:          3,
	})

	first := Evaluate(&r, table)
	second := Evaluate(&r, table)
	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
	assert.Equal(t, "temperature,humidity,ph", FieldsOf(first))
}

func TestEvaluateLatestUsesFirstReading(t *testing.T) {
	readings := []models.Reading{
		reading(2, map[models.Field]float64{models.FieldTemperature: 20}),
		reading(1, map[models.Field]float64{models.FieldTemperature: 40}),
	}
	assert.Empty(t, EvaluateLatest(readings, DefaultTable()))
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), table)

	path := filepath.Join(t.TempDir(), "thresholds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"temperature": {"min": 20, "max": 30},
		"microbial_activity": {"min": 100, "max": 5000, "severity": "error"}
	}`), 0o600))

	table, err = LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, table[models.FieldTemperature].Min)
	assert.Equal(t, "Temperature is above optimal range", table[models.FieldTemperature].AboveMessage)
	assert.Equal(t, SeverityError, table[models.FieldMicrobialActivity].Severity)

	r := reading(1, map[models.Field]float64{models.FieldMicrobialActivity: 50})
	alerts := Evaluate(&r, table)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Microbial Activity outside optimal range", alerts[0].Message)
	assert.Equal(t, "100-5000Cfu", alerts[0].Threshold)

	require.NoError(t, os.WriteFile(path, []byte(`{"ph": {"min": 8, "max": 2}}`), 0o600))
	_, err = LoadTable(path)
	assert.ErrorIs(t, err, ErrInvalidRange)

	require.NoError(t, os.WriteFile(path, []byte(`{"co2": {"min": 0, "max": 2}}`), 0o600))
	_, err = LoadTable(path)
	assert.ErrorIs(t, err, models.ErrUnknownField)
}

func TestSummarize(t *testing.T) {
	readings := []models.Reading{
		reading(3, map[models.Field]float64{models.FieldTemperature: 24}),
		reading(2, map[models.Field]float64{models.FieldHumidity: 50}),
		reading(1, map[models.Field]float64{models.FieldTemperature: 20}),
	}

	s := Summarize(readings, models.FieldTemperature)
	require.Len(t, s.Points, 2)
	assert.Equal(t, []float64{20, 24}, s.Values())
	assert.Equal(t, 20.0, s.Min)
	assert.Equal(t, 24.0, s.Peak)
	assert.Equal(t, 22.0, s.Avg)
	assert.Equal(t, 24.0, s.Last)

	empty := Summarize(readings, models.FieldPH)
	assert.True(t, empty.Empty())
	assert.Zero(t, empty.Min)
}

func TestAnalyzerTracksNewest(t *testing.T) {
	a := NewAnalyzer(DefaultTable(), 10)
	a.Start(1)

	require.True(t, a.Submit(reading(2, map[models.Field]float64{models.FieldTemperature: 40})))
	first := <-a.Results()
	assert.True(t, first.Newest)
	assert.Len(t, first.Alerts, 1)

	require.True(t, a.Submit(reading(1, map[models.Field]float64{models.FieldTemperature: 20})))
	second := <-a.Results()
	assert.False(t, second.Newest)

	latest, ok := a.Latest()
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.Reading.ID)

	a.Reset()
	_, ok = a.Latest()
	assert.False(t, ok)

	a.Stop()
	stats := a.GetStats()
	assert.Equal(t, uint64(2), stats["processed"])
}
