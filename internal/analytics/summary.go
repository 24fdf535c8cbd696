package analytics

import (
	"math"
	"time"

	"proby/internal/models"
)

// Point одна точка ряда
type Point struct {
	Value float64
	Time  time.Time
}

// Series хронологический ряд одного поля со статистикой
type Series struct {
	Field  models.Field
	Points []Point
	Min    float64
	Peak   float64
	Avg    float64
	Last   float64
}

// Empty нет ни одной точки
func (s Series) Empty() bool {
	return len(s.Points) == 0
}

// Values значения ряда без времени
func (s Series) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Summarize строит ряд поля по списку показаний (от новых к старым).
// Показания без поля пропускаются.
func Summarize(readings []models.Reading, field models.Field) Series {
	s := Series{Field: field, Min: math.MaxFloat64, Peak: -math.MaxFloat64}

	sum := 0.0
	for i := len(readings) - 1; i >= 0; i-- {
		v, ok := readings[i].Value(field)
		if !ok {
			continue
		}
		s.Points = append(s.Points, Point{Value: v, Time: readings[i].CreatedAt})
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Peak {
			s.Peak = v
		}
	}

	if len(s.Points) == 0 {
		s.Min, s.Peak = 0, 0
		return s
	}

	s.Avg = sum / float64(len(s.Points))
	s.Last = s.Points[len(s.Points)-1].Value

	return s
}
