// Package simulator имитирует датчик: случайное блуждание значений вокруг
// рабочих уровней с редкими выбросами за пороги.
package simulator

import (
	"context"
	"log"
	"math"
	"math/rand"
	"time"

	"proby/internal/models"
)

// Inserter принимает показания (HTTP клиент API)
type Inserter interface {
	Insert(ctx context.Context, values map[models.Field]float64) (models.Reading, error)
}

type profile struct {
	base, step, min, max float64
}

var profiles = map[models.Field]profile{
	models.FieldTemperature:       {base: 21.5, step: 0.4, min: -10, max: 50},
	models.FieldHumidity:          {base: 45, step: 1.5, min: 0, max: 100},
	models.FieldPressure:          {base: 1000, step: 2, min: 900, max: 1100},
	models.FieldVOCIndex:          {base: 120, step: 8, min: 0, max: 500},
	models.FieldPH:                {base: 5.5, step: 0.1, min: 0, max: 14},
	models.FieldMicrobialActivity: {base: 500, step: 25, min: 0, max: 5000},
}

// Walker генерирует следующее показание по предыдущему
type Walker struct {
	schema    models.Schema
	rnd       *rand.Rand
	current   map[models.Field]float64
	spikeRate float64
}

// NewWalker создает генератор для полей schema
func NewWalker(schema models.Schema, seed int64) *Walker {
	w := &Walker{
		schema:    schema,
		rnd:       rand.New(rand.NewSource(seed)),
		current:   make(map[models.Field]float64, len(schema)),
		spikeRate: 0.05,
	}
	for _, f := range schema {
		w.current[f] = profiles[f].base
	}
	return w
}

// Next возвращает следующий набор значений
func (w *Walker) Next() map[models.Field]float64 {
	out := make(map[models.Field]float64, len(w.schema))
	for _, f := range w.schema {
		p := profiles[f]

		v := w.current[f] + (w.rnd.Float64()*2-1)*p.step
		// Возврат к рабочему уровню
		v += (p.base - v) * 0.1
		v = math.Max(p.min, math.Min(p.max, v))
		w.current[f] = v

		if w.rnd.Float64() < w.spikeRate {
			v = math.Min(p.max, v+p.step*20)
		}

		out[f] = round(v, f)
	}
	return out
}

func round(v float64, f models.Field) float64 {
	info, ok := f.Info()
	if !ok {
		return v
	}
	scale := math.Pow(10, float64(info.Precision+1))
	return math.Round(v*scale) / scale
}

// Run отправляет показания каждые interval; count > 0 ограничивает число отправок.
// Ошибки отправки логируются и не прерывают работу.
func Run(ctx context.Context, dst Inserter, w *Walker, interval time.Duration, count int) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for {
		values := w.Next()
		reading, err := dst.Insert(ctx, values)
		if err != nil {
			log.Printf("Failed to submit reading: %v", err)
		} else {
			sent++
			log.Printf("Submitted reading %d: %s\n", reading.ID, describe(w.schema, values))
		}

		if count > 0 && sent >= count {
			return sent, nil
		}

		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		case <-ticker.C:
		}
	}
}

func describe(schema models.Schema, values map[models.Field]float64) string {
	s := ""
	for i, f := range schema {
		if i > 0 {
			s += " "
		}
		s += string(f) + "=" + f.Format(values[f])
	}
	return s
}
