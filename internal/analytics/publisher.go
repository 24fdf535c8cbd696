package analytics

import (
	"log"
	"sync"

	"proby/internal/metrics"
)

// Publisher переносит результаты анализа в Prometheus.
// Gauges последнего показания двигаются только вперед по id, независимо от
// порядка, в котором воркеры отдают результаты.
type Publisher struct {
	mu      sync.Mutex
	applied int64
}

// NewPublisher создает публикатор
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish учитывает оповещения результата и возвращает true, если gauges обновлены
func (p *Publisher) Publish(result Result) bool {
	for _, alert := range result.Alerts {
		metrics.AlertsRaised.WithLabelValues(string(alert.Field), string(alert.Severity)).Inc()
		log.Printf("ALERT: reading=%d field=%s severity=%s %s (%s)\n",
			result.Reading.ID, alert.Field, alert.Severity, alert.Message, alert.Threshold)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if result.Reading.ID <= p.applied {
		return false
	}
	p.applied = result.Reading.ID

	metrics.FieldValue.Reset()
	for _, f := range result.Reading.Fields() {
		metrics.FieldValue.WithLabelValues(string(f)).Set(result.Reading.Values[f])
	}
	metrics.ActiveAlerts.Set(float64(len(result.Alerts)))

	return true
}

// Applied id показания, отраженного в gauges
func (p *Publisher) Applied() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

// Run публикует результаты до закрытия канала
func (p *Publisher) Run(results <-chan Result) {
	for result := range results {
		p.Publish(result)
	}
}
