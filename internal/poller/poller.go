// Package poller периодически запрашивает последние показания, ведет
// состояние связи с устройством и пересчитывает оповещения.
package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"proby/internal/analytics"
	"proby/internal/liveness"
	"proby/internal/metrics"
	"proby/internal/models"
)

var ErrInvalidInterval = errors.New("poll interval must be positive")

// Fetcher источник последних показаний
type Fetcher interface {
	Latest(ctx context.Context, limit int) ([]models.Reading, error)
}

// Snapshot состояние клиента после очередного цикла
type Snapshot struct {
	Readings   []models.Reading
	Alerts     []analytics.Alert
	State      liveness.State
	Status     liveness.Status
	Err        error
	LastUpdate time.Time
	Polls      int
}

// Latest самое свежее показание
func (s Snapshot) Latest() (models.Reading, bool) {
	if len(s.Readings) == 0 {
		return models.Reading{}, false
	}
	return s.Readings[0], true
}

// Poller цикл опроса
type Poller struct {
	fetcher  Fetcher
	tracker  liveness.Tracker
	table    analytics.Table
	interval time.Duration
	limit    int
	now      func() time.Time

	mu        sync.Mutex
	snap      Snapshot
	inFlight  atomic.Bool
	reconnect chan struct{}
}

// New создает poller
func New(fetcher Fetcher, tracker liveness.Tracker, table analytics.Table, interval time.Duration, limit int) (*Poller, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	p := &Poller{
		fetcher:   fetcher,
		tracker:   tracker,
		table:     table,
		interval:  interval,
		limit:     limit,
		now:       time.Now,
		reconnect: make(chan struct{}, 1),
	}
	p.snap = Snapshot{
		Alerts: analytics.Evaluate(nil, table),
		Status: liveness.Searching,
	}

	return p, nil
}

// Snapshot текущее состояние
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Table таблица порогов
func (p *Poller) Table() analytics.Table {
	return p.table
}

// Poll выполняет один цикл: запрос, трекер, оценка порогов.
// Возвращает false, если цикл пропущен: опрос на паузе или предыдущий запрос еще выполняется.
// Ошибка запроса не меняет состояние трекера.
func (p *Poller) Poll(ctx context.Context) (Snapshot, bool) {
	if p.Snapshot().State.Paused() {
		return p.Snapshot(), false
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.PollsTotal.WithLabelValues("skipped").Inc()
		return p.Snapshot(), false
	}
	defer p.inFlight.Store(false)

	readings, err := p.fetcher.Latest(ctx, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Polls++

	if err != nil {
		metrics.PollsTotal.WithLabelValues("error").Inc()
		p.snap.Err = err
		return p.snap, true
	}

	metrics.PollsTotal.WithLabelValues("success").Inc()

	state := p.tracker.Observe(p.snap.State, liveness.LatestOf(readings))
	p.snap.State = state
	p.snap.Status = p.tracker.Status(state)
	p.snap.Readings = readings
	p.snap.Alerts = analytics.EvaluateLatest(readings, p.table)
	p.snap.Err = nil
	p.snap.LastUpdate = p.now()

	metrics.LivenessStatus.Set(float64(p.snap.Status))

	return p.snap, true
}

// Reconnect сбрасывает счетчики трекера и возобновляет опрос после паузы
func (p *Poller) Reconnect() Snapshot {
	p.mu.Lock()
	wasPaused := p.snap.State.Paused()
	p.snap.State = p.tracker.Reconnect(p.snap.State)
	p.snap.Status = p.tracker.Status(p.snap.State)
	snap := p.snap
	p.mu.Unlock()

	metrics.LivenessStatus.Set(float64(snap.Status))

	if wasPaused {
		select {
		case p.reconnect <- struct{}{}:
		default:
		}
	}

	return snap
}

// Forget очищает показания в снимке (после удаления данных на сервере)
func (p *Poller) Forget() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Readings = nil
	p.snap.Alerts = analytics.Evaluate(nil, p.table)
	return p.snap
}

// Run опрашивает сразу и затем по таймеру, отправляя снимки в updates.
// На паузе таймер останавливается до Reconnect. Возвращает ошибку контекста.
func (p *Poller) Run(ctx context.Context, updates chan<- Snapshot) error {
	for {
		if err := p.runUntilPaused(ctx, updates); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.reconnect:
		}
	}
}

func (p *Poller) runUntilPaused(ctx context.Context, updates chan<- Snapshot) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		snap, polled := p.Poll(ctx)
		if polled {
			select {
			case updates <- snap:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if snap.State.Paused() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
