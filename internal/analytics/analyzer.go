package analytics

import (
	"errors"
	"sync"

	"proby/internal/models"
)

var ErrInvalidRange = errors.New("invalid threshold range")

// Result результат оценки одного показания
type Result struct {
	Reading models.Reading
	Alerts  []Alert
	// Newest true если показание новее всех оцененных ранее
	Newest bool
}

// Analyzer оценивает поступающие показания в пуле горутин
type Analyzer struct {
	table       Table
	mu          sync.RWMutex
	latest      *Result
	processed   uint64
	dropped     uint64
	readingChan chan models.Reading
	resultsChan chan Result
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewAnalyzer создает новый анализатор
func NewAnalyzer(table Table, queueSize int) *Analyzer {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Analyzer{
		table:       table,
		readingChan: make(chan models.Reading, queueSize),
		resultsChan: make(chan Result, queueSize),
		stopChan:    make(chan struct{}),
	}
}

// Start запускает обработчики в goroutines
func (a *Analyzer) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.process()
	}
}

// Stop останавливает анализатор
func (a *Analyzer) Stop() {
	close(a.stopChan)
	a.wg.Wait()
	close(a.resultsChan)
}

// Submit ставит показание в очередь; при полной очереди показание пропускается
func (a *Analyzer) Submit(r models.Reading) bool {
	select {
	case a.readingChan <- r:
		return true
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
		return false
	}
}

// Results возвращает канал с результатами
func (a *Analyzer) Results() <-chan Result {
	return a.resultsChan
}

// Latest возвращает оценку самого нового показания
func (a *Analyzer) Latest() (Result, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.latest == nil {
		return Result{}, false
	}
	return *a.latest, true
}

// Table таблица порогов анализатора
func (a *Analyzer) Table() Table {
	return a.table
}

func (a *Analyzer) process() {
	defer a.wg.Done()

	for {
		select {
		case <-a.stopChan:
			return
		case r := <-a.readingChan:
			result := a.evaluate(r)
			select {
			case a.resultsChan <- result:
			default:
				// Канал результатов полон
			}
		}
	}
}

func (a *Analyzer) evaluate(r models.Reading) Result {
	result := Result{Reading: r, Alerts: Evaluate(&r, a.table)}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.processed++
	if a.latest == nil || r.ID > a.latest.Reading.ID {
		result.Newest = true
		stored := result
		a.latest = &stored
	}

	return result
}

// Reset забывает последнее оцененное показание (после очистки хранилища)
func (a *Analyzer) Reset() {
	a.mu.Lock()
	a.latest = nil
	a.mu.Unlock()
}

// GetStats возвращает статистику анализатора
func (a *Analyzer) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var latestID int64
	if a.latest != nil {
		latestID = a.latest.Reading.ID
	}

	return map[string]interface{}{
		"processed":  a.processed,
		"dropped":    a.dropped,
		"latest_id":  latestID,
		"fields":     len(a.table),
		"queue_size": len(a.readingChan),
	}
}
