// Package liveness определяет, присылает ли устройство новые данные,
// по идентификатору самого свежего показания в каждом опросе.
package liveness

import (
	"sort"

	"proby/internal/models"
)

const (
	DefaultPauseAfter   = 5
	DefaultConnectAfter = 3
)

// Status состояние связи с устройством
type Status int

const (
	Searching Status = iota
	Connected
	Paused
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Paused:
		return "paused"
	default:
		return "searching"
	}
}

// LatestID идентификатор самого свежего показания; Present=false если строк нет
type LatestID struct {
	ID      int64
	Present bool
}

// Absent пустой ответ хранилища
var Absent = LatestID{}

// ID возвращает присутствующий идентификатор
func ID(id int64) LatestID {
	return LatestID{ID: id, Present: true}
}

// LatestOf берет идентификатор первого показания (список отсортирован от новых к старым)
func LatestOf(readings []models.Reading) LatestID {
	if len(readings) == 0 {
		return Absent
	}
	return ID(readings[0].ID)
}

// State неизменяемое состояние трекера между опросами
type State struct {
	lastSeen  LatestID
	observed  bool
	unchanged int
	distinct  []int64
	paused    bool
}

// LastSeen последний наблюдавшийся идентификатор
func (s State) LastSeen() (LatestID, bool) {
	return s.lastSeen, s.observed
}

// Unchanged число подряд идущих опросов без нового идентификатора
func (s State) Unchanged() int {
	return s.unchanged
}

// DistinctIDs наблюдавшиеся идентификаторы по возрастанию
func (s State) DistinctIDs() []int64 {
	out := make([]int64, len(s.distinct))
	copy(out, s.distinct)
	return out
}

// Paused остановлен ли опрос
func (s State) Paused() bool {
	return s.paused
}

func (s State) withDistinct(id int64) []int64 {
	i := sort.Search(len(s.distinct), func(i int) bool { return s.distinct[i] >= id })
	if i < len(s.distinct) && s.distinct[i] == id {
		return s.distinct
	}
	out := make([]int64, 0, len(s.distinct)+1)
	out = append(out, s.distinct[:i]...)
	out = append(out, id)
	out = append(out, s.distinct[i:]...)
	return out
}

// Tracker пороги эвристики
type Tracker struct {
	PauseAfter   int
	ConnectAfter int
}

// NewTracker создает трекер; неположительные пороги заменяются значениями по умолчанию
func NewTracker(pauseAfter, connectAfter int) Tracker {
	if pauseAfter <= 0 {
		pauseAfter = DefaultPauseAfter
	}
	if connectAfter <= 0 {
		connectAfter = DefaultConnectAfter
	}
	return Tracker{PauseAfter: pauseAfter, ConnectAfter: connectAfter}
}

// Observe применяет результат одного успешного опроса.
// На паузе наблюдения игнорируются до Reconnect.
func (t Tracker) Observe(s State, latest LatestID) State {
	if s.paused {
		return s
	}

	if s.observed && latest == s.lastSeen {
		s.unchanged++
		if s.unchanged >= t.PauseAfter {
			s.paused = true
		}
		return s
	}

	s.observed = true
	s.lastSeen = latest
	s.unchanged = 0
	if latest.Present {
		s.distinct = s.withDistinct(latest.ID)
	}

	return s
}

// Reconnect сбрасывает счетчики и снимает паузу; lastSeen сохраняется
func (t Tracker) Reconnect(s State) State {
	s.unchanged = 0
	s.distinct = nil
	s.paused = false
	return s
}

// Status вычисляет состояние связи
func (t Tracker) Status(s State) Status {
	switch {
	case s.paused:
		return Paused
	case len(s.distinct) >= t.ConnectAfter:
		return Connected
	default:
		return Searching
	}
}
