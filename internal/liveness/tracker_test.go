package liveness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proby/internal/models"
)

func observeAll(tr Tracker, s State, ids ...LatestID) State {
	for _, id := range ids {
		s = tr.Observe(s, id)
	}
	return s
}

func TestPausesExactlyOnFifthRepeat(t *testing.T) {
	tr := NewTracker(0, 0)
	s := tr.Observe(State{}, ID(10))

	for i := 1; i <= 4; i++ {
		s = tr.Observe(s, ID(10))
		require.Equal(t, i, s.Unchanged())
		require.NotEqual(t, Paused, tr.Status(s), "paused too early after %d repeats", i)
	}

	s = tr.Observe(s, ID(10))
	assert.Equal(t, 5, s.Unchanged())
	assert.Equal(t, Paused, tr.Status(s))
	assert.True(t, s.Paused())
}

func TestConnectsOnThirdDistinctID(t *testing.T) {
	tr := NewTracker(5, 3)
	var s State

	s = observeAll(tr, s, ID(1), ID(1), ID(1), ID(2), ID(2))
	require.Equal(t, Searching, tr.Status(s))
	require.Len(t, s.DistinctIDs(), 2)

	s = tr.Observe(s, ID(3))
	assert.Equal(t, Connected, tr.Status(s))
	assert.Equal(t, []int64{1, 2, 3}, s.DistinctIDs())
	assert.Equal(t, 0, s.Unchanged())
}

func TestRepeatsBelowThresholdDoNotPause(t *testing.T) {
	tr := NewTracker(5, 3)
	var s State

	for id := int64(1); id <= 10; id++ {
		s = observeAll(tr, s, ID(id), ID(id), ID(id), ID(id), ID(id))
		require.Equal(t, 4, s.Unchanged())
		require.False(t, s.Paused())
	}
	assert.Equal(t, Connected, tr.Status(s))
}

func TestObserveWhilePausedIsIgnored(t *testing.T) {
	tr := NewTracker(2, 3)
	s := observeAll(tr, State{}, ID(1), ID(1), ID(1))
	require.Equal(t, Paused, tr.Status(s))

	after := tr.Observe(s, ID(99))
	assert.Equal(t, s, after)
}

func TestReconnectResetsCounters(t *testing.T) {
	tr := NewTracker(5, 3)

	states := map[string]State{
		"initial":   {},
		"searching": observeAll(tr, State{}, ID(1), ID(1)),
		"connected": observeAll(tr, State{}, ID(1), ID(2), ID(3), ID(3)),
		"paused":    observeAll(tr, State{}, ID(1), ID(2), ID(3), ID(3), ID(3), ID(3), ID(3), ID(3)),
	}

	for name, s := range states {
		t.Run(name, func(t *testing.T) {
			r := tr.Reconnect(s)
			assert.Equal(t, 0, r.Unchanged())
			assert.Empty(t, r.DistinctIDs())
			assert.False(t, r.Paused())
			assert.Equal(t, Searching, tr.Status(r))

			last, ok := s.LastSeen()
			rLast, rOK := r.LastSeen()
			assert.Equal(t, ok, rOK)
			assert.Equal(t, last, rLast)
		})
	}
}

func TestSilentDevicePausesAgainAfterReconnect(t *testing.T) {
	tr := NewTracker(5, 3)
	s := observeAll(tr, State{}, ID(4), ID(4), ID(4), ID(4), ID(4), ID(4))
	require.True(t, s.Paused())

	s = tr.Reconnect(s)
	s = observeAll(tr, s, ID(4), ID(4), ID(4), ID(4))
	require.False(t, s.Paused())
	s = tr.Observe(s, ID(4))
	assert.True(t, s.Paused())
}

func TestAbsentIdentifier(t *testing.T) {
	tr := NewTracker(5, 3)

	s := tr.Observe(State{}, Absent)
	last, ok := s.LastSeen()
	require.True(t, ok)
	assert.Equal(t, Absent, last)
	assert.Equal(t, 0, s.Unchanged())
	assert.Empty(t, s.DistinctIDs())

	s = tr.Observe(s, Absent)
	assert.Equal(t, 1, s.Unchanged())

	s = tr.Observe(s, ID(1))
	assert.Equal(t, 0, s.Unchanged())
	assert.Equal(t, []int64{1}, s.DistinctIDs())
}

func TestObserveDoesNotMutateInput(t *testing.T) {
	tr := NewTracker(5, 3)
	before := observeAll(tr, State{}, ID(1), ID(2))
	snapshot := before.DistinctIDs()

	_ = tr.Observe(before, ID(3))
	assert.Equal(t, snapshot, before.DistinctIDs())
}

func TestLatestOf(t *testing.T) {
	assert.Equal(t, Absent, LatestOf(nil))
	assert.Equal(t, ID(9), LatestOf([]models.Reading{{ID: 9}, {ID: 8}}))
}
