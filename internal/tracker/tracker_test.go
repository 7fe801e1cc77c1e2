package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/memory"
	"github.com/julianstephens/habitlit/internal/testutil"
)

func newTestTracker(t *testing.T, today string) (*Tracker, *memory.Store, *testutil.StubClock) {
	t.Helper()
	store := memory.New()
	clock := testutil.ClockOn(today)
	return New(store, clock, time.UTC), store, clock
}

func TestCompleteConsecutiveDays(t *testing.T) {
	tr, store, clock := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))

	const n = 5
	for i := 0; i < n; i++ {
		c, err := tr.Complete("read", "")
		require.NoError(t, err)
		assert.False(t, c.Reset)
		assert.Equal(t, tr.Today(), c.Date)
		clock.AdvanceDays(1)
	}

	h, _, err := store.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, n, h.Streak)
	assert.Equal(t, n, h.EventCount)
}

func TestCompleteWeeklyOnTime(t *testing.T) {
	tr, store, clock := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("clean", "", models.Weekly, 0))

	for i := 0; i < 3; i++ {
		_, err := tr.Complete("clean", "")
		require.NoError(t, err)
		clock.AdvanceDays(7)
	}

	h, _, _ := store.GetHabit("clean")
	assert.Equal(t, 3, h.Streak)
	assert.Equal(t, 3, h.EventCount)
}

func TestCompleteAfterGapResets(t *testing.T) {
	tr, store, clock := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))

	for i := 0; i < 3; i++ {
		_, err := tr.Complete("read", "")
		require.NoError(t, err)
		clock.AdvanceDays(1)
	}
	clock.AdvanceDays(2)

	c, err := tr.Complete("read", "")
	require.NoError(t, err)
	assert.True(t, c.Reset)
	assert.Equal(t, 1, c.Habit.Streak)
	assert.Equal(t, 4, c.Habit.EventCount)
}

func TestCompleteSeededStreak(t *testing.T) {
	tr, store, _ := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("meditate", "", models.Daily, 10))

	c, err := tr.Complete("meditate", "")
	require.NoError(t, err)
	assert.Equal(t, 11, c.Habit.Streak)
	assert.Equal(t, 1, c.Habit.EventCount)
}

func TestCompleteRejections(t *testing.T) {
	tr, store, _ := newTestTracker(t, "2025-06-10")
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))

	_, err := tr.Complete("read", "2025-06-11")
	assert.ErrorIs(t, err, apperrors.ErrFutureDate)

	_, err = tr.Complete("read", "10/06/2025")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)

	_, err = tr.Complete("ghost", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = tr.Complete("read", "")
	require.NoError(t, err)
	_, err = tr.Complete("read", "")
	assert.ErrorIs(t, err, apperrors.ErrEventTooSoon)

	// None of the rejected calls left a trace
	h, _, _ := store.GetHabit("read")
	assert.Equal(t, 1, h.EventCount)
	assert.Equal(t, 1, h.Streak)
	events, err := store.GetEventsFor("read")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCompleteBackdated(t *testing.T) {
	tr, store, _ := newTestTracker(t, "2025-06-10")
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))

	c, err := tr.Complete("read", "2025-06-09")
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-09"), c.Date)

	c, err = tr.Complete("read", "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Habit.Streak)

	// Earlier than the last event is always too soon
	_, err = tr.Complete("read", "2025-06-01")
	assert.ErrorIs(t, err, apperrors.ErrEventTooSoon)
}

func TestTodayUsesTimezone(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	clock := testutil.NewStubClock(time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC))
	tr := New(memory.New(), clock, la)
	assert.Equal(t, day("2025-06-01"), tr.Today())
}

func TestReplay(t *testing.T) {
	events := func(dates ...string) []models.Event {
		out := make([]models.Event, 0, len(dates))
		for _, d := range dates {
			out = append(out, models.Event{CompletedAt: day(d)})
		}
		return out
	}

	streak, count := Replay(models.Daily, events("2025-06-01", "2025-06-02", "2025-06-03"))
	assert.Equal(t, 3, streak)
	assert.Equal(t, 3, count)

	streak, count = Replay(models.Daily, events("2025-06-01", "2025-06-02", "2025-06-05", "2025-06-06"))
	assert.Equal(t, 2, streak)
	assert.Equal(t, 4, count)

	streak, count = Replay(models.Weekly, events("2025-06-01", "2025-06-08", "2025-06-15"))
	assert.Equal(t, 3, streak)
	assert.Equal(t, 3, count)

	streak, count = Replay(models.Weekly, nil)
	assert.Equal(t, 0, streak)
	assert.Equal(t, 0, count)
}

func TestCheckAndRebuild(t *testing.T) {
	tr, store, clock := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))
	require.NoError(t, store.AddHabit("run", "", models.Weekly, 0))

	for i := 0; i < 3; i++ {
		_, err := tr.Complete("read", "")
		require.NoError(t, err)
		clock.AdvanceDays(1)
	}
	_, err := tr.Complete("run", "")
	require.NoError(t, err)

	found, err := tr.Check()
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, store.UpdateHabitCounters("read", 7, 2))

	found, err = tr.Check()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, Discrepancy{Habit: "read", StoredStreak: 7, StoredCount: 2, ExpectedStreak: 3, ExpectedCount: 3}, found[0])

	fixed, err := tr.Rebuild()
	require.NoError(t, err)
	assert.Len(t, fixed, 1)

	h, _, _ := store.GetHabit("read")
	assert.Equal(t, 3, h.Streak)
	assert.Equal(t, 3, h.EventCount)

	found, err = tr.Check()
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLookup(t *testing.T) {
	tr, store, _ := newTestTracker(t, "2025-06-01")
	require.NoError(t, store.AddHabit("read", "pages", models.Daily, 0))

	h, err := tr.Lookup("read")
	require.NoError(t, err)
	assert.Equal(t, "pages", h.Description)

	_, err = tr.Lookup("ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
