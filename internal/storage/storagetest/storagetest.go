// Package storagetest holds the behavioral checks every storage.Provider
// implementation must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/testutil"
)

// Factory returns an initialized, empty provider. It is called once per subtest.
type Factory func(t *testing.T) storage.Provider

var day = testutil.Day

// Run exercises the full provider contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Provider)
	}{
		{"AddAndGetHabit", testAddAndGetHabit},
		{"AddHabitValidation", testAddHabitValidation},
		{"DuplicateHabit", testDuplicateHabit},
		{"HabitOrder", testHabitOrder},
		{"DeleteHabitCascades", testDeleteHabitCascades},
		{"DeleteUnknownHabit", testDeleteUnknownHabit},
		{"RecordEvent", testRecordEvent},
		{"RecordEventUnknownHabit", testRecordEventUnknownHabit},
		{"EventsSortedByDate", testEventsSortedByDate},
		{"UpdateHabitCounters", testUpdateHabitCounters},
		{"CommitEvent", testCommitEvent},
		{"CommitEventRejected", testCommitEventRejected},
		{"CommitEventSerializes", testCommitEventSerializes},
		{"ClearAll", testClearAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			tt.fn(t, s)
		})
	}
}

func testAddAndGetHabit(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "read 10 pages", models.Daily, 2))

	h, ok, err := s.GetHabit("read")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "read", h.Name)
	assert.Equal(t, "read 10 pages", h.Description)
	assert.Equal(t, models.Daily, h.Periodicity)
	assert.Equal(t, 2, h.Streak)
	assert.Equal(t, 0, h.EventCount)
	assert.False(t, h.CreatedAt.IsZero())

	_, ok, err = s.GetHabit("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testAddHabitValidation(t *testing.T, s storage.Provider) {
	assert.ErrorIs(t, s.AddHabit("", "", models.Daily, 0), apperrors.ErrInvalidName)
	assert.ErrorIs(t, s.AddHabit("x", "", models.Periodicity("monthly"), 0), apperrors.ErrInvalidPeriodicity)
	assert.ErrorIs(t, s.AddHabit("x", "", models.Weekly, -1), apperrors.ErrInvalidStreak)

	habits, err := s.GetAllHabits()
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func testDuplicateHabit(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "first", models.Daily, 0))
	err := s.AddHabit("read", "second", models.Weekly, 5)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateHabit)

	h, _, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, "first", h.Description)
	assert.Equal(t, models.Daily, h.Periodicity)
}

func testHabitOrder(t *testing.T, s storage.Provider) {
	names := []string{"read", "run", "clean apartment", "call parents"}
	for _, n := range names {
		require.NoError(t, s.AddHabit(n, "", models.Daily, 0))
		// Backends that order by creation time need distinct timestamps
		time.Sleep(2 * time.Millisecond)
	}

	habits, err := s.GetAllHabits()
	require.NoError(t, err)
	got := make([]string, 0, len(habits))
	for _, h := range habits {
		got = append(got, h.Name)
	}
	assert.Equal(t, names, got)
}

func testDeleteHabitCascades(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 0))
	require.NoError(t, s.AddHabit("run", "", models.Daily, 0))
	require.NoError(t, s.RecordEvent(models.Habit{Name: "read", Streak: 1, EventCount: 1}, day("2025-06-01")))
	require.NoError(t, s.RecordEvent(models.Habit{Name: "run", Streak: 1, EventCount: 1}, day("2025-06-01")))

	require.NoError(t, s.DeleteHabit("read"))

	_, ok, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.False(t, ok)

	events, err := s.GetAllEvents()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "run", events[0].HabitName)

	last, err := s.GetLastEventDate("read")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	// The name is free again
	require.NoError(t, s.AddHabit("read", "", models.Weekly, 0))
}

func testDeleteUnknownHabit(t *testing.T, s storage.Provider) {
	assert.ErrorIs(t, s.DeleteHabit("ghost"), apperrors.ErrNotFound)
}

func testRecordEvent(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 0))

	last, err := s.GetLastEventDate("read")
	require.NoError(t, err)
	assert.True(t, last.IsZero(), "no events yet")

	require.NoError(t, s.RecordEvent(models.Habit{Name: "read", Streak: 1, EventCount: 1}, day("2025-06-01")))
	require.NoError(t, s.RecordEvent(models.Habit{Name: "read", Streak: 2, EventCount: 2}, day("2025-06-02")))

	h, _, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, 2, h.Streak)
	assert.Equal(t, 2, h.EventCount)

	last, err = s.GetLastEventDate("read")
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-02"), last)

	events, err := s.GetEventsFor("read")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, "2025-06-01", events[0].Day())
}

func testRecordEventUnknownHabit(t *testing.T, s storage.Provider) {
	err := s.RecordEvent(models.Habit{Name: "ghost", Streak: 1, EventCount: 1}, day("2025-06-01"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	events, err := s.GetAllEvents()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func testEventsSortedByDate(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 0))
	require.NoError(t, s.AddHabit("run", "", models.Weekly, 0))
	for _, rec := range []struct {
		habit string
		date  string
	}{
		{"read", "2025-06-03"},
		{"run", "2025-06-01"},
		{"read", "2025-06-02"},
	} {
		require.NoError(t, s.RecordEvent(models.Habit{Name: rec.habit}, day(rec.date)))
	}

	all, err := s.GetAllEvents()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02", "2025-06-03"},
		[]string{all[0].Day(), all[1].Day(), all[2].Day()})

	read, err := s.GetEventsFor("read")
	require.NoError(t, err)
	require.Len(t, read, 2)
	assert.Equal(t, "2025-06-02", read[0].Day())

	last, err := s.GetLastEventDate("read")
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-03"), last)
}

func testUpdateHabitCounters(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 4))
	require.NoError(t, s.UpdateHabitCounters("read", 1, 9))

	h, _, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, 1, h.Streak)
	assert.Equal(t, 9, h.EventCount)

	assert.ErrorIs(t, s.UpdateHabitCounters("ghost", 0, 0), apperrors.ErrNotFound)
}

func testCommitEvent(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 3))

	var sawLast time.Time
	h, on, err := s.CommitEvent("read", func(habit models.Habit, last time.Time) (models.Habit, time.Time, error) {
		sawLast = last
		habit.Streak++
		habit.EventCount++
		return habit, day("2025-06-01"), nil
	})
	require.NoError(t, err)
	assert.True(t, sawLast.IsZero())
	assert.Equal(t, 4, h.Streak)
	assert.Equal(t, 1, h.EventCount)
	assert.Equal(t, day("2025-06-01"), on)

	_, _, err = s.CommitEvent("read", func(habit models.Habit, last time.Time) (models.Habit, time.Time, error) {
		sawLast = last
		return habit, day("2025-06-02"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-01"), sawLast)

	_, _, err = s.CommitEvent("ghost", func(habit models.Habit, last time.Time) (models.Habit, time.Time, error) {
		t.Fatal("decider must not run for an unknown habit")
		return habit, last, nil
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func testCommitEventRejected(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 3))

	rejected := errors.New("rejected")
	_, _, err := s.CommitEvent("read", func(habit models.Habit, last time.Time) (models.Habit, time.Time, error) {
		return models.Habit{}, time.Time{}, rejected
	})
	assert.ErrorIs(t, err, rejected)

	h, _, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Streak)
	assert.Equal(t, 0, h.EventCount)

	events, err := s.GetEventsFor("read")
	require.NoError(t, err)
	assert.Empty(t, events)
}

// testCommitEventSerializes runs concurrent deciders that each accept only
// when no event exists yet. Exactly one may win.
func testCommitEventSerializes(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 0))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.CommitEvent("read", func(habit models.Habit, last time.Time) (models.Habit, time.Time, error) {
				if !last.IsZero() {
					return models.Habit{}, time.Time{}, apperrors.ErrEventTooSoon
				}
				habit.Streak++
				habit.EventCount++
				return habit, day("2025-06-01"), nil
			})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrEventTooSoon)
	}
	assert.Equal(t, 1, accepted)

	h, _, err := s.GetHabit("read")
	require.NoError(t, err)
	assert.Equal(t, 1, h.EventCount)
	assert.Equal(t, 1, h.Streak)
}

func testClearAll(t *testing.T, s storage.Provider) {
	require.NoError(t, s.AddHabit("read", "", models.Daily, 0))
	require.NoError(t, s.RecordEvent(models.Habit{Name: "read", Streak: 1, EventCount: 1}, day("2025-06-01")))

	require.NoError(t, s.ClearAll())

	habits, err := s.GetAllHabits()
	require.NoError(t, err)
	assert.Empty(t, habits)
	events, err := s.GetAllEvents()
	require.NoError(t, err)
	assert.Empty(t, events)

	// Clearing an empty store is fine
	require.NoError(t, s.ClearAll())
}
