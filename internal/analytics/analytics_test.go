package analytics

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

var day = testutil.Day

const today = "2025-06-15"

func newTestAnalyzer(t *testing.T) (*Analyzer, *memory.Store) {
	t.Helper()
	store := memory.New()
	return New(store, testutil.ClockOn(today), time.UTC), store
}

// seed adds a habit and optionally one event daysAgo days before today.
func seed(t *testing.T, store *memory.Store, name string, p models.Periodicity, streak, count int, daysAgo ...int) {
	t.Helper()
	require.NoError(t, store.AddHabit(name, "", p, 0))
	for _, d := range daysAgo {
		require.NoError(t, store.RecordEvent(models.Habit{Name: name}, day(today).AddDate(0, 0, -d)))
	}
	require.NoError(t, store.UpdateHabitCounters(name, streak, count))
}

func TestLongestOverallStreak(t *testing.T) {
	a, store := newTestAnalyzer(t)

	_, err := a.LongestOverallStreak()
	assert.ErrorIs(t, err, apperrors.ErrNoHabits)

	seed(t, store, "A", models.Daily, 3, 3)
	seed(t, store, "B", models.Weekly, 5, 5)

	h, err := a.LongestOverallStreak()
	require.NoError(t, err)
	assert.Equal(t, "B", h.Name)
	assert.Equal(t, 5, h.Streak)
}

func TestLongestOverallStreakTiesAndZero(t *testing.T) {
	a, store := newTestAnalyzer(t)
	seed(t, store, "first", models.Daily, 0, 0)

	h, err := a.LongestOverallStreak()
	require.NoError(t, err)
	assert.Equal(t, "first", h.Name, "a lone habit with no streak still wins")

	seed(t, store, "second", models.Daily, 0, 0)
	h, err = a.LongestOverallStreak()
	require.NoError(t, err)
	assert.Equal(t, "first", h.Name)
}

func TestIsDailyCompletedToday(t *testing.T) {
	a, store := newTestAnalyzer(t)
	seed(t, store, "done", models.Daily, 1, 1, 0)
	seed(t, store, "yesterday", models.Daily, 1, 1, 1)
	seed(t, store, "never", models.Daily, 0, 0)

	for name, want := range map[string]bool{"done": true, "yesterday": false, "never": false} {
		got, err := a.IsDailyCompletedToday(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := a.IsDailyCompletedToday("ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIsWeeklyCompletedThisWeek(t *testing.T) {
	a, store := newTestAnalyzer(t)
	seed(t, store, "three", models.Weekly, 1, 1, 3)
	seed(t, store, "seven", models.Weekly, 1, 1, 7)
	seed(t, store, "eight", models.Weekly, 1, 1, 8)
	seed(t, store, "never", models.Weekly, 0, 0)

	for name, want := range map[string]bool{"three": true, "seven": false, "eight": false, "never": false} {
		got, err := a.IsWeeklyCompletedThisWeek(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := a.IsWeeklyCompletedThisWeek("ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCompletionStatus(t *testing.T) {
	a, store := newTestAnalyzer(t)
	seed(t, store, "clean", models.Weekly, 2, 2, 3)
	seed(t, store, "read", models.Daily, 4, 4, 0)
	seed(t, store, "new", models.Daily, 0, 0)

	s, err := a.CompletionStatus("clean")
	require.NoError(t, err)
	assert.True(t, s.Completed)
	assert.Equal(t, day("2025-06-12"), s.LastCompleted)
	assert.Equal(t, day("2025-06-19"), s.NextDue)
	assert.Equal(t, 4, s.DaysUntilDue)

	s, err = a.CompletionStatus("read")
	require.NoError(t, err)
	assert.True(t, s.Completed)
	assert.Equal(t, 1, s.DaysUntilDue)

	s, err = a.CompletionStatus("new")
	require.NoError(t, err)
	assert.False(t, s.Completed)
	assert.True(t, s.LastCompleted.IsZero())
	assert.Equal(t, day(today), s.NextDue)

	_, err = a.CompletionStatus("ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListOverdueHabits(t *testing.T) {
	a, store := newTestAnalyzer(t)

	overdue, err := a.ListOverdueHabits()
	require.NoError(t, err)
	assert.Empty(t, overdue)

	seed(t, store, "daily today", models.Daily, 1, 1, 0)
	seed(t, store, "daily yesterday", models.Daily, 1, 1, 1)
	seed(t, store, "weekly six", models.Weekly, 1, 1, 6)
	seed(t, store, "weekly eight", models.Weekly, 1, 1, 8)
	seed(t, store, "fresh", models.Weekly, 0, 0)

	overdue, err = a.ListOverdueHabits()
	require.NoError(t, err)

	names := make([]string, 0, len(overdue))
	for _, o := range overdue {
		names = append(names, o.Habit.Name)
	}
	assert.Equal(t, []string{"daily yesterday", "weekly eight", "fresh"}, names)

	assert.Equal(t, 8, overdue[1].DaysSince)
	assert.False(t, overdue[1].Never())
	assert.True(t, overdue[2].Never())
}

func TestBiggestStruggle(t *testing.T) {
	a, store := newTestAnalyzer(t)

	_, err := a.BiggestStruggle()
	assert.ErrorIs(t, err, apperrors.ErrNoHabits)

	seed(t, store, "Perfect", models.Daily, 1, 1)
	seed(t, store, "Unused", models.Daily, 0, 0)

	_, err = a.BiggestStruggle()
	assert.ErrorIs(t, err, apperrors.ErrNoneFound)

	seed(t, store, "Tough", models.Daily, 1, 5)
	seed(t, store, "Meh", models.Weekly, 2, 4)

	s, err := a.BiggestStruggle()
	require.NoError(t, err)
	assert.Equal(t, "Tough", s.Habit.Name)
	assert.InDelta(t, 0.8, s.Score, 1e-9)
}

func TestBiggestStruggleTieGoesToFirst(t *testing.T) {
	a, store := newTestAnalyzer(t)
	seed(t, store, "one", models.Daily, 1, 2)
	seed(t, store, "two", models.Daily, 2, 4)

	s, err := a.BiggestStruggle()
	require.NoError(t, err)
	assert.Equal(t, "one", s.Habit.Name)
	assert.InDelta(t, 0.5, s.Score, 1e-9)
}

func TestReport(t *testing.T) {
	a, store := newTestAnalyzer(t)

	r, err := a.Report()
	require.NoError(t, err)
	assert.Zero(t, r.Habits)
	assert.Nil(t, r.Longest)
	assert.Nil(t, r.Struggle)
	assert.Empty(t, r.Overdue)

	seed(t, store, "read", models.Daily, 3, 3, 0, 1, 2)
	seed(t, store, "run", models.Weekly, 1, 4, 10)

	r, err = a.Report()
	require.NoError(t, err)
	assert.Equal(t, day(today), r.Today)
	assert.Equal(t, 2, r.Habits)
	assert.Equal(t, 4, r.Events)
	require.NotNil(t, r.Longest)
	assert.Equal(t, "read", r.Longest.Name)
	require.NotNil(t, r.Struggle)
	assert.Equal(t, "run", r.Struggle.Habit.Name)
	require.Len(t, r.Overdue, 1)
	assert.Equal(t, "run", r.Overdue[0].Habit.Name)
	require.Len(t, r.Statuses, 2)
	assert.True(t, r.Statuses[0].Completed)
	assert.False(t, r.Statuses[1].Completed)
}
