package tracker

import (
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Tracker records habit completions. It owns no state of its own; the
// provider is the single source of truth.
type Tracker struct {
	store storage.Provider
	clock utils.Clock
	loc   *time.Location
}

// Completion describes an accepted event.
type Completion struct {
	Habit models.Habit
	Date  time.Time
	// Reset is true when the streak had lapsed and restarted at 1
	Reset bool
}

// Discrepancy is a habit whose cached counters disagree with its event history.
type Discrepancy struct {
	Habit          string
	StoredStreak   int
	StoredCount    int
	ExpectedStreak int
	ExpectedCount  int
}

func New(store storage.Provider, clock utils.Clock, loc *time.Location) *Tracker {
	if clock == nil {
		clock = utils.RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{store: store, clock: clock, loc: loc}
}

// Today returns the current civil date in the tracker's timezone.
func (t *Tracker) Today() time.Time {
	return utils.Today(t.clock, t.loc)
}

// Complete records an event for the named habit on date (YYYY-MM-DD, blank
// for today). Validation and the counter update happen in one storage
// transaction.
func (t *Tracker) Complete(name, date string) (Completion, error) {
	today := t.Today()
	proposed, err := ParseEventDate(date, today)
	if err != nil {
		return Completion{}, err
	}

	var reset bool
	habit, on, err := t.store.CommitEvent(name, func(h models.Habit, last time.Time) (models.Habit, time.Time, error) {
		updated, r, err := ApplyEvent(h, last, proposed, today)
		if err != nil {
			return models.Habit{}, time.Time{}, err
		}
		reset = r
		return updated, proposed, nil
	})
	if err != nil {
		return Completion{}, err
	}

	if reset {
		logger.Info("Streak reset due to inactivity", "habit", name)
	}
	logger.Debug("Event recorded", "habit", name, "date", utils.FormatDate(on), "streak", habit.Streak, "events", habit.EventCount)

	return Completion{Habit: habit, Date: on, Reset: reset}, nil
}

// Replay recomputes a habit's counters from its events in date order, using
// each event's own date as the current day.
func Replay(p models.Periodicity, events []models.Event) (streak, count int) {
	var last time.Time
	for _, e := range events {
		if ShouldResetStreak(p, last, e.CompletedAt) {
			streak = 0
		}
		if !IsTooSoon(p, last, e.CompletedAt) {
			streak++
		}
		count++
		last = e.CompletedAt
	}
	return streak, count
}

// Check compares every habit's cached counters with a replay of its events.
// It reports streaks reconstructed from history; a streak seeded at creation
// or a reset that was applied relative to a later entry day shows up here.
func (t *Tracker) Check() ([]Discrepancy, error) {
	habits, err := t.store.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	var out []Discrepancy
	for _, h := range habits {
		events, err := t.store.GetEventsFor(h.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load events for %q: %w", h.Name, err)
		}
		streak, count := Replay(h.Periodicity, events)
		if streak != h.Streak || count != h.EventCount {
			out = append(out, Discrepancy{
				Habit:          h.Name,
				StoredStreak:   h.Streak,
				StoredCount:    h.EventCount,
				ExpectedStreak: streak,
				ExpectedCount:  count,
			})
		}
	}
	return out, nil
}

// Rebuild runs Check and overwrites the cached counters of every habit it
// reports. It returns the discrepancies that were fixed.
func (t *Tracker) Rebuild() ([]Discrepancy, error) {
	found, err := t.Check()
	if err != nil {
		return nil, err
	}
	for _, d := range found {
		if err := t.store.UpdateHabitCounters(d.Habit, d.ExpectedStreak, d.ExpectedCount); err != nil {
			return nil, fmt.Errorf("failed to rebuild %q: %w", d.Habit, err)
		}
		logger.Info("Habit counters rebuilt", "habit", d.Habit,
			"streak", fmt.Sprintf("%d->%d", d.StoredStreak, d.ExpectedStreak),
			"events", fmt.Sprintf("%d->%d", d.StoredCount, d.ExpectedCount))
	}
	return found, nil
}

// Lookup returns the named habit or ErrNotFound.
func (t *Tracker) Lookup(name string) (models.Habit, error) {
	h, ok, err := t.store.GetHabit(name)
	if err != nil {
		return models.Habit{}, err
	}
	if !ok {
		return models.Habit{}, fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	return h, nil
}
