package storage

import (
	"time"

	"github.com/julianstephens/habitlit/internal/models"
)

// EventDecider computes the habit state to persist for a proposed event.
// It receives a snapshot of the habit and its last event date (zero when the
// habit has no events) and returns the updated habit plus the event date to
// store. Returning an error aborts the write.
type EventDecider func(habit models.Habit, lastEvent time.Time) (models.Habit, time.Time, error)

// Provider is the persistence contract the tracker, analytics and CLI use.
// Every value returned is a copy; mutating it never changes stored state.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(name, description string, periodicity models.Periodicity, streak int) error
	DeleteHabit(name string) error
	// GetHabit reports ok=false for an unknown name rather than an error.
	GetHabit(name string) (habit models.Habit, ok bool, err error)
	// GetAllHabits returns habits in creation order.
	GetAllHabits() ([]models.Habit, error)
	UpdateHabitCounters(name string, streak, eventCount int) error

	// Events
	// GetLastEventDate returns the zero time when the habit has no events.
	GetLastEventDate(name string) (time.Time, error)
	GetEventsFor(name string) ([]models.Event, error)
	GetAllEvents() ([]models.Event, error)
	// RecordEvent appends an event and persists habit.Streak and
	// habit.EventCount in the same transaction.
	RecordEvent(habit models.Habit, on time.Time) error
	// CommitEvent runs read, decide and write for one event as a single
	// transaction so concurrent callers cannot both extend the same streak.
	CommitEvent(name string, decide EventDecider) (models.Habit, time.Time, error)

	ClearAll() error

	// Utils
	GetConfigPath() string
}
