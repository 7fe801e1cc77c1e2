// Package memory provides an in-process storage.Provider. Nothing survives
// Close; it backs tests and the ":memory:" database setting.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	order  []string
	habits map[string]models.Habit
	events []models.Event
	now    func() time.Time
}

var _ storage.Provider = (*Store)(nil)

func New() *Store {
	s := &Store{now: time.Now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.order = nil
	s.habits = make(map[string]models.Habit)
	s.events = nil
}

func (s *Store) Init() error  { return nil }
func (s *Store) Load() error  { return nil }
func (s *Store) Close() error { return nil }

func (s *Store) GetConfigPath() string { return constants.MemoryDSN }

func (s *Store) AddHabit(name, description string, periodicity models.Periodicity, streak int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.habits[name]; exists {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateHabit, name)
	}
	if err := models.ValidateNewHabit(name, periodicity, streak); err != nil {
		return err
	}

	s.habits[name] = models.Habit{
		Name:        name,
		Description: description,
		Periodicity: periodicity,
		Streak:      streak,
		CreatedAt:   s.now().UTC(),
	}
	s.order = append(s.order, name)
	return nil
}

func (s *Store) DeleteHabit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.habits[name]; !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	delete(s.habits, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.events[:0:0]
	for _, e := range s.events {
		if e.HabitName != name {
			kept = append(kept, e)
		}
	}
	s.events = kept
	return nil
}

func (s *Store) GetHabit(name string) (models.Habit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[name]
	return h, ok, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits := make([]models.Habit, 0, len(s.order))
	for _, name := range s.order {
		habits = append(habits, s.habits[name])
	}
	return habits, nil
}

func (s *Store) UpdateHabitCounters(name string, streak, eventCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[name]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	h.Streak = streak
	h.EventCount = eventCount
	s.habits[name] = h
	return nil
}

func (s *Store) GetLastEventDate(name string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEventDate(name), nil
}

func (s *Store) lastEventDate(name string) time.Time {
	var last time.Time
	for _, e := range s.events {
		if e.HabitName == name && e.CompletedAt.After(last) {
			last = e.CompletedAt
		}
	}
	return last
}

func (s *Store) GetEventsFor(name string) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []models.Event
	for _, e := range s.events {
		if e.HabitName == name {
			events = append(events, e)
		}
	}
	sortByDate(events)
	return events, nil
}

func (s *Store) GetAllEvents() ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := append([]models.Event(nil), s.events...)
	sortByDate(events)
	return events, nil
}

func sortByDate(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CompletedAt.Before(events[j].CompletedAt)
	})
}

func (s *Store) RecordEvent(habit models.Habit, on time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordEvent(habit, on)
}

func (s *Store) recordEvent(habit models.Habit, on time.Time) error {
	stored, ok := s.habits[habit.Name]
	if !ok {
		return fmt.Errorf("%w: %q", apperrors.ErrNotFound, habit.Name)
	}
	s.events = append(s.events, models.Event{
		ID:          uuid.New().String(),
		HabitName:   habit.Name,
		CompletedAt: on,
		CreatedAt:   s.now().UTC(),
	})
	stored.Streak = habit.Streak
	stored.EventCount = habit.EventCount
	s.habits[habit.Name] = stored
	return nil
}

func (s *Store) CommitEvent(name string, decide storage.EventDecider) (models.Habit, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habit, ok := s.habits[name]
	if !ok {
		return models.Habit{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	updated, on, err := decide(habit, s.lastEventDate(name))
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}
	if err := s.recordEvent(updated, on); err != nil {
		return models.Habit{}, time.Time{}, err
	}
	return s.habits[name], on, nil
}

func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}
