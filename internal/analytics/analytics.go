// Package analytics answers read-only questions about stored habits. Every
// method returns plain data; rendering is left to the caller.
package analytics

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/tracker"
	"github.com/julianstephens/habitlit/internal/utils"
)

type Analyzer struct {
	store storage.Provider
	clock utils.Clock
	loc   *time.Location
}

// Status is the completion state of one habit as of today.
type Status struct {
	Habit     models.Habit
	Completed bool
	// LastCompleted is zero when the habit has never been completed
	LastCompleted time.Time
	NextDue       time.Time
	DaysUntilDue  int
}

// Overdue is a habit whose current period has passed without an event.
type Overdue struct {
	Habit         models.Habit
	LastCompleted time.Time
	DaysSince     int
}

// Never reports whether the habit has no events at all.
func (o Overdue) Never() bool { return o.LastCompleted.IsZero() }

// Struggle scores how often a habit's streak has been broken, between 0 and 1.
type Struggle struct {
	Habit models.Habit
	Score float64
}

// Report bundles the aggregate queries for a dashboard.
type Report struct {
	Today    time.Time
	Habits   int
	Events   int
	Longest  *models.Habit
	Statuses []Status
	Overdue  []Overdue
	Struggle *Struggle
}

func New(store storage.Provider, clock utils.Clock, loc *time.Location) *Analyzer {
	if clock == nil {
		clock = utils.RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{store: store, clock: clock, loc: loc}
}

func (a *Analyzer) today() time.Time {
	return utils.Today(a.clock, a.loc)
}

func (a *Analyzer) habits() ([]models.Habit, error) {
	habits, err := a.store.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if len(habits) == 0 {
		return nil, apperrors.ErrNoHabits
	}
	return habits, nil
}

func (a *Analyzer) habit(name string) (models.Habit, time.Time, error) {
	h, ok, err := a.store.GetHabit(name)
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}
	if !ok {
		return models.Habit{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	last, err := a.store.GetLastEventDate(name)
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}
	return h, last, nil
}

// LongestOverallStreak returns the habit with the highest current streak.
// The earliest created habit wins a tie.
func (a *Analyzer) LongestOverallStreak() (models.Habit, error) {
	habits, err := a.habits()
	if err != nil {
		return models.Habit{}, err
	}
	best := habits[0]
	for _, h := range habits[1:] {
		if h.Streak > best.Streak {
			best = h
		}
	}
	return best, nil
}

// IsDailyCompletedToday reports whether the habit's last event is today.
func (a *Analyzer) IsDailyCompletedToday(name string) (bool, error) {
	_, last, err := a.habit(name)
	if err != nil {
		return false, err
	}
	return !last.IsZero() && last.Equal(a.today()), nil
}

// IsWeeklyCompletedThisWeek reports whether the habit's last event lies
// within the seven days ending today.
func (a *Analyzer) IsWeeklyCompletedThisWeek(name string) (bool, error) {
	_, last, err := a.habit(name)
	if err != nil {
		return false, err
	}
	return completedWeekly(last, a.today()), nil
}

func completedWeekly(last, today time.Time) bool {
	return !last.IsZero() && utils.DaysBetween(last, today) < 7
}

// CompletionStatus checks the habit against its own periodicity.
func (a *Analyzer) CompletionStatus(name string) (Status, error) {
	h, last, err := a.habit(name)
	if err != nil {
		return Status{}, err
	}
	return status(h, last, a.today()), nil
}

func status(h models.Habit, last, today time.Time) Status {
	s := Status{Habit: h, LastCompleted: last, NextDue: today}
	if last.IsZero() {
		return s
	}

	switch h.Periodicity {
	case models.Weekly:
		s.Completed = completedWeekly(last, today)
	default:
		s.Completed = last.Equal(today)
	}
	s.NextDue = tracker.NextAllowed(h.Periodicity, last)
	s.DaysUntilDue = utils.DaysBetween(today, s.NextDue)
	return s
}

// ListOverdueHabits returns every habit whose period has elapsed since its
// last event, plus habits that have never been completed.
func (a *Analyzer) ListOverdueHabits() ([]Overdue, error) {
	habits, err := a.store.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	today := a.today()
	var out []Overdue
	for _, h := range habits {
		last, err := a.store.GetLastEventDate(h.Name)
		if err != nil {
			return nil, err
		}
		if last.IsZero() {
			out = append(out, Overdue{Habit: h})
			continue
		}
		since := utils.DaysBetween(last, today)
		if since >= h.Periodicity.Days() {
			out = append(out, Overdue{Habit: h, LastCompleted: last, DaysSince: since})
		}
	}
	return out, nil
}

// BiggestStruggle returns the habit with the largest share of events that
// are not part of its current streak. Habits without events and habits whose
// every event counts toward the streak are skipped.
func (a *Analyzer) BiggestStruggle() (Struggle, error) {
	habits, err := a.habits()
	if err != nil {
		return Struggle{}, err
	}

	var best *Struggle
	for _, h := range habits {
		if h.EventCount == 0 || h.EventCount == h.Streak {
			continue
		}
		score := float64(h.EventCount-h.Streak) / float64(h.EventCount)
		// A seeded streak can exceed the event count; scores at or below -1 never win
		if score <= -1 {
			continue
		}
		if best == nil || score > best.Score {
			best = &Struggle{Habit: h, Score: score}
		}
	}
	if best == nil {
		return Struggle{}, apperrors.ErrNoneFound
	}
	return *best, nil
}

// Report gathers the dashboard view. Empty results become empty sections.
func (a *Analyzer) Report() (Report, error) {
	habits, err := a.store.GetAllHabits()
	if err != nil {
		return Report{}, fmt.Errorf("failed to list habits: %w", err)
	}
	events, err := a.store.GetAllEvents()
	if err != nil {
		return Report{}, fmt.Errorf("failed to list events: %w", err)
	}

	today := a.today()
	r := Report{Today: today, Habits: len(habits), Events: len(events)}

	last := make(map[string]time.Time, len(habits))
	for _, e := range events {
		if e.CompletedAt.After(last[e.HabitName]) {
			last[e.HabitName] = e.CompletedAt
		}
	}
	for _, h := range habits {
		r.Statuses = append(r.Statuses, status(h, last[h.Name], today))
	}

	longest, err := a.LongestOverallStreak()
	switch {
	case err == nil:
		r.Longest = &longest
	case !errors.Is(err, apperrors.ErrNoHabits):
		return Report{}, err
	}

	if r.Overdue, err = a.ListOverdueHabits(); err != nil {
		return Report{}, err
	}

	struggle, err := a.BiggestStruggle()
	switch {
	case err == nil:
		r.Struggle = &struggle
	case !errors.Is(err, apperrors.ErrNoHabits) && !errors.Is(err, apperrors.ErrNoneFound):
		return Report{}, err
	}

	return r, nil
}
