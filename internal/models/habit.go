package models

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
)

// Periodicity is the cadence a habit is expected to be completed on
type Periodicity string

const (
	Daily  Periodicity = "daily"
	Weekly Periodicity = "weekly"
)

// Days returns the length of one period in days, or 0 for an unknown periodicity.
func (p Periodicity) Days() int {
	switch p {
	case Daily:
		return 1
	case Weekly:
		return 7
	default:
		return 0
	}
}

// Valid reports whether p is one of the known periodicities.
func (p Periodicity) Valid() bool {
	return p.Days() > 0
}

// Unit returns the human-readable unit of one period ("day" or "week").
func (p Periodicity) Unit() string {
	if p == Weekly {
		return "week"
	}
	return "day"
}

func (p Periodicity) String() string { return string(p) }

// ParsePeriodicity accepts "daily" or "weekly" in any letter case.
func ParsePeriodicity(s string) (Periodicity, error) {
	p := Periodicity(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (expected daily or weekly)", apperrors.ErrInvalidPeriodicity, s)
	}
	return p, nil
}

// Habit represents a practice the user wants to repeat on a fixed cadence.
// Streak and EventCount are a cache maintained on every accepted event.
type Habit struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Periodicity Periodicity `json:"periodicity"`
	Streak      int         `json:"streak"`
	EventCount  int         `json:"event_count"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Event records one completion of a habit on a calendar day
type Event struct {
	ID          string    `json:"id"`
	HabitName   string    `json:"habit_name"`
	CompletedAt time.Time `json:"completed_at"` // UTC midnight of the civil date
	CreatedAt   time.Time `json:"created_at"`
}

// Day returns the completion date in YYYY-MM-DD form.
func (e Event) Day() string {
	return e.CompletedAt.Format("2006-01-02")
}

// ValidateHabitName rejects empty or whitespace-only names.
func ValidateHabitName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidName)
	}
	return nil
}

// ValidateNewHabit checks the fields supplied when a habit is created.
func ValidateNewHabit(name string, p Periodicity, streak int) error {
	if err := ValidateHabitName(name); err != nil {
		return err
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriodicity, p)
	}
	if streak < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidStreak, streak)
	}
	return nil
}
