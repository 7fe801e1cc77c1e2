// Package tracker holds the streak rules applied whenever a habit is completed
// and the service that applies them against a storage.Provider.
//
// All dates handled here are civil dates (UTC midnight, see utils.CivilDate).
// A zero time.Time stands for "no previous event".
package tracker

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

// IsTooSoon reports whether proposed falls inside the period opened by last.
// A proposed date before last is always too soon.
func IsTooSoon(p models.Periodicity, last, proposed time.Time) bool {
	if last.IsZero() {
		return false
	}
	return utils.DaysBetween(last, proposed) < p.Days()
}

// ShouldResetStreak reports whether the gap between last and today has
// broken the streak.
func ShouldResetStreak(p models.Periodicity, last, today time.Time) bool {
	if last.IsZero() {
		return false
	}
	return utils.DaysBetween(last, today) > p.Days()
}

// NextAllowed is the first date on which a new event is accepted after last.
func NextAllowed(p models.Periodicity, last time.Time) time.Time {
	return utils.AddDays(last, p.Days())
}

// WaitDays returns how many days from today until another event is
// accepted, never less than zero.
func WaitDays(p models.Periodicity, last, today time.Time) int {
	if last.IsZero() {
		return 0
	}
	return max(utils.DaysBetween(today, NextAllowed(p, last)), 0)
}

// ApplyEvent validates a proposed event against the habit's last event and
// returns the habit with updated counters. reset is true when the streak was
// broken before this event was counted. The input habit is not modified.
func ApplyEvent(habit models.Habit, last, proposed, today time.Time) (updated models.Habit, reset bool, err error) {
	if proposed.After(today) {
		return habit, false, fmt.Errorf("%w: %s is after %s", apperrors.ErrFutureDate,
			utils.FormatDate(proposed), utils.FormatDate(today))
	}

	if IsTooSoon(habit.Periodicity, last, proposed) {
		return habit, false, &apperrors.TooSoonError{
			Habit:       habit.Name,
			Periodicity: habit.Periodicity.String(),
			WaitDays:    WaitDays(habit.Periodicity, last, today),
			NextAllowed: NextAllowed(habit.Periodicity, last),
		}
	}

	updated = habit
	if ShouldResetStreak(habit.Periodicity, last, today) {
		updated.Streak = 0
		reset = true
	}
	updated.Streak++
	updated.EventCount++
	return updated, reset, nil
}

// ParseEventDate turns user input into a civil date. Blank input means today.
func ParseEventDate(s string, today time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return today, nil
	}
	d, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, s)
	}
	return d, nil
}
