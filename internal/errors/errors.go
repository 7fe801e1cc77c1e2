package errors

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/habitlit/internal/logger"
)

// Domain error kinds. Callers match them with errors.Is; every operation
// that returns one of these has left stored state untouched.
var (
	ErrDuplicateHabit     = errors.New("habit already exists")
	ErrInvalidName        = errors.New("invalid habit name")
	ErrInvalidPeriodicity = errors.New("invalid periodicity")
	ErrInvalidStreak      = errors.New("streak cannot be negative")
	ErrNotFound           = errors.New("habit not found")
	ErrFutureDate         = errors.New("event date is in the future")
	ErrEventTooSoon       = errors.New("event too soon")
	ErrInvalidDate        = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrNoHabits           = errors.New("no habits found")
	ErrNoneFound          = errors.New("no matching habits found")
)

// TooSoonError is returned when a new event falls inside the current period
// of the habit's last event.
type TooSoonError struct {
	Habit       string
	Periodicity string
	// WaitDays is the number of days until another event is accepted
	WaitDays    int
	NextAllowed time.Time
}

func (e *TooSoonError) Error() string {
	unit := "days"
	if e.WaitDays == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s: %s habit %q can be completed again in %d %s (on %s)",
		ErrEventTooSoon, e.Periodicity, e.Habit, e.WaitDays, unit, e.NextAllowed.Format("2006-01-02"))
}

// Is makes errors.Is(err, ErrEventTooSoon) hold for *TooSoonError.
func (e *TooSoonError) Is(target error) bool {
	return target == ErrEventTooSoon
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
