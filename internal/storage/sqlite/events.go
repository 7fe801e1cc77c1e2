package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlit/internal/constants"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
)

const eventColumns = "id, habit_name, date, created_at"

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	var date, createdAt string
	if err := row.Scan(&e.ID, &e.HabitName, &date, &createdAt); err != nil {
		return models.Event{}, err
	}

	var err error
	e.CompletedAt, err = time.Parse(constants.DateFormat, date)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse event date %q: %w", date, err)
	}
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return e, nil
}

func (s *Store) GetLastEventDate(name string) (time.Time, error) {
	return lastEventDate(s.db, name)
}

func lastEventDate(q querier, name string) (time.Time, error) {
	var date sql.NullString
	if err := q.QueryRow("SELECT MAX(date) FROM events WHERE habit_name = ?", name).Scan(&date); err != nil {
		return time.Time{}, fmt.Errorf("failed to get last event date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, nil
	}
	return time.Parse(constants.DateFormat, date.String)
}

func (s *Store) GetEventsFor(name string) ([]models.Event, error) {
	return s.queryEvents("SELECT "+eventColumns+" FROM events WHERE habit_name = ? ORDER BY date, rowid", name)
}

func (s *Store) GetAllEvents() ([]models.Event, error) {
	return s.queryEvents("SELECT " + eventColumns + " FROM events ORDER BY date, rowid")
}

func (s *Store) queryEvents(query string, args ...any) ([]models.Event, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) RecordEvent(habit models.Habit, on time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := recordEvent(tx, habit, on); err != nil {
		return err
	}
	return tx.Commit()
}

func recordEvent(q querier, habit models.Habit, on time.Time) error {
	if err := updateCounters(q, habit.Name, habit.Streak, habit.EventCount); err != nil {
		return err
	}
	_, err := q.Exec("INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?)",
		uuid.New().String(), habit.Name, on.Format(constants.DateFormat), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// CommitEvent runs decide against the stored habit and its last event
// inside one write transaction and persists the result.
func (s *Store) CommitEvent(name string, decide storage.EventDecider) (models.Habit, time.Time, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return models.Habit{}, time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	habit, ok, err := getHabit(tx, name)
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}
	if !ok {
		return models.Habit{}, time.Time{}, fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	last, err := lastEventDate(tx, name)
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}

	updated, on, err := decide(habit, last)
	if err != nil {
		return models.Habit{}, time.Time{}, err
	}
	if err := recordEvent(tx, updated, on); err != nil {
		return models.Habit{}, time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Habit{}, time.Time{}, fmt.Errorf("failed to commit event: %w", err)
	}

	habit.Streak = updated.Streak
	habit.EventCount = updated.EventCount
	return habit, on, nil
}
