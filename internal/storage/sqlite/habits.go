package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const habitColumns = "name, description, periodicity, streak, event_count, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var periodicity, createdAt string
	if err := row.Scan(&h.Name, &h.Description, &periodicity, &h.Streak, &h.EventCount, &createdAt); err != nil {
		return models.Habit{}, err
	}
	h.Periodicity = models.Periodicity(periodicity)

	var err error
	h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return h, nil
}

func (s *Store) AddHabit(name, description string, periodicity models.Periodicity, streak int) error {
	if err := models.ValidateNewHabit(name, periodicity, streak); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, ok, err := getHabit(tx, name); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateHabit, name)
	}

	_, err = tx.Exec(`
		INSERT INTO habits (name, description, periodicity, streak, event_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		name, description, string(periodicity), streak, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return tx.Commit()
}

func (s *Store) DeleteHabit(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Events go with the habit through ON DELETE CASCADE
	res, err := tx.Exec("DELETE FROM habits WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}

	return tx.Commit()
}

func (s *Store) GetHabit(name string) (models.Habit, bool, error) {
	return getHabit(s.db, name)
}

func getHabit(q querier, name string) (models.Habit, bool, error) {
	h, err := scanHabit(q.QueryRow("SELECT "+habitColumns+" FROM habits WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, false, nil
	}
	if err != nil {
		return models.Habit{}, false, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, true, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query("SELECT " + habitColumns + " FROM habits ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabitCounters(name string, streak, eventCount int) error {
	return updateCounters(s.db, name, streak, eventCount)
}

func updateCounters(q querier, name string, streak, eventCount int) error {
	res, err := q.Exec("UPDATE habits SET streak = ?, event_count = ? WHERE name = ?", streak, eventCount, name)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
	}
	return nil
}

func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}
	return tx.Commit()
}
