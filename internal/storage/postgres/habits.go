package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
)

type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const habitColumns = "name, description, periodicity, streak, event_count, created_at"

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var periodicity string
	if err := row.Scan(&h.Name, &h.Description, &periodicity, &h.Streak, &h.EventCount, &h.CreatedAt); err != nil {
		return models.Habit{}, err
	}
	h.Periodicity = models.Periodicity(periodicity)
	h.CreatedAt = h.CreatedAt.UTC()
	return h, nil
}

func (s *Store) AddHabit(name, description string, periodicity models.Periodicity, streak int) error {
	if err := models.ValidateNewHabit(name, periodicity, streak); err != nil {
		return err
	}

	res, err := s.db.Exec(`
		INSERT INTO habits (name, description, periodicity, streak, event_count, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
		ON CONFLICT (name) DO NOTHING`,
		name, description, string(periodicity), streak, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", apperrors.ErrDuplicateHabit, name)
	}
	return nil
}

func (s *Store) DeleteHabit(name string) error {
	res, err := s.db.Exec("DELETE FROM habits WHERE name = $1", name)
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
	return nil
}

func (s *Store) GetHabit(name string) (models.Habit, bool, error) {
	return getHabit(s.db, name, false)
}

func getHabit(q querier, name string, forUpdate bool) (models.Habit, bool, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE name = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	h, err := scanHabit(q.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, false, nil
	}
	if err != nil {
		return models.Habit{}, false, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, true, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.db.Query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, name")
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
	res, err := q.Exec("UPDATE habits SET streak = $1, event_count = $2 WHERE name = $3", streak, eventCount, name)
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
