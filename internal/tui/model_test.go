package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/analytics"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/memory"
	"github.com/julianstephens/habitlit/internal/testutil"
	"github.com/julianstephens/habitlit/internal/tracker"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
)

func newTestModel(t *testing.T) (Model, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.AddHabit("read", "", models.Daily, 0))
	require.NoError(t, store.AddHabit("clean", "", models.Weekly, 0))

	clock := testutil.ClockOn("2025-06-10")
	m := NewModel(store, tracker.New(store, clock, time.UTC), analytics.New(store, clock, time.UTC))
	return m, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCompleteHabit(t *testing.T) {
	m, store := newTestModel(t)

	m = update(t, m, habits.CompleteHabitMsg{Name: "read"})
	assert.False(t, m.statusErr)
	assert.Contains(t, m.status, "Completed read")

	h, _, _ := store.GetHabit("read")
	assert.Equal(t, 1, h.Streak)

	item, ok := m.habitsModel.Selected()
	require.True(t, ok)
	assert.True(t, item.Status.Completed)

	// A second completion today is rejected and reported
	m = update(t, m, habits.CompleteHabitMsg{Name: "read"})
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "too soon")
}

func TestDeleteHabitConfirm(t *testing.T) {
	m, store := newTestModel(t)

	m = update(t, m, habits.DeleteHabitMsg{Name: "clean"})
	assert.Equal(t, StateConfirmDelete, m.state)

	m = update(t, m, keyMsg("n"))
	assert.Equal(t, StateHabits, m.state)
	_, ok, _ := store.GetHabit("clean")
	assert.True(t, ok)

	m = update(t, m, habits.DeleteHabitMsg{Name: "clean"})
	m = update(t, m, keyMsg("y"))
	assert.Equal(t, StateHabits, m.state)
	_, ok, _ = store.GetHabit("clean")
	assert.False(t, ok)
}

func TestTabsAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateReport, m.state)
	assert.Contains(t, m.View(), "Habit report")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, StateHabits, m.state)

	m = update(t, m, keyMsg("q"))
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestAddHabitFormEscape(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, habits.AddHabitMsg{})
	require.Equal(t, StateAddHabit, m.state)
	require.NotNil(t, m.form)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, StateHabits, m.state)
}
