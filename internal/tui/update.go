package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
	"github.com/julianstephens/habitlit/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// Leave room for the tab bar, status line and help
		m.habitsModel.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg), nil
	}

	switch msg := msg.(type) {
	case habits.AddHabitMsg:
		m.habitForm = &cli.HabitFormModel{}
		m.form = cli.NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.CompleteHabitMsg:
		c, err := m.tracker.Complete(msg.Name, "")
		if err != nil {
			m.setError(err)
			return m, nil
		}
		status := fmt.Sprintf("✓ Completed %s, streak %s", c.Habit.Name, cli.Periods(c.Habit.Streak, c.Habit.Periodicity))
		if c.Reset {
			status += " (restarted)"
		}
		m.setStatus(status)
		m.refresh()
		return m, nil

	case habits.DeleteHabitMsg:
		m.habitToDelete = msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateHabits && m.habitsModel.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			m.setStatus("Refreshed " + utils.FormatDate(m.tracker.Today()))
			return m, nil
		}
	}

	if m.state == StateHabits {
		var cmd tea.Cmd
		m.habitsModel, cmd = m.habitsModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		name := strings.TrimSpace(m.habitForm.Name)
		if err := m.store.AddHabit(name, strings.TrimSpace(m.habitForm.Description), m.habitForm.Periodicity, 0); err != nil {
			// Stay in form state on error to allow retry
			m.setError(err)
			m.form.State = huh.StateNormal
			return m, cmd
		}
		logger.Info("Habit added", "name", name, "periodicity", m.habitForm.Periodicity)
		m.setStatus("✓ Added " + name)
		m.refresh()
		m.state = StateHabits
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) Model {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m
	}
	switch k.String() {
	case "y", "Y":
		if err := m.store.DeleteHabit(m.habitToDelete); err != nil {
			m.setError(err)
		} else {
			logger.Info("Habit deleted", "name", m.habitToDelete)
			m.setStatus("Deleted " + m.habitToDelete)
			m.refresh()
		}
		m.habitToDelete = ""
		m.state = StateHabits
	case "n", "N", "esc":
		m.habitToDelete = ""
		m.state = StateHabits
	}
	return m
}
