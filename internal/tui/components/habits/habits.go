package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitlit/internal/analytics"
	"github.com/julianstephens/habitlit/internal/cli"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	Name string
}

type DeleteHabitMsg struct {
	Name string
}

type Item struct {
	Status analytics.Status
}

func (i Item) Title() string {
	if i.Status.Completed {
		return "✓ " + i.Status.Habit.Name
	}
	return "○ " + i.Status.Habit.Name
}

func (i Item) Description() string {
	s := i.Status
	streak := cli.Periods(s.Habit.Streak, s.Habit.Periodicity)
	switch {
	case s.Completed:
		return fmt.Sprintf("%s · streak %s · done", s.Habit.Periodicity, streak)
	case s.LastCompleted.IsZero():
		return fmt.Sprintf("%s · never completed", s.Habit.Periodicity)
	default:
		return fmt.Sprintf("%s · streak %s · last %s", s.Habit.Periodicity, streak, cli.DisplayDate(s.LastCompleted))
	}
}

func (i Item) FilterValue() string { return i.Status.Habit.Name }

type KeyMap struct {
	Add      key.Binding
	Complete key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys("enter", "c"),
			key.WithHelp("enter/c", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(statuses []analytics.Status, width, height int) Model {
	l := list.New(toItems(statuses), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func toItems(statuses []analytics.Status) []list.Item {
	items := make([]list.Item, len(statuses))
	for i, s := range statuses {
		items[i] = Item{Status: s}
	}
	return items
}

func (m *Model) SetStatuses(statuses []analytics.Status) {
	m.list.SetItems(toItems(statuses))
}

// Selected returns the highlighted item, if any.
func (m Model) Selected() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i, ok
}

// Filtering reports whether the user is typing a filter, during which
// single-letter keys belong to the list.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Complete):
			if i, ok := m.Selected(); ok && !i.Status.Completed {
				return m, func() tea.Msg { return CompleteHabitMsg{Name: i.Status.Habit.Name} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{Name: i.Status.Habit.Name} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
