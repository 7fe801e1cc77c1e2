// Package tui is the interactive habit dashboard: a list of habits with
// today's completion state and a report tab.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/analytics"
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/tracker"
	"github.com/julianstephens/habitlit/internal/tui/components/habits"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateReport
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab
const tabCount = 2

type Model struct {
	store    storage.Provider
	tracker  *tracker.Tracker
	analyzer *analytics.Analyzer

	state       SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model
	report      string

	form          *huh.Form
	habitForm     *cli.HabitFormModel
	habitToDelete string

	// status is the feedback line for the last action
	status    string
	statusErr bool

	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider, tr *tracker.Tracker, an *analytics.Analyzer) Model {
	m := Model{
		store:       store,
		tracker:     tr,
		analyzer:    an,
		state:       StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitsModel: habits.New(nil, 0, 0),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.habitsModel.Init()
}

// refresh reloads habit statuses and the rendered report from storage.
func (m *Model) refresh() {
	r, err := m.analyzer.Report()
	if err != nil {
		m.setError(err)
		return
	}
	m.habitsModel.SetStatuses(r.Statuses)

	var b strings.Builder
	cli.RenderReport(&b, r)
	m.report = b.String()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}
