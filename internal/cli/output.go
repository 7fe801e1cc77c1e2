package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitlit/internal/analytics"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/tracker"
	"github.com/julianstephens/habitlit/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

// DisplayDate formats a civil date, or "never" for the zero time.
func DisplayDate(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return utils.FormatDate(t)
}

// Periods renders n with the habit's period unit, e.g. "3 days" or "1 week".
func Periods(n int, p models.Periodicity) string {
	unit := p.Unit()
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}

func RenderHabits(w io.Writer, habits []models.Habit) {
	if len(habits) == 0 {
		fmt.Fprintln(w, "No habits found.")
		return
	}
	t := newTable("Name", "Periodicity", "Streak", "Events", "Description")
	for _, h := range habits {
		t.Row(h.Name, h.Periodicity.String(), Periods(h.Streak, h.Periodicity), strconv.Itoa(h.EventCount), h.Description)
	}
	fmt.Fprintln(w, t.Render())
}

// RenderStatus prints the detail view of one habit.
func RenderStatus(w io.Writer, s analytics.Status) {
	h := s.Habit
	fmt.Fprintln(w, headerStyle.Render(h.Name))
	if h.Description != "" {
		fmt.Fprintln(w, MutedStyle.Render(h.Description))
	}
	fmt.Fprintf(w, "  Periodicity:    %s\n", h.Periodicity)
	fmt.Fprintf(w, "  Current streak: %s\n", Periods(h.Streak, h.Periodicity))
	fmt.Fprintf(w, "  Events:         %d\n", h.EventCount)
	fmt.Fprintf(w, "  Last completed: %s\n", DisplayDate(s.LastCompleted))
	fmt.Fprintf(w, "  Next due:       %s\n", utils.FormatDate(s.NextDue))

	switch {
	case s.Completed && h.Periodicity == models.Weekly:
		fmt.Fprintln(w, SuccessStyle.Render("  ✓ Completed this week"))
	case s.Completed:
		fmt.Fprintln(w, SuccessStyle.Render("  ✓ Completed today"))
	case s.LastCompleted.IsZero():
		fmt.Fprintln(w, WarningStyle.Render("  ○ Not completed yet"))
	case s.DaysUntilDue < 0:
		fmt.Fprintln(w, DangerStyle.Render(fmt.Sprintf("  ✗ Overdue by %d days", -s.DaysUntilDue)))
	default:
		fmt.Fprintln(w, WarningStyle.Render("  ○ Due today"))
	}
}

func RenderEvents(w io.Writer, events []models.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return
	}
	t := newTable("Date", "Habit", "Recorded")
	for _, e := range events {
		t.Row(e.Day(), e.HabitName, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(w, t.Render())
}

func RenderLongest(w io.Writer, h models.Habit) {
	fmt.Fprintf(w, "Longest current streak: %s (%s)\n", headerStyle.Render(h.Name), Periods(h.Streak, h.Periodicity))
}

func RenderOverdue(w io.Writer, overdue []analytics.Overdue) {
	if len(overdue) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("✓ Nothing overdue."))
		return
	}
	t := newTable("Habit", "Periodicity", "Last completed", "Days since")
	for _, o := range overdue {
		since := "-"
		if !o.Never() {
			since = strconv.Itoa(o.DaysSince)
		}
		t.Row(o.Habit.Name, o.Habit.Periodicity.String(), DisplayDate(o.LastCompleted), since)
	}
	fmt.Fprintln(w, t.Render())
}

func RenderStruggle(w io.Writer, s analytics.Struggle) {
	fmt.Fprintf(w, "Biggest struggle: %s, %.0f%% of %d events fall outside the current streak\n",
		DangerStyle.Render(s.Habit.Name), s.Score*100, s.Habit.EventCount)
}

// RenderReport prints the dashboard: totals, per-habit status, the longest
// streak, overdue habits and the biggest struggle.
func RenderReport(w io.Writer, r analytics.Report) {
	fmt.Fprintf(w, "%s  %s\n\n", headerStyle.Render("Habit report"), MutedStyle.Render(utils.FormatDate(r.Today)))
	if r.Habits == 0 {
		fmt.Fprintln(w, "No habits found. Add one with 'habitlit habit add'.")
		return
	}
	fmt.Fprintf(w, "%d habits, %d events recorded\n\n", r.Habits, r.Events)

	t := newTable("Habit", "Periodicity", "Streak", "Last completed", "Status")
	for _, s := range r.Statuses {
		state := "pending"
		if s.Completed {
			state = "done"
		}
		t.Row(s.Habit.Name, s.Habit.Periodicity.String(), Periods(s.Habit.Streak, s.Habit.Periodicity), DisplayDate(s.LastCompleted), state)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)

	if r.Longest != nil {
		RenderLongest(w, *r.Longest)
	}
	if r.Struggle != nil {
		RenderStruggle(w, *r.Struggle)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Overdue"))
	RenderOverdue(w, r.Overdue)
}

func RenderDiscrepancies(w io.Writer, found []tracker.Discrepancy) {
	t := newTable("Habit", "Stored streak", "Replayed streak", "Stored events", "Replayed events")
	for _, d := range found {
		t.Row(d.Habit,
			strconv.Itoa(d.StoredStreak), strconv.Itoa(d.ExpectedStreak),
			strconv.Itoa(d.StoredCount), strconv.Itoa(d.ExpectedCount))
	}
	fmt.Fprintln(w, t.Render())
}

// RenderCompletion reports an accepted event.
func RenderCompletion(w io.Writer, c tracker.Completion) {
	h := c.Habit
	fmt.Fprintf(w, "✓ Completed %s on %s\n", h.Name, utils.FormatDate(c.Date))
	if c.Reset {
		fmt.Fprintln(w, WarningStyle.Render("  Streak was broken and has restarted."))
	}
	fmt.Fprintf(w, "  Streak: %s, %d events total\n", Periods(h.Streak, h.Periodicity), h.EventCount)
}
