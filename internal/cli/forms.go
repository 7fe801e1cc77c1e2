package cli

import (
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/models"
)

// HabitFormModel backs the add-habit form shared by the CLI and the TUI
type HabitFormModel struct {
	Name        string
	Description string
	Periodicity models.Periodicity
}

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	if fm.Periodicity == "" {
		fm.Periodicity = models.Daily
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					return models.ValidateHabitName(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Description").
				Value(&fm.Description),
			huh.NewSelect[models.Periodicity]().
				Title("Periodicity").
				Options(
					huh.NewOption("Daily", models.Daily),
					huh.NewOption("Weekly", models.Weekly),
				).
				Value(&fm.Periodicity),
		),
	).WithTheme(huh.ThemeDracula())
}
