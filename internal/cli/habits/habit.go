package habits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitlit/internal/cli"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
)

type HabitCmd struct {
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit and all of its events."`
	List     HabitListCmd     `cmd:"" help:"List habits." default:"1"`
	Show     HabitShowCmd     `cmd:"" help:"Show a habit and its completion status."`
	Complete HabitCompleteCmd `cmd:"" help:"Record a completion of a habit."`
	Events   HabitEventsCmd   `cmd:"" help:"Show recorded completions."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. Omit to fill in an interactive form."`
	Description string `short:"d" help:"What the habit is about."`
	Periodicity string `short:"p" help:"How often the habit is due (daily or weekly)." default:"daily"`
	Streak      int    `help:"Seed the current streak, e.g. when moving from another tracker." default:"0"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	description := c.Description
	periodicity := c.Periodicity

	if name == "" {
		if !ctx.Interactive {
			return fmt.Errorf("%w: habit name cannot be empty", apperrors.ErrInvalidName)
		}
		fm := &cli.HabitFormModel{Description: description}
		if p, err := models.ParsePeriodicity(periodicity); err == nil {
			fm.Periodicity = p
		}
		if err := cli.NewHabitForm(fm).Run(); err != nil {
			return fmt.Errorf("habit form: %w", err)
		}
		name = strings.TrimSpace(fm.Name)
		description = fm.Description
		periodicity = fm.Periodicity.String()
	}

	p, err := models.ParsePeriodicity(periodicity)
	if err != nil {
		return err
	}
	if err := ctx.Store.AddHabit(name, strings.TrimSpace(description), p, c.Streak); err != nil {
		return err
	}
	logger.Info("Habit added", "name", name, "periodicity", p)

	ctx.Printf("✓ Added %s habit: %s\n", p, name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.Lookup(c.Name)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(
			fmt.Sprintf("Delete habit %q?", h.Name),
			fmt.Sprintf("This removes the habit and its %d recorded events.", h.EventCount),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteHabit(h.Name); err != nil {
		return err
	}
	logger.Info("Habit deleted", "name", h.Name, "events", h.EventCount)

	ctx.Printf("✓ Deleted habit: %s\n", h.Name)
	return nil
}

type HabitListCmd struct {
	Periodicity string `short:"p" help:"Only list habits with this periodicity (daily or weekly)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}

	if c.Periodicity != "" {
		p, err := models.ParsePeriodicity(c.Periodicity)
		if err != nil {
			return err
		}
		filtered := habits[:0]
		for _, h := range habits {
			if h.Periodicity == p {
				filtered = append(filtered, h)
			}
		}
		habits = filtered
	}

	cli.RenderHabits(ctx.Out, habits)
	return nil
}

type HabitShowCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	status, err := ctx.Analyzer.CompletionStatus(c.Name)
	if err != nil {
		return err
	}
	cli.RenderStatus(ctx.Out, status)
	return nil
}

type HabitCompleteCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitCompleteCmd) Run(ctx *cli.Context) error {
	completion, err := ctx.Tracker.Complete(c.Name, c.Date)
	if err != nil {
		var tooSoon *apperrors.TooSoonError
		if errors.As(err, &tooSoon) {
			logger.Debug("Completion rejected", "habit", c.Name, "wait_days", tooSoon.WaitDays)
		}
		return err
	}
	cli.RenderCompletion(ctx.Out, completion)
	return nil
}

type HabitEventsCmd struct {
	Name string `arg:"" optional:"" help:"Habit name. Omit to show events of every habit."`
}

func (c *HabitEventsCmd) Run(ctx *cli.Context) error {
	if c.Name == "" {
		events, err := ctx.Store.GetAllEvents()
		if err != nil {
			return err
		}
		cli.RenderEvents(ctx.Out, events)
		return nil
	}

	if _, err := ctx.Tracker.Lookup(c.Name); err != nil {
		return err
	}
	events, err := ctx.Store.GetEventsFor(c.Name)
	if err != nil {
		return err
	}
	cli.RenderEvents(ctx.Out, events)
	return nil
}
