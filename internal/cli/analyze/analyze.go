package analyze

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitlit/internal/cli"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
)

type AnalyzeCmd struct {
	Streak   StreakCmd   `cmd:"" help:"Show the habit with the longest current streak."`
	Status   StatusCmd   `cmd:"" help:"Check whether a habit is completed for its current period."`
	Overdue  OverdueCmd  `cmd:"" help:"List habits whose period has passed without a completion."`
	Struggle StruggleCmd `cmd:"" help:"Show the habit whose streak breaks most often."`
	Report   ReportCmd   `cmd:"" help:"Show every analysis at once." default:"1"`
}

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Analyzer.LongestOverallStreak()
	if errors.Is(err, apperrors.ErrNoHabits) {
		ctx.Println("No habits found.")
		return nil
	}
	if err != nil {
		return err
	}
	cli.RenderLongest(ctx.Out, h)
	return nil
}

type StatusCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.Lookup(c.Name)
	if err != nil {
		return err
	}

	var done bool
	var period string
	switch h.Periodicity {
	case models.Weekly:
		done, err = ctx.Analyzer.IsWeeklyCompletedThisWeek(h.Name)
		period = "this week"
	default:
		done, err = ctx.Analyzer.IsDailyCompletedToday(h.Name)
		period = "today"
	}
	if err != nil {
		return err
	}

	if done {
		ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ %s is completed %s", h.Name, period)))
	} else {
		ctx.Println(cli.WarningStyle.Render(fmt.Sprintf("○ %s is not completed %s", h.Name, period)))
	}
	return nil
}

type OverdueCmd struct{}

func (c *OverdueCmd) Run(ctx *cli.Context) error {
	overdue, err := ctx.Analyzer.ListOverdueHabits()
	if err != nil {
		return err
	}
	cli.RenderOverdue(ctx.Out, overdue)
	return nil
}

type StruggleCmd struct{}

func (c *StruggleCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Analyzer.BiggestStruggle()
	switch {
	case errors.Is(err, apperrors.ErrNoHabits):
		ctx.Println("No habits found.")
		return nil
	case errors.Is(err, apperrors.ErrNoneFound):
		ctx.Println(cli.SuccessStyle.Render("✓ No habit has broken its streak."))
		return nil
	case err != nil:
		return err
	}
	cli.RenderStruggle(ctx.Out, s)
	return nil
}

type ReportCmd struct{}

func (c *ReportCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Analyzer.Report()
	if err != nil {
		return err
	}
	cli.RenderReport(ctx.Out, r)
	return nil
}
