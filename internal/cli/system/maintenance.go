package system

import (
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/logger"
)

type ClearCmd struct {
	Yes bool `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm("Delete ALL habits and events?", "This cannot be undone without a backup.")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Clear cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.ClearAll(); err != nil {
		return err
	}
	logger.Info("All habits and events cleared")

	ctx.Println("✓ All habits and events deleted.")
	return nil
}

// CheckCmd replays every habit's events and compares the result with the
// cached streak and event counters.
type CheckCmd struct {
	Fix bool `help:"Overwrite mismatched counters with the replayed values."`
}

func (c *CheckCmd) Run(ctx *cli.Context) error {
	found, err := ctx.Tracker.Check()
	if err != nil {
		return err
	}
	if len(found) == 0 {
		ctx.Println(cli.SuccessStyle.Render("✓ All habit counters match their event history."))
		return nil
	}

	ctx.Printf("%d habit(s) have counters that disagree with their event history:\n", len(found))
	cli.RenderDiscrepancies(ctx.Out, found)

	if !c.Fix {
		ctx.Println("Run with --fix to rebuild them.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	fixed, err := ctx.Tracker.Rebuild()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Rebuilt counters for %d habit(s).\n", len(fixed))
	return nil
}
