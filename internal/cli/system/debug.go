package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/models"
)

type DebugCmd struct {
	DBPath    DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpHabit DebugDumpHabitCmd `cmd:"" help:"Dump a habit and its events as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	// Output in machine-readable format
	return writeJSON(ctx, map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpHabitCmd struct {
	Name string `arg:"" help:"Name of the habit to dump."`
}

type habitDump struct {
	Habit  models.Habit   `json:"habit"`
	Events []models.Event `json:"events"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.Lookup(cmd.Name)
	if err != nil {
		return err
	}

	events, err := ctx.Store.GetEventsFor(h.Name)
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}
	if events == nil {
		events = []models.Event{}
	}

	return writeJSON(ctx, habitDump{Habit: h, Events: events})
}

func writeJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}
