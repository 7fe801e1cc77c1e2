package analyze

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/cli"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/memory"
	"github.com/julianstephens/habitlit/internal/testutil"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	ctx := cli.NewContext(memory.New(), testutil.ClockOn("2025-06-15"), time.UTC)
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

// seed adds a habit with the given events and cached counters.
func seed(t *testing.T, ctx *cli.Context, name string, p models.Periodicity, streak, count int, dates ...string) {
	t.Helper()
	require.NoError(t, ctx.Store.AddHabit(name, "", p, 0))
	for _, d := range dates {
		require.NoError(t, ctx.Store.RecordEvent(models.Habit{Name: name}, testutil.Day(d)))
	}
	require.NoError(t, ctx.Store.UpdateHabitCounters(name, streak, count))
}

func TestEmptyStore(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&StreakCmd{}).Run(ctx))
	require.NoError(t, (&StruggleCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No habits found.")

	out.Reset()
	require.NoError(t, (&OverdueCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Nothing overdue.")

	out.Reset()
	require.NoError(t, (&ReportCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No habits found.")
}

func TestStreakCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx, "read", models.Daily, 3, 3, "2025-06-13", "2025-06-14", "2025-06-15")
	seed(t, ctx, "clean", models.Weekly, 3, 3, "2025-06-01", "2025-06-08", "2025-06-15")
	seed(t, ctx, "run", models.Daily, 1, 1, "2025-06-15")

	require.NoError(t, (&StreakCmd{}).Run(ctx))
	// read and clean tie at 3; the first created wins
	assert.Contains(t, out.String(), "read")
	assert.Contains(t, out.String(), "(3 days)")
}

func TestStatusCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx, "read", models.Daily, 1, 1, "2025-06-15")
	seed(t, ctx, "clean", models.Weekly, 1, 1, "2025-06-07")

	require.NoError(t, (&StatusCmd{Name: "read"}).Run(ctx))
	assert.Contains(t, out.String(), "read is completed today")

	out.Reset()
	require.NoError(t, (&StatusCmd{Name: "clean"}).Run(ctx))
	assert.Contains(t, out.String(), "clean is not completed this week")

	assert.ErrorIs(t, (&StatusCmd{Name: "ghost"}).Run(ctx), apperrors.ErrNotFound)
}

func TestOverdueAndStruggleCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx, "read", models.Daily, 1, 3, "2025-06-10", "2025-06-11", "2025-06-14")
	seed(t, ctx, "clean", models.Weekly, 1, 1, "2025-06-12")
	seed(t, ctx, "fresh", models.Daily, 0, 0)

	require.NoError(t, (&OverdueCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "read")
	assert.Contains(t, out.String(), "fresh")
	assert.Contains(t, out.String(), "never")
	assert.NotContains(t, out.String(), "clean")

	out.Reset()
	require.NoError(t, (&StruggleCmd{}).Run(ctx))
	// read: 2 of 3 events fall outside its streak
	assert.Contains(t, out.String(), "read")
	assert.Contains(t, out.String(), "67%")
}

func TestStruggleCmdNoneFound(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx, "read", models.Daily, 2, 2, "2025-06-14", "2025-06-15")

	require.NoError(t, (&StruggleCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No habit has broken its streak.")
}

func TestReportCmd(t *testing.T) {
	ctx, out := setupTestContext(t)
	seed(t, ctx, "read", models.Daily, 2, 2, "2025-06-14", "2025-06-15")
	seed(t, ctx, "clean", models.Weekly, 0, 0)

	require.NoError(t, (&ReportCmd{}).Run(ctx))
	report := out.String()
	assert.Contains(t, report, "2025-06-15")
	assert.Contains(t, report, "2 habits, 2 events recorded")
	assert.Contains(t, report, "Longest current streak")
	assert.Contains(t, report, "Overdue")
	assert.Contains(t, report, "clean")
}
