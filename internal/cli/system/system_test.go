package system

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/memory"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/testutil"
)

func setupTestDB(t *testing.T) (*cli.Context, *sqlite.Store, *bytes.Buffer) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitlit.db")
	store := sqlite.NewStore(dbPath)

	ctx := cli.NewContext(store, testutil.ClockOn("2025-06-10"), time.UTC)
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, store, out
}

func setupMemory(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	ctx := cli.NewContext(memory.New(), testutil.ClockOn("2025-06-10"), time.UTC)
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return ctx, out
}

func TestInitCmd_Success(t *testing.T) {
	ctx, store, _ := setupTestDB(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(store.GetConfigPath()); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", store.GetConfigPath())
	}

	// Second run is a no-op
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, out := setupTestDB(t)
	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if err := ctx.Store.AddHabit("read", "", models.Daily, 0); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected deletion notice, got %q", out.String())
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		t.Fatalf("failed to list habits: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty store after forced init, got %d habits", len(habits))
	}
}

func TestInitCmd_ForceClearsMemoryStore(t *testing.T) {
	ctx, _ := setupMemory(t)
	if err := ctx.Store.AddHabit("read", "", models.Daily, 0); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}
	habits, _ := ctx.Store.GetAllHabits()
	if len(habits) != 0 {
		t.Errorf("expected empty store, got %d habits", len(habits))
	}
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, store, out := setupTestDB(t)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	// Missing backups is a warning, not a failure
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
	if !strings.Contains(out.String(), "⚠ Backups present: WARNING") {
		t.Errorf("expected a backup warning, got %q", out.String())
	}

	if _, err := backup.NewManager(store.GetConfigPath()).CreateBackup(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	out.Reset()
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("expected backups check to pass, got %q", out.String())
	}
}

func TestDoctorCmd_Uninitialized(t *testing.T) {
	ctx, _, out := setupTestDB(t)

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail when the database does not exist")
	}
	if !strings.Contains(out.String(), "Schema version: SKIPPED") {
		t.Errorf("expected schema check to be skipped, got %q", out.String())
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, _ := setupTestDB(t)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	// Set an impossible future schema version
	if _, err := store.GetDB().Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := store.GetDB().Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert corrupted schema version: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with corrupted schema")
	}
}

func TestDoctorCmd_CounterMismatch(t *testing.T) {
	ctx, out := setupMemory(t)
	if err := ctx.Store.AddHabit("read", "", models.Daily, 0); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if err := ctx.Store.UpdateHabitCounters("read", 4, 4); err != nil {
		t.Fatalf("failed to update counters: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail on mismatched counters")
	}
	if !strings.Contains(out.String(), "❌ Habit counters: FAIL") {
		t.Errorf("expected counter failure, got %q", out.String())
	}
	if !strings.Contains(out.String(), "Backups present: SKIPPED") {
		t.Errorf("expected backups check to be skipped for memory store, got %q", out.String())
	}
}

func TestDoctorCmd_InvalidTimezone(t *testing.T) {
	ctx, _ := setupMemory(t)
	ctx.Settings.Timezone = "Mars/Olympus_Mons"

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail on an invalid timezone")
	}
}

func TestClearCmd(t *testing.T) {
	ctx, out := setupMemory(t)
	for _, name := range []string{"read", "run"} {
		if err := ctx.Store.AddHabit(name, "", models.Daily, 0); err != nil {
			t.Fatalf("failed to add habit: %v", err)
		}
	}

	ctx.In = strings.NewReader("\n")
	if err := (&ClearCmd{}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !strings.Contains(out.String(), "Clear cancelled.") {
		t.Errorf("empty answer should cancel, got %q", out.String())
	}

	if err := (&ClearCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	habits, _ := ctx.Store.GetAllHabits()
	if len(habits) != 0 {
		t.Errorf("expected no habits after clear, got %d", len(habits))
	}
}

func TestClearCmd_BacksUpFirst(t *testing.T) {
	ctx, store, _ := setupTestDB(t)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := (&ClearCmd{Yes: true}).Run(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	backups, err := backup.NewManager(store.GetConfigPath()).ListBackups()
	if err != nil {
		t.Fatalf("failed to list backups: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected one automatic backup, got %d", len(backups))
	}
}

func TestCheckCmd(t *testing.T) {
	ctx, out := setupMemory(t)
	if err := ctx.Store.AddHabit("read", "", models.Daily, 0); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	if _, err := ctx.Tracker.Complete("read", ""); err != nil {
		t.Fatalf("failed to complete habit: %v", err)
	}

	if err := (&CheckCmd{}).Run(ctx); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "All habit counters match") {
		t.Errorf("expected clean check, got %q", out.String())
	}

	if err := ctx.Store.UpdateHabitCounters("read", 9, 9); err != nil {
		t.Fatalf("failed to update counters: %v", err)
	}
	out.Reset()
	if err := (&CheckCmd{}).Run(ctx); err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out.String(), "--fix") {
		t.Errorf("expected a hint to use --fix, got %q", out.String())
	}
	h, _, _ := ctx.Store.GetHabit("read")
	if h.Streak != 9 {
		t.Errorf("check without --fix must not modify counters, streak = %d", h.Streak)
	}

	if err := (&CheckCmd{Fix: true}).Run(ctx); err != nil {
		t.Fatalf("check --fix failed: %v", err)
	}
	h, _, _ = ctx.Store.GetHabit("read")
	if h.Streak != 1 || h.EventCount != 1 {
		t.Errorf("expected counters 1/1 after fix, got %d/%d", h.Streak, h.EventCount)
	}
}

func TestConfigCmds(t *testing.T) {
	ctx, out := setupMemory(t)
	ctx.ConfigFile = filepath.Join(t.TempDir(), "config.toml")

	if err := (&ConfigInitCmd{}).Run(ctx); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if err := (&ConfigInitCmd{}).Run(ctx); err == nil {
		t.Error("second config init without --force should fail")
	}
	if err := (&ConfigInitCmd{Force: true}).Run(ctx); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}

	cfg, err := config.ReadFromFile(ctx.ConfigFile)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !cfg.AutoBackup {
		t.Error("default config should enable automatic backups")
	}

	out.Reset()
	ctx.Settings.Timezone = "Europe/Berlin"
	if err := (&ConfigShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out.String(), `timezone = "Europe/Berlin"`) {
		t.Errorf("expected effective timezone in output, got %q", out.String())
	}
}
