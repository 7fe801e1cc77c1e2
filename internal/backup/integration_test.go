package backup

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/testutil"
)

// TestBackupRestoreWithStore takes a snapshot of a live habit database,
// deletes a habit, restores and checks that the habit and its events are back.
func TestBackupRestoreWithStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "habitlit.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddHabit("read", "", models.Daily, 0); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.RecordEvent(models.Habit{Name: "read", Streak: 1, EventCount: 1}, testutil.Day("2025-06-01")); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	mgr := NewManager(dbPath)
	mgr.now = ticking()
	snapshot, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup with open store failed: %v", err)
	}

	if err := store.DeleteHabit("read"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := mgr.RestoreBackup(snapshot); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("Load after restore failed: %v", err)
	}
	defer restored.Close()

	h, ok, err := restored.GetHabit("read")
	if err != nil || !ok {
		t.Fatalf("habit missing after restore: ok=%v err=%v", ok, err)
	}
	if h.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", h.EventCount)
	}
	events, err := restored.GetEventsFor("read")
	if err != nil {
		t.Fatalf("GetEventsFor failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event after restore, got %d", len(events))
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected snapshot plus pre-restore backup, got %d", len(backups))
	}
}
