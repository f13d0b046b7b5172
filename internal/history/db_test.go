package history

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mull-cli/mull/internal/decision"
)

// setupTestDB creates a new temporary database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func completedState(t *testing.T) *decision.State {
	t.Helper()
	st, err := decision.New("Should I take the new job offer?")
	if err != nil {
		t.Fatalf("failed to create state: %v", err)
	}
	if err := st.SetClarifiedQuestion("Do you trust yourself to handle change?"); err != nil {
		t.Fatal(err)
	}
	if err := st.SetExploredOptions([]string{"ACCEPT", "NEGOTIATE"}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetChallengedAssumptions([]decision.Assumption{
		{Statement: "The new job means growth.", Counter: "Growth might come from depth."},
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.SetSynthesis("Which path would you be prouder of walking?"); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestNewRecord(t *testing.T) {
	st := completedState(t)
	started := time.Now().Add(-time.Minute)

	rec := NewRecord(st, "", 100, 400, started)
	if rec.ID == "" {
		t.Error("expected generated id")
	}
	if rec.Status != RunDone {
		t.Errorf("expected status done, got %q", rec.Status)
	}
	if rec.Input != st.OriginalInput() {
		t.Errorf("unexpected input %q", rec.Input)
	}
	if len(rec.Options) != 2 {
		t.Errorf("expected 2 options, got %d", len(rec.Options))
	}
	if rec.FinishedAt.Before(rec.StartedAt) {
		t.Error("finished_at before started_at")
	}

	failed := NewRecord(st, "explorer", 10, 20, started)
	if failed.Status != RunFailed {
		t.Errorf("expected status failed, got %q", failed.Status)
	}
	if failed.FailureStage != "explorer" {
		t.Errorf("unexpected failure stage %q", failed.FailureStage)
	}
	if failed.ID == rec.ID {
		t.Error("expected distinct ids per record")
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecord(completedState(t), "", 100, 400, time.Now())

	if err := db.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun(rec.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	if got.Input != rec.Input {
		t.Errorf("input = %q, want %q", got.Input, rec.Input)
	}
	if got.Clarified != rec.Clarified {
		t.Errorf("clarified = %q, want %q", got.Clarified, rec.Clarified)
	}
	if len(got.Options) != len(rec.Options) {
		t.Fatalf("options count = %d, want %d", len(got.Options), len(rec.Options))
	}
	if got.Options[0] != rec.Options[0] {
		t.Errorf("option[0] = %q, want %q", got.Options[0], rec.Options[0])
	}
	if len(got.Assumptions) != 1 || got.Assumptions[0].Statement != "The new job means growth." {
		t.Errorf("unexpected assumptions %+v", got.Assumptions)
	}
	if got.Synthesis != rec.Synthesis {
		t.Errorf("synthesis = %q, want %q", got.Synthesis, rec.Synthesis)
	}
	if got.Status != RunDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.OutputTokens != 400 {
		t.Errorf("output tokens = %d, want 400", got.OutputTokens)
	}
}

func TestGetRunByPrefix(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecord(completedState(t), "", 0, 0, time.Now())
	if err := db.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun(rec.ID[:8])
	if err != nil {
		t.Fatalf("GetRun by prefix failed: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("id = %q, want %q", got.ID, rec.ID)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetRun("does-not-exist"); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestGetRunAmbiguousPrefix(t *testing.T) {
	db := setupTestDB(t)
	st := completedState(t)

	a := NewRecord(st, "", 0, 0, time.Now())
	b := NewRecord(st, "", 0, 0, time.Now())
	// Force a shared prefix regardless of what uuid generated
	a.ID = "aaaa1111-0000-0000-0000-000000000001"
	b.ID = "aaaa1111-0000-0000-0000-000000000002"
	for _, rec := range []Record{a, b} {
		if err := db.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	_, err := db.GetRun("aaaa1111")
	if err == nil {
		t.Fatal("expected ambiguity error")
	}
	if !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	st := completedState(t)
	base := time.Now().Add(-time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		rec := NewRecord(st, "", 0, 0, base.Add(time.Duration(i)*time.Minute))
		if err := db.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
		ids = append(ids, rec.ID)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	// Newest first
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("runs not ordered newest first: %q, %q, %q", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestListRunsLimit(t *testing.T) {
	db := setupTestDB(t)
	st := completedState(t)
	base := time.Now()

	for i := 0; i < 5; i++ {
		rec := NewRecord(st, "", 0, 0, base.Add(time.Duration(i)*time.Second))
		if err := db.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestSavePartialRun(t *testing.T) {
	db := setupTestDB(t)

	st, err := decision.New("Should I move cities for this role?")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SetClarifiedQuestion("What would you be leaving behind?"); err != nil {
		t.Fatal(err)
	}

	rec := NewRecord(st, "explorer", 50, 120, time.Now())
	if err := db.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun(rec.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.FailureStage != "explorer" {
		t.Errorf("failure stage = %q, want explorer", got.FailureStage)
	}
	if len(got.Options) != 0 {
		t.Errorf("expected no options, got %d", len(got.Options))
	}
	if got.Synthesis != "" {
		t.Errorf("expected empty synthesis, got %q", got.Synthesis)
	}
}
