package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"fm3drun/internal/model"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		db = nil
	})
}

func TestWritersAreNoopsWithoutInit(t *testing.T) {
	if err := SaveRun("no-db", "/tmp", 2); err != nil {
		t.Errorf("SaveRun without InitDB returned %v", err)
	}
	if err := UpdateRunStatus("no-db", model.RunStatusRunning); err != nil {
		t.Errorf("UpdateRunStatus without InitDB returned %v", err)
	}
	if _, err := GetRun("no-db"); err == nil {
		t.Error("GetRun without InitDB should fail")
	}
}

func TestRunLifecycle(t *testing.T) {
	initTestDB(t)

	if err := SaveRun("run-1", "/data/inv1", 4); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	run, err := GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run["status"] != model.RunStatusPending {
		t.Errorf("new run status = %v, want %s", run["status"], model.RunStatusPending)
	}
	if run["cores"] != 4 {
		t.Errorf("run cores = %v, want 4", run["cores"])
	}

	if err := UpdateRunStatus("run-1", model.RunStatusCompleted); err != nil {
		t.Fatalf("UpdateRunStatus failed: %v", err)
	}
	run, err = GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run["status"] != model.RunStatusCompleted {
		t.Errorf("run status = %v, want %s", run["status"], model.RunStatusCompleted)
	}

	runs, err := ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0]["id"] != "run-1" {
		t.Errorf("ListRuns = %v, want one run run-1", runs)
	}
}

func TestChunkLifecycle(t *testing.T) {
	initTestDB(t)

	if err := SaveRun("run-2", "/data/inv2", 2); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	chunks := []model.Chunk{
		{Index: 0, FirstSource: 1, LastSource: 2},
		{Index: 1, FirstSource: 3, LastSource: 4},
	}
	for _, c := range chunks {
		if err := SaveChunk("run-2", c); err != nil {
			t.Fatalf("SaveChunk failed: %v", err)
		}
	}
	if err := UpdateChunk("run-2", 1, model.ChunkStatusFailed, 3, 1500*time.Millisecond); err != nil {
		t.Fatalf("UpdateChunk failed: %v", err)
	}

	got, err := GetRunChunks("run-2")
	if err != nil {
		t.Fatalf("GetRunChunks failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetRunChunks returned %d chunks, want 2", len(got))
	}
	if got[0]["status"] != model.ChunkStatusPending || got[0]["sources"] != 2 {
		t.Errorf("chunk 0 = %v, want pending with 2 sources", got[0])
	}
	if got[1]["status"] != model.ChunkStatusFailed {
		t.Errorf("chunk 1 status = %v, want %s", got[1]["status"], model.ChunkStatusFailed)
	}
	if got[1]["exitCode"] != 3 {
		t.Errorf("chunk 1 exit code = %v, want 3", got[1]["exitCode"])
	}
	if got[1]["durationMs"] != int64(1500) {
		t.Errorf("chunk 1 duration = %v, want 1500", got[1]["durationMs"])
	}
}

func TestRunErrors(t *testing.T) {
	initTestDB(t)

	if err := SaveRun("run-3", "/data/inv3", 2); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if err := SaveRunError("run-3", 1, fmt.Errorf("chunk 1: exit status 3")); err != nil {
		t.Fatalf("SaveRunError failed: %v", err)
	}
	if err := SaveRunError("run-3", -1, fmt.Errorf("aborting merge")); err != nil {
		t.Fatalf("SaveRunError failed: %v", err)
	}
	if err := SaveRunError("run-3", 0, nil); err != nil {
		t.Fatalf("SaveRunError with nil error failed: %v", err)
	}

	errs, err := GetRunErrors("run-3")
	if err != nil {
		t.Fatalf("GetRunErrors failed: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("GetRunErrors returned %d errors, want 2", len(errs))
	}
	if errs[0]["chunkIdx"] != 1 || errs[0]["message"] != "chunk 1: exit status 3" {
		t.Errorf("first error = %v", errs[0])
	}
	if errs[1]["chunkIdx"] != -1 {
		t.Errorf("run-level error chunkIdx = %v, want -1", errs[1]["chunkIdx"])
	}
}
