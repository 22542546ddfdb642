package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fm3drun/internal/model"
	"fm3drun/internal/store"
)

func initStore(t *testing.T) {
	t.Helper()
	if err := store.InitDB(filepath.Join(t.TempDir(), "api.db")); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
}

func TestListRuns(t *testing.T) {
	initStore(t)
	if err := store.SaveRun("api-run-1", "/data/inv", 2); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	ListRuns(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ListRuns returned %d", rec.Code)
	}

	var runs []map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(runs) != 1 || runs[0]["id"] != "api-run-1" {
		t.Errorf("runs = %v, want one run api-run-1", runs)
	}
}

func TestGetRun(t *testing.T) {
	initStore(t)
	if err := store.SaveRun("api-run-2", "/data/inv", 4); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/api-run-2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GetRun returned %d", rec.Code)
	}
	var run map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&run); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if run["status"] != model.RunStatusPending {
		t.Errorf("run status = %v, want %s", run["status"], model.RunStatusPending)
	}

	rec = httptest.NewRecorder()
	GetRun(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown run returned %d, want 404", rec.Code)
	}
}

func TestGetRunChunks(t *testing.T) {
	initStore(t)
	if err := store.SaveRun("api-run-3", "/data/inv", 2); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveChunk("api-run-3", model.Chunk{Index: 0, FirstSource: 1, LastSource: 3}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	GetRunChunks(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/api-run-3/chunks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GetRunChunks returned %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["count"] != float64(1) {
		t.Errorf("chunk count = %v, want 1", body["count"])
	}
}

func TestDownloadOutput(t *testing.T) {
	initStore(t)
	inputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inputDir, "arrivals.dat"), []byte("1\t1\t0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun("api-run-4", inputDir, 2); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	DownloadOutput(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download/api-run-4/arrivals.dat", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download returned %d", rec.Code)
	}
	if rec.Body.String() != "1\t1\t0.5\n" {
		t.Errorf("downloaded body = %q", rec.Body.String())
	}

	t.Run("rejects non-output files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DownloadOutput(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download/api-run-4/sources.in", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("download of an input file returned %d, want 400", rec.Code)
		}
	})

	t.Run("missing merged file", func(t *testing.T) {
		rec := httptest.NewRecorder()
		DownloadOutput(rec, httptest.NewRequest(http.MethodGet, "/api/v1/download/api-run-4/rays.dat", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("download of an absent file returned %d, want 404", rec.Code)
		}
	})
}
