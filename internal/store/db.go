package store

import (
	"database/sql"
	"fmt"
	"time"

	"fm3drun/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// InitDB opens the tracking database and creates the schema. Tracking is
// optional for bare CLI runs: until InitDB is called every writer below is a
// no-op.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_dir TEXT,
		cores INTEGER,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	chunkTable := `
	CREATE TABLE IF NOT EXISTS run_chunks (
		run_id TEXT,
		chunk_idx INTEGER,
		sources INTEGER,
		first_source INTEGER,
		last_source INTEGER,
		status TEXT,
		exit_code INTEGER,
		duration_ms INTEGER,
		updated_at DATETIME,
		PRIMARY KEY (run_id, chunk_idx)
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		chunk_idx INTEGER,
		error_message TEXT,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, chunkTable, errorTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new run in pending state.
func SaveRun(runID, inputDir string, cores int) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO runs (id, input_dir, cores, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, inputDir, cores, model.RunStatusPending, now, now)
	return err
}

// UpdateRunStatus updates a run's status.
func UpdateRunStatus(runID, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records an error for a run. chunkIdx is -1 for run-level
// failures.
func SaveRunError(runID string, chunkIdx int, runErr error) error {
	if db == nil || runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, chunk_idx, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, chunkIdx, runErr.Error(), now)
	return err
}

// SaveChunk stores a chunk assignment in pending state.
func SaveChunk(runID string, c model.Chunk) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT OR REPLACE INTO run_chunks (run_id, chunk_idx, sources, first_source, last_source, status, exit_code, duration_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?)`,
		runID, c.Index, c.Sources(), c.FirstSource, c.LastSource, model.ChunkStatusPending, now)
	return err
}

// UpdateChunk records a chunk's status transition and, on exit, its exit
// code and duration.
func UpdateChunk(runID string, chunkIdx int, status string, exitCode int, duration time.Duration) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE run_chunks SET status = ?, exit_code = ?, duration_ms = ?, updated_at = ? WHERE run_id = ? AND chunk_idx = ?`,
		status, exitCode, duration.Milliseconds(), now, runID, chunkIdx)
	return err
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	rows, err := db.Query(`SELECT id, input_dir, cores, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, inputDir, status string
		var cores int
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &inputDir, &cores, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"inputDir":  inputDir,
			"cores":     cores,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches one run.
func GetRun(runID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	var inputDir, status string
	var cores int
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT input_dir, cores, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&inputDir, &cores, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"inputDir":  inputDir,
		"cores":     cores,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetRunChunks returns per-chunk progress for a run in chunk order.
func GetRunChunks(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	rows, err := db.Query(`SELECT chunk_idx, sources, first_source, last_source, status, exit_code, duration_ms, updated_at
		FROM run_chunks WHERE run_id = ? ORDER BY chunk_idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []map[string]interface{}
	for rows.Next() {
		var idx, sources, first, last, exitCode int
		var durationMs int64
		var status string
		var updatedAt time.Time
		if err := rows.Scan(&idx, &sources, &first, &last, &status, &exitCode, &durationMs, &updatedAt); err != nil {
			return nil, err
		}
		chunks = append(chunks, map[string]interface{}{
			"index":       idx,
			"sources":     sources,
			"firstSource": first,
			"lastSource":  last,
			"status":      status,
			"exitCode":    exitCode,
			"durationMs":  durationMs,
			"updatedAt":   updatedAt,
		})
	}
	return chunks, rows.Err()
}

// GetRunErrors returns the recorded errors for a run, oldest first.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	rows, err := db.Query(`SELECT chunk_idx, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []map[string]interface{}
	for rows.Next() {
		var chunkIdx int
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&chunkIdx, &msg, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"chunkIdx":  chunkIdx,
			"message":   msg,
			"createdAt": createdAt,
		})
	}
	return errs, rows.Err()
}
