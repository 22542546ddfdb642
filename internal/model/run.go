package model

import "time"

// Run statuses, in the order a healthy run moves through them.
const (
	RunStatusPending   = "pending"
	RunStatusSplitting = "splitting"
	RunStatusRunning   = "running"
	RunStatusMerging   = "merging"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Chunk statuses.
const (
	ChunkStatusPending   = "pending"
	ChunkStatusRunning   = "running"
	ChunkStatusSucceeded = "succeeded"
	ChunkStatusFailed    = "failed"
)

// RunSpec describes one parallel forward-modeling run
type RunSpec struct {
	ID        string    `json:"id"`
	InputDir  string    `json:"input_dir"`
	Cores     int       `json:"cores"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chunk is a contiguous slice of the source workload owned by one worker
// process. FirstSource/LastSource are global 1-based source ids, inclusive.
type Chunk struct {
	Index       int    `json:"index"`
	Dir         string `json:"dir"`
	FirstSource int    `json:"first_source"`
	LastSource  int    `json:"last_source"`
}

// Sources returns the number of sources assigned to the chunk.
func (c Chunk) Sources() int {
	return c.LastSource - c.FirstSource + 1
}

// ChunkResult records the terminal state of one worker process.
type ChunkResult struct {
	Index    int           `json:"index"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}
