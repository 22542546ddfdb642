package distributor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"fm3drun/internal/config"
	"fm3drun/internal/fmtomo"
	"fm3drun/internal/model"
	"fm3drun/internal/store"
	"fm3drun/pkg/utils"
)

// Run executes one parallel forward-modeling run: split the source workload
// into nCores chunks, run one external process chain per chunk concurrently,
// and merge the per-chunk outputs back into the input directory. Any chunk
// failure fails the whole run before the merge, so a partial combined output
// is never written.
func Run(ctx context.Context, runID string, cfg config.Config, nCores int) (err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting fm3d run %s on %d cores\n", runID, nCores)

	defer func() {
		if err != nil {
			store.UpdateRunStatus(runID, model.RunStatusFailed)
			store.SaveRunError(runID, -1, err)
		}
	}()

	if nCores < 1 {
		return fmt.Errorf("core count must be at least 1, got %d", nCores)
	}
	if err := checkInputs(cfg.InputDir); err != nil {
		return err
	}

	store.UpdateRunStatus(runID, model.RunStatusSplitting)

	wl, err := fmtomo.LoadWorkload(cfg.InputDir)
	if err != nil {
		return err
	}
	total := len(wl.Sources)
	if nCores > total {
		fmt.Printf("Reduced cores to %d (only %d sources)\n", total, total)
		nCores = total
	}

	sourceInversion, err := fmtomo.SourceInversionEnabled(cfg.InputDir)
	if err != nil {
		return err
	}

	ws := utils.NewWorkspace(cfg.ScratchRoot())
	if err := ws.Reset(); err != nil {
		return err
	}

	chunks := PartitionSources(total, nCores)
	for i := range chunks {
		if err := materializeChunk(ws, cfg.InputDir, wl, &chunks[i]); err != nil {
			return fmt.Errorf("chunk %d: %w", chunks[i].Index, err)
		}
		store.SaveChunk(runID, chunks[i])
	}
	fmt.Printf("📦 Split %d sources into %d chunks\n", total, len(chunks))

	store.UpdateRunStatus(runID, model.RunStatusRunning)

	// Spawn one worker process chain per chunk and join them all. The chunks
	// share nothing but the read-only input links, so no coordination beyond
	// the join is needed.
	results := make([]model.ChunkResult, len(chunks))
	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i := range chunks {
		go func(ch model.Chunk) {
			defer wg.Done()
			store.UpdateChunk(runID, ch.Index, model.ChunkStatusRunning, 0, 0)
			res := executeChunk(ctx, cfg, ch)
			results[ch.Index] = res
			if res.Err != nil {
				store.UpdateChunk(runID, ch.Index, model.ChunkStatusFailed, res.ExitCode, res.Duration)
				fmt.Printf("❌ Chunk %d failed after %v: %v\n", ch.Index, res.Duration.Round(time.Millisecond), res.Err)
				return
			}
			store.UpdateChunk(runID, ch.Index, model.ChunkStatusSucceeded, 0, res.Duration)
			fmt.Printf("✅ Chunk %d (%d sources) finished in %v\n", ch.Index, ch.Sources(), res.Duration.Round(time.Millisecond))
		}(chunks[i])
	}
	wg.Wait()

	for _, res := range results {
		if res.Err != nil {
			store.SaveRunError(runID, res.Index, res.Err)
			if err == nil {
				err = fmt.Errorf("aborting merge: %w", res.Err)
			}
		}
	}
	if err != nil {
		return err
	}

	store.UpdateRunStatus(runID, model.RunStatusMerging)
	if err := mergeOutputs(cfg, chunks, sourceInversion); err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	if !cfg.KeepScratch {
		if err := ws.Remove(); err != nil {
			return fmt.Errorf("failed to remove scratch directory: %w", err)
		}
	}

	store.UpdateRunStatus(runID, model.RunStatusCompleted)
	fmt.Printf("🏁 Run %s completed in %v\n", runID, time.Since(start).Round(time.Millisecond))
	return nil
}

// checkInputs verifies every required fixed-name input exists before any
// process is spawned. The ak135 tables are only needed in teleseismic mode
// and just produce a warning when absent.
func checkInputs(inputDir string) error {
	required := append([]string{"sources.in", "sourcesref.in", "receivers.in"}, fmtomo.SharedInputs...)
	for _, name := range required {
		if !utils.FileExists(filepath.Join(inputDir, name)) {
			return fmt.Errorf("required input file %s not found in %s", name, inputDir)
		}
	}
	for _, name := range fmtomo.OptionalInputs {
		if !utils.FileExists(filepath.Join(inputDir, name)) {
			fmt.Printf("⚠️ Optional input %s not found (teleseismic mode unavailable)\n", name)
		}
	}
	return nil
}
