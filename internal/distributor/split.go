package distributor

import (
	"fmt"
	"os"
	"path/filepath"

	"fm3drun/internal/fmtomo"
	"fm3drun/internal/model"
	"fm3drun/pkg/utils"
)

// materializeChunk writes a chunk's private working directory: the subset
// sources.in/sourcesref.in, a receivers.in renumbered to the chunk-local
// 1-based source ids, and symlinks to the shared input files.
func materializeChunk(ws *utils.Workspace, inputDir string, wl *fmtomo.Workload, ch *model.Chunk) error {
	dir, err := ws.ChunkDir(ch.Index)
	if err != nil {
		return err
	}
	ch.Dir = dir

	sub := wl.Sources[ch.FirstSource-1 : ch.LastSource]
	subRef := wl.SourcesRef[ch.FirstSource-1 : ch.LastSource]
	if err := writeBlocksFile(filepath.Join(dir, "sources.in"), sub); err != nil {
		return err
	}
	if err := writeBlocksFile(filepath.Join(dir, "sourcesref.in"), subRef); err != nil {
		return err
	}

	receivers, err := chunkReceivers(wl, *ch)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "receivers.in"))
	if err != nil {
		return fmt.Errorf("failed to create receivers.in: %w", err)
	}
	defer f.Close()
	if err := fmtomo.WriteReceivers(f, receivers); err != nil {
		return fmt.Errorf("failed to write receivers.in: %w", err)
	}

	for _, name := range fmtomo.SharedInputs {
		if err := utils.LinkInput(inputDir, dir, name); err != nil {
			return err
		}
	}
	for _, name := range fmtomo.OptionalInputs {
		if !utils.FileExists(filepath.Join(inputDir, name)) {
			continue
		}
		if err := utils.LinkInput(inputDir, dir, name); err != nil {
			return err
		}
	}
	return nil
}

// chunkReceivers collects the receiver blocks for a chunk's sources,
// renumbered so each chunk sees source ids starting at 1.
func chunkReceivers(wl *fmtomo.Workload, ch model.Chunk) ([]fmtomo.ReceiverBlock, error) {
	if wl.Receivers.Moddata {
		// With moddata input every source reaches every receiver, so one
		// source's block list stands for all of them.
		ids := make([]int, 0, ch.Sources())
		for id := ch.FirstSource; id <= ch.LastSource; id++ {
			ids = append(ids, id)
		}
		return fmtomo.ResetModdataReceivers(wl.Receivers.BySource[ch.FirstSource], ids)
	}

	var out []fmtomo.ReceiverBlock
	local := 0
	for id := ch.FirstSource; id <= ch.LastSource; id++ {
		local++
		for _, b := range wl.Receivers.BySource[id] {
			if id != local {
				b = b.Renumber(local)
			}
			out = append(out, b)
		}
	}
	return out, nil
}

func writeBlocksFile(path string, blocks []fmtomo.SourceBlock) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if err := fmtomo.WriteBlocks(f, blocks); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
