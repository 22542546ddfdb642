package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Workspace manages the scratch directory holding one working subdirectory
// per chunk.
type Workspace struct {
	Root string
}

// NewWorkspace creates a workspace rooted at the given scratch directory.
func NewWorkspace(root string) *Workspace {
	return &Workspace{Root: root}
}

// Reset creates the scratch root and clears anything left over from a
// previous run.
func (ws *Workspace) Reset() error {
	if err := os.MkdirAll(ws.Root, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	entries, err := os.ReadDir(ws.Root)
	if err != nil {
		return fmt.Errorf("failed to read scratch directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(ws.Root, e.Name())); err != nil {
			return fmt.Errorf("failed to clear scratch directory: %w", err)
		}
	}
	return nil
}

// ChunkDir creates (if needed) and returns the working directory for a chunk
// index.
func (ws *Workspace) ChunkDir(idx int) (string, error) {
	dir := filepath.Join(ws.Root, strconv.Itoa(idx))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create chunk directory %d: %w", idx, err)
	}
	return dir, nil
}

// Remove deletes the whole scratch tree.
func (ws *Workspace) Remove() error {
	return os.RemoveAll(ws.Root)
}

// LinkInput symlinks one shared input file from the input directory into a
// chunk working directory.
func LinkInput(inputDir, chunkDir, name string) error {
	src, err := filepath.Abs(filepath.Join(inputDir, name))
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if err := os.Symlink(src, filepath.Join(chunkDir, name)); err != nil {
		return fmt.Errorf("failed to link %s: %w", name, err)
	}
	return nil
}
