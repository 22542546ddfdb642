package config

import (
	"fmt"
	"os"
	"path/filepath"

	"fm3drun/pkg/utils"
)

// DefaultCores is used when no core count is given on the command line.
const DefaultCores = 2

// Binaries the launcher invokes from BinDir.
var requiredBinaries = []string{"fm3d", "frechgen"}

// Config holds everything the launcher needs to know up front. BinDir
// replaces the hardcoded installation path of the original tooling and is
// validated before any work starts.
type Config struct {
	BinDir       string // directory holding the fm3d and frechgen binaries
	InputDir     string // directory holding the fixed-name input files
	ScratchDir   string // scratch dir name under InputDir for chunk workdirs
	DefaultCores int    // core count used when the argument is omitted
	KeepScratch  bool   // keep chunk workdirs after the merge
	DBPath       string // tracking database path, empty disables tracking
}

// Validate checks the binary and input directories before any chunk work
// begins.
func (c Config) Validate() error {
	if c.BinDir == "" {
		return fmt.Errorf("fmtomo binary directory not set (use -bin or FMTOMO_BIN)")
	}
	for _, tool := range requiredBinaries {
		if !utils.FileExists(filepath.Join(c.BinDir, tool)) {
			return fmt.Errorf("%s not found in %s", tool, c.BinDir)
		}
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return fmt.Errorf("input directory %s: %w", c.InputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory %s is not a directory", c.InputDir)
	}
	if c.ScratchDir == "" {
		return fmt.Errorf("scratch directory name must not be empty")
	}
	return nil
}

// ScratchRoot is the absolute scratch location for this run's chunk
// directories.
func (c Config) ScratchRoot() string {
	return filepath.Join(c.InputDir, c.ScratchDir)
}
