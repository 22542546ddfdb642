package fmtomo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceInversionEnabled reports whether the run inverts for source
// locations, which changes the frechet.dat layout (four relocation rows per
// event). The switch lives on line 25 of invert3d.in; when that file is
// absent, per-source uncertainty columns in sourcesref.in imply relocation.
func SourceInversionEnabled(dir string) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "invert3d.in"))
	if err == nil {
		lines := strings.Split(string(raw), "\n")
		if len(lines) < 25 {
			return false, fmt.Errorf("invert3d.in is truncated: %d lines", len(lines))
		}
		fields := strings.Fields(lines[24])
		if len(fields) == 0 {
			return false, fmt.Errorf("invert3d.in line 25 is empty")
		}
		return fields[0] != "0", nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read invert3d.in: %w", err)
	}

	raw, err = os.ReadFile(filepath.Join(dir, "sourcesref.in"))
	if err != nil {
		return false, fmt.Errorf("failed to read sourcesref.in: %w", err)
	}
	lines := strings.Split(string(raw), "\n")
	if len(lines) < 3 {
		return false, fmt.Errorf("sourcesref.in is truncated: %d lines", len(lines))
	}
	return len(strings.Fields(lines[2])) > 3, nil
}

// WriteGridsave writes gridsave.in for a working directory holding n
// sources, one "<id> 1 / 1 / 1" entry per source.
func WriteGridsave(dir string, n int) error {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d 1\n1\n1\n", i)
	}
	if err := os.WriteFile(filepath.Join(dir, "gridsave.in"), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write gridsave.in: %w", err)
	}
	return nil
}
