package distributor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"fm3drun/internal/config"
	"fm3drun/internal/fmtomo"
	"fm3drun/internal/model"
	"fm3drun/pkg/utils"
)

// runBinary executes one external tool with the chunk directory as its
// working directory, capturing stderr for error reporting.
func runBinary(ctx context.Context, binDir, name, dir string) error {
	cmd := exec.CommandContext(ctx, filepath.Join(binDir, name))
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, utils.TailLines(msg, 5))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// executeChunk runs the external tool chain for one chunk: frechgen to
// regenerate frechet.in for the chunk's subset of events, gridsave.in
// generation, then fm3d itself.
func executeChunk(ctx context.Context, cfg config.Config, ch model.Chunk) model.ChunkResult {
	start := time.Now()
	res := model.ChunkResult{Index: ch.Index}

	fail := func(err error) model.ChunkResult {
		res.Err = fmt.Errorf("chunk %d: %w", ch.Index, err)
		res.ExitCode = exitCode(err)
		res.Duration = time.Since(start)
		return res
	}

	if err := runBinary(ctx, cfg.BinDir, "frechgen", ch.Dir); err != nil {
		return fail(err)
	}
	if err := fmtomo.WriteGridsave(ch.Dir, ch.Sources()); err != nil {
		return fail(err)
	}
	if err := runBinary(ctx, cfg.BinDir, "fm3d", ch.Dir); err != nil {
		return fail(err)
	}

	res.Duration = time.Since(start)
	return res
}

// exitCode extracts the process exit status from a runBinary error, -1 when
// the process never ran or was killed by a signal.
func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
