package distributor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fm3drun/internal/config"
	"fm3drun/internal/model"
	"fm3drun/pkg/utils"
)

// mergeOutputs concatenates the per-chunk output files in chunk-index order
// into the combined files a single-process fm3d invocation would have
// written, restoring the global source numbering. rays.dat and arrtimes.dat
// are only produced by some fm3d configurations and are merged when present.
func mergeOutputs(cfg config.Config, chunks []model.Chunk, sourceInversion bool) error {
	chunkFiles := func(name string) []string {
		files := make([]string, 0, len(chunks))
		for _, ch := range chunks {
			files = append(files, filepath.Join(ch.Dir, name))
		}
		return files
	}

	if err := combineArrivals(filepath.Join(cfg.InputDir, "arrivals.dat"), chunkFiles("arrivals.dat")); err != nil {
		return fmt.Errorf("arrivals.dat: %w", err)
	}
	if err := combineRaySeparated(filepath.Join(cfg.InputDir, "frechet.dat"), chunkFiles("frechet.dat"), 3, sourceInversion); err != nil {
		return fmt.Errorf("frechet.dat: %w", err)
	}
	if utils.FileExists(filepath.Join(chunks[0].Dir, "rays.dat")) {
		if err := combineRaySeparated(filepath.Join(cfg.InputDir, "rays.dat"), chunkFiles("rays.dat"), 4, sourceInversion); err != nil {
			return fmt.Errorf("rays.dat: %w", err)
		}
	}
	if utils.FileExists(filepath.Join(chunks[0].Dir, "arrtimes.dat")) {
		if err := combineArrtimes(filepath.Join(cfg.InputDir, "arrtimes.dat"), chunkFiles("arrtimes.dat")); err != nil {
			return fmt.Errorf("arrtimes.dat: %w", err)
		}
	}
	return nil
}

// combineArrivals merges per-chunk arrivals.dat files. Column 1 is the ray
// index, re-sequenced globally; column 2 is the chunk-local source id,
// rewritten to the global 1-based counter that advances at each source-group
// boundary. All other columns pass through untouched.
func combineArrivals(out string, files []string) error {
	var rows []string
	counter := 0
	rayIdx := 0
	for _, f := range files {
		lines, err := readDataLines(f)
		if err != nil {
			return err
		}
		prev := ""
		for _, l := range lines {
			fields := strings.Fields(l)
			if len(fields) < 3 {
				return fmt.Errorf("malformed arrival row %q in %s", l, f)
			}
			if fields[1] != prev {
				counter++
				prev = fields[1]
			}
			rayIdx++
			fields[0] = strconv.Itoa(rayIdx)
			fields[1] = strconv.Itoa(counter)
			rows = append(rows, strings.Join(fields, "\t"))
		}
	}
	return os.WriteFile(out, []byte(strings.Join(rows, "\n")+"\n"), 0644)
}

// combineRaySeparated merges ray-separated datafiles (frechet.dat,
// rays.dat): blocks of per-ray data introduced by a header row, recognized
// as any row with more than minHeaderFields whitespace-separated tokens.
// Header rows get the global source id (and, for frechet, the global ray
// index); for rays.dat the two fields after the leading one both name the
// source. When source inversion is on, the four relocation rows closing each
// frechet block get their leading index shifted past the rows of the events
// merged so far.
func combineRaySeparated(out string, files []string, minHeaderFields int, sourceInversion bool) error {
	isRays := filepath.Base(out) == "rays.dat"
	isFrechet := strings.Contains(filepath.Base(out), "frechet")

	rayIdx := 0
	counter := 0
	nEvsPrev := 0
	var all []string

	for _, f := range files {
		data, err := readDataLines(f)
		if err != nil {
			return err
		}

		var headerIdxs []int
		for i, l := range data {
			if len(strings.Fields(l)) > minHeaderFields {
				headerIdxs = append(headerIdxs, i)
			}
		}
		if len(headerIdxs) == 0 {
			return fmt.Errorf("no ray headers found in %s", f)
		}

		seen := make(map[string]bool)
		for _, idx := range headerIdxs {
			fields := strings.Fields(data[idx])
			ev := fields[1]
			if !seen[ev] {
				seen[ev] = true
				counter++
			}
			rayIdx++
			if isRays {
				fields[1] = strconv.Itoa(counter)
				fields[2] = strconv.Itoa(counter)
			} else {
				fields[0] = strconv.Itoa(rayIdx)
				fields[1] = strconv.Itoa(counter)
			}
			data[idx] = strings.Join(fields, "\t")
		}

		if isFrechet && sourceInversion && nEvsPrev > 0 {
			// Block boundaries: every header after the first, plus EOF.
			bounds := append(append([]int(nil), headerIdxs[1:]...), len(data))
			for _, idx := range bounds {
				for sub := 1; sub <= 4 && idx-sub >= 0; sub++ {
					fields := strings.Fields(data[idx-sub])
					n, err := strconv.Atoi(fields[0])
					if err != nil {
						return fmt.Errorf("malformed relocation row %q in %s", data[idx-sub], f)
					}
					fields[0] = strconv.Itoa(n + 4*nEvsPrev)
					data[idx-sub] = strings.Join(fields, "\t")
				}
			}
		}

		nEvsPrev += len(seen)
		all = append(all, data...)
	}
	return os.WriteFile(out, []byte(strings.Join(all, "\n")), 0644)
}

// combineArrtimes merges arrtimes.dat files: the 4-line grid header is kept
// once, per-source header rows (more than one token) are renumbered to the
// global event counter, and the source count in the grid header is rewritten
// to the combined total.
func combineArrtimes(out string, files []string) error {
	evCounter := 0
	var all []string

	for i, f := range files {
		data, err := readDataLines(f)
		if err != nil {
			return err
		}
		if len(data) < 4 {
			return fmt.Errorf("arrtimes data in %s is truncated", f)
		}
		if i == 0 {
			all = append(all, data[:4]...)
		}
		for _, l := range data[4:] {
			fields := strings.Fields(l)
			if len(fields) > 1 {
				evCounter++
				fields[0] = strconv.Itoa(evCounter)
				all = append(all, "           "+strings.Join(fields, "           "))
			} else {
				all = append(all, l)
			}
		}
	}

	all[3] = "          " + strconv.Itoa(evCounter)
	return os.WriteFile(out, []byte(strings.Join(all, "\n")), 0644)
}

// readDataLines returns a file's non-blank lines.
func readDataLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}
