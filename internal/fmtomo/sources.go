package fmtomo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SourceBlock is one source specification from sources.in or sourcesref.in,
// identified by its 1-based position in the file. A local source spans two
// lines (teleseismic flag, location); a teleseismic source carries an extra
// phase line between the flag and the location. Path lines follow the
// location line in both cases.
type SourceBlock struct {
	ID    int      `json:"id"`
	Lines []string `json:"lines"`
}

// ParseSources splits a sources file into per-source blocks. The first line
// of the file holds the source count and is skipped; blocks are located by
// their location line, the only line in a block that contains a decimal
// point.
func ParseSources(r io.Reader) ([]SourceBlock, error) {
	body, err := dataLines(r)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("sources data is empty")
	}
	// Skip the count header.
	body = body[1:]

	var starts []int
	for i, line := range body {
		if !strings.Contains(line, ".") {
			continue
		}
		// No digit on the line above the location means that line is a phase
		// name, so the block is teleseismic and starts two lines up.
		start := i - 1
		if i > 0 && !hasDigit(body[i-1]) {
			start = i - 2
		}
		if start < 0 {
			return nil, fmt.Errorf("location line %q has no preceding source flag", line)
		}
		starts = append(starts, start)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("no source location lines found")
	}

	starts = append(starts, len(body))
	blocks := make([]SourceBlock, 0, len(starts)-1)
	for i := 0; i < len(starts)-1; i++ {
		blocks = append(blocks, SourceBlock{
			ID:    i + 1,
			Lines: body[starts[i]:starts[i+1]],
		})
	}
	return blocks, nil
}

// WriteBlocks writes a count header followed by the blocks, matching the
// layout fm3d expects for sources.in and sourcesref.in.
func WriteBlocks(w io.Writer, blocks []SourceBlock) error {
	parts := make([]string, 0, len(blocks)+1)
	parts = append(parts, strconv.Itoa(len(blocks)))
	for _, b := range blocks {
		parts = append(parts, strings.Join(b.Lines, "\n"))
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n"))
	return err
}

// dataLines reads all non-blank lines from r.
func dataLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input data: %w", err)
	}
	return lines, nil
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
