package fmtomo

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReceiverBlock is one receiver specification from receivers.in: a location
// line, a path count, the source id row and the path row.
type ReceiverBlock struct {
	Lines []string `json:"lines"`
}

// ReceiverSet maps source ids to the receivers that picked them up. Moddata
// is set when receivers.in was generated by moddata, in which case every
// receiver block lists all sources on its id row and is associated with each
// of them.
type ReceiverSet struct {
	BySource map[int][]ReceiverBlock
	Moddata  bool
}

// ParseReceivers splits a receivers file into per-receiver blocks and groups
// them by the source id(s) on each block's third line.
func ParseReceivers(r io.Reader) (*ReceiverSet, error) {
	body, err := dataLines(r)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("receivers data is empty")
	}
	// Skip the count header.
	body = body[1:]

	var starts []int
	for i, line := range body {
		// Location lines are the only ones carrying a decimal point.
		if strings.Contains(line, ".") {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("no receiver location lines found")
	}
	starts = append(starts, len(body))

	set := &ReceiverSet{BySource: make(map[int][]ReceiverBlock)}
	for i := 0; i < len(starts)-1; i++ {
		block := ReceiverBlock{Lines: body[starts[i]:starts[i+1]]}
		if len(block.Lines) < 4 {
			return nil, fmt.Errorf("receiver block %d is truncated (%d lines)", i+1, len(block.Lines))
		}
		ids := strings.Fields(block.Lines[2])
		if len(ids) > 1 {
			// Several ids on one receiver means the file came from moddata.
			set.Moddata = true
		}
		for _, s := range ids {
			id, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("receiver block %d has a malformed source id %q", i+1, s)
			}
			set.BySource[id] = append(set.BySource[id], block)
		}
	}
	return set, nil
}

// Renumber returns a copy of the block pointing at a new source id. Used to
// make a chunk's receivers independent of the global source numbering.
func (b ReceiverBlock) Renumber(id int) ReceiverBlock {
	lines := append([]string(nil), b.Lines...)
	lines[2] = fmt.Sprintf("           %d", id)
	return ReceiverBlock{Lines: lines}
}

// ResetModdataReceivers restricts moddata receiver blocks to the given
// global source ids and renumbers the retained ids 1..n. Path entries are
// filtered alongside their ids.
func ResetModdataReceivers(blocks []ReceiverBlock, ids []int) ([]ReceiverBlock, error) {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]ReceiverBlock, 0, len(blocks))
	for i, b := range blocks {
		lines := append([]string(nil), b.Lines...)
		srcIDs := strings.Fields(lines[2])
		paths := strings.Fields(lines[3])
		if len(paths) < len(srcIDs) {
			return nil, fmt.Errorf("receiver block %d has %d source ids but %d paths", i+1, len(srcIDs), len(paths))
		}

		var activeIDs, activePaths []string
		for j, s := range srcIDs {
			id, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("receiver block %d has a malformed source id %q", i+1, s)
			}
			if want[id] {
				activeIDs = append(activeIDs, strconv.Itoa(len(activeIDs)+1))
				activePaths = append(activePaths, paths[j])
			}
		}

		lines[1] = fmt.Sprintf("           %d", len(activeIDs))
		lines[2] = "           " + strings.Join(activeIDs, "           ")
		lines[3] = "           " + strings.Join(activePaths, "           ")
		out = append(out, ReceiverBlock{Lines: lines})
	}
	return out, nil
}

// WriteReceivers writes a count header followed by the receiver blocks.
func WriteReceivers(w io.Writer, blocks []ReceiverBlock) error {
	parts := make([]string, 0, len(blocks)+1)
	parts = append(parts, strconv.Itoa(len(blocks)))
	for _, b := range blocks {
		parts = append(parts, strings.Join(b.Lines, "\n"))
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n"))
	return err
}
