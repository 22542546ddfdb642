package fmtomo

import (
	"fmt"
	"os"
	"path/filepath"
)

// SharedInputs are the fixed-name input files every chunk needs, linked into
// each working directory verbatim. frechet.in is absent on purpose: frechgen
// regenerates it per chunk for that chunk's subset of events.
var SharedInputs = []string{
	"frechgen.in",
	"interfaces.in",
	"interfacesref.in",
	"propgrid.in",
	"vgrids.in",
	"vgridsref.in",
	"mode_set.in",
	"invert3d.in",
}

// OptionalInputs are the ak135 reference Earth-model tables, only needed in
// teleseismic mode. A missing pair is warned about, not fatal.
var OptionalInputs = []string{
	"ak135.hed",
	"ak135.tbl",
}

// Workload is the parsed source/receiver description of one run, immutable
// once loaded.
type Workload struct {
	Sources    []SourceBlock
	SourcesRef []SourceBlock
	Receivers  *ReceiverSet
}

// LoadWorkload parses sources.in, sourcesref.in and receivers.in from the
// input directory.
func LoadWorkload(dir string) (*Workload, error) {
	sources, err := parseSourcesFile(filepath.Join(dir, "sources.in"))
	if err != nil {
		return nil, err
	}
	sourcesRef, err := parseSourcesFile(filepath.Join(dir, "sourcesref.in"))
	if err != nil {
		return nil, err
	}
	if len(sources) != len(sourcesRef) {
		return nil, fmt.Errorf("sources.in has %d sources but sourcesref.in has %d", len(sources), len(sourcesRef))
	}

	f, err := os.Open(filepath.Join(dir, "receivers.in"))
	if err != nil {
		return nil, fmt.Errorf("failed to open receivers.in: %w", err)
	}
	defer f.Close()
	receivers, err := ParseReceivers(f)
	if err != nil {
		return nil, fmt.Errorf("receivers.in: %w", err)
	}

	// Every source must be seen by at least one receiver, otherwise a chunk
	// would hand fm3d a source with an empty receiver list.
	if !receivers.Moddata {
		for id := 1; id <= len(sources); id++ {
			if len(receivers.BySource[id]) == 0 {
				return nil, fmt.Errorf("source %d has no receivers in receivers.in", id)
			}
		}
	}

	return &Workload{Sources: sources, SourcesRef: sourcesRef, Receivers: receivers}, nil
}

func parseSourcesFile(path string) ([]SourceBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	blocks, err := ParseSources(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return blocks, nil
}
