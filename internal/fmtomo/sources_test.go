package fmtomo

import (
	"strings"
	"testing"
)

const localSources = `3
0
  10.00  131.00  -21.00
1
1
0 1
0
  11.00  132.00  -22.00
1
1
0 1
0
  12.00  133.00  -23.00
1
1
0 1`

const mixedSources = `2
1
P
  0.00  131.00  -21.00
1
1
0 1
0
  11.00  132.00  -22.00
1
1
0 1`

func TestParseSourcesLocal(t *testing.T) {
	blocks, err := ParseSources(strings.NewReader(localSources))
	if err != nil {
		t.Fatalf("ParseSources failed: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 source blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.ID != i+1 {
			t.Errorf("block %d has id %d", i, b.ID)
		}
		if len(b.Lines) != 5 {
			t.Errorf("block %d has %d lines, want 5", i, len(b.Lines))
		}
		if b.Lines[0] != "0" {
			t.Errorf("block %d does not start with the teleseismic flag line: %q", i, b.Lines[0])
		}
	}
}

func TestParseSourcesTeleseismic(t *testing.T) {
	blocks, err := ParseSources(strings.NewReader(mixedSources))
	if err != nil {
		t.Fatalf("ParseSources failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 source blocks, got %d", len(blocks))
	}
	// The teleseismic block carries an extra phase line.
	if len(blocks[0].Lines) != 6 {
		t.Errorf("teleseismic block has %d lines, want 6", len(blocks[0].Lines))
	}
	if blocks[0].Lines[1] != "P" {
		t.Errorf("teleseismic block phase line = %q, want P", blocks[0].Lines[1])
	}
	if len(blocks[1].Lines) != 5 {
		t.Errorf("local block has %d lines, want 5", len(blocks[1].Lines))
	}
}

func TestParseSourcesEmpty(t *testing.T) {
	if _, err := ParseSources(strings.NewReader("")); err == nil {
		t.Fatal("expected an error for empty input")
	}
	if _, err := ParseSources(strings.NewReader("0\n1\n2\n")); err == nil {
		t.Fatal("expected an error when no location lines exist")
	}
}

func TestWriteBlocksRoundtrip(t *testing.T) {
	blocks, err := ParseSources(strings.NewReader(localSources))
	if err != nil {
		t.Fatalf("ParseSources failed: %v", err)
	}

	var buf strings.Builder
	if err := WriteBlocks(&buf, blocks[1:]); err != nil {
		t.Fatalf("WriteBlocks failed: %v", err)
	}

	again, err := ParseSources(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("expected 2 blocks after roundtrip, got %d", len(again))
	}
	if !strings.HasPrefix(buf.String(), "2\n") {
		t.Errorf("written data does not start with the count header: %q", buf.String()[:10])
	}
	for i, b := range again {
		want := blocks[i+1].Lines
		if strings.Join(b.Lines, "\n") != strings.Join(want, "\n") {
			t.Errorf("block %d changed across roundtrip", i)
		}
	}
}
