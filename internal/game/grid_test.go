package game

import (
	"errors"
	"strings"
	"testing"
)

func TestGrid_WalkableByDefault(t *testing.T) {
	g := NewGrid(GridCols, GridRows)
	if g.IsBlocked(0, 0) || g.IsBlocked(GridCols-1, GridRows-1) {
		t.Fatal("new grid should have no blocked cells")
	}
	if g.FreeCount() != GridCols*GridRows {
		t.Fatalf("expected %d free cells, got %d", GridCols*GridRows, g.FreeCount())
	}
}

func TestGrid_OOB_IsBlockedNotOccupied(t *testing.T) {
	g := NewGrid(4, 4)
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if !g.IsBlocked(c[0], c[1]) {
			t.Errorf("(%d,%d) out of bounds should be blocked", c[0], c[1])
		}
		if g.IsOccupied(c[0], c[1]) {
			t.Errorf("(%d,%d) out of bounds should not be occupied", c[0], c[1])
		}
	}
}

func TestGrid_MarkClearRestoresOverlay(t *testing.T) {
	g := NewGrid(GridCols, GridRows)
	before := g.Occupancy()
	r := CellRect{X: 10, Y: 12, W: 3, H: 1}
	g.MarkOccupied(r)
	if g.OccupiedCount() != 3 {
		t.Fatalf("expected 3 occupied cells, got %d", g.OccupiedCount())
	}
	if g.AreaFree(9, 12, 2) {
		t.Fatal("area overlapping the footprint should not be free")
	}
	if !g.AreaFree(13, 12, 2) {
		t.Fatal("area right of the footprint should be free")
	}
	g.ClearOccupied(r)
	after := g.Occupancy()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("overlay cell %d not restored", i)
		}
	}
}

func TestGrid_MarkClipsToBounds(t *testing.T) {
	g := NewGrid(4, 2)
	g.MarkOccupied(CellRect{X: 2, Y: 1, W: 5, H: 3})
	// Only (2,1) and (3,1) are inside.
	if g.OccupiedCount() != 2 {
		t.Fatalf("expected 2 occupied cells, got %d", g.OccupiedCount())
	}
}

func TestGridCodec_RoundTrip(t *testing.T) {
	g, err := ParseGridArt(`
		####....
		##......
		........
		.......#`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	enc := EncodeGrid(g)
	if enc[0] != 8 || enc[1] != 4 {
		t.Fatalf("header = %d,%d want 8,4", enc[0], enc[1])
	}
	back, err := DecodeGrid(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.String() != g.String() {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", back, g)
	}
	if back.BlockedCount() != 7 || back.FreeCount() != 25 {
		t.Fatalf("counts blocked=%d free=%d, want 7/25", back.BlockedCount(), back.FreeCount())
	}
}

func TestGridCodec_LongRunsSplit(t *testing.T) {
	g := BlockedGrid(GridCols, GridRows)
	enc := EncodeGrid(g)
	// 1000 blocked cells need ceil(1000/127) = 8 runs.
	if len(enc) != 2+8 {
		t.Fatalf("expected 10 bytes, got %d", len(enc))
	}
	back, err := DecodeGrid(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.FreeCount() != 0 {
		t.Fatalf("expected fully blocked grid, %d free", back.FreeCount())
	}
}

func TestGridCodec_MalformedIsFullyBlocked(t *testing.T) {
	cases := map[string][]byte{
		"short header": {40},
		"zero size":    {0, 25},
		"zero run":     {2, 1, 0x00},
		"overflow":     {2, 1, 0x03},
		"underflow":    {2, 2, 0x02},
	}
	for name, data := range cases {
		g, err := DecodeGrid(data)
		if !errors.Is(err, ErrMalformedGrid) {
			t.Errorf("%s: expected ErrMalformedGrid, got %v", name, err)
			continue
		}
		if g.FreeCount() != 0 {
			t.Errorf("%s: fallback grid should be fully blocked, %d free", name, g.FreeCount())
		}
	}
}

func TestDecodePackedGrid(t *testing.T) {
	// 10 columns need 2 bytes per row. Row 0 blocks cells 0 and 9, row 1 is free.
	data := []byte{0x80, 0x40, 0x00, 0x00}
	g, err := DecodePackedGrid(data, 10, 2)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !g.IsBlocked(0, 0) || !g.IsBlocked(9, 0) {
		t.Fatal("expected cells 0 and 9 of row 0 blocked")
	}
	if g.BlockedCount() != 2 {
		t.Fatalf("expected 2 blocked, got %d", g.BlockedCount())
	}
	if _, err := DecodePackedGrid(data[:3], 10, 2); !errors.Is(err, ErrMalformedGrid) {
		t.Fatalf("short packed mask should fail, got %v", err)
	}
}

func TestParseGridArt_RaggedRows(t *testing.T) {
	_, err := ParseGridArt("....\n...")
	if !errors.Is(err, ErrMalformedGrid) {
		t.Fatalf("expected ErrMalformedGrid, got %v", err)
	}
}

func TestGrid_StringMarksOccupancy(t *testing.T) {
	g := NewGrid(3, 1)
	g.MarkOccupied(CellRect{X: 1, W: 1, H: 1})
	if got := strings.TrimSpace(g.String()); got != ".o." {
		t.Fatalf("expected .o. got %q", got)
	}
}
