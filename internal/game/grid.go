package game

import (
	"fmt"
	"strings"
)

// CellRect is a rectangle measured in walkable-grid cells.
type CellRect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r CellRect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Grid is a room's walkability mask plus the live occupancy overlay.
// The static mask never changes after decoding; only the overlay is mutated.
type Grid struct {
	cols     int
	rows     int
	blocked  []bool
	occupied []bool
}

// NewGrid returns a fully walkable grid.
func NewGrid(cols, rows int) *Grid {
	return &Grid{
		cols:     cols,
		rows:     rows,
		blocked:  make([]bool, cols*rows),
		occupied: make([]bool, cols*rows),
	}
}

// BlockedGrid returns a grid on which nothing is walkable. It stands in for
// mask data that failed to decode.
func BlockedGrid(cols, rows int) *Grid {
	g := NewGrid(cols, rows)
	for i := range g.blocked {
		g.blocked[i] = true
	}
	return g
}

// Cols returns the grid width in cells.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the grid height in cells.
func (g *Grid) Rows() int { return g.rows }

func (g *Grid) inBounds(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < g.cols && cy < g.rows
}

// IsBlocked reports whether the static mask blocks (cx,cy). Out of bounds is blocked.
func (g *Grid) IsBlocked(cx, cy int) bool {
	if !g.inBounds(cx, cy) {
		return true
	}
	return g.blocked[cy*g.cols+cx]
}

// IsOccupied reports whether some entity footprint currently covers (cx,cy).
func (g *Grid) IsOccupied(cx, cy int) bool {
	if !g.inBounds(cx, cy) {
		return false
	}
	return g.occupied[cy*g.cols+cx]
}

// Passable reports whether (cx,cy) is neither blocked nor occupied.
func (g *Grid) Passable(cx, cy int) bool {
	return !g.IsBlocked(cx, cy) && !g.IsOccupied(cx, cy)
}

// AreaFree reports whether the w cells starting at (cx,cy) going right are all passable.
func (g *Grid) AreaFree(cx, cy, w int) bool {
	for x := cx; x < cx+max(w, 1); x++ {
		if !g.Passable(x, cy) {
			return false
		}
	}
	return true
}

func (g *Grid) setOverlay(r CellRect, v bool) {
	for cy := max(r.Y, 0); cy < min(r.Y+r.H, g.rows); cy++ {
		for cx := max(r.X, 0); cx < min(r.X+r.W, g.cols); cx++ {
			g.occupied[cy*g.cols+cx] = v
		}
	}
}

// MarkOccupied sets the overlay for every cell of r. Cells outside the grid are ignored.
func (g *Grid) MarkOccupied(r CellRect) { g.setOverlay(r, true) }

// ClearOccupied clears the overlay for every cell of r. There is no reference
// counting: callers must not clear a rectangle they did not mark.
func (g *Grid) ClearOccupied(r CellRect) { g.setOverlay(r, false) }

// BlockedCount returns the number of statically blocked cells.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, b := range g.blocked {
		if b {
			n++
		}
	}
	return n
}

// FreeCount returns the number of statically walkable cells.
func (g *Grid) FreeCount() int { return len(g.blocked) - g.BlockedCount() }

// OccupiedCount returns the number of overlay cells currently marked.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, o := range g.occupied {
		if o {
			n++
		}
	}
	return n
}

// Occupancy returns a copy of the overlay in row-major order.
func (g *Grid) Occupancy() []bool {
	out := make([]bool, len(g.occupied))
	copy(out, g.occupied)
	return out
}

// String renders the grid as art: '#' blocked, 'o' occupied, '.' free.
func (g *Grid) String() string {
	var sb strings.Builder
	for cy := 0; cy < g.rows; cy++ {
		for cx := 0; cx < g.cols; cx++ {
			switch {
			case g.IsBlocked(cx, cy):
				sb.WriteByte('#')
			case g.IsOccupied(cx, cy):
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Codec ---
//
// Encoded masks are two header bytes (cols, rows) followed by runs in row-major
// order. Each run byte holds the blocked flag in bit 7 and a length 1..127 in
// the low bits. Runs may wrap across rows.

const (
	runBlockedBit = 0x80
	runMaxLen     = 0x7f
)

// EncodeGrid run-length encodes the static mask of g.
func EncodeGrid(g *Grid) []byte {
	out := []byte{byte(g.cols), byte(g.rows)}
	i := 0
	for i < len(g.blocked) {
		v := g.blocked[i]
		n := 1
		for i+n < len(g.blocked) && g.blocked[i+n] == v && n < runMaxLen {
			n++
		}
		b := byte(n)
		if v {
			b |= runBlockedBit
		}
		out = append(out, b)
		i += n
	}
	return out
}

// DecodeGrid expands an encoded mask. On malformed input it returns a fully
// blocked grid of the nominal size together with an error wrapping ErrMalformedGrid.
func DecodeGrid(data []byte) (*Grid, error) {
	if len(data) < 2 {
		return BlockedGrid(GridCols, GridRows), fmt.Errorf("%w: %d byte header", ErrMalformedGrid, len(data))
	}
	cols, rows := int(data[0]), int(data[1])
	if cols == 0 || rows == 0 {
		return BlockedGrid(GridCols, GridRows), fmt.Errorf("%w: zero dimension %dx%d", ErrMalformedGrid, cols, rows)
	}
	g := NewGrid(cols, rows)
	pos := 0
	for i, b := range data[2:] {
		n := int(b & runMaxLen)
		if n == 0 {
			return BlockedGrid(cols, rows), fmt.Errorf("%w: zero-length run at byte %d", ErrMalformedGrid, i+2)
		}
		if pos+n > len(g.blocked) {
			return BlockedGrid(cols, rows), fmt.Errorf("%w: runs overflow %dx%d grid", ErrMalformedGrid, cols, rows)
		}
		if b&runBlockedBit != 0 {
			for k := pos; k < pos+n; k++ {
				g.blocked[k] = true
			}
		}
		pos += n
	}
	if pos != len(g.blocked) {
		return BlockedGrid(cols, rows), fmt.Errorf("%w: runs cover %d of %d cells", ErrMalformedGrid, pos, len(g.blocked))
	}
	return g, nil
}

// DecodePackedGrid expands a 1-bit-per-cell mask, MSB first, each row padded to
// a whole byte. A set bit is blocked.
func DecodePackedGrid(data []byte, cols, rows int) (*Grid, error) {
	rowBytes := (cols + 7) / 8
	if cols <= 0 || rows <= 0 || len(data) < rowBytes*rows {
		return BlockedGrid(max(cols, 1), max(rows, 1)), fmt.Errorf("%w: packed mask %d bytes for %dx%d", ErrMalformedGrid, len(data), cols, rows)
	}
	g := NewGrid(cols, rows)
	for cy := 0; cy < rows; cy++ {
		row := data[cy*rowBytes : (cy+1)*rowBytes]
		for cx := 0; cx < cols; cx++ {
			if row[cx/8]&(0x80>>(cx%8)) != 0 {
				g.blocked[cy*cols+cx] = true
			}
		}
	}
	return g, nil
}

// ParseGridArt builds a grid from text rows where '#' is blocked and any other
// character is walkable. All rows must be the same width.
func ParseGridArt(art string) (*Grid, error) {
	var lines []string
	for _, l := range strings.Split(art, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return BlockedGrid(GridCols, GridRows), fmt.Errorf("%w: empty art", ErrMalformedGrid)
	}
	cols := len(lines[0])
	g := NewGrid(cols, len(lines))
	for cy, l := range lines {
		if len(l) != cols {
			return BlockedGrid(cols, len(lines)), fmt.Errorf("%w: row %d is %d wide, want %d", ErrMalformedGrid, cy, len(l), cols)
		}
		for cx := 0; cx < cols; cx++ {
			g.blocked[cy*cols+cx] = l[cx] == '#'
		}
	}
	return g, nil
}
