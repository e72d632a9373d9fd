package game

const (
	// ScreenWidth and ScreenHeight are the playfield dimensions in pixels.
	ScreenWidth  = 320
	ScreenHeight = 200

	// cellSize is the edge of one walkable-grid cell in pixels.
	cellSize = 8

	// GridCols and GridRows are the nominal walkable-grid dimensions (40×25 cells of 8px).
	GridCols = ScreenWidth / cellSize
	GridRows = ScreenHeight / cellSize

	// layerCellSize is the edge of one occlusion cell used by the compositor.
	layerCellSize = 32

	// LayerCols and LayerRows count the 32×32 occlusion cells; the last row is partial.
	LayerCols = (ScreenWidth + layerCellSize - 1) / layerCellSize
	LayerRows = (ScreenHeight + layerCellSize - 1) / layerCellSize
)

// RoomID identifies a room. Zero means "nowhere" (e.g. an item held by a character).
type RoomID uint16

// Point is a pixel position.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned pixel rectangle; W and H may be zero.
type Rect struct {
	X, Y, W, H int
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersects reports whether two rectangles share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether the pixel (x,y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clip returns the part of r inside bounds.
func (r Rect) Clip(bounds Rect) Rect {
	x0 := max(r.X, bounds.X)
	y0 := max(r.Y, bounds.Y)
	x1 := min(r.Right(), bounds.Right())
	y1 := min(r.Bottom(), bounds.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// screenRect is the whole playfield.
var screenRect = Rect{W: ScreenWidth, H: ScreenHeight}

// Direction is one of the four walking directions.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Delta returns the unit cell offset for the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Vertical reports whether the direction moves along the y axis.
func (d Direction) Vertical() bool { return d == DirUp || d == DirDown }

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
