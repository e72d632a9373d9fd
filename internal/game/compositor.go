package game

import "sort"

// Transparent is the palette index skipped when drawing sprites and foreground layers.
const Transparent byte = 0

// Surface is a palette-indexed pixel buffer.
type Surface struct {
	W, H int
	Pix  []byte
}

// NewSurface returns a w×h surface filled with Transparent.
func NewSurface(w, h int) *Surface {
	return &Surface{W: w, H: h, Pix: make([]byte, w*h)}
}

// At returns the pixel at (x,y), or Transparent outside the surface.
func (s *Surface) At(x, y int) byte {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return Transparent
	}
	return s.Pix[y*s.W+x]
}

// Set writes one pixel, ignoring coordinates outside the surface.
func (s *Surface) Set(x, y int, c byte) {
	if x < 0 || y < 0 || x >= s.W || y >= s.H {
		return
	}
	s.Pix[y*s.W+x] = c
}

// Fill paints the rectangle r in colour c.
func (s *Surface) Fill(r Rect, c byte) {
	r = r.Clip(Rect{W: s.W, H: s.H})
	for y := r.Y; y < r.Bottom(); y++ {
		row := s.Pix[y*s.W : (y+1)*s.W]
		for x := r.X; x < r.Right(); x++ {
			row[x] = c
		}
	}
}

// copyRect copies the rectangle r from src into dst at the same coordinates.
// Both surfaces must be at least as large as r.
func copyRect(dst, src *Surface, r Rect) {
	for y := r.Y; y < r.Bottom(); y++ {
		copy(dst.Pix[y*dst.W+r.X:y*dst.W+r.Right()], src.Pix[y*src.W+r.X:y*src.W+r.Right()])
	}
}

// overlayRect draws the opaque pixels of src over dst inside r, same coordinates.
func overlayRect(dst, src *Surface, r Rect) {
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			if c := src.Pix[y*src.W+x]; c != Transparent {
				dst.Pix[y*dst.W+x] = c
			}
		}
	}
}

// cellRect returns the screen rectangle of occlusion cell (col,row); the last row is partial.
func cellRect(col, row int) Rect {
	return Rect{X: col * layerCellSize, Y: row * layerCellSize, W: layerCellSize, H: layerCellSize}.Clip(screenRect)
}

// CellMask flags the 32×32 occlusion cells of the screen.
type CellMask [LayerRows][LayerCols]bool

// Count returns how many cells are set.
func (m *CellMask) Count() int {
	n := 0
	for r := range m {
		for c := range m[r] {
			if m[r][c] {
				n++
			}
		}
	}
	return n
}

// markRect sets every cell touched by the pixel rectangle r.
func (m *CellMask) markRect(r Rect) {
	r = r.Clip(screenRect)
	if r.Empty() {
		return
	}
	for row := r.Y / layerCellSize; row <= (r.Bottom()-1)/layerCellSize; row++ {
		for col := r.X / layerCellSize; col <= (r.Right()-1)/layerCellSize; col++ {
			m[row][col] = true
		}
	}
}

// occupancyMask flags the cells of s holding at least one opaque pixel.
func occupancyMask(s *Surface) CellMask {
	var m CellMask
	for row := 0; row < LayerRows; row++ {
		for col := 0; col < LayerCols; col++ {
			r := cellRect(col, row).Clip(Rect{W: s.W, H: s.H})
		scan:
			for y := r.Y; y < r.Bottom(); y++ {
				for x := r.X; x < r.Right(); x++ {
					if s.Pix[y*s.W+x] != Transparent {
						m[row][col] = true
						break scan
					}
				}
			}
		}
	}
	return m
}

// Sprite is one entity draw request.
type Sprite struct {
	ID      HotspotID
	Surface *Surface
	X, Y    int
	Layer   Layer
	SortY   int // footprint bottom, orders the midground
}

func (s Sprite) rect() Rect { return Rect{X: s.X, Y: s.Y, W: s.Surface.W, H: s.Surface.H} }

// FrameStats describes one composed frame.
type FrameStats struct {
	CellWrites      [LayerRows][LayerCols]int
	EntityCells     int // cells flushed from the staging buffer
	ForegroundCells int // uncovered cells flushed from the background+foreground merge
	BackgroundCells int // uncovered cells flushed straight from the background
	Sprites         int
}

// AllWrittenOnce reports whether every screen cell was flushed exactly once.
func (fs FrameStats) AllWrittenOnce() bool {
	for r := range fs.CellWrites {
		for c := range fs.CellWrites[r] {
			if fs.CellWrites[r][c] != 1 {
				return false
			}
		}
	}
	return true
}

// Compositor renders one room. Foreground occupancy masks and the merged
// static image are computed once when the room is loaded.
type Compositor struct {
	background *Surface
	foreground []*Surface
	fgMasks    []CellMask
	fgAny      CellMask
	merged     *Surface // background with every foreground layer applied
	staging    *Surface
	drawn      CellMask
}

// NewCompositor prepares the static layers of a room. layers[0] is the
// background; the rest are foreground layers drawn over the midground.
// Layers of the wrong size are dropped and reported through bad.
func NewCompositor(layers []*Surface) (c *Compositor, bad []int) {
	c = &Compositor{
		background: NewSurface(ScreenWidth, ScreenHeight),
		staging:    NewSurface(ScreenWidth, ScreenHeight),
	}
	for i, l := range layers {
		if l == nil || l.W != ScreenWidth || l.H != ScreenHeight {
			bad = append(bad, i)
			continue
		}
		if i == 0 {
			c.background = l
			continue
		}
		c.foreground = append(c.foreground, l)
	}
	c.merged = NewSurface(ScreenWidth, ScreenHeight)
	copy(c.merged.Pix, c.background.Pix)
	for _, fg := range c.foreground {
		m := occupancyMask(fg)
		c.fgMasks = append(c.fgMasks, m)
		for row := range m {
			for col := range m[row] {
				if !m[row][col] {
					continue
				}
				c.fgAny[row][col] = true
				overlayRect(c.merged, fg, cellRect(col, row))
			}
		}
	}
	return c, bad
}

// ForegroundMask returns the union of the foreground occupancy masks.
func (c *Compositor) ForegroundMask() CellMask { return c.fgAny }

// Staging returns the buffer entity cells were composed in during the last Render.
func (c *Compositor) Staging() *Surface { return c.staging }

// Render composes the frame and flushes every screen cell to blit exactly once.
//
// Entity cells are composed in a staging buffer: background, layer-3 sprites,
// layer-1 sprites by footprint bottom, the foreground layers occupying any
// entity cell (layer-2 cells included), then layer-2 sprites. Cells no entity touched are flushed straight
// from the static images without touching the staging buffer.
func (c *Compositor) Render(blit Blitter, sprites []Sprite) FrameStats {
	var stats FrameStats
	c.drawn = CellMask{}
	copy(c.staging.Pix, c.background.Pix)

	var back, mid, front []Sprite
	for _, s := range sprites {
		if s.Surface == nil {
			continue
		}
		switch s.Layer {
		case LayerBack:
			back = append(back, s)
		case LayerMid:
			mid = append(mid, s)
		case LayerFront:
			front = append(front, s)
		}
	}
	sort.SliceStable(mid, func(i, j int) bool { return mid[i].SortY < mid[j].SortY })

	for _, s := range back {
		c.drawSprite(s)
	}
	for _, s := range mid {
		c.drawSprite(s)
	}
	// Cells under layer-2 sprites still need their foreground beneath the sprite.
	for _, s := range front {
		c.drawn.markRect(s.rect())
	}
	for i, fg := range c.foreground {
		m := &c.fgMasks[i]
		for row := range m {
			for col := range m[row] {
				if m[row][col] && c.drawn[row][col] {
					overlayRect(c.staging, fg, cellRect(col, row))
				}
			}
		}
	}
	for _, s := range front {
		c.drawSprite(s)
	}
	stats.Sprites = len(back) + len(mid) + len(front)

	for row := 0; row < LayerRows; row++ {
		for col := 0; col < LayerCols; col++ {
			r := cellRect(col, row)
			switch {
			case c.drawn[row][col]:
				blit.BlitRegion(c.staging, r.X, r.Y, r.W, r.H)
				stats.EntityCells++
			case c.fgAny[row][col]:
				blit.BlitRegion(c.merged, r.X, r.Y, r.W, r.H)
				stats.ForegroundCells++
			default:
				blit.BlitRegion(c.background, r.X, r.Y, r.W, r.H)
				stats.BackgroundCells++
			}
			stats.CellWrites[row][col]++
		}
	}
	return stats
}

// drawSprite paints the opaque pixels of s into the staging buffer and marks
// the cells it covers.
func (c *Compositor) drawSprite(s Sprite) {
	r := s.rect().Clip(screenRect)
	if r.Empty() {
		return
	}
	src := s.Surface
	for y := r.Y; y < r.Bottom(); y++ {
		sy := y - s.Y
		for x := r.X; x < r.Right(); x++ {
			if p := src.Pix[sy*src.W+x-s.X]; p != Transparent {
				c.staging.Pix[y*ScreenWidth+x] = p
			}
		}
	}
	c.drawn.markRect(r)
}

// RecordingBlitter is a Blitter that assembles the frame in Screen and
// counts writes per occlusion cell.
type RecordingBlitter struct {
	Screen *Surface
	Writes [LayerRows][LayerCols]int
	Calls  int
}

// NewRecordingBlitter returns a blitter with a blank screen.
func NewRecordingBlitter() *RecordingBlitter {
	return &RecordingBlitter{Screen: NewSurface(ScreenWidth, ScreenHeight)}
}

// BlitRegion implements Blitter.
func (b *RecordingBlitter) BlitRegion(src *Surface, x, y, w, h int) {
	b.Calls++
	r := Rect{X: x, Y: y, W: w, H: h}.Clip(screenRect).Clip(Rect{W: src.W, H: src.H})
	if r.Empty() {
		return
	}
	copyRect(b.Screen, src, r)
	for row := r.Y / layerCellSize; row <= (r.Bottom()-1)/layerCellSize; row++ {
		for col := r.X / layerCellSize; col <= (r.Right()-1)/layerCellSize; col++ {
			b.Writes[row][col]++
		}
	}
}

// Reset clears the write counters, keeping the screen contents.
func (b *RecordingBlitter) Reset() {
	b.Writes = [LayerRows][LayerCols]int{}
	b.Calls = 0
}
