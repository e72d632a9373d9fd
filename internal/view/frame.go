// Package view holds the front ends of the engine: the palette expansion and
// frame buffer shared by every backend, the ebiten window and the tcell
// terminal viewer.
package view

import (
	"image"
	"image/color"

	"github.com/Garsondee/Temptress/internal/game"
)

// Palette maps the 256 palette indices of a surface to screen colours.
type Palette [256]color.RGBA

// ega is the 16-colour base the default palette starts with.
var ega = [16]color.RGBA{
	{0, 0, 0, 255}, {0, 0, 170, 255}, {0, 170, 0, 255}, {0, 170, 170, 255},
	{170, 0, 0, 255}, {170, 0, 170, 255}, {170, 85, 0, 255}, {170, 170, 170, 255},
	{85, 85, 85, 255}, {85, 85, 255, 255}, {85, 255, 85, 255}, {85, 255, 255, 255},
	{255, 85, 85, 255}, {255, 85, 255, 255}, {255, 255, 85, 255}, {255, 255, 255, 255},
}

// DefaultPalette is the EGA colours followed by fifteen ramps of sixteen
// shades, one per EGA hue.
func DefaultPalette() *Palette {
	var p Palette
	copy(p[:16], ega[:])
	for i := 16; i < 256; i++ {
		base := ega[1+(i-16)/16]
		shade := (i-16)%16 + 1 // 1..16
		p[i] = color.RGBA{
			R: uint8(int(base.R) * shade / 16),
			G: uint8(int(base.G) * shade / 16),
			B: uint8(int(base.B) * shade / 16),
			A: 255,
		}
	}
	return &p
}

// Colors returns the palette as an image palette.
func (p *Palette) Colors() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

// Frame is the screen a backend shows: a paletted image the compositor blits
// into. It implements game.Blitter.
type Frame struct {
	Img     *image.Paletted
	palette *Palette
	blits   int
}

// NewFrame returns a screen-sized frame using p.
func NewFrame(p *Palette) *Frame {
	return &Frame{
		Img:     image.NewPaletted(image.Rect(0, 0, game.ScreenWidth, game.ScreenHeight), p.Colors()),
		palette: p,
	}
}

// BlitRegion implements game.Blitter.
func (f *Frame) BlitRegion(src *game.Surface, x, y, w, h int) {
	f.blits++
	r := image.Rect(x, y, x+w, y+h).Intersect(f.Img.Rect).Intersect(image.Rect(0, 0, src.W, src.H))
	for py := r.Min.Y; py < r.Max.Y; py++ {
		copy(f.Img.Pix[py*f.Img.Stride+r.Min.X:py*f.Img.Stride+r.Max.X], src.Pix[py*src.W+r.Min.X:py*src.W+r.Max.X])
	}
}

// Blits returns the number of regions blitted since the last call.
func (f *Frame) Blits() int {
	n := f.blits
	f.blits = 0
	return n
}

// At returns the colour of the pixel at (x,y).
func (f *Frame) At(x, y int) color.RGBA {
	return f.palette[f.Img.ColorIndexAt(x, y)]
}

// RGBA expands the frame into dst, four bytes per pixel, growing it as needed.
func (f *Frame) RGBA(dst []byte) []byte {
	n := len(f.Img.Pix) * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	for i, idx := range f.Img.Pix {
		c := f.palette[idx]
		dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3] = c.R, c.G, c.B, c.A
	}
	return dst
}
