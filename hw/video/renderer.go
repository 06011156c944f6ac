// Package video renders the Channel F video RAM onto a raster surface.
package video

import (
	"image/color"

	"chanf/ves"
)

// Displayed window of the video RAM. Edge rows and columns never show on a
// TV.
const (
	FirstColumn = 20
	LastColumn  = ves.VRAMWidth - 5
	FirstRow    = 2
	LastRow     = 59
)

// Size of a cell on the surface. Cells aren't square, approximating the TV
// aspect ratio.
const (
	CellWidth  = 5
	CellHeight = 6
)

// Surface size, in pixels.
const (
	Width  = (LastColumn - FirstColumn + 1) * CellWidth
	Height = (LastRow - FirstRow + 1) * CellHeight
)

// A Surface is a raster output.
type Surface interface {
	SetFillColor(c color.RGBA)
	FillRect(x, y, w, h int)
}

type cell struct {
	fg, bg uint8
}

// Renderer draws the video RAM onto a surface, only redrawing cells that
// changed since the previous call.
type Renderer struct {
	surf  Surface
	cache [ves.VRAMWidth][ves.VRAMHeight]cell
}

// NewRenderer returns a renderer drawing to surf, which must initially be
// filled with the color of an empty cell (black).
func NewRenderer(surf Surface) *Renderer {
	return &Renderer{surf: surf}
}

// Render draws the cells of vram that differ from what has been drawn so far
// and returns the number of fill operations issued.
func (r *Renderer) Render(vram *ves.VRAM) int {
	draws := 0
	for y := FirstRow; y <= LastRow; y++ {
		bg := background(vram, y)
		for x := FirstColumn; x <= LastColumn; x++ {
			c := cell{fg: vram.Pixel(x, y), bg: bg}
			if r.cache[x][y] == c {
				continue
			}
			r.cache[x][y] = c

			// Columns and rows are drawn mirrored.
			r.surf.SetFillColor(CellColor(c.fg, c.bg))
			r.surf.FillRect((LastColumn-x)*CellWidth, (LastRow-y)*CellHeight, CellWidth, CellHeight)
			draws++
		}
	}
	return draws
}

// background returns the background code of row y, found in the high plane
// at columns 1 and 2.
func background(vram *ves.VRAM, y int) uint8 {
	addr := y*ves.VRAMWidth + 1
	var bg uint8
	if vram.Bit(1, addr) {
		bg |= 1
	}
	if vram.Bit(1, addr+1) {
		bg |= 2
	}
	return bg
}
