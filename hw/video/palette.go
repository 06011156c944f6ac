package video

import "image/color"

// Palettes are indexed by 2-bit codes: bit 0 from the low plane, bit 1 from
// the high plane.

var backgroundPalette = [4]color.RGBA{
	0b00: {0x00, 0x00, 0x00, 0xff},
	0b01: {0xe6, 0xe2, 0xe6, 0xff},
	0b10: {0xcd, 0xd2, 0xff, 0xff},
	0b11: {0x94, 0xff, 0xa4, 0xff},
}

// Code 0 is transparent: the row background shows.
var foregroundPalette = [4]color.RGBA{
	0b01: {0x4a, 0x3c, 0xf6, 0xff},
	0b10: {0xff, 0x30, 0x52, 0xff},
	0b11: {0x00, 0xce, 0x5a, 0xff},
}

// CellColor returns the display color of a cell with foreground code fg on a
// row with background code bg.
func CellColor(fg, bg uint8) color.RGBA {
	if fg&3 == 0 {
		return backgroundPalette[bg&3]
	}
	return foregroundPalette[fg&3]
}
