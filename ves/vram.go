package ves

const (
	VRAMBanks    = 4
	VRAMBankSize = 0x1000

	// Addressable video surface, in cells.
	VRAMWidth  = 128
	VRAMHeight = 64
)

// VRAM is the video memory, made of 4 banks of one-bit cells (only bit 0
// of each byte is meaningful). Cells are addressed as x + y*VRAMWidth.
// Banks 0-1 hold the low bit plane, banks 2-3 the high bit plane.
type VRAM [VRAMBanks][VRAMBankSize]byte

// Bit returns the cell at addr of the given bit plane (0 or 1).
func (v *VRAM) Bit(plane, addr int) bool {
	return v[plane*2+addr/VRAMBankSize][addr%VRAMBankSize]&1 != 0
}

// SetBit writes the cell at addr of the given bit plane.
func (v *VRAM) SetBit(plane, addr int, on bool) {
	var b byte
	if on {
		b = 1
	}
	v[plane*2+addr/VRAMBankSize][addr%VRAMBankSize] = b
}

// Pixel returns the 2-bit color code at (x, y): bit 0 from the low plane,
// bit 1 from the high plane.
func (v *VRAM) Pixel(x, y int) uint8 {
	addr := x + y*VRAMWidth
	var c uint8
	if v.Bit(0, addr) {
		c |= 1
	}
	if v.Bit(1, addr) {
		c |= 2
	}
	return c
}

// SetPixel writes the 2-bit color code c at (x, y).
func (v *VRAM) SetPixel(x, y int, c uint8) {
	addr := x + y*VRAMWidth
	v.SetBit(0, addr, c&1 != 0)
	v.SetBit(1, addr, c&2 != 0)
}

func (v *VRAM) Clear() {
	clear(v[:])
}
