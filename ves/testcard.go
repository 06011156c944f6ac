package ves

import (
	"encoding/binary"

	"chanf/emu/log"
	"chanf/hw/hwio"
)

// TestCardClock is the tick rate of the testcard core, the VES CPU clock.
const TestCardClock = 1789772

// testcard doesn't execute any firmware. It draws color bands and a row
// mirroring the right controller, and cycles through the tone codes once
// per second. It is meant to check a frontend setup.
type testCard struct {
	Board

	ticks   uint64
	seq     int
	row     int   // next row to draw, VRAMHeight once the card is complete
	offset  uint8 // color rotation, bumped by console button 1
	console uint8 // last console nibble

	regs [64]byte
}

// Typical F8 instruction timings, in ticks.
var testCardTimings = [...]int{8, 12, 16, 8, 24, 12}

func init() {
	Register("testcard", newTestCard)
}

func newTestCard(bios, rom []byte) (Core, error) {
	if bios != nil || rom != nil {
		log.ModCPU.WarnZ("testcard core ignores BIOS and cartridge images").End()
	}
	tc := &testCard{}
	tc.powerOn()
	return tc, nil
}

func (tc *testCard) powerOn() {
	tc.Board.PowerOn()
	tc.ticks = 0
	tc.seq = 0
	tc.row = 0
	tc.offset = 0
	tc.console = 0x0f
	tc.OutPort(PortConsole, 1<<VideoWriteBit)
}

func (tc *testCard) Step() int {
	if tc.TakeReset() {
		log.ModCPU.InfoZ("testcard reset").End()
		tc.powerOn()
	}

	n := testCardTimings[tc.seq%len(testCardTimings)]
	tc.seq++
	tc.ticks += uint64(n)

	if tc.row < VRAMHeight {
		tc.drawRow(tc.row)
		tc.row++
		if tc.row == VRAMHeight {
			tc.OutPort(PortConsole, 0)
		}
	} else {
		tc.pollConsole()
		tc.drawController()
	}

	code := uint8(tc.ticks/TestCardClock) % 4
	tc.OutPort(PortSound, code<<6)

	for i := range NumPorts {
		tc.regs[i] = tc.ReadPort(i)
	}
	tc.regs[8] = tc.offset
	binary.BigEndian.PutUint64(tc.regs[9:17], tc.ticks)
	return n
}

func (tc *testCard) Registers() []byte { return tc.regs[:] }

func (tc *testCard) drawRow(y int) {
	band := (uint8(y/16) + tc.offset) % 4
	tc.vram.SetBit(1, y*VRAMWidth+1, band&1 != 0)
	tc.vram.SetBit(1, y*VRAMWidth+2, band&2 != 0)

	for x := 4; x < VRAMWidth; x++ {
		c := (uint8((x-4)/31) + tc.offset) % 4
		tc.vram.SetPixel(x, y, c)
	}
}

const controllerRow = 52

func (tc *testCard) drawController() {
	port := tc.HostPort(PortRightCtrl)
	for bit := range uint(8) {
		var c uint8
		if !hwio.GetBit8(port, bit) {
			c = 3
		}
		x0 := 24 + int(bit)*12
		for x := x0; x < x0+8; x++ {
			tc.vram.SetPixel(x, controllerRow, c)
		}
	}
}

// pollConsole restarts the card with rotated colors when console button 1
// gets pressed.
func (tc *testCard) pollConsole() {
	console := tc.HostPort(PortConsole) & 0x0f
	pressed := tc.console &^ console
	tc.console = console
	if hwio.GetBit8(pressed, 0) {
		tc.offset++
		tc.row = 0
		tc.OutPort(PortConsole, 1<<VideoWriteBit)
	}
}
