// Package input implements the Channel F controls: console buttons and the
// hand controller, driven by keyboard keys and by the mouse.
package input

import (
	"chanf/hw/hwio"
)

// A Control is one of the logical buttons of the console or of the hand
// controller.
type Control uint8

const (
	Console1 Control = iota
	Console2
	Console3
	Console4
	Right
	Left
	Backward
	Forward
	Anticlock
	Clock
	Pull
	Push

	NumControls
)

var controlNames = [NumControls]string{
	"console1", "console2", "console3", "console4",
	"right", "left", "backward", "forward",
	"anticlock", "clock", "pull", "push",
}

func (c Control) String() string {
	if c >= NumControls {
		return "invalid"
	}
	return controlNames[c]
}

// ControlByName returns the control with the given config name.
func ControlByName(name string) (Control, bool) {
	for i, n := range controlNames {
		if n == name {
			return Control(i), true
		}
	}
	return 0, false
}

//go:generate go tool stringer -type=Provenance

// Provenance records which input source last set a control.
type Provenance uint8

const (
	Unset       Provenance = iota // released
	FromKey                       // held by a key or mouse button
	FromPointer                   // derived from mouse motion or wheel
)

// Buttons is the state of all controls. A control is pressed iff its
// provenance isn't Unset.
type Buttons [NumControls]Provenance

func (b *Buttons) Pressed(c Control) bool { return b[c] != Unset }

// Reset releases all controls.
func (b *Buttons) Reset() { clear(b[:]) }

// ConsolePort encodes the console buttons as the active low nibble of port 0.
func (b *Buttons) ConsolePort() uint8 {
	v := uint8(0x0f)
	for i := range uint(4) {
		if b.Pressed(Console1 + Control(i)) {
			hwio.ClearBit8(&v, i)
		}
	}
	return v
}

// ControllerPort encodes the hand controller as an active low byte, one bit
// per control from Right (bit 0) to Push (bit 7).
func (b *Buttons) ControllerPort() uint8 {
	v := uint8(0xff)
	for c := Right; c <= Push; c++ {
		hwio.SetBitTo8(&v, uint(c-Right), !b.Pressed(c))
	}
	return v
}
