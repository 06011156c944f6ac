package input

import (
	"chanf/emu/log"
	"chanf/ves"
)

// A KeyID identifies a key event sent by a Source. Ids 1 to 12 map to the
// controls, ResetKey requests a hard reset. Any other id is a bug in the
// source.
type KeyID uint8

const ResetKey KeyID = 255

var keyControls = map[KeyID]Control{
	1:  Console1,
	2:  Console2,
	3:  Console3,
	4:  Console4,
	5:  Push,
	6:  Pull,
	7:  Left,
	8:  Right,
	9:  Forward,
	10: Backward,
	11: Clock,
	12: Anticlock,
}

// KeyIDOf returns the key id sent for control c.
func KeyIDOf(c Control) KeyID {
	for id, ctrl := range keyControls {
		if ctrl == c {
			return id
		}
	}
	panic("input: no key id for control " + c.String())
}

// A Source is a polled host event source. It only holds the latest values:
// older events are lost.
type Source interface {
	// PendingKey returns and consumes the pending key event, if any.
	PendingKey() (id KeyID, down, ok bool)

	// Movement returns and consumes the latest pointer motion.
	Movement() (dx, dy float64)

	// Wheel returns and consumes the latest wheel motion.
	Wheel() float64
}

// Number of refreshes between two wheel samples.
const wheelDecimation = 3

// Arbiter resolves keys and pointer into the controls state and drives the
// core input ports. Keys take precedence: a control held by a key isn't
// touched by the pointer until the key is released.
type Arbiter struct {
	src     Source
	buttons Buttons
	cycles  int
}

func NewArbiter(src Source) *Arbiter {
	return &Arbiter{src: src}
}

// Buttons returns a copy of the current controls state.
func (a *Arbiter) Buttons() Buttons { return a.buttons }

// Tick must be called after each core step. It processes the pending key
// event and writes the controls to the core ports.
func (a *Arbiter) Tick(core ves.Core) {
	if id, down, ok := a.src.PendingKey(); ok {
		a.key(core, id, down)
	}

	core.WritePort(ves.PortConsole, a.buttons.ConsolePort())

	// Controllers are disconnected while the CPU writes to video RAM.
	if core.ReadPort(ves.PortConsole)&(1<<ves.VideoWriteBit) == 0 {
		core.WritePort(ves.PortRightCtrl, a.buttons.ControllerPort())
		core.WritePort(ves.PortLeftCtrl, 0xff)
	} else {
		core.WritePort(ves.PortRightCtrl, 0)
		core.WritePort(ves.PortLeftCtrl, 0)
	}
}

func (a *Arbiter) key(core ves.Core, id KeyID, down bool) {
	if id == ResetKey {
		if down {
			log.ModInput.InfoZ("hard reset").End()
			a.buttons.Reset()
			core.SetReset()
		}
		return
	}

	ctrl, ok := keyControls[id]
	if !ok {
		log.ModInput.PanicZ("unknown key id").Uint8("id", uint8(id)).End()
	}

	prov := Unset
	if down {
		prov = FromKey
	}
	a.buttons[ctrl] = prov
	log.ModInput.DebugZ("key").Stringer("control", ctrl).Bool("down", down).End()
}

// Refresh must be called once per input refresh. It maps pointer motion to
// directions and, every third call, wheel motion to rotation.
func (a *Arbiter) Refresh() {
	dx, dy := a.src.Movement()

	b := &a.buttons
	if b[Left] != FromKey && b[Right] != FromKey && b[Forward] != FromKey && b[Backward] != FromKey {
		b[Left], b[Right] = axis(dx)
		b[Forward], b[Backward] = axis(dy)
	}

	if b[Anticlock] == FromKey || b[Clock] == FromKey {
		return
	}
	a.cycles++
	if a.cycles == wheelDecimation {
		a.cycles = 0
		b[Clock], b[Anticlock] = axis(a.src.Wheel())
	}
}

// axis maps the sign of a pointer delta to a pair of opposite controls.
func axis(delta float64) (neg, pos Provenance) {
	switch {
	case delta < 0:
		return FromPointer, Unset
	case delta > 0:
		return Unset, FromPointer
	}
	return Unset, Unset
}
