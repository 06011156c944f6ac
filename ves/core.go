// Package ves defines the contract between the frontend and a Fairchild VES
// (Channel F) emulation core.
//
// The frontend never looks inside the CPU: it steps the core, reads and
// drives its I/O ports and decodes video RAM. Cores register themselves by
// name so the command line can pick one.
package ves

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

const NumPorts = 8

// I/O ports seen by the frontend.
const (
	PortConsole   = 0 // console buttons, active low nibble
	PortRightCtrl = 1 // right hand controller, active low
	PortLeftCtrl  = 4 // left hand controller, active low
	PortSound     = 5 // bits 6-7: tone code
)

// VideoWriteBit is the bit of PortConsole driven by the CPU while it writes
// to video RAM. Controllers must not be read while it's set.
const VideoWriteBit = 6

// Core is an emulation core. All methods are called from the emulation
// goroutine only.
type Core interface {
	// Step executes at least one instruction and reports the number of
	// clock ticks it took (>= 1). Step never blocks.
	Step() int

	// ReadPort returns the value currently seen on port n.
	ReadPort(n int) uint8

	// WritePort drives port n from the outside (controllers, console).
	WritePort(n int, v uint8)

	// VRAM gives access to the raw video memory.
	VRAM() *VRAM

	// SetReset requests a reset, performed by the core on its next step.
	SetReset()
}

// RegisterFile is implemented by cores exposing their scratchpad registers.
type RegisterFile interface {
	Registers() []byte
}

// Factory creates a core from already loaded BIOS and cartridge images.
// Either image may be nil.
type Factory func(bios, rom []byte) (Core, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]Factory)
)

// Register makes a core available by name. It panics if the name is taken.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic("ves: core registered twice: " + name)
	}
	registry[name] = f
}

// Names returns the sorted names of registered cores.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the core registered as name.
func New(name string, bios, rom []byte) (Core, error) {
	registryMu.Lock()
	f, ok := registry[name]
	registryMu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unknown core %q (available: %v)", name, Names())
	}
	core, err := f(slices.Clip(bios), slices.Clip(rom))
	if err != nil {
		return nil, fmt.Errorf("core %s: %w", name, err)
	}
	return core, nil
}
