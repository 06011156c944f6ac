package ves

// Board holds the state shared by a core and the frontend: I/O port latches,
// video RAM and the reset line. Cores embed it and drive the CPU side.
type Board struct {
	cpuPorts  [NumPorts]uint8 // driven by the CPU (OUT instructions)
	hostPorts [NumPorts]uint8 // driven by controllers and console

	vram  VRAM
	reset bool
}

// ReadPort returns the value seen on port n: both drivers are wired-or.
func (b *Board) ReadPort(n int) uint8 { return b.cpuPorts[n] | b.hostPorts[n] }

func (b *Board) WritePort(n int, v uint8) { b.hostPorts[n] = v }

// HostPort returns what the host drives on port n, as seen by the CPU.
func (b *Board) HostPort(n int) uint8 { return b.hostPorts[n] }

// OutPort is the CPU side of port n.
func (b *Board) OutPort(n int, v uint8) { b.cpuPorts[n] = v }

func (b *Board) VRAM() *VRAM { return &b.vram }

func (b *Board) SetReset() { b.reset = true }

// TakeReset reports and clears a pending reset request.
func (b *Board) TakeReset() bool {
	r := b.reset
	b.reset = false
	return r
}

// PowerOn clears ports and video RAM.
func (b *Board) PowerOn() {
	clear(b.cpuPorts[:])
	clear(b.hostPorts[:])
	b.vram.Clear()
	b.reset = false
}
