package emu

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/jx"

	"chanf/emu/log"
	"chanf/ves"
)

// Stats are the pacing statistics, sampled at the diagnostics rate.
type Stats struct {
	Refreshes uint64
	Ticks     uint64
	Draws     uint64
	Underruns int
	Audio     string  // audio scheduler state
	FPS       float64 // refreshes per second since the previous sample
}

// Encode writes s as a JSON object.
func (s *Stats) Encode(enc *jx.Encoder) {
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("refreshes", func(enc *jx.Encoder) { enc.UInt64(s.Refreshes) })
		enc.Field("ticks", func(enc *jx.Encoder) { enc.UInt64(s.Ticks) })
		enc.Field("draws", func(enc *jx.Encoder) { enc.UInt64(s.Draws) })
		enc.Field("underruns", func(enc *jx.Encoder) { enc.Int(s.Underruns) })
		enc.Field("audio", func(enc *jx.Encoder) { enc.Str(s.Audio) })
		enc.Field("fps", func(enc *jx.Encoder) { enc.Float64(s.FPS) })
	})
}

// Number of stats samples buffered before the pacing loop starts dropping
// them.
const statsBacklog = 64

type diagnostics struct {
	regs []byte // registers at the previous dump

	stats   chan Stats // nil when stats are disabled
	out     io.Writer
	dropped int

	lastTime    time.Time
	lastRefresh uint64
}

func newDiagnostics() *diagnostics {
	return &diagnostics{}
}

func (d *diagnostics) enableStats(w io.Writer) {
	d.out = w
	d.stats = make(chan Stats, statsBacklog)
}

// update runs on the emulation goroutine.
func (d *diagnostics) update(e *Emulator) {
	if rf, ok := e.core.(ves.RegisterFile); ok {
		d.dumpRegisters(rf.Registers())
	}

	if d.stats == nil {
		return
	}

	now := e.now()
	s := Stats{
		Refreshes: e.refresh,
		Ticks:     e.ticks,
		Draws:     e.draws,
		Underruns: e.sched.Underruns(),
		Audio:     e.sched.State().String(),
	}
	if !d.lastTime.IsZero() {
		if dt := now.Sub(d.lastTime).Seconds(); dt > 0 {
			s.FPS = float64(e.refresh-d.lastRefresh) / dt
		}
	}
	d.lastTime, d.lastRefresh = now, e.refresh

	select {
	case d.stats <- s:
	default:
		d.dropped++
		log.ModDiag.DebugZ("stats sample dropped").Int("dropped", d.dropped).End()
	}
}

// dumpRegisters logs the registers that changed since the previous dump.
func (d *diagnostics) dumpRegisters(regs []byte) {
	if !log.ModDiag.Enabled(log.DebugLevel) {
		return
	}

	if len(d.regs) != len(regs) {
		d.regs = make([]byte, len(regs))
		log.ModDiag.DebugZ("registers").Blob("regs", regs).End()
	} else {
		for i, v := range regs {
			if d.regs[i] != v {
				log.ModDiag.DebugZ("register changed").
					Int("reg", i).
					Hex8("old", d.regs[i]).
					Hex8("new", v).
					End()
			}
		}
	}
	copy(d.regs, regs)
}

// writeStats writes stats samples as JSON lines until ctx is done, then
// flushes the samples still queued.
func (d *diagnostics) writeStats(ctx context.Context) error {
	var enc jx.Encoder
	for {
		select {
		case s := <-d.stats:
			if err := d.writeSample(&enc, s); err != nil {
				return err
			}
		case <-ctx.Done():
			for {
				select {
				case s := <-d.stats:
					if err := d.writeSample(&enc, s); err != nil {
						return err
					}
				default:
					return nil
				}
			}
		}
	}
}

func (d *diagnostics) writeSample(enc *jx.Encoder, s Stats) error {
	enc.Reset()
	s.Encode(enc)
	_, err := d.out.Write(append(enc.Bytes(), '\n'))
	return err
}
