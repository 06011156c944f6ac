// Package emu paces an emulation core against wall-clock time and connects
// it to the host: audio, video and input.
package emu

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"chanf/emu/log"
	"chanf/hw"
	"chanf/hw/audio"
	"chanf/hw/input"
	"chanf/hw/video"
	"chanf/ves"
)

// Output is the host side of the emulator.
type Output interface {
	// Poll processes pending host events. It returns false once the user
	// asked to quit.
	Poll() bool

	Surface() video.Surface

	// Present shows what has been drawn on the surface so far.
	Present()

	Input() input.Source
	Audio() audio.Device
	Screenshot(scale int) *image.RGBA
	Close() error
}

// Options holds the settings that don't belong to the configuration file.
type Options struct {
	Stats  io.Writer // pacing statistics, as JSON lines
	Record string    // WAV file recording the audio output
}

type Emulator struct {
	core ves.Core
	out  Output
	cfg  Config

	arbiter  *input.Arbiter
	synth    *audio.Synthesizer
	sched    *audio.Scheduler
	renderer *video.Renderer
	diag     *diagnostics

	period  time.Duration
	budget  int // ticks per refresh, budget pacing only
	credit  int // ticks run in excess of the budget
	refresh uint64
	ticks   uint64
	draws   uint64

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	quit atomic.Bool
}

// Launch opens the host window and audio device and connects them to core.
// It doesn't start the emulation loop, call Run for that.
func Launch(core ves.Core, cfg Config, opts Options) (*Emulator, error) {
	cfg.Check()

	ecfg := cfg.Emulation
	out, err := hw.NewOutput(hw.OutputConfig{
		Window: video.WindowConfig{
			Title:        "Channel F",
			Scale:        cfg.Video.Scale,
			Monitor:      cfg.Video.Monitor,
			DisableVSync: cfg.Video.DisableVSync,
			Shader:       cfg.Video.Shader,
		},
		AudioBackend: cfg.Audio.Backend,
		SampleRate:   cfg.Audio.SampleRate,
		BufferLen:    cfg.Audio.SampleRate / ecfg.RefreshRate,
		Volume:       cfg.Audio.Volume,
		RecordPath:   opts.Record,
		Bindings:     cfg.Input.Bindings(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open host output: %w", err)
	}

	e := New(core, out, cfg)
	if opts.Stats != nil {
		e.diag.enableStats(opts.Stats)
	}
	log.ModEmu.InfoZ("emulator ready").
		String("pacing", ecfg.Pacing).
		Int("refresh_rate", ecfg.RefreshRate).
		Int("clock_rate", ecfg.ClockRate).
		End()
	return e, nil
}

// New creates an emulator running core on out. cfg must have been checked.
func New(core ves.Core, out Output, cfg Config) *Emulator {
	ecfg := cfg.Emulation
	dev := out.Audio()
	return &Emulator{
		core:     core,
		out:      out,
		cfg:      cfg,
		arbiter:  input.NewArbiter(out.Input()),
		synth:    audio.NewSynthesizer(dev.SampleRate(), ecfg.RefreshRate, ecfg.ClockRate),
		sched:    audio.NewScheduler(dev, ecfg.RefreshRate),
		renderer: video.NewRenderer(out.Surface()),
		diag:     newDiagnostics(),
		period:   time.Second / time.Duration(ecfg.RefreshRate),
		budget:   ecfg.ClockRate / ecfg.RefreshRate,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// AddLogContext implements log.Context.
func (e *Emulator) AddLogContext(z *log.EntryZ) {
	z.Uint("refresh", e.refresh)
}

// RunOneFrame runs the core for one refresh interval, updates the host
// devices and waits until the next interval can start.
func (e *Emulator) RunOneFrame(ctx context.Context) error {
	start := e.now()

	ecfg := &e.cfg.Emulation
	if ecfg.Pacing == PacingBudget {
		e.runBudget()
	} else {
		e.runUntilFull()
	}

	e.refresh++
	if e.refresh%uint64(ecfg.VideoDivisor) == 0 {
		e.draws += uint64(e.renderer.Render(e.core.VRAM()))
		e.out.Present()
	}
	if e.refresh%uint64(ecfg.InputDivisor) == 0 {
		e.arbiter.Refresh()
	}
	if e.refresh%uint64(ecfg.DiagDivisor) == 0 {
		e.diag.update(e)
	}

	// Audio goes last: the scheduler blocks until the device caught up.
	if err := e.sched.Submit(ctx, e.synth.Take()); err != nil {
		return err
	}

	if ecfg.Pacing == PacingBudget {
		if rest := e.period - e.now().Sub(start); rest > 0 {
			return e.sleep(ctx, rest)
		}
	}
	return nil
}

// runUntilFull steps the core until the audio buffer is full.
func (e *Emulator) runUntilFull() {
	for {
		ticks := e.core.Step()
		e.ticks += uint64(ticks)
		e.arbiter.Tick(e.core)
		if e.synth.Sample(e.core, ticks) {
			return
		}
	}
}

// runBudget steps the core for the number of ticks of a refresh interval.
func (e *Emulator) runBudget() {
	for e.credit < e.budget {
		ticks := e.core.Step()
		e.ticks += uint64(ticks)
		e.credit += ticks
		e.arbiter.Tick(e.core)
		e.synth.Sample(e.core, ticks)
	}
	e.credit -= e.budget
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run runs the emulation loop until ctx is canceled, the user closes the
// window or Stop is called.
func (e *Emulator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.AddContext(e)
	defer log.RemoveContext(e)

	g, ctx := errgroup.WithContext(ctx)
	if e.diag.stats != nil {
		g.Go(func() error { return e.diag.writeStats(ctx) })
	}
	g.Go(func() error {
		defer cancel()
		return e.loop(ctx)
	})

	err := g.Wait()
	log.ModEmu.InfoZ("Emulation loop exited").
		Uint("ticks", e.ticks).
		Int("underruns", e.sched.Underruns()).
		End()
	return err
}

func (e *Emulator) loop(ctx context.Context) error {
	for ctx.Err() == nil && e.out.Poll() && !e.quit.Load() {
		if err := e.RunOneFrame(ctx); err != nil {
			if ctx.Err() != nil {
				// Teardown, not a failure.
				return nil
			}
			return err
		}
	}
	return nil
}

// Stop asks the emulation loop to exit. It can be called from any goroutine.
func (e *Emulator) Stop() { e.quit.Store(true) }

// Screenshot returns the current video output, scaled by the configured
// video scale.
func (e *Emulator) Screenshot() *image.RGBA {
	return e.out.Screenshot(e.cfg.Video.Scale)
}

// Close releases the host devices.
func (e *Emulator) Close() error {
	return e.out.Close()
}
