package emu

import (
	"context"
	"image"
	"time"

	"chanf/hw/audio"
	"chanf/hw/input"
	"chanf/hw/video"
	"chanf/ves"
)

type scheduled struct {
	at  time.Duration
	len int
}

// testingDevice is an audio device on which buffers complete as soon as
// they're scheduled.
type testingDevice struct {
	rate int
	got  []scheduled
}

func (d *testingDevice) SampleRate() int    { return d.rate }
func (d *testingDevice) Now() time.Duration { return 0 }
func (d *testingDevice) Close() error       { return nil }

func (d *testingDevice) Schedule(buf audio.Buffer, at time.Duration) (<-chan struct{}, error) {
	d.got = append(d.got, scheduled{at: at, len: len(buf)})
	done := make(chan struct{})
	close(done)
	return done, nil
}

type keyEvent struct {
	id   input.KeyID
	down bool
}

type testingSource struct {
	keys   []keyEvent
	dx, dy float64

	movements int // calls to Movement
}

func (s *testingSource) PendingKey() (input.KeyID, bool, bool) {
	if len(s.keys) == 0 {
		return 0, false, false
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k.id, k.down, true
}

func (s *testingSource) Movement() (float64, float64) {
	s.movements++
	return s.dx, s.dy
}

func (s *testingSource) Wheel() float64 { return 0 }

type TestingOutputConfig struct {
	SampleRate int

	// MaxFrames is the number of successful polls before the output reports
	// the window as closed. 0 means never.
	MaxFrames int

	// Cancel, if set, is called instead of closing the window.
	Cancel context.CancelFunc
}

type TestingOutput struct {
	fb  *video.Framebuffer
	src *testingSource
	dev *testingDevice

	polls    int
	presents int
	closed   bool

	cfg TestingOutputConfig
}

func newTestingOutput(cfg TestingOutputConfig) *TestingOutput {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	return &TestingOutput{
		fb:  video.NewFramebuffer(),
		src: &testingSource{},
		dev: &testingDevice{rate: cfg.SampleRate},
		cfg: cfg,
	}
}

func (to *TestingOutput) Poll() bool {
	if to.cfg.MaxFrames != 0 && to.polls == to.cfg.MaxFrames {
		if to.cfg.Cancel == nil {
			return false
		}
		to.cfg.Cancel()
	}
	to.polls++
	return true
}

func (to *TestingOutput) Surface() video.Surface           { return to.fb }
func (to *TestingOutput) Present()                         { to.presents++ }
func (to *TestingOutput) Input() input.Source              { return to.src }
func (to *TestingOutput) Audio() audio.Device              { return to.dev }
func (to *TestingOutput) Screenshot(scale int) *image.RGBA { return to.fb.Screenshot(scale) }

func (to *TestingOutput) Close() error {
	to.closed = true
	return nil
}

// testingCore runs a fixed number of ticks per step.
type testingCore struct {
	ves.Board

	ticksPerStep int
	steps        int
	resets       int
	regs         []byte
}

func (c *testingCore) Step() int {
	c.steps++
	if c.TakeReset() {
		c.resets++
		c.PowerOn()
	}
	return c.ticksPerStep
}

type registersCore struct {
	*testingCore
}

func (c registersCore) Registers() []byte { return c.regs }
