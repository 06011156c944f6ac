package emu

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	"chanf/emu/log"
	"chanf/hw/input"
	"chanf/ves"
)

// testingConfig returns a configuration where one core tick lasts exactly
// one audio sample.
func testingConfig() Config {
	cfg := DefaultConfig()
	cfg.Emulation.ClockRate = 48000
	cfg.Emulation.RefreshRate = 100
	cfg.Audio.SampleRate = 48000
	return cfg
}

func newTestingEmulator(t *testing.T, cfg Config, ocfg TestingOutputConfig) (*Emulator, *testingCore, *TestingOutput) {
	t.Helper()
	log.Disable()

	core := &testingCore{ticksPerStep: 1}
	out := newTestingOutput(ocfg)
	return New(core, out, cfg), core, out
}

func TestRunOneFrameBackpressure(t *testing.T) {
	e, core, out := newTestingEmulator(t, testingConfig(), TestingOutputConfig{})

	for range 3 {
		if err := e.RunOneFrame(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	// The step overflowing the buffer completes the frame.
	if want := 3 * 481; core.steps != want {
		t.Errorf("core stepped %d times, want %d", core.steps, want)
	}

	want := []scheduled{
		{at: 0, len: 480},
		{at: 10 * time.Millisecond, len: 480},
		{at: 20 * time.Millisecond, len: 480},
	}
	if diff := cmp.Diff(want, out.dev.got, cmp.AllowUnexported(scheduled{})); diff != "" {
		t.Fatalf("scheduled buffers mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOneFrameDivisors(t *testing.T) {
	e, _, out := newTestingEmulator(t, testingConfig(), TestingOutputConfig{})

	for range 16 {
		if err := e.RunOneFrame(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	if len(out.dev.got) != 16 {
		t.Errorf("%d audio buffers scheduled, want 16", len(out.dev.got))
	}
	if out.presents != 8 {
		t.Errorf("video presented %d times, want 8", out.presents)
	}
	if out.src.movements != 4 {
		t.Errorf("pointer read %d times, want 4", out.src.movements)
	}
}

func TestRunOneFrameBudget(t *testing.T) {
	cfg := testingConfig()
	cfg.Emulation.Pacing = PacingBudget
	cfg.Emulation.ClockRate = 100000

	e, core, _ := newTestingEmulator(t, cfg, TestingOutputConfig{})
	core.ticksPerStep = 3

	var slept []time.Duration
	now := time.Now()
	e.now = func() time.Time { return now }
	e.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	for range 3 {
		if err := e.RunOneFrame(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	// Excess ticks are carried over to the next refresh.
	if e.ticks != 3000 {
		t.Errorf("core ran %d ticks, want 3000", e.ticks)
	}
	want := []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}
	if diff := cmp.Diff(want, slept); diff != "" {
		t.Fatalf("sleeps mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOneFrameBudgetOverrun(t *testing.T) {
	cfg := testingConfig()
	cfg.Emulation.Pacing = PacingBudget

	e, _, _ := newTestingEmulator(t, cfg, TestingOutputConfig{})

	// Each call to now is 20ms after the previous one.
	clock := time.Now()
	e.now = func() time.Time {
		clock = clock.Add(20 * time.Millisecond)
		return clock
	}
	e.sleep = func(context.Context, time.Duration) error {
		t.Fatal("slept while the refresh interval is already over")
		return nil
	}

	if err := e.RunOneFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRunUntilWindowClosed(t *testing.T) {
	e, _, out := newTestingEmulator(t, testingConfig(), TestingOutputConfig{MaxFrames: 10})

	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.refresh != 10 {
		t.Errorf("ran %d refreshes, want 10", e.refresh)
	}

	if out.closed {
		t.Fatal("output closed by Run")
	}
	if err := e.Close(); err != nil || !out.closed {
		t.Fatalf("Close() = %v, closed %t", err, out.closed)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := testingConfig()
	cfg.Emulation.Pacing = PacingBudget

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, _, _ := newTestingEmulator(t, cfg, TestingOutputConfig{MaxFrames: 5, Cancel: cancel})

	done := make(chan error)
	go func() { done <- e.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run didn't return after cancellation")
	}
}

func TestStop(t *testing.T) {
	e, _, _ := newTestingEmulator(t, testingConfig(), TestingOutputConfig{})
	e.Stop()
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if e.refresh != 0 {
		t.Fatalf("ran %d refreshes after Stop, want 0", e.refresh)
	}
}

func TestHardResetKey(t *testing.T) {
	e, core, out := newTestingEmulator(t, testingConfig(), TestingOutputConfig{})
	out.src.keys = []keyEvent{{input.KeyID(2), true}, {input.ResetKey, true}}

	if err := e.RunOneFrame(context.Background()); err != nil {
		t.Fatal(err)
	}
	if core.resets != 1 {
		t.Fatalf("core reset %d times, want 1", core.resets)
	}
	if got := core.ReadPort(ves.PortConsole); got != 0x0f {
		t.Fatalf("console port = %08b after reset, want 00001111", got)
	}
}

func TestStatsOutput(t *testing.T) {
	e, _, _ := newTestingEmulator(t, testingConfig(), TestingOutputConfig{MaxFrames: 16})

	var buf bytes.Buffer
	e.diag.enableStats(&buf)
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	var got []Stats
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		s, err := decodeStats(jx.DecodeBytes(sc.Bytes()))
		if err != nil {
			t.Fatalf("invalid stats line %q: %v", sc.Text(), err)
		}
		got = append(got, s)
	}

	if len(got) != 2 {
		t.Fatalf("got %d stats lines, want 2:\n%s", len(got), buf.String())
	}
	for i, s := range got {
		if want := uint64(8 * (i + 1)); s.Refreshes != want {
			t.Errorf("sample %d: refreshes = %d, want %d", i, s.Refreshes, want)
		}
		if want := uint64(481 * 8 * (i + 1)); s.Ticks != want {
			t.Errorf("sample %d: ticks = %d, want %d", i, s.Ticks, want)
		}
		if s.Audio != "Steady" || s.Underruns != 0 {
			t.Errorf("sample %d: audio %s with %d underruns, want Steady without underruns", i, s.Audio, s.Underruns)
		}
	}
}

func TestStatsRoundTrip(t *testing.T) {
	want := Stats{Refreshes: 800, Ticks: 1789772, Draws: 12, Underruns: 3, Audio: "Recovering", FPS: 99.5}

	var enc jx.Encoder
	want.Encode(&enc)

	got, err := decodeStats(jx.DecodeBytes(enc.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterDump(t *testing.T) {
	e, core, _ := newTestingEmulator(t, testingConfig(), TestingOutputConfig{})
	core.regs = make([]byte, 64)
	e.core = registersCore{core}

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.Disable()
	log.EnableDebugModules(log.ModDiag.Mask())
	defer log.DisableDebugModules(log.ModDiag.Mask())
	log.AddContext(e)
	defer log.RemoveContext(e)

	run := func(n int) {
		for range n {
			if err := e.RunOneFrame(context.Background()); err != nil {
				t.Fatal(err)
			}
		}
	}

	run(8)
	if !strings.Contains(buf.String(), "registers") {
		t.Fatalf("initial register dump missing from log:\n%s", buf.String())
	}

	buf.Reset()
	core.regs[0o12] = 0x2a
	run(8)

	out := buf.String()
	for _, want := range []string{"register changed", "reg=10", "old=00", "new=2a", "refresh=16"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func decodeStats(d *jx.Decoder) (Stats, error) {
	var s Stats
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "refreshes":
			s.Refreshes, err = d.UInt64()
		case "ticks":
			s.Ticks, err = d.UInt64()
		case "draws":
			s.Draws, err = d.UInt64()
		case "underruns":
			s.Underruns, err = d.Int()
		case "audio":
			s.Audio, err = d.Str()
		case "fps":
			s.FPS, err = d.Float64()
		default:
			err = d.Skip()
		}
		return err
	})
	return s, err
}
