package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func readTimeline(t *testing.T, d *OtoDevice, n int) []float32 {
	t.Helper()

	p := make([]byte, n*4)
	got, err := d.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if got != len(p) {
		t.Fatalf("Read() = %d, want %d", got, len(p))
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
	}
	return out
}

func filled(n int, v float32) Buffer {
	buf := make(Buffer, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestOtoDeviceScheduleAhead(t *testing.T) {
	d := newOtoDevice(48000, 1)

	done, err := d.Schedule(filled(480, 0.5), 5*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	samples := readTimeline(t, d, 500)
	for i, v := range samples {
		want := float32(0)
		if i >= 240 {
			want = 0.5
		}
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
	if isClosed(done) {
		t.Fatal("buffer completed before being fully played")
	}
	if got := d.Now(); got != 500*time.Second/48000 {
		t.Errorf("Now() = %v after 500 samples", got)
	}

	samples = readTimeline(t, d, 500)
	for i, v := range samples {
		want := float32(0)
		if i < 220 {
			want = 0.5
		}
		if v != want {
			t.Fatalf("sample %d = %v, want %v", 500+i, v, want)
		}
	}
	if !isClosed(done) {
		t.Fatal("buffer not completed after being played")
	}
}

func TestOtoDeviceLateBuffersPlayBackToBack(t *testing.T) {
	d := newOtoDevice(48000, 1)

	// The player read ahead of the scheduled start times.
	readTimeline(t, d, 2048)

	done1, err := d.Schedule(filled(480, 0.5), 0)
	if err != nil {
		t.Fatal(err)
	}
	done2, err := d.Schedule(filled(480, -0.5), 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	samples := readTimeline(t, d, 2048)
	var audible int
	for i, v := range samples {
		var want float32
		switch {
		case i < 480:
			want = 0.5
		case i < 960:
			want = -0.5
		}
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
		if v != 0 {
			audible++
		}
	}
	if audible != 960 {
		t.Errorf("played %d audible samples, want 960", audible)
	}
	if !isClosed(done1) || !isClosed(done2) {
		t.Errorf("buffers completed: %t %t, want both", isClosed(done1), isClosed(done2))
	}
}

func TestOtoDeviceVolume(t *testing.T) {
	d := newOtoDevice(48000, 0.25)
	if _, err := d.Schedule(filled(4, 1), 0); err != nil {
		t.Fatal(err)
	}
	for i, v := range readTimeline(t, d, 4) {
		if v != 0.25 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestOtoDeviceTooFarAhead(t *testing.T) {
	d := newOtoDevice(48000, 1)

	// Ends exactly at the end of the timeline.
	if _, err := d.Schedule(filled(480, 1), otoTimeline-10*time.Millisecond); err != nil {
		t.Fatalf("buffer fitting the timeline: %v", err)
	}
	if _, err := d.Schedule(filled(480, 1), otoTimeline); err == nil {
		t.Fatal("buffer past the end of the timeline should be rejected")
	}
}
