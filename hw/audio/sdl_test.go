package audio

import (
	"testing"
	"time"
)

func TestQueueDuration(t *testing.T) {
	tests := []struct {
		bytes uint32
		rate  int
		want  time.Duration
	}{
		{0, 48000, 0},
		{960, 48000, 10 * time.Millisecond},
		{96000, 48000, time.Second},
		{882, 44100, 10 * time.Millisecond},
		{961, 48000, 10 * time.Millisecond}, // half a sample doesn't count
	}
	for _, tt := range tests {
		if got := queueDuration(tt.bytes, tt.rate); got != tt.want {
			t.Errorf("queueDuration(%d, %d) = %v, want %v", tt.bytes, tt.rate, got, tt.want)
		}
	}
}

func TestSilenceGap(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		at, tail time.Duration
		want     int
	}{
		{at: 10 * ms, tail: 10 * ms, want: 0},
		{at: 5 * ms, tail: 10 * ms, want: 0},
		{at: 20 * ms, tail: 10 * ms, want: 480},
		{at: 1010 * ms, tail: 10 * ms, want: 48000},
	}
	for _, tt := range tests {
		if got := silenceGap(tt.at, tt.tail, 48000); got != tt.want {
			t.Errorf("silenceGap(%v, %v) = %d, want %d", tt.at, tt.tail, got, tt.want)
		}
	}
}
