// Package audio turns the core's tone port into sample buffers and schedules
// them on a host audio device.
package audio

import "time"

// Buffer holds mono samples in [-1, 1], one refresh interval long.
type Buffer []float32

// Device is a host audio output.
//
// Schedule hands buf over to the device, which owns it from then on. Its
// playback starts at the absolute device time at (as reported by Now), and
// the returned channel is closed once it has been played. A start time in
// the past means as soon as possible.
type Device interface {
	SampleRate() int
	Now() time.Duration
	Schedule(buf Buffer, at time.Duration) (<-chan struct{}, error)
	Close() error
}
