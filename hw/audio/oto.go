package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"chanf/emu/log"
)

// Length of the oto timeline. Buffers can't be scheduled further ahead.
const otoTimeline = time.Second

// OtoDevice plays buffers through oto. Scheduled buffers are written on a
// timeline at their start time, oto pulls samples from it, and the read
// cursor is the device clock.
type OtoDevice struct {
	ctx    *oto.Context
	player *oto.Player
	rate   int
	volume float32

	mu       sync.Mutex
	timeline []float32 // ring indexed by sample time
	cursor   int64     // samples pulled by oto so far
	tail     int64     // end of the last scheduled buffer
	pending  []otoPending
}

type otoPending struct {
	end  int64
	done chan struct{}
}

func NewOtoDevice(sampleRate int, volume float64) (*OtoDevice, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	d := newOtoDevice(sampleRate, volume)
	d.ctx = ctx
	d.player = ctx.NewPlayer(d)
	d.player.Play()

	log.ModSound.InfoZ("oto audio device opened").
		Int("rate", sampleRate).
		Float("volume", volume).
		End()
	return d, nil
}

// newOtoDevice returns a device with an empty timeline, not connected to oto.
func newOtoDevice(sampleRate int, volume float64) *OtoDevice {
	return &OtoDevice{
		rate:     sampleRate,
		volume:   float32(volume),
		timeline: make([]float32, int(otoTimeline)*sampleRate/int(time.Second)),
	}
}

func (d *OtoDevice) SampleRate() int { return d.rate }

func (d *OtoDevice) Now() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sampleTime(d.cursor)
}

func (d *OtoDevice) sampleTime(n int64) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(d.rate)
}

func (d *OtoDevice) Schedule(buf Buffer, at time.Duration) (<-chan struct{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Buffers never overlap: a late one is queued after the previous one,
	// or at the cursor if the timeline ran dry.
	start := int64(at) * int64(d.rate) / int64(time.Second)
	start = max(start, d.tail, d.cursor)
	end := start + int64(len(buf))
	if end-d.cursor > int64(len(d.timeline)) {
		return nil, fmt.Errorf("buffer scheduled too far ahead (%v, now %v)", at, d.sampleTime(d.cursor))
	}

	n := int64(len(d.timeline))
	for i, v := range buf {
		d.timeline[(start+int64(i))%n] = v * d.volume
	}

	d.tail = end

	done := make(chan struct{})
	d.pending = append(d.pending, otoPending{end: end, done: done})
	return done, nil
}

// Read implements io.Reader for the oto player.
func (d *OtoDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := int64(len(d.timeline))
	nsamples := len(p) / 4
	for i := range nsamples {
		slot := &d.timeline[(d.cursor+int64(i))%n]
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(*slot))
		*slot = 0
	}
	d.cursor += int64(nsamples)

	// Signal completed buffers.
	kept := d.pending[:0]
	for _, pb := range d.pending {
		if pb.end <= d.cursor {
			close(pb.done)
		} else {
			kept = append(kept, pb)
		}
	}
	d.pending = kept
	return nsamples * 4, nil
}

func (d *OtoDevice) Close() error {
	return d.player.Close()
}
