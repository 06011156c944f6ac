package audio

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/arl/blip"
	"github.com/veandco/go-sdl2/sdl"

	"chanf/emu/log"
)

const (
	sdlAudioFormat  = sdl.AUDIO_S16LSB
	sdlAudioSamples = 512

	// Peak amplitude of a full-scale square wave.
	maxAmplitude = 0x3fff
)

// SDLDevice plays buffers through an SDL audio queue. Buffers are resampled
// from the synthesis rate to whatever rate SDL obtained from the hardware.
type SDLDevice struct {
	id      sdl.AudioDeviceID
	srcRate int
	outRate int
	volume  float64

	resampler *blip.Buffer
	level     int32
	pcm       []int16

	epoch time.Time
}

// NewSDLDevice opens the default SDL audio device. Buffers scheduled on it
// hold bufLen samples at sampleRate.
func NewSDLDevice(sampleRate, bufLen int, volume float64) (*SDLDevice, error) {
	d := &SDLDevice{
		srcRate: sampleRate,
		volume:  volume,
	}

	var err error
	sdl.Do(func() {
		if err = sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
			err = fmt.Errorf("failed to initialize SDL audio: %s", err)
			return
		}

		want := &sdl.AudioSpec{
			Freq:     int32(sampleRate),
			Format:   sdlAudioFormat,
			Channels: 1,
			Samples:  sdlAudioSamples,
		}
		var got sdl.AudioSpec
		d.id, err = sdl.OpenAudioDevice("", false, want, &got, sdl.AUDIO_ALLOW_FREQUENCY_CHANGE)
		if err != nil {
			err = fmt.Errorf("failed to open audio device: %s", err)
			return
		}
		d.outRate = int(got.Freq)
		sdl.PauseAudioDevice(d.id, false)
	})
	if err != nil {
		return nil, err
	}

	// Room for one buffer plus blip's latency.
	maxOut := bufLen*d.outRate/sampleRate + 64
	d.resampler = blip.NewBuffer(maxOut)
	d.resampler.SetRates(float64(sampleRate), float64(d.outRate))
	d.pcm = make([]int16, 0, maxOut)
	d.epoch = time.Now()

	log.ModSound.InfoZ("SDL audio device opened").
		Int("rate", d.outRate).
		Int("synthesis_rate", sampleRate).
		Float("volume", volume).
		End()
	return d, nil
}

func (d *SDLDevice) SampleRate() int    { return d.srcRate }
func (d *SDLDevice) Now() time.Duration { return time.Since(d.epoch) }

func (d *SDLDevice) Schedule(buf Buffer, at time.Duration) (<-chan struct{}, error) {
	// Device time at which the audio still queued runs out.
	now := d.Now()
	tail := now + queueDuration(sdl.GetQueuedAudioSize(d.id), d.outRate)

	d.pcm = d.pcm[:0]
	for range silenceGap(at, tail, d.outRate) {
		d.pcm = append(d.pcm, 0)
	}
	d.pcm = append(d.pcm, d.resample(buf)...)

	if len(d.pcm) != 0 {
		data := unsafe.Slice((*byte)(unsafe.Pointer(&d.pcm[0])), len(d.pcm)*2)
		if err := sdl.QueueAudio(d.id, data); err != nil {
			log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
		}
	}

	tail += time.Duration(len(d.pcm)) * time.Second / time.Duration(d.outRate)

	done := make(chan struct{})
	time.AfterFunc(tail-now, func() { close(done) })
	return done, nil
}

// queueDuration returns the playing time of n bytes of queued audio.
func queueDuration(n uint32, rate int) time.Duration {
	return time.Duration(n/2) * time.Second / time.Duration(rate)
}

// silenceGap returns the number of silent samples to queue so that audio
// scheduled at 'at' starts playing on time once the queue tail is reached.
func silenceGap(at, tail time.Duration, rate int) int {
	if at <= tail {
		return 0
	}
	return int((at - tail) * time.Duration(rate) / time.Second)
}

// resample returns buf converted to the device rate. The returned slice is
// only valid until the next call.
func (d *SDLDevice) resample(buf Buffer) []int16 {
	for i, v := range buf {
		level := int32(float64(v) * d.volume * maxAmplitude)
		if delta := level - d.level; delta != 0 {
			d.resampler.AddDelta(uint64(i), delta)
			d.level = level
		}
	}
	d.resampler.EndFrame(len(buf))

	n := d.resampler.SamplesAvailable()
	out := make([]int16, n)
	n = d.resampler.ReadSamples(out, n, blip.Mono)
	return out[:n]
}

func (d *SDLDevice) Close() error {
	sdl.Do(func() {
		sdl.CloseAudioDevice(d.id)
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
	})
	return nil
}
