package audio

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"chanf/emu/log"
)

// Recorder is a Device that writes every scheduled buffer to a WAV file
// before handing it to the wrapped device.
type Recorder struct {
	Device

	f    *os.File
	enc  *wav.Encoder
	ibuf *goaudio.IntBuffer
	err  error
}

// NewRecorder creates the WAV file at path, recording what's played on dev.
func NewRecorder(dev Device, path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio recording: %w", err)
	}

	const bitDepth = 16
	const pcmFormat = 1
	r := &Recorder{
		Device: dev,
		f:      f,
		enc:    wav.NewEncoder(f, dev.SampleRate(), bitDepth, 1, pcmFormat),
		ibuf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: dev.SampleRate()},
			SourceBitDepth: bitDepth,
		},
	}
	log.ModSound.InfoZ("recording audio").String("path", path).End()
	return r, nil
}

func (r *Recorder) Schedule(buf Buffer, at time.Duration) (<-chan struct{}, error) {
	// Recording must read buf before the device owns it.
	if r.err == nil {
		r.ibuf.Data = r.ibuf.Data[:0]
		for _, v := range buf {
			r.ibuf.Data = append(r.ibuf.Data, int(v*maxAmplitude))
		}
		if err := r.enc.Write(r.ibuf); err != nil {
			r.err = err
			log.ModSound.ErrorZ("audio recording stopped").Error("err", err).End()
		}
	}
	return r.Device.Schedule(buf, at)
}

func (r *Recorder) Close() error {
	err := r.enc.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	if derr := r.Device.Close(); err == nil {
		err = derr
	}
	return err
}
