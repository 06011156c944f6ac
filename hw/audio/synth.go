package audio

import (
	"chanf/ves"
)

// A PortReader gives access to the core I/O ports.
type PortReader interface {
	ReadPort(n int) uint8
}

// Synthesizer renders the tone port into a square wave, one buffer per
// refresh interval.
type Synthesizer struct {
	buf Buffer

	sampleRate int64
	tickRate   int64

	ticks     int64 // ticks elapsed in the current refresh interval
	sinceTone int64 // ticks elapsed since the last tone change
	tone      Tone
}

// NewSynthesizer creates a synthesizer producing buffers of
// sampleRate/refreshRate samples, for a core running at tickRate Hz.
func NewSynthesizer(sampleRate, refreshRate, tickRate int) *Synthesizer {
	return &Synthesizer{
		buf:        make(Buffer, sampleRate/refreshRate),
		sampleRate: int64(sampleRate),
		tickRate:   int64(tickRate),
	}
}

// Len returns the number of samples per buffer.
func (s *Synthesizer) Len() int { return len(s.buf) }

// Index is the buffer position of the next sample.
func (s *Synthesizer) Index() int {
	return int(s.ticks * s.sampleRate / s.tickRate)
}

// Sample must be called after each core step, with the number of ticks the
// step took. It reports true once the buffer is complete, in which case
// nothing is written and the buffer must be collected with Take.
//
// Several steps may land on the same sample: the last one wins.
func (s *Synthesizer) Sample(core PortReader, ticks int) (full bool) {
	idx := s.Index()
	if idx >= len(s.buf) {
		return true
	}

	tone := ToneFromPort(core.ReadPort(ves.PortSound))
	if tone != s.tone {
		s.tone = tone
		s.sinceTone = 0
	}

	if freq := tone.Frequency(); freq != 0 {
		period := s.sampleRate / freq
		pos := (s.sinceTone * s.sampleRate / s.tickRate) % period
		if pos < period/2 {
			s.buf[idx] = 1
		} else {
			s.buf[idx] = -1
		}
	}

	s.ticks += int64(ticks)
	s.sinceTone += int64(ticks)
	return false
}

// Take hands over the current buffer, complete or not, and starts a new
// silent one. The caller owns the returned buffer.
func (s *Synthesizer) Take() Buffer {
	buf := s.buf
	s.buf = make(Buffer, len(buf))
	s.ticks = 0
	return buf
}
