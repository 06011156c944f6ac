package audio

// Tone is the 2-bit code found in bits 6-7 of the sound port.
type Tone uint8

const (
	Silent Tone = iota
	Tone1000Hz
	Tone500Hz
	Tone120Hz
)

var toneFrequencies = [4]int64{0, 1000, 500, 120}

// ToneFromPort extracts the tone code from a sound port value.
func ToneFromPort(v uint8) Tone { return Tone(v >> 6) }

// Frequency returns the tone frequency in Hz, 0 for Silent.
func (t Tone) Frequency() int64 { return toneFrequencies[t&3] }
