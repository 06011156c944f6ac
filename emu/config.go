package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"chanf/emu/log"
	"chanf/hw"
	"chanf/hw/input"
	"chanf/hw/video"
)

// Pacing strategies.
const (
	// Run the core until the audio buffer of the refresh interval is full,
	// then wait for the audio device.
	PacingBackpressure = "backpressure"

	// Run the core for a fixed tick budget per refresh interval, then sleep
	// for the rest of it.
	PacingBudget = "budget"
)

// Audio backends.
const (
	AudioSDL = hw.AudioSDL
	AudioOto = hw.AudioOto
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Audio     AudioConfig     `toml:"audio"`
	Video     VideoConfig     `toml:"video"`
	Input     input.Config    `toml:"input"`
}

type EmulationConfig struct {
	Pacing      string `toml:"pacing"`
	RefreshRate int    `toml:"refresh_rate"` // Hz
	ClockRate   int    `toml:"clock_rate"`   // core ticks per second

	// Number of refreshes between video, input and diagnostics updates.
	VideoDivisor int `toml:"video_divisor"`
	InputDivisor int `toml:"input_divisor"`
	DiagDivisor  int `toml:"diag_divisor"`
}

type AudioConfig struct {
	Backend    string  `toml:"backend"`
	SampleRate int     `toml:"sample_rate"`
	Volume     float64 `toml:"volume"`
}

type VideoConfig struct {
	Scale        int    `toml:"scale"`
	Monitor      int    `toml:"monitor"`
	DisableVSync bool   `toml:"disable_vsync"`
	Shader       string `toml:"shader"`
}

func DefaultConfig() Config {
	return Config{
		Emulation: EmulationConfig{
			Pacing:       PacingBackpressure,
			RefreshRate:  100,
			ClockRate:    1789772,
			VideoDivisor: 2,
			InputDivisor: 4,
			DiagDivisor:  8,
		},
		Audio: AudioConfig{
			Backend:    AudioSDL,
			SampleRate: 48000,
			Volume:     0.5,
		},
		Video: VideoConfig{
			Scale:        2,
			DisableVSync: true,
			Shader:       video.DefaultShader,
		},
		Input: input.DefaultConfig(),
	}
}

// Check replaces invalid values with their defaults.
func (cfg *Config) Check() {
	def := DefaultConfig()
	cfg.Emulation.check(def.Emulation)
	cfg.Audio.check(def.Audio)
	cfg.Video.check(def.Video)
	cfg.Input.Check()
}

func (ecfg *EmulationConfig) check(def EmulationConfig) {
	if ecfg.Pacing != PacingBackpressure && ecfg.Pacing != PacingBudget {
		log.ModEmu.Warnf("Invalid pacing %q, fallback to %q", ecfg.Pacing, def.Pacing)
		ecfg.Pacing = def.Pacing
	}
	positive(&ecfg.RefreshRate, def.RefreshRate, "emulation.refresh_rate")
	positive(&ecfg.ClockRate, def.ClockRate, "emulation.clock_rate")
	positive(&ecfg.VideoDivisor, def.VideoDivisor, "emulation.video_divisor")
	positive(&ecfg.InputDivisor, def.InputDivisor, "emulation.input_divisor")
	positive(&ecfg.DiagDivisor, def.DiagDivisor, "emulation.diag_divisor")
}

func (acfg *AudioConfig) check(def AudioConfig) {
	if acfg.Backend != AudioSDL && acfg.Backend != AudioOto {
		log.ModEmu.Warnf("Invalid audio backend %q, fallback to %q", acfg.Backend, def.Backend)
		acfg.Backend = def.Backend
	}
	positive(&acfg.SampleRate, def.SampleRate, "audio.sample_rate")
	if acfg.Volume < 0 || acfg.Volume > 1 {
		log.ModEmu.Warnf("Invalid audio volume %v, fallback to %v", acfg.Volume, def.Volume)
		acfg.Volume = def.Volume
	}
}

func (vcfg *VideoConfig) check(def VideoConfig) {
	positive(&vcfg.Scale, def.Scale, "video.scale")
	if !slices.Contains(video.ShaderNames(), vcfg.Shader) {
		log.ModEmu.Warnf("Invalid shader name %q, fallback to %q", vcfg.Shader, def.Shader)
		vcfg.Shader = def.Shader
	}
}

func positive(v *int, def int, name string) {
	if *v <= 0 {
		log.ModEmu.Warnf("Invalid %s %d, fallback to %d", name, *v, def)
		*v = def
	}
}

const DefaultFileMode = os.FileMode(0755)

// ConfigDir returns the chanf directory in the user config directory,
// creating it if needed.
var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.FatalZ("failed to get user config directory").Error("err", err).End()
	}

	dir := filepath.Join(cfgdir, "chanf")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.FatalZ("failed to create config directory").
			String("dir", dir).
			Error("err", err).
			End()
	}
	return dir
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the configuration file used when none is
// specified.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration at path. Missing values take
// their default. If the file doesn't exist, the default configuration is
// returned.
func LoadConfigOrDefault(path string) (Config, error) {
	cfg := DefaultConfig()
	// Decoding into the defaults would merge key bindings.
	cfg.Input.Keys = nil

	_, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return DefaultConfig(), nil
	case err != nil:
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Check()
	return cfg, nil
}

// SaveConfig writes cfg at path.
func SaveConfig(cfg Config, path string) error {
	buf, err := MarshalConfig(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func MarshalConfig(cfg Config) ([]byte, error) {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf, nil
}
