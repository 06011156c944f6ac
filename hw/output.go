// Package hw implements the host side of the emulator on top of SDL: a
// window showing the video output, keyboard and mouse input and an audio
// device.
package hw

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"

	"chanf/emu/log"
	"chanf/hw/audio"
	"chanf/hw/input"
	"chanf/hw/video"
)

// Audio backends.
const (
	AudioSDL = "sdl"
	AudioOto = "oto"
)

type OutputConfig struct {
	Window video.WindowConfig

	AudioBackend string
	SampleRate   int
	BufferLen    int // samples per scheduled buffer
	Volume       float64
	RecordPath   string // record audio output to this WAV file if set

	Bindings input.Bindings
}

type Output struct {
	win *video.Window
	fb  *video.Framebuffer
	src *input.SDLSource
	dev audio.Device
}

// NewOutput opens the window and the audio device. sdl.Main must be running.
func NewOutput(cfg OutputConfig) (*Output, error) {
	o := &Output{
		fb:  video.NewFramebuffer(),
		src: input.NewSDLSource(cfg.Bindings),
	}

	var err error
	sdl.Do(func() {
		o.win, err = video.NewWindow(cfg.Window, video.Width, video.Height)
	})
	if err != nil {
		return nil, err
	}

	o.dev, err = openAudio(cfg)
	if err != nil {
		o.closeWindow()
		return nil, err
	}
	return o, nil
}

func openAudio(cfg OutputConfig) (audio.Device, error) {
	var (
		dev audio.Device
		err error
	)
	switch cfg.AudioBackend {
	case AudioOto:
		dev, err = audio.NewOtoDevice(cfg.SampleRate, cfg.Volume)
	case AudioSDL, "":
		dev, err = audio.NewSDLDevice(cfg.SampleRate, cfg.BufferLen, cfg.Volume)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", cfg.AudioBackend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RecordPath == "" {
		return dev, nil
	}
	rec, err := audio.NewRecorder(dev, cfg.RecordPath)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return rec, nil
}

// Poll processes pending SDL events. It returns false once the window has
// been closed.
func (o *Output) Poll() bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case sdl.QuitEvent:
				running = false
			case sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_RESIZED {
					log.ModVideo.DebugZ("window resized").
						Int32("w", e.Data1).
						Int32("h", e.Data2).
						End()
					o.win.Resize(e.Data1, e.Data2)
				}
			default:
				o.src.HandleEvent(event)
			}
		}
	})
	return running
}

func (o *Output) Surface() video.Surface { return o.fb }
func (o *Output) Input() input.Source     { return o.src }
func (o *Output) Audio() audio.Device     { return o.dev }

func (o *Output) Present() {
	sdl.Do(func() { o.win.Present(o.fb.Image()) })
}

func (o *Output) Screenshot(scale int) *image.RGBA {
	return o.fb.Screenshot(scale)
}

func (o *Output) Close() error {
	err := o.dev.Close()
	if werr := o.closeWindow(); err == nil {
		err = werr
	}
	log.ModEmu.InfoZ("host output closed").End()
	return err
}

func (o *Output) closeWindow() error {
	var err error
	sdl.Do(func() { err = o.win.Close() })
	return err
}
