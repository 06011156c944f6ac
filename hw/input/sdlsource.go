package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// SDLSource is a Source fed with SDL events. Like the Arbiter, it only keeps
// the latest pending values.
type SDLSource struct {
	bindings Bindings

	key     KeyID
	keyDown bool
	hasKey  bool

	dx, dy float64
	wheel  float64
}

func NewSDLSource(bindings Bindings) *SDLSource {
	return &SDLSource{bindings: bindings}
}

// HandleEvent must be called for each SDL event.
func (s *SDLSource) HandleEvent(event sdl.Event) {
	switch e := event.(type) {
	case sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return
		}
		s.setKey(Code{Type: Keyboard, Scancode: e.Keysym.Scancode}, e.State == sdl.PRESSED)

	case sdl.MouseButtonEvent:
		s.setKey(Code{Type: MouseButton, Button: e.Button}, e.State == sdl.PRESSED)

	case sdl.MouseMotionEvent:
		s.dx, s.dy = float64(e.XRel), float64(e.YRel)

	case sdl.MouseWheelEvent:
		wheel := float64(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			wheel = -wheel
		}
		s.wheel = wheel
	}
}

func (s *SDLSource) setKey(code Code, down bool) {
	id, ok := s.bindings[code]
	if !ok {
		return
	}
	s.key, s.keyDown, s.hasKey = id, down, true
}

func (s *SDLSource) PendingKey() (KeyID, bool, bool) {
	if !s.hasKey {
		return 0, false, false
	}
	s.hasKey = false
	return s.key, s.keyDown, true
}

func (s *SDLSource) Movement() (dx, dy float64) {
	dx, dy = s.dx, s.dy
	s.dx, s.dy = 0, 0
	return dx, dy
}

func (s *SDLSource) Wheel() float64 {
	w := s.wheel
	s.wheel = 0
	return w
}
