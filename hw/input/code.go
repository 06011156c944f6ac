package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type CodeType uint8

const (
	UnsetCode CodeType = iota
	Keyboard
	MouseButton
)

func (t CodeType) String() string {
	switch t {
	case Keyboard:
		return "key"
	case MouseButton:
		return "mouse"
	}
	return "not set"
}

var mouseButtonNames = map[uint8]string{
	sdl.BUTTON_LEFT:   "left",
	sdl.BUTTON_MIDDLE: "middle",
	sdl.BUTTON_RIGHT:  "right",
	sdl.BUTTON_X1:     "x1",
	sdl.BUTTON_X2:     "x2",
}

// A Code describes a host input event, a keyboard key or a mouse button.
// Only one of these is valid.
type Code struct {
	Scancode sdl.Scancode
	Button   uint8

	Type CodeType
}

// Name returns an user-friendly name for the input code.
func (c Code) Name() string {
	switch c.Type {
	case Keyboard:
		return sdl.GetScancodeName(c.Scancode)
	case MouseButton:
		return mouseButtonNames[c.Button]
	}
	return ""
}

func (c Code) MarshalText() ([]byte, error) {
	if c.Type == UnsetCode {
		return []byte{}, nil
	}
	return []byte(c.Type.String() + " " + c.Name()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	s := string(text)

	switch {
	case s == "":
		*c = Code{}

	case strings.HasPrefix(s, "mouse"):
		str := ""
		if _, err := fmt.Sscanf(s, "mouse %s", &str); err != nil {
			return fmt.Errorf("malformed mouse code: %s", s)
		}
		for btn, name := range mouseButtonNames {
			if name == str {
				*c = Code{Type: MouseButton, Button: btn}
				return nil
			}
		}
		return fmt.Errorf("unrecognized mouse button %q", str)

	case strings.HasPrefix(s, "key"):
		// Some key names contain spaces ("Left Shift").
		str := strings.TrimSpace(strings.TrimPrefix(s, "key"))
		if str == "" {
			return fmt.Errorf("malformed key code: %s", s)
		}

		sc := sdl.GetScancodeFromName(str)
		if sc == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", s)
		}
		*c = Code{Type: Keyboard, Scancode: sc}

	default:
		return fmt.Errorf("unrecognized input code: %s", s)
	}

	return nil
}
