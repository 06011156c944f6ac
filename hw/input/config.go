package input

import (
	"chanf/emu/log"

	"github.com/veandco/go-sdl2/sdl"
)

// Name of the reset binding in the configuration.
const resetName = "reset"

// Config holds the input bindings: control name (or "reset") to input code.
type Config struct {
	Keys map[string]Code `toml:"keys"`
}

func DefaultConfig() Config {
	key := func(sc sdl.Scancode) Code { return Code{Type: Keyboard, Scancode: sc} }
	mouse := func(btn uint8) Code { return Code{Type: MouseButton, Button: btn} }

	return Config{
		Keys: map[string]Code{
			"console1":  key(sdl.SCANCODE_1),
			"console2":  key(sdl.SCANCODE_2),
			"console3":  key(sdl.SCANCODE_3),
			"console4":  key(sdl.SCANCODE_4),
			"left":      key(sdl.SCANCODE_LEFT),
			"right":     key(sdl.SCANCODE_RIGHT),
			"forward":   key(sdl.SCANCODE_UP),
			"backward":  key(sdl.SCANCODE_DOWN),
			"clock":     key(sdl.SCANCODE_X),
			"anticlock": key(sdl.SCANCODE_Z),
			"push":      mouse(sdl.BUTTON_LEFT),
			"pull":      mouse(sdl.BUTTON_RIGHT),
			resetName:   key(sdl.SCANCODE_F5),
		},
	}
}

// Check drops bindings to unknown controls.
func (cfg *Config) Check() {
	if cfg.Keys == nil {
		*cfg = DefaultConfig()
		return
	}
	for name := range cfg.Keys {
		if _, ok := ControlByName(name); !ok && name != resetName {
			log.ModInput.Warnf("Ignoring binding for unknown control %q", name)
			delete(cfg.Keys, name)
		}
	}
}

// Bind binds code to control. Other controls bound to code lose their
// binding.
func (cfg *Config) Bind(control string, code Code) {
	if cfg.Keys == nil {
		cfg.Keys = make(map[string]Code)
	}
	for name, c := range cfg.Keys {
		if c == code && name != control {
			delete(cfg.Keys, name)
		}
	}
	cfg.Keys[control] = code
}

// Bindings maps host input codes to key ids.
type Bindings map[Code]KeyID

func (cfg *Config) Bindings() Bindings {
	b := make(Bindings, len(cfg.Keys))
	for name, code := range cfg.Keys {
		if code.Type == UnsetCode {
			continue
		}
		if name == resetName {
			b[code] = ResetKey
			continue
		}
		ctrl, ok := ControlByName(name)
		if !ok {
			continue
		}
		if prev, dup := b[code]; dup {
			log.ModInput.Warnf("%s bound to both key ids %d and %d", code.Name(), prev, KeyIDOf(ctrl))
		}
		b[code] = KeyIDOf(ctrl)
	}
	return b
}
