package input

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// Capture waits for the next key or mouse button press and returns the Code
// identifying it, or an unset Code if the user pressed Escape or closed the
// window. It must run on the SDL main thread.
func Capture(control string) (Code, error) {
	var code Code

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return code, fmt.Errorf("failed to initialize SDL: %s", err)
	}
	defer sdl.Quit()

	title := fmt.Sprintf("Press key or mouse button for %q (Escape to cancel)", control)
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		520,
		120,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return code, fmt.Errorf("failed to create window: %s", err)
	}
	defer win.Destroy()

	renderer, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return code, fmt.Errorf("failed to create renderer: %s", err)
	}
	defer renderer.Destroy()

	// Drop the events generated while the window was appearing, such as the
	// click which launched us.
	drainEvents(200 * time.Millisecond)
pollLoop:
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case sdl.QuitEvent:
				break pollLoop

			case sdl.KeyboardEvent:
				if e.State == sdl.PRESSED {
					if e.Keysym.Scancode != sdl.SCANCODE_ESCAPE {
						code.Type = Keyboard
						code.Scancode = e.Keysym.Scancode
					}
					break pollLoop
				}

			case sdl.MouseButtonEvent:
				if e.State == sdl.PRESSED {
					if _, ok := mouseButtonNames[e.Button]; ok {
						code.Type = MouseButton
						code.Button = e.Button
						break pollLoop
					}
				}
			}
		}

		renderer.SetDrawColor(0x94, 0xff, 0xa4, 0xff)
		renderer.Clear()
		renderer.Present()
		sdl.Delay(16)
	}

	return code, nil
}

func drainEvents(maxwait time.Duration) {
	deadline := time.Now().Add(maxwait)
	for time.Now().Before(deadline) {
		if sdl.PollEvent() == nil {
			sdl.Delay(10)
		}
	}
}
