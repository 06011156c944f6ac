package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veandco/go-sdl2/sdl"

	"chanf/emu/log"
	"chanf/hw/input"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want := DefaultConfig()
	want.Emulation.Pacing = PacingBudget
	want.Audio.Backend = AudioOto
	want.Video.Shader = "crt"
	want.Input.Keys["push"] = input.Code{Type: input.Keyboard, Scancode: sdl.SCANCODE_SPACE}

	if err := SaveConfig(want, path); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigSaveBinding(t *testing.T) {
	log.Disable()
	path := filepath.Join(t.TempDir(), "config.toml")

	// First save creates the file from the defaults.
	cfg, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	z := input.Code{Type: input.Keyboard, Scancode: sdl.SCANCODE_Z}
	cfg.Input.Bind("pull", z)
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Input.Keys["pull"] != z {
		t.Errorf("pull bound to %q, want %q", got.Input.Keys["pull"].Name(), z.Name())
	}
	if _, ok := got.Input.Keys["anticlock"]; ok {
		t.Error("anticlock kept the key given to pull")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	log.Disable()
	got, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	log.Disable()
	path := filepath.Join(t.TempDir(), "config.toml")
	const text = `
[emulation]
refresh_rate = 50
pacing = "turbo"

[audio]
volume = 3.0

[input.keys]
push = "key Space"
select = "key A"
`
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfigOrDefault(path)
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfig()
	want.Emulation.RefreshRate = 50
	want.Input.Keys = map[string]input.Code{
		"push": {Type: input.Keyboard, Scancode: sdl.SCANCODE_SPACE},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[emulation\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigOrDefault(path); err == nil {
		t.Fatal("LoadConfigOrDefault should fail on malformed TOML")
	}
}
