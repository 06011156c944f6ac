package log

import (
	"bytes"
	"strings"
	"testing"
)

type frameContext struct{ frame uint64 }

func (fc *frameContext) AddLogContext(z *EntryZ) { z.Uint("frame", fc.frame) }

func TestEntryZDisabledModule(t *testing.T) {
	DisableDebugModules(ModuleMaskAll)
	if z := ModSound.DebugZ("nope"); z != nil {
		t.Fatalf("DebugZ on disabled module returned %v, want nil", z)
	}
	// Chained calls on a nil entry must be no-ops.
	ModSound.DebugZ("nope").Int("a", 1).String("b", "c").End()
}

func TestEntryZOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Disable()

	fc := &frameContext{frame: 42}
	AddContext(fc)
	defer RemoveContext(fc)

	EnableDebugModules(ModVideo.Mask())
	defer DisableDebugModules(ModVideo.Mask())

	ModVideo.DebugZ("redraw").Int("cells", 12).Hex8("port", 0x4f).End()

	out := buf.String()
	for _, want := range []string{"redraw", "cells=12", "port=4f", "frame=42", "_mod=video"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q doesn't contain %q", out, want)
		}
	}
}

func TestPanicZPanicsWhenDisabled(t *testing.T) {
	Disable()
	defer func() {
		if recover() == nil {
			t.Fatal("PanicZ().End() didn't panic")
		}
	}()
	ModInput.PanicZ("contract violation").Uint8("id", 77).End()
}

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Fatalf("ModuleByName(%q) not found", name)
		}
		if mod.String() != name {
			t.Errorf("ModuleByName(%q).String() = %q", name, mod.String())
		}
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName(\"<error>\") should not be found")
	}
}
