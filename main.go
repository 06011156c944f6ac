package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"chanf/emu"
)

func main() {
	cfg := parseArgs(os.Args[1:])

	switch cfg.mode {
	case versionMode:
		fmt.Println("chanf", version())
	case defaultConfigMode:
		buf, err := emu.MarshalConfig(emu.DefaultConfig())
		checkf(err, "failed to encode default configuration")
		os.Stdout.Write(buf)
	case bindMode:
		bindMain(cfg.Bind)
	case runMode:
		emuMain(cfg.Run)
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "(devel)"
	}
	return info.Main.Version
}
