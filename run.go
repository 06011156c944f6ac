package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/veandco/go-sdl2/sdl"

	"chanf/emu"
	"chanf/hw/input"
	"chanf/hw/video"
	"chanf/ves"
)

// emuMain runs the emulator with the given cartridge until the window is
// closed or the process is interrupted.
func emuMain(args Run) {
	var exitcode int
	sdl.Main(func() {
		exitcode = runEmulator(args)
	})
	os.Exit(exitcode)
}

func runEmulator(args Run) int {
	cfg, err := emu.LoadConfigOrDefault(configPath(args.Config))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if args.Monitor >= 0 {
		cfg.Video.Monitor = args.Monitor
	}

	bios, err := readImage(args.BIOS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading BIOS: %v\n", err)
		return 1
	}
	rom, err := readImage(args.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM: %v\n", err)
		return 1
	}

	core, err := ves.New(args.Core, bios, rom)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create core: %v\n", err)
		return 1
	}

	opts := emu.Options{Record: args.Record}
	if args.Stats != nil {
		opts.Stats = args.Stats
		defer args.Stats.Close()
	}

	emulator, err := emu.Launch(core, cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}
	defer emulator.Close()

	if args.CPUProfile != "" {
		stop, err := startCPUProfile(args.CPUProfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer func() {
			stop()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitcode := 0
	if err := emulator.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "emulation stopped: %v\n", err)
		exitcode = 1
	}

	if args.Screenshot != "" {
		if err := video.SaveAsPNG(emulator.Screenshot(), args.Screenshot); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save screenshot: %v\n", err)
			exitcode = 1
		}
	}
	return exitcode
}

// startCPUProfile starts profiling into the file at path. stop ends the
// profile and closes the file.
func startCPUProfile(path string) (stop func(), err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create cpu profile file: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func configPath(path string) string {
	if path == "" {
		return emu.DefaultConfigPath()
	}
	return path
}

func readImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// bindMain opens the capture window and prints the TOML line binding
// the captured key or button to the control. With --save, the binding is
// also written to the configuration file.
func bindMain(args Bind) {
	var (
		code input.Code
		err  error
	)
	sdl.Main(func() {
		sdl.Do(func() {
			code, err = input.Capture(args.Control)
		})
	})
	checkf(err, "error capturing input")

	if code.Type == input.UnsetCode {
		fmt.Fprintln(os.Stderr, "capture canceled")
		os.Exit(1)
	}
	out, err := code.MarshalText()
	checkf(err, "failed to encode binding")
	fmt.Printf("%s = %q\n", args.Control, out)

	if !args.Save {
		return
	}
	path := configPath(args.Config)
	cfg, err := emu.LoadConfigOrDefault(path)
	checkf(err, "failed to load configuration")
	cfg.Input.Bind(args.Control, code)
	checkf(emu.SaveConfig(cfg, path), "failed to save configuration")
	fmt.Fprintln(os.Stderr, "binding saved to", path)
}
