package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"chanf/emu/log"
	"chanf/hw/input"
	"chanf/ves"
)

type mode byte

const (
	runMode           mode = iota // Run a cartridge (default)
	versionMode                   // Show chanf version
	defaultConfigMode             // Print default configuration
	bindMode                      // Show input capture window
)

type (
	CLI struct {
		Run           Run           `cmd:"" help:"Run emulator. (default command)" default:"withargs"`
		Bind          Bind          `cmd:"" help:"Capture a key or mouse button and print the binding for a control."`
		DefaultConfig DefaultConfig `cmd:"" help:"Print the default configuration." name:"default-config"`
		Version       Version       `cmd:"" help:"Show chanf version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" optional:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`

		BIOS       string   `name:"bios" help:"BIOS image to load." type:"existingfile"`
		Core       string   `name:"core" help:"${core_help}" default:"testcard"`
		Config     string   `name:"config" help:"${config_help}" type:"path"`
		Monitor    int      `name:"monitor" help:"Monitor index to use (overrides config)." default:"-1"`
		Stats      *outfile `name:"stats" help:"Write pacing statistics as JSON lines." placeholder:"FILE|stdout|stderr"`
		Record     string   `name:"record" help:"Record audio output to a WAV file." type:"path"`
		Screenshot string   `name:"screenshot" help:"Save a PNG screenshot on exit." type:"path"`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
	}

	Bind struct {
		Control string `arg:"" name:"control" help:"${control_help}" enum:"${controls}"`
		Config  string `name:"config" help:"${config_help}" type:"path"`
		Save    bool   `name:"save" help:"Write the binding to the configuration file."`
	}

	DefaultConfig struct{}
	Version       struct{}
)

func cliVars() kong.Vars {
	controls := []string{"reset"}
	for c := range input.NumControls {
		controls = append(controls, c.String())
	}
	return kong.Vars{
		"rompath_help":    "Cartridge image to run.",
		"core_help":       fmt.Sprintf("Emulation core (%s).", strings.Join(ves.Names(), ", ")),
		"config_help":     "Configuration file (default: user config directory).",
		"cpuprofile_help": "Write CPU profile to file.",
		"log_help":        "Enable logging for specified modules.",
		"control_help":    "Control to bind: " + strings.Join(controls, ", ") + ".",
		"controls":        strings.Join(controls, ","),
	}
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("chanf"),
		kong.Description("Fairchild Channel F emulator frontend."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		cliVars())
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "version":
		cfg.mode = versionMode
	case "default-config":
		cfg.mode = defaultConfigMode
	case "bind <control>":
		cfg.mode = bindMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if !strings.HasPrefix(ctx.Command(), "run") {
		return nil
	}

	w := ctx.Stdout
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Log modules (--log):")
	fmt.Fprintf(w, "  %s\n", strings.Join(log.ModuleNames(), " "))
	fmt.Fprintln(w, "  'all' enables every module, 'no' silences logging entirely.")
	return nil
}

// logModMask is the kong mapper for --log.
type logModMask log.ModuleMask

// parseLogModules parses a comma-separated list of log modules. disable
// reports whether the list was exactly "no".
func parseLogModules(list string) (mask log.ModuleMask, disable bool, err error) {
	var all, none bool
	for name := range strings.SplitSeq(list, ",") {
		switch name = strings.TrimSpace(name); name {
		case "":
		case "all":
			all = true
		case "no":
			none = true
		default:
			mod, ok := log.ModuleByName(name)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %q", name)
			}
			mask |= mod.Mask()
		}
	}

	switch {
	case none && (all || mask != 0):
		return 0, false, fmt.Errorf("'no' cannot be combined with other log modules")
	case none:
		return 0, true, nil
	case all:
		return log.ModuleMaskAll, false, nil
	}
	return mask, false, nil
}

// Decode implements kong.MapperValue.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	var list string
	if err := ctx.Scan.PopValueInto("log", &list); err != nil {
		return err
	}
	mask, disable, err := parseLogModules(list)
	if err != nil {
		return err
	}
	if disable {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// outfile is a writable sink named on the command line, either a file
// path or one of the standard streams.
type outfile struct {
	io.WriteCloser
	name string
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openSink(name string) (*outfile, error) {
	switch name {
	case "stdout", "-":
		return &outfile{nopCloser{os.Stdout}, name}, nil
	case "stderr":
		return &outfile{nopCloser{os.Stderr}, name}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &outfile{f, name}, nil
}

// Decode implements kong.MapperValue.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	var name string
	if err := ctx.Scan.PopValueInto("file", &name); err != nil {
		return err
	}
	sink, err := openSink(name)
	if err != nil {
		return err
	}
	*f = *sink
	return nil
}

func (f *outfile) String() string { return f.name }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf("%s: %v", fmt.Sprintf(format, args...), err)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "chanf: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
