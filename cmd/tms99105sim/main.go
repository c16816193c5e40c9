// Command tms99105sim assembles and runs TMS99105 assembly source:
// flag-parsed modes for direct run, console debugger, and TUI
// debugger, all built around one sim.Simulation value.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cecapps/tms99105sim/assembler"
	"github.com/cecapps/tms99105sim/config"
	"github.com/cecapps/tms99105sim/debugger"
	"github.com/cecapps/tms99105sim/sim"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		debugMode   = flag.Bool("debug", false, "start in console debugger mode")
		tuiMode     = flag.Bool("tui", false, "start in TUI debugger mode")
		maxSteps    = flag.Int("max-steps", 0, "maximum instructions before halt (0: use config default)")
		entryPoint  = flag.String("entry", "", "entry point address (hex or decimal; default: config default_entry)")
		verboseMode = flag.Bool("verbose", false, "verbose output")
		listing     = flag.Bool("listing", false, "print an assembly listing and exit")
		dumpSymbols = flag.Bool("dump-symbols", false, "dump the symbol table and exit")
		configPath  = flag.String("config", "", "path to config.toml (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("tms99105sim %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		printHelp()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified source file
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: file not found: %s\n", asmFile)
		os.Exit(1)
	}

	machine := sim.New()
	if cfg.Machine.Platform != "" {
		machine.SetPlatform(cfg.Machine.Platform)
	}
	machine.DefaultCheckpoint = cfg.Machine.DefaultCheckpoint
	lines, image, errs := machine.Assemble(string(source))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "assembly error: %v\n", e)
		}
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("assembled %d lines into a %d byte image\n", len(lines), len(image))
	}

	symbols := labelMap(lines)

	if *dumpSymbols {
		for name, addr := range symbols {
			fmt.Printf("%-16s >%04X\n", name, addr)
		}
		os.Exit(0)
	}

	if *listing {
		fmt.Print(assembler.FormatListing(lines))
		os.Exit(0)
	}

	if err := machine.LoadBytes(image); err != nil {
		fmt.Fprintf(os.Stderr, "error loading image: %v\n", err)
		os.Exit(1)
	}

	entry := cfg.Execution.DefaultEntry
	if *entryPoint != "" {
		entry = *entryPoint
	}
	entryAddr, err := parseAddress(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid entry point %q: %v\n", entry, err)
		os.Exit(1)
	}

	machine.Reset()
	machine.Flow.WP = machine.Mem.GetWord(0)
	machine.Flow.PC = entryAddr

	limit := cfg.Execution.MaxSteps
	if *maxSteps > 0 {
		limit = *maxSteps
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(machine)
		dbg.LoadSymbols(symbols)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("tms99105sim console debugger - type 'help' for commands")
			if err := debugger.RunConsole(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	steps, err := machine.Run(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime error at PC=>%04X after %d instructions: %v\n", machine.PC(), steps, err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("executed %d instructions\n", steps)
	}

	if cfg.Execution.EnableStats {
		printStats(machine, cfg)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func labelMap(lines []*assembler.Line) map[string]uint16 {
	out := make(map[string]uint16)
	for _, ln := range lines {
		if ln.Label != "" && ln.Segment != nil {
			out[ln.Label] = ln.Address
		}
	}
	return out
}

func parseAddress(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, ">"), "0x")
	if trimmed != s {
		v, err := strconv.ParseUint(trimmed, 16, 16)
		return uint16(v), err
	}
	v, err := strconv.ParseUint(s, 10, 16)
	return uint16(v), err
}

func printStats(machine *sim.Simulation, cfg *config.Config) {
	top := machine.Statistics().Top()
	if cfg.Statistics.OutputFile == "" {
		for _, mc := range top {
			fmt.Printf("%-8s %d\n", mc.Mnemonic, mc.Count)
		}
		return
	}

	f, err := os.Create(cfg.Statistics.OutputFile) // #nosec G304 -- user-configured statistics output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating statistics file: %v\n", err)
		return
	}
	defer f.Close()

	if cfg.Statistics.Format == "json" {
		fmt.Fprint(f, "{\n")
		for i, mc := range top {
			comma := ","
			if i == len(top)-1 {
				comma = ""
			}
			fmt.Fprintf(f, "  %q: %d%s\n", mc.Mnemonic, mc.Count, comma)
		}
		fmt.Fprint(f, "}\n")
		return
	}

	for _, mc := range top {
		fmt.Fprintf(f, "%s,%d\n", mc.Mnemonic, mc.Count)
	}
}

func printHelp() {
	fmt.Printf(`tms99105sim %s

Usage: tms99105sim [options] <assembly-file>

Options:
  -help              show this help message
  -version           show version information
  -debug             start in console debugger mode
  -tui               start in TUI debugger mode
  -max-steps N       maximum instructions before halt (default: config execution.max_steps)
  -entry ADDR        entry point address, hex or decimal (default: config execution.default_entry)
  -verbose           verbose output
  -listing           print an assembly listing and exit
  -dump-symbols      dump the symbol table and exit
  -config PATH       path to config.toml (default: platform config directory)

Examples:
  tms99105sim program.asm
  tms99105sim -debug program.asm
  tms99105sim -tui -entry >0100 program.asm
  tms99105sim -listing program.asm
`, Version)
}
