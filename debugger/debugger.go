// Package debugger implements the interactive console and TUI front
// ends for sim.Simulation: a command dispatcher plus breakpoint and
// history managers driving a machine through Step/Run, rendered either line-by-line or in a
// tview/tcell screen.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/flow"
	"github.com/cecapps/tms99105sim/sim"
)

// Debugger wraps a Simulation with breakpoints, history, and an
// output buffer the console and TUI front ends both drain.
type Debugger struct {
	Sim *sim.Simulation

	Breakpoints *BreakpointManager
	History     *CommandHistory

	Running bool
	Symbols map[string]uint16

	LastCommand string
	Output      strings.Builder
}

// NewDebugger wraps machine for interactive control.
func NewDebugger(machine *sim.Simulation) *Debugger {
	return &Debugger{
		Sim:         machine,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(),
		Symbols:     make(map[string]uint16),
	}
}

// LoadSymbols installs a label table (from Assemble's Line.Label
// entries) for break/print address resolution.
func (d *Debugger) LoadSymbols(symbols map[string]uint16) {
	d.Symbols = symbols
}

// ResolveAddress resolves addrStr as a known label, then as a literal
// address in >HEX, 0xHEX, or decimal form.
func (d *Debugger) ResolveAddress(addrStr string) (uint16, error) {
	if addr, ok := d.Symbols[addrStr]; ok {
		return addr, nil
	}
	s := strings.TrimPrefix(strings.TrimPrefix(addrStr, ">"), "0x")
	if s != addrStr {
		v, err := strconv.ParseUint(s, 16, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
		return uint16(v), nil
	}
	v, err := strconv.ParseUint(addrStr, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return uint16(v), nil
}

// ExecuteCommand parses and runs one command line, repeating
// LastCommand when cmdLine is blank.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.dispatch(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) dispatch(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun()
	case "continue", "c":
		return d.cmdContinue()
	case "step", "s":
		return d.cmdStep()
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "disasm", "x":
		return d.cmdDisasm(args)
	case "reset":
		d.Sim.Reset()
		d.Sim.ResetInterruptVectors()
		d.Println("machine reset")
		return nil
	case "help", "h", "?":
		return d.cmdHelp()
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdRun() error {
	d.Sim.Reset()
	d.Sim.ResetInterruptVectors()
	d.Running = true
	return d.runUntilStop()
}

func (d *Debugger) cmdContinue() error {
	d.Running = true
	return d.runUntilStop()
}

func (d *Debugger) cmdStep() error {
	state, err := d.Sim.StepInstruction()
	if err != nil {
		return err
	}
	d.Println(d.renderStop(state))
	return nil
}

// runUntilStop steps until a breakpoint, an error, or the machine
// traps.
func (d *Debugger) runUntilStop() error {
	for d.Running {
		state, err := d.Sim.StepInstruction()
		if err != nil {
			d.Running = false
			return err
		}
		if state == flow.StateError {
			d.Running = false
			d.Printf("machine entered error state: %v\n", d.Sim.Flow.LastError)
			return nil
		}
		if d.Breakpoints.Hit(d.Sim.PC()) {
			d.Running = false
			d.Printf("breakpoint hit at >%04X\n", d.Sim.PC())
			return nil
		}
	}
	return nil
}

func (d *Debugger) renderStop(state flow.State) string {
	return fmt.Sprintf("PC=>%04X WP=>%04X next=%s [%s]", d.Sim.PC(), d.Sim.WP(), d.Sim.NextInstructionLabel(), state)
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break ADDR")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.Add(addr, false)
	d.Printf("breakpoint %d at >%04X\n", bp.ID, bp.Address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete ID")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.Delete(id)
}

func (d *Debugger) cmdInfo(args []string) error {
	what := "registers"
	if len(args) > 0 {
		what = args[0]
	}
	switch what {
	case "registers", "reg", "r":
		d.printRegisters()
	case "breakpoints", "break", "b":
		d.printBreakpoints()
	case "stats":
		d.printStats()
	default:
		return fmt.Errorf("unknown info target: %s", what)
	}
	return nil
}

func (d *Debugger) printRegisters() {
	for i := 0; i < 16; i += 4 {
		d.Printf("R%-2d=%04X  R%-2d=%04X  R%-2d=%04X  R%-2d=%04X\n",
			i, d.Sim.Register(i), i+1, d.Sim.Register(i+1), i+2, d.Sim.Register(i+2), i+3, d.Sim.Register(i+3))
	}
	d.Printf("PC=%04X WP=%04X ST=%04X current=%s next=%s\n",
		d.Sim.PC(), d.Sim.WP(), d.Sim.StatusWord(), d.Sim.CurrentInstructionLabel(), d.Sim.NextInstructionLabel())
}

func (d *Debugger) printBreakpoints() {
	bps := d.Breakpoints.All()
	if len(bps) == 0 {
		d.Println("no breakpoints set")
		return
	}
	for _, bp := range bps {
		d.Printf("%d: >%04X hits=%d\n", bp.ID, bp.Address, bp.HitCount)
	}
}

func (d *Debugger) printStats() {
	top := d.Sim.Statistics().Top()
	if len(top) == 0 {
		d.Println("no instructions retired yet")
		return
	}
	for _, mc := range top {
		d.Printf("%-8s %d\n", mc.Mnemonic, mc.Count)
	}
	d.Printf("total: %d\n", d.Sim.Statistics().Total())
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print ADDR")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	d.Printf(">%04X: %04X\n", addr, d.Sim.Mem.GetWord(addr))
	return nil
}

func (d *Debugger) cmdDisasm(args []string) error {
	addr := d.Sim.PC()
	count := 10
	if len(args) > 0 {
		a, err := d.ResolveAddress(args[0])
		if err != nil {
			return err
		}
		addr = a
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err == nil {
			count = n
		}
	}
	for i := 0; i < count; i++ {
		res, err := catalog.Disassemble(d.Sim.Catalog, d.Sim.Mem, addr)
		if err != nil {
			d.Printf(">%04X: %v\n", addr, err)
			return nil
		}
		marker := "  "
		if addr == d.Sim.PC() {
			marker = "->"
		}
		d.Printf("%s>%04X: %-8s %s\n", marker, addr, res.Mnemonic, res.Operands)
		addr += uint16(res.Length)
	}
	return nil
}

func (d *Debugger) cmdHelp() error {
	d.Println(`commands:
  run, r            reset and start execution
  continue, c       resume execution
  step, s           execute one instruction
  break, b ADDR     set a breakpoint
  delete, d ID      remove a breakpoint
  info registers    show registers and status
  info breakpoints  list breakpoints
  info stats        show per-mnemonic execution counts
  print, p ADDR     show one memory word
  disasm, x [ADDR [N]]  disassemble N instructions from ADDR
  reset             reset the machine
  help, h, ?        this message`)
	return nil
}

// GetOutput drains and returns the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

// Printf appends formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

// Println appends a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}
