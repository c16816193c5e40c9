package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/cecapps/tms99105sim/catalog"
)

// TUI is the full-screen debugger front end: a tview.Application
// wiring register/disassembly/breakpoints/output panels around a
// command input field.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	RegisterView    *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI builds and wires every panel for dbg, ready to Run.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}
	t.initializeViews()
	layout := t.buildLayout()
	t.setupKeyBindings()
	t.App.SetRoot(layout, true).SetFocus(t.CommandInput)
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() tview.Primitive {
	leftPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 2, false).
		AddItem(t.RegisterView, 0, 1, false)

	return tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}
	err := t.Debugger.ExecuteCommand(cmd)
	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if out := t.Debugger.GetOutput(); out != "" {
		t.WriteOutput(out)
	}
	t.RefreshAll()
}

// WriteOutput appends text to the output panel and scrolls to it.
func (t *TUI) WriteOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current machine state.
func (t *TUI) RefreshAll() {
	t.updateRegisterView()
	t.updateDisassemblyView()
	t.updateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) updateRegisterView() {
	sim := t.Debugger.Sim
	var b strings.Builder
	for i := 0; i < 16; i += 2 {
		fmt.Fprintf(&b, "R%-2d=%04X  R%-2d=%04X\n", i, sim.Register(i), i+1, sim.Register(i+1))
	}
	fmt.Fprintf(&b, "\nPC=%04X\nWP=%04X\nST=%04X\n", sim.PC(), sim.WP(), sim.StatusWord())
	fmt.Fprintf(&b, "\ncurrent: %s\nnext: %s\n", sim.CurrentInstructionLabel(), sim.NextInstructionLabel())
	t.RegisterView.SetText(b.String())
}

func (t *TUI) updateDisassemblyView() {
	sim := t.Debugger.Sim
	var b strings.Builder
	addr := sim.PC()
	for i := 0; i < 16; i++ {
		res, err := catalog.Disassemble(sim.Catalog, sim.Mem, addr)
		if err != nil {
			fmt.Fprintf(&b, ">%04X: %v\n", addr, err)
			break
		}
		marker := "  "
		if addr == sim.PC() {
			marker = "[yellow]->[white]"
		}
		if t.Debugger.Breakpoints.Get(addr) != nil {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s>%04X: %-8s %s\n", marker, addr, res.Mnemonic, res.Operands)
		addr += uint16(res.Length)
	}
	t.DisassemblyView.SetText(b.String())
}

func (t *TUI) updateBreakpointsView() {
	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.BreakpointsView.SetText("none")
		return
	}
	var b strings.Builder
	for _, bp := range bps {
		fmt.Fprintf(&b, "%d: >%04X hits=%d\n", bp.ID, bp.Address, bp.HitCount)
	}
	t.BreakpointsView.SetText(b.String())
}

// Run starts the TUI event loop and blocks until the user quits.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.Run()
}

// RunTUI wraps NewTUI(dbg).Run for the CLI entry point.
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).Run()
}
