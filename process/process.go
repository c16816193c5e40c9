// Package process implements the Execution Process: it holds the "next" and "current" instruction pair, drives the
// begin/fetch_operands/execute/write_results cycle for whichever
// Execution Unit handles the current mnemonic, and tracks the PC
// offset contributed by follow-on words. It never decides when to
// step or how PC/WP ultimately land after a jump/branch/RTWP -- that
// is Flow's job (package flow); Process only exposes the resolved
// Context so Flow can read the overrides once WriteResults has run.
package process

import (
	"fmt"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/execunit"
	"github.com/cecapps/tms99105sim/instruction"
	"github.com/cecapps/tms99105sim/memstate"
)

// phase names the strict begin->fetch_operands->execute->write_results
// sequence, plus the idle states before/after a full cycle.
type phase int

const (
	phaseEmpty phase = iota // no current instruction yet
	phaseFetched
	phaseBegun
	phaseOperandsFetched
	phaseExecuted
	phaseWritten
)

// PhaseMisuse reports a caller driving the Execution Process phases
// out of order, a programmer error.
type PhaseMisuse struct {
	Phase string
}

func (e *PhaseMisuse) Error() string {
	return fmt.Sprintf("process: phase misuse calling %s out of order", e.Phase)
}

// Process drives one instruction at a time through the four-phase
// cycle.
type Process struct {
	cat      *catalog.Catalog
	mem      *memstate.Memory
	status   *memstate.StatusRegister
	platform string

	next   *instruction.Instruction
	nextPC uint16

	current   *instruction.Instruction
	currentPC uint16
	pcOffset  uint16

	unit execunit.Unit
	ctx  *execunit.Context

	phase phase
}

// New builds a Process sharing mem and status with the rest of the
// simulation; neither is copied. The target platform defaults to
// TMS99105.
func New(cat *catalog.Catalog, mem *memstate.Memory, status *memstate.StatusRegister) *Process {
	return &Process{cat: cat, mem: mem, status: status, platform: catalog.Platform99105, phase: phaseEmpty}
}

// SetPlatform selects the target platform tag words are decoded
// against: an opcode the catalog knows but the platform does not
// implement decodes as a MID trap.
func (p *Process) SetPlatform(platform string) {
	p.platform = platform
}

// Reset clears the next/current instruction pair and phase state,
// without touching memory or the status register (the caller, usually
// Simulation, resets those itself).
func (p *Process) Reset() {
	p.next, p.current = nil, nil
	p.nextPC, p.currentPC, p.pcOffset = 0, 0, 0
	p.unit, p.ctx = nil, nil
	p.phase = phaseEmpty
}

// FetchNext implements Flow's PREFETCH: decode the opcode word at addr
// against the catalog and stage it as "next". Returns
// *instruction.IllegalOpcodeError or *instruction.MIDNotImplementedError
// verbatim on a bad word.
func (p *Process) FetchNext(addr uint16) error {
	word := p.mem.GetWord(addr)
	inst, err := instruction.NewByOpcodeWord(p.cat, word)
	if err != nil {
		return err
	}
	if !inst.Opcode().SupportsPlatform(p.platform) {
		return &instruction.MIDNotImplementedError{Word: word}
	}
	p.next, p.nextPC = inst, addr
	return nil
}

// HasNext reports whether FetchNext has staged an instruction not yet
// promoted to current by Advance.
func (p *Process) HasNext() bool { return p.next != nil }

// Advance implements Flow's FETCH: promotes "next" to "current",
// resets the phase state machine and PC offset counter, and checks
// privilege. wp is this cycle's workspace pointer, captured once so
// every phase sees a consistent value even if WriteResults later
// requests a WP change for the *following* instruction.
func (p *Process) Advance(wp uint16) error {
	if p.next == nil {
		return fmt.Errorf("process: Advance called with no staged next instruction")
	}
	p.current, p.currentPC = p.next, p.nextPC
	p.next = nil
	p.pcOffset = 0
	p.phase = phaseFetched

	u, err := execunit.ForMnemonic(p.cat, p.current.Mnemonic())
	if err != nil {
		return err
	}
	p.unit = u
	p.ctx = &execunit.Context{Mem: p.mem, Status: p.status, WP: wp, PC: p.currentPC, Inst: p.current}

	return p.current.CheckLegal(p.cat, p.status.Priv())
}

// nextWordAddr is where the next follow-on word (second opcode word,
// or an immediate word) would be read from: the base opcode word plus
// whatever this instruction has already consumed.
func (p *Process) nextWordAddr() uint16 {
	return p.currentPC + 2 + p.pcOffset
}

// Begin pulls the second opcode word, if this format requires one.
func (p *Process) Begin() error {
	if p.phase != phaseFetched {
		return &PhaseMisuse{Phase: "begin"}
	}
	if p.current.Opcode().HasSecondOpcodeWord() {
		w := p.mem.GetWord(p.nextWordAddr())
		if err := p.current.SetSecondWord(w); err != nil {
			return err
		}
		p.pcOffset += 2
	}
	if err := p.unit.ValidateOpcode(p.ctx); err != nil {
		return err
	}
	p.phase = phaseBegun
	return nil
}

// FetchOperands pulls zero or more follow-on immediate words
// (immediate-operand, immediate-source, immediate-dest, in that
// order), finalizes the instruction, then delegates to the unit's own
// FetchOperands to resolve addressing modes against the now-complete
// word set.
func (p *Process) FetchOperands() error {
	if p.phase != phaseBegun {
		return &PhaseMisuse{Phase: "fetch_operands"}
	}
	op := p.current.Opcode()

	if op.HasImmediateOperand() {
		w := p.mem.GetWord(p.nextWordAddr())
		if err := p.current.SetImmediateOperand(w); err != nil {
			return err
		}
		p.pcOffset += 2
	}
	if p.current.HasImmediateSourceOperand() {
		w := p.mem.GetWord(p.nextWordAddr())
		if err := p.current.SetImmediateSourceOperand(w); err != nil {
			return err
		}
		p.pcOffset += 2
	}
	if p.current.HasImmediateDestOperand() {
		w := p.mem.GetWord(p.nextWordAddr())
		if err := p.current.SetImmediateDestOperand(w); err != nil {
			return err
		}
		p.pcOffset += 2
	}
	p.current.Finalize()

	if err := p.unit.FetchOperands(p.ctx); err != nil {
		return err
	}
	p.phase = phaseOperandsFetched
	return nil
}

// Execute runs the unit's pure computation phase.
func (p *Process) Execute() error {
	if p.phase != phaseOperandsFetched {
		return &PhaseMisuse{Phase: "execute"}
	}
	if p.unit.RequiresPrivilege() && !p.status.Priv() {
		return &instruction.PrivilegeViolationError{Mnemonic: p.current.Mnemonic()}
	}
	p.ctx.ReturnAddr = p.currentPC + 2 + p.pcOffset
	if err := p.unit.Execute(p.ctx); err != nil {
		return err
	}
	p.phase = phaseExecuted
	return nil
}

// WriteResults commits the unit's results to memory/registers. After
// this call, Context() exposes any PC/WP override and RequestsIdle for
// Flow's WRITEBACK/JUMP_RESOLVE phases to act on.
func (p *Process) WriteResults() error {
	if p.phase != phaseExecuted {
		return &PhaseMisuse{Phase: "write_results"}
	}
	if err := p.unit.WriteResults(p.ctx); err != nil {
		return err
	}
	p.phase = phaseWritten
	return nil
}

// Context returns the current instruction's execution context. Valid
// from Advance onward; most useful to callers after WriteResults, to
// read PCOverridden/NewPC/WPOverridden/NewWP/RequestsIdle.
func (p *Process) Context() *execunit.Context { return p.ctx }

// PCOffset returns the total bytes consumed by follow-on words beyond
// the base opcode word, for Flow's default PC += 2 + PCOffset advance.
func (p *Process) PCOffset() uint16 { return p.pcOffset }

// CurrentPC returns the PC value the current instruction was fetched
// from (before any follow-on words or PC advance).
func (p *Process) CurrentPC() uint16 { return p.currentPC }

// CurrentInstruction returns the instruction currently mid-cycle, or
// nil if Advance has never been called.
func (p *Process) CurrentInstruction() *instruction.Instruction { return p.current }

// NextPC returns the PC value the staged "next" instruction was
// fetched from.
func (p *Process) NextPC() uint16 { return p.nextPC }

// NextInstruction returns the staged "next" instruction, or nil if
// FetchNext has not been called since the last Advance.
func (p *Process) NextInstruction() *instruction.Instruction { return p.next }

// WordsConsumed is the total instruction length in 16-bit words,
// including the base opcode word: 1 + pcOffset/2.
func (p *Process) WordsConsumed() int {
	return 1 + int(p.pcOffset/2)
}
