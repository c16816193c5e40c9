// Package flow implements the top-level Flow state machine:
// interrupt-check, interrupt service, fetch/decode/
// execute/writeback via package process, jump resolution, and
// prefetch of the next instruction word. It is the only package that
// owns PC and WP at the simulation level; process.Process only ever
// sees the WP value Flow hands it for one instruction's duration.
package flow

import (
	"fmt"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/execunit"
	"github.com/cecapps/tms99105sim/instruction"
	"github.com/cecapps/tms99105sim/memstate"
	"github.com/cecapps/tms99105sim/process"
)

// State is one of the ten named Flow states, plus Error for a halted
// trap condition that keeps faults observable without panicking.
type State int

const (
	StateIdle State = iota
	StateIntCheck
	StateIntService
	StateFetch
	StateBegin
	StateOperandFetch
	StateExecute
	StateWriteback
	StateJumpResolve
	StatePrefetch
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateIntCheck:
		return "INT_CHECK"
	case StateIntService:
		return "INT_SERVICE"
	case StateFetch:
		return "FETCH"
	case StateBegin:
		return "BEGIN"
	case StateOperandFetch:
		return "OPERAND_FETCH"
	case StateExecute:
		return "EXECUTE"
	case StateWriteback:
		return "WRITEBACK"
	case StateJumpResolve:
		return "JUMP_RESOLVE"
	case StatePrefetch:
		return "PREFETCH"
	case StateError:
		return "ERROR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// instructionStepBound caps how many Step calls StepInstruction will
// drive before giving up: generous enough for the longest real
// cycle (IDLE wake -> INT_CHECK -> INT_SERVICE -> PREFETCH -> INT_CHECK ->
// FETCH -> BEGIN -> OPERAND_FETCH -> EXECUTE -> WRITEBACK -> JUMP_RESOLVE ->
// PREFETCH is 12 states) without masking a genuinely stuck machine.
const instructionStepBound = 32

// Flow is the top-level state machine owning PC, WP, and the
// Execution Process.
type Flow struct {
	Mem        *memstate.Memory
	Status     *memstate.StatusRegister
	Interrupts *memstate.InterruptList
	Errors     *memstate.ErrorFlags
	Proc       *process.Process

	PC    uint16
	WP    uint16
	State State

	// LastError records the fault that drove State to StateError, for
	// host introspection; cleared by Reset.
	LastError error

	pendingLevel int
}

// New wires a Flow around shared memory/status/interrupt/error state;
// none of them are copied. The caller is expected to call Reset before
// stepping.
func New(cat *catalog.Catalog, mem *memstate.Memory, status *memstate.StatusRegister, interrupts *memstate.InterruptList, errs *memstate.ErrorFlags) *Flow {
	return &Flow{
		Mem:        mem,
		Status:     status,
		Interrupts: interrupts,
		Errors:     errs,
		Proc:       process.New(cat, mem, status),
		State:      StateIdle,
	}
}

// Reset clears status/interrupts/errors/process state and loads WP/PC
// from the reset vector (interrupt level 0: WP at address 0, PC at
// address 2).
func (f *Flow) Reset() {
	f.Status.Reset()
	f.Interrupts.Reset()
	f.Errors.Reset()
	f.Proc.Reset()
	f.LastError = nil
	f.WP = f.Mem.GetWord(0x0000)
	f.PC = f.Mem.GetWord(0x0002)
	f.State = StateIntCheck
}

// ResetInterruptVectors writes the default boot vectors WP=0x0080,
// PC=0x0100 for every interrupt slot 0..15, and the same
// defaults at the NMI vector (0xFFFC/0xFFFE).
func (f *Flow) ResetInterruptVectors() {
	for n := 0; n < 16; n++ {
		addr := uint16(4 * n)
		f.Mem.SetWord(addr, 0x0080)
		f.Mem.SetWord(addr+2, 0x0100)
	}
	f.Mem.SetWord(0xFFFC, 0x0080)
	f.Mem.SetWord(0xFFFE, 0x0100)
}

// hasServiceableInterrupt reports whether NMI is latched or a
// maskable interrupt at or below the current mask is pending.
func (f *Flow) hasServiceableInterrupt() bool {
	if f.Interrupts.NMIPending() {
		return true
	}
	_, ok := f.Interrupts.LowestPending(f.Status.Mask())
	return ok
}

// Step advances the state machine by exactly one state and returns
// the state that was just processed (the Host API's "previous Flow
// state tag").
func (f *Flow) Step() (State, error) {
	prev := f.State

	switch f.State {
	case StateIdle:
		if f.hasServiceableInterrupt() {
			f.State = StateIntCheck
		}

	case StateIntCheck:
		switch {
		case f.Interrupts.NMIPending():
			f.State = StateIntService
		default:
			if level, ok := f.Interrupts.LowestPending(f.Status.Mask()); ok {
				f.pendingLevel = level
				f.State = StateIntService
			} else if f.Proc.HasNext() {
				f.State = StateFetch
			} else {
				f.State = StatePrefetch
			}
		}

	case StateIntService:
		f.serviceInterrupt()
		f.State = StatePrefetch

	case StateFetch:
		if err := f.Proc.Advance(f.WP); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateBegin

	case StateBegin:
		if err := f.Proc.Begin(); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateOperandFetch

	case StateOperandFetch:
		if err := f.Proc.FetchOperands(); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateExecute

	case StateExecute:
		if err := f.Proc.Execute(); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateWriteback

	case StateWriteback:
		if err := f.Proc.WriteResults(); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateJumpResolve

	case StateJumpResolve:
		f.resolveJump()
		if f.Proc.Context().RequestsIdle {
			f.State = StateIdle
		} else {
			f.State = StatePrefetch
		}

	case StatePrefetch:
		if err := f.Proc.FetchNext(f.PC); err != nil {
			f.handleFault(err)
			return prev, err
		}
		f.State = StateIntCheck

	case StateError:
		// Stays put until Reset.
	}

	return prev, nil
}

// resolveJump implements JUMP_RESOLVE: PC advances per the retired
// unit's override (jumps, branches, BLWP, RTWP), or by
// 2 + the follow-on-word byte count otherwise.
func (f *Flow) resolveJump() {
	ctx := f.Proc.Context()
	if ctx.PCOverridden {
		f.PC = ctx.NewPC
	} else {
		f.PC = f.Proc.CurrentPC() + 2 + f.Proc.PCOffset()
	}
	if ctx.WPOverridden {
		f.WP = ctx.NewWP
	}
}

// serviceInterrupt performs INT_SERVICE's BLWP-like context switch:
// WP/PC for the serviced level are loaded from
// its vector (or the NMI vector), the interrupted WP/PC/status are
// saved into the new workspace's R13/R14/R15, the mask drops to
// level-1, and the interrupt is cleared (NMI is latched, not
// cleared, per hardware convention).
func (f *Flow) serviceInterrupt() {
	nmi := f.Interrupts.NMIPending()

	var newWP, newPC uint16
	if nmi {
		newWP = f.Mem.GetWord(0xFFFC)
		newPC = f.Mem.GetWord(0xFFFE)
	} else {
		level := f.pendingLevel
		newWP = f.Mem.GetWord(uint16(4 * level))
		newPC = f.Mem.GetWord(uint16(4*level + 2))
	}

	f.Mem.SetWord(execunit.RegisterAddr(newWP, 13), f.WP)
	f.Mem.SetWord(execunit.RegisterAddr(newWP, 14), f.PC)
	f.Mem.SetWord(execunit.RegisterAddr(newWP, 15), f.Status.Word())

	f.WP = newWP
	f.PC = newPC

	if !nmi {
		f.Status.SetMask(uint8(f.pendingLevel - 1))
		f.Interrupts.Clear(f.pendingLevel)
	}
}

// handleFault records a retirement-time error and moves to
// StateError, except for a MID-range word with interrupt 2 already
// pending, which is serviced instead of trapped.
func (f *Flow) handleFault(err error) {
	f.LastError = err

	switch err.(type) {
	case *instruction.MIDNotImplementedError:
		_ = f.Errors.Set(memstate.ErrorBitIllegalOp)
		if f.Interrupts.IsPending(2) {
			f.pendingLevel = 2
			f.State = StateIntService
			return
		}
		f.State = StateError
	case *instruction.IllegalOpcodeError:
		_ = f.Errors.Set(memstate.ErrorBitIllegalOp)
		f.State = StateError
	case *instruction.PrivilegeViolationError:
		_ = f.Errors.Set(memstate.ErrorBitPrivilege)
		f.State = StateError
	default:
		f.State = StateError
	}
}

// StepInstruction advances Step until the next WRITEBACK-then-PREFETCH
// boundary: the point where a retired instruction's follow-on PREFETCH
// has just completed.
// It returns the last state processed before that boundary (or before
// an error/idle condition stalls further progress).
func (f *Flow) StepInstruction() (State, error) {
	seenWriteback := false
	for i := 0; i < instructionStepBound; i++ {
		before := f.State
		prev, err := f.Step()
		if err != nil {
			return prev, err
		}
		if f.State == StateError {
			return prev, nil
		}
		if prev == StateWriteback {
			seenWriteback = true
		}
		if seenWriteback && prev == StatePrefetch {
			return prev, nil
		}
		if seenWriteback && prev == StateJumpResolve && f.State == StateIdle {
			// An IDLE instruction retired without a following PREFETCH.
			return prev, nil
		}
		if before == StateIdle && f.State == StateIdle {
			return prev, nil
		}
	}
	return f.State, fmt.Errorf("flow: step_instruction exceeded %d sub-steps without retiring an instruction", instructionStepBound)
}

// Run iterates StepInstruction up to limit times, stopping early on
// error or a trapped state.
func (f *Flow) Run(limit int) error {
	for i := 0; i < limit; i++ {
		if _, err := f.StepInstruction(); err != nil {
			return err
		}
		if f.State == StateError {
			return f.LastError
		}
	}
	return nil
}
