// Package sim implements the Simulation façade: it wires
// memstate/flow/process/execunit/assembler together behind one owned
// value with no package-level mutable state.
package sim

import (
	"fmt"

	"github.com/cecapps/tms99105sim/assembler"
	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/execunit"
	"github.com/cecapps/tms99105sim/flow"
	"github.com/cecapps/tms99105sim/memstate"
)

// Simulation owns every piece of state one TMS99105 instance needs:
// memory, status register, interrupt list, error flags, and the Flow
// state machine built around them. Build one with New; it is not safe
// for concurrent use from more than one goroutine.
type Simulation struct {
	Catalog    *catalog.Catalog
	Mem        *memstate.Memory
	Status     *memstate.StatusRegister
	Interrupts *memstate.InterruptList
	Errors     *memstate.ErrorFlags
	Flow       *flow.Flow
	Stats      *Statistics

	platform string

	// DefaultCheckpoint seeds the assembler's format-12 checkpoint
	// fallback; negative leaves the assembler's own R10 default in
	// charge.
	DefaultCheckpoint int
}

// New builds a Simulation around the default opcode catalog, with
// fresh zeroed memory/status/interrupts/errors. Call Reset (and
// usually ResetInterruptVectors) before stepping.
func New() *Simulation {
	cat := catalog.Default
	mem := memstate.NewMemory()
	status := memstate.NewStatusRegister()
	interrupts := memstate.NewInterruptList()
	errs := memstate.NewErrorFlags()

	return &Simulation{
		Catalog:           cat,
		Mem:               mem,
		Status:            status,
		Interrupts:        interrupts,
		Errors:            errs,
		Flow:              flow.New(cat, mem, status, interrupts, errs),
		Stats:             NewStatistics(),
		platform:          catalog.Platform99105,
		DefaultCheckpoint: -1,
	}
}

// Platform returns the target platform tag instruction words are
// decoded against.
func (s *Simulation) Platform() string { return s.platform }

// SetPlatform retargets decoding: a cataloged opcode the platform does
// not implement becomes a MID trap at fetch.
func (s *Simulation) SetPlatform(platform string) {
	s.platform = platform
	s.Flow.Proc.SetPlatform(platform)
}

// Reset clears status/interrupts/errors/process state and loads WP/PC
// from the reset vector.
func (s *Simulation) Reset() {
	s.Flow.Reset()
}

// ResetInterruptVectors writes the default boot vectors (WP=0x0080,
// PC=0x0100) into every interrupt slot and the NMI vector.
func (s *Simulation) ResetInterruptVectors() {
	s.Flow.ResetInterruptVectors()
}

// LoadBytes copies image into memory starting at address 0.
func (s *Simulation) LoadBytes(image []byte) error {
	return s.Mem.LoadBytes(image)
}

// Step advances Flow by exactly one state and returns the state that
// was just processed.
func (s *Simulation) Step() (flow.State, error) {
	return s.Flow.Step()
}

// StepInstruction drives Flow through one full instruction retirement,
// recording the retired mnemonic in Stats. An instruction counts as
// retired once its own cycle completed, even when staging the next
// word faulted: the last state processed is then still PREFETCH (or
// JUMP_RESOLVE for a retiring IDLE).
func (s *Simulation) StepInstruction() (flow.State, error) {
	inst := s.Flow.Proc.CurrentInstruction()
	state, err := s.Flow.StepInstruction()
	if retired := s.Flow.Proc.CurrentInstruction(); retired != nil && retired != inst {
		if state == flow.StatePrefetch || state == flow.StateJumpResolve {
			s.Stats.Record(retired.Mnemonic())
		}
	}
	return state, err
}

// Run iterates StepInstruction up to limit times, stopping early on
// error or a trapped state, and reports how many instructions actually
// retired.
func (s *Simulation) Run(limit int) (int, error) {
	steps := 0
	for ; steps < limit; steps++ {
		if _, err := s.StepInstruction(); err != nil {
			return steps, err
		}
		if s.Flow.State == flow.StateError {
			return steps, s.Flow.LastError
		}
	}
	return steps, nil
}

// Assemble runs the assembler over source against this Simulation's
// catalog, returning the parsed lines, the resulting 64 KiB image, and
// any errors collected along the way.
func (s *Simulation) Assemble(source string) ([]*assembler.Line, []byte, []error) {
	a := assembler.New(s.Catalog)
	a.SetDefaultCheckpoint(s.DefaultCheckpoint)
	return a.Assemble(source)
}

// PC returns the program counter Flow will fetch from next.
func (s *Simulation) PC() uint16 { return s.Flow.PC }

// WP returns the current workspace pointer.
func (s *Simulation) WP() uint16 { return s.Flow.WP }

// StatusWord returns the raw 16-bit status register value.
func (s *Simulation) StatusWord() uint16 { return s.Status.Word() }

// Register reads workspace register n (0-15) relative to the current
// WP.
func (s *Simulation) Register(n int) uint16 {
	return s.Mem.GetWord(execunit.RegisterAddr(s.Flow.WP, n))
}

// MemoryImage returns a copy of the full 64 KiB byte buffer.
func (s *Simulation) MemoryImage() []byte { return s.Mem.Image() }

// CurrentInstructionLabel names the instruction currently mid-cycle, or
// "none" if Advance has never been called.
func (s *Simulation) CurrentInstructionLabel() string {
	cur := s.Flow.Proc.CurrentInstruction()
	if cur == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%04X)", cur.Mnemonic(), cur.WorkingOpcode())
}

// NextInstructionLabel names the instruction staged by the most recent
// PREFETCH, or "none" if FetchNext has not been called since the last
// Advance.
func (s *Simulation) NextInstructionLabel() string {
	next := s.Flow.Proc.NextInstruction()
	if next == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%04X)", next.Mnemonic(), next.WorkingOpcode())
}
