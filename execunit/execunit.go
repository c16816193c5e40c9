// Package execunit implements the per-instruction-family execution
// units: one handler per opcode family, each
// implementing the uniform four-phase contract ValidateOpcode,
// FetchOperands, Execute, WriteResults. Execution Process (package
// process) drives the phases in order; this package never reads
// memory or the PC on its own initiative outside those calls.
package execunit

import (
	"fmt"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/instruction"
	"github.com/cecapps/tms99105sim/memstate"
)

// Context is the mutable scratch space shared by a unit's four phases
// for a single instruction. Process constructs one per instruction and
// passes it to each phase in turn.
type Context struct {
	Mem    *memstate.Memory
	Status *memstate.StatusRegister
	WP     uint16
	PC     uint16 // PC at the start of this instruction, before any follow-on words
	Inst   *instruction.Instruction

	// ReturnAddr is the address of the word following this instruction's
	// full encoding (opcode word plus every follow-on word). Process
	// fills it in once operand fetch has consumed everything; BL, BLWP,
	// XOP, and BLSK use it as the link/return value.
	ReturnAddr uint16

	source Operand
	dest   Operand
	sourceVal uint16
	destVal   uint16
	result    uint16

	// PCOverridden and NewPC let a unit seize PC resolution away from
	// Flow's default PC += 2 + pc_offset: jumps,
	// branches, BLWP, and RTWP all set these.
	PCOverridden bool
	NewPC        uint16

	// WPOverridden and NewWP let a unit change the workspace pointer
	// directly (BLWP, RTWP, LWPI).
	WPOverridden bool
	NewWP        uint16

	// RequestsIdle is set by IDLE to tell Flow to transition to its
	// IDLE state after this instruction retires.
	RequestsIdle bool
}

// touches is shorthand for this context's opcode's declared
// status-bit side effects.
func (c *Context) touches() map[string]bool {
	return c.Inst.Opcode().TouchesStatusBits
}

// Unit is the uniform four-phase execution contract every family
// implements.
type Unit interface {
	// ValidateOpcode checks the working opcode and second word against
	// format-specific constraints beyond what instruction.CheckLegal
	// already covers (most units have nothing further to check).
	ValidateOpcode(c *Context) error
	// FetchOperands reads source/destination values from memory
	// according to Ts/S and Td/D.
	FetchOperands(c *Context) error
	// Execute performs the pure computation, updating only this unit's
	// private result slots and the status bits the catalog marks as
	// touched.
	Execute(c *Context) error
	// WriteResults commits results to memory or registers, including
	// any post-increment.
	WriteResults(c *Context) error
	// RequiresPrivilege reports whether Flow must check Priv before
	// Execute; it mirrors the opcode's PerformsPrivilegeCheck flag so a
	// unit can be asked directly without a catalog lookup.
	RequiresPrivilege() bool
}

// baseUnit supplies a no-op ValidateOpcode to families that have
// nothing beyond the catalog's own range/MID checks to validate.
type baseUnit struct{}

func (baseUnit) ValidateOpcode(*Context) error { return nil }

// privileged marks a unit as requiring Priv=1; embed it for any family
// whose mnemonics are privileged.
type privileged struct{}

func (privileged) RequiresPrivilege() bool { return true }

type unprivileged struct{}

func (unprivileged) RequiresPrivilege() bool { return false }

// ForMnemonic returns the execution unit handling mnemonic, per the
// family table in dispatch.go.
func ForMnemonic(cat *catalog.Catalog, mnemonic string) (Unit, error) {
	op, ok := cat.LookupByName(mnemonic)
	if !ok {
		return nil, fmt.Errorf("execunit: unknown mnemonic %q", mnemonic)
	}
	u, ok := dispatch[mnemonic]
	if !ok {
		return nil, fmt.Errorf("execunit: no execution unit registered for format %d mnemonic %s", op.FormatNumber, mnemonic)
	}
	return u, nil
}
