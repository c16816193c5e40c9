// Package instruction implements the mutable "opcode + params" object:
// it packs and unpacks named parameter
// fields into the 32-bit packed representation
// working_opcode<<16 | second_word, using bit offsets derived from the
// format table in catalog. This is the only layer above catalog that
// still talks about bit positions; everything above it names params by
// string.
package instruction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cecapps/tms99105sim/catalog"
)

// IllegalOpcodeError reports that a word matches neither a cataloged
// opcode nor a declared MID range.
type IllegalOpcodeError struct {
	Word uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("instruction: illegal opcode word %04X", e.Word)
}

// PrivilegeViolationError reports a privileged mnemonic executed with
// Priv=0.
type PrivilegeViolationError struct {
	Mnemonic string
}

func (e *PrivilegeViolationError) Error() string {
	return fmt.Sprintf("instruction: %s requires privileged mode", e.Mnemonic)
}

// MIDNotImplementedError reports an opcode word lying in a declared
// Macro-Instruction-Definition gap.
type MIDNotImplementedError struct {
	Word uint16
}

func (e *MIDNotImplementedError) Error() string {
	return fmt.Sprintf("instruction: opcode word %04X is a reserved MID range", e.Word)
}

// Instruction is a mutable opcode plus its parameter fields.
// Zero value is not usable; build one with NewByMnemonic or
// NewByOpcodeWord.
type Instruction struct {
	opcode     *catalog.Opcode
	working    uint16
	secondWord uint16

	immediateOperand    uint16
	hasImmediate        bool
	immediateSource      uint16
	hasImmediateSource   bool
	immediateDest        uint16
	hasImmediateDest     bool

	finalized bool
}

// NewByMnemonic starts building an Instruction for mnemonic, with the
// packed value set to the opcode's unparameterized base value.
func NewByMnemonic(cat *catalog.Catalog, mnemonic string) (*Instruction, error) {
	op, ok := cat.LookupByName(mnemonic)
	if !ok {
		return nil, fmt.Errorf("instruction: unknown mnemonic %q", mnemonic)
	}
	return &Instruction{opcode: op, working: op.Base}, nil
}

// NewByOpcodeWord decodes word against the catalog's opcode ranges. The
// match is exact within a range: the returned Instruction's working
// word is word itself, params still packed inside it.
func NewByOpcodeWord(cat *catalog.Catalog, word uint16) (*Instruction, error) {
	op, ok := cat.LookupByOpcode(word)
	if !ok {
		if cat.OpcodeInMIDRange(word) {
			return nil, &MIDNotImplementedError{Word: word}
		}
		return nil, &IllegalOpcodeError{Word: word}
	}
	return &Instruction{opcode: op, working: word}, nil
}

// Opcode returns the catalog entry this instruction was built from.
func (i *Instruction) Opcode() *catalog.Opcode { return i.opcode }

// Mnemonic is a convenience for Opcode().Name.
func (i *Instruction) Mnemonic() string { return i.opcode.Name }

// WorkingOpcode returns the first (and possibly only) instruction word.
func (i *Instruction) WorkingOpcode() uint16 { return i.working }

// SecondWord returns the second opcode word, valid only when the
// opcode's format requires one.
func (i *Instruction) SecondWord() uint16 { return i.secondWord }

// SetSecondWord stores the instruction's second opcode word. It is an
// error once the instruction is finalized.
func (i *Instruction) SetSecondWord(w uint16) error {
	if i.finalized {
		return fmt.Errorf("instruction: %s is finalized, cannot set second word", i.opcode.Name)
	}
	i.secondWord = w
	return nil
}

// ImmediateOperand returns the format-8 trailing immediate word and
// whether one has been set.
func (i *Instruction) ImmediateOperand() (uint16, bool) { return i.immediateOperand, i.hasImmediate }

// SetImmediateOperand stores the pseudo-param "_immediate_word_" value.
func (i *Instruction) SetImmediateOperand(v uint16) error {
	if i.finalized {
		return fmt.Errorf("instruction: %s is finalized, cannot set immediate operand", i.opcode.Name)
	}
	i.immediateOperand, i.hasImmediate = v, true
	return nil
}

// ImmediateSourceOperand returns the follow-on word supplying a
// symbolic/indexed source address, when Ts==2 dictated one is needed.
func (i *Instruction) ImmediateSourceOperand() (uint16, bool) {
	return i.immediateSource, i.hasImmediateSource
}

// SetImmediateSourceOperand stores the source address follow-on word.
func (i *Instruction) SetImmediateSourceOperand(v uint16) error {
	if i.finalized {
		return fmt.Errorf("instruction: %s is finalized, cannot set immediate source operand", i.opcode.Name)
	}
	i.immediateSource, i.hasImmediateSource = v, true
	return nil
}

// ImmediateDestOperand returns the follow-on word supplying a
// symbolic/indexed destination address.
func (i *Instruction) ImmediateDestOperand() (uint16, bool) {
	return i.immediateDest, i.hasImmediateDest
}

// SetImmediateDestOperand stores the destination address follow-on
// word.
func (i *Instruction) SetImmediateDestOperand(v uint16) error {
	if i.finalized {
		return fmt.Errorf("instruction: %s is finalized, cannot set immediate dest operand", i.opcode.Name)
	}
	i.immediateDest, i.hasImmediateDest = v, true
	return nil
}

// Finalized reports whether Finalize has been called.
func (i *Instruction) Finalized() bool { return i.finalized }

// Finalize locks the instruction: no further parameter write is
// allowed after this call.
func (i *Instruction) Finalize() { i.finalized = true }

// packed returns the 32-bit packed representation
// working_opcode<<16 | second_word.
func (i *Instruction) packed() uint32 {
	return uint32(i.working)<<16 | uint32(i.secondWord)
}

func (i *Instruction) setPacked(v uint32) {
	i.working = uint16(v >> 16)
	i.secondWord = uint16(v & 0xFFFF)
}

// paramBits returns the MSB-indexed starting bit (within the 32-bit
// packed value) and width of name within format f, by summing the
// widths of the params that precede it. This mirrors catalog's own
// private offset() calculation, using only the Format's exported
// fields -- the format table is still the one place bit geometry is
// declared, instruction is just the one place that walks it by name.
func paramBits(f *catalog.Format, name string) (bit int, width int, ok bool) {
	bit = f.OpcodeParamStartBit
	for _, p := range f.OpcodeParams {
		if p.Name == name {
			return bit, p.Width, true
		}
		bit += p.Width
	}
	return 0, 0, false
}

// GetParam reads the named field. The pseudo-param
// catalog.ImmediateWordParam reads the immediate operand instead of a
// packed bit field.
func (i *Instruction) GetParam(name string) (int, error) {
	if name == catalog.ImmediateWordParam {
		v, ok := i.ImmediateOperand()
		if !ok {
			return 0, fmt.Errorf("instruction: %s has no immediate operand set", i.opcode.Name)
		}
		return int(v), nil
	}
	f := i.opcode.Format()
	bit, width, ok := paramBits(f, name)
	if !ok {
		return 0, fmt.Errorf("instruction: format %d (%s) has no param %q", f.Number, f.Name, name)
	}
	shift := uint(32 - bit - width)
	mask := uint32(1)<<uint(width) - 1
	return int((i.packed() >> shift) & mask), nil
}

// SetParamInt writes value into the named field, masked to its bit
// width. It is an error to call this after Finalize, or to name a
// param this format doesn't have.
func (i *Instruction) SetParamInt(name string, value int) error {
	if i.finalized {
		return fmt.Errorf("instruction: %s is finalized, cannot set %q", i.opcode.Name, name)
	}
	if name == catalog.ImmediateWordParam {
		return i.SetImmediateOperand(uint16(value))
	}
	f := i.opcode.Format()
	bit, width, ok := paramBits(f, name)
	if !ok {
		return fmt.Errorf("instruction: format %d (%s) has no param %q", f.Number, f.Name, name)
	}
	shift := uint(32 - bit - width)
	mask := uint32(1)<<uint(width) - 1
	cleared := i.packed() &^ (mask << shift)
	i.setPacked(cleared | (uint32(value)&mask)<<shift)
	return nil
}

// SetParam parses value as a string and writes it to the named field.
// Integer strings support the prefixes ">", "0x", "0b", an optional
// leading "-", and an ignorable "R"/"WR" register-name prefix.
func (i *Instruction) SetParam(name string, value string) error {
	v, err := ParseParamValue(value)
	if err != nil {
		return err
	}
	return i.SetParamInt(name, v)
}

// ParseParamValue parses a parameter string: optional leading "-", optional ignorable "R"/"WR" register
// prefix, then an optional base prefix (">" or "0x" for hex, "0b" for
// binary), then digits.
func ParseParamValue(s string) (int, error) {
	orig := s
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "WR"):
		s = s[2:]
	case strings.HasPrefix(upper, "R"):
		s = s[1:]
	}

	base := 10
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, ">"):
		base = 16
		s = s[1:]
	case strings.HasPrefix(lower, "0x"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(lower, "0b"):
		base = 2
		s = s[2:]
	}

	if s == "" {
		return 0, fmt.Errorf("instruction: empty numeric param %q", orig)
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("instruction: invalid numeric param %q: %w", orig, err)
	}
	if neg {
		v = -v
	}
	return int(v), nil
}

// addressingModeSymbolicIndexed is the Ts/Td digit meaning "a follow-on
// word supplies the address".
const addressingModeSymbolicIndexed = 2

// HasImmediateSourceOperand reports whether Ts is currently set to the
// symbolic/indexed mode, meaning a follow-on word must supply the
// source address.
func (i *Instruction) HasImmediateSourceOperand() bool {
	if !i.opcode.Format().HasParam(catalog.ParamTs) {
		return false
	}
	v, err := i.GetParam(catalog.ParamTs)
	return err == nil && v == addressingModeSymbolicIndexed
}

// HasImmediateDestOperand reports the destination-side equivalent of
// HasImmediateSourceOperand, based on Td.
func (i *Instruction) HasImmediateDestOperand() bool {
	if !i.opcode.Format().HasParam(catalog.ParamTd) {
		return false
	}
	v, err := i.GetParam(catalog.ParamTd)
	return err == nil && v == addressingModeSymbolicIndexed
}

// CheckLegal implements the remaining legality rule once an
// Instruction has been successfully decoded: a privileged
// opcode executed with privBit false. The MID-range check happens
// earlier, at NewByOpcodeWord, since a MID-gap word never decodes to
// an Instruction in the first place; the catalog's base/legal-max
// range is the only recognized-sub-variant check this format family
// needs, so there is no deeper second-word table to consult here.
func (i *Instruction) CheckLegal(cat *catalog.Catalog, privBit bool) error {
	if i.opcode.PerformsPrivilegeCheck && !privBit {
		return &PrivilegeViolationError{Mnemonic: i.opcode.Name}
	}
	return nil
}
