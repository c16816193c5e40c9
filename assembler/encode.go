package assembler

import (
	"fmt"
	"strings"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/instruction"
)

// singleImmediateOnly names the two format-8 mnemonics whose assembly
// text carries just the immediate value, no register operand: LWPI and
// LIMI write only the workspace pointer / interrupt mask, and the W
// field format 8 otherwise uses for a register address goes unread at
// execution (see execunit/immediate.go), so the assembler packs it as
// 0.
var singleImmediateOnly = map[string]bool{
	"LWPI": true,
	"LIMI": true,
}

// cruBitMnemonics are the format-2 entries whose disp field is a CRU
// bit displacement rather than a PC-relative jump target.
var cruBitMnemonics = map[string]bool{
	"SBO": true,
	"SBZ": true,
	"TB":  true,
}

// slot is one operand position an instruction's assembly text fills,
// derived from a Format's AsmParamOrder: either a Ts/Td+register
// addressing pair, or a single plain field (including the
// ImmediateWordParam pseudo-field, since Instruction.SetParamInt
// already redirects that name to SetImmediateOperand).
type slot struct {
	isAddr     bool
	modeParam  string
	regParam   string
	plainParam string
}

// formatSlots walks f.AsmParamOrder once, pairing up a Ts/Td entry with
// the register entry that immediately follows it into one addressing
// slot, per catalog/format.go's packing convention.
func formatSlots(f *catalog.Format) []slot {
	order := f.AsmParamOrder
	slots := make([]slot, 0, len(order))
	for i := 0; i < len(order); i++ {
		name := order[i]
		if name == catalog.ParamTs && i+1 < len(order) && order[i+1] == catalog.ParamS {
			slots = append(slots, slot{isAddr: true, modeParam: catalog.ParamTs, regParam: catalog.ParamS})
			i++
			continue
		}
		if name == catalog.ParamTd && i+1 < len(order) && order[i+1] == catalog.ParamD {
			slots = append(slots, slot{isAddr: true, modeParam: catalog.ParamTd, regParam: catalog.ParamD})
			i++
			continue
		}
		slots = append(slots, slot{plainParam: name})
	}
	return slots
}

// encodeOperands fills inst's fields from operands, the line's parsed
// parameters (already macro/DFOP-expanded by the caller). curAddr
// (ln.Address) anchors "$" and jump-displacement arithmetic.
func (a *Assembler) encodeOperands(inst *instruction.Instruction, ln *Line, op *catalog.Opcode, operands []Param) error {
	f := op.Format()
	mnemonic := op.Name
	curAddr := ln.Address

	if singleImmediateOnly[mnemonic] {
		if len(operands) != 1 {
			return &ParseError{Line: ln.Number, Reason: mnemonic + " takes exactly one operand"}
		}
		if err := inst.SetParamInt(catalog.ParamW, 0); err != nil {
			return err
		}
		v, err := a.resolveNumeric(operands[0], curAddr, ln.Number)
		if err != nil {
			return err
		}
		return inst.SetImmediateOperand(uint16(v))
	}

	slots := formatSlots(f)

	// Format 12's checkpoint register is optional in assembly text,
	// defaulting to the CKPT PI's declared register, or R10.
	if f.Number == 12 && len(operands) == len(slots)-1 {
		operands = append(operands, Param{Kind: ParamRegister, Raw: a.defaultCheckpointText()})
	}

	if len(operands) != len(slots) {
		return &ParseError{Line: ln.Number, Reason: fmt.Sprintf("%s expects %d operand(s), got %d", mnemonic, len(slots), len(operands))}
	}

	for idx, sl := range slots {
		p := operands[idx]
		if sl.isAddr {
			if err := a.encodeAddressSlot(inst, sl.modeParam, sl.regParam, p, curAddr, ln.Number); err != nil {
				return err
			}
			continue
		}
		if sl.plainParam == catalog.ParamDisp {
			if cruBitMnemonics[mnemonic] {
				// SBO/SBZ/TB share the format-2 disp field but take a
				// signed CRU bit displacement, not a jump target.
				v, err := a.resolveNumeric(p, curAddr, ln.Number)
				if err != nil {
					return err
				}
				if v > 0x7FFF {
					v -= 0x10000
				}
				if v < -128 || v > 127 {
					return &NumericOverflowError{Line: ln.Number, Value: int64(v), Max: 127}
				}
				if err := inst.SetParamInt(catalog.ParamDisp, v); err != nil {
					return err
				}
				continue
			}
			if err := a.encodeJumpSlot(inst, p, ln); err != nil {
				return err
			}
			continue
		}
		v, err := a.resolveNumeric(p, curAddr, ln.Number)
		if err != nil {
			return err
		}
		if err := inst.SetParamInt(sl.plainParam, v); err != nil {
			return err
		}
	}
	return nil
}

// encodeJumpSlot computes a PC-relative displacement for the disp field
// of formats 2 and 17, matching the exact formula execunit/jump.go and
// the alter-register-jump unit use at run time:
// NewPC = PC_at_fetch + 2 + 2*disp.
func (a *Assembler) encodeJumpSlot(inst *instruction.Instruction, p Param, ln *Line) error {
	target, err := a.resolveExpr(p.Raw, ln.Address, ln.Number)
	if err != nil {
		return err
	}
	delta := int(target) - int(ln.Address) - 2
	if delta%2 != 0 {
		return &JumpOutOfRangeError{Line: ln.Number, Delta: delta}
	}
	d := delta / 2
	if d < -128 || d > 127 {
		return &JumpOutOfRangeError{Line: ln.Number, Delta: d}
	}
	return inst.SetParamInt(catalog.ParamDisp, d)
}

// encodeAddressSlot fills one Ts/S or Td/D addressing pair, and its
// follow-on address word when the chosen mode is symbolic/indexed
// (mode 2).
func (a *Assembler) encodeAddressSlot(inst *instruction.Instruction, modeParam, regParam string, p Param, curAddr uint16, line int) error {
	mode, regText, addrText, err := operandAddressParts(p)
	if err != nil {
		return &ParseError{Line: line, Reason: err.Error()}
	}
	regVal, err := a.resolveExpr(regText, curAddr, line)
	if err != nil {
		return err
	}
	if regVal > 15 {
		return &NumericOverflowError{Line: line, Value: int64(regVal), Max: 15}
	}
	if err := inst.SetParamInt(modeParam, mode); err != nil {
		return err
	}
	if err := inst.SetParamInt(regParam, int(regVal)); err != nil {
		return err
	}
	if mode != 2 {
		return nil
	}
	addr, err := a.resolveExpr(addrText, curAddr, line)
	if err != nil {
		return err
	}
	if modeParam == catalog.ParamTs {
		return inst.SetImmediateSourceOperand(addr)
	}
	return inst.SetImmediateDestOperand(addr)
}

// operandAddressParts classifies one parsed Param into an addressing
// mode (0=register direct, 1=register indirect, 2=symbolic/indexed,
// 3=register indirect post-increment), the register text, and -- for
// mode 2 -- the address expression text.
func operandAddressParts(p Param) (mode int, regText string, addrText string, err error) {
	switch p.Kind {
	case ParamRegister, ParamNumber:
		return 0, p.Raw, "", nil
	case ParamIndexed:
		return 2, p.Index, p.Addr, nil
	case ParamSymbolic:
		return 2, "0", p.Addr, nil
	case ParamUnknown:
		if strings.HasPrefix(p.Raw, "*") {
			m := 1
			if strings.HasSuffix(p.Raw, "+") {
				m = 3
			}
			return m, p.Addr, "", nil
		}
	}
	return 0, "", "", fmt.Errorf("operand %q is not a valid addressing-mode operand", p.Raw)
}

// resolveNumeric evaluates a plain (non-addressing) operand slot's
// value: a literal, a register number, or a symbol/"$" expression.
func (a *Assembler) resolveNumeric(p Param, curAddr uint16, line int) (int, error) {
	v, err := a.resolveExpr(p.Raw, curAddr, line)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// instructionWords serializes a finalized Instruction into its full
// word sequence: the opcode word, the second opcode word if the format
// carries one, then any immediate/indexed-source/indexed-dest follow-on
// words, in that fixed order.
func instructionWords(inst *instruction.Instruction) []uint16 {
	words := []uint16{inst.WorkingOpcode()}
	if inst.Opcode().HasSecondOpcodeWord() {
		words = append(words, inst.SecondWord())
	}
	if v, ok := inst.ImmediateOperand(); ok {
		words = append(words, v)
	}
	if v, ok := inst.ImmediateSourceOperand(); ok {
		words = append(words, v)
	}
	if v, ok := inst.ImmediateDestOperand(); ok {
		words = append(words, v)
	}
	return words
}
