package catalog

import (
	"fmt"
	"strings"
)

// DisasmMemory is the minimal read-only interface the disassembler
// needs to pull an opcode word and any follow-on words it addresses.
type DisasmMemory interface {
	GetWord(addr uint16) uint16
}

// DisasmResult is one decoded instruction's textual rendering.
type DisasmResult struct {
	Mnemonic string
	Operands string
	Words    []uint16
	Length   int // bytes consumed, including every follow-on word
}

// Disassemble decodes the instruction at addr, reading any follow-on
// words it needs through mem, and renders its assembly-text form using
// the format's AsmParamOrder -- the same field order the assembler
// consumes operands in.
func Disassemble(cat *Catalog, mem DisasmMemory, addr uint16) (DisasmResult, error) {
	word := mem.GetWord(addr)
	op, ok := cat.LookupByOpcode(word)
	if !ok {
		if cat.OpcodeInMIDRange(word) {
			return DisasmResult{}, fmt.Errorf("catalog: %04X is a reserved MID range", word)
		}
		return DisasmResult{}, fmt.Errorf("catalog: %04X is not a cataloged opcode", word)
	}

	f := op.Format()
	words := []uint16{word}
	cursor := addr + 2
	if op.HasSecondOpcodeWord() {
		words = append(words, mem.GetWord(cursor))
		cursor += 2
	}
	packed := uint32(words[0]) << 16
	if len(words) > 1 {
		packed |= uint32(words[1])
	}
	get := func(name string) int {
		bit, ok := f.offset(name)
		if !ok {
			return 0
		}
		width := f.ParamWidth(name)
		shift := uint(32 - bit - width)
		mask := uint32(1)<<uint(width) - 1
		return int((packed >> shift) & mask)
	}

	var parts []string
	order := f.AsmParamOrder
	for i := 0; i < len(order); i++ {
		name := order[i]
		switch {
		case name == ParamDisp:
			disp := signExtend(get(ParamDisp), f.ParamWidth(ParamDisp))
			if op.Name == "SBO" || op.Name == "SBZ" || op.Name == "TB" {
				// CRU bit displacement, not a jump target.
				parts = append(parts, fmt.Sprintf("%d", disp))
				break
			}
			// Jump displacements (formats 2 and 17) render as a resolved
			// target address, matching the PC-relative formula
			// execunit/jump.go applies at run time: target = addr+2+2*disp.
			parts = append(parts, fmt.Sprintf(">%04X", uint16(int(addr)+2+2*disp)))

		case name == ImmediateWordParam:
			w := mem.GetWord(cursor)
			cursor += 2
			words = append(words, w)
			parts = append(parts, fmt.Sprintf(">%04X", w))

		case name == ParamTs && i+1 < len(order) && order[i+1] == ParamS:
			text, w, consumed := renderAddressOperand(get(ParamTs), get(ParamS), mem, &cursor)
			if consumed {
				words = append(words, w)
			}
			parts = append(parts, text)
			i++

		case name == ParamTd && i+1 < len(order) && order[i+1] == ParamD:
			text, w, consumed := renderAddressOperand(get(ParamTd), get(ParamD), mem, &cursor)
			if consumed {
				words = append(words, w)
			}
			parts = append(parts, text)
			i++

		default:
			parts = append(parts, renderPlainField(name, get(name)))
		}
	}

	return DisasmResult{
		Mnemonic: op.Name,
		Operands: strings.Join(parts, ","),
		Words:    words,
		Length:   2 * len(words),
	}, nil
}

// renderAddressOperand renders one Ts/S or Td/D pair in its
// addressing-mode syntax, pulling the follow-on address word through
// mem and advancing cursor when mode is symbolic/indexed.
func renderAddressOperand(mode, reg int, mem DisasmMemory, cursor *uint16) (text string, word uint16, consumed bool) {
	switch mode {
	case 0:
		return fmt.Sprintf("R%d", reg), 0, false
	case 1:
		return fmt.Sprintf("*R%d", reg), 0, false
	case 3:
		return fmt.Sprintf("*R%d+", reg), 0, false
	default:
		w := mem.GetWord(*cursor)
		*cursor += 2
		if reg == 0 {
			return fmt.Sprintf(">%04X", w), w, true
		}
		return fmt.Sprintf(">%04X(R%d)", w, reg), w, true
	}
}

// renderPlainField renders a single-field param: a register number for
// the fields that are always a register (S/D/W/CKPT used outside a
// Ts/Td pair), and plain decimal for narrow literal fields (shift/CRU
// counts, bit numbers, the map-file bit).
func renderPlainField(name string, value int) string {
	switch name {
	case ParamS, ParamD, ParamW, ParamCKPT:
		return fmt.Sprintf("R%d", value)
	default:
		return fmt.Sprintf("%d", value)
	}
}

// signExtend interprets the low width bits of v as a two's-complement
// signed integer.
func signExtend(v, width int) int {
	signBit := 1 << uint(width-1)
	v &= (1 << uint(width)) - 1
	if v&signBit != 0 {
		v -= 1 << uint(width)
	}
	return v
}
