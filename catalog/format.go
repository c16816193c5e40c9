// Package catalog holds the static tables that describe every TMS99105
// instruction format and mnemonic: the format table (this file) and the
// opcode catalog (opcode.go, catalog_data.go).
package catalog

// Param names out of the 21 format descriptors. These are the only
// strings higher layers (Instruction, Execution Units, the assembler)
// use to address bit fields; the format table is the one place that
// knows where a given name actually lives in the packed instruction
// word(s).
const (
	ParamTs   = "Ts"   // source addressing mode (2 bits)
	ParamS    = "S"    // source register (4 bits)
	ParamTd   = "Td"   // destination addressing mode (2 bits)
	ParamD    = "D"    // destination register, or the XOP vector number in format 9
	ParamC    = "C"    // shift/CRU/bit count (4 bits)
	ParamW    = "W"    // plain register operand (4 bits)
	ParamDisp = "disp" // signed displacement in words (8 bits)
	ParamCKPT = "CKPT" // checkpoint register for interruptible string ops
	ParamM    = "m"    // map-file select bit (format 10)

	// ImmediateWordParam is the pseudo-param name used in asm_param_order
	// to mean "read/write a following 16-bit immediate operand". It
	// never appears in opcode_params: it has no bit
	// position of its own and is resolved through Instruction's
	// ImmediateOperand field instead.
	ImmediateWordParam = "_immediate_word_"
)

// Param describes one named bit field within a format: its width in
// bits, in the order it's packed starting from the format's
// OpcodeParamStartBit.
type Param struct {
	Name  string
	Width int
}

// Format is one of the 21 instruction shapes. OpcodeParams lists, in
// packing order, every bit field that lives in the opcode word(s)
// starting at OpcodeParamStartBit (an MSB-indexed bit offset into the
// 32-bit packed representation working_opcode<<16 | second_word; an
// offset of 16 or more places the field in the second opcode word).
// AsmParamOrder lists the order fields are read from, or written to,
// assembly text; it may include ImmediateWordParam for formats that
// also consume a following 16-bit immediate operand.
type Format struct {
	Number              int
	Name                string
	OpcodeParamStartBit int
	OpcodeParams        []Param
	AsmParamOrder       []string
}

// ParamWidth returns the bit width of the named param in this format,
// or 0 if the format has no such param.
func (f *Format) ParamWidth(name string) int {
	for _, p := range f.OpcodeParams {
		if p.Name == name {
			return p.Width
		}
	}
	return 0
}

// HasParam reports whether the format packs the named bit field.
func (f *Format) HasParam(name string) bool {
	return f.ParamWidth(name) > 0
}

// offset returns the MSB-indexed starting bit of the named param within
// the 32-bit packed representation, by summing the widths of the
// params that precede it.
func (f *Format) offset(name string) (int, bool) {
	bit := f.OpcodeParamStartBit
	for _, p := range f.OpcodeParams {
		if p.Name == name {
			return bit, true
		}
		bit += p.Width
	}
	return 0, false
}

// formats is indexed by format number - 1, following the 990-family
// format numbering the TMS99105 data manual uses. Packing order is the
// hardware bit order (destination fields above source fields in the
// single-word formats); AsmParamOrder is the source-first order the
// assembly text reads. Formats 11-21 are the two-word extended shapes
// whose param fields live in the second opcode word, except format 18,
// the declared single-word exception.
var formats = [21]Format{
	{
		Number: 1, Name: "general",
		OpcodeParamStartBit: 4,
		OpcodeParams:        []Param{{ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD},
	},
	{
		Number: 2, Name: "jump",
		OpcodeParamStartBit: 8,
		OpcodeParams:        []Param{{ParamDisp, 8}},
		AsmParamOrder:       []string{ParamDisp},
	},
	{
		Number: 3, Name: "logical-dest-register",
		OpcodeParamStartBit: 6,
		OpcodeParams:        []Param{{ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamD},
	},
	{
		Number: 4, Name: "cru-multi-bit",
		OpcodeParamStartBit: 6,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamC},
	},
	{
		Number: 5, Name: "shift",
		OpcodeParamStartBit: 8,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamW, 4}},
		AsmParamOrder:       []string{ParamW, ParamC},
	},
	{
		Number: 6, Name: "single-operand",
		OpcodeParamStartBit: 10,
		OpcodeParams:        []Param{{ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS},
	},
	{
		Number: 7, Name: "control",
		OpcodeParamStartBit: 16,
		OpcodeParams:        nil,
		AsmParamOrder:       nil,
	},
	{
		Number: 8, Name: "immediate",
		OpcodeParamStartBit: 12,
		OpcodeParams:        []Param{{ParamW, 4}},
		AsmParamOrder:       []string{ParamW, ImmediateWordParam},
	},
	{
		Number: 9, Name: "xop-muldiv",
		OpcodeParamStartBit: 6,
		OpcodeParams:        []Param{{ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamD},
	},
	{
		Number: 10, Name: "map-file",
		OpcodeParamStartBit: 11,
		OpcodeParams:        []Param{{ParamM, 1}, {ParamW, 4}},
		AsmParamOrder:       []string{ParamW, ParamM},
	},
	{
		Number: 11, Name: "multiple-precision",
		OpcodeParamStartBit: 20,
		OpcodeParams:        []Param{{ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD},
	},
	{
		Number: 12, Name: "string-checkpoint",
		OpcodeParamStartBit: 16,
		OpcodeParams:        []Param{{ParamCKPT, 4}, {ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD, ParamCKPT},
	},
	{
		Number: 13, Name: "multiple-precision-shift",
		OpcodeParamStartBit: 22,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamC},
	},
	{
		Number: 14, Name: "bit-test",
		OpcodeParamStartBit: 22,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamC},
	},
	{
		Number: 15, Name: "invert-field",
		OpcodeParamStartBit: 22,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamC},
	},
	{
		Number: 16, Name: "field-move",
		OpcodeParamStartBit: 16,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD, ParamC},
	},
	{
		Number: 17, Name: "alter-register-jump",
		OpcodeParamStartBit: 16,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamW, 4}, {ParamDisp, 8}},
		AsmParamOrder:       []string{ParamC, ParamW, ParamDisp},
	},
	{
		Number: 18, Name: "single-register",
		OpcodeParamStartBit: 12,
		OpcodeParams:        []Param{{ParamW, 4}},
		AsmParamOrder:       []string{ParamW},
	},
	{
		Number: 19, Name: "move-address",
		OpcodeParamStartBit: 20,
		OpcodeParams:        []Param{{ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD},
	},
	{
		Number: 20, Name: "list-search",
		OpcodeParamStartBit: 16,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD, ParamC},
	},
	{
		Number: 21, Name: "extend-precision",
		OpcodeParamStartBit: 16,
		OpcodeParams:        []Param{{ParamC, 4}, {ParamTd, 2}, {ParamD, 4}, {ParamTs, 2}, {ParamS, 4}},
		AsmParamOrder:       []string{ParamTs, ParamS, ParamTd, ParamD, ParamC},
	},
}

// LookupFormat returns the format descriptor for number n (1..21), or
// nil and false if n is out of range.
func LookupFormat(n int) (*Format, bool) {
	if n < 1 || n > len(formats) {
		return nil, false
	}
	return &formats[n-1], true
}

// NumFormats is the fixed count of defined formats.
const NumFormats = 21
