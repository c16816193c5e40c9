package catalog

// This file is the opcode table: one entry per mnemonic, laid out on
// the real TMS9900/99105 opcode map. Base values are the hardware
// encodings (LI at >0200, A at >A000, JMP at >1000, ...); the 99105's
// two-word extended instructions sit in the low >0000->01FF block and
// the >0C00->0FFF block alongside the 99110 float set. Every slot not
// claimed by a mnemonic below is a declared MID gap.

// Status-bit names, matching the status register's named accessors.
const (
	FlagLGT = "L>"
	FlagAGT = "A>"
	FlagEQ  = "="
	FlagC   = "C"
	FlagO   = "O"
	FlagP   = "P"
)

func bits(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func mk(name, desc string, base uint16, size uint32, format int, privileged bool, platforms map[string]bool, touched ...string) *Opcode {
	f, ok := LookupFormat(format)
	if !ok {
		panic("catalog: bad format number for " + name)
	}
	return &Opcode{
		Name:                   name,
		ShortDescription:       desc,
		Base:                   base,
		LegalMax:               base + uint16(size-1),
		ArgStartBit:            f.OpcodeParamStartBit,
		FormatNumber:           format,
		Platforms:              platforms,
		PerformsPrivilegeCheck: privileged,
		TouchesStatusBits:      bits(touched...),
	}
}

// step returns base+n*size, used to lay mnemonics out within a
// format's opcode block.
func step(base uint16, n int, size uint32) uint16 {
	return base + uint16(uint32(n)*size)
}

var defaultOpcodes = buildOpcodes()

func buildOpcodes() []*Opcode {
	var ops []*Opcode

	// --- format 1: general two-operand, word and byte (>4000->FFFF) ----
	generalOps := []struct {
		name, desc string
		touched    []string
	}{
		{"SZC", "set zeros corresponding", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"SZCB", "set zeros corresponding, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagP}},
		{"S", "subtract", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"SB", "subtract, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO, FlagP}},
		{"C", "compare", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"CB", "compare, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagP}},
		{"A", "add", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"AB", "add, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO, FlagP}},
		{"MOV", "move", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"MOVB", "move, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagP}},
		{"SOC", "set ones corresponding", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"SOCB", "set ones corresponding, byte", []string{FlagLGT, FlagAGT, FlagEQ, FlagP}},
	}
	for i, g := range generalOps {
		ops = append(ops, mk(g.name, g.desc, step(0x4000, i, 0x1000), 0x1000, 1, false, allPlatforms, g.touched...))
	}

	// --- format 2: jump and CRU single bit (>1000->1FFF) ----------------
	jumps := []struct{ name, desc string }{
		{"JMP", "unconditional jump"},
		{"JLT", "jump if less than (arithmetic)"},
		{"JLE", "jump if less or equal (arithmetic)"},
		{"JEQ", "jump if equal"},
		{"JHE", "jump if higher or equal (logical)"},
		{"JGT", "jump if greater than (arithmetic)"},
		{"JNE", "jump if not equal"},
		{"JNC", "jump on no carry"},
		{"JOC", "jump on carry"},
		{"JNO", "jump on no overflow"},
		{"JL", "jump if lower (logical)"},
		{"JH", "jump if higher (logical)"},
		{"JOP", "jump on odd parity"},
	}
	for i, j := range jumps {
		ops = append(ops, mk(j.name, j.desc, step(0x1000, i, 0x100), 0x100, 2, false, allPlatforms))
	}
	ops = append(ops,
		mk("SBO", "set CRU bit to one", 0x1D00, 0x100, 2, false, allPlatforms),
		mk("SBZ", "set CRU bit to zero", 0x1E00, 0x100, 2, false, allPlatforms),
		mk("TB", "test CRU bit", 0x1F00, 0x100, 2, false, allPlatforms, FlagEQ),
	)

	// --- formats 3/9/4: logical, XOP/multiply/divide, CRU transfer ------
	ops = append(ops,
		mk("COC", "compare ones corresponding", 0x2000, 0x400, 3, false, allPlatforms, FlagEQ),
		mk("CZC", "compare zeros corresponding", 0x2400, 0x400, 3, false, allPlatforms, FlagEQ),
		mk("XOR", "exclusive or", 0x2800, 0x400, 3, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ),
		mk("XOP", "extended operation", 0x2C00, 0x400, 9, false, allPlatforms),
		mk("LDCR", "load communication register", 0x3000, 0x400, 4, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagP),
		mk("STCR", "store communication register", 0x3400, 0x400, 4, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagP),
		mk("MPY", "multiply", 0x3800, 0x400, 9, false, allPlatforms),
		mk("DIV", "divide", 0x3C00, 0x400, 9, false, allPlatforms, FlagO),
	)

	// --- format 5: shift (>0800->0BFF) ----------------------------------
	ops = append(ops,
		mk("SRA", "shift right arithmetic", 0x0800, 0x100, 5, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC),
		mk("SRL", "shift right logical", 0x0900, 0x100, 5, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC),
		mk("SLA", "shift left arithmetic", 0x0A00, 0x100, 5, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO),
		mk("SRC", "shift right circular", 0x0B00, 0x100, 5, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC),
	)

	// --- format 6: single operand (>0400->077F) --------------------------
	singleOps := []struct {
		name, desc string
		touched    []string
	}{
		{"BLWP", "branch and load workspace pointer", nil},
		{"B", "branch", nil},
		{"X", "execute operand as instruction", nil},
		{"CLR", "clear operand to zero", nil},
		{"NEG", "negate operand", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"INV", "invert operand", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"INC", "increment by one", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"INCT", "increment by two", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"DEC", "decrement by one", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"DECT", "decrement by two", []string{FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO}},
		{"BL", "branch and link", nil},
		{"SWPB", "swap bytes", nil},
		{"SETO", "set operand to ones", nil},
		{"ABS", "absolute value", []string{FlagLGT, FlagAGT, FlagEQ, FlagO}},
	}
	for i, s := range singleOps {
		ops = append(ops, mk(s.name, s.desc, step(0x0400, i, 0x40), 0x40, 6, false, allPlatforms, s.touched...))
	}

	// 99105 extensions sharing the format 6 shape.
	ops = append(ops,
		mk("BIND", "branch indirect", 0x0140, 0x40, 6, false, extendedPlatforms),
		mk("DIVS", "signed divide into R0/R1", 0x0180, 0x40, 6, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagO),
		mk("MPYS", "signed multiply into R0/R1", 0x01C0, 0x40, 6, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ),
	)

	// --- format 7: control, no operand (>0340->03FF) ----------------------
	noOps := []struct {
		name, desc string
		priv       bool
	}{
		{"IDLE", "halt until interrupt", true},
		{"RSET", "reset to interrupt mask zero", true},
		{"RTWP", "return with workspace pointer", false},
		{"CKON", "turn on clock interrupts", true},
		{"CKOF", "turn off clock interrupts", true},
		{"LREX", "load or restart under external instruction", true},
	}
	for i, n := range noOps {
		ops = append(ops, mk(n.name, n.desc, step(0x0340, i, 0x20), 0x20, 7, n.priv, allPlatforms))
	}

	// --- formats 8/18/10: immediate and single-register (>0200->033F) -----
	ops = append(ops,
		mk("LI", "load immediate", 0x0200, 0x20, 8, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ),
		mk("AI", "add immediate", 0x0220, 0x20, 8, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO),
		mk("ANDI", "and immediate", 0x0240, 0x20, 8, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ),
		mk("ORI", "or immediate", 0x0260, 0x20, 8, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ),
		mk("CI", "compare immediate", 0x0280, 0x20, 8, false, allPlatforms, FlagLGT, FlagAGT, FlagEQ),
		mk("STWP", "store workspace pointer", 0x02A0, 0x20, 18, false, allPlatforms),
		mk("STST", "store status register", 0x02C0, 0x20, 18, false, allPlatforms),
		mk("LWPI", "load workspace pointer immediate", 0x02E0, 0x20, 8, false, allPlatforms),
		mk("LIMI", "load interrupt mask immediate", 0x0300, 0x20, 8, true, allPlatforms),
		mk("LMF", "load map file", 0x0320, 0x20, 10, true, extendedPlatforms),
	)

	// 99105 single-register and link ops in the low block.
	ops = append(ops,
		mk("LST", "load status from register", 0x0080, 0x10, 18, true, extendedPlatforms),
		mk("LWP", "load workspace pointer from register", 0x0090, 0x10, 18, false, extendedPlatforms),
		mk("BLSK", "branch immediate, link to stack register", 0x00B0, 0x10, 8, false, extendedPlatforms),
	)

	// --- formats 11/13/19: two-word extended ops (>001C->002B) -------------
	ops = append(ops,
		mk("SRAM", "shift right arithmetic, multiple precision", 0x001C, 1, 13, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC),
		mk("SLAM", "shift left arithmetic, multiple precision", 0x001D, 1, 13, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO),
		mk("SM", "subtract, multiple precision", 0x0029, 1, 11, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO),
		mk("AM", "add, multiple precision", 0x002A, 1, 11, false, extendedPlatforms, FlagLGT, FlagAGT, FlagEQ, FlagC, FlagO),
		mk("MOVA", "move effective address", 0x002B, 1, 19, false, extendedPlatforms),
	)

	// --- formats 14/17 and the 990/12 field/list block (>0C08->0C16) -------
	ops = append(ops,
		mk("TMB", "test memory bit", 0x0C09, 1, 14, false, extendedPlatforms, FlagEQ),
		mk("TCMB", "test and clear memory bit", 0x0C0A, 1, 14, false, extendedPlatforms, FlagEQ),
		mk("TSMB", "test and set memory bit", 0x0C0B, 1, 14, false, extendedPlatforms, FlagEQ),
		mk("SRJ", "subtract from register and jump", 0x0C0C, 1, 17, false, extendedPlatforms),
		mk("ARJ", "add to register and jump", 0x0C0D, 1, 17, false, extendedPlatforms),
		mk("IOF", "invert order of field", 0x0C0E, 1, 15, false, tms99110Platforms, FlagLGT, FlagAGT, FlagEQ),
		mk("INSF", "insert field", 0x0C10, 1, 16, false, tms99110Platforms, FlagLGT, FlagAGT, FlagEQ),
		mk("XV", "extract value", 0x0C11, 1, 16, false, tms99110Platforms, FlagLGT, FlagAGT, FlagEQ),
		mk("XF", "extract field", 0x0C12, 1, 16, false, tms99110Platforms, FlagLGT, FlagAGT, FlagEQ),
		mk("SLSL", "search list, logical address", 0x0C14, 1, 20, false, tms99110Platforms, FlagEQ),
		mk("SLSP", "search list, mapped address", 0x0C15, 1, 20, false, tms99110Platforms, FlagEQ),
		mk("EP", "extend precision", 0x0C16, 1, 21, false, tms99110Platforms, FlagLGT, FlagAGT, FlagEQ),
	)

	// --- format 12: string instructions with checkpoint (>0E00->0E09) ------
	stringOps := []struct {
		name, desc string
		touched    []string
	}{
		{"MOVS", "move string", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"MVSR", "move string reversed", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"MVSK", "move string from stack", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"POPS", "pop string from stack", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"PSHS", "push string to stack", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"CS", "compare strings", []string{FlagLGT, FlagAGT, FlagEQ}},
		{"SEQB", "search string for equal byte", []string{FlagEQ}},
		{"SNEB", "search string for not-equal byte", []string{FlagEQ}},
		{"CRC", "cyclic redundancy check", []string{FlagEQ}},
		{"TS", "translate string", []string{FlagEQ}},
	}
	for i, s := range stringOps {
		ops = append(ops, mk(s.name, s.desc, step(0x0E00, i, 1), 1, 12, false, tms99110Platforms, s.touched...))
	}

	// --- 99110 float set: single-word ops on the format 6/7 shapes ---------
	// Arithmetic is deferred; the catalog carries them for
	// legality checks only.
	floatSingle := []struct{ name, desc string }{
		{"CRI", "convert real to integer"},
		{"CDI", "convert double to integer"},
		{"NEGR", "negate real"},
		{"NEGD", "negate double"},
		{"CRE", "convert real to extended integer"},
		{"CDE", "convert double to extended integer"},
		{"CER", "convert extended integer to real"},
		{"CED", "convert extended integer to double"},
	}
	for i, fo := range floatSingle {
		ops = append(ops, mk(fo.name, fo.desc, step(0x0C00, i, 1), 1, 7, false, tms99110Platforms))
	}
	floatOperand := []struct {
		name, desc string
		base       uint16
	}{
		{"AR", "add real", 0x0C40},
		{"CIR", "compare integer with real", 0x0C80},
		{"SR", "subtract real", 0x0CC0},
		{"MR", "multiply real", 0x0D00},
		{"DR", "divide real", 0x0D40},
		{"LR", "load real", 0x0D80},
		{"STR", "store real", 0x0DC0},
		{"AD", "add double", 0x0E40},
		{"CID", "compare integer with double", 0x0E80},
		{"SD", "subtract double", 0x0EC0},
		{"MD", "multiply double", 0x0F00},
		{"DD", "divide double", 0x0F40},
		{"LD", "load double", 0x0F80},
		{"STD", "store double", 0x0FC0},
	}
	for _, fo := range floatOperand {
		ops = append(ops, mk(fo.name, fo.desc, fo.base, 0x40, 6, false, tms99110Platforms))
	}

	return ops
}

// defaultMIDGaps are the opcode spans no catalog mnemonic claims:
// reserved for software-defined macro instructions (MID). These mirror the real 99105 MID areas in the low
// block, between the single-opcode extended entries, and below the
// format 6 block.
var defaultMIDGaps = []midRange{
	{0x0000, 0x001B},
	{0x001E, 0x0028},
	{0x002C, 0x007F},
	{0x00A0, 0x00AF},
	{0x00C0, 0x013F},
	{0x0780, 0x07FF},
	{0x0C08, 0x0C08},
	{0x0C0F, 0x0C0F},
	{0x0C13, 0x0C13},
	{0x0C17, 0x0C3F},
	{0x0E0A, 0x0E3F},
}

// Default is the fully populated TMS99105 opcode catalog.
var Default = NewCatalog(defaultOpcodes, defaultMIDGaps)

func init() {
	// Self-check: catalog ranges must be disjoint, and no MID gap may
	// shadow a defined opcode. This runs once at program start rather than being
	// re-verified by every caller of LookupByOpcode.
	ops := Default.All()
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			a, b := ops[i], ops[j]
			if a.Base <= b.LegalMax && b.Base <= a.LegalMax {
				panic("catalog: overlapping opcode ranges for " + a.Name + " and " + b.Name)
			}
		}
	}
	for _, g := range defaultMIDGaps {
		for _, o := range ops {
			if o.Base <= g.High && g.Low <= o.LegalMax {
				panic("catalog: MID gap overlaps opcode " + o.Name)
			}
		}
	}
}
