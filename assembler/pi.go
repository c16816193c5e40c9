package assembler

// PI names recognized by the assembler.
const (
	PIAORG = "AORG"
	PIDORG = "DORG"
	PIBSS  = "BSS"
	PIBES  = "BES"
	PIEVEN = "EVEN"
	PIEND  = "END"
	PIPSEG = "PSEG"
	PIPEND = "PEND"
	PIDSEG = "DSEG"
	PIDEND = "DEND"
	PICSEG = "CSEG"
	PICEND = "CEND"
	PIBYTE = "BYTE"
	PIDATA = "DATA"
	PITEXT = "TEXT"
	PIEQU  = "EQU"
	PICKPT = "CKPT"
	PIDFOP = "DFOP"
	PIDXOP = "DXOP"
)

// recognizedPIs is the full set consulted when classifying a mnemonic
// as a PI rather than an opcode.
var recognizedPIs = map[string]bool{
	PIAORG: true, PIDORG: true, PIBSS: true, PIBES: true, PIEVEN: true,
	PIEND: true, PIPSEG: true, PIPEND: true, PIDSEG: true, PIDEND: true,
	PICSEG: true, PICEND: true, PIBYTE: true, PIDATA: true, PITEXT: true,
	PIEQU: true, PICKPT: true, PIDFOP: true, PIDXOP: true,
}

// unsupportedPIs are directives the TI assemblers define but this one
// does not implement: a line using one is downgraded to a comment with
// a warning rather than rejected.
var unsupportedPIs = map[string]bool{
	"IDT": true, "RORG": true, "DEF": true, "REF": true, "SREF": true,
	"LOAD": true, "COPY": true, "LIST": true, "UNL": true, "PAGE": true,
	"TITL": true, "OPTION": true, "ASMIF": true, "ASMELS": true, "ASMEND": true,
}

// segmentStartPIs maps the PIs that open a new segment to its Kind.
var segmentStartPIs = map[string]SegmentKind{
	PIPSEG: SegmentPSEG,
	PIDSEG: SegmentDSEG,
	PICSEG: SegmentCSEG,
	PIAORG: SegmentAORG,
	PIDORG: SegmentDORG,
}

// segmentEndPIs lists the PIs that close the current segment
// (PEND/DEND/CEND, AORG, DORG, END).
var segmentEndPIs = map[string]bool{
	PIPEND: true, PIDEND: true, PICEND: true,
	PIAORG: true, PIDORG: true, PIEND: true,
}

// macroMnemonics maps the two fixed assembler macros to the
// mnemonic/operand text they expand into.
var macroMnemonics = map[string]struct {
	mnemonic string
	operands string
}{
	"NOP": {"JMP", "$+2"},
	"RT":  {"B", "*R11"},
}
