// Package assembler implements a two-effective-pass assembler: a line
// parser (pass1.go), a location-counter walk and per-line emission
// (pass2.go), an assign-symbol resolution loop (assembler.go), and
// operand/instruction encoding (encode.go) that
// lowers TI-style assembly source into a byte image sized to fill
// simulated memory.
package assembler

import (
	"fmt"
	"strings"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/cecapps/tms99105sim/instruction"
	"github.com/cecapps/tms99105sim/memstate"
)

// Assembler holds all state for one assembly run: the parsed lines, the
// symbol table, the segments emitted into, and any DFOP/DXOP/CKPT
// declarations collected along the way. Build a fresh Assembler per
// source text; it is not reusable across runs.
type Assembler struct {
	Catalog  *catalog.Catalog
	Symbols  *SymbolTable
	Segments []*Segment
	Lines    []*Line
	Errors   []error
	Warnings []string

	dfopAlias         map[string]string
	dxopAlias         map[string]int
	defaultCheckpoint int // -1 until a CKPT PI sets one; falls back to R10
}

// New builds an Assembler around cat, ready to run Assemble.
func New(cat *catalog.Catalog) *Assembler {
	return &Assembler{
		Catalog:           cat,
		Symbols:           NewSymbolTable(),
		dfopAlias:         make(map[string]string),
		dxopAlias:         make(map[string]int),
		defaultCheckpoint: -1,
	}
}

// Assemble runs the whole pipeline over source and returns the parsed
// lines (useful for a listing), the resulting 64 KiB byte image, and
// any errors collected along the way. Errors never abort the pipeline
// early; the caller gets partial results alongside them.
func Assemble(cat *catalog.Catalog, source string) ([]*Line, []byte, []error) {
	return New(cat).Assemble(source)
}

// Assemble runs the pipeline on a caller-built Assembler, leaving the
// symbol table, segments, and any Warnings inspectable afterward.
func (a *Assembler) Assemble(source string) ([]*Line, []byte, []error) {
	a.Lines = ParseLines(source)
	a.downgradeUnsupportedPIs()
	a.registerAssignSymbols()
	// First resolution pass settles EQU chains over plain literals so
	// the location-counter walk can evaluate PI operands; the second,
	// strict pass picks up EQUs that reference labels the walk has now
	// bound.
	a.resolveAssignSymbols(false)
	a.walkLocationCounter()
	a.resolveAssignSymbols(true)
	a.emit()
	return a.Lines, a.buildImage(), a.Errors
}

// downgradeUnsupportedPIs turns any line using a directive from the
// unsupportedPIs list into a comment, recording a warning rather than
// an error.
func (a *Assembler) downgradeUnsupportedPIs() {
	for _, ln := range a.Lines {
		if ln.Kind == LineInstruction && unsupportedPIs[ln.Mnemonic] {
			ln.Kind = LineComment
			a.Warnings = append(a.Warnings,
				fmt.Sprintf("line %d: unsupported directive %s ignored", ln.Number, ln.Mnemonic))
		}
	}
}

// SetDefaultCheckpoint seeds the checkpoint register used by format-12
// instructions that omit one, ahead of any CKPT directive in the
// source itself (the host config's default_checkpoint setting).
func (a *Assembler) SetDefaultCheckpoint(n int) {
	if n >= 0 && n <= 15 {
		a.defaultCheckpoint = n
	}
}

func (a *Assembler) defaultCheckpointRegister() int {
	if a.defaultCheckpoint >= 0 {
		return a.defaultCheckpoint
	}
	return 10
}

func (a *Assembler) defaultCheckpointText() string {
	return fmt.Sprintf("R%d", a.defaultCheckpointRegister())
}

// buildImage places every segment's accumulated bytes at its starting
// point in a fresh 64 KiB buffer. A DORG segment parses but
// contributes no bytes.
func (a *Assembler) buildImage() []byte {
	img := make([]byte, memstate.Size)
	for _, seg := range a.Segments {
		if seg.Kind == SegmentDORG {
			continue
		}
		addr := int(seg.StartingPoint)
		for _, chunk := range seg.Chunks {
			for _, b := range chunk.Bytes {
				if addr >= 0 && addr < len(img) {
					img[addr] = b
				}
				addr++
			}
		}
	}
	return img
}

// registerAssignSymbols scans for EQU/DFOP/DXOP/CKPT lines and records
// their symbols (EQU's expression is resolved later, by
// resolveAssignSymbols; DFOP/DXOP/CKPT resolve immediately since their
// operands are plain literals).
func (a *Assembler) registerAssignSymbols() {
	for _, ln := range a.Lines {
		if ln.Kind != LinePI {
			continue
		}
		switch ln.Mnemonic {
		case PIEQU:
			a.registerEQU(ln)
		case PIDFOP:
			a.registerDFOP(ln)
		case PIDXOP:
			a.registerDXOP(ln)
		case PICKPT:
			a.registerCKPT(ln)
		}
	}
}

func (a *Assembler) registerEQU(ln *Line) {
	if ln.Label == "" || len(ln.Params) != 1 {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "EQU requires a label and exactly one operand"})
		return
	}
	sym, err := a.Symbols.Define(ln.Label, SymbolAssign, ln.Number)
	if err != nil {
		a.Errors = append(a.Errors, err)
		return
	}
	sym.Params = []string{ln.Params[0].Raw}
}

func (a *Assembler) registerDFOP(ln *Line) {
	if ln.Label == "" || len(ln.Params) != 1 {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "DFOP requires a label and one target mnemonic"})
		return
	}
	target := strings.ToUpper(ln.Params[0].Raw)
	sym, err := a.Symbols.Define(ln.Label, SymbolAssign, ln.Number)
	if err != nil {
		a.Errors = append(a.Errors, err)
		return
	}
	sym.Params = []string{target}
	sym.Value, sym.ValueAssigned = 0, true
	a.dfopAlias[ln.Label] = target
}

func (a *Assembler) registerDXOP(ln *Line) {
	if ln.Label == "" || len(ln.Params) != 1 {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "DXOP requires a label and one vector number"})
		return
	}
	sym, err := a.Symbols.Define(ln.Label, SymbolAssign, ln.Number)
	if err != nil {
		a.Errors = append(a.Errors, err)
		return
	}
	n, perr := instruction.ParseParamValue(ln.Params[0].Raw)
	if perr != nil {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "DXOP vector number: " + perr.Error()})
		return
	}
	sym.Value, sym.ValueAssigned = uint16(n), true
	a.dxopAlias[ln.Label] = n
}

func (a *Assembler) registerCKPT(ln *Line) {
	if len(ln.Params) != 1 {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "CKPT requires exactly one operand"})
		return
	}
	n, err := instruction.ParseParamValue(ln.Params[0].Raw)
	if err != nil {
		a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "CKPT register: " + err.Error()})
		return
	}
	a.defaultCheckpoint = n
}

// resolveAssignSymbols resolves every EQU symbol's expression,
// iterating up to 10*line-count times to let forward references among
// EQU symbols settle. When strict, a symbol still
// unresolved after the budget is a fatal, reported
// UnresolvedSymbolError; the lenient pre-walk pass leaves it pending
// for the strict pass to retry once labels have addresses.
func (a *Assembler) resolveAssignSymbols(strict bool) {
	pending := make(map[string]*Symbol)
	for _, sym := range a.Symbols.All() {
		if sym.Kind == SymbolAssign && !sym.ValueAssigned && len(sym.Params) == 1 {
			pending[sym.Name] = sym
		}
	}
	if len(pending) == 0 {
		return
	}
	limit := 10 * len(a.Lines)
	if limit == 0 {
		limit = 10
	}
	for i := 0; i < limit && len(pending) > 0; i++ {
		progressed := false
		for name, sym := range pending {
			v, err := a.resolveExpr(sym.Params[0], 0, sym.Line)
			if err != nil {
				continue
			}
			sym.Value, sym.ValueAssigned = v, true
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			break
		}
	}
	if !strict {
		return
	}
	for _, sym := range pending {
		a.Errors = append(a.Errors, &UnresolvedSymbolError{Line: sym.Line, Name: sym.Name})
		sym.Value, sym.ValueAssigned = 0, true
	}
}

// resolveExpr evaluates an operand expression: a plain numeric/register
// literal (per instruction.ParseParamValue's grammar), the pseudo-symbol
// "$" meaning the current location counter, a defined symbol, or either
// of those plus/minus a literal offset (covering the NOP macro's "$+2"
// and ordinary "SYMBOL+N" addressing).
func (a *Assembler) resolveExpr(expr string, curAddr uint16, line int) (uint16, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, &ParseError{Line: line, Reason: "empty operand"}
	}
	if v, err := instruction.ParseParamValue(expr); err == nil {
		return uint16(v), nil
	}

	sign, splitIdx := 0, -1
	for i := 1; i < len(expr); i++ {
		switch expr[i] {
		case '+':
			sign, splitIdx = 1, i
		case '-':
			sign, splitIdx = -1, i
		}
		if splitIdx >= 0 {
			break
		}
	}

	base, offset := expr, 0
	if splitIdx >= 0 {
		base = expr[:splitIdx]
		n, err := instruction.ParseParamValue(expr[splitIdx+1:])
		if err != nil {
			return 0, &ParseError{Line: line, Reason: fmt.Sprintf("bad offset in %q", expr)}
		}
		offset = sign * n
	}

	var baseVal uint16
	switch base {
	case "$":
		baseVal = curAddr
	default:
		v, ok := a.Symbols.Resolve(base)
		if !ok {
			return 0, &UnresolvedSymbolError{Line: line, Name: base}
		}
		baseVal = v
	}
	return uint16(int(baseVal) + offset), nil
}
