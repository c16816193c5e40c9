package assembler

import (
	"fmt"

	"github.com/cecapps/tms99105sim/instruction"
)

// resolveMacro expands NOP/RT into their canonical JMP/B forms. ok is
// false for any other mnemonic.
func (a *Assembler) resolveMacro(ln *Line) (mnemonic string, params []Param, ok bool) {
	m, found := macroMnemonics[ln.Mnemonic]
	if !found {
		return ln.Mnemonic, ln.Params, false
	}
	return m.mnemonic, []Param{classifyParam(m.operands)}, true
}

// effectiveMnemonic resolves macro expansion, DXOP expansion, and DFOP
// aliasing, in that order, to the catalog mnemonic a line's text
// actually assembles to.
func (a *Assembler) effectiveMnemonic(ln *Line) string {
	if mnem, _, ok := a.resolveMacro(ln); ok {
		return mnem
	}
	if _, ok := a.dxopAlias[ln.Mnemonic]; ok {
		return "XOP"
	}
	if target, ok := a.dfopAlias[ln.Mnemonic]; ok {
		return target
	}
	return ln.Mnemonic
}

// effectiveOperands returns the operand list that goes with
// effectiveMnemonic: the macro's fixed operand when a macro applies,
// the line's own source operand followed by the declared vector number
// for a DXOP alias (ALIAS S expands to XOP S,number),
// otherwise the line's own parsed params (DFOP aliasing only renames
// the mnemonic, the operand list passes through unchanged).
func (a *Assembler) effectiveOperands(ln *Line) []Param {
	if _, params, ok := a.resolveMacro(ln); ok {
		return params
	}
	if n, ok := a.dxopAlias[ln.Mnemonic]; ok {
		return append(append([]Param{}, ln.Params...), classifyParam(fmt.Sprintf("%d", n)))
	}
	return ln.Params
}

// addrOperandNeedsWord reports whether p's addressing mode requires a
// symbolic/indexed follow-on word (mode 2), independent of what that
// word's value resolves to -- which is what lets provisionalWordCount
// compute an exact width in a single forward pass instead of an
// iterative fixpoint.
func addrOperandNeedsWord(p Param) bool {
	return p.Kind == ParamIndexed || p.Kind == ParamSymbolic
}

// provisionalWordCount computes a LineInstruction's exact word count:
// the format's minimum words, plus format 8's immediate word, plus one
// follow-on word per symbolic/indexed operand actually written.
func (a *Assembler) provisionalWordCount(ln *Line) (int, error) {
	mnemonic := a.effectiveMnemonic(ln)
	op, ok := a.Catalog.LookupByName(mnemonic)
	if !ok {
		return 1, &UnknownMnemonicError{Line: ln.Number, Text: ln.Mnemonic}
	}
	words := op.MinimumInstructionWords()
	if op.HasImmediateOperand() {
		words++
	}
	for _, p := range a.effectiveOperands(ln) {
		if addrOperandNeedsWord(p) {
			words++
		}
	}
	return words, nil
}

// walkLocationCounter is pass 2's core: it assigns every line an
// address, binds location-type symbols (labels) to it, executes PI
// semantics that move the location counter or open/close a segment,
// and estimates each instruction's width.
func (a *Assembler) walkLocationCounter() {
	loc := uint16(0)
	var cur *Segment
	openSegment := func(kind SegmentKind, start uint16) {
		cur = &Segment{Kind: kind, StartingPoint: start}
		a.Segments = append(a.Segments, cur)
	}
	openSegment(SegmentAORG, 0)

	bindLabel := func(ln *Line, value uint16) {
		if ln.Label == "" {
			return
		}
		sym, err := a.Symbols.Define(ln.Label, SymbolLocation, ln.Number)
		if err != nil {
			a.Errors = append(a.Errors, err)
			return
		}
		sym.Value, sym.ValueAssigned = value, true
	}

	ended := false
	for _, ln := range a.Lines {
		if ended {
			continue
		}
		ln.Segment = cur
		ln.Address = loc

		switch ln.Kind {
		case LineComment, LineFallthrough:

		case LineLabel:
			bindLabel(ln, loc)

		case LinePI:
			a.walkPILine(ln, &loc, &cur, openSegment, bindLabel, &ended)

		case LineInstruction:
			bindLabel(ln, loc)
			words, err := a.provisionalWordCount(ln)
			if err != nil {
				a.Errors = append(a.Errors, err)
				words = 1
			}
			ln.WordCount = words
			loc += uint16(2 * words)
		}
	}
}

func (a *Assembler) walkPILine(ln *Line, loc *uint16, cur **Segment, openSegment func(SegmentKind, uint16), bindLabel func(*Line, uint16), ended *bool) {
	switch ln.Mnemonic {
	case PIAORG:
		v, err := a.piOperandValue(ln, 0, *loc)
		if err != nil {
			a.Errors = append(a.Errors, err)
			return
		}
		*loc = v
		openSegment(SegmentAORG, *loc)
		ln.Segment = *cur
		ln.Address = *loc
		bindLabel(ln, *loc)

	case PIDORG:
		v, err := a.piOperandValue(ln, 0, *loc)
		if err != nil {
			a.Errors = append(a.Errors, err)
			return
		}
		*loc = v
		openSegment(SegmentDORG, *loc)
		ln.Segment = *cur
		ln.Address = *loc
		bindLabel(ln, *loc)

	case PIBSS:
		bindLabel(ln, *loc)
		n, err := a.piOperandValue(ln, 0, *loc)
		if err != nil {
			a.Errors = append(a.Errors, err)
			return
		}
		*loc += n

	case PIBES:
		n, err := a.piOperandValue(ln, 0, *loc)
		if err != nil {
			a.Errors = append(a.Errors, err)
			return
		}
		*loc += n
		ln.Address = *loc
		bindLabel(ln, *loc)

	case PIEVEN:
		if *loc%2 != 0 {
			*loc++
		}
		ln.Address = *loc
		bindLabel(ln, *loc)

	case PIBYTE:
		bindLabel(ln, *loc)
		*loc += uint16(len(ln.Params))

	case PIDATA:
		bindLabel(ln, *loc)
		*loc += uint16(2 * len(ln.Params))

	case PITEXT:
		bindLabel(ln, *loc)
		if len(ln.Params) != 1 {
			a.Errors = append(a.Errors, &ParseError{Line: ln.Number, Reason: "TEXT takes exactly one string operand"})
			return
		}
		*loc += uint16(len(ln.Params[0].Addr))

	case PIEQU, PIDFOP, PIDXOP, PICKPT:
		// Already registered by registerAssignSymbols/resolveAssignSymbols;
		// these PIs never move the location counter or bind a label.

	case PIPSEG, PIDSEG, PICSEG:
		bindLabel(ln, *loc)
		openSegment(segmentStartPIs[ln.Mnemonic], *loc)
		ln.Segment = *cur

	case PIPEND, PIDEND, PICEND:
		bindLabel(ln, *loc)
		openSegment(SegmentAORG, *loc)
		ln.Segment = *cur

	case PIEND:
		bindLabel(ln, *loc)
		*ended = true
	}
}

func (a *Assembler) piOperandValue(ln *Line, idx int, curAddr uint16) (uint16, error) {
	if idx >= len(ln.Params) {
		return 0, &ParseError{Line: ln.Number, Reason: ln.Mnemonic + " requires an operand"}
	}
	return a.resolveExpr(ln.Params[idx].Raw, curAddr, ln.Number)
}

// emit walks every line a second time, now that addresses and symbols
// are fully known, encoding instruction and data-PI lines into their
// segment's byte stream.
func (a *Assembler) emit() {
	for _, ln := range a.Lines {
		if ln.Segment == nil {
			continue
		}
		switch ln.Kind {
		case LineInstruction:
			bytes, err := a.encodeInstructionLine(ln)
			if err != nil {
				a.Errors = append(a.Errors, err)
				continue
			}
			ln.Segment.Append(ln.Number, bytes)
		case LinePI:
			bytes, err := a.encodePILine(ln)
			if err != nil {
				a.Errors = append(a.Errors, err)
				continue
			}
			if bytes != nil {
				ln.Segment.Append(ln.Number, bytes)
			}
		}
	}
}

func (a *Assembler) encodeInstructionLine(ln *Line) ([]byte, error) {
	mnemonic := a.effectiveMnemonic(ln)
	op, ok := a.Catalog.LookupByName(mnemonic)
	if !ok {
		return nil, &UnknownMnemonicError{Line: ln.Number, Text: ln.Mnemonic}
	}

	inst, err := instruction.NewByMnemonic(a.Catalog, mnemonic)
	if err != nil {
		return nil, &ParseError{Line: ln.Number, Reason: err.Error()}
	}

	if err := a.encodeOperands(inst, ln, op, a.effectiveOperands(ln)); err != nil {
		return nil, err
	}
	inst.Finalize()
	ln.Inst = inst

	words := instructionWords(inst)
	out := make([]byte, 0, 2*len(words))
	for _, w := range words {
		out = append(out, byte(w>>8), byte(w))
	}
	return out, nil
}

func (a *Assembler) encodePILine(ln *Line) ([]byte, error) {
	switch ln.Mnemonic {
	case PIBYTE:
		out := make([]byte, 0, len(ln.Params))
		for _, p := range ln.Params {
			v, err := a.resolveExpr(p.Raw, ln.Address, ln.Number)
			if err != nil {
				return nil, err
			}
			if v > 0xFF {
				return nil, &NumericOverflowError{Line: ln.Number, Value: int64(v), Max: 0xFF}
			}
			out = append(out, byte(v))
		}
		return out, nil

	case PIDATA:
		out := make([]byte, 0, 2*len(ln.Params))
		for _, p := range ln.Params {
			v, err := a.resolveExpr(p.Raw, ln.Address, ln.Number)
			if err != nil {
				return nil, err
			}
			out = append(out, byte(v>>8), byte(v))
		}
		return out, nil

	case PITEXT:
		if len(ln.Params) != 1 {
			return nil, &ParseError{Line: ln.Number, Reason: "TEXT takes exactly one string operand"}
		}
		return []byte(ln.Params[0].Addr), nil

	default:
		return nil, nil
	}
}
