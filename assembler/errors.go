package assembler

import "fmt"

// ParseError reports a line that could not be tokenized into label,
// mnemonic, and operands.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("assembler: line %d: %s", e.Line, e.Reason)
}

// UnknownMnemonicError reports a mnemonic that is neither a catalog
// opcode, a recognized PI, nor a DFOP/DXOP alias.
type UnknownMnemonicError struct {
	Line int
	Text string
}

func (e *UnknownMnemonicError) Error() string {
	return fmt.Sprintf("assembler: line %d: unknown mnemonic %q", e.Line, e.Text)
}

// DuplicateSymbolError reports a symbol name defined more than once.
type DuplicateSymbolError struct {
	Line int
	Name string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("assembler: line %d: symbol %q already defined", e.Line, e.Name)
}

// UnresolvedSymbolError reports a symbol reference that never resolved,
// either because it was never defined or symbol resolution stalled.
type UnresolvedSymbolError struct {
	Line int
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("assembler: line %d: unresolved symbol %q", e.Line, e.Name)
}

// JumpOutOfRangeError reports a format-2/17 displacement that doesn't
// fit the field width.
type JumpOutOfRangeError struct {
	Line  int
	Delta int
}

func (e *JumpOutOfRangeError) Error() string {
	return fmt.Sprintf("assembler: line %d: jump displacement %d out of range", e.Line, e.Delta)
}

// NumericOverflowError reports a numeric operand too large for its
// field.
type NumericOverflowError struct {
	Line  int
	Value int64
	Max   int64
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("assembler: line %d: value %d exceeds maximum %d", e.Line, e.Value, e.Max)
}
