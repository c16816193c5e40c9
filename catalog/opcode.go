package catalog

import "fmt"

// Platform tags. A mnemonic's Platforms map says which targets it's
// legal on: the two-word extended instructions arrive with the
// TMS99105, and the float set plus the 990/12-derived string/field ops
// are only decoded natively on the TMS99110 (elsewhere they are MID
// traps).
const (
	Platform9900  = "TMS9900"
	Platform9995  = "TMS9995"
	Platform99105 = "TMS99105"
	Platform99110 = "TMS99110"
)

// allPlatforms is the base-ISA availability bitmap shared by every
// TMS9900-era mnemonic.
var allPlatforms = map[string]bool{
	Platform9900:  true,
	Platform9995:  true,
	Platform99105: true,
	Platform99110: true,
}

var extendedPlatforms = map[string]bool{
	Platform9900:  false,
	Platform9995:  false,
	Platform99105: true,
	Platform99110: true,
}

var tms99110Platforms = map[string]bool{
	Platform9900:  false,
	Platform9995:  false,
	Platform99105: false,
	Platform99110: true,
}

// Opcode is an immutable catalog entry for one mnemonic.
type Opcode struct {
	Name                  string
	ShortDescription      string
	Base                  uint16 // "opcode": base value before param bits
	LegalMax              uint16 // "opcode_legal_max": inclusive upper bound of the opcode's range
	ArgStartBit           int    // MSB-indexed bit where param bits begin
	FormatNumber          int    // 1..21
	Platforms             map[string]bool
	PerformsPrivilegeCheck bool
	TouchesStatusBits     map[string]bool
}

// Format returns this opcode's format descriptor. Panics if the catalog
// was built with an out-of-range format number -- a hard build-time
// invariant, never a runtime possibility once Catalog is constructed.
func (o *Opcode) Format() *Format {
	f, ok := LookupFormat(o.FormatNumber)
	if !ok {
		panic(fmt.Sprintf("catalog: opcode %s has invalid format %d", o.Name, o.FormatNumber))
	}
	return f
}

// HasImmediateOperand reports format 8: LI/AI/ANDI/ORI/CI/LWPI/LIMI and
// the 99105's BLSK take a following 16-bit immediate word beyond the
// opcode word itself.
func (o *Opcode) HasImmediateOperand() bool {
	return o.FormatNumber == 8
}

// HasPossibleImmediateSource reports whether the format packs a Ts
// field; at runtime Ts==2 ("symbolic/indexed") means a follow-on word
// supplies the source address.
func (o *Opcode) HasPossibleImmediateSource() bool {
	return o.Format().HasParam(ParamTs)
}

// HasPossibleImmediateDest reports whether the format packs a Td field.
func (o *Opcode) HasPossibleImmediateDest() bool {
	return o.Format().HasParam(ParamTd)
}

// HasSecondOpcodeWord reports formats > 11, except format 18, the one
// single-word extended format.
func (o *Opcode) HasSecondOpcodeWord() bool {
	return o.FormatNumber > 11 && o.FormatNumber != 18
}

// MinimumInstructionWords is the smallest possible word count: the
// opcode word, plus a second opcode word if the format requires one.
// Immediate/indexed follow-on words are not guaranteed (they depend on
// the actual addressing modes chosen), so they're excluded here and
// included in MaximumInstructionWords instead.
func (o *Opcode) MinimumInstructionWords() int {
	n := 1
	if o.HasSecondOpcodeWord() {
		n++
	}
	return n
}

// MaximumInstructionWords adds every follow-on word this opcode could
// possibly need: an immediate operand (format 8), plus a symbolic/
// indexed address word for source and/or destination.
func (o *Opcode) MaximumInstructionWords() int {
	n := o.MinimumInstructionWords()
	if o.HasImmediateOperand() {
		n++
	}
	if o.HasPossibleImmediateSource() {
		n++
	}
	if o.HasPossibleImmediateDest() {
		n++
	}
	return n
}

// InRange reports whether word falls within this opcode's legal range.
func (o *Opcode) InRange(word uint16) bool {
	return word >= o.Base && word <= o.LegalMax
}

// SupportsPlatform reports whether this opcode is legal on the named
// platform tag.
func (o *Opcode) SupportsPlatform(platform string) bool {
	return o.Platforms[platform]
}

// midRange is a declared Macro-Instruction-Definition gap: an opcode
// span reserved for software-defined instructions, never occupied by a
// catalog mnemonic.
type midRange struct {
	Low, High uint16
}

// Catalog is the full, immutable set of defined mnemonics plus the
// declared MID gaps between them. Build it once with NewCatalog (or use
// the package-level Default, built from catalog_data.go).
type Catalog struct {
	byName   map[string]*Opcode
	ordered  []*Opcode
	midGaps  []midRange
}

// NewCatalog builds a Catalog from a list of opcodes and declared MID
// gaps. It does not validate disjointness itself -- see
// catalog_data.go's init-time self-check, which is the single place
// that constructs the real table.
func NewCatalog(opcodes []*Opcode, gaps []midRange) *Catalog {
	c := &Catalog{
		byName:  make(map[string]*Opcode, len(opcodes)),
		ordered: make([]*Opcode, 0, len(opcodes)),
		midGaps: gaps,
	}
	for _, o := range opcodes {
		c.byName[o.Name] = o
		c.ordered = append(c.ordered, o)
	}
	return c
}

// LookupByName returns the catalog entry for mnemonic.
func (c *Catalog) LookupByName(mnemonic string) (*Opcode, bool) {
	o, ok := c.byName[mnemonic]
	return o, ok
}

// LookupByOpcode returns the unique entry whose [Base, LegalMax]
// contains word. At most one entry can ever match because the
// catalog's ranges are disjoint by construction.
func (c *Catalog) LookupByOpcode(word uint16) (*Opcode, bool) {
	for _, o := range c.ordered {
		if o.InRange(word) {
			return o, true
		}
	}
	return nil, false
}

// OpcodeInMIDRange reports whether word lies in a declared
// Macro-Instruction-Definition gap.
func (c *Catalog) OpcodeInMIDRange(word uint16) bool {
	for _, g := range c.midGaps {
		if word >= g.Low && word <= g.High {
			return true
		}
	}
	return false
}

// All returns every defined opcode, in catalog declaration order.
func (c *Catalog) All() []*Opcode {
	return c.ordered
}
