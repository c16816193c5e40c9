package assembler

import (
	"strings"

	"github.com/cecapps/tms99105sim/instruction"
)

// LineKind classifies a parsed source line.
type LineKind int

const (
	LineComment LineKind = iota
	LineLabel
	LineInstruction
	LinePI
	LineFallthrough
)

func (k LineKind) String() string {
	switch k {
	case LineComment:
		return "comment"
	case LineLabel:
		return "label"
	case LineInstruction:
		return "instruction"
	case LinePI:
		return "pi"
	case LineFallthrough:
		return "fallthrough"
	default:
		return "?"
	}
}

// ParamKind classifies one parsed operand.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamRegister
	ParamIndexed
	ParamSymbolic
	ParamText
	ParamUnknown
)

func (k ParamKind) String() string {
	switch k {
	case ParamNumber:
		return "number"
	case ParamRegister:
		return "register"
	case ParamIndexed:
		return "indexed"
	case ParamSymbolic:
		return "symbolic"
	case ParamText:
		return "text"
	case ParamUnknown:
		return "unknown"
	default:
		return "?"
	}
}

// Param is one parsed operand, classified but not yet symbol-resolved;
// resolution happens against the symbol table in pass 2.
type Param struct {
	Kind ParamKind
	Raw  string

	// Addr is populated for ParamIndexed/ParamSymbolic: Addr is the
	// symbol/number part (the effective address), Index is the register
	// inside the parentheses for indexed mode.
	Addr  string
	Index string
}

// Line is one parsed source line.
type Line struct {
	Number   int
	Kind     LineKind
	Raw      string
	Label    string
	Mnemonic string
	RawArgs  string
	Params   []Param
	Comment  string

	Inst *instruction.Instruction

	Address   uint16
	Segment   *Segment
	WordCount int
}

// looksLikeRegister matches a bare register operand: an optional "W"
// prefix then "R" then 0-15, the same "R"/"WR" grammar
// instruction.ParseParamValue accepts.
func looksLikeRegister(s string) bool {
	u := strings.ToUpper(s)
	if strings.HasPrefix(u, "WR") {
		u = u[2:]
	} else if strings.HasPrefix(u, "R") {
		u = u[1:]
	} else {
		return false
	}
	if u == "" {
		return false
	}
	for _, c := range u {
		if c < '0' || c > '9' {
			return false
		}
	}
	n := 0
	for _, c := range u {
		n = n*10 + int(c-'0')
	}
	return n <= 15
}

func looksLikeNumber(s string) bool {
	t := s
	if strings.HasPrefix(t, "-") {
		t = t[1:]
	}
	switch {
	case strings.HasPrefix(t, ">"):
		t = t[1:]
	case strings.HasPrefix(strings.ToLower(t), "0x"):
		t = t[2:]
	case strings.HasPrefix(strings.ToLower(t), "0b"):
		t = t[2:]
	}
	if t == "" {
		return false
	}
	for _, c := range t {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// classifyParam sorts raw into the operand taxonomy: number, register, indexed (@addr(Rn)), symbolic (@addr), text
// (quoted), or unknown (bare symbol reference).
func classifyParam(raw string) Param {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'"):
		return Param{Kind: ParamText, Raw: s, Addr: unquote(s)}

	case strings.HasPrefix(s, "@"):
		inner := s[1:]
		if i := strings.IndexByte(inner, '('); i >= 0 && strings.HasSuffix(inner, ")") {
			return Param{Kind: ParamIndexed, Raw: s, Addr: inner[:i], Index: inner[i+1 : len(inner)-1]}
		}
		return Param{Kind: ParamSymbolic, Raw: s, Addr: inner}

	case strings.HasPrefix(s, "*"):
		inner := strings.TrimSuffix(s[1:], "+")
		return Param{Kind: ParamUnknown, Raw: s, Addr: inner}

	case looksLikeRegister(s):
		return Param{Kind: ParamRegister, Raw: s, Addr: s}

	case looksLikeNumber(s):
		return Param{Kind: ParamNumber, Raw: s, Addr: s}

	default:
		return Param{Kind: ParamUnknown, Raw: s, Addr: s}
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
