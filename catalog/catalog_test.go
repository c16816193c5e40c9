package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupByNameKnownMnemonics(t *testing.T) {
	for _, name := range []string{"A", "MOV", "MOVB", "LI", "JMP", "JNE", "B", "BLWP", "RTWP", "LWPI", "MPY", "XOP", "AM"} {
		op, ok := Default.LookupByName(name)
		require.Truef(t, ok, "expected %s in catalog", name)
		assert.Equal(t, name, op.Name)
	}
}

func TestLookupByNameUnknown(t *testing.T) {
	_, ok := Default.LookupByName("NOTANOP")
	assert.False(t, ok)
}

// TestHardwareBaseOpcodes pins the catalog to the real TMS9900 opcode
// map; the assembler's byte output (LI R1,>1234 producing 02 01 12 34,
// and friends) depends on these exact values.
func TestHardwareBaseOpcodes(t *testing.T) {
	cases := map[string]uint16{
		"LI":   0x0200,
		"LWPI": 0x02E0,
		"LIMI": 0x0300,
		"BLWP": 0x0400,
		"B":    0x0440,
		"CLR":  0x04C0,
		"INC":  0x0580,
		"DEC":  0x0600,
		"SRA":  0x0800,
		"JMP":  0x1000,
		"JEQ":  0x1300,
		"JNE":  0x1600,
		"COC":  0x2000,
		"XOP":  0x2C00,
		"MPY":  0x3800,
		"DIV":  0x3C00,
		"A":    0xA000,
		"MOV":  0xC000,
		"MOVB": 0xD000,
	}
	for name, base := range cases {
		op, ok := Default.LookupByName(name)
		require.Truef(t, ok, "expected %s in catalog", name)
		assert.Equalf(t, base, op.Base, "%s base opcode", name)
	}
}

// TestLookupByOpcodeDeterministic: for every word, lookup_by_opcode returns at most one mnemonic, and if
// it returns one, the word falls inside [base, legal_max].
func TestLookupByOpcodeDeterministic(t *testing.T) {
	for w := 0; w <= 0xFFFF; w += 37 { // sample the space, not exhaustive
		word := uint16(w)
		op, ok := Default.LookupByOpcode(word)
		if ok {
			assert.True(t, op.InRange(word))
		}
	}
}

func TestOpcodeRangesDisjoint(t *testing.T) {
	ops := Default.All()
	for i := 0; i < len(ops); i++ {
		for j := i + 1; j < len(ops); j++ {
			a, b := ops[i], ops[j]
			overlap := a.Base <= b.LegalMax && b.Base <= a.LegalMax
			assert.Falsef(t, overlap, "%s [%04X-%04X] overlaps %s [%04X-%04X]",
				a.Name, a.Base, a.LegalMax, b.Name, b.Base, b.LegalMax)
		}
	}
}

func TestMIDRangeDetection(t *testing.T) {
	// The bottom of the opcode space, below SRAM at >001C, is a MID gap
	// on every platform.
	assert.True(t, Default.OpcodeInMIDRange(0x0000))
	assert.True(t, Default.OpcodeInMIDRange(0x0780))

	liOp, ok := Default.LookupByName("LI")
	require.True(t, ok)
	assert.False(t, Default.OpcodeInMIDRange(liOp.Base))
}

func TestDerivedProperties(t *testing.T) {
	li, _ := Default.LookupByName("LI")
	assert.True(t, li.HasImmediateOperand())
	assert.Equal(t, 1, li.MinimumInstructionWords())
	assert.Equal(t, 2, li.MaximumInstructionWords())

	mov, _ := Default.LookupByName("MOV")
	assert.True(t, mov.HasPossibleImmediateSource())
	assert.True(t, mov.HasPossibleImmediateDest())
	assert.Equal(t, 1, mov.MinimumInstructionWords())
	assert.Equal(t, 3, mov.MaximumInstructionWords())

	am, _ := Default.LookupByName("AM")
	assert.True(t, am.HasSecondOpcodeWord())
	assert.Equal(t, 2, am.MinimumInstructionWords())

	lst, _ := Default.LookupByName("LST")
	assert.False(t, lst.HasSecondOpcodeWord(), "format 18 is the declared exception")

	rtwp, _ := Default.LookupByName("RTWP")
	assert.False(t, rtwp.HasSecondOpcodeWord())
	assert.False(t, rtwp.HasImmediateOperand())
}

func TestFormatLookupBounds(t *testing.T) {
	_, ok := LookupFormat(0)
	assert.False(t, ok)
	_, ok = LookupFormat(22)
	assert.False(t, ok)
	f, ok := LookupFormat(1)
	require.True(t, ok)
	assert.Equal(t, 1, f.Number)
}
