package assembler

import (
	"testing"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageWord(image []byte, addr int) uint16 {
	return uint16(image[addr])<<8 | uint16(image[addr+1])
}

// TestAssembleLoadImmediate: LI R1,>1234 assembles to the words
// 0201 1234.
func TestAssembleLoadImmediate(t *testing.T) {
	_, image, errs := Assemble(catalog.Default, "       AORG >0100\nSTART  LI   R1,>1234\n")
	require.Empty(t, errs)

	assert.Equal(t, []byte{0x02, 0x01, 0x12, 0x34}, image[0x0100:0x0104])
}

// TestAssembleAddRegisters covers the add scenario: a format-1
// register-direct A instruction packs D above S in one word.
func TestAssembleAddRegisters(t *testing.T) {
	lines, image, errs := Assemble(catalog.Default, "       AORG >0100\n       A    R1,R2\n")
	require.Empty(t, errs)
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].WordCount)

	// A R1,R2: Td=0 D=2 Ts=0 S=1 -> A000 | 2<<6 | 1.
	assert.Equal(t, uint16(0xA081), imageWord(image, 0x0100))
}

// TestAssembleJumpToLabel covers the jump scenario: a forward-
// referenced label resolves to a correct PC-relative displacement.
func TestAssembleJumpToLabel(t *testing.T) {
	src := "        AORG >0100\n        JMP  TARGET\nTARGET  A    R0,R1\n"
	_, image, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	// TARGET is at >0102 immediately after JMP's one-word encoding at
	// >0100: delta = target - (addr+2) = 0, so disp = 0.
	assert.Equal(t, uint16(0x1000), imageWord(image, 0x0100))
}

func TestAssembleBackwardJumpNegativeDisplacement(t *testing.T) {
	src := "       AORG >0100\nLOOP   DEC  R1\n       JNE  LOOP\n"
	_, image, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	// JNE sits at >0102; LOOP is at >0100: disp = (0x0100-0x0104)/2 = -2.
	assert.Equal(t, uint16(0x16FE), imageWord(image, 0x0102))
}

// TestAssembleWorkspaceSwap covers the BLWP/RTWP workspace-switch
// scenario: BLWP *R1 sets addressing mode 1, and the RT macro expands
// to B *R11.
func TestAssembleWorkspaceSwap(t *testing.T) {
	_, image, errs := Assemble(catalog.Default, "       AORG >0100\n       BLWP *R1\n       RT\n")
	require.Empty(t, errs)

	assert.Equal(t, uint16(0x0411), imageWord(image, 0x0100))
	assert.Equal(t, uint16(0x045B), imageWord(image, 0x0102), "RT should expand to B *R11")
}

// TestAssembleByteWrite covers the byte-write scenario: MOVB with a
// symbolic destination takes a follow-on address word.
func TestAssembleByteWrite(t *testing.T) {
	_, image, errs := Assemble(catalog.Default, "       AORG >0100\n       MOVB R1,@>0200\n")
	require.Empty(t, errs)

	// MOVB R1,@>0200: Td=2 D=0 Ts=0 S=1 -> D000 | 2<<10 | 1, then the
	// destination address word.
	assert.Equal(t, uint16(0xD801), imageWord(image, 0x0100))
	assert.Equal(t, uint16(0x0200), imageWord(image, 0x0102))
}

// TestAssembleBSSReservesSpace covers the BSS/BES directive scenario:
// BSS reserves bytes without emitting any, advancing the location
// counter for the following label.
func TestAssembleBSSReservesSpace(t *testing.T) {
	src := "        AORG >0100\nBUF     BSS  4\nAFTER   A    R0,R1\n"
	lines, _, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	var buf, after *Line
	for _, ln := range lines {
		switch ln.Label {
		case "BUF":
			buf = ln
		case "AFTER":
			after = ln
		}
	}
	require.NotNil(t, buf)
	require.NotNil(t, after)
	assert.Equal(t, uint16(0x0100), buf.Address)
	assert.Equal(t, uint16(0x0104), after.Address)
}

// TestAssembleBESBindsPastReservedBlock: unlike BSS, BES binds its
// label to the address after the reserved block.
func TestAssembleBESBindsPastReservedBlock(t *testing.T) {
	src := "        AORG >0100\nBUF     BES  4\nAFTER   A    R0,R1\n"
	lines, _, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	for _, ln := range lines {
		switch ln.Label {
		case "BUF":
			assert.Equal(t, uint16(0x0104), ln.Address)
		case "AFTER":
			assert.Equal(t, uint16(0x0104), ln.Address)
		}
	}
}

// TestAssembleStringOpDefaultCheckpoint: a format-12 instruction with
// no CKPT directive and no explicit checkpoint operand falls back to
// R10.
func TestAssembleStringOpDefaultCheckpoint(t *testing.T) {
	_, image, errs := Assemble(catalog.Default, "       AORG >0100\n       MOVS R1,R2\n")
	require.Empty(t, errs)

	assert.Equal(t, uint16(0x0E00), imageWord(image, 0x0100))
	// Second word: CKPT=10 Td=0 D=2 Ts=0 S=1.
	assert.Equal(t, uint16(0xA081), imageWord(image, 0x0102))
}

func TestAssembleStringOpExplicitCKPT(t *testing.T) {
	src := "       AORG >0100\n       CKPT R7\n       MOVS R1,R2\n"
	_, image, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	assert.Equal(t, uint16(0x7081), imageWord(image, 0x0102))
}

// TestAssembleDXOPExpandsToXOP: a DXOP-declared mnemonic expands to
// XOP S,number.
func TestAssembleDXOPExpandsToXOP(t *testing.T) {
	src := "MYCALL DXOP 5\n       AORG >0100\n       MYCALL R3\n"
	_, image, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	// XOP R3,5: 2C00 | D=5<<6 | Ts=0 | S=3.
	assert.Equal(t, uint16(0x2D43), imageWord(image, 0x0100))
}

func TestAssembleDFOPAliasesMnemonic(t *testing.T) {
	src := "ADD    DFOP A\n       AORG >0100\n       ADD  R1,R2\n"
	_, image, errs := Assemble(catalog.Default, src)
	require.Empty(t, errs)

	assert.Equal(t, uint16(0xA081), imageWord(image, 0x0100))
}

func TestAssembleUnsupportedPIDowngradesToComment(t *testing.T) {
	a := New(catalog.Default)
	lines, _, errs := a.Assemble("       IDT  'DEMO'\n       AORG >0100\n       A    R1,R2\n")
	require.Empty(t, errs)
	require.NotEmpty(t, a.Warnings)
	assert.Equal(t, LineComment, lines[0].Kind)
}

// TestAssembleCollectsMultipleErrors confirms errors accumulate instead
// of aborting the pipeline.
func TestAssembleCollectsMultipleErrors(t *testing.T) {
	src := "       A    R0,NOSUCHLABEL\n       A    R0,ALSONOTDEFINED\n"
	_, _, errs := Assemble(catalog.Default, src)
	assert.GreaterOrEqual(t, len(errs), 2)
}

func TestAssembleJumpOutOfRange(t *testing.T) {
	src := "       AORG >0100\n       JMP  FAR\n       AORG >2000\nFAR    A    R0,R1\n"
	_, _, errs := Assemble(catalog.Default, src)
	require.NotEmpty(t, errs)
	var oor *JumpOutOfRangeError
	found := false
	for _, err := range errs {
		if e, ok := err.(*JumpOutOfRangeError); ok {
			oor, found = e, true
		}
	}
	require.True(t, found, "expected a JumpOutOfRangeError, got %v", errs)
	assert.Equal(t, 2, oor.Line)
}

func TestAssembleDuplicateSymbol(t *testing.T) {
	src := "DUP    A    R0,R1\nDUP    A    R0,R1\n"
	_, _, errs := Assemble(catalog.Default, src)
	found := false
	for _, err := range errs {
		if _, ok := err.(*DuplicateSymbolError); ok {
			found = true
		}
	}
	assert.True(t, found, "expected a DuplicateSymbolError, got %v", errs)
}

// TestAssembleDeterministic confirms assembling the same source twice
// yields byte-identical images.
func TestAssembleDeterministic(t *testing.T) {
	src := "       AORG >0100\nLOOP   LI   R0,>0005\n       A    R0,R1\n       JMP  LOOP\n"
	_, image1, errs1 := Assemble(catalog.Default, src)
	_, image2, errs2 := Assemble(catalog.Default, src)
	require.Empty(t, errs1)
	require.Empty(t, errs2)
	assert.Equal(t, image1, image2)
}
