package instruction

import (
	"errors"
	"testing"

	"github.com/cecapps/tms99105sim/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByMnemonicUnknown(t *testing.T) {
	_, err := NewByMnemonic(catalog.Default, "NOTANOP")
	assert.Error(t, err)
}

func TestRoundTripFormat1(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "MOV")
	require.NoError(t, err)

	require.NoError(t, inst.SetParamInt(catalog.ParamTs, 1))
	require.NoError(t, inst.SetParamInt(catalog.ParamS, 5))
	require.NoError(t, inst.SetParamInt(catalog.ParamTd, 2))
	require.NoError(t, inst.SetParamInt(catalog.ParamD, 9))
	inst.Finalize()

	decoded, err := NewByOpcodeWord(catalog.Default, inst.WorkingOpcode())
	require.NoError(t, err)
	assert.Equal(t, "MOV", decoded.Mnemonic())

	ts, err := decoded.GetParam(catalog.ParamTs)
	require.NoError(t, err)
	assert.Equal(t, 1, ts)
	s, err := decoded.GetParam(catalog.ParamS)
	require.NoError(t, err)
	assert.Equal(t, 5, s)
	td, err := decoded.GetParam(catalog.ParamTd)
	require.NoError(t, err)
	assert.Equal(t, 2, td)
	d, err := decoded.GetParam(catalog.ParamD)
	require.NoError(t, err)
	assert.Equal(t, 9, d)
}

func TestRoundTripFormat8Immediate(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "LI")
	require.NoError(t, err)
	require.NoError(t, inst.SetParamInt(catalog.ParamW, 3))
	require.NoError(t, inst.SetImmediateOperand(0x1234))
	inst.Finalize()

	decoded, err := NewByOpcodeWord(catalog.Default, inst.WorkingOpcode())
	require.NoError(t, err)
	w, err := decoded.GetParam(catalog.ParamW)
	require.NoError(t, err)
	assert.Equal(t, 3, w)
}

func TestSetParamRejectedAfterFinalize(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "MOV")
	require.NoError(t, err)
	inst.Finalize()
	err = inst.SetParamInt(catalog.ParamS, 2)
	assert.Error(t, err)
}

func TestParseParamValuePrefixes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"10", 10},
		{">1F", 0x1F},
		{"0x1F", 0x1F},
		{"0b101", 5},
		{"-4", -4},
		{"R5", 5},
		{"WR12", 12},
		{">0010", 0x10},
	}
	for _, c := range cases {
		got, err := ParseParamValue(c.in)
		require.NoErrorf(t, err, "parsing %q", c.in)
		assert.Equalf(t, c.want, got, "parsing %q", c.in)
	}
}

func TestSetParamFromString(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "MOV")
	require.NoError(t, err)
	require.NoError(t, inst.SetParam(catalog.ParamS, "R7"))
	v, err := inst.GetParam(catalog.ParamS)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestHasImmediateSourceDestOperand(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "MOV")
	require.NoError(t, err)
	require.NoError(t, inst.SetParamInt(catalog.ParamTs, 2))
	require.NoError(t, inst.SetParamInt(catalog.ParamTd, 0))
	assert.True(t, inst.HasImmediateSourceOperand())
	assert.False(t, inst.HasImmediateDestOperand())
}

func TestNewByOpcodeWordMIDRange(t *testing.T) {
	_, err := NewByOpcodeWord(catalog.Default, firstMIDWord(t))
	var midErr *MIDNotImplementedError
	assert.True(t, errors.As(err, &midErr))
}

func TestCheckLegalPrivilegeViolation(t *testing.T) {
	inst, err := NewByMnemonic(catalog.Default, "LIMI")
	require.NoError(t, err)
	inst.Finalize()
	err = inst.CheckLegal(catalog.Default, false)
	var privErr *PrivilegeViolationError
	require.True(t, errors.As(err, &privErr))
	assert.Equal(t, "LIMI", privErr.Mnemonic)

	assert.NoError(t, inst.CheckLegal(catalog.Default, true))
}

// firstMIDWord finds a word known to fall in a declared MID gap (the
// reserved low block), without hard-coding catalog internals here.
func firstMIDWord(t *testing.T) uint16 {
	t.Helper()
	for w := 0; w <= 0xFFFF; w++ {
		word := uint16(w)
		if catalog.Default.OpcodeInMIDRange(word) {
			return word
		}
	}
	t.Fatal("no MID range word found in default catalog")
	return 0
}
