package memstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRegisterFlagRoundTrip(t *testing.T) {
	s := NewStatusRegister()
	assert.False(t, s.LGT())
	s.SetLGT(true)
	assert.True(t, s.LGT())
	assert.Equal(t, uint16(0), s.Word()&0x000F, "setting LGT must not touch the mask nibble")

	s.SetCarry(true)
	s.SetOverflow(true)
	assert.True(t, s.Carry())
	assert.True(t, s.Overflow())
	s.SetCarry(false)
	assert.False(t, s.Carry())
	assert.True(t, s.Overflow(), "clearing carry must not clear overflow")
}

func TestStatusRegisterMask(t *testing.T) {
	s := NewStatusRegister()
	s.SetLGT(true)
	s.SetMask(0x9)
	assert.Equal(t, uint8(0x9), s.Mask())
	assert.True(t, s.LGT(), "setting the mask must not disturb other flags")

	s.SetMask(0xFF)
	assert.Equal(t, uint8(0xF), s.Mask(), "mask is truncated to 4 bits")
}

func TestStatusRegisterSetStatusBitByName(t *testing.T) {
	s := NewStatusRegister()
	s.SetStatusBit("A>", true)
	s.SetStatusBit("=", true)
	s.SetStatusBit("P", true)
	assert.True(t, s.AGT())
	assert.True(t, s.EQ())
	assert.True(t, s.Parity())

	s.SetStatusBit("not-a-flag", true)
	assert.Equal(t, uint8(0), s.Mask())
}

func TestStatusRegisterReset(t *testing.T) {
	s := NewStatusRegister()
	s.SetWord(0xFFFF)
	s.Reset()
	assert.Equal(t, uint16(0), s.Word())
}

func TestStatusRegisterExtendedFlags(t *testing.T) {
	s := NewStatusRegister()
	s.SetPriv(true)
	s.SetMM(true)
	s.SetWCS(true)
	assert.True(t, s.Priv())
	assert.True(t, s.MM())
	assert.True(t, s.WCS())
	assert.False(t, s.Mf())
	assert.False(t, s.OINT())
}
