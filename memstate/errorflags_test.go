package memstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFlagsSetGetClear(t *testing.T) {
	e := NewErrorFlags()
	v, err := e.Get(ErrorBitOverflow)
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, e.Set(ErrorBitOverflow))
	v, err = e.Get(ErrorBitOverflow)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, e.Clear(ErrorBitOverflow))
	v, _ = e.Get(ErrorBitOverflow)
	assert.False(t, v)
}

func TestErrorFlagsRejectsUndefinedBits(t *testing.T) {
	e := NewErrorFlags()
	assert.Error(t, e.Set(0))
	assert.Error(t, e.Clear(1))
	_, err := e.Get(15)
	assert.Error(t, err)
}

func TestErrorFlagsAny(t *testing.T) {
	e := NewErrorFlags()
	assert.False(t, e.Any())
	require.NoError(t, e.Set(ErrorBitPrivilege))
	assert.True(t, e.Any())
}

func TestErrorFlagsReset(t *testing.T) {
	e := NewErrorFlags()
	require.NoError(t, e.Set(ErrorBitIllegalOp))
	e.Reset()
	assert.False(t, e.Any())
}
