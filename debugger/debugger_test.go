package debugger

import (
	"strconv"
	"testing"

	"github.com/cecapps/tms99105sim/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDebugger(t *testing.T) *Debugger {
	t.Helper()
	s := sim.New()
	_, image, errs := s.Assemble("       AORG >0100\nSTART  LI   R0,>00FF\n       JMP  START\n")
	require.Empty(t, errs)
	require.NoError(t, s.LoadBytes(image))
	s.Mem.SetWord(0x0000, 0x8300)
	s.Mem.SetWord(0x0002, 0x0100)

	dbg := NewDebugger(s)
	dbg.LoadSymbols(map[string]uint16{"START": 0x0100})
	return dbg
}

func TestExecuteCommandBreakAndDelete(t *testing.T) {
	dbg := newDebugger(t)

	require.NoError(t, dbg.ExecuteCommand("break START"))
	out := dbg.GetOutput()
	assert.Contains(t, out, ">0100")
	require.Len(t, dbg.Breakpoints.All(), 1)

	id := dbg.Breakpoints.All()[0].ID
	require.NoError(t, dbg.ExecuteCommand("delete "+strconv.Itoa(id)))
	assert.Empty(t, dbg.Breakpoints.All())
}

func TestExecuteCommandUnknown(t *testing.T) {
	dbg := newDebugger(t)
	err := dbg.ExecuteCommand("bogus")
	assert.Error(t, err)
}

func TestExecuteCommandInfoRegisters(t *testing.T) {
	dbg := newDebugger(t)
	require.NoError(t, dbg.ExecuteCommand("info registers"))
	out := dbg.GetOutput()
	assert.Contains(t, out, "PC=")
	assert.Contains(t, out, "WP=")
}

func TestExecuteCommandRepeatsLastOnBlank(t *testing.T) {
	dbg := newDebugger(t)
	require.NoError(t, dbg.ExecuteCommand("info registers"))
	dbg.GetOutput()
	require.NoError(t, dbg.ExecuteCommand(""))
	out := dbg.GetOutput()
	assert.Contains(t, out, "PC=")
}

func TestExecuteCommandDisasm(t *testing.T) {
	dbg := newDebugger(t)
	dbg.Sim.Reset()
	require.NoError(t, dbg.ExecuteCommand("disasm >0100 2"))
	out := dbg.GetOutput()
	assert.Contains(t, out, "LI")
}
