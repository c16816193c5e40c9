package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulationZeroState(t *testing.T) {
	s := New()
	assert.Equal(t, "none", s.CurrentInstructionLabel())
	assert.Equal(t, "none", s.NextInstructionLabel())
}

// TestLoadBytesAndReset assembles a tiny program, loads it, and checks
// the reset vector path end to end through the Simulation façade
// rather than Flow directly.
func TestLoadBytesAndReset(t *testing.T) {
	s := New()
	src := "       AORG >0100\nSTART  LI   R0,>00FF\n       JMP  START\n"
	lines, image, errs := s.Assemble(src)
	require.Empty(t, errs)
	require.NotEmpty(t, lines)
	require.NoError(t, s.LoadBytes(image))

	s.Mem.SetWord(0x0000, 0x8300) // reset vector WP
	s.Mem.SetWord(0x0002, 0x0100) // reset vector PC
	s.Reset()
	s.ResetInterruptVectors()

	assert.Equal(t, uint16(0x8300), s.WP())
	assert.Equal(t, uint16(0x0100), s.PC())
}

// TestStepInstructionRecordsStatistics confirms Stats only counts a
// mnemonic once an instruction has actually retired, not once per Flow
// state transition.
func TestStepInstructionRecordsStatistics(t *testing.T) {
	s := New()
	src := "       AORG >0100\n       A    R0,R1\n"
	_, image, errs := s.Assemble(src)
	require.Empty(t, errs)
	require.NoError(t, s.LoadBytes(image))

	s.Mem.SetWord(0x0000, 0x8300)
	s.Mem.SetWord(0x0002, 0x0100)
	s.Reset()

	before := s.Statistics().Total()
	for i := 0; i < 8; i++ {
		if _, err := s.StepInstruction(); err != nil {
			break
		}
		if s.Statistics().Total() > before {
			break
		}
	}
	assert.Greater(t, s.Statistics().Total(), before)
	assert.Equal(t, 1, s.Statistics().Count("A"))
}

// TestRunAddProgram: after three
// instruction steps R2 holds 8 with carry and overflow clear.
func TestRunAddProgram(t *testing.T) {
	s := New()
	src := "       AORG >0100\n" +
		"       LI   R1,>0003\n" +
		"       LI   R2,>0005\n" +
		"       A    R1,R2\n" +
		"       JMP  $\n"
	_, image, errs := s.Assemble(src)
	require.Empty(t, errs)
	require.NoError(t, s.LoadBytes(image))

	s.Mem.SetWord(0x0000, 0x8300)
	s.Mem.SetWord(0x0002, 0x0100)
	s.Reset()

	steps, err := s.Run(3)
	require.NoError(t, err)
	require.Equal(t, 3, steps)

	assert.Equal(t, uint16(0x0008), s.Register(2))
	assert.False(t, s.Status.Carry())
	assert.False(t, s.Status.Overflow())
}

// TestRunJumpLoop: INC/DEC/JNE loops
// until R1 hits zero, leaving R0=3 and PC on the word after JNE.
func TestRunJumpLoop(t *testing.T) {
	s := New()
	src := "       AORG >0100\n" +
		"       LI   R0,0\n" +
		"       LI   R1,3\n" +
		"L1     INC  R0\n" +
		"       DEC  R1\n" +
		"       JNE  L1\n" +
		"       JMP  $\n"
	_, image, errs := s.Assemble(src)
	require.Empty(t, errs)
	require.NoError(t, s.LoadBytes(image))

	s.Mem.SetWord(0x0000, 0x8300)
	s.Mem.SetWord(0x0002, 0x0100)
	s.Reset()

	// 2 loads plus three INC/DEC/JNE rounds.
	steps, err := s.Run(11)
	require.NoError(t, err)
	require.Equal(t, 11, steps)

	assert.Equal(t, uint16(0x0003), s.Register(0))
	assert.Equal(t, uint16(0x0000), s.Register(1))
	assert.Equal(t, uint16(0x010E), s.PC(), "PC should rest on the word after JNE")
}

// TestAssembleLoadCommutes: assembling and
// loading reaches the same machine state as hand-writing the bytes.
func TestAssembleLoadCommutes(t *testing.T) {
	assembled := New()
	_, image, errs := assembled.Assemble("       AORG >0100\n       LI   R5,>00AB\n       JMP  $\n")
	require.Empty(t, errs)
	require.NoError(t, assembled.LoadBytes(image))
	assembled.Mem.SetWord(0x0000, 0x8300)
	assembled.Mem.SetWord(0x0002, 0x0100)
	assembled.Reset()

	manual := New()
	manual.Mem.SetWord(0x0100, 0x0205) // LI R5
	manual.Mem.SetWord(0x0102, 0x00AB)
	manual.Mem.SetWord(0x0104, 0x10FF) // JMP $
	manual.Mem.SetWord(0x0000, 0x8300)
	manual.Mem.SetWord(0x0002, 0x0100)
	manual.Reset()

	_, err := assembled.StepInstruction()
	require.NoError(t, err)
	_, err = manual.StepInstruction()
	require.NoError(t, err)

	assert.Equal(t, manual.Register(5), assembled.Register(5))
	assert.Equal(t, manual.PC(), assembled.PC())
	assert.Equal(t, manual.StatusWord(), assembled.StatusWord())
}

func TestRegisterReadsRelativeToWP(t *testing.T) {
	s := New()
	s.Flow.WP = 0x8300
	s.Mem.SetWord(0x8300+2*5, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), s.Register(5))
}

func TestMemoryImageIsACopy(t *testing.T) {
	s := New()
	img := s.MemoryImage()
	img[0] = 0xFF
	assert.NotEqual(t, img[0], s.Mem.GetByte(0))
}
