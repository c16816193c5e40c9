package execunit

import (
	"fmt"

	"github.com/cecapps/tms99105sim/instruction"
)

// --- format 3: logical, plain destination register (COC, CZC, XOR) ---
// --- format 9: destination-register multiply/divide (MPY, DIV) -------

type destRegOp int

const (
	opCompareOnes destRegOp = iota
	opCompareZeros
	opExclusiveOr
	opMultiply
	opDivide
)

type destRegUnit struct {
	baseUnit
	unprivileged
	op destRegOp
}

func (u destRegUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	d, err := c.Inst.GetParam("D")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	c.sourceVal = c.source.Get(c.Mem)
	c.dest = Operand{Addr: RegisterAddr(c.WP, d), IsRegister: true}
	c.destVal = c.dest.Get(c.Mem)
	return nil
}

func (u destRegUnit) Execute(c *Context) error {
	touches := c.touches()
	switch u.op {
	case opCompareOnes:
		c.Status.SetEQ(c.sourceVal&c.destVal == c.sourceVal)
	case opCompareZeros:
		c.Status.SetEQ(c.sourceVal&c.destVal == 0)
	case opExclusiveOr:
		c.result = c.sourceVal ^ c.destVal
		setResultFlags(c.Status, touches, c.result, false)
	case opMultiply:
		product := uint32(c.sourceVal) * uint32(c.destVal)
		c.result = uint16(product >> 16)
		c.destVal = uint16(product)
	case opDivide:
		hi := uint32(c.destVal)
		lo := uint32(c.Mem.GetWord(RegisterAddr(c.WP, nextReg(c))))
		dividend := hi<<16 | lo
		divisor := uint32(c.sourceVal)
		if divisor == 0 || divisor <= uint32(c.destVal) {
			c.Status.SetOverflow(true)
			return nil
		}
		c.Status.SetOverflow(false)
		c.result = uint16(dividend / divisor)
		c.destVal = uint16(dividend % divisor)
	}
	return nil
}

// nextReg extracts D+1 from the instruction's D param for MPY/DIV's
// double-register product/dividend pair.
func nextReg(c *Context) int {
	d, _ := c.Inst.GetParam("D")
	return d + 1
}

func (u destRegUnit) WriteResults(c *Context) error {
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	switch u.op {
	case opExclusiveOr:
		c.dest.Set(c.Mem, c.result)
	case opMultiply:
		c.dest.Set(c.Mem, c.result)
		c.Mem.SetWord(RegisterAddr(c.WP, nextReg(c)), c.destVal)
	case opDivide:
		if !c.Status.Overflow() {
			c.dest.Set(c.Mem, c.result)
			c.Mem.SetWord(RegisterAddr(c.WP, nextReg(c)), c.destVal)
		}
	}
	return nil
}

// --- format 4: CRU multi-bit transfer (LDCR, STCR) ---
//
// The CRU bus is out of simulated scope, so these units validate
// legality and consume operands but perform no
// actual bit-addressed I/O; they set the flags a real transfer would
// set, derived from the operand value alone.

type cruUnit struct {
	baseUnit
	unprivileged
	store bool // true for STCR (CRU -> operand), false for LDCR
}

func (u cruUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	c.sourceVal = c.source.Get(c.Mem)
	return nil
}

func (u cruUnit) Execute(c *Context) error {
	c.result = c.sourceVal
	setResultFlags(c.Status, c.touches(), c.result, false)
	return nil
}

func (u cruUnit) WriteResults(c *Context) error {
	if u.store {
		c.source.Set(c.Mem, c.result)
	}
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- format 18: single-register stores (STWP, STST) ---

type registerOnlyUnit struct {
	baseUnit
	unprivileged
	storeWP bool // true for STWP, false for STST
}

func (u registerOnlyUnit) FetchOperands(c *Context) error { return nil }

func (u registerOnlyUnit) Execute(c *Context) error {
	if u.storeWP {
		c.result = c.WP
	} else {
		c.result = c.Status.Word()
	}
	return nil
}

func (u registerOnlyUnit) WriteResults(c *Context) error {
	w, err := c.Inst.GetParam("W")
	if err != nil {
		return err
	}
	c.Mem.SetWord(RegisterAddr(c.WP, w), c.result)
	return nil
}

// --- format 18: single-register loads (LST, LWP) ---

type registerLoadUnit struct {
	baseUnit
	loadStatus bool // true for LST (register -> ST), false for LWP (register -> WP)
}

func (u registerLoadUnit) RequiresPrivilege() bool { return u.loadStatus }

func (u registerLoadUnit) FetchOperands(c *Context) error {
	w, err := c.Inst.GetParam("W")
	if err != nil {
		return err
	}
	c.sourceVal = c.Mem.GetWord(RegisterAddr(c.WP, w))
	return nil
}

func (u registerLoadUnit) Execute(c *Context) error {
	if u.loadStatus {
		c.Status.SetWord(c.sourceVal)
	} else {
		c.WPOverridden = true
		c.NewWP = c.sourceVal
	}
	return nil
}

func (u registerLoadUnit) WriteResults(c *Context) error { return nil }

// --- format 2: CRU single bit (SBO, SBZ, TB) ---
//
// Likewise a CRU-bus stub: disp addresses a CRU bit this simulator
// does not back with real I/O state, so SBO/SBZ are no-ops and TB
// always reads back zero.

type cruSingleBitUnit struct {
	baseUnit
	unprivileged
	isTestBit bool
}

func (u cruSingleBitUnit) FetchOperands(c *Context) error { return nil }

func (u cruSingleBitUnit) Execute(c *Context) error {
	if u.isTestBit {
		c.Status.SetEQ(false)
	}
	return nil
}

func (u cruSingleBitUnit) WriteResults(c *Context) error { return nil }

// --- format 10: map file load (LMF) ---
//
// The memory mapper is out of simulated scope beyond error flags, so
// LMF is a privilege-gated no-op that validates and retires.

type mapFileUnit struct {
	baseUnit
	privileged
}

func (u mapFileUnit) FetchOperands(c *Context) error { return nil }
func (u mapFileUnit) Execute(c *Context) error       { return nil }
func (u mapFileUnit) WriteResults(c *Context) error  { return nil }

// --- format 11: multiple-precision add/subtract (AM, SM) ---
//
// The operand addresses name the most significant word of a two-word
// value; the least significant word follows at address+2.

type multiPrecisionUnit struct {
	unprivileged
	subtract bool
}

// ValidateOpcode rejects a second opcode word with its reserved top
// nibble set: no recognized sub-variant.
func (u multiPrecisionUnit) ValidateOpcode(c *Context) error {
	if c.Inst.SecondWord()&0xF000 != 0 {
		return &instruction.IllegalOpcodeError{Word: c.Inst.SecondWord()}
	}
	return nil
}

func (u multiPrecisionUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	td, err := c.Inst.GetParam("Td")
	if err != nil {
		return err
	}
	d, err := c.Inst.GetParam("D")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	dstImm, _ := c.Inst.ImmediateDestOperand()
	c.dest = Resolve(c.Mem, c.WP, td, d, dstImm, false)
	return nil
}

func get32(c *Context, op Operand) uint32 {
	return uint32(c.Mem.GetWord(op.Addr))<<16 | uint32(c.Mem.GetWord(op.Addr+2))
}

func (u multiPrecisionUnit) Execute(c *Context) error {
	src := get32(c, c.source)
	dst := get32(c, c.dest)

	var result uint32
	var carry, overflow bool
	if u.subtract {
		result = dst - src
		carry = dst >= src
		overflow = (dst^src)&0x80000000 != 0 && (src^result)&0x80000000 == 0
	} else {
		result = dst + src
		carry = result < dst
		overflow = (dst^src)&0x80000000 == 0 && (dst^result)&0x80000000 != 0
	}

	touches := c.touches()
	if touches["L>"] {
		c.Status.SetLGT(result != 0)
	}
	if touches["A>"] {
		c.Status.SetAGT(result != 0 && result&0x80000000 == 0)
	}
	if touches["="] {
		c.Status.SetEQ(result == 0)
	}
	if touches["C"] {
		c.Status.SetCarry(carry)
	}
	if touches["O"] {
		c.Status.SetOverflow(overflow)
	}

	c.result = uint16(result >> 16)
	c.destVal = uint16(result)
	return nil
}

func (u multiPrecisionUnit) WriteResults(c *Context) error {
	c.Mem.SetWord(c.dest.Addr, c.result)
	c.Mem.SetWord(c.dest.Addr+2, c.destVal)
	// Two word accesses per operand, so the post-increment steps twice.
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	c.dest.CommitAutoIncrement(c.Mem, c.WP)
	c.dest.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- format 13: multiple-precision shift (SRAM, SLAM) ---
//
// The operand is a two-word value addressed at its most significant
// word; a count of 0 means "use R0's low 4 bits".

type extendedShiftUnit struct {
	unprivileged
	left bool // true for SLAM, false for SRAM
}

// ValidateOpcode rejects reserved bits above the count field in the
// second opcode word.
func (u extendedShiftUnit) ValidateOpcode(c *Context) error {
	if c.Inst.SecondWord()&0xFC00 != 0 {
		return &instruction.IllegalOpcodeError{Word: c.Inst.SecondWord()}
	}
	return nil
}

func (u extendedShiftUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	cnt, err := c.Inst.GetParam("C")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)

	if cnt == 0 {
		cnt = int(c.Mem.GetWord(RegisterAddr(c.WP, 0)) & 0xF)
	}
	c.sourceVal = uint16(cnt)
	return nil
}

func (u extendedShiftUnit) Execute(c *Context) error {
	v := get32(c, c.source)
	origSign := v & 0x80000000
	var carryOut, overflow bool
	for n := 0; n < int(c.sourceVal); n++ {
		if u.left {
			carryOut = v&0x80000000 != 0
			v <<= 1
			if v&0x80000000 != origSign {
				overflow = true
			}
		} else {
			carryOut = v&1 != 0
			v = v>>1 | origSign
		}
	}

	touches := c.touches()
	if touches["L>"] {
		c.Status.SetLGT(v != 0)
	}
	if touches["A>"] {
		c.Status.SetAGT(v != 0 && v&0x80000000 == 0)
	}
	if touches["="] {
		c.Status.SetEQ(v == 0)
	}
	if touches["C"] {
		c.Status.SetCarry(carryOut)
	}
	if touches["O"] {
		c.Status.SetOverflow(overflow)
	}

	c.result = uint16(v >> 16)
	c.destVal = uint16(v)
	return nil
}

func (u extendedShiftUnit) WriteResults(c *Context) error {
	c.Mem.SetWord(c.source.Addr, c.result)
	c.Mem.SetWord(c.source.Addr+2, c.destVal)
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- format 14: memory bit test (TMB, TCMB, TSMB) ---

type bitTestKind int

const (
	bitTestOnly bitTestKind = iota
	bitTestClear
	bitTestSet
)

type bitTestUnit struct {
	unprivileged
	kind bitTestKind
}

// ValidateOpcode rejects reserved bits above the bit-number field in
// the second opcode word.
func (u bitTestUnit) ValidateOpcode(c *Context) error {
	if c.Inst.SecondWord()&0xFC00 != 0 {
		return &instruction.IllegalOpcodeError{Word: c.Inst.SecondWord()}
	}
	return nil
}

func (u bitTestUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	bitNum, err := c.Inst.GetParam("C")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	c.sourceVal = uint16(bitNum)
	c.destVal = c.source.Get(c.Mem)
	return nil
}

func (u bitTestUnit) Execute(c *Context) error {
	mask := uint16(0x8000) >> c.sourceVal // bit 0 is the MSB
	c.Status.SetEQ(c.destVal&mask != 0)
	switch u.kind {
	case bitTestClear:
		c.result = c.destVal &^ mask
	case bitTestSet:
		c.result = c.destVal | mask
	default:
		c.result = c.destVal
	}
	return nil
}

func (u bitTestUnit) WriteResults(c *Context) error {
	if u.kind != bitTestOnly {
		c.source.Set(c.Mem, c.result)
	}
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- format 19: move effective address (MOVA) ---

type moveAddressUnit struct {
	unprivileged
}

// ValidateOpcode rejects a second opcode word with its reserved top
// nibble set.
func (u moveAddressUnit) ValidateOpcode(c *Context) error {
	if c.Inst.SecondWord()&0xF000 != 0 {
		return &instruction.IllegalOpcodeError{Word: c.Inst.SecondWord()}
	}
	return nil
}

func (u moveAddressUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	td, err := c.Inst.GetParam("Td")
	if err != nil {
		return err
	}
	d, err := c.Inst.GetParam("D")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	dstImm, _ := c.Inst.ImmediateDestOperand()
	c.dest = Resolve(c.Mem, c.WP, td, d, dstImm, false)
	return nil
}

func (u moveAddressUnit) Execute(c *Context) error {
	c.result = c.source.EffectiveAddress(c.Mem)
	return nil
}

func (u moveAddressUnit) WriteResults(c *Context) error {
	c.dest.Set(c.Mem, c.result)
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	c.dest.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- format 17: alter register and jump (SRJ, ARJ) ---

type alterJumpUnit struct {
	baseUnit
	unprivileged
	subtract bool
}

func (u alterJumpUnit) FetchOperands(c *Context) error {
	w, err := c.Inst.GetParam("W")
	if err != nil {
		return err
	}
	c.dest = Operand{Addr: RegisterAddr(c.WP, w), IsRegister: true}
	c.destVal = c.dest.Get(c.Mem)
	return nil
}

func (u alterJumpUnit) Execute(c *Context) error {
	cnt, err := c.Inst.GetParam("C")
	if err != nil {
		return err
	}
	disp, err := c.Inst.GetParam("disp")
	if err != nil {
		return err
	}
	if u.subtract {
		c.result = c.destVal - uint16(cnt)
	} else {
		c.result = c.destVal + uint16(cnt)
	}
	c.PCOverridden = true
	c.NewPC = c.PC + 2 + uint16(int32(int8(byte(disp)))*2)
	return nil
}

func (u alterJumpUnit) WriteResults(c *Context) error {
	c.dest.Set(c.Mem, c.result)
	return nil
}

// --- format 6: signed multiply/divide into R0/R1 (MPYS, DIVS) ---

type signedMulDivUnit struct {
	baseUnit
	unprivileged
	multiply bool
}

func (u signedMulDivUnit) FetchOperands(c *Context) error {
	ts, err := c.Inst.GetParam("Ts")
	if err != nil {
		return err
	}
	s, err := c.Inst.GetParam("S")
	if err != nil {
		return err
	}
	srcImm, _ := c.Inst.ImmediateSourceOperand()
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, false)
	c.sourceVal = c.source.Get(c.Mem)
	return nil
}

func (u signedMulDivUnit) Execute(c *Context) error {
	touches := c.touches()
	if u.multiply {
		r0 := int32(int16(c.Mem.GetWord(RegisterAddr(c.WP, 0))))
		product := r0 * int32(int16(c.sourceVal))
		c.result = uint16(uint32(product) >> 16)
		c.destVal = uint16(uint32(product))
		if touches["L>"] {
			c.Status.SetLGT(product != 0)
		}
		if touches["A>"] {
			c.Status.SetAGT(product > 0)
		}
		if touches["="] {
			c.Status.SetEQ(product == 0)
		}
		return nil
	}

	divisor := int32(int16(c.sourceVal))
	if divisor == 0 {
		c.Status.SetOverflow(true)
		return nil
	}
	hi := uint32(c.Mem.GetWord(RegisterAddr(c.WP, 0)))
	lo := uint32(c.Mem.GetWord(RegisterAddr(c.WP, 1)))
	dividend := int32(hi<<16 | lo)
	quotient := dividend / divisor
	if quotient > 0x7FFF || quotient < -0x8000 {
		c.Status.SetOverflow(true)
		return nil
	}
	c.Status.SetOverflow(false)
	c.result = uint16(quotient)
	c.destVal = uint16(dividend % divisor)
	if touches["L>"] {
		c.Status.SetLGT(quotient != 0)
	}
	if touches["A>"] {
		c.Status.SetAGT(quotient > 0)
	}
	if touches["="] {
		c.Status.SetEQ(quotient == 0)
	}
	return nil
}

func (u signedMulDivUnit) WriteResults(c *Context) error {
	if c.Status.Overflow() && !u.multiply {
		c.source.CommitAutoIncrement(c.Mem, c.WP)
		return nil
	}
	c.Mem.SetWord(RegisterAddr(c.WP, 0), c.result)
	c.Mem.SetWord(RegisterAddr(c.WP, 1), c.destVal)
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// --- 990/12-derived string, field, and list instructions ---
//
// The catalog carries these for legality and assembly, but their
// microcoded semantics (interruptible string moves with checkpoint
// restart, bit-field extraction, linked-list search) are unmodeled
// hardware on this simulator: executing one raises the MID error, the
// same trap a real 99105 takes for them.

type unmodeledUnit struct {
	baseUnit
	unprivileged
}

func (u unmodeledUnit) FetchOperands(c *Context) error { return nil }

func (u unmodeledUnit) Execute(c *Context) error {
	return &instruction.MIDNotImplementedError{Word: c.Inst.WorkingOpcode()}
}

func (u unmodeledUnit) WriteResults(c *Context) error { return nil }

// --- 99110 float set ---
//
// These mnemonics are cataloged and validated for legality but their
// arithmetic is deferred; executing one raises
// FloatNotImplementedError.

// FloatNotImplementedError reports an attempt to execute a float
// mnemonic whose arithmetic has not been implemented.
type FloatNotImplementedError struct {
	Mnemonic string
}

func (e *FloatNotImplementedError) Error() string {
	return fmt.Sprintf("execunit: %s arithmetic is not implemented (MID stub)", e.Mnemonic)
}

type floatStubUnit struct {
	baseUnit
	unprivileged
}

func (u floatStubUnit) FetchOperands(c *Context) error { return nil }

func (u floatStubUnit) Execute(c *Context) error {
	return &FloatNotImplementedError{Mnemonic: c.Inst.Mnemonic()}
}

func (u floatStubUnit) WriteResults(c *Context) error { return nil }
