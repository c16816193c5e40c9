package execunit

// generalOp names the arithmetic/logic performed by a format-1
// (general two-operand) mnemonic.
type generalOp int

const (
	opMove generalOp = iota
	opAdd
	opSubtract
	opCompare
	opSetOnes  // SOC: dest |= src
	opSetZeros // SZC: dest &= ^src
)

// generalUnit handles the twelve format-1 mnemonics (the add,
// subtract, move, compare, and boolean families): two operands
// resolved through Ts/S and Td/D, one result written back except for
// compare.
type generalUnit struct {
	baseUnit
	unprivileged
	op     generalOp
	byteOp bool
}

func (u generalUnit) FetchOperands(c *Context) error {
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
	c.source = Resolve(c.Mem, c.WP, ts, s, srcImm, u.byteOp)
	c.sourceVal = c.source.Get(c.Mem)

	dstImm, _ := c.Inst.ImmediateDestOperand()
	c.dest = Resolve(c.Mem, c.WP, td, d, dstImm, u.byteOp)
	c.destVal = c.dest.Get(c.Mem)
	return nil
}

func (u generalUnit) Execute(c *Context) error {
	src, dst := c.sourceVal, c.destVal
	touches := c.touches()

	switch u.op {
	case opMove:
		c.result = src
		setResultFlags(c.Status, touches, c.result, u.byteOp)
	case opAdd:
		c.result = truncate(dst+src, u.byteOp)
		setResultFlags(c.Status, touches, c.result, u.byteOp)
		if touches["C"] {
			c.Status.SetCarry(calculateAddCarry(dst, src, c.result, u.byteOp))
		}
		if touches["O"] {
			c.Status.SetOverflow(calculateAddOverflow(dst, src, c.result, u.byteOp))
		}
	case opSubtract:
		c.result = truncate(dst-src, u.byteOp)
		setResultFlags(c.Status, touches, c.result, u.byteOp)
		if touches["C"] {
			c.Status.SetCarry(calculateSubCarry(dst, src, u.byteOp))
		}
		if touches["O"] {
			c.Status.SetOverflow(calculateSubOverflow(dst, src, c.result, u.byteOp))
		}
	case opCompare:
		setCompareFlags(c.Status, touches, src, dst, u.byteOp)
	case opSetOnes:
		c.result = truncate(dst|src, u.byteOp)
		setResultFlags(c.Status, touches, c.result, u.byteOp)
	case opSetZeros:
		c.result = truncate(dst&^src, u.byteOp)
		setResultFlags(c.Status, touches, c.result, u.byteOp)
	}
	return nil
}

func (u generalUnit) WriteResults(c *Context) error {
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	if u.op != opCompare {
		c.dest.Set(c.Mem, c.result)
	}
	c.dest.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

func truncate(v uint16, byteOp bool) uint16 {
	if byteOp {
		return v & 0xFF
	}
	return v
}
