package execunit

// branchKind distinguishes the four format-6 branch mnemonics that
// transfer control instead of computing a value.
type branchKind int

const (
	branchPlain     branchKind = iota // B: PC = effective address
	branchLink                        // BL: R11 = return address, then PC = effective address
	branchWorkspace                   // BLWP: new WP/PC loaded from the effective address and address+2
	branchIndirect                    // BIND: PC = word at the effective address
)

// branchUnit implements B, BL, BLWP, and the 99105's BIND. Unlike the
// arithmetic single-operand family, these never write back to the
// operand; they override PC (and, for BLWP, WP) directly.
type branchUnit struct {
	baseUnit
	unprivileged
	kind branchKind
}

func (u branchUnit) FetchOperands(c *Context) error {
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
	return nil
}

func (u branchUnit) Execute(c *Context) error {
	target := c.source.EffectiveAddress(c.Mem)

	switch u.kind {
	case branchPlain:
		c.PCOverridden = true
		c.NewPC = target
	case branchLink:
		c.Mem.SetWord(RegisterAddr(c.WP, 11), c.ReturnAddr)
		c.PCOverridden = true
		c.NewPC = target
	case branchWorkspace:
		newWP := c.Mem.GetWord(target)
		newPC := c.Mem.GetWord(target + 2)
		c.Mem.SetWord(RegisterAddr(newWP, 13), c.WP)
		c.Mem.SetWord(RegisterAddr(newWP, 14), c.ReturnAddr)
		c.Mem.SetWord(RegisterAddr(newWP, 15), c.Status.Word())
		c.WPOverridden = true
		c.NewWP = newWP
		c.PCOverridden = true
		c.NewPC = newPC
	case branchIndirect:
		c.PCOverridden = true
		c.NewPC = c.Mem.GetWord(target)
	}
	return nil
}

func (u branchUnit) WriteResults(c *Context) error {
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// xopUnit implements XOP (format 9): a software trap through the
// vector at >0040 + 4*D, performing the BLWP-style context switch with
// the source operand's effective address handed to the new workspace
// in R11 and the X status bit raised.
type xopUnit struct {
	baseUnit
	unprivileged
}

func (u xopUnit) FetchOperands(c *Context) error {
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
	return nil
}

func (u xopUnit) Execute(c *Context) error {
	vector, err := c.Inst.GetParam("D")
	if err != nil {
		return err
	}
	vecAddr := uint16(0x0040 + 4*vector)
	newWP := c.Mem.GetWord(vecAddr)
	newPC := c.Mem.GetWord(vecAddr + 2)

	c.Mem.SetWord(RegisterAddr(newWP, 11), c.source.EffectiveAddress(c.Mem))
	c.Mem.SetWord(RegisterAddr(newWP, 13), c.WP)
	c.Mem.SetWord(RegisterAddr(newWP, 14), c.ReturnAddr)
	c.Mem.SetWord(RegisterAddr(newWP, 15), c.Status.Word())
	c.Status.SetXOP(true)

	c.WPOverridden = true
	c.NewWP = newWP
	c.PCOverridden = true
	c.NewPC = newPC
	return nil
}

func (u xopUnit) WriteResults(c *Context) error {
	c.source.CommitAutoIncrement(c.Mem, c.WP)
	return nil
}

// blskUnit implements BLSK (format 8 shape): push the return address
// onto the stack register's downward-growing stack, then branch to the
// immediate operand.
type blskUnit struct {
	baseUnit
	unprivileged
}

func (u blskUnit) FetchOperands(c *Context) error { return nil }

func (u blskUnit) Execute(c *Context) error {
	w, err := c.Inst.GetParam("W")
	if err != nil {
		return err
	}
	imm, _ := c.Inst.ImmediateOperand()

	stackAddr := RegisterAddr(c.WP, w)
	sp := c.Mem.GetWord(stackAddr) - 2
	c.Mem.SetWord(stackAddr, sp)
	c.Mem.SetWord(sp, c.ReturnAddr)

	c.PCOverridden = true
	c.NewPC = imm
	return nil
}

func (u blskUnit) WriteResults(c *Context) error { return nil }
