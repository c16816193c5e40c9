package execunit

// jumpUnit implements the format-2 conditional-jump family. disp is an
// 8-bit signed displacement in words; a taken jump sets NewPC to
// PC + 2 + 2*disp itself, where PC is the address of this instruction's
// opcode word. Flow's JUMP_RESOLVE phase adopts NewPC as is; a jump not
// taken leaves PC to Flow's normal advance.
type jumpUnit struct {
	baseUnit
	unprivileged
	cond func(c *Context) bool
}

func (u jumpUnit) FetchOperands(c *Context) error { return nil }

func (u jumpUnit) Execute(c *Context) error {
	if u.cond == nil || u.cond(c) {
		disp, err := c.Inst.GetParam("disp")
		if err != nil {
			return err
		}
		d := int8(byte(disp))
		c.PCOverridden = true
		c.NewPC = c.PC + 2 + uint16(int32(d)*2)
	}
	return nil
}

func (u jumpUnit) WriteResults(c *Context) error { return nil }

func condAlways(c *Context) bool { return true }
func condEQ(c *Context) bool     { return c.Status.EQ() }
func condNE(c *Context) bool     { return !c.Status.EQ() }
func condGT(c *Context) bool     { return c.Status.AGT() }
func condLT(c *Context) bool     { return !c.Status.AGT() && !c.Status.EQ() }
func condHE(c *Context) bool     { return c.Status.LGT() || c.Status.EQ() }
func condLE(c *Context) bool     { return !c.Status.AGT() || c.Status.EQ() }
func condH(c *Context) bool      { return c.Status.LGT() && !c.Status.EQ() }
func condL(c *Context) bool      { return !c.Status.LGT() && !c.Status.EQ() }
func condOC(c *Context) bool     { return c.Status.Carry() }
func condNC(c *Context) bool     { return !c.Status.Carry() }
func condNO(c *Context) bool     { return !c.Status.Overflow() }
func condOP(c *Context) bool     { return c.Status.Parity() }
