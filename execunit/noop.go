package execunit

// noOperandOp names the format-7 (no operand) mnemonic's effect.
type noOperandOp int

const (
	opIdle noOperandOp = iota
	opResetMask
	opReturnWP
	opClockOn
	opClockOff
	opLoadOrResetExternal
)

// noOperandUnit handles IDLE, RSET, RTWP, CKON, CKOF, LREX. CKON/CKOF/
// LREX touch hardware this simulator doesn't model (clock interrupt
// generation, the external-instruction bus) and are accepted as
// no-ops.
type noOperandUnit struct {
	baseUnit
	op   noOperandOp
	priv bool
}

func (u noOperandUnit) RequiresPrivilege() bool { return u.priv }
func (u noOperandUnit) FetchOperands(c *Context) error { return nil }

func (u noOperandUnit) Execute(c *Context) error {
	switch u.op {
	case opIdle:
		c.RequestsIdle = true
	case opResetMask:
		c.Status.SetMask(0)
	case opReturnWP:
		wp := c.WP
		newWP := c.Mem.GetWord(RegisterAddr(wp, 13))
		newPC := c.Mem.GetWord(RegisterAddr(wp, 14))
		newStatus := c.Mem.GetWord(RegisterAddr(wp, 15))
		c.WPOverridden = true
		c.NewWP = newWP
		c.PCOverridden = true
		c.NewPC = newPC
		c.Status.SetWord(newStatus)
	case opClockOn, opClockOff, opLoadOrResetExternal:
		// no-op: unmodeled hardware.
	}
	return nil
}

func (u noOperandUnit) WriteResults(c *Context) error { return nil }
