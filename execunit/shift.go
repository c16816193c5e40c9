package execunit

// shiftKind names the format-5 shift mnemonic's direction/fill rule.
type shiftKind int

const (
	shiftRightArith shiftKind = iota
	shiftRightLogical
	shiftLeftArith
	shiftRightCircular
)

// shiftUnit handles SRA, SRL, SLA, SRC. A count of 0 in the C field
// means "use R0's low 4 bits instead" (16 if that's also zero), the
// standard TMS9900 convention.
type shiftUnit struct {
	baseUnit
	unprivileged
	kind shiftKind
}

func (u shiftUnit) FetchOperands(c *Context) error {
	w, err := c.Inst.GetParam("W")
	if err != nil {
		return err
	}
	cnt, err := c.Inst.GetParam("C")
	if err != nil {
		return err
	}

	c.dest = Operand{Addr: RegisterAddr(c.WP, w), IsRegister: true}
	c.destVal = c.dest.Get(c.Mem)

	count := cnt
	if count == 0 {
		r0 := c.Mem.GetWord(RegisterAddr(c.WP, 0)) & 0xF
		if r0 == 0 {
			count = 16
		} else {
			count = int(r0)
		}
	}
	c.sourceVal = uint16(count)
	return nil
}

func (u shiftUnit) Execute(c *Context) error {
	v := c.destVal
	count := int(c.sourceVal)
	origSign := signBit(v, false)
	var carryOut, overflow bool

	for n := 0; n < count; n++ {
		switch u.kind {
		case shiftRightArith:
			carryOut = v&1 != 0
			v = v>>1 | (v & 0x8000)
		case shiftRightLogical:
			carryOut = v&1 != 0
			v = v >> 1
		case shiftLeftArith:
			carryOut = v&0x8000 != 0
			v = v << 1
			if signBit(v, false) != origSign {
				overflow = true
			}
		case shiftRightCircular:
			lsb := v & 1
			carryOut = lsb != 0
			v = v>>1 | lsb<<15
		}
	}

	c.result = v
	touches := c.touches()
	setResultFlags(c.Status, touches, c.result, false)
	if touches["C"] {
		c.Status.SetCarry(carryOut)
	}
	if touches["O"] {
		c.Status.SetOverflow(overflow)
	}
	return nil
}

func (u shiftUnit) WriteResults(c *Context) error {
	c.dest.Set(c.Mem, c.result)
	return nil
}
