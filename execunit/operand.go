package execunit

import "github.com/cecapps/tms99105sim/memstate"

// Addressing-mode digits for Ts/Td.
const (
	ModeRegisterDirect   = 0
	ModeRegisterIndirect = 1
	ModeSymbolicIndexed  = 2
	ModeIndirectAutoInc  = 3
)

// RegisterAddr returns the memory address of register n within the
// workspace at wp: Rn lives at WP+2n.
func RegisterAddr(wp uint16, n int) uint16 {
	return wp + uint16(2*n)
}

// Operand is a resolved addressing-mode result.
type Operand struct {
	Addr       uint16
	IsRegister bool
	ByteOp     bool
	autoIncReg int
	autoInc    bool
}

// Resolve computes the effective address for one operand.
// immediateWord is only
// consulted for ModeSymbolicIndexed.
func Resolve(mem *memstate.Memory, wp uint16, mode, reg int, immediateWord uint16, byteOp bool) Operand {
	switch mode {
	case ModeRegisterDirect:
		return Operand{Addr: RegisterAddr(wp, reg), IsRegister: true, ByteOp: byteOp}
	case ModeRegisterIndirect:
		return Operand{Addr: mem.GetWord(RegisterAddr(wp, reg)), ByteOp: byteOp}
	case ModeSymbolicIndexed:
		addr := immediateWord
		if reg != 0 {
			addr += mem.GetWord(RegisterAddr(wp, reg))
		}
		return Operand{Addr: addr, ByteOp: byteOp}
	default: // ModeIndirectAutoInc
		addr := mem.GetWord(RegisterAddr(wp, reg))
		return Operand{Addr: addr, ByteOp: byteOp, autoIncReg: reg, autoInc: true}
	}
}

// Get reads op's current value. Register-direct byte operands read
// the register's high byte, matching real TMS9900 byte-op addressing.
func (op Operand) Get(mem *memstate.Memory) uint16 {
	if op.ByteOp {
		if op.IsRegister {
			return mem.GetWord(op.Addr) >> 8
		}
		return uint16(mem.GetByte(op.Addr))
	}
	return mem.GetWord(op.Addr)
}

// Set writes v back to op's location. Register-direct byte operands
// replace only the register's high byte.
func (op Operand) Set(mem *memstate.Memory, v uint16) {
	if op.ByteOp {
		if op.IsRegister {
			word := mem.GetWord(op.Addr)
			mem.SetWord(op.Addr, (v&0xFF)<<8|(word&0x00FF))
			return
		}
		mem.SetByte(op.Addr, byte(v))
		return
	}
	mem.SetWord(op.Addr, v)
}

// EffectiveAddress returns the address this operand refers to as a
// branch/XOP target: the register's value for register-direct mode
// (the register's storage location holds the target address, not the
// target itself), or the already-resolved address for every other
// mode. B, BL, BLWP, BIND, XOP, and MOVA use this instead of Get, which would
// perform one further memory dereference.
func (op Operand) EffectiveAddress(mem *memstate.Memory) uint16 {
	if op.IsRegister {
		return mem.GetWord(op.Addr)
	}
	return op.Addr
}

// CommitAutoIncrement applies the post-increment step for
// ModeIndirectAutoInc operands (by 1 for byte ops, 2 for word ops). It
// is a no-op for any other mode, so callers may call it unconditionally
// after an operand has been fully used.
func (op Operand) CommitAutoIncrement(mem *memstate.Memory, wp uint16) {
	if !op.autoInc {
		return
	}
	step := uint16(2)
	if op.ByteOp {
		step = 1
	}
	addr := RegisterAddr(wp, op.autoIncReg)
	mem.SetWord(addr, mem.GetWord(addr)+step)
}
