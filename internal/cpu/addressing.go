package cpu

// AddressingMode identifies how an instruction computes its operand address.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

func (c *CPU) fetch8() uint8 {
	v := c.bus.Read(c.PC + 1)
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.bus.Read(c.PC + 1))
	hi := uint16(c.bus.Read(c.PC + 2))
	return hi<<8 | lo
}

// readWordZeroPage wraps within the zero page.
func (c *CPU) readWordZeroPage(zp uint8) uint16 {
	lo := uint16(c.bus.Read(uint16(zp)))
	hi := uint16(c.bus.Read(uint16(zp + 1)))
	return hi<<8 | lo
}

// operandAddress computes the effective address for mode, advancing PC past
// the whole instruction (opcode byte included) and reporting whether the
// addressing-mode computation crossed a page boundary.
func (c *CPU) operandAddress(mode AddressingMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case Implied, Accumulator:
		c.PC++
		return 0, false

	case Immediate:
		addr = c.PC + 1
		c.PC += 2
		return addr, false

	case ZeroPage:
		addr = uint16(c.fetch8())
		c.PC += 2
		return addr, false

	case ZeroPageX:
		addr = uint16(c.fetch8()+c.X) & 0xFF
		c.PC += 2
		return addr, false

	case ZeroPageY:
		addr = uint16(c.fetch8()+c.Y) & 0xFF
		c.PC += 2
		return addr, false

	case Relative:
		offset := int8(c.fetch8())
		base := c.PC + 2
		target := uint16(int32(base) + int32(offset))
		c.PC = base
		return target, (base & 0xFF00) != (target & 0xFF00)

	case Absolute:
		addr = c.fetch16()
		c.PC += 3
		return addr, false

	case AbsoluteX:
		base := c.fetch16()
		addr = base + uint16(c.X)
		c.PC += 3
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case AbsoluteY:
		base := c.fetch16()
		addr = base + uint16(c.Y)
		c.PC += 3
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case Indirect: // JMP (abs), with the page-wrap bug
		ptr := c.fetch16()
		var lo, hi uint16
		lo = uint16(c.bus.Read(ptr))
		if ptr&0x00FF == 0x00FF {
			hi = uint16(c.bus.Read(ptr & 0xFF00))
		} else {
			hi = uint16(c.bus.Read(ptr + 1))
		}
		c.PC += 3
		return hi<<8 | lo, false

	case IndexedIndirect:
		zp := c.fetch8() + c.X
		addr = c.readWordZeroPage(zp)
		c.PC += 2
		return addr, false

	case IndirectIndexed:
		zp := c.fetch8()
		base := c.readWordZeroPage(zp)
		addr = base + uint16(c.Y)
		c.PC += 2
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	default:
		c.PC++
		return 0, false
	}
}
