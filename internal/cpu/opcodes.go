package cpu

// instrInfo is one row of the 256-entry decode table.
type instrInfo struct {
	mode               AddressingMode
	cycles             uint8
	penalizesPageCross bool // read-type indexed addressing pays +1 on page cross; stores never do
}

var decodeTable [256]instrInfo

func op(code uint8, mode AddressingMode, cycles uint8, penalizesPageCross bool) {
	decodeTable[code] = instrInfo{mode: mode, cycles: cycles, penalizesPageCross: penalizesPageCross}
}

func init() {
	// Every slot defaults to a 2-cycle implied NOP; official and known
	// unofficial opcodes below override it. This is what makes every
	// unassigned opcode a NOP-equivalent consuming its slot's base cycles.
	for i := range decodeTable {
		decodeTable[i] = instrInfo{mode: Implied, cycles: 2}
	}

	// Load/Store
	op(0xA9, Immediate, 2, false)
	op(0xA5, ZeroPage, 3, false)
	op(0xB5, ZeroPageX, 4, false)
	op(0xAD, Absolute, 4, false)
	op(0xBD, AbsoluteX, 4, true)
	op(0xB9, AbsoluteY, 4, true)
	op(0xA1, IndexedIndirect, 6, false)
	op(0xB1, IndirectIndexed, 5, true)

	op(0xA2, Immediate, 2, false)
	op(0xA6, ZeroPage, 3, false)
	op(0xB6, ZeroPageY, 4, false)
	op(0xAE, Absolute, 4, false)
	op(0xBE, AbsoluteY, 4, true)

	op(0xA0, Immediate, 2, false)
	op(0xA4, ZeroPage, 3, false)
	op(0xB4, ZeroPageX, 4, false)
	op(0xAC, Absolute, 4, false)
	op(0xBC, AbsoluteX, 4, true)

	op(0x85, ZeroPage, 3, false)
	op(0x95, ZeroPageX, 4, false)
	op(0x8D, Absolute, 4, false)
	op(0x9D, AbsoluteX, 5, false)
	op(0x99, AbsoluteY, 5, false)
	op(0x81, IndexedIndirect, 6, false)
	op(0x91, IndirectIndexed, 6, false)

	op(0x86, ZeroPage, 3, false)
	op(0x96, ZeroPageY, 4, false)
	op(0x8E, Absolute, 4, false)

	op(0x84, ZeroPage, 3, false)
	op(0x94, ZeroPageX, 4, false)
	op(0x8C, Absolute, 4, false)

	// Arithmetic
	op(0x69, Immediate, 2, false)
	op(0x65, ZeroPage, 3, false)
	op(0x75, ZeroPageX, 4, false)
	op(0x6D, Absolute, 4, false)
	op(0x7D, AbsoluteX, 4, true)
	op(0x79, AbsoluteY, 4, true)
	op(0x61, IndexedIndirect, 6, false)
	op(0x71, IndirectIndexed, 5, true)

	op(0xE9, Immediate, 2, false)
	op(0xEB, Immediate, 2, false) // unofficial SBC duplicate, same timing
	op(0xE5, ZeroPage, 3, false)
	op(0xF5, ZeroPageX, 4, false)
	op(0xED, Absolute, 4, false)
	op(0xFD, AbsoluteX, 4, true)
	op(0xF9, AbsoluteY, 4, true)
	op(0xE1, IndexedIndirect, 6, false)
	op(0xF1, IndirectIndexed, 5, true)

	// Logical
	op(0x29, Immediate, 2, false)
	op(0x25, ZeroPage, 3, false)
	op(0x35, ZeroPageX, 4, false)
	op(0x2D, Absolute, 4, false)
	op(0x3D, AbsoluteX, 4, true)
	op(0x39, AbsoluteY, 4, true)
	op(0x21, IndexedIndirect, 6, false)
	op(0x31, IndirectIndexed, 5, true)

	op(0x09, Immediate, 2, false)
	op(0x05, ZeroPage, 3, false)
	op(0x15, ZeroPageX, 4, false)
	op(0x0D, Absolute, 4, false)
	op(0x1D, AbsoluteX, 4, true)
	op(0x19, AbsoluteY, 4, true)
	op(0x01, IndexedIndirect, 6, false)
	op(0x11, IndirectIndexed, 5, true)

	op(0x49, Immediate, 2, false)
	op(0x45, ZeroPage, 3, false)
	op(0x55, ZeroPageX, 4, false)
	op(0x4D, Absolute, 4, false)
	op(0x5D, AbsoluteX, 4, true)
	op(0x59, AbsoluteY, 4, true)
	op(0x41, IndexedIndirect, 6, false)
	op(0x51, IndirectIndexed, 5, true)

	// Shift/rotate
	op(0x0A, Accumulator, 2, false)
	op(0x06, ZeroPage, 5, false)
	op(0x16, ZeroPageX, 6, false)
	op(0x0E, Absolute, 6, false)
	op(0x1E, AbsoluteX, 7, false)

	op(0x4A, Accumulator, 2, false)
	op(0x46, ZeroPage, 5, false)
	op(0x56, ZeroPageX, 6, false)
	op(0x4E, Absolute, 6, false)
	op(0x5E, AbsoluteX, 7, false)

	op(0x2A, Accumulator, 2, false)
	op(0x26, ZeroPage, 5, false)
	op(0x36, ZeroPageX, 6, false)
	op(0x2E, Absolute, 6, false)
	op(0x3E, AbsoluteX, 7, false)

	op(0x6A, Accumulator, 2, false)
	op(0x66, ZeroPage, 5, false)
	op(0x76, ZeroPageX, 6, false)
	op(0x6E, Absolute, 6, false)
	op(0x7E, AbsoluteX, 7, false)

	// Compare
	op(0xC9, Immediate, 2, false)
	op(0xC5, ZeroPage, 3, false)
	op(0xD5, ZeroPageX, 4, false)
	op(0xCD, Absolute, 4, false)
	op(0xDD, AbsoluteX, 4, true)
	op(0xD9, AbsoluteY, 4, true)
	op(0xC1, IndexedIndirect, 6, false)
	op(0xD1, IndirectIndexed, 5, true)

	op(0xE0, Immediate, 2, false)
	op(0xE4, ZeroPage, 3, false)
	op(0xEC, Absolute, 4, false)

	op(0xC0, Immediate, 2, false)
	op(0xC4, ZeroPage, 3, false)
	op(0xCC, Absolute, 4, false)

	// Inc/dec
	op(0xE6, ZeroPage, 5, false)
	op(0xF6, ZeroPageX, 6, false)
	op(0xEE, Absolute, 6, false)
	op(0xFE, AbsoluteX, 7, false)

	op(0xC6, ZeroPage, 5, false)
	op(0xD6, ZeroPageX, 6, false)
	op(0xCE, Absolute, 6, false)
	op(0xDE, AbsoluteX, 7, false)

	op(0xE8, Implied, 2, false)
	op(0xCA, Implied, 2, false)
	op(0xC8, Implied, 2, false)
	op(0x88, Implied, 2, false)

	// Transfers
	op(0xAA, Implied, 2, false)
	op(0x8A, Implied, 2, false)
	op(0xA8, Implied, 2, false)
	op(0x98, Implied, 2, false)
	op(0xBA, Implied, 2, false)
	op(0x9A, Implied, 2, false)

	// Stack
	op(0x48, Implied, 3, false)
	op(0x68, Implied, 4, false)
	op(0x08, Implied, 3, false)
	op(0x28, Implied, 4, false)

	// Flags
	op(0x18, Implied, 2, false)
	op(0x38, Implied, 2, false)
	op(0x58, Implied, 2, false)
	op(0x78, Implied, 2, false)
	op(0xB8, Implied, 2, false)
	op(0xD8, Implied, 2, false)
	op(0xF8, Implied, 2, false)

	// Control flow
	op(0x4C, Absolute, 3, false)
	op(0x6C, Indirect, 5, false)
	op(0x20, Absolute, 6, false)
	op(0x60, Implied, 6, false)
	op(0x40, Implied, 6, false)

	// Branches (their own +1/+2 logic lives in the branch functions)
	op(0x90, Relative, 2, false)
	op(0xB0, Relative, 2, false)
	op(0xD0, Relative, 2, false)
	op(0xF0, Relative, 2, false)
	op(0x10, Relative, 2, false)
	op(0x30, Relative, 2, false)
	op(0x50, Relative, 2, false)
	op(0x70, Relative, 2, false)

	// Misc
	op(0x24, ZeroPage, 3, false)
	op(0x2C, Absolute, 4, false)
	op(0xEA, Implied, 2, false)
	op(0x00, Implied, 7, false)

	// Unofficial NOPs that real software relies on for timing: kept at their
	// documented byte/cycle cost even though they now just advance PC.
	for _, c := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		op(c, Implied, 2, false)
	}
	for _, c := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		op(c, Immediate, 2, false)
	}
	for _, c := range []uint8{0x04, 0x44, 0x64} {
		op(c, ZeroPage, 3, false)
	}
	for _, c := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		op(c, ZeroPageX, 4, false)
	}
	op(0x0C, Absolute, 4, false)
	for _, c := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		op(c, AbsoluteX, 4, true)
	}
}

// execute dispatches opcode against addr, returning any extra cycles beyond
// the decode table's base count (branch taken/page-cross bonuses). Opcodes
// with no case below — every non-assigned 6502 slot, including the
// undocumented read-modify-write combos (LAX/SAX/DCP/ISB/SLO/RLA/SRE/RRA) —
// fall through to the default NOP.
func (c *CPU) execute(opcode uint8, addr uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		return c.lda(addr)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		return c.ldx(addr)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		return c.ldy(addr)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		return c.sta(addr)
	case 0x86, 0x96, 0x8E:
		return c.stx(addr)
	case 0x84, 0x94, 0x8C:
		return c.sty(addr)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		return c.adc(addr)
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		return c.sbc(addr)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		return c.and(addr)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		return c.ora(addr)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		return c.eor(addr)

	case 0x0A:
		c.C = c.A&0x80 != 0
		c.A <<= 1
		c.setZN(c.A)
		return 0
	case 0x06, 0x16, 0x0E, 0x1E:
		return c.asl(addr)
	case 0x4A:
		c.C = c.A&0x01 != 0
		c.A >>= 1
		c.setZN(c.A)
		return 0
	case 0x46, 0x56, 0x4E, 0x5E:
		return c.lsr(addr)
	case 0x2A:
		old := c.C
		c.C = c.A&0x80 != 0
		c.A <<= 1
		if old {
			c.A |= 0x01
		}
		c.setZN(c.A)
		return 0
	case 0x26, 0x36, 0x2E, 0x3E:
		return c.rol(addr)
	case 0x6A:
		old := c.C
		c.C = c.A&0x01 != 0
		c.A >>= 1
		if old {
			c.A |= 0x80
		}
		c.setZN(c.A)
		return 0
	case 0x66, 0x76, 0x6E, 0x7E:
		return c.ror(addr)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		return c.cmp(addr)
	case 0xE0, 0xE4, 0xEC:
		return c.cpx(addr)
	case 0xC0, 0xC4, 0xCC:
		return c.cpy(addr)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		return c.inc(addr)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		return c.dec(addr)
	case 0xE8:
		c.X++
		c.setZN(c.X)
		return 0
	case 0xCA:
		c.X--
		c.setZN(c.X)
		return 0
	case 0xC8:
		c.Y++
		c.setZN(c.Y)
		return 0
	case 0x88:
		c.Y--
		c.setZN(c.Y)
		return 0

	case 0xAA:
		c.X = c.A
		c.setZN(c.X)
		return 0
	case 0x8A:
		c.A = c.X
		c.setZN(c.A)
		return 0
	case 0xA8:
		c.Y = c.A
		c.setZN(c.Y)
		return 0
	case 0x98:
		c.A = c.Y
		c.setZN(c.A)
		return 0
	case 0xBA:
		c.X = c.SP
		c.setZN(c.X)
		return 0
	case 0x9A:
		c.SP = c.X
		return 0

	case 0x48:
		c.push(c.A)
		return 0
	case 0x68:
		c.A = c.pull()
		c.setZN(c.A)
		return 0
	case 0x08:
		c.push(c.statusByte(true))
		return 0
	case 0x28:
		c.setStatusByte(c.pull())
		return 0

	case 0x18:
		c.C = false
		return 0
	case 0x38:
		c.C = true
		return 0
	case 0x58:
		c.I = false
		return 0
	case 0x78:
		c.I = true
		return 0
	case 0xB8:
		c.V = false
		return 0
	case 0xD8:
		c.D = false
		return 0
	case 0xF8:
		c.D = true
		return 0

	case 0x4C, 0x6C:
		c.PC = addr
		return 0
	case 0x20:
		c.pushWord(c.PC - 1)
		c.PC = addr
		return 0
	case 0x60:
		c.PC = c.pullWord() + 1
		return 0
	case 0x40:
		c.setStatusByte(c.pull())
		c.PC = c.pullWord()
		return 0

	case 0x90:
		return c.branch(!c.C, addr, pageCrossed)
	case 0xB0:
		return c.branch(c.C, addr, pageCrossed)
	case 0xD0:
		return c.branch(!c.Z, addr, pageCrossed)
	case 0xF0:
		return c.branch(c.Z, addr, pageCrossed)
	case 0x10:
		return c.branch(!c.N, addr, pageCrossed)
	case 0x30:
		return c.branch(c.N, addr, pageCrossed)
	case 0x50:
		return c.branch(!c.V, addr, pageCrossed)
	case 0x70:
		return c.branch(c.V, addr, pageCrossed)

	case 0x24, 0x2C:
		return c.bit(addr)
	case 0x00:
		c.PC++ // BRK's signature byte, skipped on top of Implied's opcode-byte advance
		c.serviceInterrupt(irqVector, true)
		return 0

	default:
		return 0 // NOP-equivalent: official NOPs and every undocumented opcode
	}
}

// branch applies the relative jump and returns the +1/+2 cycle bonus for a
// taken branch, with an extra +1 if it crosses a page.
func (c *CPU) branch(condition bool, target uint16, pageCrossed bool) uint8 {
	if !condition {
		return 0
	}
	c.PC = target
	if pageCrossed {
		return 2
	}
	return 1
}

func (c *CPU) lda(addr uint16) uint8 { c.A = c.bus.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) ldx(addr uint16) uint8 { c.X = c.bus.Read(addr); c.setZN(c.X); return 0 }
func (c *CPU) ldy(addr uint16) uint8 { c.Y = c.bus.Read(addr); c.setZN(c.Y); return 0 }

func (c *CPU) sta(addr uint16) uint8 { c.bus.Write(addr, c.A); return 0 }
func (c *CPU) stx(addr uint16) uint8 { c.bus.Write(addr, c.X); return 0 }
func (c *CPU) sty(addr uint16) uint8 { c.bus.Write(addr, c.Y); return 0 }

// adc implements A = A + M + C with the standard 6502 overflow formula.
// sbc reuses it with the operand's bits inverted.
func (c *CPU) adc(addr uint16) uint8 {
	m := c.bus.Read(addr)
	c.addWithCarry(m)
	return 0
}

func (c *CPU) sbc(addr uint16) uint8 {
	m := c.bus.Read(addr)
	c.addWithCarry(m ^ 0xFF)
	return 0
}

func (c *CPU) addWithCarry(m uint8) {
	var carry uint16
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(m) + carry
	result := uint8(sum)
	c.V = (c.A^m)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.C = sum > 0xFF
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) and(addr uint16) uint8 { c.A &= c.bus.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) ora(addr uint16) uint8 { c.A |= c.bus.Read(addr); c.setZN(c.A); return 0 }
func (c *CPU) eor(addr uint16) uint8 { c.A ^= c.bus.Read(addr); c.setZN(c.A); return 0 }

func (c *CPU) asl(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.C = v&0x80 != 0
	v <<= 1
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) lsr(addr uint16) uint8 {
	v := c.bus.Read(addr)
	c.C = v&0x01 != 0
	v >>= 1
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) rol(addr uint16) uint8 {
	v := c.bus.Read(addr)
	old := c.C
	c.C = v&0x80 != 0
	v <<= 1
	if old {
		v |= 0x01
	}
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) ror(addr uint16) uint8 {
	v := c.bus.Read(addr)
	old := c.C
	c.C = v&0x01 != 0
	v >>= 1
	if old {
		v |= 0x80
	}
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) compare(reg, m uint8) {
	c.C = reg >= m
	c.setZN(reg - m)
}

func (c *CPU) cmp(addr uint16) uint8 { c.compare(c.A, c.bus.Read(addr)); return 0 }
func (c *CPU) cpx(addr uint16) uint8 { c.compare(c.X, c.bus.Read(addr)); return 0 }
func (c *CPU) cpy(addr uint16) uint8 { c.compare(c.Y, c.bus.Read(addr)); return 0 }

func (c *CPU) inc(addr uint16) uint8 {
	v := c.bus.Read(addr) + 1
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

func (c *CPU) dec(addr uint16) uint8 {
	v := c.bus.Read(addr) - 1
	c.bus.Write(addr, v)
	c.setZN(v)
	return 0
}

// bit sets Z from A&M, and N/V directly from M's bits 7/6 — the BIT
// instruction's well-known quirk of not touching A itself.
func (c *CPU) bit(addr uint16) uint8 {
	m := c.bus.Read(addr)
	c.Z = (c.A & m) == 0
	c.N = m&0x80 != 0
	c.V = m&0x40 != 0
	return 0
}
