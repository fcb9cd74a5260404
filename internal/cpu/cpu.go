// Package cpu implements the 6502-derivative CPU core used by the NES.
package cpu

// Status register bit masks for the packed status byte {C,Z,I,D,B,U,V,N}.
const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7

	stackBase   = 0x0100
	resetVector = 0xFFFC
	nmiVector   = 0xFFFA
	irqVector   = 0xFFFE
)

// Bus is the memory interface the CPU executes against (the CPU bus).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// CPU is a MOS 6502-derivative core, stepped one cycle at a time.
type CPU struct {
	PC uint16
	SP uint8
	A, X, Y uint8

	C, Z, I, D, V, N bool // U (bit 5) and B (bit 4, register-less) are handled at push/pull time.

	bus Bus

	cycles     uint64
	skipCycles uint16 // cycles remaining before the next fetch/decode/execute

	pendingNMI bool
	pendingIRQ bool

	// dmaStall is added into skipCycles the moment it is observed, letting
	// a mid-instruction $4014 write (see memory.CPUBus) stall the CPU for
	// the OAM DMA's 513/514 cycles without the bus reaching back into CPU
	// internals directly (design notes section 9).
	dmaStall uint16
}

// New creates a CPU wired to bus. Call Reset before stepping.
func New(bus Bus) *CPU {
	return &CPU{bus: bus, SP: 0xFD}
}

// Reset performs the 6502 reset sequence.
func (c *CPU) Reset() {
	c.SP = 0xFD
	c.A, c.X, c.Y = 0, 0, 0
	c.C, c.Z, c.D, c.V, c.N = false, false, false, false, false
	c.I = true
	c.pendingNMI = false
	c.pendingIRQ = false
	c.cycles = 0
	c.skipCycles = 0
	c.dmaStall = 0

	lo := uint16(c.bus.Read(resetVector))
	hi := uint16(c.bus.Read(resetVector + 1))
	c.PC = hi<<8 | lo
}

// RaiseNMI latches a pending non-maskable interrupt.
func (c *CPU) RaiseNMI() { c.pendingNMI = true }

// RaiseIRQ latches a pending maskable interrupt line.
func (c *CPU) RaiseIRQ() { c.pendingIRQ = true }

// Stall adds n cycles to the CPU's stall budget, used by OAM DMA.
func (c *CPU) Stall(n uint16) { c.dmaStall += n }

// Cycles returns the total number of cycles executed since the last Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// Step advances the CPU by exactly one cycle.
// Most calls just decrement the stall counter left over from the previous
// instruction; a "real" fetch/decode/execute only happens once every
// instruction's worth of cycles.
func (c *CPU) Step() {
	c.cycles++

	if c.skipCycles > 1 {
		c.skipCycles--
		return
	}

	if c.pendingNMI {
		c.pendingNMI = false
		c.pendingIRQ = false
		c.serviceInterrupt(nmiVector, false)
		return
	}
	if c.pendingIRQ && !c.I {
		c.pendingIRQ = false
		c.serviceInterrupt(irqVector, false)
		return
	}

	opcode := c.bus.Read(c.PC)
	inst := decodeTable[opcode]

	addr, pageCrossed := c.operandAddress(inst.mode)
	extra := c.execute(opcode, addr, pageCrossed)
	if pageCrossed && inst.penalizesPageCross {
		extra++
	}

	total := uint16(inst.cycles) + uint16(extra) + c.dmaStall
	c.dmaStall = 0
	if total == 0 {
		total = 1
	}
	c.skipCycles = total
}

// serviceInterrupt pushes PC and status and jumps through vector. brk sets
// the pushed B flag; hardware NMI/IRQ service always pushes B=0.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	c.pushWord(c.PC)
	status := c.statusByte(brk)
	c.push(status)
	c.I = true
	lo := uint16(c.bus.Read(vector))
	hi := uint16(c.bus.Read(vector + 1))
	c.PC = hi<<8 | lo
	c.skipCycles = 7
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Read(stackBase + uint16(c.SP))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pullWord() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// statusByte packs the live flags into a pushable byte. U is always 1; B is
// 1 only for an explicit PHP/BRK push.
func (c *CPU) statusByte(brk bool) uint8 {
	var s uint8
	if c.C {
		s |= flagC
	}
	if c.Z {
		s |= flagZ
	}
	if c.I {
		s |= flagI
	}
	if c.D {
		s |= flagD
	}
	if brk {
		s |= flagB
	}
	s |= flagU
	if c.V {
		s |= flagV
	}
	if c.N {
		s |= flagN
	}
	return s
}

// setStatusByte unpacks a pulled byte into the live flags. B and U are
// forced to 0 in the live register regardless of what was pushed.
func (c *CPU) setStatusByte(s uint8) {
	c.C = s&flagC != 0
	c.Z = s&flagZ != 0
	c.I = s&flagI != 0
	c.D = s&flagD != 0
	c.V = s&flagV != 0
	c.N = s&flagN != 0
}
