// Package memory implements the CPU and PPU address-space decoders (the
// "buses") that connect the 6502 core and the PPU to the rest of the NES.
package memory

import "github.com/golang/glog"

// PPURegisters is the subset of the PPU the CPU bus dispatches register
// reads and writes to.
type PPURegisters interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, v uint8)
}

// ControllerPort is one of the two controller shift registers.
type ControllerPort interface {
	Read() uint8
	Strobe(set bool)
}

// PRGSpace is the cartridge surface the CPU bus dispatches $6000-$FFFF to.
type PRGSpace interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, v uint8)
}

// BadAddressError reports a GetPagePtr call outside the RAM window; it is a
// programmer error, never a runtime condition the NES can produce.
type BadAddressError struct{ Addr uint16 }

func (e *BadAddressError) Error() string { return "bad address for page pointer" }

// CPUBus decodes the 6502's 16-bit address space.
type CPUBus struct {
	ram [0x800]uint8

	ppu         PPURegisters
	controllers [2]ControllerPort
	prg         PRGSpace

	// dmaTrigger is invoked on a write to $4014 with the source page; the
	// top-level aggregate owns both the CPU (to apply the stall) and the PPU
	// (to perform the 256-byte copy), so it supplies this hook rather than
	// the bus reaching across components itself.
	dmaTrigger func(page uint8)
}

// NewCPUBus wires a CPU bus to its peers. ppu, prg and both controllers must
// be non-nil; dmaTrigger may be nil only in tests that don't exercise $4014.
func NewCPUBus(ppu PPURegisters, prg PRGSpace, c1, c2 ControllerPort, dmaTrigger func(page uint8)) *CPUBus {
	return &CPUBus{
		ppu:         ppu,
		prg:         prg,
		controllers: [2]ControllerPort{c1, c2},
		dmaTrigger:  dmaTrigger,
	}
}

// SetCartridge rebinds the PRG space, e.g. after loading a new cartridge.
func (b *CPUBus) SetCartridge(prg PRGSpace) { b.prg = prg }

// Read decodes a CPU address into RAM, PPU registers, the controller ports,
// or the cartridge's PRG space.
func (b *CPUBus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.ppu.ReadRegister(0x2000 + (addr & 0x0007))
	case addr == 0x4014:
		return 0 // OAM DMA register is write-only; reads are undefined
	case addr == 0x4016:
		return b.controllers[0].Read()
	case addr == 0x4017:
		return b.controllers[1].Read()
	case addr <= 0x4015:
		return 0 // APU not implemented
	case addr < 0x6000:
		glog.V(1).Infof("cpu bus: unmapped read at $%04X", addr)
		return 0
	default:
		return b.prg.ReadPRG(addr)
	}
}

// Write decodes a CPU address into RAM, PPU registers, the controller ports,
// or the cartridge's PRG space.
func (b *CPUBus) Write(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = v
	case addr < 0x4000:
		b.ppu.WriteRegister(0x2000+(addr&0x0007), v)
	case addr == 0x4014:
		if b.dmaTrigger != nil {
			b.dmaTrigger(v)
		}
	case addr == 0x4016:
		strobe := v&0x01 != 0
		b.controllers[0].Strobe(strobe)
		b.controllers[1].Strobe(strobe)
	case addr <= 0x4017:
		// $4000-$4013, $4015, $4017: APU registers, not implemented; ignored.
	case addr < 0x6000:
		glog.V(1).Infof("cpu bus: unmapped write at $%04X", addr)
	default:
		b.prg.WritePRG(addr, v)
	}
}

// GetPagePtr returns a direct slice into RAM for OAM DMA's bulk copy path.
// It only succeeds for addr < 0x2000.
func (b *CPUBus) GetPagePtr(addr uint16) ([]uint8, error) {
	if addr >= 0x2000 {
		return nil, &BadAddressError{Addr: addr}
	}
	base := addr & 0x07FF // addr is page-aligned, so this stays page-aligned under the mirror
	return b.ram[base : base+0x100], nil
}
