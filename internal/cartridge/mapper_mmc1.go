package cartridge

// mmc1 implements mapper 1 (MMC1/SxROM): a serial shift register accepts one
// bit per write to any $8000-$FFFF address; on the fifth write the 5-bit
// value is latched into one of four internal registers chosen by the
// address's bit 13/14, and the shift register resets. A write with the high
// bit set resets the shift register and forces PRG bank mode 3 regardless of
// bit position. Grounded on the control/shift-register layout documented in
// _examples/other_examples/ed831e32_hkhalsa-helloworld__mapper-mapper_1.go.go.
type mmc1 struct {
	cart *Cartridge

	shift    uint8
	shiftLen uint8

	control uint8 // CPPMM: chr mode (bit4), prg mode (bit3-2), mirroring (bit1-0)
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgBanks uint8
	chrBanks uint8
}

func newMMC1(cart *Cartridge) Mapper {
	m := &mmc1{
		cart:     cart,
		control:  0x0C, // power-on: PRG mode 3 (fix last bank at $C000)
		prgBanks: uint8(len(cart.prgROM) / prgBankSize),
	}
	if len(cart.chrROM) >= chrBankSize {
		m.chrBanks = uint8(len(cart.chrROM) / (chrBankSize / 2))
	}
	return m
}

func (m *mmc1) MirrorMode() MirrorMode {
	switch m.control & 0x03 {
	case 0:
		return MirrorSingleScreen0
	case 1:
		return MirrorSingleScreen1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) prgBankMode() uint8 { return (m.control >> 2) & 0x03 }
func (m *mmc1) chrBankMode() uint8 { return (m.control >> 4) & 0x01 }

func (m *mmc1) ReadPRG(addr uint16) uint8 {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			return m.cart.readSRAM(addr)
		}
		return 0
	}

	bank := m.prgBank & 0x0F
	switch m.prgBankMode() {
	case 0, 1: // 32 KiB switch, ignoring the low bank bit
		base := uint32(bank&0xFE) * prgBankSize
		return m.cart.prgROM[base+uint32(addr-0x8000)]
	case 2: // fix first bank at $8000, switch 16 KiB at $C000
		if addr < 0xC000 {
			return m.cart.prgROM[addr-0x8000]
		}
		base := uint32(bank) * prgBankSize
		return m.cart.prgROM[base+uint32(addr-0xC000)]
	default: // 3: fix last bank at $C000, switch 16 KiB at $8000
		if addr >= 0xC000 {
			lastBank := uint32(m.prgBanks-1) * prgBankSize
			return m.cart.prgROM[lastBank+uint32(addr-0xC000)]
		}
		base := uint32(bank) * prgBankSize
		return m.cart.prgROM[base+uint32(addr-0x8000)]
	}
}

func (m *mmc1) WritePRG(addr uint16, v uint8) {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			m.cart.writeSRAM(addr, v)
		}
		return
	}

	if v&0x80 != 0 {
		m.shift = 0
		m.shiftLen = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (v & 1) << m.shiftLen
	m.shiftLen++
	if m.shiftLen < 5 {
		return
	}

	value := m.shift
	m.shift = 0
	m.shiftLen = 0

	switch {
	case addr < 0xA000:
		m.control = value
	case addr < 0xC000:
		m.chrBank0 = value
	case addr < 0xE000:
		m.chrBank1 = value
	default:
		m.prgBank = value & 0x0F
	}
}

func (m *mmc1) ReadCHR(addr uint16) uint8 {
	offset := m.chrOffset(addr)
	if int(offset) < len(m.cart.chrROM) {
		return m.cart.chrROM[offset]
	}
	return 0
}

func (m *mmc1) WriteCHR(addr uint16, v uint8) {
	if !m.cart.chrRAM {
		return
	}
	offset := m.chrOffset(addr)
	if int(offset) < len(m.cart.chrROM) {
		m.cart.chrROM[offset] = v
	}
}

func (m *mmc1) chrOffset(addr uint16) uint32 {
	const half = chrBankSize / 2
	if m.chrBankMode() == 0 {
		base := uint32(m.chrBank0&0xFE) * half
		return base + uint32(addr)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0) * half + uint32(addr)
	}
	return uint32(m.chrBank1)*half + uint32(addr-0x1000)
}

func (m *mmc1) ScanlineIRQ() {}
