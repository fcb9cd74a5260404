package cartridge

// uxrom implements mapper 2 (UxROM): any write to $8000-$FFFF selects the
// switchable 16 KiB bank at $8000; the last 16 KiB bank is fixed at $C000.
// CHR is always RAM on real UxROM boards. Grounded on the bank-select-at-any-
// PRG-address pattern in _examples/jyane-jnes/nes/mapper2.go.
type uxrom struct {
	cart      *Cartridge
	bankSel   uint8
	bankCount uint8
	lastBank  uint32 // byte offset of the fixed last bank
}

func newUxROM(cart *Cartridge) Mapper {
	banks := uint8(len(cart.prgROM) / prgBankSize)
	return &uxrom{
		cart:      cart,
		bankCount: banks,
		lastBank:  uint32(banks-1) * prgBankSize,
	}
}

func (m *uxrom) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xC000:
		offset := uint32(m.bankSel%m.bankCount)*prgBankSize + uint32(addr-0x8000)
		return m.cart.prgROM[offset]
	case addr >= 0xC000:
		return m.cart.prgROM[m.lastBank+uint32(addr-0xC000)]
	case addr >= 0x6000:
		return m.cart.readSRAM(addr)
	default:
		return 0
	}
}

func (m *uxrom) WritePRG(addr uint16, v uint8) {
	switch {
	case addr >= 0x8000:
		m.bankSel = v // low bits select the bank; UxROM only decodes what it needs
	case addr >= 0x6000:
		m.cart.writeSRAM(addr, v)
	}
}

func (m *uxrom) ReadCHR(addr uint16) uint8 {
	if int(addr) < len(m.cart.chrROM) {
		return m.cart.chrROM[addr]
	}
	return 0
}

func (m *uxrom) WriteCHR(addr uint16, v uint8) {
	if int(addr) < len(m.cart.chrROM) {
		m.cart.chrROM[addr] = v
	}
}

func (m *uxrom) ScanlineIRQ() {}
