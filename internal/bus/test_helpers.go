package bus

import (
	"bytes"

	"nescore/internal/cartridge"
)

// buildTestCartridge assembles a minimal one-bank NROM image: prg is copied
// to the start of the 16KB PRG bank, and the reset vector is forced to
// 0x8000 unless the caller already populated it.
func buildTestCartridge(prg []uint8) *cartridge.Cartridge {
	const prgBankSize = 16 * 1024
	const chrBankSize = 8 * 1024

	bank := make([]uint8, prgBankSize)
	copy(bank, prg)
	if bank[0x3FFC] == 0 && bank[0x3FFD] == 0 {
		bank[0x3FFC] = 0x00
		bank[0x3FFD] = 0x80
	}

	header := []uint8{'N', 'E', 'S', 0x1A, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	data := append([]uint8{}, header...)
	data = append(data, bank...)
	data = append(data, make([]uint8, chrBankSize)...)

	cart, err := cartridge.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	return cart
}
