package cartridge

import (
	"bytes"
	"testing"
)

func buildINES(prgBanks, chrBanks uint8, flags6, flags7 uint8, prg, chr []byte) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	out := append([]byte{}, header...)
	out = append(out, prg...)
	out = append(out, chr...)
	return out
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	data := append([]byte("XES\x1A"), make([]byte, 12)...)
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected InvalidRomError for bad magic")
	} else if _, ok := err.(*InvalidRomError); !ok {
		t.Fatalf("expected *InvalidRomError, got %T: %v", err, err)
	}
}

func TestLoadFromReaderRejectsZeroPRG(t *testing.T) {
	data := buildINES(0, 1, 0, 0, nil, make([]byte, chrBankSize))
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected InvalidRomError for zero PRG banks")
	}
}

func TestLoadFromReaderRejectsShortFile(t *testing.T) {
	data := buildINES(1, 1, 0, 0, make([]byte, 10), nil)
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected IoError for truncated PRG data")
	} else if _, ok := err.(*IoError); !ok {
		t.Fatalf("expected *IoError, got %T: %v", err, err)
	}
}

func TestLoadFromReaderRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 0xF0, 0, make([]byte, prgBankSize), make([]byte, chrBankSize))
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatal("expected UnsupportedMapperError")
	} else if _, ok := err.(*UnsupportedMapperError); !ok {
		t.Fatalf("expected *UnsupportedMapperError, got %T: %v", err, err)
	}
}

func TestNROMMirroring16K(t *testing.T) {
	prg := make([]byte, prgBankSize)
	prg[0] = 0x42
	prg[prgBankSize-1] = 0x99
	data := buildINES(1, 1, 0, 0, prg, make([]byte, chrBankSize))

	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0x42 {
		t.Errorf("ReadPRG(0x8000) = %#x, want 0x42", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0x42 {
		t.Errorf("ReadPRG(0xC000) = %#x, want mirror of 0x8000 (0x42)", got)
	}
	if got := cart.ReadPRG(0xFFFF); got != 0x99 {
		t.Errorf("ReadPRG(0xFFFF) = %#x, want 0x99", got)
	}
}

func TestNROMMirroringFlagsAndSRAM(t *testing.T) {
	data := buildINES(1, 1, 0x01, 0, make([]byte, prgBankSize), make([]byte, chrBankSize))
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MirrorMode() != MirrorVertical {
		t.Errorf("MirrorMode() = %v, want MirrorVertical", cart.MirrorMode())
	}

	cart.WritePRG(0x6000, 0x7A)
	if got := cart.ReadPRG(0x6000); got != 0x7A {
		t.Errorf("SRAM readback = %#x, want 0x7A", got)
	}
	cart.WritePRG(0x8000, 0xFF) // ROM write: silent no-op
	if got := cart.ReadPRG(0x8000); got != 0x00 {
		t.Errorf("PRG ROM write should be ignored, got %#x", got)
	}
}

func TestCHRRAMAllocatedWhenNoCHRBanks(t *testing.T) {
	data := buildINES(1, 0, 0, 0, make([]byte, prgBankSize), nil)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.WriteCHR(0x0010, 0x55)
	if got := cart.ReadCHR(0x0010); got != 0x55 {
		t.Errorf("CHR RAM readback = %#x, want 0x55", got)
	}
}

func TestUxROMBankSwitch(t *testing.T) {
	prg := make([]byte, prgBankSize*4)
	for bank := 0; bank < 4; bank++ {
		prg[bank*prgBankSize] = byte(bank)
	}
	data := buildINES(4, 1, 0x20, 0, prg, make([]byte, chrBankSize)) // mapper 2: flags6>>4=2
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0 {
		t.Errorf("bank 0 byte = %#x, want 0", got)
	}
	if got := cart.ReadPRG(0xC000); got != 3 {
		t.Errorf("fixed last bank byte = %#x, want 3 (bank index)", got)
	}
	cart.WritePRG(0x8000, 2)
	if got := cart.ReadPRG(0x8000); got != 2 {
		t.Errorf("after bank select, byte = %#x, want 2", got)
	}
	if got := cart.ReadPRG(0xC000); got != 3 {
		t.Errorf("fixed last bank should stay at 3, got %#x", got)
	}
}

func TestMMC1PowerOnFixesLastBank(t *testing.T) {
	prg := make([]byte, prgBankSize*4)
	prg[prgBankSize*3] = 0x77
	data := buildINES(4, 1, 0x10, 0, prg, make([]byte, chrBankSize)) // mapper 1: flags6>>4=1
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0xC000); got != 0x77 {
		t.Errorf("last PRG bank should be fixed at $C000 on power-on, got %#x", got)
	}
}
