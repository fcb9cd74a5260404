package memory

import "testing"

type stubCHR struct {
	data [0x2000]uint8
}

func (s *stubCHR) ReadCHR(addr uint16) uint8      { return s.data[addr] }
func (s *stubCHR) WriteCHR(addr uint16, v uint8) { s.data[addr] = v }

func TestPPUBusPatternTableDispatch(t *testing.T) {
	chr := &stubCHR{}
	chr.data[0x0010] = 0x7E
	bus := NewPPUBus(chr, MirrorHorizontal)
	if got := bus.Read(0x0010); got != 0x7E {
		t.Errorf("Read(0x0010) = %#x, want 0x7E", got)
	}
}

func TestPPUBusHorizontalMirroring(t *testing.T) {
	bus := NewPPUBus(&stubCHR{}, MirrorHorizontal)
	bus.Write(0x2000, 0x11) // table 0
	bus.Write(0x2800, 0x22) // table 2, should alias table 0 physically
	if got := bus.Read(0x2400); got != 0x11 {
		t.Errorf("table 1 should alias table 0 under horizontal mirroring, got %#x", got)
	}
	if got := bus.Read(0x2000); got != 0x22 {
		t.Errorf("table 2 write should be observed through table 0's physical offset, got %#x", got)
	}
}

func TestPPUBusVerticalMirroring(t *testing.T) {
	bus := NewPPUBus(&stubCHR{}, MirrorVertical)
	bus.Write(0x2000, 0x33) // table 0
	if got := bus.Read(0x2800); got != 0x33 {
		t.Errorf("table 2 should alias table 0 under vertical mirroring, got %#x", got)
	}
}

func TestPPUBusPaletteAliasing(t *testing.T) {
	bus := NewPPUBus(&stubCHR{}, MirrorHorizontal)
	bus.Write(0x3F00, 0x0F)
	if got := bus.Read(0x3F10); got != 0x0F {
		t.Errorf("$3F10 should alias $3F00, got %#x", got)
	}
	bus.Write(0x3F04, 0x05)
	if got := bus.Read(0x3F14); got != 0x05 {
		t.Errorf("$3F14 should alias $3F04, got %#x", got)
	}
}

func TestNametableOffsetsAllModesStayInPhysicalRange(t *testing.T) {
	for _, mode := range []MirrorMode{MirrorHorizontal, MirrorVertical, MirrorSingleScreen0, MirrorSingleScreen1, MirrorFourScreen} {
		offsets := nametableOffsets(mode)
		for i, off := range offsets {
			if off != 0x000 && off != 0x400 {
				t.Errorf("mode %v table %d offset = %#x, want 0x000 or 0x400", mode, i, off)
			}
		}
	}
}
