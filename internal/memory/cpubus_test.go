package memory

import "testing"

type stubPPURegisters struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newStubPPU() *stubPPURegisters { return &stubPPURegisters{writes: map[uint16]uint8{}} }

func (s *stubPPURegisters) ReadRegister(addr uint16) uint8 {
	s.reads = append(s.reads, addr)
	return uint8(addr)
}
func (s *stubPPURegisters) WriteRegister(addr uint16, v uint8) { s.writes[addr] = v }

type stubPRG struct {
	reads  []uint16
	writes map[uint16]uint8
}

func (s *stubPRG) ReadPRG(addr uint16) uint8 { s.reads = append(s.reads, addr); return 0xAB }
func (s *stubPRG) WritePRG(addr uint16, v uint8) {
	if s.writes == nil {
		s.writes = map[uint16]uint8{}
	}
	s.writes[addr] = v
}

type stubController struct {
	strobed bool
	value   uint8
}

func (s *stubController) Read() uint8      { return s.value }
func (s *stubController) Strobe(set bool)  { s.strobed = set }

func TestCPUBusRAMMirroring(t *testing.T) {
	bus := NewCPUBus(newStubPPU(), &stubPRG{}, &stubController{}, &stubController{}, nil)
	bus.Write(0x07FF, 0x5A)
	for _, mirror := range []uint16{0x0FFF, 0x17FF, 0x1FFF} {
		if got := bus.Read(mirror); got != 0x5A {
			t.Errorf("Read(%#04x) = %#x, want 0x5A (RAM mirror)", mirror, got)
		}
	}
	if got := bus.Read(0x0000); got == 0x5A {
		t.Errorf("Read(0x0000) should not observe write to 0x07FF's mirror-unrelated cell")
	}
}

func TestCPUBusPPURegisterRedirect(t *testing.T) {
	ppu := newStubPPU()
	bus := NewCPUBus(ppu, &stubPRG{}, &stubController{}, &stubController{}, nil)
	for addr := uint16(0x2000); addr <= 0x3FFF; addr += 0x37 {
		bus.Read(addr)
		want := 0x2000 + (addr & 7)
		if got := ppu.reads[len(ppu.reads)-1]; got != want {
			t.Errorf("Read(%#04x) dispatched to %#04x, want %#04x", addr, got, want)
		}
	}
}

func TestCPUBusControllerStrobe(t *testing.T) {
	c1, c2 := &stubController{}, &stubController{}
	bus := NewCPUBus(newStubPPU(), &stubPRG{}, c1, c2, nil)
	bus.Write(0x4016, 0x01)
	if !c1.strobed || !c2.strobed {
		t.Fatal("writing $4016 bit0=1 should strobe both controllers")
	}
	c1.value = 0x01
	if got := bus.Read(0x4016); got != 0x01 {
		t.Errorf("Read(0x4016) = %#x, want controller 1 value", got)
	}
}

func TestCPUBusAPURangeReadsZero(t *testing.T) {
	bus := NewCPUBus(newStubPPU(), &stubPRG{}, &stubController{}, &stubController{}, nil)
	for _, addr := range []uint16{0x4000, 0x4009, 0x4013, 0x4015} {
		if got := bus.Read(addr); got != 0 {
			t.Errorf("Read(%#04x) = %#x, want 0 (APU absent)", addr, got)
		}
	}
}

func TestCPUBusDMATrigger(t *testing.T) {
	var triggeredPage uint8
	var called bool
	bus := NewCPUBus(newStubPPU(), &stubPRG{}, &stubController{}, &stubController{}, func(page uint8) {
		called = true
		triggeredPage = page
	})
	bus.Write(0x4014, 0x02)
	if !called || triggeredPage != 0x02 {
		t.Fatalf("expected DMA trigger with page 0x02, called=%v page=%#x", called, triggeredPage)
	}
}

func TestCPUBusGetPagePtr(t *testing.T) {
	bus := NewCPUBus(newStubPPU(), &stubPRG{}, &stubController{}, &stubController{}, nil)
	bus.Write(0x0200, 0x11)
	page, err := bus.GetPagePtr(0x0200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page[0] != 0x11 {
		t.Errorf("page[0] = %#x, want 0x11", page[0])
	}
	if _, err := bus.GetPagePtr(0x2000); err == nil {
		t.Fatal("expected BadAddressError for addr >= 0x2000")
	}
}
