package ppu

import "testing"

// stubBus is a flat 16KB PPU address space for testing.
type stubBus struct {
	data [0x4000]uint8
}

func (b *stubBus) Read(addr uint16) uint8      { return b.data[addr&0x3FFF] }
func (b *stubBus) Write(addr uint16, v uint8) { b.data[addr&0x3FFF] = v }

type stubIRQ struct{ calls int }

func (s *stubIRQ) ScanlineIRQ() { s.calls++ }

func newTestPPU() (*PPU, *stubBus) {
	bus := &stubBus{}
	return New(bus, nil), bus
}

func runDots(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

func TestScanlineAndDotStayInRange(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 100000; i++ {
		p.Step()
		if p.scanline < 0 || p.scanline > preRenderScanline {
			t.Fatalf("scanline out of range: %d", p.scanline)
		}
		if p.dot < 0 || p.dot > 340 {
			t.Fatalf("dot out of range: %d", p.dot)
		}
	}
}

func TestFrameCompletesAfter89342DotsWhenRenderingDisabled(t *testing.T) {
	p, _ := newTestPPU()
	count := 0
	for !p.FrameReady() {
		p.Step()
		count++
		if count > 100000 {
			t.Fatal("frame never completed")
		}
	}
	if count != 341*262 {
		t.Errorf("frame took %d dots, want %d", count, 341*262)
	}
}

func TestVBlankSetsStatusAndFiresNMI(t *testing.T) {
	p, _ := newTestPPU()
	nmiFired := false
	p.SetNMICallback(func() { nmiFired = true })
	p.WriteRegister(0x2000, ctrlGenerateNMI)

	runDots(p, 341*241+2) // scanlines 0..240, then dots 0..1 of scanline 241

	if p.status&statusVBlank == 0 {
		t.Error("VBlank should be set at scanline 241 dot 1")
	}
	if !nmiFired {
		t.Error("NMI callback should fire when generate_nmi is set")
	}
}

func TestReadStatusClearsVBlankAndWriteLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.status |= statusVBlank
	p.WriteRegister(0x2005, 0x10) // first scroll write sets w
	if !p.w {
		t.Fatal("first scroll write should set the write latch")
	}

	status := p.ReadRegister(0x2002)
	if status&statusVBlank == 0 {
		t.Error("read_status should return the snapshot before clearing VBlank")
	}
	if p.status&statusVBlank != 0 {
		t.Error("reading $2002 should clear VBlank")
	}
	if p.w {
		t.Error("reading $2002 should reset the write latch")
	}
}

func TestEveryPPURegisterMirrorsEvery8Bytes(t *testing.T) {
	p, _ := newTestPPU()
	p.oam[0] = 0x77
	for _, addr := range []uint16{0x2004, 0x200C, 0x2014, 0x3FFC} {
		if got := p.ReadRegister(addr); got != 0x77 {
			t.Errorf("Read(%#04x) = %#x, want mirrored OAMDATA 0x77", addr, got)
		}
	}
}

func TestScrollWriteSequenceUpdatesTAndX(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2005, 0x7D) // 0111_1101: coarse X=15, fine X=5
	if p.x != 0x05 {
		t.Errorf("fine X = %d, want 5", p.x)
	}
	if p.t&0x1F != 15 {
		t.Errorf("t coarse X = %d, want 15", p.t&0x1F)
	}
	p.WriteRegister(0x2005, 0x5E) // second write: coarse Y=11, fine Y=6
	if (p.t>>5)&0x1F != 11 {
		t.Errorf("t coarse Y = %d, want 11", (p.t>>5)&0x1F)
	}
	if (p.t>>12)&0x7 != 6 {
		t.Errorf("t fine Y = %d, want 6", (p.t>>12)&0x7)
	}
	if p.w {
		t.Error("write latch should clear after the second write")
	}
}

func TestVRAMAddressWriteSequenceLatchesVFromT(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	if p.v != 0x2108 {
		t.Errorf("v = %#04x, want 0x2108", p.v)
	}
}

func TestPPUDataReadIsBufferedExceptForPalette(t *testing.T) {
	p, bus := newTestPPU()
	bus.data[0x2108] = 0xAB
	bus.data[0x3F00] = 0x10

	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	first := p.ReadRegister(0x2007)
	if first != 0 {
		t.Errorf("first post-seek read should return the stale buffer, got %#x", first)
	}
	second := p.ReadRegister(0x2007)
	if second != 0xAB {
		t.Errorf("second read should return the buffered byte, got %#x", second)
	}

	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	paletteRead := p.ReadRegister(0x2007)
	if paletteRead != 0x10 {
		t.Errorf("palette reads should bypass the buffer, got %#x", paletteRead)
	}
}

func TestPPUDataIncrementModeFromCtrl(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, ctrlIncrementMode)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x01)
	if p.v != 32 {
		t.Errorf("v = %d after one increment-by-32 write, want 32", p.v)
	}
}

func TestOAMDMACopies256BytesAndLeavesOAMAddrUnchanged(t *testing.T) {
	p, _ := newTestPPU()
	p.oamAddr = 0x10
	var data [256]uint8
	for i := range data {
		data[i] = uint8(i)
	}

	p.DMA(data)

	if p.oamAddr != 0x10 {
		t.Errorf("OAMADDR changed to %#x, want unchanged at 0x10", p.oamAddr)
	}
	if p.oam[0x10] != 0 || p.oam[0x11] != 1 {
		t.Error("DMA should write starting at the current OAM address, rotating")
	}
	if p.oam[0x0F] != 0xFF { // wrapped around: data[0xFF] lands at oamAddr+0xFF = 0x0F
		t.Errorf("oam[0x0F] = %#x, want 0xFF (rotated wraparound)", p.oam[0x0F])
	}
}

func TestScanlineIRQSuppressedWhenRenderingOff(t *testing.T) {
	irq := &stubIRQ{}
	bus := &stubBus{}
	p := New(bus, irq) // mask defaults to 0: rendering disabled
	runDots(p, 261)    // dots 0..260
	if irq.calls != 0 {
		t.Errorf("ScanlineIRQ called %d times through dot 260 with rendering off, want 0", irq.calls)
	}
}

func TestScanlineIRQFiresOnceAtDot260WhenRenderingOn(t *testing.T) {
	irq := &stubIRQ{}
	bus := &stubBus{}
	p := New(bus, irq)
	p.mask = maskShowBackground | maskShowSprites
	runDots(p, 261) // dots 0..260
	if irq.calls != 1 {
		t.Errorf("ScanlineIRQ called %d times through dot 260 with rendering on, want 1", irq.calls)
	}
}

func TestIncrementXWrapsAndTogglesNametable(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 31 // coarse X at max
	p.incrementX()
	if p.v&0x1F != 0 {
		t.Errorf("coarse X should wrap to 0, got %d", p.v&0x1F)
	}
	if p.v&0x0400 == 0 {
		t.Error("incrementX should toggle the horizontal nametable bit on wrap")
	}
}

func TestIncrementYCoarseCarryAt29TogglesNametable(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 0x7000 | 29<<5 // fine Y = 7, coarse Y = 29
	p.incrementY()
	if (p.v>>5)&0x1F != 0 {
		t.Errorf("coarse Y should reset to 0 at 29, got %d", (p.v>>5)&0x1F)
	}
	if p.v&0x0800 == 0 {
		t.Error("incrementY should toggle the vertical nametable bit at coarse Y 29")
	}
}

func TestIncrementYCoarseWrapAt31DoesNotToggleNametable(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 0x7000 | 31<<5 // fine Y = 7, coarse Y = 31
	before := p.v & 0x0800
	p.incrementY()
	if (p.v>>5)&0x1F != 0 {
		t.Errorf("coarse Y should wrap to 0 at 31, got %d", (p.v>>5)&0x1F)
	}
	if p.v&0x0800 != before {
		t.Error("incrementY should not toggle nametable when wrapping from 31")
	}
}

func TestEvaluateSpritesFindsUpToEightAndSetsOverflow(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 10; i++ {
		base := i * 4
		p.oam[base] = 10 // y=10, visible at scanline 11..18
		p.oam[base+1] = uint8(i)
		p.oam[base+3] = uint8(i * 8)
	}
	p.evaluateSprites(11)
	if p.spriteCount != 8 {
		t.Errorf("spriteCount = %d, want 8", p.spriteCount)
	}
	if p.status&statusSpriteOverflow == 0 {
		t.Error("9th matching sprite should set the overflow flag")
	}
}

func TestRenderPixelSetsSprite0HitWhenBothOpaque(t *testing.T) {
	p, bus := newTestPPU()
	// Left-column bits set so x=0 is not clipped for either layer.
	p.mask = maskShowBackground | maskShowSprites | maskBGLeftColumn | maskSpriteLeftCol
	// Background tile 1 at nametable origin, all-ones low bitplane.
	bus.data[0x2000] = 1
	bus.data[0x0010] = 0xFF
	// Sprite 0 at x=0, top row visible at screen y=1.
	p.oam[0] = 0 // y
	p.oam[1] = 2 // tile
	p.oam[2] = 0 // attr
	p.oam[3] = 0 // x
	bus.data[0x0020] = 0xFF
	p.evaluateSprites(1)

	p.renderPixel(0, 1)

	if p.status&statusSprite0Hit == 0 {
		t.Error("overlapping opaque background and sprite-0 pixel should set sprite0 hit")
	}
}

func TestNESColorToABGRPacksLittleEndianWithOpaqueAlpha(t *testing.T) {
	got := nesColorToABGR(0x0D) // index 0x0D -> 0x000000 in the table
	if got != 0xFF000000 {
		t.Errorf("nesColorToABGR(0x0D) = %#08x, want 0xFF000000", got)
	}

	got = nesColorToABGR(0x00) // 0x666666
	want := uint32(0xFF000000 | 0x66<<16 | 0x66<<8 | 0x66)
	if got != want {
		t.Errorf("nesColorToABGR(0x00) = %#08x, want %#08x", got, want)
	}
}

func TestConsumeFrameClearsReadyFlag(t *testing.T) {
	p, _ := newTestPPU()
	p.frameReady = true
	p.ConsumeFrame()
	if p.FrameReady() {
		t.Error("ConsumeFrame should clear the ready flag")
	}
}

func TestResetClearsRegistersAndFrameState(t *testing.T) {
	p, _ := newTestPPU()
	p.ctrl, p.mask, p.status = 0xFF, 0xFF, 0xFF
	p.v, p.t, p.x, p.w = 0x7FFF, 0x7FFF, 7, true
	p.frameReady = true
	p.Reset()
	if p.ctrl != 0 || p.mask != 0 || p.status != 0 {
		t.Error("Reset should zero PPUCTRL/PPUMASK/PPUSTATUS")
	}
	if p.v != 0 || p.t != 0 || p.x != 0 || p.w {
		t.Error("Reset should clear loopy registers and the write latch")
	}
	if p.FrameReady() {
		t.Error("Reset should clear frame-ready state")
	}
}
