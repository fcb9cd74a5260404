// Package ppu implements the NES Picture Processing Unit's scanline/dot
// state machine, nametable/OAM register surface, and background/sprite
// rendering pipeline.
package ppu

const (
	FrameWidth  = 256
	FrameHeight = 240

	dotsPerScanline     = 341
	preRenderScanline   = 261
	visibleScanlines    = 240
	vblankStartScanline = 241
)

const (
	statusSpriteOverflow uint8 = 1 << 5
	statusSprite0Hit     uint8 = 1 << 6
	statusVBlank         uint8 = 1 << 7

	ctrlNametableMask uint8 = 0x03
	ctrlIncrementMode uint8 = 1 << 2
	ctrlSpritePattern uint8 = 1 << 3
	ctrlBGPattern     uint8 = 1 << 4
	ctrlSpriteSize    uint8 = 1 << 5
	ctrlGenerateNMI   uint8 = 1 << 7

	maskShowBackground uint8 = 1 << 3
	maskShowSprites    uint8 = 1 << 4
	maskBGLeftColumn   uint8 = 1 << 1
	maskSpriteLeftCol  uint8 = 1 << 2
)

// Bus is the PPU's 14-bit address space (memory.PPUBus).
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// IRQSource is the cartridge-side scanline counter a handful of mappers use
// (e.g. MMC3), invoked once per scanline at dot 260; most mappers implement
// it as a no-op.
type IRQSource interface {
	ScanlineIRQ()
}

// spritePixel is an intermediate result from the background or sprite pixel
// pipelines, combined in compositePixel.
type spritePixel struct {
	colorIndex  uint8
	paletteBase uint16
	priority    bool // true = behind background
	isSprite0   bool
	transparent bool
}

// PPU is a NES 2C02-derivative picture processor, stepped one dot at a time.
type PPU struct {
	ctrl, mask, status, oamAddr uint8

	v, t uint16 // loopy VRAM address / temporary address (15 bits used)
	x    uint8  // fine X scroll (3 bits)
	w    bool   // write-toggle latch

	readBuffer uint8

	oam           [256]uint8
	secondaryOAM  [8 * 4]uint8
	spriteIndices [8]uint8
	spriteCount   uint8

	scanline   int
	dot        int
	oddFrame   bool
	frameReady bool

	frameBuffer [FrameWidth * FrameHeight]uint32

	bus Bus
	irq IRQSource

	nmiCallback func()
}

// New creates a PPU wired to a bus and an optional mapper IRQ source (pass
// nil when the cartridge doesn't implement one).
func New(bus Bus, irq IRQSource) *PPU {
	return &PPU{bus: bus, irq: irq}
}

// SetNMICallback installs the function invoked when PPUCTRL.generate_nmi is
// set and vertical blank begins.
func (p *PPU) SetNMICallback(cb func()) { p.nmiCallback = cb }

// SetIRQSource rebinds the mapper's scanline counter, e.g. after loading a
// new cartridge. Pass nil for mappers that never raise a scanline IRQ.
func (p *PPU) SetIRQSource(irq IRQSource) { p.irq = irq }

// Reset puts the PPU into its post-power-on state.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.oam = [256]uint8{}
	p.scanline, p.dot = 0, 0
	p.oddFrame = false
	p.frameReady = false
	p.frameBuffer = [FrameWidth * FrameHeight]uint32{}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBackground|maskShowSprites) != 0
}

// Step advances the PPU by exactly one dot.
func (p *PPU) Step() {
	if p.scanline == preRenderScanline && p.dot == 1 {
		p.status &^= statusVBlank | statusSpriteOverflow
	}

	if p.scanline == 0 && p.dot == 0 {
		p.evaluateSprites(p.scanline)
	}

	if p.scanline < visibleScanlines && p.dot >= 1 && p.dot <= FrameWidth {
		p.renderPixel(p.dot-1, p.scanline)
		if p.renderingEnabled() && p.dot%8 == 0 {
			p.incrementX()
		}
	}

	if p.renderingEnabled() && p.scanline < visibleScanlines && p.dot == FrameWidth {
		p.incrementY()
	}
	if p.renderingEnabled() && p.dot == 257 && p.scanline <= preRenderScanline {
		p.copyX()
	}
	if p.scanline == preRenderScanline && p.dot >= 280 && p.dot <= 304 && p.renderingEnabled() {
		p.copyY()
	}

	if p.dot == 260 && p.renderingEnabled() && p.irq != nil {
		p.irq.ScanlineIRQ()
	}

	if p.scanline == vblankStartScanline && p.dot == 1 {
		p.status |= statusVBlank
		if p.ctrl&ctrlGenerateNMI != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}

	// Sprites for the next visible scanline are evaluated at its own start
	// (above) rather than at dot 340 of the previous one; this sidesteps
	// the odd-frame dot skip below needing to carry the evaluation forward.
	if p.dot == dotsPerScanline-1 && p.scanline < visibleScanlines {
		p.evaluateSprites(p.scanline + 1)
	}

	p.advanceDot()
}

// advanceDot moves the scanline/dot counters, applying the odd-frame
// pre-render skip and flagging frame completion.
func (p *PPU) advanceDot() {
	if p.scanline == preRenderScanline && p.dot == 339 && p.renderingEnabled() && p.oddFrame {
		p.dot = 0
		p.scanline = 0
		p.oddFrame = !p.oddFrame
		p.frameReady = true
		return
	}

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > preRenderScanline {
			p.scanline = 0
			p.oddFrame = !p.oddFrame
			p.frameReady = true
		}
	}
}

// FrameReady reports whether a frame has completed since the last
// ConsumeFrame call; the frame driver polls this every Step.
func (p *PPU) FrameReady() bool { return p.frameReady }

// ConsumeFrame clears the ready flag and returns the frame buffer.
func (p *PPU) ConsumeFrame() [FrameWidth * FrameHeight]uint32 {
	p.frameReady = false
	return p.frameBuffer
}

// incrementX implements the coarse-X/nametable-X carry rule.
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY implements the fine-Y/coarse-Y carry rule.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v & 0x03E0) >> 5
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

// copyX copies nametable-X/coarse-X from t into v (dot 257).
func (p *PPU) copyX() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

// copyY copies nametable-Y/coarse-Y/fine-Y from t into v (dots 280..304 of
// the pre-render scanline).
func (p *PPU) copyY() {
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// evaluateSprites scans OAM for the up-to-8 sprites visible on target
// scanline and fills secondaryOAM.
func (p *PPU) evaluateSprites(target int) {
	p.spriteCount = 0
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}

	height := 8
	if p.ctrl&ctrlSpriteSize != 0 {
		height = 16
	}

	found := 0
	for i := 0; i < 64; i++ {
		base := i * 4
		y := int(p.oam[base])
		if target < y+1 || target >= y+1+height {
			continue
		}
		if found == 8 {
			p.status |= statusSpriteOverflow
			break
		}
		copy(p.secondaryOAM[found*4:found*4+4], p.oam[base:base+4])
		p.spriteIndices[found] = uint8(i)
		found++
	}
	p.spriteCount = uint8(found)
}

// renderPixel produces the pixel at (x, y) into the frame buffer by
// combining the background and sprite pipelines per NES priority rules.
func (p *PPU) renderPixel(x, y int) {
	bg := spritePixel{transparent: true}
	sprite := spritePixel{transparent: true}

	if p.mask&maskShowBackground != 0 && !(x < 8 && p.mask&maskBGLeftColumn == 0) {
		bg = p.backgroundPixel(x)
	}
	if p.mask&maskShowSprites != 0 && !(x < 8 && p.mask&maskSpriteLeftCol == 0) {
		sprite = p.spritePixelAt(x, y)
	}

	if sprite.isSprite0 && !sprite.transparent && !bg.transparent && x != 255 {
		p.status |= statusSprite0Hit
	}

	p.frameBuffer[y*FrameWidth+x] = p.compositePixel(bg, sprite)
}

func (p *PPU) backgroundPixel(x int) spritePixel {
	fineX := (uint16(x) + uint16(p.x)) & 7

	ntAddr := 0x2000 | (p.v & 0x0FFF)
	ntByte := p.bus.Read(ntAddr)
	attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attrByte := p.bus.Read(attrAddr)

	fineY := (p.v >> 12) & 0x7
	patternBase := uint16(0)
	if p.ctrl&ctrlBGPattern != 0 {
		patternBase = 0x1000
	}
	patternAddr := patternBase + uint16(ntByte)*16 + fineY
	lo := p.bus.Read(patternAddr)
	hi := p.bus.Read(patternAddr + 8)

	shift := 7 - fineX
	bit0 := (lo >> shift) & 1
	bit1 := (hi >> shift) & 1
	colorIndex := (bit1 << 1) | bit0

	coarseX := p.v & 0x1F
	coarseY := (p.v >> 5) & 0x1F
	quadrant := ((coarseX & 2) >> 1) + (((coarseY & 2) >> 1) * 2)
	paletteSelect := (attrByte >> (quadrant * 2)) & 0x03

	return spritePixel{
		colorIndex:  colorIndex,
		paletteBase: 0x3F00 + uint16(paletteSelect)*4,
		transparent: colorIndex == 0,
	}
}

func (p *PPU) spritePixelAt(x, y int) spritePixel {
	height := 8
	if p.ctrl&ctrlSpriteSize != 0 {
		height = 16
	}

	for i := 0; i < int(p.spriteCount); i++ {
		base := i * 4
		sy := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attr := p.secondaryOAM[base+2]
		sx := int(p.secondaryOAM[base+3])

		if x < sx || x >= sx+8 {
			continue
		}
		row := y - (sy + 1)
		if row < 0 || row >= height {
			continue
		}
		col := x - sx
		if attr&0x40 != 0 {
			col = 7 - col
		}
		if attr&0x80 != 0 {
			row = height - 1 - row
		}

		patternBase := uint16(0)
		if height == 8 {
			if p.ctrl&ctrlSpritePattern != 0 {
				patternBase = 0x1000
			}
		} else {
			if tile&1 != 0 {
				patternBase = 0x1000
			}
			tile &^= 1
			if row >= 8 {
				tile++
				row -= 8
			}
		}

		patternAddr := patternBase + uint16(tile)*16 + uint16(row)
		lo := p.bus.Read(patternAddr)
		hi := p.bus.Read(patternAddr + 8)
		shift := 7 - col
		bit0 := (lo >> shift) & 1
		bit1 := (hi >> shift) & 1
		colorIndex := (bit1 << 1) | bit0
		if colorIndex == 0 {
			continue
		}

		return spritePixel{
			colorIndex:  colorIndex,
			paletteBase: 0x3F10 + uint16(attr&0x03)*4,
			priority:    attr&0x20 != 0,
			isSprite0:   p.spriteIndices[i] == 0,
			transparent: false,
		}
	}
	return spritePixel{transparent: true}
}

func (p *PPU) compositePixel(bg, sprite spritePixel) uint32 {
	switch {
	case bg.transparent && sprite.transparent:
		return nesColorToABGR(p.bus.Read(0x3F00))
	case sprite.transparent:
		return nesColorToABGR(p.bus.Read(bg.paletteBase + uint16(bg.colorIndex)))
	case bg.transparent:
		return nesColorToABGR(p.bus.Read(sprite.paletteBase + uint16(sprite.colorIndex)))
	case sprite.priority:
		return nesColorToABGR(p.bus.Read(bg.paletteBase + uint16(bg.colorIndex)))
	default:
		return nesColorToABGR(p.bus.Read(sprite.paletteBase + uint16(sprite.colorIndex)))
	}
}

// ReadRegister implements the CPU-visible $2000-$2007 surface.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2:
		status := p.status
		p.status &^= statusVBlank
		p.w = false
		return status
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readPPUData()
	default:
		return 0
	}
}

// WriteRegister implements the CPU-visible $2000-$2007 surface.
func (p *PPU) WriteRegister(addr uint16, v uint8) {
	switch addr & 7 {
	case 0:
		p.ctrl = v
		p.t = (p.t &^ 0x0C00) | (uint16(v&ctrlNametableMask) << 10)
	case 1:
		p.mask = v
	case 3:
		p.oamAddr = v
	case 4:
		p.oam[p.oamAddr] = v
		p.oamAddr++
	case 5:
		p.writeScroll(v)
	case 6:
		p.writeVRAMAddress(v)
	case 7:
		p.writePPUData(v)
	}
}

func (p *PPU) writeScroll(v uint8) {
	if !p.w {
		p.t = (p.t &^ 0x001F) | uint16(v>>3)
		p.x = v & 0x07
		p.w = true
		return
	}
	p.t = (p.t &^ 0x73E0) | (uint16(v&0x07) << 12) | (uint16(v>>3) << 5)
	p.w = false
}

func (p *PPU) writeVRAMAddress(v uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(v&0x3F) << 8)
		p.w = true
		return
	}
	p.t = (p.t & 0xFF00) | uint16(v)
	p.v = p.t
	p.w = false
}

func (p *PPU) readPPUData() uint8 {
	data := p.readBuffer
	fresh := p.bus.Read(p.v)
	p.readBuffer = fresh
	if p.v >= 0x3F00 {
		data = fresh
	}
	p.advanceVRAMAddress()
	return data
}

func (p *PPU) writePPUData(v uint8) {
	p.bus.Write(p.v, v)
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ctrl&ctrlIncrementMode != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// DMA copies 256 bytes sourced by the frame driver's $4014 hook into OAM,
// rotated by the current OAM address, without disturbing it.
func (p *PPU) DMA(data [256]uint8) {
	for i := 0; i < 256; i++ {
		p.oam[uint8(int(p.oamAddr)+i)] = data[i]
	}
}

// State is a snapshot of PPU timing and register state, used for save
// states and debug inspection. It excludes VRAM/CHR (owned by memory.PPUBus)
// and the frame buffer (rebuilt by rendering).
type State struct {
	Scanline int
	Dot      int
	OddFrame bool

	Ctrl, Mask, Status, OAMAddr uint8
	V, T                        uint16
	X                           uint8
	W                           bool

	OAM [256]uint8
}

// Snapshot captures the PPU's current timing and register state.
func (p *PPU) Snapshot() State {
	return State{
		Scanline: p.scanline,
		Dot:      p.dot,
		OddFrame: p.oddFrame,
		Ctrl:     p.ctrl,
		Mask:     p.mask,
		Status:   p.status,
		OAMAddr:  p.oamAddr,
		V:        p.v,
		T:        p.t,
		X:        p.x,
		W:        p.w,
		OAM:      p.oam,
	}
}

// Restore replaces the PPU's timing and register state with a prior Snapshot.
func (p *PPU) Restore(s State) {
	p.scanline = s.Scanline
	p.dot = s.Dot
	p.oddFrame = s.OddFrame
	p.ctrl = s.Ctrl
	p.mask = s.Mask
	p.status = s.Status
	p.oamAddr = s.OAMAddr
	p.v = s.V
	p.t = s.T
	p.x = s.X
	p.w = s.W
	p.oam = s.OAM
}

// VBlank reports whether the vertical-blank status flag is currently set.
func (p *PPU) VBlank() bool { return p.status&statusVBlank != 0 }

// RenderingOn reports whether background or sprite rendering is enabled.
func (p *PPU) RenderingOn() bool { return p.renderingEnabled() }

// nesColorToABGR converts a 6-bit NES palette index to a packed
// little-endian ABGR pixel, the frame buffer's storage format.
func nesColorToABGR(index uint8) uint32 {
	rgb := nesPalette[index&0x3F]
	r := (rgb >> 16) & 0xFF
	g := (rgb >> 8) & 0xFF
	b := rgb & 0xFF
	return 0xFF000000 | (b << 16) | (g << 8) | r
}

// nesPalette is the standard NTSC NES hardware palette, stored as 0xRRGGBB.
var nesPalette = [64]uint32{
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}
