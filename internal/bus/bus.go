// Package bus implements the frame driver that ties the CPU, PPU, cartridge,
// and controllers together and steps them in lockstep.
package bus

import (
	"github.com/golang/glog"

	"nescore/internal/cartridge"
	"nescore/internal/cpu"
	"nescore/internal/input"
	"nescore/internal/memory"
	"nescore/internal/ppu"
)

// Bus owns every emulator component for its lifetime and is the only thing
// holding bidirectional wiring between them.
type Bus struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	CPUBus    *memory.CPUBus
	PPUBus    *memory.PPUBus
	Cartridge *cartridge.Cartridge
	Input     *input.InputState

	paused     bool
	frameCount uint64
}

// New creates a bus with no cartridge loaded. Call LoadCartridge before
// RunFrame; nothing reaches the cartridge-backed PRG/CHR paths until then.
func New() *Bus {
	b := &Bus{Input: input.NewInputState()}

	b.PPUBus = memory.NewPPUBus(nil, memory.MirrorHorizontal)
	b.PPU = ppu.New(b.PPUBus, nil)
	b.CPUBus = memory.NewCPUBus(b.PPU, nil, b.Input.Controller1, b.Input.Controller2, b.triggerOAMDMA)
	b.CPU = cpu.New(b.CPUBus)

	b.PPU.SetNMICallback(b.triggerNMI)

	return b
}

// LoadCartridge installs cart as the active ROM image, rebinds both buses'
// cartridge-facing surfaces and the mapper's scanline-IRQ hookup, and resets
// every component.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cartridge = cart
	b.CPUBus.SetCartridge(cart)
	b.PPUBus.SetCartridge(cart, toMemoryMirrorMode(cart.MirrorMode()))
	b.PPU.SetIRQSource(cart)
	b.Reset()
}

// Reset puts the CPU, PPU, and controllers back to their power-on state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.Input.Reset()
}

// triggerNMI is installed as the PPU's vertical-blank callback.
func (b *Bus) triggerNMI() {
	b.CPU.RaiseNMI()
}

// triggerOAMDMA is installed as the CPU bus's $4014 hook. It copies the
// source page into OAM and stalls the CPU for 513 (or 514, on an odd CPU
// cycle) cycles.
func (b *Bus) triggerOAMDMA(page uint8) {
	var data [256]uint8
	base := uint16(page) << 8
	if page < 0x20 {
		if src, err := b.CPUBus.GetPagePtr(base); err == nil {
			copy(data[:], src)
		}
	} else {
		for i := 0; i < 256; i++ {
			data[i] = b.CPUBus.Read(base + uint16(i))
		}
	}
	b.PPU.DMA(data)

	cycles := uint16(513)
	if b.CPU.Cycles()%2 == 1 {
		cycles = 514
	}
	b.CPU.Stall(cycles)
}

// Pause halts RunFrame without advancing any state.
func (b *Bus) Pause() {
	b.paused = true
	glog.V(1).Info("bus: frame driver paused")
}

// Resume clears a prior Pause.
func (b *Bus) Resume() {
	b.paused = false
	glog.V(1).Info("bus: frame driver resumed")
}

// Paused reports whether the frame driver is currently halted.
func (b *Bus) Paused() bool { return b.paused }

// RunFrame steps PPU-PPU-PPU-CPU in a loop until a frame completes, then
// returns it. It does nothing and returns the zero buffer while paused.
func (b *Bus) RunFrame() [ppu.FrameWidth * ppu.FrameHeight]uint32 {
	if b.paused {
		return [ppu.FrameWidth * ppu.FrameHeight]uint32{}
	}
	for !b.PPU.FrameReady() {
		b.stepCycle()
	}
	b.frameCount++
	return b.PPU.ConsumeFrame()
}

// FrameCount returns the number of frames RunFrame has completed.
func (b *Bus) FrameCount() uint64 { return b.frameCount }

// CycleCount returns the total CPU cycles executed since power-on.
func (b *Bus) CycleCount() uint64 { return b.CPU.Cycles() }

// CPUState is a snapshot of the CPU's registers and flags, used for save
// states and debug inspection.
type CPUState struct {
	PC             uint16
	SP, A, X, Y    uint8
	C, Z, I, D, V, N bool
	Cycles         uint64
}

// CPUState captures the CPU's current registers, flags, and cycle count.
func (b *Bus) CPUState() CPUState {
	c := b.CPU
	return CPUState{
		PC: c.PC, SP: c.SP, A: c.A, X: c.X, Y: c.Y,
		C: c.C, Z: c.Z, I: c.I, D: c.D, V: c.V, N: c.N,
		Cycles: c.Cycles(),
	}
}

// RestoreCPUState replaces the CPU's registers and flags with a prior
// CPUState snapshot. Cycle count is not restored; it only ever advances.
func (b *Bus) RestoreCPUState(s CPUState) {
	c := b.CPU
	c.PC, c.SP, c.A, c.X, c.Y = s.PC, s.SP, s.A, s.X, s.Y
	c.C, c.Z, c.I, c.D, c.V, c.N = s.C, s.Z, s.I, s.D, s.V, s.N
}

// PPUState returns a snapshot of the PPU's timing and register state.
func (b *Bus) PPUState() ppu.State { return b.PPU.Snapshot() }

// RestorePPUState replaces the PPU's timing and register state with a prior
// snapshot.
func (b *Bus) RestorePPUState(s ppu.State) { b.PPU.Restore(s) }

// stepCycle is one iteration of the 3:1 PPU:CPU interleave, including the
// per-cycle IRQ latch a mapper's scanline counter may have raised.
func (b *Bus) stepCycle() {
	b.PPU.Step()
	b.PPU.Step()
	b.PPU.Step()
	b.CPU.Step()
	if b.Cartridge != nil && b.Cartridge.IRQPending() {
		b.CPU.RaiseIRQ()
	}
}

// toMemoryMirrorMode converts the cartridge package's mirroring enum to the
// memory package's. The buses stay decoupled from cartridge-loading
// concerns, so they define their own identical enum.
func toMemoryMirrorMode(mode cartridge.MirrorMode) memory.MirrorMode {
	switch mode {
	case cartridge.MirrorVertical:
		return memory.MirrorVertical
	case cartridge.MirrorSingleScreen0:
		return memory.MirrorSingleScreen0
	case cartridge.MirrorSingleScreen1:
		return memory.MirrorSingleScreen1
	case cartridge.MirrorFourScreen:
		return memory.MirrorFourScreen
	default:
		return memory.MirrorHorizontal
	}
}
