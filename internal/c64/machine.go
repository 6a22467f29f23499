// Package c64 wires the CPU, memory bus, VIC-II timing driver and
// cartridge slot into a single runnable machine, the way the teacher's
// internal/nes.Bus ties its own cpu+ppu+ram+cart together behind a small
// Tic()/LoadCart()/Reset() surface.
package c64

import (
	"fmt"

	"github.com/go6502/c64core/internal/bus"
	"github.com/go6502/c64core/internal/cartridge"
	"github.com/go6502/c64core/internal/cpu"
	"github.com/go6502/c64core/internal/frame"
	"github.com/go6502/c64core/internal/vic"
)

// DebugInfo is a point-in-time copy of CPU state for a debug overlay,
// mirroring the teacher's equivalent struct handed to internal/ui.
type DebugInfo struct {
	PC         uint16
	A, X, Y    byte
	SP         byte
	P          byte
	Cycles     uint64
	RasterLine uint16
	Paused     bool
}

// StatusString renders the P register as the canonical NV-BDIZC letters,
// uppercase when set and lowercase when clear — the same convention the
// teacher's nestest-log comparison test relies on.
func (d DebugInfo) StatusString() string {
	bits := "nv-bdizc"
	out := []byte(bits)
	for i := 0; i < 8; i++ {
		bit := byte(1) << (7 - i)
		if d.P&bit != 0 && bits[i] != '-' {
			out[i] = bits[i] - ('a' - 'A')
		}
	}
	return string(out)
}

// Machine owns every component of a running C64: bus, CPU, VIC-II timing,
// and the frame handshake the renderer drains from. ROMs and cartridge are
// loaded separately, then Reset() brings the CPU up from the reset vector.
type Machine struct {
	Bus *bus.Bus
	CPU *cpu.CPU
	VIC *vic.VIC

	Frame frame.Flag

	paused    bool
	stepOnce  bool
}

// New builds a Machine for the given CPU and VIC chip variants. ROM images
// must be loaded onto m.Bus before calling Reset.
func New(cpuVariant cpu.Variant, vicVariant vic.Variant) *Machine {
	b := bus.NewBus()
	v := vic.New(vicVariant)
	b.VIC = v

	m := &Machine{
		Bus: b,
		CPU: cpu.NewCPU(b, cpuVariant),
		VIC: v,
	}
	return m
}

// LoadCartridge attaches a cartridge to the expansion port and resets the
// CPU, matching the teacher's LoadCart (a cartridge swap on real hardware
// always implies a reset).
func (m *Machine) LoadCartridge(cart cartridge.Cartridge) {
	m.Bus.LoadCartridge(cart)
	m.CPU.Reset()
}

// Reset brings the CPU up from the reset vector. RAM, ROMs and any loaded
// cartridge persist across it, same as on real hardware.
func (m *Machine) Reset() {
	m.CPU.Reset()
}

// Step runs exactly one CPU instruction (or interrupt service), ticks the
// VIC-II by the resulting cycle count, and publishes a frame Snapshot when
// the raster wraps. It returns the cycles the instruction consumed.
func (m *Machine) Step() (uint8, error) {
	cycles, err := m.CPU.Step()
	if err != nil {
		return cycles, err
	}
	m.VIC.Tick(cycles)
	if m.VIC.IRQPending() {
		m.CPU.IRQ()
	}
	if m.VIC.ConsumeFrameReady() {
		m.Frame.Publish(m.snapshot())
	}
	return cycles, nil
}

func (m *Machine) snapshot() *frame.Snapshot {
	snap := &frame.Snapshot{
		VICRegs: m.VIC.RegisterSnapshot(),
		Raster:  m.VIC.RasterLine(),
	}
	snap.RAM = m.Bus.RAM
	return snap
}

// Disassemble returns the full-address-space instruction listing used by a
// debug overlay, delegating to the CPU core.
func (m *Machine) Disassemble() map[uint16]string {
	return m.CPU.Disassemble()
}

// DebugInfo snapshots CPU/VIC state for a debug overlay to render.
func (m *Machine) DebugInfo() DebugInfo {
	return DebugInfo{
		PC:         m.CPU.PC,
		A:          m.CPU.A,
		X:          m.CPU.X,
		Y:          m.CPU.Y,
		SP:         m.CPU.SP,
		P:          m.CPU.P,
		Cycles:     m.CPU.Cycles,
		RasterLine: m.VIC.RasterLine(),
		Paused:     m.paused,
	}
}

// TogglePause flips the pause flag the producer loop polls before calling
// Step — the equivalent of the teacher's TooglePause bound to a debug
// overlay hotkey.
func (m *Machine) TogglePause() {
	m.paused = !m.paused
}

// Paused reports whether the producer loop should skip Step this tick.
func (m *Machine) Paused() bool {
	return m.paused && !m.stepOnce
}

// StepOnce arms a single-instruction exception to an active pause, the
// equivalent of the teacher's OneStepAndStop: the very next producer tick
// executes one Step even while paused, then pause reasserts itself.
func (m *Machine) StepOnce() {
	m.stepOnce = true
}

// ConsumeStepOnce clears the one-shot step exception after the producer
// loop has used it for exactly one Step call.
func (m *Machine) ConsumeStepOnce() {
	m.stepOnce = false
}

func (m *Machine) String() string {
	return fmt.Sprintf("c64.Machine{%s raster=%d}", m.CPU, m.VIC.RasterLine())
}
