package bus

import "github.com/go6502/c64core/internal/cartridge"

const (
	basicROMStart  = 0xA000
	basicROMSize   = 0x2000
	kernalROMStart = 0xE000
	kernalROMSize  = 0x2000
	charROMStart   = 0xD000
	charROMSize    = 0x1000

	vicStart      = 0xD000
	vicEnd        = 0xD3FF
	sidStart      = 0xD400
	sidEnd        = 0xD7FF
	colorRAMStart = 0xD800
	colorRAMEnd   = 0xDBFF
	cia1Start     = 0xDC00
	cia1End       = 0xDCFF
	cia2Start     = 0xDD00
	cia2End       = 0xDDFF
)

// CPU I/O port bits in $0001.
const (
	portLORAM  = 1 << 0
	portHIRAM  = 1 << 1
	portCHAREN = 1 << 2
)

// Bus is the C64's memory banking controller: a flat 64KB RAM array
// overlaid by BASIC/KERNAL/character ROM, the $D000-$DFFF I/O devices, and
// whatever the currently loaded cartridge exposes over ROML/ROMH/Ultimax.
type Bus struct {
	RAM [0x10000]byte

	basicROM  [basicROMSize]byte
	kernalROM [kernalROMSize]byte
	charROM   [charROMSize]byte
	colorRAM  [0x0400]byte

	VIC  Device
	SID  Device
	CIA1 Device
	CIA2 Device

	Cart cartridge.Cartridge

	ddr  byte
	port byte
}

// NewBus builds a Bus with the CPU I/O port defaulting to $37 (the C64's
// power-on value: BASIC, KERNAL and I/O all banked in) and no cartridge.
func NewBus() *Bus {
	b := &Bus{
		CIA1: NewCIA(),
		CIA2: NewCIA(),
		SID:  NewSID(),
		port: 0x37,
	}
	return b
}

func (b *Bus) LoadBasicROM(data []byte) error {
	if len(data) != basicROMSize {
		return wrongROMSize("BASIC ROM", basicROMSize, len(data))
	}
	copy(b.basicROM[:], data)
	return nil
}

func (b *Bus) LoadKernalROM(data []byte) error {
	if len(data) != kernalROMSize {
		return wrongROMSize("KERNAL ROM", kernalROMSize, len(data))
	}
	copy(b.kernalROM[:], data)
	return nil
}

func (b *Bus) LoadCharROM(data []byte) error {
	if len(data) != charROMSize {
		return wrongROMSize("character ROM", charROMSize, len(data))
	}
	copy(b.charROM[:], data)
	return nil
}

// LoadCartridge attaches a cartridge and resets it to its power-on state.
func (b *Bus) LoadCartridge(cart cartridge.Cartridge) {
	b.Cart = cart
	if cart != nil {
		cart.Reset()
	}
}

func (b *Bus) loram() bool  { return b.port&portLORAM != 0 }
func (b *Bus) hiram() bool  { return b.port&portHIRAM != 0 }
func (b *Bus) charen() bool { return b.port&portCHAREN != 0 }

// Read implements the cpu.Bus interface, dispatching by the top 4 address
// bits the way the real PLA decodes memory regions.
func (b *Bus) Read(addr uint16) byte {
	switch addr >> 12 {
	case 0x0:
		return b.readZeroPage(addr)
	case 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7:
		return b.RAM[addr]
	case 0x8, 0x9:
		return b.readROML(addr)
	case 0xA, 0xB:
		return b.readROMHOrBasic(addr)
	case 0xC:
		return b.RAM[addr]
	case 0xD:
		return b.readDPage(addr)
	case 0xE, 0xF:
		return b.readKernalOrUltimax(addr)
	}
	return 0xFF // unreachable: addr>>12 is always 0-15
}

func (b *Bus) readZeroPage(addr uint16) byte {
	switch addr {
	case 0x0000:
		return b.ddr
	case 0x0001:
		return b.port | ^b.ddr
	default:
		return b.RAM[addr]
	}
}

// readROML serves $8000-$9FFF: cartridge ROML, or RAM if no cartridge
// claims the region (Ultimax mode always wins; 8K/16K mode only shows
// through when LORAM and HIRAM are both set).
func (b *Bus) readROML(addr uint16) byte {
	if b.Cart != nil {
		if b.Cart.EXROM() && !b.Cart.GAME() {
			return b.Cart.ReadROML(addr) // Ultimax: always visible
		}
		if !b.Cart.EXROM() && b.loram() && b.hiram() {
			return b.Cart.ReadROML(addr)
		}
	}
	return b.RAM[addr]
}

// readROMHOrBasic serves $A000-$BFFF: cartridge ROMH in 16K mode, else
// BASIC ROM, else RAM — mirroring original_source's _read_region_A_B.
func (b *Bus) readROMHOrBasic(addr uint16) byte {
	loram, hiram := b.loram(), b.hiram()
	if b.Cart != nil && !b.Cart.EXROM() && !b.Cart.GAME() {
		if loram && hiram {
			return b.Cart.ReadROMH(addr)
		}
		return b.RAM[addr]
	}
	if loram && hiram {
		return b.basicROM[addr-basicROMStart]
	}
	return b.RAM[addr]
}

// readDPage serves $D000-$DFFF: I/O, character ROM, or RAM depending on
// CHAREN/LORAM/HIRAM.
func (b *Bus) readDPage(addr uint16) byte {
	if b.charen() {
		return b.readIO(addr)
	}
	if b.loram() || b.hiram() {
		return b.charROM[addr-charROMStart]
	}
	return b.RAM[addr]
}

func (b *Bus) readKernalOrUltimax(addr uint16) byte {
	if b.Cart != nil && b.Cart.EXROM() && !b.Cart.GAME() {
		return b.Cart.ReadUltimaxROMH(addr)
	}
	if b.hiram() {
		return b.kernalROM[addr-kernalROMStart]
	}
	return b.RAM[addr]
}

func (b *Bus) readIO(addr uint16) byte {
	switch {
	case addr >= vicStart && addr <= vicEnd:
		return b.VIC.Read(addr)
	case addr >= sidStart && addr <= sidEnd:
		return b.SID.Read(addr)
	case addr >= colorRAMStart && addr <= colorRAMEnd:
		return b.colorRAM[addr-colorRAMStart] | 0xF0 // only the low nibble is real
	case addr >= cia1Start && addr <= cia1End:
		return b.CIA1.Read(addr)
	case addr >= cia2Start && addr <= cia2End:
		return b.CIA2.Read(addr)
	case addr >= cartridge.IO1Start && addr <= cartridge.IO1End:
		if b.Cart != nil {
			return b.Cart.ReadIO1(addr)
		}
		return 0xFF
	case addr >= cartridge.IO2Start && addr <= cartridge.IO2End:
		if b.Cart != nil {
			return b.Cart.ReadIO2(addr)
		}
		return 0xFF
	}
	return 0xFF
}

// Write implements the cpu.Bus interface. Writes to $A000-$FFFF always
// land in RAM even when a ROM is visible for reads at the same address —
// only the I/O window and ROML (for cartridges with onboard RAM) can
// intercept a write.
func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr == 0x0000:
		b.ddr = value
	case addr == 0x0001:
		b.port = value
	case addr <= 0x7FFF:
		b.RAM[addr] = value
	case addr <= 0x9FFF:
		if b.Cart == nil || !b.Cart.WriteROML(addr, value) {
			b.RAM[addr] = value
		}
	case addr >= charROMStart && addr <= 0xDFFF && b.charen():
		b.writeIO(addr, value)
	default:
		b.RAM[addr] = value
	}
}

func (b *Bus) writeIO(addr uint16, value byte) {
	switch {
	case addr >= vicStart && addr <= vicEnd:
		b.VIC.Write(addr, value)
	case addr >= sidStart && addr <= sidEnd:
		b.SID.Write(addr, value)
	case addr >= colorRAMStart && addr <= colorRAMEnd:
		b.colorRAM[addr-colorRAMStart] = value & 0x0F
	case addr >= cia1Start && addr <= cia1End:
		b.CIA1.Write(addr, value)
	case addr >= cia2Start && addr <= cia2End:
		b.CIA2.Write(addr, value)
	case addr >= cartridge.IO1Start && addr <= cartridge.IO1End:
		if b.Cart != nil {
			b.Cart.WriteIO1(addr, value)
		}
	case addr >= cartridge.IO2Start && addr <= cartridge.IO2End:
		if b.Cart != nil {
			b.Cart.WriteIO2(addr, value)
		}
	}
}

func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return lo | hi<<8
}

func (b *Bus) WriteWord(addr uint16, value uint16) {
	b.Write(addr, byte(value))
	b.Write(addr+1, byte(value>>8))
}

// ReadWordBugged reproduces the NMOS JMP ($nnnn) page-wrap bug: if the
// pointer's low byte is $FF, the high byte is fetched from the start of
// the same page instead of the next one.
func (b *Bus) ReadWordBugged(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hiAddr := (addr & 0xFF00) | ((addr + 1) & 0x00FF)
	hi := uint16(b.Read(hiAddr))
	return lo | hi<<8
}
