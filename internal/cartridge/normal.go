package cartridge

import "fmt"

// StaticROM is CRT hardware type 0: ROM wired directly to the bus with no
// banking logic at all. Which of roml/romh/ultimaxROMH is populated decides
// the EXROM/GAME mode.
type StaticROM struct {
	baseCartridge
	roml, romh, ultimaxROMH []byte
	exrom, game             bool
}

// NewStaticROM builds a type-0 cartridge. Pass nil for any region the image
// doesn't populate; exactly one combination is valid:
//
//	roml only:            8KB mode  (EXROM=0, GAME=1)
//	roml + romh:          16KB mode (EXROM=0, GAME=0)
//	ultimaxROMH (+ roml): Ultimax   (EXROM=1, GAME=0)
func NewStaticROM(roml, romh, ultimaxROMH []byte) *StaticROM {
	c := &StaticROM{roml: roml, romh: romh, ultimaxROMH: ultimaxROMH}
	switch {
	case ultimaxROMH != nil:
		c.exrom, c.game = true, false
	case romh != nil:
		c.exrom, c.game = false, false
	default:
		c.exrom, c.game = false, true
	}
	return c
}

func (c *StaticROM) EXROM() bool { return c.exrom }
func (c *StaticROM) GAME() bool  { return c.game }
func (c *StaticROM) Reset()      {}

func (c *StaticROM) ReadROML(addr uint16) byte {
	if c.roml == nil {
		return 0xFF
	}
	off := int(addr) - ROMLStart
	if off < 0 || off >= len(c.roml) {
		return 0xFF
	}
	return c.roml[off]
}

func (c *StaticROM) ReadROMH(addr uint16) byte {
	if c.romh == nil {
		return 0xFF
	}
	off := int(addr) - ROMHStart
	if off < 0 || off >= len(c.romh) {
		return 0xFF
	}
	return c.romh[off]
}

func (c *StaticROM) ReadUltimaxROMH(addr uint16) byte {
	if c.ultimaxROMH == nil {
		return 0xFF
	}
	off := int(addr) - UltimaxROMHStart
	if off < 0 || off >= len(c.ultimaxROMH) {
		return 0xFF
	}
	return c.ultimaxROMH[off]
}

// cbm80Signature is the autostart marker ($8004-$8008 == "CBM80": "CBM"
// with bit 7 set, then plain ASCII "80") standard 8K/16K cartridges carry
// so the KERNAL knows to jump into cartridge code.
var cbm80Signature = []byte{0xC3, 0xC2, 0xCD, 0x38, 0x30}

func hasCBM80(data []byte) bool {
	if len(data) < 4+len(cbm80Signature) {
		return false
	}
	for i, b := range cbm80Signature {
		if data[4+i] != b {
			return false
		}
	}
	return true
}

// resetVectorInUltimaxRange reports whether the 16-bit little-endian word
// at the tail of an 8KB image — where the reset vector lands if this image
// is mapped at $E000-$FFFF — falls inside the cartridge ROM space itself.
// That only happens by construction for Ultimax images.
func resetVectorInUltimaxRange(data []byte) bool {
	if len(data) < ROMLSize {
		return false
	}
	lo := uint16(data[ROMLSize-4])
	hi := uint16(data[ROMLSize-3])
	vector := lo | hi<<8
	return vector >= UltimaxROMHStart
}

// LoadBin auto-detects a raw .bin/.rom cartridge image: an 8KB image with
// a CBM80 signature is 8K mode; an 8KB image whose would-be reset vector
// lands in $E000-$FFFF is Ultimax; a 16384-byte image is 16K mode. Anything
// else is rejected rather than guessed at.
func LoadBin(data []byte) (Cartridge, error) {
	switch len(data) {
	case ROMLSize:
		if hasCBM80(data) {
			return NewStaticROM(data, nil, nil), nil
		}
		if resetVectorInUltimaxRange(data) {
			return NewStaticROM(nil, nil, data), nil
		}
		return nil, &InvalidCartridge{Reason: "8KB image has neither a CBM80 signature nor an in-range Ultimax reset vector"}
	case ROMLSize + ROMHSize:
		roml := make([]byte, ROMLSize)
		romh := make([]byte, ROMHSize)
		copy(roml, data[:ROMLSize])
		copy(romh, data[ROMLSize:])
		return NewStaticROM(roml, romh, nil), nil
	default:
		return nil, &InvalidCartridge{Reason: fmt.Sprintf("unrecognized raw cartridge length %d (expected 8192 or 16384)", len(data))}
	}
}
