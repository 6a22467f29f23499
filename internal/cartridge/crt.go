package cartridge

import (
	"bytes"
	"encoding/binary"
)

const (
	crtSignature  = "C64 CARTRIDGE   "
	chipSignature = "CHIP"
)

const (
	hwTypeNormal       = 0
	hwTypeActionReplay = 1
)

// crtHeader mirrors the 64-byte CRT file header (all multi-byte fields
// big-endian, per the VICE CRT specification).
type crtHeader struct {
	Signature    [16]byte
	HeaderLength uint32
	VersionHi    uint8
	VersionLo    uint8
	HardwareType uint16
	EXROMLine    uint8
	GAMELine     uint8
	_            [6]byte // reserved
	Name         [32]byte
}

// LoadCRT parses a standard CRT cartridge image: a 64-byte header followed
// by one or more CHIP packets carrying ROM data and its load address.
func LoadCRT(data []byte) (Cartridge, error) {
	if len(data) < 64 {
		return nil, &InvalidCartridge{Reason: "CRT file shorter than the 64-byte header"}
	}

	var hdr crtHeader
	if err := binary.Read(bytes.NewReader(data[:64]), binary.BigEndian, &hdr); err != nil {
		return nil, &InvalidCartridge{Reason: "couldn't parse CRT header: " + err.Error()}
	}
	if string(hdr.Signature[:]) != crtSignature {
		return nil, &InvalidCartridge{Reason: "missing \"C64 CARTRIDGE\" signature"}
	}

	headerLen := hdr.HeaderLength
	if headerLen < 64 || int(headerLen) > len(data) {
		headerLen = 64
	}

	var roml, romh, ultimaxROMH []byte
	banks := map[int][]byte{}

	offset := int(headerLen)
	for offset+16 <= len(data) {
		if string(data[offset:offset+4]) != chipSignature {
			return nil, &InvalidCartridge{Reason: "bad CHIP packet signature"}
		}
		packetLen := int(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		chipType := binary.BigEndian.Uint16(data[offset+8 : offset+10])
		bankNumber := int(binary.BigEndian.Uint16(data[offset+10 : offset+12]))
		loadAddr := binary.BigEndian.Uint16(data[offset+12 : offset+14])
		romSize := int(binary.BigEndian.Uint16(data[offset+14 : offset+16]))

		if offset+16+romSize > len(data) {
			return nil, &InvalidCartridge{Reason: "truncated CHIP packet"}
		}
		romData := data[offset+16 : offset+16+romSize]

		if chipType == 0 { // ROM only; RAM/flash CHIP types aren't modeled
			switch hdr.HardwareType {
			case hwTypeNormal:
				switch {
				case loadAddr == ROMLStart && romSize > ROMLSize:
					roml = romData[:ROMLSize]
					romh = romData[ROMLSize:]
				case loadAddr == ROMLStart:
					roml = romData
				case loadAddr == ROMHStart:
					romh = romData
				case loadAddr == UltimaxROMHStart:
					ultimaxROMH = romData
				}
			default:
				if loadAddr == ROMLStart {
					banks[bankNumber] = romData
				}
			}
		}

		if packetLen <= 0 {
			break // malformed length; stop rather than loop forever
		}
		offset += packetLen
	}

	name := string(bytes.TrimRight(hdr.Name[:], "\x00"))
	_ = name

	switch hdr.HardwareType {
	case hwTypeNormal:
		if roml == nil && ultimaxROMH == nil {
			return nil, &InvalidCartridge{Reason: "type-0 CRT has no usable CHIP data"}
		}
		return NewStaticROM(roml, romh, ultimaxROMH), nil
	case hwTypeActionReplay:
		if len(banks) == 0 {
			return nil, &InvalidCartridge{Reason: "Action Replay CRT has no bank data"}
		}
		maxBank := 0
		for n := range banks {
			if n > maxBank {
				maxBank = n
			}
		}
		bankList := make([][]byte, maxBank+1)
		for i := range bankList {
			if b, ok := banks[i]; ok {
				bankList[i] = b
			} else {
				bankList[i] = make([]byte, ROMLSize)
			}
		}
		return NewActionReplay(bankList), nil
	default:
		return nil, &UnsupportedCartridge{HardwareType: hdr.HardwareType}
	}
}
