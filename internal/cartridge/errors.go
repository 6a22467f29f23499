package cartridge

import "fmt"

// InvalidCartridge reports a malformed cartridge image: bad CRT signature,
// truncated CHIP packet, or a raw .bin whose length matches none of the
// documented auto-detection cases.
type InvalidCartridge struct {
	Reason string
}

func (e *InvalidCartridge) Error() string {
	return fmt.Sprintf("invalid cartridge: %s", e.Reason)
}

// UnsupportedCartridge reports a CRT hardware type ID this emulator has no
// mapper for.
type UnsupportedCartridge struct {
	HardwareType uint16
}

func (e *UnsupportedCartridge) Error() string {
	return fmt.Sprintf("unsupported cartridge hardware type %d", e.HardwareType)
}
