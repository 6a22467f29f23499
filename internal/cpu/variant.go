package cpu

// Variant selects which of the four CPU flavors drives instruction
// dispatch and timing. The NMOS variants (6502, 6502A, 6502C) are
// behaviorally identical at the instruction level — they differ only in
// electrical trivia that doesn't matter to software — so their instruction
// tables are identical and share one handler set. The 65C02's table differs:
// fixed JMP-indirect bug, defined decimal flags, and the Rockwell-style
// extra opcodes.
type Variant uint8

const (
	NMOS6502 Variant = iota
	NMOS6502A
	NMOS6502C
	CMOS65C02
)

func (v Variant) String() string {
	switch v {
	case NMOS6502:
		return "6502"
	case NMOS6502A:
		return "6502A"
	case NMOS6502C:
		return "6502C"
	case CMOS65C02:
		return "65C02"
	default:
		return "unknown"
	}
}

func (v Variant) isCMOS() bool {
	return v == CMOS65C02
}

// tableIndex maps a Variant to its slot in the [4][256]instruction array.
func (v Variant) tableIndex() int {
	return int(v)
}
