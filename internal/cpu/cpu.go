package cpu

import "fmt"

// Bus is the memory interface the CPU drives. Bus.ReadWordBugged must
// reproduce the NMOS page-wrap bug (high byte fetched from the start of
// the same page) and is only ever called by the JMP ($nnnn) handler.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	ReadWord(addr uint16) uint16
	WriteWord(addr uint16, value uint16)
	ReadWordBugged(addr uint16) uint16
}

const stackBase = uint16(0x0100)

// Flag bits of the P register. Bit 5 (unused) reads back as 1; B is
// synthetic and only ever appears in the byte pushed to the stack.
const (
	flagC = byte(1 << 0) // Carry
	flagZ = byte(1 << 1) // Zero
	flagI = byte(1 << 2) // Interrupt disable
	flagD = byte(1 << 3) // Decimal mode
	flagB = byte(1 << 4) // Break (stack-only)
	flagU = byte(1 << 5) // Unused, always 1
	flagV = byte(1 << 6) // Overflow
	flagN = byte(1 << 7) // Negative
)

// CPUSnapshot is a read-only copy of CPU state handed to a trace hook.
type CPUSnapshot struct {
	A, X, Y, SP byte
	PC          uint16
	P           byte
	Cycles      uint64
}

// TraceFunc is invoked once per instruction boundary when set, receiving
// the raw opcode byte and the state immediately before it executes.
type TraceFunc func(snap CPUSnapshot, opcode byte, mnemonic string)

type CPU struct {
	A, X, Y byte
	SP      byte
	PC      uint16
	P       byte

	Cycles  uint64
	Variant Variant

	pendingIRQ bool
	pendingNMI bool

	bus    Bus
	instrs *[256]instruction

	// scratch state for the instruction currently being decoded.
	addrMode     addrMode
	operandAddr  uint16
	operandValue byte
	branchOffset int8
	pageCrossed  bool
	extraCycles  uint8

	// StrictCycles turns on CycleExhaustion in Execute; a testing aid,
	// never enabled by the production composition root.
	StrictCycles bool
	// StrictOpcodes turns unknown/illegal opcodes into InvalidOpcode
	// instead of the documented NOP fallback.
	StrictOpcodes bool
	// BreakTraps turns BRK into CPUBreakError instead of servicing it
	// as a normal interrupt.
	BreakTraps bool

	Trace TraceFunc
}

func NewCPU(bus Bus, variant Variant) *CPU {
	c := &CPU{
		bus:     bus,
		Variant: variant,
		instrs:  &instrTables[variant.tableIndex()],
	}
	return c
}

func (c *CPU) getFlag(flag byte) bool {
	return c.P&flag != 0
}

func (c *CPU) setFlag(flag byte, v bool) {
	if v {
		c.P |= flag
		return
	}
	c.P &^= flag
}

func (c *CPU) setFlagsZN(v byte) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) stackPush8(v byte) {
	c.bus.Write(stackBase|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) stackPop8() byte {
	c.SP++
	return c.bus.Read(stackBase | uint16(c.SP))
}

func (c *CPU) stackPush16(v uint16) {
	c.stackPush8(byte(v >> 8))
	c.stackPush8(byte(v))
}

func (c *CPU) stackPop16() uint16 {
	lo := uint16(c.stackPop8())
	hi := uint16(c.stackPop8())
	return lo | hi<<8
}

// Reset initializes the CPU exactly as spec.md §3 describes: PC loaded
// from the reset vector, SP = $FD, P = $24 (I set, unused bit set),
// pending interrupts cleared. RAM is untouched — it persists across resets.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = flagU | flagI
	c.PC = c.bus.ReadWord(0xFFFC)
	c.Cycles = 0
	c.pendingIRQ = false
	c.pendingNMI = false
}

// NMI latches a non-maskable interrupt; it is edge-triggered and serviced
// at the next instruction boundary regardless of the I flag.
func (c *CPU) NMI() {
	c.pendingNMI = true
}

// IRQ asserts the (level-sensitive) interrupt line; serviced at the next
// boundary only if P.I == 0.
func (c *CPU) IRQ() {
	c.pendingIRQ = true
}

func (c *CPU) serviceInterrupt(vector uint16, brk bool) uint8 {
	if brk {
		// Step already advanced PC past the BRK opcode byte; the pushed
		// return address must also skip the conventional signature byte
		// that follows it.
		c.PC++
	}
	c.stackPush16(c.PC)
	b := byte(0)
	if brk {
		b = flagB
	}
	c.stackPush8(c.P | flagU | b)
	c.setFlag(flagI, true)
	if c.Variant.isCMOS() {
		c.setFlag(flagD, false)
	}
	c.PC = c.bus.ReadWord(vector)
	return 7
}

// Step executes exactly one instruction, or services a pending interrupt,
// and returns the number of cycles consumed. Priority is RESET > NMI > IRQ;
// RESET is driven externally via Reset() and is never auto-serviced here.
func (c *CPU) Step() (uint8, error) {
	if c.pendingNMI {
		c.pendingNMI = false
		cycles := c.serviceInterrupt(0xFFFA, false)
		c.Cycles += uint64(cycles)
		return cycles, nil
	}
	if c.pendingIRQ && !c.getFlag(flagI) {
		c.pendingIRQ = false
		cycles := c.serviceInterrupt(0xFFFE, false)
		c.Cycles += uint64(cycles)
		return cycles, nil
	}

	pc := c.PC
	opcode := c.bus.Read(c.PC)
	instr := c.instrs[opcode]
	if c.Trace != nil {
		c.Trace(c.snapshot(), opcode, instr.mnemonic)
	}
	c.PC++

	// Every unofficial slot of the opcode matrix holds a NOP row; $EA is the
	// only official NOP.
	if c.StrictOpcodes && (instr.fn == nil || (instr.mnemonic == "NOP" && opcode != 0xEA)) {
		return 0, &InvalidOpcode{Opcode: opcode, PC: pc}
	}
	if instr.fn == nil {
		// documented fallback: treat as a 1-byte, 2-cycle NOP.
		c.Cycles += 2
		return 2, nil
	}

	c.addrMode = instr.mode
	c.pageCrossed = false
	c.extraCycles = 0
	c.fetch(instr.mode)

	if instr.mnemonic == "BRK" {
		if c.BreakTraps {
			return 0, &CPUBreakError{PC: pc}
		}
		cycles := c.serviceInterrupt(0xFFFE, true)
		c.Cycles += uint64(cycles)
		return cycles, nil
	}

	instr.fn(c)

	total := instr.cycles + c.extraCycles
	c.Cycles += uint64(total)
	return total, nil
}

// Execute steps the CPU until at least maxCycles have elapsed, returning
// the cycles actually consumed. The last instruction may run past the
// budget; in StrictCycles mode such an overrun (the budget ran out
// mid-instruction) is returned as CycleExhaustion — this is a testing aid,
// not runtime behavior.
func (c *CPU) Execute(maxCycles uint64) (uint64, error) {
	var consumed uint64
	for consumed < maxCycles {
		cycles, err := c.Step()
		if err != nil {
			return consumed, err
		}
		consumed += uint64(cycles)
		if c.StrictCycles && consumed > maxCycles {
			return consumed, &CycleExhaustion{Requested: maxCycles, Consumed: consumed}
		}
	}
	return consumed, nil
}

func (c *CPU) snapshot() CPUSnapshot {
	return CPUSnapshot{A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P, Cycles: c.Cycles}
}

func (c *CPU) String() string {
	return fmt.Sprintf("A=%02X X=%02X Y=%02X SP=%02X P=%02X PC=%04X", c.A, c.X, c.Y, c.SP, c.P, c.PC)
}
