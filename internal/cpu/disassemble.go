package cpu

import "fmt"

// Disassemble walks the full 64KB address space and returns one formatted
// instruction string per address it lands on, in the teacher's
// "$PC: MNEMONIC operand" style. It is a debugging aid only: it sweeps
// linearly from $0000 and steps past each decoded instruction's operand
// bytes, so those addresses have no entry of their own, and it has no idea
// which bytes are actually code versus data — an entry point that does not
// line up with the sweep has no entry either.
func (c *CPU) Disassemble() map[uint16]string {
	disasm := make(map[uint16]string, 0x10000)

	addr := uint32(0)
	for addr <= 0xFFFF {
		pc := uint16(addr)
		opcode := c.bus.Read(pc)
		instr := c.instrs[opcode]
		if instr.fn == nil {
			disasm[pc] = fmt.Sprintf("$%04X: ??? (%02X)", pc, opcode)
			addr++
			continue
		}

		operandPC := pc + 1
		var operandLen uint32
		var line string
		switch instr.mode {
		case modeIMP, modeACC:
			line = fmt.Sprintf("$%04X: %s", pc, instr.mnemonic)
		case modeIMM:
			line = fmt.Sprintf("$%04X: %s #$%02X", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeZP:
			line = fmt.Sprintf("$%04X: %s $%02X", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeZPX:
			line = fmt.Sprintf("$%04X: %s $%02X,X", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeZPY:
			line = fmt.Sprintf("$%04X: %s $%02X,Y", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeZPI:
			line = fmt.Sprintf("$%04X: %s ($%02X)", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeABS:
			line = fmt.Sprintf("$%04X: %s $%04X", pc, instr.mnemonic, c.bus.ReadWord(operandPC))
			operandLen = 2
		case modeABSX:
			line = fmt.Sprintf("$%04X: %s $%04X,X", pc, instr.mnemonic, c.bus.ReadWord(operandPC))
			operandLen = 2
		case modeABSY:
			line = fmt.Sprintf("$%04X: %s $%04X,Y", pc, instr.mnemonic, c.bus.ReadWord(operandPC))
			operandLen = 2
		case modeIND:
			line = fmt.Sprintf("$%04X: %s ($%04X)", pc, instr.mnemonic, c.bus.ReadWord(operandPC))
			operandLen = 2
		case modeINDX:
			line = fmt.Sprintf("$%04X: %s ($%02X,X)", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeINDY:
			line = fmt.Sprintf("$%04X: %s ($%02X),Y", pc, instr.mnemonic, c.bus.Read(operandPC))
			operandLen = 1
		case modeREL:
			offset := int8(c.bus.Read(operandPC))
			target := uint16(int32(pc) + 2 + int32(offset))
			line = fmt.Sprintf("$%04X: %s $%04X", pc, instr.mnemonic, target)
			operandLen = 1
		case modeZPREL:
			zp := c.bus.Read(operandPC)
			offset := int8(c.bus.Read(operandPC + 1))
			target := uint16(int32(pc) + 3 + int32(offset))
			line = fmt.Sprintf("$%04X: %s $%02X,$%04X", pc, instr.mnemonic, zp, target)
			operandLen = 2
		}
		disasm[pc] = line
		addr += 1 + operandLen
	}
	return disasm
}
