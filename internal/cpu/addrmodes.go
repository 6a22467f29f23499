package cpu

// fetch resolves the effective address (and, for most modes, the operand
// value at that address) for the instruction about to execute, advancing
// PC past the operand bytes. Cycle contributions of addressing itself are
// folded into c.pageCrossed (read-penalty candidates) and c.extraCycles
// (unconditional additions, e.g. the CMOS fixed JMP-indirect cost).
func (c *CPU) fetch(mode addrMode) {
	switch mode {
	case modeIMP:
		// nothing to fetch

	case modeACC:
		c.operandValue = c.A

	case modeIMM:
		c.operandAddr = c.PC
		c.PC++
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeZP:
		c.operandAddr = uint16(c.bus.Read(c.PC))
		c.PC++
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeZPX:
		c.operandAddr = uint16(c.bus.Read(c.PC) + c.X)
		c.PC++
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeZPY:
		c.operandAddr = uint16(c.bus.Read(c.PC) + c.Y)
		c.PC++
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeABS:
		c.operandAddr = c.bus.ReadWord(c.PC)
		c.PC += 2
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeABSX:
		base := c.bus.ReadWord(c.PC)
		c.PC += 2
		c.operandAddr = base + uint16(c.X)
		c.operandValue = c.bus.Read(c.operandAddr)
		c.pageCrossed = (base & 0xFF00) != (c.operandAddr & 0xFF00)

	case modeABSY:
		base := c.bus.ReadWord(c.PC)
		c.PC += 2
		c.operandAddr = base + uint16(c.Y)
		c.operandValue = c.bus.Read(c.operandAddr)
		c.pageCrossed = (base & 0xFF00) != (c.operandAddr & 0xFF00)

	case modeIND:
		ptr := c.bus.ReadWord(c.PC)
		c.PC += 2
		if c.Variant.isCMOS() {
			c.operandAddr = c.bus.ReadWord(ptr)
			c.extraCycles++ // CMOS fixes the bug at the cost of one cycle
		} else {
			c.operandAddr = c.bus.ReadWordBugged(ptr)
		}

	case modeINDX:
		ptr := uint16(c.bus.Read(c.PC) + c.X)
		c.PC++
		lo := uint16(c.bus.Read(ptr & 0x00FF))
		hi := uint16(c.bus.Read((ptr + 1) & 0x00FF))
		c.operandAddr = lo | hi<<8
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeINDY:
		zp := uint16(c.bus.Read(c.PC))
		c.PC++
		lo := uint16(c.bus.Read(zp))
		hi := uint16(c.bus.Read((zp + 1) & 0x00FF))
		base := lo | hi<<8
		c.operandAddr = base + uint16(c.Y)
		c.operandValue = c.bus.Read(c.operandAddr)
		c.pageCrossed = (base & 0xFF00) != (c.operandAddr & 0xFF00)

	case modeREL:
		offset := c.bus.Read(c.PC)
		c.PC++
		c.branchOffset = int8(offset)

	case modeZPI: // CMOS-only: (zp), no index
		zp := uint16(c.bus.Read(c.PC))
		c.PC++
		lo := uint16(c.bus.Read(zp))
		hi := uint16(c.bus.Read((zp + 1) & 0x00FF))
		c.operandAddr = lo | hi<<8
		c.operandValue = c.bus.Read(c.operandAddr)

	case modeZPREL: // CMOS-only: BBRn/BBSn — zp address then signed branch offset
		c.operandAddr = uint16(c.bus.Read(c.PC))
		c.PC++
		c.operandValue = c.bus.Read(c.operandAddr)
		offset := c.bus.Read(c.PC)
		c.PC++
		c.branchOffset = int8(offset)
	}
}

// branch applies the relative offset fetched by modeREL/modeZPREL to PC,
// charging the standard +1 (taken) / +1 (page crossed) penalties.
func (c *CPU) branch() {
	c.extraCycles++
	target := uint16(int32(c.PC) + int32(c.branchOffset))
	if (target & 0xFF00) != (c.PC & 0xFF00) {
		c.extraCycles++
	}
	c.PC = target
}
