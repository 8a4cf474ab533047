package cpu

// execute dispatches a non-CB-prefixed opcode. The 0x40-0x7F (LD r,r') and
// 0x80-0xBF (ALU A,r) blocks are fully regular in the real encoding and are
// decoded arithmetically; everything else is matched explicitly, in the
// same flat-switch style as the teacher's cpu/mapping.go dispatch table.
func (c *CPU) execute(opcode uint8) int {
	if opcode == 0x76 {
		c.halted = true
		return 4
	}

	if opcode >= 0x40 && opcode <= 0x7F {
		dst := (opcode >> 3) & 0x7
		src := opcode & 0x7
		c.setReg8(dst, c.reg8(src))
		if dst == regHLInd || src == regHLInd {
			return 8
		}
		return 4
	}

	if opcode >= 0x80 && opcode <= 0xBF {
		src := opcode & 0x7
		val := c.reg8(src)
		cycles := 4
		if src == regHLInd {
			cycles = 8
		}
		switch (opcode >> 3) & 0x7 {
		case 0:
			c.addToA(val)
		case 1:
			c.adcToA(val)
		case 2:
			c.subFromA(val)
		case 3:
			c.sbcFromA(val)
		case 4:
			c.and(val)
		case 5:
			c.xor(val)
		case 6:
			c.or(val)
		case 7:
			c.cp(val)
		}
		return cycles
	}

	switch opcode {
	case 0x00:
		return 4
	case 0x10:
		c.fetch8() // STOP's mandatory second byte, unused
		return 4

	case 0x01:
		c.setBC(c.fetch16())
		return 12
	case 0x11:
		c.setDE(c.fetch16())
		return 12
	case 0x21:
		c.setHL(c.fetch16())
		return 12
	case 0x31:
		c.sp = c.fetch16()
		return 12

	case 0x02:
		c.bus.WriteByte(c.bc(), c.a)
		return 8
	case 0x12:
		c.bus.WriteByte(c.de(), c.a)
		return 8
	case 0x0A:
		c.a = c.bus.ReadByte(c.bc())
		return 8
	case 0x1A:
		c.a = c.bus.ReadByte(c.de())
		return 8

	case 0x22:
		c.bus.WriteByte(c.hl(), c.a)
		c.setHL(c.hl() + 1)
		return 8
	case 0x32:
		c.bus.WriteByte(c.hl(), c.a)
		c.setHL(c.hl() - 1)
		return 8
	case 0x2A:
		c.a = c.bus.ReadByte(c.hl())
		c.setHL(c.hl() + 1)
		return 8
	case 0x3A:
		c.a = c.bus.ReadByte(c.hl())
		c.setHL(c.hl() - 1)
		return 8

	case 0x03:
		c.setBC(c.bc() + 1)
		return 8
	case 0x13:
		c.setDE(c.de() + 1)
		return 8
	case 0x23:
		c.setHL(c.hl() + 1)
		return 8
	case 0x33:
		c.sp++
		return 8
	case 0x0B:
		c.setBC(c.bc() - 1)
		return 8
	case 0x1B:
		c.setDE(c.de() - 1)
		return 8
	case 0x2B:
		c.setHL(c.hl() - 1)
		return 8
	case 0x3B:
		c.sp--
		return 8

	case 0x04:
		c.b = c.inc8(c.b)
		return 4
	case 0x0C:
		c.c = c.inc8(c.c)
		return 4
	case 0x14:
		c.d = c.inc8(c.d)
		return 4
	case 0x1C:
		c.e = c.inc8(c.e)
		return 4
	case 0x24:
		c.h = c.inc8(c.h)
		return 4
	case 0x2C:
		c.l = c.inc8(c.l)
		return 4
	case 0x34:
		c.bus.WriteByte(c.hl(), c.inc8(c.bus.ReadByte(c.hl())))
		return 12
	case 0x3C:
		c.a = c.inc8(c.a)
		return 4

	case 0x05:
		c.b = c.dec8(c.b)
		return 4
	case 0x0D:
		c.c = c.dec8(c.c)
		return 4
	case 0x15:
		c.d = c.dec8(c.d)
		return 4
	case 0x1D:
		c.e = c.dec8(c.e)
		return 4
	case 0x25:
		c.h = c.dec8(c.h)
		return 4
	case 0x2D:
		c.l = c.dec8(c.l)
		return 4
	case 0x35:
		c.bus.WriteByte(c.hl(), c.dec8(c.bus.ReadByte(c.hl())))
		return 12
	case 0x3D:
		c.a = c.dec8(c.a)
		return 4

	case 0x06:
		c.b = c.fetch8()
		return 8
	case 0x0E:
		c.c = c.fetch8()
		return 8
	case 0x16:
		c.d = c.fetch8()
		return 8
	case 0x1E:
		c.e = c.fetch8()
		return 8
	case 0x26:
		c.h = c.fetch8()
		return 8
	case 0x2E:
		c.l = c.fetch8()
		return 8
	case 0x36:
		c.bus.WriteByte(c.hl(), c.fetch8())
		return 12
	case 0x3E:
		c.a = c.fetch8()
		return 8

	case 0x07:
		c.a = c.rlc(c.a)
		c.resetFlag(zeroFlag)
		return 4
	case 0x0F:
		c.a = c.rrc(c.a)
		c.resetFlag(zeroFlag)
		return 4
	case 0x17:
		c.a = c.rl(c.a)
		c.resetFlag(zeroFlag)
		return 4
	case 0x1F:
		c.a = c.rr(c.a)
		c.resetFlag(zeroFlag)
		return 4

	case 0x08:
		addr := c.fetch16()
		c.bus.WriteByte(addr, uint8(c.sp))
		c.bus.WriteByte(addr+1, uint8(c.sp>>8))
		return 20
	case 0x09:
		c.addToHL(c.bc())
		return 8
	case 0x19:
		c.addToHL(c.de())
		return 8
	case 0x29:
		c.addToHL(c.hl())
		return 8
	case 0x39:
		c.addToHL(c.sp)
		return 8

	case 0x18:
		c.jr()
		return 12
	case 0x20:
		if !c.isSet(zeroFlag) {
			c.jr()
			return 12
		}
		c.pc++
		return 8
	case 0x28:
		if c.isSet(zeroFlag) {
			c.jr()
			return 12
		}
		c.pc++
		return 8
	case 0x30:
		if !c.isSet(carryFlag) {
			c.jr()
			return 12
		}
		c.pc++
		return 8
	case 0x38:
		if c.isSet(carryFlag) {
			c.jr()
			return 12
		}
		c.pc++
		return 8

	case 0x27:
		c.daa()
		return 4
	case 0x2F:
		c.a = ^c.a
		c.setFlag(subFlag)
		c.setFlag(halfCarryFlag)
		return 4
	case 0x37:
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlag(carryFlag)
		return 4
	case 0x3F:
		c.resetFlag(subFlag)
		c.resetFlag(halfCarryFlag)
		c.setFlagTo(carryFlag, !c.isSet(carryFlag))
		return 4

	case 0xC0:
		return c.retCond(!c.isSet(zeroFlag))
	case 0xC8:
		return c.retCond(c.isSet(zeroFlag))
	case 0xD0:
		return c.retCond(!c.isSet(carryFlag))
	case 0xD8:
		return c.retCond(c.isSet(carryFlag))
	case 0xC9:
		c.ret()
		return 16
	case 0xD9:
		c.ret()
		c.ime = true
		return 16

	case 0xC1:
		c.setBC(c.popStack())
		return 12
	case 0xD1:
		c.setDE(c.popStack())
		return 12
	case 0xE1:
		c.setHL(c.popStack())
		return 12
	case 0xF1:
		c.setAF(c.popStack())
		return 12

	case 0xC5:
		c.pushStack(c.bc())
		return 16
	case 0xD5:
		c.pushStack(c.de())
		return 16
	case 0xE5:
		c.pushStack(c.hl())
		return 16
	case 0xF5:
		c.pushStack(c.af())
		return 16

	case 0xC2:
		return c.jpCond(!c.isSet(zeroFlag))
	case 0xCA:
		return c.jpCond(c.isSet(zeroFlag))
	case 0xD2:
		return c.jpCond(!c.isSet(carryFlag))
	case 0xDA:
		return c.jpCond(c.isSet(carryFlag))
	case 0xC3:
		c.jp(c.fetch16())
		return 16
	case 0xE9:
		c.jp(c.hl())
		return 4

	case 0xC4:
		return c.callCond(!c.isSet(zeroFlag))
	case 0xCC:
		return c.callCond(c.isSet(zeroFlag))
	case 0xD4:
		return c.callCond(!c.isSet(carryFlag))
	case 0xDC:
		return c.callCond(c.isSet(carryFlag))
	case 0xCD:
		c.call(c.fetch16())
		return 24

	case 0xC6:
		c.addToA(c.fetch8())
		return 8
	case 0xCE:
		c.adcToA(c.fetch8())
		return 8
	case 0xD6:
		c.subFromA(c.fetch8())
		return 8
	case 0xDE:
		c.sbcFromA(c.fetch8())
		return 8
	case 0xE6:
		c.and(c.fetch8())
		return 8
	case 0xEE:
		c.xor(c.fetch8())
		return 8
	case 0xF6:
		c.or(c.fetch8())
		return 8
	case 0xFE:
		c.cp(c.fetch8())
		return 8

	case 0xC7:
		c.call(0x00)
		return 16
	case 0xCF:
		c.call(0x08)
		return 16
	case 0xD7:
		c.call(0x10)
		return 16
	case 0xDF:
		c.call(0x18)
		return 16
	case 0xE7:
		c.call(0x20)
		return 16
	case 0xEF:
		c.call(0x28)
		return 16
	case 0xF7:
		c.call(0x30)
		return 16
	case 0xFF:
		c.call(0x38)
		return 16

	case 0xE0:
		c.bus.WriteByte(0xFF00+uint16(c.fetch8()), c.a)
		return 12
	case 0xF0:
		c.a = c.bus.ReadByte(0xFF00 + uint16(c.fetch8()))
		return 12
	case 0xE2:
		c.bus.WriteByte(0xFF00+uint16(c.c), c.a)
		return 8
	case 0xF2:
		c.a = c.bus.ReadByte(0xFF00 + uint16(c.c))
		return 8
	case 0xEA:
		c.bus.WriteByte(c.fetch16(), c.a)
		return 16
	case 0xFA:
		c.a = c.bus.ReadByte(c.fetch16())
		return 16

	case 0xE8:
		c.sp = c.addToSP(int8(c.fetch8()))
		return 16
	case 0xF8:
		c.setHL(c.addToSP(int8(c.fetch8())))
		return 12
	case 0xF9:
		c.sp = c.hl()
		return 8

	case 0xF3:
		c.ime = false
		c.pendingIME = 0
		return 4
	case 0xFB:
		c.pendingIME = 1
		return 4

	default:
		panic("cpu: unimplemented opcode")
	}
}

func (c *CPU) retCond(take bool) int {
	if take {
		c.ret()
		return 20
	}
	return 8
}

func (c *CPU) jpCond(take bool) int {
	addr := c.fetch16()
	if take {
		c.jp(addr)
		return 16
	}
	return 12
}

func (c *CPU) callCond(take bool) int {
	addr := c.fetch16()
	if take {
		c.call(addr)
		return 24
	}
	return 12
}

func (c *CPU) addToSP(offset int8) uint16 {
	result := uint16(int32(c.sp) + int32(offset))
	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagTo(halfCarryFlag, (c.sp&0xF)+(uint16(uint8(offset))&0xF) > 0xF)
	c.setFlagTo(carryFlag, (c.sp&0xFF)+(uint16(uint8(offset))&0xFF) > 0xFF)
	return result
}

// executeCB dispatches a CB-prefixed opcode: the fully regular
// rotate/shift (bits 7-6 = 00), BIT (01), RES (10), and SET (11) blocks.
func (c *CPU) executeCB(opcode uint8) int {
	reg := opcode & 0x7
	bitIdx := (opcode >> 3) & 0x7
	val := c.reg8(reg)
	cycles := 8
	if reg == regHLInd {
		cycles = 16
	}

	switch opcode >> 6 {
	case 0:
		var result uint8
		switch bitIdx {
		case 0:
			result = c.rlc(val)
		case 1:
			result = c.rrc(val)
		case 2:
			result = c.rl(val)
		case 3:
			result = c.rr(val)
		case 4:
			result = c.sla(val)
		case 5:
			result = c.sra(val)
		case 6:
			result = c.swap(val)
		case 7:
			result = c.srl(val)
		}
		c.setReg8(reg, result)
	case 1:
		c.bit(bitIdx, val)
		if reg == regHLInd {
			return 12
		}
		return 8
	case 2:
		c.setReg8(reg, val&^(1<<bitIdx))
	case 3:
		c.setReg8(reg, val|(1<<bitIdx))
	}
	return cycles
}
