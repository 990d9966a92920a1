package cpu

import (
	"github.com/roscale/nesmulator/flags"
	"github.com/roscale/nesmulator/opcodes"
)

// execTable dispatches a decoded mnemonic to its executor. Each executor
// returns the extra cycles (beyond the opcode table's base count) this
// particular execution earns: page-cross extras for the gated read
// instructions, taken/page-cross extras for branches, zero for everything
// else.
var execTable = map[opcodes.Mnemonic]func(*CPU) (int, error){
	opcodes.ADC: (*CPU).iADC,
	opcodes.AND: (*CPU).iAND,
	opcodes.ASL: (*CPU).iASL,
	opcodes.BCC: (*CPU).iBCC,
	opcodes.BCS: (*CPU).iBCS,
	opcodes.BEQ: (*CPU).iBEQ,
	opcodes.BIT: (*CPU).iBIT,
	opcodes.BMI: (*CPU).iBMI,
	opcodes.BNE: (*CPU).iBNE,
	opcodes.BPL: (*CPU).iBPL,
	opcodes.BRK: (*CPU).iBRK,
	opcodes.BVC: (*CPU).iBVC,
	opcodes.BVS: (*CPU).iBVS,
	opcodes.CLC: (*CPU).iCLC,
	opcodes.CLD: (*CPU).iCLD,
	opcodes.CLI: (*CPU).iCLI,
	opcodes.CLV: (*CPU).iCLV,
	opcodes.CMP: (*CPU).iCMP,
	opcodes.CPX: (*CPU).iCPX,
	opcodes.CPY: (*CPU).iCPY,
	opcodes.DEC: (*CPU).iDEC,
	opcodes.DEX: (*CPU).iDEX,
	opcodes.DEY: (*CPU).iDEY,
	opcodes.EOR: (*CPU).iEOR,
	opcodes.INC: (*CPU).iINC,
	opcodes.INX: (*CPU).iINX,
	opcodes.INY: (*CPU).iINY,
	opcodes.JMP: (*CPU).iJMP,
	opcodes.JSR: (*CPU).iJSR,
	opcodes.LDA: (*CPU).iLDA,
	opcodes.LDX: (*CPU).iLDX,
	opcodes.LDY: (*CPU).iLDY,
	opcodes.LSR: (*CPU).iLSR,
	opcodes.NOP: (*CPU).iNOP,
	opcodes.ORA: (*CPU).iORA,
	opcodes.PHA: (*CPU).iPHA,
	opcodes.PHP: (*CPU).iPHP,
	opcodes.PLA: (*CPU).iPLA,
	opcodes.PLP: (*CPU).iPLP,
	opcodes.ROL: (*CPU).iROL,
	opcodes.ROR: (*CPU).iROR,
	opcodes.RTI: (*CPU).iRTI,
	opcodes.RTS: (*CPU).iRTS,
	opcodes.SBC: (*CPU).iSBC,
	opcodes.SEC: (*CPU).iSEC,
	opcodes.SED: (*CPU).iSED,
	opcodes.SEI: (*CPU).iSEI,
	opcodes.STA: (*CPU).iSTA,
	opcodes.STX: (*CPU).iSTX,
	opcodes.STY: (*CPU).iSTY,
	opcodes.TAX: (*CPU).iTAX,
	opcodes.TAY: (*CPU).iTAY,
	opcodes.TSX: (*CPU).iTSX,
	opcodes.TXA: (*CPU).iTXA,
	opcodes.TXS: (*CPU).iTXS,
	opcodes.TYA: (*CPU).iTYA,
}

func (c *CPU) iADC() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	var carry uint16
	if c.Flags.Carry {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.overflowCheck(c.A, v, result)
	c.carryCheck(sum)
	c.A = result
	c.zeroCheck(result)
	c.negativeCheck(result)
	return c.pageCrossExtra(), nil
}

// iSBC implements A + (~M) + C, the standard equivalence for 6502 subtract.
func (c *CPU) iSBC() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	m := ^v
	var carry uint16
	if c.Flags.Carry {
		carry = 1
	}
	sum := uint16(c.A) + uint16(m) + carry
	result := uint8(sum)
	c.overflowCheck(c.A, m, result)
	c.carryCheck(sum)
	c.A = result
	c.zeroCheck(result)
	c.negativeCheck(result)
	return c.pageCrossExtra(), nil
}

func (c *CPU) compare(reg uint8, gated bool) (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	r := reg - v
	c.Flags.Carry = reg >= v
	c.Flags.Zero = reg == v
	c.negativeCheck(r)
	if gated {
		return c.pageCrossExtra(), nil
	}
	return 0, nil
}

func (c *CPU) iCMP() (int, error) { return c.compare(c.A, true) }

// iCPX and iCPY are never gated: CPX/CPY only support Immediate, ZeroPage,
// and Absolute, none of which can cross a page.
func (c *CPU) iCPX() (int, error) { return c.compare(c.X, false) }
func (c *CPU) iCPY() (int, error) { return c.compare(c.Y, false) }

func (c *CPU) iASL() (int, error) {
	v, err := c.shiftOperand()
	if err != nil {
		return 0, err
	}
	c.carryCheck(uint16(v) << 1)
	res := v << 1
	if err := c.storeShiftResult(res); err != nil {
		return 0, err
	}
	c.zeroCheck(res)
	c.negativeCheck(res)
	return 0, nil
}

func (c *CPU) iLSR() (int, error) {
	v, err := c.shiftOperand()
	if err != nil {
		return 0, err
	}
	c.Flags.Carry = v&0x01 != 0
	res := v >> 1
	if err := c.storeShiftResult(res); err != nil {
		return 0, err
	}
	c.zeroCheck(res)
	c.negativeCheck(res)
	return 0, nil
}

func (c *CPU) iROL() (int, error) {
	v, err := c.shiftOperand()
	if err != nil {
		return 0, err
	}
	oldCarry := c.Flags.Carry
	c.carryCheck(uint16(v) << 1)
	res := v << 1
	if oldCarry {
		res |= 0x01
	}
	if err := c.storeShiftResult(res); err != nil {
		return 0, err
	}
	c.zeroCheck(res)
	c.negativeCheck(res)
	return 0, nil
}

func (c *CPU) iROR() (int, error) {
	v, err := c.shiftOperand()
	if err != nil {
		return 0, err
	}
	oldCarry := c.Flags.Carry
	newCarry := v&0x01 != 0
	res := v >> 1
	if oldCarry {
		res |= 0x80
	}
	c.Flags.Carry = newCarry
	if err := c.storeShiftResult(res); err != nil {
		return 0, err
	}
	c.zeroCheck(res)
	c.negativeCheck(res)
	return 0, nil
}

func (c *CPU) iAND() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.A &= v
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iORA() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.A |= v
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iEOR() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.A ^= v
	c.zeroCheck(c.A)
	c.negativeCheck(c.A)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iBIT() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.Flags.Zero = c.A&v == 0
	c.Flags.Negative = v&0x80 != 0
	c.Flags.Overflow = v&0x40 != 0
	return 0, nil
}

func (c *CPU) iSTA() (int, error) { return 0, c.Write(c.instructionTarget, c.A) }
func (c *CPU) iSTX() (int, error) { return 0, c.Write(c.instructionTarget, c.X) }
func (c *CPU) iSTY() (int, error) { return 0, c.Write(c.instructionTarget, c.Y) }

func (c *CPU) iLDA() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.A = v
	c.zeroCheck(v)
	c.negativeCheck(v)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iLDX() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.X = v
	c.zeroCheck(v)
	c.negativeCheck(v)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iLDY() (int, error) {
	v, err := c.operand()
	if err != nil {
		return 0, err
	}
	c.Y = v
	c.zeroCheck(v)
	c.negativeCheck(v)
	return c.pageCrossExtra(), nil
}

func (c *CPU) iTAX() (int, error) { c.X = c.A; c.zeroCheck(c.X); c.negativeCheck(c.X); return 0, nil }
func (c *CPU) iTAY() (int, error) { c.Y = c.A; c.zeroCheck(c.Y); c.negativeCheck(c.Y); return 0, nil }
func (c *CPU) iTXA() (int, error) { c.A = c.X; c.zeroCheck(c.A); c.negativeCheck(c.A); return 0, nil }
func (c *CPU) iTYA() (int, error) { c.A = c.Y; c.zeroCheck(c.A); c.negativeCheck(c.A); return 0, nil }
func (c *CPU) iTSX() (int, error) { c.X = c.S; c.zeroCheck(c.X); c.negativeCheck(c.X); return 0, nil }

// iTXS does not touch flags, unlike every other transfer.
func (c *CPU) iTXS() (int, error) { c.S = c.X; return 0, nil }

func (c *CPU) iINC() (int, error) {
	v, err := c.Read(c.instructionTarget)
	if err != nil {
		return 0, err
	}
	v++
	if err := c.Write(c.instructionTarget, v); err != nil {
		return 0, err
	}
	c.zeroCheck(v)
	c.negativeCheck(v)
	return 0, nil
}

func (c *CPU) iDEC() (int, error) {
	v, err := c.Read(c.instructionTarget)
	if err != nil {
		return 0, err
	}
	v--
	if err := c.Write(c.instructionTarget, v); err != nil {
		return 0, err
	}
	c.zeroCheck(v)
	c.negativeCheck(v)
	return 0, nil
}

func (c *CPU) iINX() (int, error) { c.X++; c.zeroCheck(c.X); c.negativeCheck(c.X); return 0, nil }
func (c *CPU) iINY() (int, error) { c.Y++; c.zeroCheck(c.Y); c.negativeCheck(c.Y); return 0, nil }
func (c *CPU) iDEX() (int, error) { c.X--; c.zeroCheck(c.X); c.negativeCheck(c.X); return 0, nil }
func (c *CPU) iDEY() (int, error) { c.Y--; c.zeroCheck(c.Y); c.negativeCheck(c.Y); return 0, nil }

// branch applies the taken-branch PC update and reports the cycle extras:
// 1 for a taken branch, 2 if it also crossed a page, 0 if not taken.
func (c *CPU) branch(taken bool) int {
	if !taken {
		return 0
	}
	c.PC = c.instructionTarget
	if c.pageCrossed {
		return 2
	}
	return 1
}

func (c *CPU) iBCC() (int, error) { return c.branch(!c.Flags.Carry), nil }
func (c *CPU) iBCS() (int, error) { return c.branch(c.Flags.Carry), nil }
func (c *CPU) iBEQ() (int, error) { return c.branch(c.Flags.Zero), nil }
func (c *CPU) iBNE() (int, error) { return c.branch(!c.Flags.Zero), nil }
func (c *CPU) iBMI() (int, error) { return c.branch(c.Flags.Negative), nil }
func (c *CPU) iBPL() (int, error) { return c.branch(!c.Flags.Negative), nil }
func (c *CPU) iBVC() (int, error) { return c.branch(!c.Flags.Overflow), nil }
func (c *CPU) iBVS() (int, error) { return c.branch(c.Flags.Overflow), nil }

func (c *CPU) iJMP() (int, error) { c.PC = c.instructionTarget; return 0, nil }

func (c *CPU) iJSR() (int, error) {
	if err := c.pushWord(c.PC - 1); err != nil {
		return 0, err
	}
	c.PC = c.instructionTarget
	return 0, nil
}

func (c *CPU) iRTS() (int, error) {
	target, err := c.popWord()
	if err != nil {
		return 0, err
	}
	c.PC = target + 1
	return 0, nil
}

func (c *CPU) iRTI() (int, error) {
	b, err := c.popStack()
	if err != nil {
		return 0, err
	}
	c.Flags = flags.FromByte(b)
	target, err := c.popWord()
	if err != nil {
		return 0, err
	}
	c.PC = target
	return 0, nil
}

// iBRK pushes PC past the padding byte that follows the opcode, pushes
// status with B set, then loads PC from the IRQ/BRK vector at $FFFE/$FFFF.
func (c *CPU) iBRK() (int, error) {
	c.PC++
	if err := c.pushWord(c.PC); err != nil {
		return 0, err
	}
	if err := c.pushStack(c.Flags.ToByte() | flags.B); err != nil {
		return 0, err
	}
	c.Flags.InterruptDisable = true
	lo, err := c.Read(irqVecLo)
	if err != nil {
		return 0, err
	}
	hi, err := c.Read(irqVecHi)
	if err != nil {
		return 0, err
	}
	c.PC = uint16(lo) | uint16(hi)<<8
	return 0, nil
}

func (c *CPU) iPHA() (int, error) { return 0, c.pushStack(c.A) }
func (c *CPU) iPHP() (int, error) { return 0, c.pushStack(c.Flags.ToByte() | flags.B) }

func (c *CPU) iPLA() (int, error) {
	v, err := c.popStack()
	if err != nil {
		return 0, err
	}
	c.A = v
	c.zeroCheck(v)
	c.negativeCheck(v)
	return 0, nil
}

func (c *CPU) iPLP() (int, error) {
	v, err := c.popStack()
	if err != nil {
		return 0, err
	}
	c.Flags = flags.FromByte(v)
	return 0, nil
}

func (c *CPU) iSEC() (int, error) { c.Flags.Carry = true; return 0, nil }
func (c *CPU) iCLC() (int, error) { c.Flags.Carry = false; return 0, nil }
func (c *CPU) iSED() (int, error) { c.Flags.Decimal = true; return 0, nil }
func (c *CPU) iCLD() (int, error) { c.Flags.Decimal = false; return 0, nil }
func (c *CPU) iSEI() (int, error) { c.Flags.InterruptDisable = true; return 0, nil }
func (c *CPU) iCLI() (int, error) { c.Flags.InterruptDisable = false; return 0, nil }
func (c *CPU) iCLV() (int, error) { c.Flags.Overflow = false; return 0, nil }

func (c *CPU) iNOP() (int, error) { return 0, nil }
