package cpu

import (
	"github.com/roscale/nesmulator/bits"
	"github.com/roscale/nesmulator/opcodes"
)

// addrTable dispatches an opcode's addressing mode to the resolver that
// advances PC over its operand bytes and sets instructionTarget (and
// pageCrossed, where the mode can cross a page).
var addrTable = map[opcodes.AddressingMode]func(*CPU) error{
	opcodes.Implicit:         (*CPU).addrNone,
	opcodes.Accumulator:      (*CPU).addrNone,
	opcodes.Immediate:        (*CPU).addrImmediate,
	opcodes.ZeroPage:         (*CPU).addrZP,
	opcodes.ZeroPageIndexedX: (*CPU).addrZPX,
	opcodes.ZeroPageIndexedY: (*CPU).addrZPY,
	opcodes.Relative:         (*CPU).addrRelative,
	opcodes.Absolute:         (*CPU).addrAbsolute,
	opcodes.AbsoluteIndexedX: (*CPU).addrAbsoluteX,
	opcodes.AbsoluteIndexedY: (*CPU).addrAbsoluteY,
	opcodes.Indirect:         (*CPU).addrIndirect,
	opcodes.IndexedIndirect:  (*CPU).addrIndexedIndirect,
	opcodes.IndirectIndexed:  (*CPU).addrIndirectIndexed,
}

func (c *CPU) addrNone() error { return nil }

func (c *CPU) addrImmediate() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.instructionTarget = uint16(b)
	return nil
}

func (c *CPU) addrZP() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.instructionTarget = uint16(b)
	return nil
}

// addrZPX and addrZPY wrap the index addition modulo 256 (uint8 overflow)
// before widening to uint16, so the effective address never leaves page 0.
func (c *CPU) addrZPX() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.instructionTarget = uint16(b + c.X)
	return nil
}

func (c *CPU) addrZPY() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	c.instructionTarget = uint16(b + c.Y)
	return nil
}

func (c *CPU) addrRelative() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	offset := int16(int8(b))
	target := c.PC + uint16(offset)
	c.pageCrossed = bits.Page(c.PC) != bits.Page(target)
	c.instructionTarget = target
	return nil
}

func (c *CPU) addrAbsolute() error {
	w, err := c.fetchWord()
	if err != nil {
		return err
	}
	c.instructionTarget = w
	return nil
}

func (c *CPU) addrAbsoluteX() error {
	w, err := c.fetchWord()
	if err != nil {
		return err
	}
	eff := w + uint16(c.X)
	c.pageCrossed = bits.Page(w) != bits.Page(eff)
	c.instructionTarget = eff
	return nil
}

func (c *CPU) addrAbsoluteY() error {
	w, err := c.fetchWord()
	if err != nil {
		return err
	}
	eff := w + uint16(c.Y)
	c.pageCrossed = bits.Page(w) != bits.Page(eff)
	c.instructionTarget = eff
	return nil
}

func (c *CPU) addrIndirect() error {
	ptr, err := c.fetchWord()
	if err != nil {
		return err
	}
	target, err := c.readIndirect(ptr)
	if err != nil {
		return err
	}
	c.instructionTarget = target
	return nil
}

// readIndirect replicates the original 6502 JMP-indirect hardware bug: when
// the pointer's low byte is $FF, the high byte wraps within the same page
// instead of crossing into the next one.
func (c *CPU) readIndirect(ptr uint16) (uint16, error) {
	lo, err := c.Read(ptr)
	if err != nil {
		return 0, err
	}
	hiAddr := ptr + 1
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr & 0xFF00
	}
	hi, err := c.Read(hiAddr)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (c *CPU) addrIndexedIndirect() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	zp := b + c.X
	lo, err := c.Read(uint16(zp))
	if err != nil {
		return err
	}
	hi, err := c.Read(uint16(zp + 1))
	if err != nil {
		return err
	}
	c.instructionTarget = uint16(lo) | uint16(hi)<<8
	return nil
}

func (c *CPU) addrIndirectIndexed() error {
	b, err := c.fetchByte()
	if err != nil {
		return err
	}
	lo, err := c.Read(uint16(b))
	if err != nil {
		return err
	}
	hi, err := c.Read(uint16(b + 1))
	if err != nil {
		return err
	}
	base := uint16(lo) | uint16(hi)<<8
	eff := base + uint16(c.Y)
	c.pageCrossed = bits.Page(base) != bits.Page(eff)
	c.instructionTarget = eff
	return nil
}
