// Package disassembler renders the instruction at a given PC, plus the
// current register snapshot, in the fixed reference format used by the
// nestest.log correctness oracle. It never mutates CPU state; Line peeks
// at the bytes that addressing-mode resolution would consume without
// advancing anything.
package disassembler

import (
	"fmt"

	"github.com/roscale/nesmulator/opcodes"
)

// Reader is the minimal bus access the disassembler needs: a single byte
// read by address. cpu.CPU satisfies this directly.
type Reader interface {
	Read(addr uint16) (uint8, error)
}

// Registers is the register snapshot rendered at the end of each log line.
type Registers struct {
	A, X, Y, P, SP uint8
}

// Line renders the instruction at pc and returns it alongside the number of
// bytes (opcode + operand) that instruction occupies, so the caller can
// advance a cursor without re-decoding. A bus error while peeking operand
// bytes is returned as err with an empty line.
func Line(pc uint16, bus Reader, regs Registers) (string, int, error) {
	op, err := bus.Read(pc)
	if err != nil {
		return "", 0, err
	}
	entry := opcodes.Table[op]

	length := instructionLength(entry.Mode)
	raw := make([]uint8, length)
	raw[0] = op
	for i := 1; i < length; i++ {
		b, err := bus.Read(pc + uint16(i))
		if err != nil {
			return "", 0, err
		}
		raw[i] = b
	}

	var bytesStr string
	for _, b := range raw {
		bytesStr += fmt.Sprintf("%02X ", b)
	}

	operand, err := renderOperand(pc, entry, raw, bus, regs)
	if err != nil {
		return "", 0, err
	}

	line := fmt.Sprintf("%04X  %-10s%s %-28sA:%02X X:%02X Y:%02X P:%02X SP:%02X",
		pc, bytesStr, entry.Mnemonic, operand, regs.A, regs.X, regs.Y, regs.P, regs.SP)
	return line, length, nil
}

func instructionLength(mode opcodes.AddressingMode) int {
	switch mode {
	case opcodes.Implicit, opcodes.Accumulator:
		return 1
	case opcodes.Immediate, opcodes.ZeroPage, opcodes.ZeroPageIndexedX, opcodes.ZeroPageIndexedY,
		opcodes.Relative, opcodes.IndexedIndirect, opcodes.IndirectIndexed:
		return 2
	case opcodes.Absolute, opcodes.AbsoluteIndexedX, opcodes.AbsoluteIndexedY, opcodes.Indirect:
		return 3
	default:
		return 1
	}
}

// renderOperand formats the operand portion of a log line, matching the
// nestest.log conventions exactly: reads through bus are allowed (they
// drive the "= vv" disassembly annotations) but never mutate CPU state.
func renderOperand(pc uint16, entry opcodes.Opcode, raw []uint8, bus Reader, regs Registers) (string, error) {
	switch entry.Mode {
	case opcodes.Implicit:
		return "", nil
	case opcodes.Accumulator:
		return "A", nil
	case opcodes.Immediate:
		return fmt.Sprintf("#$%02X", raw[1]), nil
	case opcodes.ZeroPage:
		v, err := bus.Read(uint16(raw[1]))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%02X = %02X", raw[1], v), nil
	case opcodes.ZeroPageIndexedX:
		addr := raw[1] + regs.X
		v, err := bus.Read(uint16(addr))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%02X,X @ %02X = %02X", raw[1], addr, v), nil
	case opcodes.ZeroPageIndexedY:
		addr := raw[1] + regs.Y
		v, err := bus.Read(uint16(addr))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", raw[1], addr, v), nil
	case opcodes.Relative:
		offset := int16(int8(raw[1]))
		target := pc + 2 + uint16(offset)
		return fmt.Sprintf("$%04X", target), nil
	case opcodes.Absolute:
		addr := uint16(raw[1]) | uint16(raw[2])<<8
		if entry.Mnemonic == opcodes.JMP || entry.Mnemonic == opcodes.JSR {
			return fmt.Sprintf("$%04X", addr), nil
		}
		v, err := bus.Read(addr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X = %02X", addr, v), nil
	case opcodes.AbsoluteIndexedX:
		addr := uint16(raw[1]) | uint16(raw[2])<<8
		eff := addr + uint16(regs.X)
		v, err := bus.Read(eff)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X,X @ %04X = %02X", addr, eff, v), nil
	case opcodes.AbsoluteIndexedY:
		addr := uint16(raw[1]) | uint16(raw[2])<<8
		eff := addr + uint16(regs.Y)
		v, err := bus.Read(eff)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", addr, eff, v), nil
	case opcodes.Indirect:
		ptr := uint16(raw[1]) | uint16(raw[2])<<8
		target, err := readIndirectWithPageBug(ptr, bus)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("($%04X) = %04X", ptr, target), nil
	case opcodes.IndexedIndirect:
		zp := raw[1] + regs.X
		lo, err := bus.Read(uint16(zp))
		if err != nil {
			return "", err
		}
		hi, err := bus.Read(uint16(zp + 1))
		if err != nil {
			return "", err
		}
		addr := uint16(lo) | uint16(hi)<<8
		v, err := bus.Read(addr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", raw[1], zp, addr, v), nil
	case opcodes.IndirectIndexed:
		lo, err := bus.Read(uint16(raw[1]))
		if err != nil {
			return "", err
		}
		hi, err := bus.Read(uint16(raw[1] + 1))
		if err != nil {
			return "", err
		}
		addr := uint16(lo) | uint16(hi)<<8
		eff := addr + uint16(regs.Y)
		v, err := bus.Read(eff)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", raw[1], addr, eff, v), nil
	default:
		return "", nil
	}
}

// readIndirectWithPageBug reads the 16-bit value pointed to by ptr,
// replicating the original 6502 JMP (indirect) hardware bug: when the
// pointer's low byte is $FF, the high byte wraps within the same page
// instead of crossing into the next one.
func readIndirectWithPageBug(ptr uint16, bus Reader) (uint16, error) {
	lo, err := bus.Read(ptr)
	if err != nil {
		return 0, err
	}
	hiAddr := ptr + 1
	if ptr&0x00FF == 0x00FF {
		hiAddr = ptr & 0xFF00
	}
	hi, err := bus.Read(hiAddr)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}
