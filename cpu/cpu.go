// Package cpu implements the NMOS 6502 core used by the NES: registers,
// 2 KiB internal RAM, the addressing-mode resolver, the instruction
// executor, and the clock pacing model that lets a host drive execution one
// tick at a time while each instruction still appears to run atomically.
package cpu

import (
	"fmt"

	"github.com/roscale/nesmulator/cartridge"
	"github.com/roscale/nesmulator/disassembler"
	"github.com/roscale/nesmulator/flags"
	"github.com/roscale/nesmulator/opcodes"
)

const (
	ramSize   = 0x800
	ramEnd    = 0x1FFF
	ioEnd     = 0x401F
	resetLo   = 0xFFFC
	resetHi   = 0xFFFD
	irqVecLo  = 0xFFFE
	irqVecHi  = 0xFFFF
	stackBase = 0x0100
)

// InvalidCPUState reports an internal invariant violation: an opcode table
// entry referencing an addressing mode or mnemonic with no resolver/executor
// wired up.
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid cpu state: %s", e.Reason)
}

// UnmappedRegionError reports a bus access into the PPU/APU register windows
// ($2000-$401F), which this core does not implement.
type UnmappedRegionError struct {
	Addr uint16
}

func (e UnmappedRegionError) Error() string {
	return fmt.Sprintf("unmapped region access at %#04x", e.Addr)
}

// IllegalOpcodeError is available for embedders that want illegal/
// undocumented opcodes to fail loud rather than execute as the NOP filler
// entry the opcode table supplies for them. The core itself never raises
// this on its own.
type IllegalOpcodeError struct {
	Opcode uint8
}

func (e IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode %#02x", e.Opcode)
}

// Config supplies the CPU's cartridge and starting state.
type Config struct {
	// Cartridge backs all reads/writes above $4020.
	Cartridge *cartridge.Cartridge
	// PC is the starting program counter. Callers that want real reset-vector
	// behavior should call Reset after NewCPU instead of setting this.
	PC uint16
}

// CPU holds the 6502 register file, internal RAM, and the bookkeeping a
// single Clock call needs to let instructions execute atomically on their
// fetch tick.
type CPU struct {
	A, X, Y, S uint8
	Flags      flags.Flags
	PC         uint16

	ram  [ramSize]byte
	cart *cartridge.Cartridge

	// instructionTarget is the effective address (or, for Immediate mode,
	// the operand value itself) the currently executing instruction resolved.
	instructionTarget uint16
	// pageCrossed is set by an indexed/indirect/relative resolver when the
	// effective address computation crossed a page boundary.
	pageCrossed bool
	// currentMode lets operand() and the shift helpers distinguish Immediate/
	// Accumulator from memory-backed modes without re-decoding the opcode.
	currentMode opcodes.AddressingMode
	// cyclesRemaining counts down to the next fetch; see Clock.
	cyclesRemaining int

	logging bool
	logBuf  []string
}

// NewCPU constructs a CPU wired to cfg.Cartridge, with A=X=Y=0, S=$FF, and
// PC set to cfg.PC (the reference-test entry point is typically $C000; a
// real boot should follow up with Reset to load the reset vector instead).
func NewCPU(cfg Config) (*CPU, error) {
	if cfg.Cartridge == nil {
		return nil, InvalidCPUState{Reason: "no cartridge supplied"}
	}
	return &CPU{
		S:    0xFF,
		PC:   cfg.PC,
		cart: cfg.Cartridge,
	}, nil
}

// Reset loads PC from the reset vector at $FFFC/$FFFD and restores the
// power-on register defaults, for booting a real image rather than starting
// at a fixed test entry point.
func (c *CPU) Reset() error {
	lo, err := c.Read(resetLo)
	if err != nil {
		return err
	}
	hi, err := c.Read(resetHi)
	if err != nil {
		return err
	}
	c.PC = uint16(lo) | uint16(hi)<<8
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFF
	c.Flags = flags.Flags{}
	c.cyclesRemaining = 0
	return nil
}

// EnableLogging toggles whether Clock appends a disassembly line to the log
// buffer before each instruction fetch.
func (c *CPU) EnableLogging(enabled bool) {
	c.logging = enabled
}

// LogBuffer returns the accumulated disassembly log lines.
func (c *CPU) LogBuffer() []string {
	return c.logBuf
}

// Read dispatches a bus read: RAM mirrored across $0000-$1FFF, a fatal
// UnmappedRegionError for the PPU/APU windows, and the cartridge mapper for
// everything at or above $4020.
func (c *CPU) Read(addr uint16) (uint8, error) {
	switch {
	case addr <= ramEnd:
		return c.ram[addr%ramSize], nil
	case addr <= ioEnd:
		return 0, UnmappedRegionError{Addr: addr}
	default:
		offset, err := c.cart.Mapper.Address(addr)
		if err != nil {
			return 0, err
		}
		return c.cart.PRGROM[offset], nil
	}
}

// Write dispatches a bus write. Cartridge-space writes are silently
// discarded: PRG-ROM is read-only at runtime (§9 of the spec this core
// implements; no mapper here supports PRG-RAM).
func (c *CPU) Write(addr uint16, val uint8) error {
	switch {
	case addr <= ramEnd:
		c.ram[addr%ramSize] = val
		return nil
	case addr <= ioEnd:
		return UnmappedRegionError{Addr: addr}
	default:
		return nil
	}
}

// Clock advances the CPU by one tick. When no instruction is in flight, it
// fetches, decodes, and executes the next one and installs its total cycle
// cost; otherwise it simply counts down. Counting down AFTER a fresh fetch
// (rather than before) means the fetch tick itself consumes one unit of the
// newly installed budget, so a 2-cycle instruction costs exactly two Clock
// calls rather than three.
func (c *CPU) Clock() error {
	if c.cyclesRemaining == 0 {
		if err := c.step(); err != nil {
			return err
		}
	}
	c.cyclesRemaining--
	return nil
}

// step fetches, decodes, and executes exactly one instruction, leaving
// cyclesRemaining set to its total cost (base + any page-cross/branch
// extras).
func (c *CPU) step() error {
	if c.logging {
		line, _, err := disassembler.Line(c.PC, c, disassembler.Registers{
			A: c.A, X: c.X, Y: c.Y, P: c.Flags.ToByte(), SP: c.S,
		})
		if err != nil {
			return err
		}
		c.logBuf = append(c.logBuf, line)
	}

	op, err := c.fetchByte()
	if err != nil {
		return err
	}
	entry := opcodes.Table[op]
	c.currentMode = entry.Mode
	c.pageCrossed = false

	resolve, ok := addrTable[entry.Mode]
	if !ok {
		return InvalidCPUState{Reason: fmt.Sprintf("no addressing resolver for mode %d", entry.Mode)}
	}
	if err := resolve(c); err != nil {
		return err
	}

	exec, ok := execTable[entry.Mnemonic]
	if !ok {
		return InvalidCPUState{Reason: fmt.Sprintf("no executor for mnemonic %s", entry.Mnemonic)}
	}
	extra, err := exec(c)
	if err != nil {
		return err
	}

	c.cyclesRemaining = entry.Cycles + extra
	return nil
}

func (c *CPU) fetchByte() (uint8, error) {
	v, err := c.Read(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC++
	return v, nil
}

func (c *CPU) fetchWord() (uint16, error) {
	lo, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (c *CPU) pushStack(v uint8) error {
	err := c.Write(stackBase+uint16(c.S), v)
	c.S--
	return err
}

func (c *CPU) popStack() (uint8, error) {
	c.S++
	return c.Read(stackBase + uint16(c.S))
}

func (c *CPU) pushWord(v uint16) error {
	if err := c.pushStack(uint8(v >> 8)); err != nil {
		return err
	}
	return c.pushStack(uint8(v))
}

func (c *CPU) popWord() (uint16, error) {
	lo, err := c.popStack()
	if err != nil {
		return 0, err
	}
	hi, err := c.popStack()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

func (c *CPU) zeroCheck(v uint8)     { c.Flags.Zero = v == 0 }
func (c *CPU) negativeCheck(v uint8) { c.Flags.Negative = v&0x80 != 0 }
func (c *CPU) carryCheck(res uint16) { c.Flags.Carry = res > 0xFF }

// overflowCheck implements the standard signed-overflow test: V is set when
// reg and arg share a sign but the result's sign differs from both.
func (c *CPU) overflowCheck(reg, arg, res uint8) {
	c.Flags.Overflow = (reg^res)&(arg^res)&0x80 != 0
}

// operand returns the byte an instruction operates on: the raw value for
// Immediate mode, or a bus read through the resolved effective address for
// every other memory-backed mode.
func (c *CPU) operand() (uint8, error) {
	if c.currentMode == opcodes.Immediate {
		return uint8(c.instructionTarget), nil
	}
	return c.Read(c.instructionTarget)
}

func (c *CPU) pageCrossExtra() int {
	if c.pageCrossed {
		return 1
	}
	return 0
}

// shiftOperand and storeShiftResult let ASL/LSR/ROL/ROR share one body
// across their Accumulator and memory (read-modify-write) forms.
func (c *CPU) shiftOperand() (uint8, error) {
	if c.currentMode == opcodes.Accumulator {
		return c.A, nil
	}
	return c.Read(c.instructionTarget)
}

func (c *CPU) storeShiftResult(v uint8) error {
	if c.currentMode == opcodes.Accumulator {
		c.A = v
		return nil
	}
	return c.Write(c.instructionTarget, v)
}
