// Package flags implements the 6-bit logical flag set packed to and from the
// 8-bit 6502 status (P) register, per the NMOS bit layout: N V 1 B D I Z C.
package flags

import "github.com/roscale/nesmulator/bits"

const (
	bitCarry     = 0
	bitZero      = 1
	bitInterrupt = 2
	bitDecimal   = 3
	bitB         = 4
	bitS1        = 5
	bitOverflow  = 6
	bitNegative  = 7
)

// Flags holds the six semantic status bits the CPU reasons about directly.
// Bits 4 (B) and 5 (always 1) are not represented here: they exist only in
// the packed byte form. ToByte sets bit 5 and clears bit 4 (a caller pushing
// for BRK/PHP ORs in B), and FromByte discards both.
type Flags struct {
	Carry            bool
	Zero             bool
	InterruptDisable bool
	Decimal          bool
	Overflow         bool
	Negative         bool
}

// ToByte packs the six flags into the 8-bit status byte layout, with bit 5
// forced to 1 and bit 4 (B) forced to 0. Callers that need B set (BRK/PHP
// pushes) OR in flags.B themselves after calling this.
func (f Flags) ToByte() uint8 {
	var v uint8
	v = bits.SetBit(v, bitCarry, f.Carry)
	v = bits.SetBit(v, bitZero, f.Zero)
	v = bits.SetBit(v, bitInterrupt, f.InterruptDisable)
	v = bits.SetBit(v, bitDecimal, f.Decimal)
	v = bits.SetBit(v, bitB, false)
	v = bits.SetBit(v, bitS1, true)
	v = bits.SetBit(v, bitOverflow, f.Overflow)
	v = bits.SetBit(v, bitNegative, f.Negative)
	return v
}

// B is the bit-4 mask a caller ORs into ToByte's result when pushing status
// for BRK or PHP (as opposed to a hardware interrupt, which pushes B as 0).
const B = uint8(1) << bitB

// FromByte reconstitutes C, Z, I, D, V, N from a packed status byte. Bits 4
// and 5 are ignored: flags are never reconstructed from them.
func FromByte(v uint8) Flags {
	return Flags{
		Carry:            bits.GetBit(v, bitCarry),
		Zero:             bits.GetBit(v, bitZero),
		InterruptDisable: bits.GetBit(v, bitInterrupt),
		Decimal:          bits.GetBit(v, bitDecimal),
		Overflow:         bits.GetBit(v, bitOverflow),
		Negative:         bits.GetBit(v, bitNegative),
	}
}
