// Package mapper translates CPU addresses in the cartridge window
// ($4020-$FFFF) to PRG-ROM byte offsets. Real hardware supports dozens of
// mapper chips; this core implements the one every NES game needs at
// minimum, NROM (mapper 0), with the interface left open for more.
package mapper

import (
	"fmt"

	"github.com/roscale/nesmulator/bits"
)

// cartridgeWindowStart is the lowest address a Mapper is ever asked to
// translate. Addresses below it ($0000-$401F) belong to RAM, the PPU, or the
// APU and never reach a Mapper.
const cartridgeWindowStart = 0x4020

// prgROMWindowStart is where PRG-ROM is mapped into CPU address space.
const prgROMWindowStart = 0x8000

// Mapper translates a CPU address inside the cartridge window into a
// PRG-ROM byte offset.
type Mapper interface {
	// Address returns the PRG-ROM offset cpuAddr maps to, or an error if
	// cpuAddr falls outside the range this Mapper can translate.
	Address(cpuAddr uint16) (uint16, error)
}

// AddressOutOfRangeError reports a translation request the Mapper cannot
// service: either below $8000 (where PRG-ROM begins) or, for chips that
// bank-switch, outside the banks currently mapped in.
type AddressOutOfRangeError struct {
	Addr uint16
}

func (e AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("address %#04x out of mapper range", e.Addr)
}

// NROM implements mapper 0, the simplest cartridge wiring: PRG-ROM is
// either 16 KiB (mirrored across the full $8000-$FFFF window) or 32 KiB
// (mapped directly, one byte per address).
type NROM struct {
	prgROMSize int
}

// NewNROM constructs an NROM mapper for the given PRG-ROM size in bytes.
func NewNROM(prgROMSize int) *NROM {
	return &NROM{prgROMSize: prgROMSize}
}

// Address implements Mapper.
func (m *NROM) Address(cpuAddr uint16) (uint16, error) {
	if cpuAddr < prgROMWindowStart {
		return 0, AddressOutOfRangeError{Addr: cpuAddr}
	}
	offset := cpuAddr - prgROMWindowStart
	if m.prgROMSize == bits.KiB(16) {
		return offset % uint16(bits.KiB(16)), nil
	}
	return offset, nil
}
