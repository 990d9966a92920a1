// Package cartridge parses an iNES 2.0 ROM image into PRG-ROM/CHR-ROM byte
// slices and a mapper number, and constructs the matching mapper.Mapper. The
// PPU/APU/video pipeline that eventually consumes CHR-ROM is out of scope
// for this core (spec.md §1); only the header fields the CPU side needs are
// interpreted.
package cartridge

import (
	"fmt"
	"io"

	"github.com/roscale/nesmulator/bits"
	"github.com/roscale/nesmulator/mapper"
)

const (
	headerSize  = 16
	trainerSize = 512
)

var signature = [4]byte{'N', 'E', 'S', 0x1A}

// BadROMError reports a missing or malformed iNES header.
type BadROMError struct {
	Reason string
}

func (e BadROMError) Error() string {
	return fmt.Sprintf("bad rom: %s", e.Reason)
}

// UnsupportedMapperError reports a mapper number this core cannot drive.
type UnsupportedMapperError struct {
	Mapper int
}

func (e UnsupportedMapperError) Error() string {
	return fmt.Sprintf("unsupported mapper: %d", e.Mapper)
}

// Cartridge holds the ROM banks read from an iNES file plus the mapper
// wired up to translate CPU addresses into PRG-ROM offsets. The CPU only
// ever reads through Mapper; it never mutates PRGROM or CHRROM.
type Cartridge struct {
	PRGROM []byte
	CHRROM []byte
	Mapper mapper.Mapper
}

// Load reads a full iNES 2.0 image from r and returns the parsed
// Cartridge. Only mapper 0 (NROM) is supported; any other mapper number
// yields UnsupportedMapperError.
func Load(r io.Reader) (*Cartridge, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if len(data) < headerSize {
		return nil, BadROMError{Reason: "file shorter than header"}
	}
	header := data[:headerSize]
	if header[0] != signature[0] || header[1] != signature[1] || header[2] != signature[2] || header[3] != signature[3] {
		return nil, BadROMError{Reason: "missing NES\\x1A signature"}
	}

	prgROMSize := romSize(header[4], bits.GetBits(header[9], 0, 3), bits.KiB(16))
	chrROMSize := romSize(header[5], bits.GetBits(header[9], 4, 7), bits.KiB(8))

	var mapperNumber uint16
	mapperNumber = bits.SetBits(mapperNumber, 0, 3, uint16(bits.GetBits(header[6], 4, 7)))
	mapperNumber = bits.SetBits(mapperNumber, 4, 7, uint16(bits.GetBits(header[7], 4, 7)))
	mapperNumber = bits.SetBits(mapperNumber, 8, 11, uint16(bits.GetBits(header[8], 0, 3)))

	if mapperNumber != 0 {
		return nil, UnsupportedMapperError{Mapper: int(mapperNumber)}
	}

	body := data[headerSize:]
	if bits.GetBit(header[6], 2) {
		if len(body) < trainerSize {
			return nil, BadROMError{Reason: "truncated trainer"}
		}
		body = body[trainerSize:]
	}

	if len(body) < prgROMSize+chrROMSize {
		return nil, BadROMError{Reason: "truncated PRG/CHR ROM"}
	}

	return &Cartridge{
		PRGROM: body[:prgROMSize],
		CHRROM: body[prgROMSize : prgROMSize+chrROMSize],
		Mapper: mapper.NewNROM(prgROMSize),
	}, nil
}

// romSize computes a ROM bank size from the header's LSB/MSB nibble pair.
// When msb == 0xF the size uses the iNES 2.0 exponent/multiplier encoding
// instead of the common lsb|msb<<8 unit count.
func romSize(lsb, msb uint8, unit int) int {
	if msb == 0xF {
		multiplier := int(bits.GetBits(lsb, 0, 1))
		exponent := int(bits.GetBits(lsb, 2, 7))
		return (1 << exponent) * (multiplier*2 + 1)
	}
	var size uint16
	size = bits.SetBits(size, 0, 7, uint16(lsb))
	size = bits.SetBits(size, 8, 11, uint16(msb))
	return int(size) * unit
}
