package chirp8

import (
	"fmt"
	"strings"
)

const startOfProgram = 0x200

const MemorySize = 4096

const fontGlyphSize = 5

type Memory [MemorySize]byte

// NewMemory creates a 4096-byte memory with the font table loaded into
// the region below the program origin.
func NewMemory() *Memory {
	m := Memory([MemorySize]byte{})
	loadFontInto(&m)

	return &m
}

func (mem Memory) Clone() *Memory {
	m := &Memory{}
	copy(m[:], mem[:])

	return m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:startOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[startOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

// ReadByte returns the byte at addr, or a MemoryFaultError when addr is
// outside the addressable range.
func (mem *Memory) ReadByte(addr uint16) (byte, error) {
	if addr >= MemorySize {
		return 0, MemoryFaultError{Addr: addr}
	}

	return mem[addr], nil
}

func (mem *Memory) WriteByte(addr uint16, b byte) error {
	if addr >= MemorySize {
		return MemoryFaultError{Addr: addr}
	}

	mem[addr] = b

	return nil
}

// ReadWord returns the big-endian 16-bit word at addr.
func (mem *Memory) ReadWord(addr uint16) (uint16, error) {
	if addr >= MemorySize-1 {
		return 0, MemoryFaultError{Addr: addr}
	}

	return uint16(mem[addr])<<8 | uint16(mem[addr+1]), nil
}

// CheckRange validates that every address in [first, last] is
// addressable. Instructions use it to detect faults before mutating
// anything.
func (mem *Memory) CheckRange(first, last uint16) error {
	if first >= MemorySize || last >= MemorySize || last < first {
		return MemoryFaultError{Addr: last}
	}

	return nil
}

// LoadProgram loads the program image at the program origin. The image
// is rejected before any mutation if it does not fit between the origin
// and the end of memory.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-startOfProgram {
		return ErrProgramTooLarge
	}

	loadFontInto(mem)
	copy(mem[startOfProgram:], program)

	return nil
}

// FontAddress returns the address of the built-in 4x5 sprite for the
// hex digit. Only the low nibble of digit is significant.
func FontAddress(digit byte) uint16 {
	return uint16(digit&0x0F) * fontGlyphSize
}

func loadFontInto(mem *Memory) {
	copy(mem[:], []byte{
		// 0
		0xF0, 0x90, 0x90, 0x90, 0xF0,
		// 1
		0x20, 0x60, 0x20, 0x20, 0x70,
		// 2
		0xF0, 0x10, 0xF0, 0x80, 0xF0,
		// 3
		0xF0, 0x10, 0xF0, 0x10, 0xF0,
		// 4
		0x90, 0x90, 0xF0, 0x10, 0x10,
		// 5
		0xF0, 0x80, 0xF0, 0x10, 0xF0,
		// 6
		0xF0, 0x80, 0xF0, 0x90, 0xF0,
		// 7
		0xF0, 0x10, 0x20, 0x40, 0x40,
		// 8
		0xF0, 0x90, 0xF0, 0x90, 0xF0,
		// 9
		0xF0, 0x90, 0xF0, 0x10, 0xF0,
		// A
		0xF0, 0x90, 0xF0, 0x90, 0x90,
		// B
		0xE0, 0x90, 0xE0, 0x90, 0xE0,
		// C
		0xF0, 0x80, 0x80, 0x80, 0xF0,
		// D
		0xE0, 0x90, 0x90, 0x90, 0xE0,
		// E
		0xF0, 0x80, 0xF0, 0x80, 0xF0,
		// F
		0xF0, 0x80, 0xF0, 0x80, 0x80})
}
