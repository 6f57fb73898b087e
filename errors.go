package chirp8

import (
	"errors"
	"fmt"
)

var ErrMachineNotBooted = errors.New("the machine has not been booted properly")
var ErrMachineHalted = errors.New("the machine is halted")

var ErrStackUnderflow = errors.New("stack underflow: return with an empty call stack")
var ErrStackOverflow = errors.New("stack overflow: call nesting beyond 16 levels")

var ErrProgramTooLarge = errors.New("the program does not fit into memory")

// MemoryFaultError reports an access outside the addressable range.
type MemoryFaultError struct {
	Addr uint16
}

func (err MemoryFaultError) Error() string {
	return fmt.Sprintf("memory fault: address %#04x is outside the addressable range", err.Addr)
}

// UnknownOpCodeError reports an unrecognized instruction in strict mode.
type UnknownOpCodeError struct {
	OpCode uint16
	Pc     uint16
}

func (err UnknownOpCodeError) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%#04x", err.OpCode, err.Pc)
}
