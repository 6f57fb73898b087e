package chirp8

import "fmt"

// Op identifies an instruction class.
type Op byte

const (
	OpUnknown Op = iota
	// OpSys is the 0nnn machine routine group (minus CLS/RET).
	OpSys
	OpCls
	OpRet
	OpJp
	OpCall
	OpSeByte
	OpSneByte
	OpSeReg
	OpLdByte
	OpAddByte
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpSubn
	OpShl
	OpSneReg
	OpLdI
	OpJpV0
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDt
	OpLdVxKey
	OpLdDtVx
	OpLdStVx
	OpAddI
	OpLdFont
	OpLdBcd
	OpLdMemVx
	OpLdVxMem
)

// Instruction is a decoded opcode with all operand fields extracted.
// Instances are built per fetch and never retained.
type Instruction struct {
	Op Op
	// X is the second nibble, a register index
	X byte
	// Y is the third nibble, a register index
	Y byte
	// N is the low nibble
	N byte
	// KK is the low byte
	KK byte
	// NNN is the low 12 bits, an address
	NNN uint16
}

// Decode maps a raw 16-bit word to its Instruction. It is total and
// pure: every word maps to exactly one class, with words outside the
// defined set decoding to OpUnknown (operand fields still extracted).
// Dispatch is on the top nibble, then on the low nibble for the 8xy_
// group and the low byte for the Ex__ and Fx__ groups.
func Decode(word uint16) Instruction {
	in := Instruction{
		Op:  OpUnknown,
		X:   byte((word & 0x0F00) >> 8),
		Y:   byte((word & 0x00F0) >> 4),
		N:   byte(word & 0x000F),
		KK:  byte(word & 0x00FF),
		NNN: word & 0x0FFF,
	}

	switch word & 0xF000 {
	case 0x0000:
		switch word {
		case 0x00E0:
			in.Op = OpCls
		case 0x00EE:
			in.Op = OpRet
		default:
			in.Op = OpSys
		}

	case 0x1000:
		in.Op = OpJp

	case 0x2000:
		in.Op = OpCall

	case 0x3000:
		in.Op = OpSeByte

	case 0x4000:
		in.Op = OpSneByte

	case 0x5000:
		if in.N == 0 {
			in.Op = OpSeReg
		}

	case 0x6000:
		in.Op = OpLdByte

	case 0x7000:
		in.Op = OpAddByte

	case 0x8000:
		switch word & 0x000F {
		case 0x0:
			in.Op = OpLdReg
		case 0x1:
			in.Op = OpOr
		case 0x2:
			in.Op = OpAnd
		case 0x3:
			in.Op = OpXor
		case 0x4:
			in.Op = OpAddReg
		case 0x5:
			in.Op = OpSub
		case 0x6:
			in.Op = OpShr
		case 0x7:
			in.Op = OpSubn
		case 0xE:
			in.Op = OpShl
		}

	case 0x9000:
		if in.N == 0 {
			in.Op = OpSneReg
		}

	case 0xA000:
		in.Op = OpLdI

	case 0xB000:
		in.Op = OpJpV0

	case 0xC000:
		in.Op = OpRnd

	case 0xD000:
		in.Op = OpDrw

	case 0xE000:
		switch word & 0x00FF {
		case 0x9E:
			in.Op = OpSkp
		case 0xA1:
			in.Op = OpSknp
		}

	case 0xF000:
		switch word & 0x00FF {
		case 0x07:
			in.Op = OpLdVxDt
		case 0x0A:
			in.Op = OpLdVxKey
		case 0x15:
			in.Op = OpLdDtVx
		case 0x18:
			in.Op = OpLdStVx
		case 0x1E:
			in.Op = OpAddI
		case 0x29:
			in.Op = OpLdFont
		case 0x33:
			in.Op = OpLdBcd
		case 0x55:
			in.Op = OpLdMemVx
		case 0x65:
			in.Op = OpLdVxMem
		}
	}

	return in
}

// Word re-encodes the instruction's operand fields into the canonical
// 16-bit word for its class. For OpUnknown there is no canonical
// encoding and the NNN/KK fields alone cannot reproduce the original
// word, so the top nibble is reported as zero.
func (in Instruction) Word() uint16 {
	x := uint16(in.X) << 8
	y := uint16(in.Y) << 4

	switch in.Op {
	case OpSys:
		return 0x0000 | in.NNN
	case OpCls:
		return 0x00E0
	case OpRet:
		return 0x00EE
	case OpJp:
		return 0x1000 | in.NNN
	case OpCall:
		return 0x2000 | in.NNN
	case OpSeByte:
		return 0x3000 | x | uint16(in.KK)
	case OpSneByte:
		return 0x4000 | x | uint16(in.KK)
	case OpSeReg:
		return 0x5000 | x | y
	case OpLdByte:
		return 0x6000 | x | uint16(in.KK)
	case OpAddByte:
		return 0x7000 | x | uint16(in.KK)
	case OpLdReg:
		return 0x8000 | x | y
	case OpOr:
		return 0x8001 | x | y
	case OpAnd:
		return 0x8002 | x | y
	case OpXor:
		return 0x8003 | x | y
	case OpAddReg:
		return 0x8004 | x | y
	case OpSub:
		return 0x8005 | x | y
	case OpShr:
		return 0x8006 | x | y
	case OpSubn:
		return 0x8007 | x | y
	case OpShl:
		return 0x800E | x | y
	case OpSneReg:
		return 0x9000 | x | y
	case OpLdI:
		return 0xA000 | in.NNN
	case OpJpV0:
		return 0xB000 | in.NNN
	case OpRnd:
		return 0xC000 | x | uint16(in.KK)
	case OpDrw:
		return 0xD000 | x | y | uint16(in.N)
	case OpSkp:
		return 0xE09E | x
	case OpSknp:
		return 0xE0A1 | x
	case OpLdVxDt:
		return 0xF007 | x
	case OpLdVxKey:
		return 0xF00A | x
	case OpLdDtVx:
		return 0xF015 | x
	case OpLdStVx:
		return 0xF018 | x
	case OpAddI:
		return 0xF01E | x
	case OpLdFont:
		return 0xF029 | x
	case OpLdBcd:
		return 0xF033 | x
	case OpLdMemVx:
		return 0xF055 | x
	case OpLdVxMem:
		return 0xF065 | x
	}

	return 0
}

// String returns the conventional mnemonic.
func (in Instruction) String() string {
	switch in.Op {
	case OpSys:
		return fmt.Sprintf("SYS %#03x", in.NNN)
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJp:
		return fmt.Sprintf("JP %#03x", in.NNN)
	case OpCall:
		return fmt.Sprintf("CALL %#03x", in.NNN)
	case OpSeByte:
		return fmt.Sprintf("SE V%X, %#02x", in.X, in.KK)
	case OpSneByte:
		return fmt.Sprintf("SNE V%X, %#02x", in.X, in.KK)
	case OpSeReg:
		return fmt.Sprintf("SE V%X, V%X", in.X, in.Y)
	case OpLdByte:
		return fmt.Sprintf("LD V%X, %#02x", in.X, in.KK)
	case OpAddByte:
		return fmt.Sprintf("ADD V%X, %#02x", in.X, in.KK)
	case OpLdReg:
		return fmt.Sprintf("LD V%X, V%X", in.X, in.Y)
	case OpOr:
		return fmt.Sprintf("OR V%X, V%X", in.X, in.Y)
	case OpAnd:
		return fmt.Sprintf("AND V%X, V%X", in.X, in.Y)
	case OpXor:
		return fmt.Sprintf("XOR V%X, V%X", in.X, in.Y)
	case OpAddReg:
		return fmt.Sprintf("ADD V%X, V%X", in.X, in.Y)
	case OpSub:
		return fmt.Sprintf("SUB V%X, V%X", in.X, in.Y)
	case OpShr:
		return fmt.Sprintf("SHR V%X {, V%X}", in.X, in.Y)
	case OpSubn:
		return fmt.Sprintf("SUBN V%X, V%X", in.X, in.Y)
	case OpShl:
		return fmt.Sprintf("SHL V%X {, V%X}", in.X, in.Y)
	case OpSneReg:
		return fmt.Sprintf("SNE V%X, V%X", in.X, in.Y)
	case OpLdI:
		return fmt.Sprintf("LD I, %#03x", in.NNN)
	case OpJpV0:
		return fmt.Sprintf("JP V0, %#03x", in.NNN)
	case OpRnd:
		return fmt.Sprintf("RND V%X, %#02x", in.X, in.KK)
	case OpDrw:
		return fmt.Sprintf("DRW V%X, V%X, %d", in.X, in.Y, in.N)
	case OpSkp:
		return fmt.Sprintf("SKP V%X", in.X)
	case OpSknp:
		return fmt.Sprintf("SKNP V%X", in.X)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%X, DT", in.X)
	case OpLdVxKey:
		return fmt.Sprintf("LD V%X, K", in.X)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT, V%X", in.X)
	case OpLdStVx:
		return fmt.Sprintf("LD ST, V%X", in.X)
	case OpAddI:
		return fmt.Sprintf("ADD I, V%X", in.X)
	case OpLdFont:
		return fmt.Sprintf("LD F, V%X", in.X)
	case OpLdBcd:
		return fmt.Sprintf("LD B, V%X", in.X)
	case OpLdMemVx:
		return fmt.Sprintf("LD [I], V%X", in.X)
	case OpLdVxMem:
		return fmt.Sprintf("LD V%X, [I]", in.X)
	}

	return "???"
}
