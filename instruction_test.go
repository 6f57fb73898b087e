package chirp8_test

import (
	"testing"

	"github.com/tovald/chirp8"
)

// TestDecodeRoundTrip checks that re-encoding a decoded instruction's
// operand fields reproduces the original word, for every word whose
// class has a canonical encoding.
func TestDecodeRoundTrip(t *testing.T) {
	for word := 0; word <= 0xFFFF; word++ {
		in := chirp8.Decode(uint16(word))
		if in.Op == chirp8.OpUnknown {
			continue
		}

		if got := in.Word(); got != uint16(word) {
			t.Fatalf(`Decode(%04X).Word() = %04X, expected the original word`, word, got)
		}
	}
}

// TestDecodeIsTotal checks that every possible word maps to a variant
// and that the operand fields are extracted regardless of class.
func TestDecodeIsTotal(t *testing.T) {
	for word := 0; word <= 0xFFFF; word++ {
		in := chirp8.Decode(uint16(word))

		if in.Op > chirp8.OpLdVxMem {
			t.Fatalf(`Decode(%04X) produced an out-of-range op %d`, word, in.Op)
		}
		if in.NNN != uint16(word)&0x0FFF {
			t.Fatalf(`Decode(%04X).NNN = %03X`, word, in.NNN)
		}
		if in.KK != byte(word&0x00FF) {
			t.Fatalf(`Decode(%04X).KK = %02X`, word, in.KK)
		}
	}
}

func TestDecodeFields(t *testing.T) {
	cases := []struct {
		word uint16
		op   chirp8.Op
	}{
		{0x00E0, chirp8.OpCls},
		{0x00EE, chirp8.OpRet},
		{0x0123, chirp8.OpSys},
		{0x1234, chirp8.OpJp},
		{0x2345, chirp8.OpCall},
		{0x3A7F, chirp8.OpSeByte},
		{0x4A7F, chirp8.OpSneByte},
		{0x5AB0, chirp8.OpSeReg},
		{0x6A7F, chirp8.OpLdByte},
		{0x7A7F, chirp8.OpAddByte},
		{0x8AB0, chirp8.OpLdReg},
		{0x8AB1, chirp8.OpOr},
		{0x8AB2, chirp8.OpAnd},
		{0x8AB3, chirp8.OpXor},
		{0x8AB4, chirp8.OpAddReg},
		{0x8AB5, chirp8.OpSub},
		{0x8AB6, chirp8.OpShr},
		{0x8AB7, chirp8.OpSubn},
		{0x8ABE, chirp8.OpShl},
		{0x9AB0, chirp8.OpSneReg},
		{0xA123, chirp8.OpLdI},
		{0xB123, chirp8.OpJpV0},
		{0xCA7F, chirp8.OpRnd},
		{0xDAB5, chirp8.OpDrw},
		{0xEA9E, chirp8.OpSkp},
		{0xEAA1, chirp8.OpSknp},
		{0xFA07, chirp8.OpLdVxDt},
		{0xFA0A, chirp8.OpLdVxKey},
		{0xFA15, chirp8.OpLdDtVx},
		{0xFA18, chirp8.OpLdStVx},
		{0xFA1E, chirp8.OpAddI},
		{0xFA29, chirp8.OpLdFont},
		{0xFA33, chirp8.OpLdBcd},
		{0xFA55, chirp8.OpLdMemVx},
		{0xFA65, chirp8.OpLdVxMem},
		// patterns in overloaded groups with no defined opcode
		{0x5AB1, chirp8.OpUnknown},
		{0x8AB8, chirp8.OpUnknown},
		{0x8ABF, chirp8.OpUnknown},
		{0x9AB9, chirp8.OpUnknown},
		{0xEA00, chirp8.OpUnknown},
		{0xFAFF, chirp8.OpUnknown},
	}

	for _, c := range cases {
		in := chirp8.Decode(c.word)
		if in.Op != c.op {
			t.Fatalf(`Decode(%04X).Op = %v, expected %v`, c.word, in.Op, c.op)
		}
	}

	in := chirp8.Decode(0xDAB5)
	if in.X != 0xA || in.Y != 0xB || in.N != 5 {
		t.Fatalf(`Decode(DAB5) extracted x=%X y=%X n=%X`, in.X, in.Y, in.N)
	}
}

func TestInstructionString(t *testing.T) {
	cases := map[uint16]string{
		0x00E0: "CLS",
		0x00EE: "RET",
		0x1234: "JP 0x234",
		0x8AB4: "ADD VA, VB",
		0xFA0A: "LD VA, K",
	}

	for word, want := range cases {
		if got := chirp8.Decode(word).String(); got != want {
			t.Fatalf(`Decode(%04X).String() = %q, expected %q`, word, got, want)
		}
	}
}
