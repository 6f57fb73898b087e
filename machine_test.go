package chirp8_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tovald/chirp8"
)

func newTestMachine(t *testing.T, program []byte, options ...chirp8.MachineOption) (*chirp8.Machine, *chirp8.InMemoryKeyboard) {
	t.Helper()

	mem := chirp8.NewMemory()
	kb := chirp8.NewInMemoryKeyboard()
	d := chirp8.NewInMemoryDisplay()
	b := chirp8.NewDummyBuzzer()

	m := chirp8.NewMachine(mem, chirp8.SmallScreen, d, kb, b, options...)

	if err := m.Boot(); err != nil {
		t.Fatalf(`Boot() returned an error %v`, err)
	}
	if err := m.LoadProgram(program); err != nil {
		t.Fatalf(`LoadProgram() returned an error %v`, err)
	}

	return m, kb
}

func stepN(t *testing.T, m *chirp8.Machine, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf(`Step() returned an error %v`, err)
		}
	}
}

func assertVxEq(t *testing.T, msg string, m *chirp8.Machine, x, kk byte) {
	t.Helper()

	if m.V[x] != kk {
		t.Fatalf(`%s: m.V[%X] = %x, expected %x`, msg, x, m.V[x], kk)
	}
}

// TestConstantSetInstructions exercises LD Vx, byte and ADD Vx, byte.
func TestConstantSetInstructions(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 1
		0x62, 1,
		// add 4 to v2
		0x72, 4,
	})

	stepN(t, m, 4)

	assertVxEq(t, "LD V0", m, 0x0, 128)
	assertVxEq(t, "LD V1", m, 0x1, 16)
	assertVxEq(t, "ADD V2", m, 0x2, 5)
}

// TestAddWithCarryExhaustive checks the add-with-carry contract for all
// register value pairs: result = (a+b) mod 256, VF = 1 iff a+b > 255.
func TestAddWithCarryExhaustive(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// add v1 into v0
		0x80, 0x14,
	})

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			m.Reset()
			m.V[0] = byte(a)
			m.V[1] = byte(b)

			stepN(t, m, 1)

			sum := a + b
			if m.V[0] != byte(sum) {
				t.Fatalf(`%d + %d: m.V[0] = %d, expected %d`, a, b, m.V[0], byte(sum))
			}

			wantFlag := byte(0)
			if sum > 255 {
				wantFlag = 1
			}
			if m.V[0xF] != wantFlag {
				t.Fatalf(`%d + %d: m.V[F] = %d, expected %d`, a, b, m.V[0xF], wantFlag)
			}
		}
	}
}

func TestSubWithBorrow(t *testing.T) {
	cases := []struct {
		a, b       byte
		want, flag byte
	}{
		{10, 3, 7, 1},
		{3, 10, 249, 0},
		{7, 7, 0, 1},
	}

	for _, c := range cases {
		m, _ := newTestMachine(t, []byte{
			// sub v1 from v0
			0x80, 0x15,
		})
		m.V[0] = c.a
		m.V[1] = c.b

		stepN(t, m, 1)

		assertVxEq(t, "SUB result", m, 0x0, c.want)
		assertVxEq(t, "SUB flag", m, 0xF, c.flag)
	}
}

// TestEndToEndSum runs the three-instruction reference program and
// checks registers, flag, and program counter.
func TestEndToEndSum(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to 5
		0x60, 5,
		// set v1 to 3
		0x61, 3,
		// add v1 into v0
		0x80, 0x14,
	})

	stepN(t, m, 3)

	assertVxEq(t, "sum", m, 0x0, 8)
	assertVxEq(t, "flag", m, 0xF, 0)

	if m.Pc != 0x200+6 {
		t.Fatalf(`m.Pc = %#04x, expected %#04x`, m.Pc, 0x200+6)
	}
}

// TestSimpleSkips checks the literal and register skip conditions, both
// taken and not taken.
func TestSimpleSkips(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to 128
		0x60, 128,
		// set v1 to 16
		0x61, 16,
		// set v2 to 128
		0x62, 128,

		// if v0 == 128, do not set v3 to 1
		0x30, 128,
		0x63, 1,

		// if v0 == 16, do not set vA to 1
		0x30, 16,
		0x6A, 1,

		// if v0 != 128, do not set v4 to 1
		0x40, 128,
		0x64, 1,

		// if v0 != 16, do not set vB to 1
		0x40, 16,
		0x6B, 1,

		// if v0 == v1, do not set v5 to 1
		0x50, 0x10,
		0x65, 1,

		// if v0 == v2, do not set v6 to 1
		0x50, 0x20,
		0x66, 1,

		// if v0 != v1, do not set v7 to 1
		0x90, 0x10,
		0x67, 1,
	})

	stepN(t, m, 13)

	assertVxEq(t, "SE Vx kk taken", m, 0x3, 0x0)
	assertVxEq(t, "SE Vx kk not taken", m, 0xA, 0x1)
	assertVxEq(t, "SNE Vx kk not taken", m, 0x4, 0x1)
	assertVxEq(t, "SNE Vx kk taken", m, 0xB, 0x0)
	assertVxEq(t, "SE Vx Vy not taken", m, 0x5, 0x1)
	assertVxEq(t, "SE Vx Vy taken", m, 0x6, 0x0)
	assertVxEq(t, "SNE Vx Vy taken", m, 0x7, 0x0)
}

// TestKeySkips checks SKP/SKNP against the key vector.
func TestKeySkips(t *testing.T) {
	m, kb := newTestMachine(t, []byte{
		// set v0 to 4
		0x60, 4,
		// skip if key v0 pressed
		0xE0, 0x9E,
		// set v1 to 1 (skipped)
		0x61, 1,
		// set v2 to 2
		0x62, 2,
		// skip if key v0 not pressed
		0xE0, 0xA1,
		// set v3 to 3 (not skipped)
		0x63, 3,
	})
	kb.Press(4)

	stepN(t, m, 5)

	assertVxEq(t, "SKP skipped the load", m, 0x1, 0)
	assertVxEq(t, "execution resumed", m, 0x2, 2)
	assertVxEq(t, "SKNP did not skip", m, 0x3, 3)
}

// TestCallReturnDiscipline nests 16 calls and unwinds them, checking
// that each return lands immediately after the corresponding call, in
// reverse nesting order.
func TestCallReturnDiscipline(t *testing.T) {
	// Subroutine i at 0x200+4i: CALL next; RET. Depth 16 at 0x240: RET.
	program := make([]byte, 0, 66)
	for i := 0; i < 16; i++ {
		target := 0x204 + 4*i
		program = append(program, 0x20|byte(target>>8), byte(target))
		program = append(program, 0x00, 0xEE)
	}
	program = append(program, 0x00, 0xEE)

	m, _ := newTestMachine(t, program)

	stepN(t, m, 16)
	if m.Sp != 16 {
		t.Fatalf(`m.Sp = %d after 16 nested calls, expected 16`, m.Sp)
	}

	for i := 15; i >= 0; i-- {
		stepN(t, m, 1)

		want := uint16(0x202 + 4*i)
		if m.Pc != want {
			t.Fatalf(`return %d: m.Pc = %#04x, expected %#04x`, 15-i, m.Pc, want)
		}
	}

	if m.Sp != 0 {
		t.Fatalf(`m.Sp = %d after unwinding, expected 0`, m.Sp)
	}
}

// TestStackOverflow checks that the 17th nested call faults and leaves
// no further state mutated.
func TestStackOverflow(t *testing.T) {
	// 17 consecutive call-to-next-address instructions.
	program := make([]byte, 0, 34)
	for i := 0; i < 17; i++ {
		target := 0x202 + 2*i
		program = append(program, 0x20|byte(target>>8), byte(target))
	}

	m, _ := newTestMachine(t, program)

	stepN(t, m, 16)
	if m.Sp != 16 {
		t.Fatalf(`m.Sp = %d after 16 nested calls, expected 16`, m.Sp)
	}
	savedStack := m.Stack

	err := m.Step()
	if !errors.Is(err, chirp8.ErrStackOverflow) {
		t.Fatalf(`Step() = %v, expected ErrStackOverflow`, err)
	}

	if m.Sp != 16 || m.Stack != savedStack {
		t.Fatalf(`stack mutated by the faulting call`)
	}
	if m.State() != chirp8.StateHalted {
		t.Fatalf(`m.State() = %v, expected halted`, m.State())
	}

	// the machine stays halted
	if err := m.Step(); !errors.Is(err, chirp8.ErrStackOverflow) {
		t.Fatalf(`Step() after halt = %v, expected the halting fault`, err)
	}
}

func TestStackUnderflow(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0x00, 0xEE,
	})

	if err := m.Step(); !errors.Is(err, chirp8.ErrStackUnderflow) {
		t.Fatalf(`Step() = %v, expected ErrStackUnderflow`, err)
	}
}

// TestWaitForKey checks the suspension state machine: the wait
// instruction parks the machine, a reported key press writes the
// register and resumes execution at the next instruction.
func TestWaitForKey(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// wait for a key into v5
		0xF5, 0x0A,
		// set v3 to 0x21
		0x63, 0x21,
	})

	stepN(t, m, 1)
	if m.State() != chirp8.StateWaitingForKey {
		t.Fatalf(`m.State() = %v, expected waiting-for-key`, m.State())
	}

	// cycles in this state are a no-op, not an error
	pc := m.Pc
	stepN(t, m, 3)
	if m.Pc != pc {
		t.Fatalf(`m.Pc moved while waiting for a key`)
	}

	m.ReportKeyPress(7)
	if m.State() != chirp8.StateRunning {
		t.Fatalf(`m.State() = %v after key press, expected running`, m.State())
	}
	assertVxEq(t, "key register", m, 0x5, 7)

	stepN(t, m, 1)
	assertVxEq(t, "execution resumed", m, 0x3, 0x21)
	if m.Pc != 0x204 {
		t.Fatalf(`m.Pc = %#04x, expected 0x204`, m.Pc)
	}
}

// TestWaitForKeyViaFrameLoop checks that the frame loop resolves the
// suspension from the keyboard state.
func TestWaitForKeyViaFrameLoop(t *testing.T) {
	m, kb := newTestMachine(t, []byte{
		0xF5, 0x0A,
		0x63, 0x21,
	})
	m.CyclesPerFrame = 1

	if err := m.StepFrame(); err != nil {
		t.Fatalf(`StepFrame() returned an error %v`, err)
	}
	if m.State() != chirp8.StateWaitingForKey {
		t.Fatalf(`m.State() = %v, expected waiting-for-key`, m.State())
	}

	kb.Press(0xB)
	if err := m.StepFrame(); err != nil {
		t.Fatalf(`StepFrame() returned an error %v`, err)
	}

	assertVxEq(t, "key register", m, 0x5, 0xB)
	assertVxEq(t, "execution resumed", m, 0x3, 0x21)
}

// TestUnknownOpcodeStrict checks the default policy: an unrecognized
// instruction is a fatal fault carrying the raw word.
func TestUnknownOpcodeStrict(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0xFF, 0xFF,
	})

	err := m.Step()

	var unknownErr chirp8.UnknownOpCodeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf(`Step() = %v, expected UnknownOpCodeError`, err)
	}
	if unknownErr.OpCode != 0xFFFF || unknownErr.Pc != 0x200 {
		t.Fatalf(`fault = %+v, expected opcode FFFF at 0x200`, unknownErr)
	}
	if m.State() != chirp8.StateHalted {
		t.Fatalf(`m.State() = %v, expected halted`, m.State())
	}
}

// TestUnknownOpcodePermissive checks the construction-time opt-out:
// unrecognized instructions execute as no-ops.
func TestUnknownOpcodePermissive(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0xFF, 0xFF,
		0x60, 7,
	}, chirp8.WithQuirks(chirp8.QuirkIgnoreUnknownOpcodes))

	stepN(t, m, 2)

	assertVxEq(t, "execution continued", m, 0x0, 7)
}

func TestJumpAndOffsetJump(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// jump to 0x206
		0x12, 0x06,
		0x00, 0x00,
		0x00, 0x00,
		// set v0 to 0x10
		0x60, 0x10,
		// jump to 0x200+v0
		0xB2, 0x00,
	})

	stepN(t, m, 1)
	if m.Pc != 0x206 {
		t.Fatalf(`m.Pc = %#04x after JP, expected 0x206`, m.Pc)
	}

	stepN(t, m, 2)
	if m.Pc != 0x210 {
		t.Fatalf(`m.Pc = %#04x after JP V0, expected 0x210`, m.Pc)
	}
}

func TestOffsetJumpQuirk(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v2 to 0x10
		0x62, 0x10,
		// jump to 0x200+v2 under the quirk (x = 2)
		0xB2, 0x00,
	}, chirp8.WithQuirks(chirp8.QuirkJumpUsesVx))

	stepN(t, m, 2)
	if m.Pc != 0x210 {
		t.Fatalf(`m.Pc = %#04x, expected 0x210`, m.Pc)
	}
}

// TestShiftPolicy checks both shift-source policies.
func TestShiftPolicy(t *testing.T) {
	// default: Vx shifts in place, Vy ignored
	m, _ := newTestMachine(t, []byte{
		// shr v0 {, v1}
		0x80, 0x16,
		// shl v0 {, v1}
		0x80, 0x1E,
	})
	m.V[0] = 0b10000011
	m.V[1] = 0xFF

	stepN(t, m, 1)
	assertVxEq(t, "SHR in place", m, 0x0, 0b01000001)
	assertVxEq(t, "SHR carry", m, 0xF, 1)

	stepN(t, m, 1)
	assertVxEq(t, "SHL in place", m, 0x0, 0b10000010)
	assertVxEq(t, "SHL carry", m, 0xF, 0)

	// quirk: Vy is copied into Vx first
	m, _ = newTestMachine(t, []byte{
		0x80, 0x16,
	}, chirp8.WithQuirks(chirp8.QuirkShiftWithVy))
	m.V[0] = 0xFF
	m.V[1] = 0b00000110

	stepN(t, m, 1)
	assertVxEq(t, "SHR from Vy", m, 0x0, 0b00000011)
	assertVxEq(t, "SHR from Vy carry", m, 0xF, 0)
}

func TestRandomMasked(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// v0 = random & 0x0F
		0xC0, 0x0F,
	}, chirp8.WithRandomSource(bytes.NewReader([]byte{0xAB})))

	stepN(t, m, 1)

	assertVxEq(t, "masked random", m, 0x0, 0x0B)
}

func TestBcdDecomposition(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to 234
		0x60, 234,
		// set I to 0x300
		0xA3, 0x00,
		// store BCD of v0
		0xF0, 0x33,
	})

	stepN(t, m, 3)

	if m.Memory[0x300] != 2 || m.Memory[0x301] != 3 || m.Memory[0x302] != 4 {
		t.Fatalf(`BCD of 234 = %d %d %d, expected 2 3 4`,
			m.Memory[0x300], m.Memory[0x301], m.Memory[0x302])
	}
}

func TestFontLookup(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to the digit A
		0x60, 0x0A,
		// point I at its glyph
		0xF0, 0x29,
	})

	stepN(t, m, 2)

	if m.I != chirp8.FontAddress(0xA) {
		t.Fatalf(`m.I = %d, expected %d`, m.I, chirp8.FontAddress(0xA))
	}
	if m.Memory[m.I] != 0xF0 {
		t.Fatalf(`glyph row = %#02x, expected 0xF0`, m.Memory[m.I])
	}
}

func TestRegisterStoreLoad(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0x60, 1,
		0x61, 2,
		0x62, 3,
		// set I to 0x300
		0xA3, 0x00,
		// store v0..v2
		0xF2, 0x55,
		// clobber the registers
		0x60, 0,
		0x61, 0,
		0x62, 0,
		// read them back
		0xF2, 0x65,
	})

	stepN(t, m, 5)

	if m.Memory[0x300] != 1 || m.Memory[0x301] != 2 || m.Memory[0x302] != 3 {
		t.Fatalf(`stored block = %d %d %d, expected 1 2 3`,
			m.Memory[0x300], m.Memory[0x301], m.Memory[0x302])
	}
	if m.I != 0x300 {
		t.Fatalf(`m.I = %#04x, expected I untouched by default`, m.I)
	}

	stepN(t, m, 4)

	assertVxEq(t, "reloaded v0", m, 0x0, 1)
	assertVxEq(t, "reloaded v1", m, 0x1, 2)
	assertVxEq(t, "reloaded v2", m, 0x2, 3)
}

func TestRegisterStoreMovesIndexQuirk(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0xA3, 0x00,
		0xF2, 0x55,
	}, chirp8.WithQuirks(chirp8.QuirkMemoryMovesIndex))

	stepN(t, m, 2)

	if m.I != 0x303 {
		t.Fatalf(`m.I = %#04x, expected 0x303 under the quirk`, m.I)
	}
}

// TestMemoryFaultIsAtomic checks that a store past the end of memory
// faults without writing anything.
func TestMemoryFaultIsAtomic(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set I to the last address
		0xAF, 0xFF,
		// store v0..v2: v1 and v2 would land out of bounds
		0xF2, 0x55,
	})
	m.V[0] = 0xAA

	stepN(t, m, 1)
	err := m.Step()

	var memErr chirp8.MemoryFaultError
	if !errors.As(err, &memErr) {
		t.Fatalf(`Step() = %v, expected MemoryFaultError`, err)
	}
	if m.Memory[0xFFF] != 0 {
		t.Fatalf(`memory mutated by the faulting store`)
	}
	if m.State() != chirp8.StateHalted {
		t.Fatalf(`m.State() = %v, expected halted`, m.State())
	}
}

// TestPcOutOfBounds checks that fetching past the end of memory is a
// memory fault, not a silent stop.
func TestPcOutOfBounds(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// jump to the last word
		0x1F, 0xFE,
		0x00, 0x00,
	})
	// land on zeroed memory: 0x0000 decodes to SYS, ignored
	stepN(t, m, 2)

	if m.Pc != 0x1000 {
		t.Fatalf(`m.Pc = %#04x, expected 0x1000`, m.Pc)
	}

	var memErr chirp8.MemoryFaultError
	if err := m.Step(); !errors.As(err, &memErr) {
		t.Fatalf(`Step() = %v, expected MemoryFaultError`, err)
	}
}

func TestDelayTimerReadWrite(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		// set v0 to 42
		0x60, 42,
		// DT = v0
		0xF0, 0x15,
		// ST = v0
		0xF0, 0x18,
		// v1 = DT
		0xF1, 0x07,
	})

	stepN(t, m, 4)

	if m.Timers.Delay != 42 || m.Timers.Sound != 42 {
		t.Fatalf(`timers = %d/%d, expected 42/42`, m.Timers.Delay, m.Timers.Sound)
	}
	assertVxEq(t, "DT read back", m, 0x1, 42)
}

func TestResetAfterHalt(t *testing.T) {
	m, _ := newTestMachine(t, []byte{
		0x00, 0xEE,
	})

	if err := m.Step(); err == nil {
		t.Fatalf(`Step() = nil, expected a fault`)
	}

	m.Reset()
	if m.State() != chirp8.StateRunning {
		t.Fatalf(`m.State() = %v after Reset, expected running`, m.State())
	}
	if m.Pc != 0x200 || m.Sp != 0 {
		t.Fatalf(`Reset left Pc=%#04x Sp=%d`, m.Pc, m.Sp)
	}
}
