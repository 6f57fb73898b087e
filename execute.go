package chirp8

import "io"

// execute dispatches one decoded instruction. PC was already advanced
// past the instruction by the fetch, so a taken skip adds 2 more and a
// call pushes the post-fetch PC. Every fault condition is checked
// before the first mutation of the instruction's effects.
func (m *Machine) execute(in Instruction, opCode uint16) error {
	switch in.Op {
	case OpSys:
		// SYS :: Jump to a machine code routine at nnn.
		// Only used on the computers Chip-8 originally ran on; modern
		// interpreters ignore it unless a handler is installed.
		if m.MachineRoutineInterpreter != nil {
			return m.MachineRoutineInterpreter(opCode, m)
		}

	case OpCls:
		// CLS :: Clear the display.
		m.clearScreen()

	case OpRet:
		// RET :: Return from a subroutine.
		if m.Sp == 0 {
			return ErrStackUnderflow
		}
		m.Sp--
		m.Pc = m.Stack[m.Sp]

	case OpJp:
		// JP addr :: Jump to location nnn.
		m.Pc = in.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if int(m.Sp) >= len(m.Stack) {
			return ErrStackOverflow
		}
		m.Stack[m.Sp] = m.Pc
		m.Sp++
		m.Pc = in.NNN

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if m.V[in.X] == in.KK {
			m.Pc += 2
		}

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if m.V[in.X] != in.KK {
			m.Pc += 2
		}

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if m.V[in.X] == m.V[in.Y] {
			m.Pc += 2
		}

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		m.V[in.X] = in.KK

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk (no flag).
		m.V[in.X] += in.KK

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		m.V[in.X] = m.V[in.Y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		if m.quirks.has(QuirkVfReset) {
			m.V[0xF] = 0
		}
		m.V[in.X] |= m.V[in.Y]

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		if m.quirks.has(QuirkVfReset) {
			m.V[0xF] = 0
		}
		m.V[in.X] &= m.V[in.Y]

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		if m.quirks.has(QuirkVfReset) {
			m.V[0xF] = 0
		}
		m.V[in.X] ^= m.V[in.Y]

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(m.V[in.X]) + uint16(m.V[in.Y])
		m.V[in.X] = byte(r)
		m.V[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		noBorrow := m.V[in.X] >= m.V[in.Y]
		m.V[in.X] -= m.V[in.Y]
		m.V[0xF] = bool2byte(noBorrow)

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1, VF = shifted-out bit.
		if m.quirks.has(QuirkShiftWithVy) {
			m.V[in.X] = m.V[in.Y]
		}
		carry := m.V[in.X] & 0x01
		m.V[in.X] >>= 1
		m.V[0xF] = carry

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		noBorrow := m.V[in.Y] >= m.V[in.X]
		m.V[in.X] = m.V[in.Y] - m.V[in.X]
		m.V[0xF] = bool2byte(noBorrow)

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1, VF = shifted-out bit.
		if m.quirks.has(QuirkShiftWithVy) {
			m.V[in.X] = m.V[in.Y]
		}
		carry := m.V[in.X] >> 7
		m.V[in.X] <<= 1
		m.V[0xF] = carry

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if m.V[in.X] != m.V[in.Y] {
			m.Pc += 2
		}

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		m.I = in.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0, or xnn + Vx under
		// the jump quirk.
		if m.quirks.has(QuirkJumpUsesVx) {
			m.Pc = in.NNN + uint16(m.V[in.X])
		} else {
			m.Pc = in.NNN + uint16(m.V[0])
		}

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		buff := [1]byte{}
		if _, err := io.ReadFull(m.rng, buff[:]); err != nil {
			return err
		}
		m.V[in.X] = buff[0] & in.KK

	case OpDrw:
		// DRW Vx, Vy, nibble :: XOR the n-byte sprite at memory[I] onto
		// the grid at (Vx, Vy), set VF = collision.
		if in.N == 0 {
			m.V[0xF] = 0
			break
		}
		if err := m.Memory.CheckRange(m.I, m.I+uint16(in.N)-1); err != nil {
			return err
		}
		m.V[0xF] = m.drawSprite(m.V[in.X], m.V[in.Y], m.Memory[m.I:m.I+uint16(in.N)])

	case OpSkp:
		// SKP Vx :: Skip next instruction if key Vx is pressed.
		if m.Keyboard.IsPressed(m.V[in.X]) {
			m.Pc += 2
		}

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key Vx is not pressed.
		if !m.Keyboard.IsPressed(m.V[in.X]) {
			m.Pc += 2
		}

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		m.V[in.X] = m.Timers.Delay

	case OpLdVxKey:
		// LD Vx, K :: Suspend until a key press, store the key in Vx.
		// The destination register is recorded but not written yet.
		m.state = StateWaitingForKey
		m.keyDstRegister = in.X

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		m.Timers.Delay = m.V[in.X]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		m.Timers.Sound = m.V[in.X]

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx (no flag).
		m.I += uint16(m.V[in.X])

	case OpLdFont:
		// LD F, Vx :: Set I = address of the font sprite for digit Vx.
		m.I = FontAddress(m.V[in.X])

	case OpLdBcd:
		// LD B, Vx :: Store the BCD decomposition of Vx at I, I+1, I+2.
		if err := m.Memory.CheckRange(m.I, m.I+2); err != nil {
			return err
		}
		v := m.V[in.X]
		m.Memory[m.I+0] = v / 100
		m.Memory[m.I+1] = (v / 10) % 10
		m.Memory[m.I+2] = v % 10

	case OpLdMemVx:
		// LD [I], Vx :: Store registers V0 through Vx at memory[I].
		if err := m.Memory.CheckRange(m.I, m.I+uint16(in.X)); err != nil {
			return err
		}
		for i := byte(0); i <= in.X; i++ {
			m.Memory[m.I+uint16(i)] = m.V[i]
		}
		if m.quirks.has(QuirkMemoryMovesIndex) {
			m.I += uint16(in.X) + 1
		}

	case OpLdVxMem:
		// LD Vx, [I] :: Read registers V0 through Vx from memory[I].
		if err := m.Memory.CheckRange(m.I, m.I+uint16(in.X)); err != nil {
			return err
		}
		for i := byte(0); i <= in.X; i++ {
			m.V[i] = m.Memory[m.I+uint16(i)]
		}
		if m.quirks.has(QuirkMemoryMovesIndex) {
			m.I += uint16(in.X) + 1
		}

	default:
		if m.quirks.has(QuirkIgnoreUnknownOpcodes) {
			return nil
		}
		return UnknownOpCodeError{
			OpCode: opCode,
			Pc:     m.Pc - 2,
		}
	}

	return nil
}
