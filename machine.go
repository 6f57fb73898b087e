package chirp8

import (
	"crypto/rand"
	"io"
	"time"
)

// MachineState tracks the engine's overall state machine.
type MachineState byte

const (
	StateRunning MachineState = iota
	// StateWaitingForKey is the one suspension point: entered by the
	// wait-for-key instruction, left by ReportKeyPress. It is a normal
	// state, not an error.
	StateWaitingForKey
	// StateHalted is terminal until Reset.
	StateHalted
)

func (s MachineState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateWaitingForKey:
		return "waiting-for-key"
	case StateHalted:
		return "halted"
	}

	return "unknown"
}

// MachineRoutineInterpreter handles 0nnn machine routines, which modern
// interpreters otherwise ignore.
type MachineRoutineInterpreter func(opCode uint16, m *Machine) error

// Machine aggregates all interpreter state: memory, registers, call
// stack, timers, frame buffer, and the collaborator handles. One value
// owns everything, so independent instances share nothing.
type Machine struct {
	Memory *Memory
	// V 8-bit registers; VF doubles as the flag register
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Program counter
	Pc uint16
	// Stack pointer
	Sp byte
	// Stack of return addresses
	Stack [16]uint16
	// Delay and sound countdown timers, decremented at 60 Hz
	Timers Timers

	cycles uint
	frames uint

	speedInHz      uint
	CyclesPerFrame uint

	ScreenSettings ScreenSettings
	screen         Screen
	isScreenDirty  bool

	Display  Display
	Keyboard Keyboard
	Buzzer   Buzzer

	MachineRoutineInterpreter MachineRoutineInterpreter

	quirks Quirks
	rng    io.Reader

	state          MachineState
	keyDstRegister byte
	soundWasActive bool

	isBooted  bool
	isPaused  bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5
	// FrameRate is the fixed timer/display refresh rate in Hz.
	FrameRate uint = 60
)

// MachineOption configures a machine at construction.
type MachineOption func(m *Machine)

// WithQuirks fixes the quirk policy for the life of the machine.
func WithQuirks(q Quirks) MachineOption {
	return func(m *Machine) {
		m.quirks = q
	}
}

// WithSpeed sets the instruction rate in Hz.
func WithSpeed(inHz uint) MachineOption {
	return func(m *Machine) {
		m.SetSpeedInHz(inHz)
	}
}

// WithRandomSource replaces the RND byte source, for deterministic
// tests.
func WithRandomSource(r io.Reader) MachineOption {
	return func(m *Machine) {
		m.rng = r
	}
}

func NewMachine(memory *Memory, screenSettings ScreenSettings, display Display, keyboard Keyboard, buzzer Buzzer, options ...MachineOption) *Machine {
	m := &Machine{
		Memory: memory,

		V:      [16]byte{},
		I:      0,
		Pc:     startOfProgram,
		Sp:     0,
		Stack:  [16]uint16{},
		Timers: Timers{},

		ScreenSettings: screenSettings,
		screen:         newScreen(screenSettings.Width, screenSettings.Height),
		isScreenDirty:  false,

		Display:  display,
		Keyboard: keyboard,
		Buzzer:   buzzer,

		MachineRoutineInterpreter: nil,

		quirks: 0,
		rng:    rand.Reader,

		state: StateRunning,

		isBooted:  false,
		isPaused:  false,
		lastError: nil,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	m.SetSpeedInHz(DefaultSpeed)

	for _, opt := range options {
		opt(m)
	}

	return m
}

func (m Machine) State() MachineState {
	return m.state
}

func (m Machine) IsRunning() bool {
	return !m.isPaused
}

func (m Machine) IsSoundTimerActive() bool {
	return m.Timers.Sound > 0
}

func (m Machine) IsDelayTimerActive() bool {
	return m.Timers.Delay > 0
}

func (m Machine) Quirks() Quirks {
	return m.quirks
}

func (m Machine) SpeedInHz() uint {
	return m.speedInHz
}

// SetSpeedInHz sets the instruction rate and derives the cycle budget
// that runs between 60 Hz ticks.
func (m *Machine) SetSpeedInHz(inHz uint) {
	m.speedInHz = inHz
	m.CyclesPerFrame = max(inHz/FrameRate, 1)
}

func (m Machine) Cycles() uint {
	return m.cycles
}

func (m Machine) Frames() uint {
	return m.frames
}

// Screen exposes the packed frame buffer. Callers must treat it as
// read-only.
func (m Machine) Screen() Screen {
	return m.screen
}

// Boot initializes all the components.
// If the machine was already booted, this method is a noop.
func (m *Machine) Boot() error {
	if m.isBooted {
		return nil
	}

	if err := m.Display.Boot(); err != nil {
		return err
	}

	if err := m.Keyboard.Boot(); err != nil {
		return err
	}

	if err := m.Buzzer.Boot(); err != nil {
		return err
	}

	m.isBooted = true

	return nil
}

// LoadProgram resets the machine and loads the program image at the
// program origin.
func (m *Machine) LoadProgram(program []byte) error {
	if err := m.Memory.LoadProgram(program); err != nil {
		return err
	}

	m.Reset()

	return nil
}

// Reset returns the machine to its construction state. Memory contents
// are kept; registers, stack, timers, screen, and the state machine are
// cleared.
func (m *Machine) Reset() {
	m.Pc = startOfProgram
	m.Sp = 0
	m.I = 0
	m.V = [16]byte{}
	m.Stack = [16]uint16{}
	m.Timers = Timers{}
	m.cycles = 0
	m.frames = 0
	m.state = StateRunning
	m.lastError = nil
	m.soundWasActive = false

	m.clearScreen()
	m.isScreenDirty = false
	m.Display.Render(m.screen, m.ScreenSettings)
}

// Step executes exactly one instruction cycle: fetch the big-endian
// word at PC, advance PC by 2, decode, dispatch. A fault halts the
// machine before any state was mutated by the faulting instruction.
// In WaitingForKey it returns immediately without executing; once
// halted it keeps returning the halting fault.
func (m *Machine) Step() error {
	switch m.state {
	case StateHalted:
		if m.lastError != nil {
			return m.lastError
		}
		return ErrMachineHalted

	case StateWaitingForKey:
		return nil
	}

	opCode, err := m.Memory.ReadWord(m.Pc)
	if err != nil {
		return m.halt(err)
	}
	m.Pc += 2

	if err := m.execute(Decode(opCode), opCode); err != nil {
		return m.halt(err)
	}
	m.cycles++

	return nil
}

func (m *Machine) halt(err error) error {
	m.state = StateHalted
	m.lastError = err
	m.runErrorHooks()

	return err
}

// ReportKeyPress resolves a WaitingForKey suspension: the recorded
// destination register receives the key index and the machine resumes.
// Outside WaitingForKey it is a noop.
func (m *Machine) ReportKeyPress(k byte) {
	if m.state != StateWaitingForKey || k > 15 {
		return
	}

	m.V[m.keyDstRegister] = k
	m.state = StateRunning
}

// Tick applies one 60 Hz timer decrement, signals the buzzer exactly on
// the sound timer's zero transitions, and presents the frame buffer
// when it changed. The caller drives it at a fixed rate, independent of
// the instruction rate.
func (m *Machine) Tick() error {
	sound := m.Timers.Tick()

	active := sound > 0
	if active && !m.soundWasActive {
		m.Buzzer.Play()
	} else if !active && m.soundWasActive {
		m.Buzzer.Stop()
	}
	m.soundWasActive = active

	if m.isScreenDirty {
		m.isScreenDirty = false
		if err := m.Display.Render(m.screen, m.ScreenSettings); err != nil {
			return err
		}
	}
	m.frames++

	return nil
}

// StepFrame runs one frame: resolve a pending key wait, execute the
// cycle batch, then apply the timer tick. This is the cycle-budget form
// of the two clock domains sharing one thread.
func (m *Machine) StepFrame() error {
	m.runBeforeFrameHooks()

	if m.isPaused {
		m.runAfterFrameHooks()
		return nil
	}

	if m.state == StateWaitingForKey {
		if k, pressed := m.Keyboard.GetPressed(); pressed {
			m.ReportKeyPress(k)
		}
	}

	for i := uint(0); i < m.CyclesPerFrame && m.state == StateRunning; i++ {
		m.runBeforeCycleHooks()
		if err := m.Step(); err != nil {
			return err
		}
		m.runAfterCycleHooks()
	}

	if err := m.Tick(); err != nil {
		return err
	}

	m.runAfterFrameHooks()

	return nil
}

// RunAtSpeed sets the instruction rate and starts the loop.
func (m *Machine) RunAtSpeed(inHz uint) error {
	m.SetSpeedInHz(inHz)
	return m.Run()
}

// Run drives frames at the fixed 60 Hz refresh until a fault halts the
// machine.
func (m *Machine) Run() error {
	if !m.isBooted {
		return ErrMachineNotBooted
	}

	if m.lastError != nil {
		return m.lastError
	}

	frame := time.Second / time.Duration(FrameRate)
	var last time.Time

	for {
		if err := m.StepFrame(); err != nil {
			return err
		}

		// Prevent the loop from running faster than the refresh rate
		time.Sleep(max(frame-time.Since(last), 0))
		last = time.Now()
	}
}

// StepOnce runs a single frame bypassing the pause state.
func (m *Machine) StepOnce() error {
	if !m.isBooted {
		return ErrMachineNotBooted
	}

	if m.lastError != nil {
		return m.lastError
	}

	prev := m.isPaused
	m.isPaused = false
	defer func() {
		m.isPaused = prev
	}()

	return m.StepFrame()
}

// Start resumes the frame loop after Stop.
func (m *Machine) Start() {
	m.isPaused = false
}

// Stop pauses the frame loop without touching machine state.
func (m *Machine) Stop() {
	m.isPaused = true
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
