package chirp8

import (
	"sync"
	"time"

	"github.com/pkg/term"
)

// Keyboard supplies the 16-key pressed state. The engine only reads it;
// the external input collaborator writes it.
type Keyboard interface {
	// Boot initializes the component
	Boot() error
	// IsPressed reports whether key k (0x0..0xF) is currently down.
	IsPressed(k byte) bool
	// GetPressed returns a currently pressed key, if any.
	GetPressed() (byte, bool)
}

// KeyboardLayout maps the 4x4 key grid, row-major, to host runes.
type KeyboardLayout [16]rune

// DefaultKeyboardLayout is the classic 1234/QWER/ASDF/ZXCV grid.
var DefaultKeyboardLayout = KeyboardLayout{
	'1', '2', '3', '4',
	'q', 'w', 'e', 'r',
	'a', 's', 'd', 'f',
	'z', 'x', 'c', 'v',
}

// keypadGrid holds the key values at each grid position: the physical
// keypad reads 123C / 456D / 789E / A0BF.
var keypadGrid = [16]byte{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// LookupMap inverts a layout into a rune-to-key-value map.
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, len(layout))
	for i, r := range layout {
		m[r] = keypadGrid[i]
	}

	return m
}

// InMemoryKeyboard holds the key vector as a 16-bit mask, key 0 at the
// most significant bit. Frontends write it, the engine reads it.
type InMemoryKeyboard struct {
	State uint16
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// IsPressed implements Keyboard.
func (kb *InMemoryKeyboard) IsPressed(k byte) bool {
	if k > 15 {
		return false
	}

	return kb.State&(0b1000000000000000>>k) != 0
}

// GetPressed implements Keyboard.
func (kb *InMemoryKeyboard) GetPressed() (byte, bool) {
	for k := byte(0); k < 16; k++ {
		if kb.IsPressed(k) {
			return k, true
		}
	}

	return 0, false
}

func (kb *InMemoryKeyboard) Press(k byte) {
	if k > 15 {
		return
	}

	kb.State |= 0b1000000000000000 >> k
}

func (kb *InMemoryKeyboard) Release(k byte) {
	if k > 15 {
		return
	}

	kb.State &^= 0b1000000000000000 >> k
}

// SetState replaces the whole vector, the shape the per-frame input
// collaborator delivers.
func (kb *InMemoryKeyboard) SetState(keys [16]bool) {
	var state uint16
	for k, down := range keys {
		if down {
			state |= 0b1000000000000000 >> k
		}
	}
	kb.State = state
}

// TerminalKeyboard reads raw key bytes from the controlling terminal.
// Terminals report no release events, so a key reads as pressed for a
// short hold window after its byte arrives.
type TerminalKeyboard struct {
	lookup map[rune]byte
	hold   time.Duration

	mu        sync.Mutex
	pressedAt [16]time.Time
}

func NewTerminalKeyboard() *TerminalKeyboard {
	return &TerminalKeyboard{
		lookup: LookupMap(DefaultKeyboardLayout),
		hold:   100 * time.Millisecond,
	}
}

// Boot implements Keyboard. It switches the tty to raw mode and starts
// the reader goroutine.
func (kb *TerminalKeyboard) Boot() error {
	t, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		return err
	}

	go kb.readLoop(t)

	return nil
}

func (kb *TerminalKeyboard) readLoop(t *term.Term) {
	buff := make([]byte, 1)
	for {
		n, err := t.Read(buff)
		if err != nil {
			t.Restore()
			t.Close()
			return
		}
		if n == 0 {
			continue
		}

		if k, ok := kb.lookup[rune(buff[0])]; ok {
			kb.mu.Lock()
			kb.pressedAt[k] = time.Now()
			kb.mu.Unlock()
		}
	}
}

// IsPressed implements Keyboard.
func (kb *TerminalKeyboard) IsPressed(k byte) bool {
	if k > 15 {
		return false
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	return time.Since(kb.pressedAt[k]) < kb.hold
}

// GetPressed implements Keyboard.
func (kb *TerminalKeyboard) GetPressed() (byte, bool) {
	for k := byte(0); k < 16; k++ {
		if kb.IsPressed(k) {
			return k, true
		}
	}

	return 0, false
}
