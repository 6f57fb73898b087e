package chirp8

import (
	"io"
	"os"
)

// Display abstraction for a display. Render receives a read-only view
// of the packed frame buffer; implementations own presentation and
// never write machine state.
type Display interface {
	// Boot initializes the component
	Boot() error
	Render(Screen, ScreenSettings) error
}

// DummyDisplay is a display that does nothing.
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(screen Screen, settings ScreenSettings) error {
	return nil
}

// InMemoryDisplay retains the last rendered frame, for tests and
// headless runs.
type InMemoryDisplay struct {
	Screen   Screen
	Settings ScreenSettings
	Frames   uint
}

func NewInMemoryDisplay() *InMemoryDisplay {
	return &InMemoryDisplay{}
}

// Boot implements Display.
func (d *InMemoryDisplay) Boot() error {
	return nil
}

// Render implements Display.
func (d *InMemoryDisplay) Render(screen Screen, settings ScreenSettings) error {
	d.Screen = append(d.Screen[:0], screen...)
	d.Settings = settings
	d.Frames++

	return nil
}

const esc = 0x1B

// TerminalDisplay paints the frame buffer with ANSI cursor control.
type TerminalDisplay struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewTerminalDisplay() *TerminalDisplay {
	return NewTerminalDisplayWithOutput(os.Stdout)
}

func NewTerminalDisplayWithOutput(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Display.
func (disp *TerminalDisplay) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor to start
		esc, '[', '1', 'H',
		// clear the terminal
		esc, '[', '0', 'J',
	})

	return err
}

// Render implements Display.
func (disp *TerminalDisplay) Render(screen Screen, settings ScreenSettings) error {
	buff := make([]byte, 0, settings.Width*settings.Height*2+settings.Height+64)
	buff = append(buff, esc, '[', '1', 'H')

	for i, b := range screen {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>byte(bit)) != 0 {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}

		if ((i+1)*8)%settings.Width == 0 {
			buff = append(buff, '|', '\n')
		}
	}

	_, err := disp.terminal.Write(buff)
	return err
}
