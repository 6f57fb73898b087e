package chirp8

import (
	"io"
	"os"
)

// Buzzer is signaled exactly on the sound timer's zero transitions:
// Play when it leaves zero, Stop when it reaches zero.
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// DummyBuzzer is a buzzer that only records its state.
type DummyBuzzer struct {
	IsPlaying bool
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{
		IsPlaying: false,
	}
}

// Boot implements Buzzer.
func (b *DummyBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *DummyBuzzer) Play() {
	b.IsPlaying = true
}

// Stop implements Buzzer.
func (b *DummyBuzzer) Stop() {
	b.IsPlaying = false
}

// TerminalBuzzer rings the terminal bell when the tone starts.
type TerminalBuzzer struct {
	out io.Writer
}

func NewTerminalBuzzer() *TerminalBuzzer {
	return &TerminalBuzzer{out: os.Stdout}
}

// Boot implements Buzzer.
func (b *TerminalBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *TerminalBuzzer) Play() {
	b.out.Write([]byte{0x07})
}

// Stop implements Buzzer.
func (b *TerminalBuzzer) Stop() {
}
