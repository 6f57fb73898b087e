package chirp8

// Timers holds the delay and sound countdown registers. They are
// decremented by exactly 1 per 60 Hz tick, independent of how many
// instruction cycles ran in the interval.
type Timers struct {
	Delay byte
	Sound byte
}

// Tick applies one 60 Hz decrement to both timers, clamping at zero,
// and returns the new sound value so the caller can start or stop the
// tone exactly on the zero transition.
func (t *Timers) Tick() byte {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}

	return t.Sound
}
