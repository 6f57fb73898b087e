package chirp8

// Screen is the packed frame buffer representation: one bit per pixel,
// row-major, most significant bit first.
type Screen []byte

// ScreenSettings for the console.
// Common display sizes are 64x32 and 128x64.
type ScreenSettings struct {
	Width, Height int
}

var SmallScreen = ScreenSettings{
	Width:  64,
	Height: 32,
}

func newScreen(w, h int) Screen {
	return make(Screen, (w*h+7)/8)
}

func (m *Machine) clearScreen() {
	for i := range m.screen {
		m.screen[i] = 0
	}
	m.isScreenDirty = true
}

// PixelAt reports whether the pixel at (x, y) is set. Coordinates are
// taken modulo the grid dimensions.
func (m *Machine) PixelAt(x, y int) bool {
	t := (y%m.ScreenSettings.Height)*m.ScreenSettings.Width + (x % m.ScreenSettings.Width)

	return m.screen[t/8]&(0x80>>(t%8)) != 0
}

// flipPixel XORs the pixel at (x, y) and reports whether it went from
// set to unset.
func (m *Machine) flipPixel(x, y int) bool {
	t := y*m.ScreenSettings.Width + x
	mask := byte(0x80 >> (t % 8))

	was := m.screen[t/8]&mask != 0
	m.screen[t/8] ^= mask

	return was
}

// drawSprite XORs the sprite rows onto the grid at (x, y) and returns
// the collision flag: 1 if any pixel transitioned from set to unset.
// The starting coordinates always wrap modulo the grid dimensions; the
// quirk policy decides whether the sprite body wraps too or is clipped
// at the edges.
func (m *Machine) drawSprite(x, y byte, sprite []byte) byte {
	w, h := m.ScreenSettings.Width, m.ScreenSettings.Height
	x0, y0 := int(x)%w, int(y)%h

	collision := byte(0)
	for row, b := range sprite {
		py := y0 + row
		if py >= h {
			if m.quirks.has(QuirkClipSprites) {
				break
			}
			py %= h
		}

		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) == 0 {
				continue
			}

			px := x0 + bit
			if px >= w {
				if m.quirks.has(QuirkClipSprites) {
					continue
				}
				px %= w
			}

			if m.flipPixel(px, py) {
				collision = 1
			}
		}
	}
	m.isScreenDirty = true

	return collision
}
