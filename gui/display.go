package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tovald/chirp8"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// ScanCode is a raylib keyboard scan code.
type ScanCode = int32

// runeToKey maps the layout runes to raylib key codes.
var runeToKey = map[rune]ScanCode{
	'1': rl.KeyOne, '2': rl.KeyTwo, '3': rl.KeyThree, '4': rl.KeyFour,
	'q': rl.KeyQ, 'w': rl.KeyW, 'e': rl.KeyE, 'r': rl.KeyR,
	'a': rl.KeyA, 's': rl.KeyS, 'd': rl.KeyD, 'f': rl.KeyF,
	'z': rl.KeyZ, 'x': rl.KeyX, 'c': rl.KeyC, 'v': rl.KeyV,
}

// Boot implements chirp8.Display.
func (app *App) Boot() error {
	return nil
}

// Render implements chirp8.Display: the packed frame buffer is unpacked
// to one byte per pixel for the draw loop.
func (app *App) Render(screen chirp8.Screen, settings chirp8.ScreenSettings) error {
	for i, t := 0, 0; t < settings.Width*settings.Height; i, t = i+1, t+8 {
		app.screen[t+0] = (screen[i] >> 7) & 0b1
		app.screen[t+1] = (screen[i] >> 6) & 0b1
		app.screen[t+2] = (screen[i] >> 5) & 0b1
		app.screen[t+3] = (screen[i] >> 4) & 0b1
		app.screen[t+4] = (screen[i] >> 3) & 0b1
		app.screen[t+5] = (screen[i] >> 2) & 0b1
		app.screen[t+6] = (screen[i] >> 1) & 0b1
		app.screen[t+7] = (screen[i] >> 0) & 0b1
	}

	return nil
}
