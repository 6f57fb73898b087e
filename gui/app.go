package gui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tovald/chirp8"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap    = 5
	MessageBarHeight = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// AppConfig tunes the console window at construction.
type AppConfig struct {
	Speed        uint
	Quirks       chirp8.Quirks
	UseDebugger  bool
	DebuggerPort int
}

type AppConfigCb func(config *AppConfig)

// App is the raylib console: it owns the machine, implements its
// Keyboard and Buzzer, and renders the frame buffer as a pixel grid.
type App struct {
	*chirp8.InMemoryKeyboard
	Machine *chirp8.Machine

	// Speed in Hz is (speedFactor+1) * 5
	speedFactor float32
	// Unpacked screen, one byte per pixel
	screen []byte

	keyboardLayout    chirp8.KeyboardLayout
	keyboardLookupMap map[ScanCode]byte

	winW, winH int

	loadBtn, startBtn, stopBtn, stepBtn, resetBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

func speedFactorToHz(s float32) uint {
	return uint((s + 1) * 5)
}

func hzToSpeedFactor(hz uint) float32 {
	return float32(hz)/5 - 1
}

func NewApp(configs ...AppConfigCb) *App {
	config := &AppConfig{
		Speed:        chirp8.DefaultSpeed,
		DebuggerPort: 9999,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		InMemoryKeyboard:  chirp8.NewInMemoryKeyboard(),
		speedFactor:       hzToSpeedFactor(config.Speed),
		keyboardLayout:    chirp8.DefaultKeyboardLayout,
		keyboardLookupMap: map[ScanCode]byte{},
	}

	app.Machine = chirp8.NewMachine(chirp8.NewMemory(), chirp8.SmallScreen, app, app, app,
		chirp8.WithQuirks(config.Quirks),
		chirp8.WithSpeed(config.Speed))
	app.screen = make([]byte, app.Machine.ScreenSettings.Width*app.Machine.ScreenSettings.Height)

	if config.UseDebugger {
		deb := chirp8.NewHttpDebugger(app.Machine)
		go func() {
			slog.Info("debugger listening", slog.Int("port", config.DebuggerPort))
			if err := deb.Listen(config.DebuggerPort); err != nil {
				slog.Error("debugger stopped", slog.Any("error", err))
			}
		}()
	}

	app.updateKeyboardLookupMap()
	app.updateWindowSize()

	return app
}

// Run initializes the console and the UI loop.
func (app *App) Run(autostart bool) {
	go func(m *chirp8.Machine) {
		slog.Info("starting machine loop on pause")
		m.Boot()
		if !autostart {
			m.Stop()
		}
		if err := m.Run(); err != nil {
			app.showMessage(err.Error(), MessageError)
			slog.Error("machine halted", slog.Any("error", err))
		}
	}(app.Machine)

	rl.InitWindow(int32(app.winW), int32(app.winH), "chirp8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateMachineSpeed()

		// Sections render bottom to top so dropdowns stay on top
		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		return
	}

	if err = app.Machine.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)

	app.Machine.Start()
}

// Play implements chirp8.Buzzer.
func (app *App) Play() {
}

// Stop implements chirp8.Buzzer.
func (app *App) Stop() {
}

func (app *App) updateWindowSize() {
	app.winW = app.Machine.ScreenSettings.Width * ScreenPixelSize
	app.winH = app.Machine.ScreenSettings.Height*ScreenPixelSize + ToolbarHeight + MessageBarHeight
	slog.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) updateKeyboardLookupMap() {
	runeToConsoleKey := chirp8.LookupMap(app.keyboardLayout)
	for r, k := range runeToConsoleKey {
		app.keyboardLookupMap[runeToKey[r]] = k
	}
}

func (app App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		app.Load(files[0])
	}
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Machine.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.Machine.Stop()
		slog.Info("Stopping the console")
	}
	if app.resetBtn {
		app.Machine.Reset()
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		app.Machine.StepOnce()
		slog.Info("Running a single frame")
	}
}

func (app *App) handleKeyPress() {
	for scanCode, key := range app.keyboardLookupMap {
		if rl.IsKeyDown(scanCode) {
			app.InMemoryKeyboard.Press(key)
		} else {
			app.InMemoryKeyboard.Release(key)
		}
	}
}

func (app *App) updateMachineSpeed() {
	app.Machine.SetSpeedInHz(speedFactorToHz(app.speedFactor))
}

const (
	MinSpeedFactor = float32(chirp8.MinSpeed/5) - 1
	MaxSpeedFactor = float32(chirp8.MaxSpeed/5) - 1
)

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.resetBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.Machine.IsRunning() {
		status = app.Machine.State().String()
	}
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", speedFactorToHz(app.speedFactor)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speedFactor = hzToSpeedFactor(chirp8.DefaultSpeed)
	}

	app.speedFactor = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		"5 Hz", "700 Hz",
		app.speedFactor,
		MinSpeedFactor,
		MaxSpeedFactor,
	)
}

func (app *App) drawScreen() {
	for y := 0; y < app.Machine.ScreenSettings.Height; y++ {
		for x := 0; x < app.Machine.ScreenSettings.Width; x++ {
			t := y*app.Machine.ScreenSettings.Width + x

			color := ScreenBgColor
			if app.screen[t] > 0 {
				color = ScreenPixelColor
			}
			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeight,
		int32(app.winW),
		MessageBarHeight,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeight+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}
