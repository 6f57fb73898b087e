package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tovald/chirp8"
	"github.com/tovald/chirp8/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (default = false).")
	debug := flag.Bool("debug", false, "Serve the HTTP debugger for the console (default = false).")
	initialSpeed := flag.Uint("speed", chirp8.DefaultSpeed, fmt.Sprintf("The starting speed of the machine in Hz. It has to be in the range [5, 700] (default = %d).", chirp8.DefaultSpeed))

	flag.Parse()

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = max(*initialSpeed, chirp8.MinSpeed)
		config.UseDebugger = *debug
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
