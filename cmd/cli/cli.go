package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/tovald/chirp8"
)

func quirksFromFlags(shiftVy, jumpVx, vfReset, moveIndex, clip, permissive bool) chirp8.Quirks {
	var q chirp8.Quirks
	if shiftVy {
		q |= chirp8.QuirkShiftWithVy
	}
	if jumpVx {
		q |= chirp8.QuirkJumpUsesVx
	}
	if vfReset {
		q |= chirp8.QuirkVfReset
	}
	if moveIndex {
		q |= chirp8.QuirkMemoryMovesIndex
	}
	if clip {
		q |= chirp8.QuirkClipSprites
	}
	if permissive {
		q |= chirp8.QuirkIgnoreUnknownOpcodes
	}

	return q
}

func main() {
	speed := flag.Uint("speed", chirp8.DefaultSpeed, "instruction rate in Hz")
	port := flag.Int("port", 0, "port of the debugger; 0 disables it")
	noTerm := flag.Bool("noterm", false, "turn off the terminal display of the emulator")
	shiftVy := flag.Bool("shift-vy", false, "SHR/SHL read Vy instead of shifting Vx in place")
	jumpVx := flag.Bool("jump-vx", false, "JP V0 uses Vx instead of V0 for the offset")
	vfReset := flag.Bool("vf-reset", false, "AND/OR/XOR reset VF")
	moveIndex := flag.Bool("move-index", false, "register store/load move I past the block")
	clip := flag.Bool("clip", false, "clip sprites at the edges instead of wrapping")
	permissive := flag.Bool("permissive", false, "treat unknown opcodes as no-ops instead of halting")

	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	mem := chirp8.NewMemory()
	kb := chirp8.NewTerminalKeyboard()
	b := chirp8.NewTerminalBuzzer()
	var d chirp8.Display
	if *noTerm {
		d = chirp8.NewInMemoryDisplay()
	} else {
		d = chirp8.NewTerminalDisplay()
	}

	machine := chirp8.NewMachine(mem, chirp8.SmallScreen, d, kb, b,
		chirp8.WithQuirks(quirksFromFlags(*shiftVy, *jumpVx, *vfReset, *moveIndex, *clip, *permissive)),
		chirp8.WithSpeed(*speed))

	if *port != 0 {
		deb := chirp8.NewHttpDebugger(machine)
		machine.Start()
		go func(deb *chirp8.HttpDebugger, port int) {
			log.Println("debugger listening on port", port)

			if err := deb.Listen(port); err != nil {
				log.Fatalln(err)
			}
		}(deb, *port)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	if err := machine.LoadProgram(program); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	color.New(color.FgGreen).Printf("loaded %s (%d bytes)\n", flag.Arg(0), len(program))

	if err := machine.Boot(); err != nil {
		log.Fatalln(err)
	}

	if err := machine.Run(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "machine halted: %v\n", err)
		os.Exit(1)
	}
}
