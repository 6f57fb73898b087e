package main

import (
	"flag"
	"log"
	"os"

	"github.com/tovald/chirp8"
	"github.com/tovald/chirp8/web"
)

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", chirp8.DefaultSpeed, "Instruction rate in Hz")
	debug := flag.Bool("debug", false, "Expose the debugger endpoints (default = false)")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatalln("must provide the path to a rom as an argument")
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	mem := chirp8.NewMemory()
	server := web.NewServer(mem, func(config *web.ServerConfig) {
		config.UseDebugger = *debug
	})

	server.Speed(*speed)
	if err := server.LoadProgram(program); err != nil {
		log.Fatalln(err)
	}
	if err := server.Listen(*port); err != nil {
		log.Fatalln(err)
	}
}
