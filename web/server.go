package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tovald/chirp8"
)

// Server runs a machine whose display is streamed to a browser over a
// websocket and whose keypad is fed by websocket key messages.
type Server struct {
	*chirp8.InMemoryKeyboard
	*chirp8.DummyBuzzer

	machine  *chirp8.Machine
	debugger *chirp8.HttpDebugger

	socket  *websocket.Conn
	wsMutex sync.RWMutex
}

type ServerConfig struct {
	ScreenSettings chirp8.ScreenSettings
	Quirks         chirp8.Quirks
	UseDebugger    bool
}

type ServerConfigCb func(config *ServerConfig)

func NewServer(mem *chirp8.Memory, configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		ScreenSettings: chirp8.SmallScreen,
		UseDebugger:    false,
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: chirp8.NewInMemoryKeyboard(),
		DummyBuzzer:      chirp8.NewDummyBuzzer(),
	}

	s.machine = chirp8.NewMachine(mem, config.ScreenSettings, s, s, s.DummyBuzzer,
		chirp8.WithQuirks(config.Quirks))
	if config.UseDebugger {
		s.debugger = chirp8.NewHttpDebugger(s.machine)
	}

	return s
}

func (server *Server) Speed(inHz uint) {
	server.machine.SetSpeedInHz(inHz)
}

// LoadProgram loads the program into memory and resets the machine.
func (server *Server) LoadProgram(program []byte) error {
	return server.machine.LoadProgram(program)
}

func (server *Server) Listen(port int) error {
	if err := server.machine.Boot(); err != nil {
		return err
	}

	go func() {
		server.machine.Stop()
		if err := server.machine.Run(); err != nil {
			slog.Error("machine halted", slog.Any("error", err))
		}
	}()

	slog.Info("Listening on port", slog.Int("port", port))

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("./static")))

	if server.debugger != nil {
		server.debugger.Attach(mux)
	} else {
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Starting")
			server.machine.Start()
		})
		mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Stopping")
			server.machine.Stop()
		})
		mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Stopping and resetting")
			server.machine.Stop()
			server.machine.Reset()
		})
	}

	mux.HandleFunc("/display", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.Any("error", err))
			return
		}
		defer conn.Close()

		slog.Info("Display connected")
		server.setWs(conn)
		defer server.unsetWs()

		server.readKeys(conn)
		slog.Info("Display disconnected")
	})

	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

// readKeys consumes key messages until the connection drops. Messages
// are "+K" for press and "-K" for release, K a hex key value.
func (server *Server) readKeys(conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if len(msg) < 2 {
			continue
		}

		k, err := strconv.ParseUint(string(msg[1:]), 16, 8)
		if err != nil || k > 15 {
			continue
		}

		switch msg[0] {
		case '+':
			server.Press(byte(k))
		case '-':
			server.Release(byte(k))
		}
	}
}
