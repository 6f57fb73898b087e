package chirp8

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MachineSnapshot is the per-cycle state sent to debugger clients.
type MachineSnapshot struct {
	OpCode uint16     `json:"opcode"`
	Pc     uint16     `json:"pc"`
	I      uint16     `json:"i"`
	Sp     byte       `json:"sp"`
	V      [16]byte   `json:"v"`
	Stack  [16]uint16 `json:"stack"`
	Delay  byte       `json:"dt"`
	Sound  byte       `json:"st"`
	State  string     `json:"state"`
	Cycle  uint       `json:"cycle"`
}

// HttpDebugger streams machine snapshots over server-sent events and
// exposes start/stop/reset/step controls.
type HttpDebugger struct {
	Machine       *Machine
	CurrentOpCode uint16

	SendEvery uint
	send      chan MachineSnapshot
}

// NewHttpDebugger creates a debugger attached to the machine's hooks.
// The machine is paused and its cycle budget dropped to 1, so clients
// can single-step.
func NewHttpDebugger(m *Machine) *HttpDebugger {
	deb := &HttpDebugger{
		Machine:   m,
		SendEvery: 1,
		send:      make(chan MachineSnapshot, 16),
	}

	m.AddBeforeCycleHook(deb.beforeCycle)
	m.AddAfterCycleHook(deb.afterCycle)
	m.CyclesPerFrame = 1

	m.Stop()

	return deb
}

// Attach registers the debugger endpoints on the mux.
func (d *HttpDebugger) Attach(mux *http.ServeMux) {
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		for {
			select {
			case snap := <-d.send:
				payload, err := json.Marshal(snap)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", payload)
				w.(http.Flusher).Flush()

			case <-r.Context().Done():
				return
			}
		}
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)
		d.Machine.Start()
	})
	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)
		d.Machine.Stop()
	})
	mux.HandleFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)
		d.Machine.Stop()
		d.Machine.Reset()
	})
	mux.HandleFunc("/step", func(w http.ResponseWriter, r *http.Request) {
		writeCorsHeaders(w)
		d.Machine.StepOnce()
	})
}

// Listen serves the debugger endpoints on its own mux.
func (d *HttpDebugger) Listen(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("./static")))
	d.Attach(mux)

	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

func (d *HttpDebugger) beforeCycle(m *Machine) {
	if word, err := m.Memory.ReadWord(m.Pc); err == nil {
		d.CurrentOpCode = word
	}
}

func (d *HttpDebugger) afterCycle(m *Machine) {
	if d.SendEvery == 0 || m.Cycles()%d.SendEvery != 0 {
		return
	}

	// Drop the snapshot instead of stalling the machine when no client
	// is draining the stream.
	select {
	case d.send <- d.snapshot(m):
	default:
	}
}

func (d *HttpDebugger) snapshot(m *Machine) MachineSnapshot {
	return MachineSnapshot{
		OpCode: d.CurrentOpCode,
		Pc:     m.Pc,
		I:      m.I,
		Sp:     m.Sp,
		V:      m.V,
		Stack:  m.Stack,
		Delay:  m.Timers.Delay,
		Sound:  m.Timers.Sound,
		State:  m.State().String(),
		Cycle:  m.Cycles(),
	}
}

func writeCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")
	w.Header().Set("Cache-Control", "no-cache")
}
