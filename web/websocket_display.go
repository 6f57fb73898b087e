package web

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tovald/chirp8"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Boot implements chirp8.Display.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()
	server.socket = conn
}

func (server *Server) unsetWs() {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()
	server.socket = nil
}

// Render implements chirp8.Display. The packed frame buffer goes out
// as a single binary websocket message.
func (server *Server) Render(screen chirp8.Screen, settings chirp8.ScreenSettings) error {
	server.wsMutex.RLock()
	defer server.wsMutex.RUnlock()

	if server.socket == nil {
		return nil
	}

	return server.socket.WriteMessage(websocket.BinaryMessage, screen)
}
