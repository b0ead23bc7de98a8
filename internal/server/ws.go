package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/courtside-ai/courtside/internal/game"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients come from a separate dev origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS streams store updates to one client: first a full snapshot, then
// every state change and log entry as it happens. A client that stops
// reading is disconnected rather than allowed to stall the feed.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.store.Subscribe()
	defer cancel()

	snapshot := s.store.State()
	if err := writeUpdate(conn, game.Update{State: &snapshot}); err != nil {
		return
	}

	// Reads are discarded; their only job is detecting the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := writeUpdate(conn, u); err != nil {
				return
			}
		}
	}
}

func writeUpdate(conn *websocket.Conn, u game.Update) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(u)
}
