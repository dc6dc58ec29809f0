package web

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Hub fans state snapshots out to every connected browser page. This is not
// streaming transcription; it only mirrors studio state so open tabs stay
// current.
type Hub struct {
	logger *log.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Join registers a connection and writes its initial snapshot while the hub
// lock is held. The lock is what serializes every write to a connection;
// the websocket package forbids concurrent writers, so the first write must
// not race a Broadcast that fires between Add and the write.
func (h *Hub) Join(conn *websocket.Conn, v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := conn.WriteJSON(v); err != nil {
		conn.Close()
		return err
	}
	h.conns[conn] = struct{}{}
	return nil
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends one JSON snapshot to every page, dropping connections that
// fail to take it.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(v); err != nil {
			h.logger.Debug("dropping websocket", "error", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}
