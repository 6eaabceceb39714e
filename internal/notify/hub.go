// Package notify persists notifications and streams them to connected
// websocket clients.
package notify

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"taskmarket/internal/models"
)

const writeTimeout = 5 * time.Second

// Hub fans notifications out to each user's live websocket connections.
// Delivery is best-effort; the persisted row is the source of truth.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*websocket.Conn]struct{})}
}

func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.conns[userID]; set != nil {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Publish pushes a notification to every live connection of the user. Dead
// connections are dropped; the reader goroutine notices on its next read.
func (h *Hub) Publish(n *models.Notification) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns[n.UserID]))
	for conn := range h.conns[n.UserID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(notificationPayload(n)); err != nil {
			log.Printf("ws push to %s failed: %v", n.UserID, err)
			conn.Close()
			h.Unregister(n.UserID, conn)
		}
	}
}

func notificationPayload(n *models.Notification) map[string]any {
	return map[string]any{
		"id":         n.ID,
		"kind":       n.Kind,
		"title":      n.Title,
		"body":       n.Body,
		"ref_id":     n.RefID,
		"created_at": n.CreatedAt,
	}
}
