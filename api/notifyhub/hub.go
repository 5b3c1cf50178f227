package notifyhub

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

// DefaultWriteTimeout bounds a write to one client so a reader that stalls
// cannot hold up the submission emitting the event.
const DefaultWriteTimeout = 5 * time.Second

// Hub holds WebSocket connections and broadcasts notifications to all clients.
// A client may subscribe to a single session; it then only receives that
// session's events.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]string
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex

	WriteTimeout time.Duration
}

var _ types.NotifyHub = (*Hub)(nil)

// New creates a new notify hub.
func New() *Hub {
	return &Hub{
		conns:        make(map[*websocket.Conn]string),
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Register adds a WebSocket connection to the hub. An empty sessionId
// receives everything.
func (h *Hub) Register(conn *websocket.Conn, sessionId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = sessionId
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the notification as JSON to every matching connection.
func (h *Hub) Broadcast(notification *types.Notification) {
	if notification == nil {
		return
	}
	payload, err := sonic.Marshal(notification)
	if err != nil {
		tool.DefaultLogger.Errorf("[NotifyHub] Failed to encode notification: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c, sessionId := range h.conns {
		if sessionId == "" || sessionId == notification.SessionId {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	h.writeMu.Lock()
	for _, conn := range conns {
		if h.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			failed = append(failed, conn)
		}
	}
	h.writeMu.Unlock()

	// a failed or timed out write leaves the connection unusable
	for _, conn := range failed {
		tool.DefaultLogger.Debugf("[NotifyHub] Dropping client %s", conn.RemoteAddr())
		h.Unregister(conn)
		_ = conn.Close()
	}
}
