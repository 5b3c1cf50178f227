package notify

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

// NotifyWriteChunkSize is the chunk size when writing payload to Unix socket (avoid large single write).
const NotifyWriteChunkSize = 32 * 1024 // 32KB

var (
	// DefaultUnixSocketPath is used when the config enables the socket sink without a path.
	DefaultUnixSocketPath = "/tmp/claimdesk-notify.sock"
	UnixSocketTimeout     = 3 * time.Second
)

// Dispatcher fans notifications out to the websocket hub and, when a socket
// path is configured, to a local listener over a Unix socket.
type Dispatcher struct {
	mu         sync.RWMutex
	hub        types.NotifyHub
	socketPath string
}

func NewDispatcher(hub types.NotifyHub, socketPath string) *Dispatcher {
	return &Dispatcher{hub: hub, socketPath: socketPath}
}

// SetHub swaps the websocket hub; nil disables websocket delivery.
func (d *Dispatcher) SetHub(hub types.NotifyHub) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hub = hub
}

// WSEnabled reports whether a websocket hub is attached.
func (d *Dispatcher) WSEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hub != nil
}

// Notify delivers n. Socket delivery runs in the background so a slow
// listener never stalls the caller.
func (d *Dispatcher) Notify(n *types.Notification) {
	if n == nil {
		return
	}
	d.mu.RLock()
	hub, socketPath := d.hub, d.socketPath
	d.mu.RUnlock()

	if hub != nil {
		hub.Broadcast(n)
	}
	if socketPath != "" {
		compacted := compact(n)
		go func() {
			if err := SendNotification(compacted, socketPath); err != nil {
				tool.DefaultLogger.Debugf("[UnixSocket] %v", err)
			}
		}()
	}
}

// compact drops preview sources (data URLs) so socket payloads stay small.
func compact(n *types.Notification) *types.Notification {
	out := *n
	if n.Data == nil {
		return &out
	}
	out.Data = maps.Clone(n.Data)
	if p, ok := out.Data["preview"]; ok {
		if m, err := sonic.Marshal(p); err == nil {
			var fields map[string]any
			if sonic.Unmarshal(m, &fields) == nil {
				delete(fields, "source")
				out.Data["preview"] = fields
			}
		}
	}
	return &out
}

// SendNotification writes one length-prefixed JSON notification to the Unix
// socket at socketPath and reads the listener's reply.
func SendNotification(notification *types.Notification, socketPath string) error {
	if socketPath == "" {
		socketPath = DefaultUnixSocketPath
	}
	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return fmt.Errorf("unix socket not found: %s", socketPath)
	}

	var payload []byte
	var err error
	if notification != nil {
		payload, err = sonic.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to serialize notification data: %w", err)
		}
	} else {
		payload = []byte("{}")
	}
	if len(payload) > NotifyWriteChunkSize {
		return fmt.Errorf("notification payload too large: %d bytes (max %d)", len(payload), NotifyWriteChunkSize)
	}

	conn, err := net.DialTimeout("unix", socketPath, UnixSocketTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to Unix socket %s: %w", socketPath, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close Unix socket connection: %v", err)
		}
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(UnixSocketTimeout)); err != nil {
		tool.DefaultLogger.Errorf("Failed to set write deadline: %v", err)
	}

	// 4 byte little-endian length, then the payload
	lengthBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthBuf, uint32(len(payload)))
	if _, err := conn.Write(lengthBuf); err != nil {
		return fmt.Errorf("failed to write length to Unix socket: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload to Unix socket: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(UnixSocketTimeout)); err != nil {
		tool.DefaultLogger.Errorf("Failed to set read deadline: %v", err)
	}
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read response from Unix socket: %w", err)
	}
	if n > 0 {
		var response map[string]any
		if err := sonic.Unmarshal(buf[:n], &response); err != nil {
			tool.DefaultLogger.Debugf("Unix socket response (raw): %s", string(buf[:n]))
		} else if errMsg, ok := response["error"].(string); ok && errMsg != "" {
			return fmt.Errorf("listener returned error: %s", errMsg)
		}
	}

	if notification != nil {
		tool.DefaultLogger.Debugf("[UnixSocket] Notification sent: %s - %s", notification.Type, notification.Title)
	}
	return nil
}
