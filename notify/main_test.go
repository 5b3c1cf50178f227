package notify

import (
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/claimdesk/types"
)

type fakeHub struct {
	mu   sync.Mutex
	seen []*types.Notification
}

func (h *fakeHub) Broadcast(n *types.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, n)
}

func TestDispatcherBroadcastsToHub(t *testing.T) {
	hub := &fakeHub{}
	d := NewDispatcher(hub, "")
	assert.True(t, d.WSEnabled())

	d.Notify(&types.Notification{Type: types.NotifyTypeSelectionChanged, SessionId: "s1"})
	d.Notify(nil)
	require.Len(t, hub.seen, 1)
	assert.Equal(t, "s1", hub.seen[0].SessionId)

	d.SetHub(nil)
	assert.False(t, d.WSEnabled())
	d.Notify(&types.Notification{Type: types.NotifyTypeError})
	assert.Len(t, hub.seen, 1)
}

func TestCompactDropsPreviewSource(t *testing.T) {
	n := &types.Notification{
		Type: types.NotifyTypePreviewReady,
		Data: map[string]any{"preview": map[string]any{"name": "a.png", "source": "data:image/jpeg;base64,AAAA"}},
	}
	c := compact(n)
	p, ok := c.Data["preview"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a.png", p["name"])
	assert.NotContains(t, p, "source")

	orig := n.Data["preview"].(map[string]any)
	assert.Contains(t, orig, "source", "original notification is untouched")
}

func TestSendNotificationMissingSocket(t *testing.T) {
	err := SendNotification(&types.Notification{Type: "x"}, filepath.Join(t.TempDir(), "none.sock"))
	assert.Error(t, err)
}

func TestSendNotificationLengthPrefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan types.Notification, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(3 * time.Second))
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var n types.Notification
		_ = sonic.Unmarshal(payload, &n)
		_, _ = conn.Write([]byte(`{"ok":true}`))
		got <- n
	}()

	require.NoError(t, SendNotification(&types.Notification{Type: types.NotifyTypeSubmissionDone, Title: "done"}, path))
	select {
	case n := <-got:
		assert.Equal(t, types.NotifyTypeSubmissionDone, n.Type)
		assert.Equal(t, "done", n.Title)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not receive the notification")
	}
}
