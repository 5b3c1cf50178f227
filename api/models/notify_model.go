package models

import (
	"sync"

	"github.com/moyoez/claimdesk/api/notifyhub"
	"github.com/moyoez/claimdesk/notify"
)

var (
	notifyOptMu sync.RWMutex
	notifyHub   *notifyhub.Hub
	dispatcher  = notify.NewDispatcher(nil, "")
)

// SetNotifyHub attaches the websocket hub to the shared dispatcher.
func SetNotifyHub(h *notifyhub.Hub) {
	notifyOptMu.Lock()
	defer notifyOptMu.Unlock()
	notifyHub = h
	if h == nil {
		dispatcher.SetHub(nil)
		return
	}
	dispatcher.SetHub(h)
}

// GetNotifyHub returns the notify WebSocket hub, or nil if not set.
func GetNotifyHub() *notifyhub.Hub {
	notifyOptMu.RLock()
	defer notifyOptMu.RUnlock()
	return notifyHub
}

// SetNotifyDispatcher replaces the dispatcher, e.g. to add a socket sink.
// The current hub is carried over.
func SetNotifyDispatcher(d *notify.Dispatcher) {
	notifyOptMu.Lock()
	defer notifyOptMu.Unlock()
	if notifyHub != nil {
		d.SetHub(notifyHub)
	}
	dispatcher = d
}

// GetNotifyDispatcher is what sessions notify through.
func GetNotifyDispatcher() *notify.Dispatcher {
	notifyOptMu.RLock()
	defer notifyOptMu.RUnlock()
	return dispatcher
}
