package models

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/claimdesk/intake"
)

const DefaultSessionTTL = time.Hour

var (
	sessionMu sync.RWMutex
	sessions  = ttlworker.NewCache[string, *intake.Session](DefaultSessionTTL)
)

// InitSessionStore replaces the session cache with one using ttl. Existing
// sessions are dropped.
func InitSessionStore(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessions = ttlworker.NewCache[string, *intake.Session](ttl)
}

func StoreSession(s *intake.Session) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessions.Set(s.ID(), s)
}

// LookupSession returns the session and pushes its expiry back.
func LookupSession(id string) (*intake.Session, bool) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	s := sessions.Get(id)
	if s == nil {
		return nil, false
	}
	sessions.Set(id, s)
	return s, true
}

func RemoveSession(id string) bool {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if sessions.Get(id) == nil {
		return false
	}
	sessions.Delete(id)
	return true
}
