// Package httpapi exposes the single-session memory.Manager over HTTP,
// keyed by session ID, since a Manager only ever serves one conversation:
// multi-session support means instantiating one Manager per session and
// routing requests to the right one.
//
// SessionRegistry holds that mapping behind a sync.RWMutex-guarded map of
// sessions, with no on-disk persistence: memory state is in-process only.
package httpapi

import (
	"sync"

	"github.com/AndreDVil/p05-chat-memory/internal/memory"
)

// ManagerFactory constructs a fresh Manager for a newly seen session ID.
// The registry calls it at most once per session.
type ManagerFactory func() (*memory.Manager, error)

// SessionRegistry holds one Manager per session, created lazily.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*memory.Manager
	factory  ManagerFactory
}

// NewSessionRegistry constructs an empty registry that uses factory to
// build a Manager the first time a session ID is seen.
func NewSessionRegistry(factory ManagerFactory) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*memory.Manager),
		factory:  factory,
	}
}

// GetOrCreate returns the Manager for sessionID, constructing one via the
// registry's factory if this is the first time the session is seen.
func (r *SessionRegistry) GetOrCreate(sessionID string) (*memory.Manager, error) {
	r.mu.RLock()
	m, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if ok {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock in case of a racing creator.
	if m, ok := r.sessions[sessionID]; ok {
		return m, nil
	}

	m, err := r.factory()
	if err != nil {
		return nil, err
	}
	r.sessions[sessionID] = m
	return m, nil
}

// Drop discards a session's Manager. It is never recoverable afterward;
// this is an in-memory eviction only, not a persisted delete.
func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Len reports how many sessions are currently tracked.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
