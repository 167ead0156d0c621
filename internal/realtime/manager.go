// Package realtime serves quote turns over WebSocket.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// SessionManager tracks the live connections of every session so they can be
// closed when the session is reset or evicted.
type SessionManager struct {
	mu     sync.RWMutex
	active map[string]map[*websocket.Conn]struct{}
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		active: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Count returns the number of live connections for key.
func (m *SessionManager) Count(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active[key])
}

// Register adds a connection for key.
func (m *SessionManager) Register(key string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[key]; !exists {
		m.active[key] = make(map[*websocket.Conn]struct{})
	}
	m.active[key][conn] = struct{}{}
	slog.Debug("realtime connection registered", "session_id", key, "connections", len(m.active[key]))
}

// Unregister removes a connection for key.
func (m *SessionManager) Unregister(key string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.active[key]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(m.active, key)
	}
	slog.Debug("realtime connection unregistered", "session_id", key)
}

// CloseSession closes every connection of key. It is used as the session
// store's eviction callback and returns without waiting for the close
// handshakes, which run concurrently.
func (m *SessionManager) CloseSession(key string) {
	m.mu.Lock()
	conns := m.active[key]
	delete(m.active, key)
	m.mu.Unlock()

	for conn := range conns {
		go func(c *websocket.Conn) {
			if err := c.Close(websocket.StatusNormalClosure, "session closed"); err != nil {
				slog.Debug("realtime close failed", "session_id", key, "error", err)
			}
		}(conn)
	}
	if len(conns) > 0 {
		slog.Info("realtime session closed", "session_id", key, "connections", len(conns))
	}
}
