package voicews

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks the open voice socket of each login session.
type Registry struct {
	mu     sync.Mutex
	active map[int64]map[string]*websocket.Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[int64]map[string]*websocket.Conn),
	}
}

// Register adds a connection, closing any connection it replaces.
func (m *Registry) Register(userID int64, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	if _, exists := m.active[userID]; !exists {
		m.active[userID] = make(map[string]*websocket.Conn)
	}
	replaced := m.active[userID][sessionID]
	m.active[userID][sessionID] = conn
	m.mu.Unlock()

	if replaced != nil && replaced != conn {
		_ = replaced.Close(websocket.StatusNormalClosure, "session replaced")
	}
	slog.Info("Voice socket registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes conn if it is still the current one for the session.
func (m *Registry) Unregister(userID int64, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current := m.take(userID, sessionID, conn); current != nil {
		slog.Info("Voice socket unregistered", "user_id", userID, "session_id", sessionID)
	}
}

// CloseSession closes the voice socket of one login session. The close
// handshake runs after the socket has left the registry.
func (m *Registry) CloseSession(userID int64, sessionID string) {
	m.mu.Lock()
	conn := m.take(userID, sessionID, nil)
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	}
}

// take removes and returns the session's socket. A non-nil want only removes
// that exact socket. Caller must hold m.mu.
func (m *Registry) take(userID int64, sessionID string, want *websocket.Conn) *websocket.Conn {
	sessions, ok := m.active[userID]
	if !ok {
		return nil
	}
	current, exists := sessions[sessionID]
	if !exists || (want != nil && current != want) {
		return nil
	}
	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(m.active, userID)
	}
	return current
}
