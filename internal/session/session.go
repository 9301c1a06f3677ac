// Package session tracks dashboard login sessions and the assistants each one owns.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/stockflow/internal/assistant"
	"github.com/ashureev/stockflow/internal/domain"
	"github.com/google/uuid"
)

// Session is one logged-in dashboard visit.
type Session struct {
	// ID is a public identifier safe to log. Token is the secret credential.
	ID        string
	Token     string
	User      domain.User
	Chat      *assistant.ChatSession
	Voice     *assistant.VoiceSession
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time of the most recent request on this session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// RemoveCallback is called for every session that ends, whether by logout,
// account deletion or expiry.
type RemoveCallback func(s *Session)

// Manager maps opaque tokens to sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg      assistant.Config
	logger   *slog.Logger
	onRemove RemoveCallback
	now      func() time.Time
}

// NewManager creates an empty session manager. Every session it creates gets
// its own chat and voice assistant built from cfg.
func NewManager(cfg assistant.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// OnRemove registers a callback run after a session ends.
func (m *Manager) OnRemove(cb RemoveCallback) {
	m.mu.Lock()
	m.onRemove = cb
	m.mu.Unlock()
}

func (m *Manager) notify(cb RemoveCallback, removed []*Session) {
	if cb == nil {
		return
	}
	for _, s := range removed {
		cb(s)
	}
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create starts a new session for user.
func (m *Manager) Create(user domain.User) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		Chat:      assistant.NewChatSession(m.cfg),
		CreatedAt: now,
		lastSeen:  now,
	}
	s.Voice = assistant.NewVoiceSession(m.cfg, m.logger.With("session_id", s.ID, "user_id", user.ID))

	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()

	m.logger.Info("Session created", "session_id", s.ID, "user_id", user.ID, "role", user.Role)
	return s, nil
}

// Get returns the session for token and marks it as seen.
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(m.now())
	return s, true
}

// Delete removes the session for token. It reports whether one existed.
func (m *Manager) Delete(token string) bool {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	cb := m.onRemove
	m.mu.Unlock()

	if ok {
		m.notify(cb, []*Session{s})
	}
	return ok
}

// DeleteUser removes every session belonging to userID.
func (m *Manager) DeleteUser(userID int64) int {
	m.mu.Lock()
	var removed []*Session
	for token, s := range m.sessions {
		if s.User.ID == userID {
			delete(m.sessions, token)
			removed = append(removed, s)
		}
	}
	cb := m.onRemove
	m.mu.Unlock()

	m.notify(cb, removed)
	return len(removed)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many were removed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)

	m.mu.Lock()
	var expired []*Session
	for token, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, token)
		}
	}
	cb := m.onRemove
	m.mu.Unlock()

	for _, s := range expired {
		m.logger.Info("Session expired", "session_id", s.ID, "user_id", s.User.ID, "idle", m.now().Sub(s.LastSeen()).Round(time.Second))
	}
	m.notify(cb, expired)
	return len(expired)
}

// StartSweeper runs a background goroutine that periodically sweeps idle sessions
// until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		m.logger.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(ttl); n > 0 {
					m.logger.Info("Session sweep completed", "expired", n, "remaining", m.Len())
				}
			case <-ctx.Done():
				m.logger.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
