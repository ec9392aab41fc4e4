package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/honeybear/game/engine"
	"github.com/wricardo/mcp-training/honeybear/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
	ErrManagerClosed        = errors.New("session manager closed")
	ErrNoSessionIDs         = errors.New("no free session ID")
)

// maxIDAttempts bounds the search for an unused generated ID
const maxIDAttempts = 64

// TickObserver receives a snapshot each time a session's clock ticks
type TickObserver func(sessionID string, state *engine.GameState)

// Option configures a Manager
type Option func(*Manager)

// WithTickInterval sets the real-time length of one game second.
// Zero disables the background clock; ticks then only happen through Engine.Tick.
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.tickInterval = d
	}
}

// WithTickObserver registers the tick observer at construction time
func WithTickObserver(fn TickObserver) Option {
	return func(m *Manager) {
		m.observer = fn
	}
}

// Manager handles game session lifecycle. Every session's countdown is
// started on Create and stopped on Delete, expiry or Close.
//
// Sessions handed out are copies taken under the lock. The Engine pointer
// is shared and guards itself.
type Manager struct {
	sessions     map[string]*service.Session
	mu           sync.RWMutex
	tickInterval time.Duration
	observer     TickObserver
	ctx          context.Context
	cancel       context.CancelFunc
	closed       bool
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		sessions:     make(map[string]*service.Session),
		tickInterval: engine.DefaultTickInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetTickObserver replaces the tick observer. Running clocks pick it up on their next tick.
func (m *Manager) SetTickObserver(fn TickObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = fn
}

func (m *Manager) notify(id string, state *engine.GameState) {
	m.mu.RLock()
	observer := m.observer
	m.mu.RUnlock()
	if observer != nil {
		observer(id, state)
	}
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if strings.ContainsAny(id, " /\\?#") {
		return nil, ErrInvalidSessionID
	}

	// Create game engine
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	if id == "" {
		if id, err = m.generateSessionID(); err != nil {
			return nil, err
		}
	} else if m.sessionExists(id) {
		// Case-insensitive
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = session

	if m.tickInterval > 0 {
		sessionID := id
		eng.StartClock(m.ctx, m.tickInterval, func(state *engine.GameState) {
			m.notify(sessionID, state)
		})
	}

	copied := *session
	return &copied, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		copied := *session
		result = append(result, &copied)
	}

	return result
}

// Delete removes a session and stops its clock
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	// Outside the lock: a tick in flight may be waiting to read the observer
	session.Engine.StopClock()
	return nil
}

// Touch refreshes a session's last access time and returns a copy of it
func (m *Manager) Touch(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	copied := *session
	return &copied, nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Engine.StopClock()
	}

	return len(expired)
}

// RunCleanup removes expired sessions every interval until ctx is done
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration, onRemoved func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := m.CleanupExpiredSessions(maxAge)
			if removed > 0 && onRemoved != nil {
				onRemoved(removed)
			}
		}
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops every session clock and drops all sessions. Create fails afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*service.Session)
	m.mu.Unlock()

	m.cancel()
	for _, session := range sessions {
		session.Engine.StopClock()
	}
}

// generateSessionID generates a random 4-character session ID not yet in use.
// Callers must hold the write lock.
func (m *Manager) generateSessionID() (string, error) {
	// 2 random bytes = 4 hex characters
	bytes := make([]byte, 2)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("generate session ID: %w", err)
		}
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", ErrNoSessionIDs
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
