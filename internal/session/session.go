package session

import (
	"sync"
	"time"
)

// Pending captures a user mid-flow for one action on one entry. It is a
// single slot: starting a new flow replaces the old one, and the next
// free-text message from the user consumes it.
type Pending struct {
	Key       string
	StartedAt time.Time
}

// Session is one user's conversational state. In-memory only; it does
// not survive a restart.
type Session struct {
	Offset        int
	PendingReport *Pending
	PendingEdit   *Pending
}

// Manager owns per-user sessions, created on first use. Users never see
// each other's state.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// session returns the user's session, creating it if needed.
// Caller must hold m.mu.
func (m *Manager) session(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{}
		m.sessions[userID] = s
	}
	return s
}

// Offset returns the user's pagination offset, 0 by default
func (m *Manager) Offset(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session(userID).Offset
}

// SetOffset stores the user's pagination offset, clamped to >= 0
func (m *Manager) SetOffset(userID int64, offset int) {
	if offset < 0 {
		offset = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).Offset = offset
}

// SetPendingReport starts a report flow for the given entry
func (m *Manager) SetPendingReport(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).PendingReport = &Pending{Key: key, StartedAt: time.Now()}
}

// TakePendingReport consumes and removes the user's pending report slot
func (m *Manager) TakePendingReport(userID int64) (*Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	p := s.PendingReport
	s.PendingReport = nil
	return p, p != nil
}

// SetPendingEdit starts an edit flow for the given entry
func (m *Manager) SetPendingEdit(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).PendingEdit = &Pending{Key: key, StartedAt: time.Now()}
}

// TakePendingEdit consumes and removes the user's pending edit slot
func (m *Manager) TakePendingEdit(userID int64) (*Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	p := s.PendingEdit
	s.PendingEdit = nil
	return p, p != nil
}
