package assessment

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/catalog"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/selection"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/domain/wizard"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/id"
)

// Session is one mounted wizard
type Session struct {
	id         id.SessionID
	mu         sync.Mutex
	store      *selection.Store
	controller *wizard.Controller
	createdAt  time.Time
	lastActive time.Time
}

// ID returns the session id
func (s *Session) ID() id.SessionID {
	return s.id
}

// CreatedAt returns when the session was mounted
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Do runs fn with exclusive access to the session's wizard
func (s *Session) Do(fn func(c *wizard.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	return fn(s.controller)
}

// Store returns the session's selection store
func (s *Session) Store() *selection.Store {
	return s.store
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Manager tracks mounted sessions
type Manager struct {
	catalog  *catalog.Catalog
	backend  storage.Backend
	logger   *zap.Logger
	mu       sync.RWMutex
	sessions map[id.SessionID]*Session
}

// NewManager creates a session manager whose sessions persist to backend
func NewManager(cat *catalog.Catalog, backend storage.Backend, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		catalog:  cat,
		backend:  backend,
		logger:   logger,
		sessions: make(map[id.SessionID]*Session),
	}
}

// Create mounts a wizard under a fresh session id
func (m *Manager) Create() *Session {
	return m.Open(id.NewSessionID())
}

// Open mounts (or re-mounts) the wizard for sid. Persisted selections are
// restored and the position resets to the first step.
func (m *Manager) Open(sid id.SessionID) *Session {
	session := m.mount(sid)

	m.mu.Lock()
	m.sessions[sid] = session
	m.mu.Unlock()

	m.logger.Info("Assessment session mounted",
		zap.String("session_id", sid.String()),
		zap.Int("restored_categories", session.store.Len()),
	)
	return session
}

// Get returns a mounted session
func (m *Manager) Get(sid id.SessionID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sid]
	return s, ok
}

// GetOrOpen returns the mounted session, mounting it on first access
func (m *Manager) GetOrOpen(sid id.SessionID) *Session {
	m.mu.RLock()
	s, ok := m.sessions[sid]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sid]; ok {
		return s
	}
	s = m.mount(sid)
	m.sessions[sid] = s
	m.logger.Info("Assessment session mounted on access", zap.String("session_id", sid.String()))
	return s
}

// Close unmounts a session. Persisted selections remain.
func (m *Manager) Close(sid id.SessionID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sid]; !ok {
		return false
	}
	delete(m.sessions, sid)
	return true
}

// Count returns the number of mounted sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune unmounts sessions idle for longer than maxIdle and returns how many
// were removed
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for sid, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, sid)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("Pruned idle assessment sessions", zap.Int("count", removed))
	}
	return removed
}

func (m *Manager) mount(sid id.SessionID) *Session {
	logger := m.logger.With(zap.String("session_id", sid.String()))
	store := selection.NewStore(storage.Namespace(m.backend, sid.String()), logger)
	controller := wizard.NewController(m.catalog, store, logger)
	controller.Mount()

	now := time.Now()
	return &Session{
		id:         sid,
		store:      store,
		controller: controller,
		createdAt:  now,
		lastActive: now,
	}
}
