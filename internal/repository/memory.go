package repository

import (
	"sync"

	"github.com/danieleFFF/XPoll/internal/models"
)

// MemoryStore keeps session aggregates in process memory. It backs tests and
// single-node runs where no Tarantool instance is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (m *MemoryStore) Load(code string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[code]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *MemoryStore) Save(session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Code] = session.Clone()
	return nil
}

func (m *MemoryStore) Delete(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, code)
	return nil
}

func (m *MemoryStore) ExistsCode(code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[code]
	return ok, nil
}
