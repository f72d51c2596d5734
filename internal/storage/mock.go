package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockStore is an in-memory SessionStore for testing
type MockStore struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*SessionDoc
	pingError error
	saveError error
}

var _ SessionStore = (*MockStore)(nil)

// NewMockStore creates a new mock store
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[uuid.UUID]*SessionDoc),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) SaveSession(ctx context.Context, doc *SessionDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[doc.ID] = doc
	return nil
}

func (m *MockStore) LoadSession(ctx context.Context, id uuid.UUID) (*SessionDoc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id], nil
}

func (m *MockStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStore) Close() error { return nil }

// Len reports how many sessions are stored.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
