package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sheets in a map for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string]string)}
}

// SetStatus stores status for leadCode, creating the sheet when needed.
func (m *MemoryStore) SetStatus(leadCode, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[leadCode] = status
}

func (m *MemoryStore) SheetStatuses(_ context.Context, leadCodes []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(leadCodes))
	for _, code := range leadCodes {
		if status, ok := m.sheets[code]; ok {
			out[code] = status
		}
	}
	return out, nil
}

func (m *MemoryStore) EnsureDraft(_ context.Context, leadCode string, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sheets[leadCode]; ok {
		return false, nil
	}
	m.sheets[leadCode] = DraftStatus
	return true, nil
}

var _ Store = (*MemoryStore)(nil)
