package remote

import (
	"context"
	"sync"

	"github.com/harentsoaR/dentist-sync/internal/models"
)

// MemoryStore keeps records in process. It stores what the other backends
// would: inline assets are stripped on save.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.Snapshot)}
}

func (m *MemoryStore) Load(_ context.Context, userID string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	return snap.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, userID string, snap *models.Snapshot) error {
	stored := Partition(snap).Assemble().Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[userID] = stored
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
