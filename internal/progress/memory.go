package progress

import (
	"context"
	"sync"

	"github.com/verte-zerg/hancards/internal/model"
)

// MemoryStorage keeps the record in process memory. Load and Save copy the
// record so callers never share maps or slices with it.
type MemoryStorage struct {
	mu sync.Mutex
	p  model.UserProgress
}

// NewMemoryStorage returns storage holding the default record.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{p: model.NewUserProgress()}
}

// Load implements Storage.
func (m *MemoryStorage) Load(_ context.Context) (model.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p.Clone(), nil
}

// Save implements Storage.
func (m *MemoryStorage) Save(_ context.Context, p model.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p.Clone()
	return nil
}
