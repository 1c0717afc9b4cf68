package cart

import (
	"context"
	"sync"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

// MemoryRepository keeps cart blobs in a map. Used by tests and local runs
// without redis.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string][]domain.CartItem)}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) ([]domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryRepository) Save(_ context.Context, sessionID string, items []domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]domain.CartItem, len(items))
	copy(stored, items)
	m.carts[sessionID] = stored
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
