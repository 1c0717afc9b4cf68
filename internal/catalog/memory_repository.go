package catalog

import (
	"context"
	"sync"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

// MemoryRepository serves a fixed menu from memory. Used by tests and local
// runs without mongo.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.MenuItem
}

func NewMemoryRepository(items ...domain.MenuItem) *MemoryRepository {
	m := &MemoryRepository{items: make(map[string]domain.MenuItem, len(items))}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *MemoryRepository) GetItem(_ context.Context, id string) (*domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &item, nil
}

func (m *MemoryRepository) ListItems(context.Context) ([]domain.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]domain.MenuItem, 0, len(m.items))
	for _, item := range m.items {
		if item.Available {
			items = append(items, item)
		}
	}
	return items, nil
}
