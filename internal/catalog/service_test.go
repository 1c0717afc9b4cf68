package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

type mockCache struct {
	m    sync.RWMutex
	item *domain.MenuItem
	err  error
	sets int
}

func (m *mockCache) Get(context.Context, string) (*domain.MenuItem, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.item == nil {
		return nil, ErrCacheMiss
	}
	return m.item, nil
}

func (m *mockCache) Set(_ context.Context, item *domain.MenuItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.item = item
	m.sets++
	return nil
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.item = nil
	return nil
}

func menuPizza() domain.MenuItem {
	return domain.MenuItem{
		ID:        "pizza-margherita",
		Name:      "Pizza Margherita",
		Price:     decimal.RequireFromString("35.00"),
		Available: true,
	}
}

func TestGetItem_CacheHitSkipsRepo(t *testing.T) {
	item := menuPizza()
	cache := &mockCache{item: &item}
	repo := NewMemoryRepository() // empty: a repo call would fail

	svc := NewService(repo, cache)

	got, err := svc.GetItem(context.Background(), "pizza-margherita")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Margherita", got.Name)
}

func TestGetItem_CacheMissFallsThrough(t *testing.T) {
	cache := &mockCache{}
	repo := NewMemoryRepository(menuPizza())
	svc := NewService(repo, cache)

	got, err := svc.GetItem(context.Background(), "pizza-margherita")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Margherita", got.Name)

	// cache fill is async
	assert.Eventually(t, func() bool {
		cache.m.RLock()
		defer cache.m.RUnlock()
		return cache.sets == 1
	}, time.Second, 10*time.Millisecond)
}

func TestGetItem_CacheErrorStillServesFromRepo(t *testing.T) {
	cache := &mockCache{err: errors.New("redis down")}
	repo := NewMemoryRepository(menuPizza())
	svc := NewService(repo, cache)

	got, err := svc.GetItem(context.Background(), "pizza-margherita")
	require.NoError(t, err)
	assert.Equal(t, "Pizza Margherita", got.Name)
}

func TestGetItem_UnknownItem(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &mockCache{err: errors.New("redis down")})

	_, err := svc.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestListItems_OnlyAvailable(t *testing.T) {
	unavailable := menuPizza()
	unavailable.ID = "pizza-calabresa"
	unavailable.Available = false
	repo := NewMemoryRepository(menuPizza(), unavailable)
	svc := NewService(repo, &mockCache{})

	items, err := svc.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pizza-margherita", items[0].ID)
}
