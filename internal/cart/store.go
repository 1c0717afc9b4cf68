// Package cart owns the cart aggregate: line items keyed by product
// configuration, with derived totals and write-through persistence.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

// Store holds the line items for one shopper session. All mutations persist
// the whole aggregate synchronously before returning. Safe for concurrent
// use: the HTTP layer may run several requests for one session at once.
type Store struct {
	sessionID string
	mu        sync.RWMutex
	items     []domain.CartItem
	repo      Repository
}

// NewStore loads any previously persisted cart for the session. A missing
// cart is not an error — the store starts empty.
func NewStore(ctx context.Context, sessionID string, repo Repository) (*Store, error) {
	items, err := repo.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}
	return &Store{
		sessionID: sessionID,
		items:     items,
		repo:      repo,
	}, nil
}

// AddItem appends a new line with quantity 1, or increments the quantity of
// an existing line with the same configuration. Lines are keyed by
// (product, add-ons, observation) so distinct configurations never merge.
func (s *Store) AddItem(ctx context.Context, item domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.LineKey()
	for i := range s.items {
		if s.items[i].LineKey() == key {
			s.items[i].Quantity++
			return s.persist(ctx)
		}
	}

	item.Quantity = 1
	s.items = append(s.items, item)
	return s.persist(ctx)
}

// UpdateQuantity sets the quantity of the line identified by key. A quantity
// of zero or less removes the line; that is not an error.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLine(ctx, key)
	}
	for i := range s.items {
		if s.items[i].LineKey() == key {
			s.items[i].Quantity = quantity
			return s.persist(ctx)
		}
	}
	return nil
}

// RemoveItem deletes the line unconditionally. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLine(ctx, key)
}

// removeLine deletes the line; the caller holds mu.
func (s *Store) removeLine(ctx context.Context, key string) error {
	for i := range s.items {
		if s.items[i].LineKey() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// Clear empties the aggregate.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.repo.Delete(ctx, s.sessionID); err != nil {
		log.WithError(err).WithField("session_id", s.sessionID).Error("failed to clear persisted cart")
		return err
	}
	return nil
}

// Items returns a copy of the current lines.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems is the sum of quantities over all lines.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums unit price times quantity over all lines. Add-on prices
// are excluded; the order message lists them as informational sub-lines.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.sessionID, s.items); err != nil {
		log.WithError(err).WithField("session_id", s.sessionID).Error("failed to persist cart")
		return err
	}
	return nil
}
