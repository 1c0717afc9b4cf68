package catalog

import (
	"context"
	"errors"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository is the source of truth for the store's menu.
type Repository interface {
	GetItem(ctx context.Context, id string) (*domain.MenuItem, error)
	ListItems(ctx context.Context) ([]domain.MenuItem, error)
}
