package cart

import (
	"context"
	"errors"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository persists the cart aggregate as a whole. Load is called once at
// session start; Save runs synchronously on every mutation.
type Repository interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Save(ctx context.Context, sessionID string, items []domain.CartItem) error
	Delete(ctx context.Context, sessionID string) error
}
