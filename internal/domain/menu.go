package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a product from the store's menu catalog. The checkout engine
// resolves product ids against the catalog when items are added to the cart.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	AddOns      []AddOn         `json:"add_ons,omitempty"`
	Available   bool            `json:"available"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
