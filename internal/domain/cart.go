package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AddOn is an optional priced modifier attached to a cart item (extra topping etc).
type AddOn struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// CartItem is one distinct product entry in the cart, with its own quantity
// and configuration (observation + selected add-ons).
type CartItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Observation string          `json:"observation,omitempty"`
	AddOns      []AddOn         `json:"add_ons,omitempty"`
}

// LineKey identifies a cart line. Two configurations of the same product
// (different add-ons or observation) are distinct lines and must not merge.
func (i CartItem) LineKey() string {
	var b strings.Builder
	b.WriteString(i.ProductID)
	for _, a := range i.AddOns {
		b.WriteString("|")
		b.WriteString(a.Name)
		b.WriteString("=")
		b.WriteString(a.Price.StringFixed(2))
	}
	if i.Observation != "" {
		b.WriteString("#")
		b.WriteString(i.Observation)
	}
	return b.String()
}

// LineTotal is unit price times quantity. Add-on prices are not included
// here; the order message prints them as informational sub-lines.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
